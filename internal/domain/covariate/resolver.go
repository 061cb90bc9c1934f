package covariate

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// InstanceResolver is the caller-provided "instance-provided resolver
// method" seam: given a key, it may return a value for that key.
type InstanceResolver func(key string) (Value, bool)

// PropertyLookup reads a process-wide property "<prefix>.covariate.<key>".
// Backed by a plain map in this module; callers wire in whatever config
// source they use (see internal/config).
type PropertyLookup func(key string) (string, bool)

// DefaultResolver supplies built-in temporal/infrastructure covariates when
// nothing else resolves them (e.g. "time_of_day", "day_kind", "hostname").
type DefaultResolver func(key string) (Value, bool)

// Resolver implements the fixed precedence chain from spec.md §3:
// instance-provided resolver method -> process-wide property
// "<prefix>.covariate.<key>" -> environment variable
// "<PREFIX>_COVARIATE_<KEY>" -> default resolver (built-ins only).
type Resolver struct {
	Prefix   string
	Instance InstanceResolver
	Property PropertyLookup
	Default  DefaultResolver
}

// Resolve builds a full Profile for an ordered Declarations list. An error
// is returned for the first declared key, of any category, that no stage
// (instance, property, env, default) resolves — callers typically treat an
// unresolved key as a misconfiguration.
func (r *Resolver) Resolve(decls Declarations) (Profile, error) {
	profile := make(Profile, len(decls))
	for _, d := range decls {
		v, ok := r.resolveOne(d.Key)
		if !ok {
			return nil, fmt.Errorf("covariate %q: no resolver (instance, property, env, or default) produced a value", d.Key)
		}
		profile[d.Key] = v
	}
	return profile, nil
}

func (r *Resolver) resolveOne(key string) (Value, bool) {
	if r.Instance != nil {
		if v, ok := r.Instance(key); ok {
			return v, true
		}
	}
	if r.Property != nil {
		propKey := fmt.Sprintf("%s.covariate.%s", strings.ToLower(r.Prefix), key)
		if s, ok := r.Property(propKey); ok {
			return String(s), true
		}
	}
	envKey := fmt.Sprintf("%s_COVARIATE_%s", strings.ToUpper(r.Prefix), strings.ToUpper(key))
	if s, ok := os.LookupEnv(envKey); ok {
		return String(s), true
	}
	if r.Default != nil {
		if v, ok := r.Default(key); ok {
			return v, true
		}
	}
	return Value{}, false
}

// BuiltinDefaultResolver supplies the handful of built-in temporal and
// infrastructure covariates the spec calls out: "time_of_day", "day_kind",
// and "hostname". Any other key is left unresolved.
func BuiltinDefaultResolver(now func() time.Time) DefaultResolver {
	return func(key string) (Value, bool) {
		switch key {
		case "time_of_day":
			t := now()
			start := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
			end := start.Add(time.Hour)
			return TimeWindow(start, end, t.Location().String()), true
		case "day_kind":
			t := now()
			if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
				return DayValue(DayWeekend), true
			}
			return DayValue(DayWeekday), true
		case "hostname":
			h, err := os.Hostname()
			if err != nil {
				return Value{}, false
			}
			return String(h), true
		default:
			return Value{}, false
		}
	}
}
