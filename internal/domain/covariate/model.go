// Package covariate implements the covariate model: the tagged-union value
// type, the category enum that decides hard-gate vs. soft-score treatment,
// ordered declarations, and the resolution precedence that builds a concrete
// profile at test time (spec.md §3, §6).
package covariate

import (
	"fmt"
	"time"
)

// Category decides how a covariate participates in baseline selection.
type Category string

const (
	CategoryConfiguration    Category = "configuration" // hard gate
	CategoryTemporal         Category = "temporal"       // soft score
	CategoryInfrastructure   Category = "infrastructure" // soft score
	CategoryExternalDependency Category = "external_dependency"
	CategoryDataState        Category = "data_state"
	CategoryOperational      Category = "operational"
	CategoryInformational    Category = "informational" // ignored in matching
)

// IsHardGate reports whether mismatches on this category exclude a
// candidate baseline outright.
func (c Category) IsHardGate() bool {
	return c == CategoryConfiguration
}

// ScorePriority orders categories for the soft-score tie-break in
// spec.md §4.4: temporal > infrastructure ≈ operational > external_dependency > data_state.
func (c Category) ScorePriority() int {
	switch c {
	case CategoryTemporal:
		return 4
	case CategoryInfrastructure, CategoryOperational:
		return 3
	case CategoryExternalDependency:
		return 2
	case CategoryDataState:
		return 1
	default:
		return 0
	}
}

// DayKind is the Day() covariate value's classifier.
type DayKind string

const (
	DayWeekday DayKind = "weekday"
	DayWeekend DayKind = "weekend"
)

// ValueKind tags which variant of CovariateValue is populated.
type ValueKind string

const (
	ValueKindString     ValueKind = "string"
	ValueKindTimeWindow ValueKind = "time_window"
	ValueKindDay        ValueKind = "day"
	ValueKindOpaque     ValueKind = "opaque"
)

// Value is the tagged union CovariateValue from spec.md §3: String,
// TimeWindow, Day, Opaque. Exactly one field group is populated, selected by
// Kind.
type Value struct {
	Kind ValueKind

	Str string

	WindowStart time.Time
	WindowEnd   time.Time
	WindowZone  string

	Day DayKind

	Opaque []byte
}

// String constructs a String-kind value.
func String(s string) Value { return Value{Kind: ValueKindString, Str: s} }

// TimeWindow constructs a TimeWindow-kind value.
func TimeWindow(start, end time.Time, zone string) Value {
	return Value{Kind: ValueKindTimeWindow, WindowStart: start, WindowEnd: end, WindowZone: zone}
}

// DayValue constructs a Day-kind value.
func DayValue(kind DayKind) Value { return Value{Kind: ValueKindDay, Day: kind} }

// OpaqueValue constructs an Opaque-kind value.
func OpaqueValue(b []byte) Value { return Value{Kind: ValueKindOpaque, Opaque: append([]byte(nil), b...)} }

// Render produces a stable, human-readable string for hashing and filename
// generation — content, not Go representation.
func (v Value) Render() string {
	switch v.Kind {
	case ValueKindString:
		return v.Str
	case ValueKindTimeWindow:
		return fmt.Sprintf("%s/%s/%s", v.WindowStart.UTC().Format(time.RFC3339), v.WindowEnd.UTC().Format(time.RFC3339), v.WindowZone)
	case ValueKindDay:
		return string(v.Day)
	case ValueKindOpaque:
		return fmt.Sprintf("opaque:%x", v.Opaque)
	default:
		return ""
	}
}

// Declaration is one (key, category) pair in a use-case's ordered covariate
// declaration.
type Declaration struct {
	Key      string
	Category Category
}

// Declarations is the ordered collection for one use-case; order is stable
// and determines hash order (spec.md §3).
type Declarations []Declaration

// Profile is the concrete key -> Value mapping resolved at test time.
type Profile map[string]Value
