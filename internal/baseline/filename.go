package baseline

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CanonicalFilename renders the filename scheme from spec.md §4.4:
//
//	<useCaseId>.<methodName>-<YYYYMMDD-HHMM>-<footprintHash>-<covValHash1>-<covValHash2>-….yaml
func CanonicalFilename(useCaseID, method string, generatedAt time.Time, footprintHash string, covHashes []string) string {
	stamp := generatedAt.UTC().Format("20060102-1504")
	parts := []string{stamp, footprintHash}
	parts = append(parts, covHashes...)
	return fmt.Sprintf("%s.%s-%s.yaml", useCaseID, method, strings.Join(parts, "-"))
}

// parsedFilename is the structural decomposition of a canonical filename,
// used by the selector for filename-only matching before a candidate's body
// is parsed.
type parsedFilename struct {
	UseCaseID     string
	Method        string
	GeneratedAt   time.Time
	FootprintHash string
	CovHashes     []string
}

// ParseFilename decomposes a canonical filename. Returns an error if it does
// not match the scheme (e.g. a stray file in the baseline directory).
func ParseFilename(name string) (parsedFilename, error) {
	name = strings.TrimSuffix(name, ".yaml")
	dot := strings.Index(name, ".")
	if dot < 0 {
		return parsedFilename{}, fmt.Errorf("baseline filename %q: missing useCaseId separator", name)
	}
	useCaseID := name[:dot]
	rest := name[dot+1:]

	dash := strings.Index(rest, "-")
	if dash < 0 {
		return parsedFilename{}, fmt.Errorf("baseline filename %q: missing method separator", name)
	}
	method := rest[:dash]
	fields := strings.Split(rest[dash+1:], "-")
	if len(fields) < 3 {
		return parsedFilename{}, fmt.Errorf("baseline filename %q: expected date-time-footprint[-covHash...]", name)
	}

	datePart, timePart, footprint := fields[0], fields[1], fields[2]
	if _, err := strconv.Atoi(datePart); err != nil || len(datePart) != 8 {
		return parsedFilename{}, fmt.Errorf("baseline filename %q: bad date component %q", name, datePart)
	}
	generatedAt, err := time.Parse("20060102-1504", datePart+"-"+timePart)
	if err != nil {
		return parsedFilename{}, fmt.Errorf("baseline filename %q: bad timestamp: %w", name, err)
	}

	return parsedFilename{
		UseCaseID:     useCaseID,
		Method:        method,
		GeneratedAt:   generatedAt.UTC(),
		FootprintHash: footprint,
		CovHashes:     fields[3:],
	}, nil
}
