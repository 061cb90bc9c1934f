package baseline

import "context"

// Store is the interface every backend implements: discover candidates for
// a use case/method, load one candidate's full body, and persist a new
// baseline. The selection algorithm in selector.go runs the same way
// regardless of which Store produced the candidate list (spec.md §4.4,
// §5 "read-mostly cache keyed by resolved filename; population is lazy and
// idempotent").
type Store interface {
	// ListCandidates returns filename-parsed candidates for a use case and
	// method, without loading bodies.
	ListCandidates(ctx context.Context, useCaseID, method string) ([]Candidate, error)
	// Load parses and returns the full Baseline body for a filename
	// previously returned by ListCandidates.
	Load(ctx context.Context, filename string) (*Baseline, error)
	// Put persists a sealed Baseline under its canonical filename.
	Put(ctx context.Context, b *Baseline) (filename string, err error)
}
