package baseline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// FileStore is the canonical baseline backend: a directory of YAML files
// named per CanonicalFilename. Colliding names overwrite — a same-config
// re-run is expected to replace the prior baseline (spec.md §4.4).
type FileStore struct {
	Dir string
}

// NewFileStore constructs a FileStore rooted at dir, creating it if absent.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create baseline dir: %w", err)
	}
	return &FileStore{Dir: dir}, nil
}

func (f *FileStore) ListCandidates(ctx context.Context, useCaseID, method string) ([]Candidate, error) {
	entries, err := os.ReadDir(f.Dir)
	if err != nil {
		return nil, fmt.Errorf("read baseline dir: %w", err)
	}

	prefix := useCaseID + "." + method + "-"
	var candidates []Candidate
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		if !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		parsed, err := ParseFilename(e.Name())
		if err != nil {
			log.Warn().Str("file", e.Name()).Err(err).Msg("skipping unparseable baseline filename")
			continue
		}
		candidates = append(candidates, Candidate{Filename: e.Name(), Parsed: parsed})
	}
	return candidates, nil
}

func (f *FileStore) Load(ctx context.Context, filename string) (*Baseline, error) {
	data, err := os.ReadFile(filepath.Join(f.Dir, filename))
	if err != nil {
		return nil, fmt.Errorf("read baseline file: %w", err)
	}
	return UnmarshalYAML(data)
}

func (f *FileStore) Put(ctx context.Context, b *Baseline) (string, error) {
	name := CanonicalFilename(b.UseCaseID, b.ExperimentMethod, b.GeneratedAt, b.FootprintHash, b.CovariateValueHashes)
	data, err := MarshalYAML(b)
	if err != nil {
		return "", fmt.Errorf("marshal baseline: %w", err)
	}
	if err := os.WriteFile(filepath.Join(f.Dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write baseline file: %w", err)
	}
	return name, nil
}
