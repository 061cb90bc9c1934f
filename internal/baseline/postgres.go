package baseline

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// PostgresStore is an alternate backend storing the same logical records in
// a "baselines" table, for teams centralizing baseline history instead of
// committing YAML files alongside test code (spec.md §4.4's storage
// concerns generalized beyond "file-based"). The row's "body" column holds
// the canonical YAML encoding, so FileStore and PostgresStore stay
// byte-for-byte interchangeable on read.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore wraps an already-open *sqlx.DB. Schema:
//
//	CREATE TABLE baselines (
//	    filename TEXT PRIMARY KEY,
//	    use_case_id TEXT NOT NULL,
//	    method TEXT NOT NULL,
//	    generated_at TIMESTAMPTZ NOT NULL,
//	    footprint_hash TEXT NOT NULL,
//	    body TEXT NOT NULL
//	);
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type baselineRow struct {
	Filename    string `db:"filename"`
	UseCaseID   string `db:"use_case_id"`
	Method      string `db:"method"`
	Body        string `db:"body"`
}

func (p *PostgresStore) ListCandidates(ctx context.Context, useCaseID, method string) ([]Candidate, error) {
	var rows []baselineRow
	err := p.db.SelectContext(ctx, &rows,
		`SELECT filename, use_case_id, method, body FROM baselines WHERE use_case_id = $1 AND method = $2`,
		useCaseID, method)
	if err != nil {
		return nil, fmt.Errorf("list baselines: %w", err)
	}

	candidates := make([]Candidate, 0, len(rows))
	for _, r := range rows {
		parsed, err := ParseFilename(r.Filename)
		if err != nil {
			continue
		}
		candidates = append(candidates, Candidate{Filename: r.Filename, Parsed: parsed})
	}
	return candidates, nil
}

func (p *PostgresStore) Load(ctx context.Context, filename string) (*Baseline, error) {
	var row baselineRow
	if err := p.db.GetContext(ctx, &row, `SELECT filename, use_case_id, method, body FROM baselines WHERE filename = $1`, filename); err != nil {
		return nil, fmt.Errorf("load baseline %s: %w", filename, err)
	}
	return UnmarshalYAML([]byte(row.Body))
}

func (p *PostgresStore) Put(ctx context.Context, b *Baseline) (string, error) {
	name := CanonicalFilename(b.UseCaseID, b.ExperimentMethod, b.GeneratedAt, b.FootprintHash, b.CovariateValueHashes)
	data, err := MarshalYAML(b)
	if err != nil {
		return "", fmt.Errorf("marshal baseline: %w", err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO baselines (filename, use_case_id, method, generated_at, footprint_hash, body)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (filename) DO UPDATE SET body = EXCLUDED.body, generated_at = EXCLUDED.generated_at`,
		name, b.UseCaseID, b.ExperimentMethod, b.GeneratedAt, b.FootprintHash, string(data))
	if err != nil {
		return "", fmt.Errorf("upsert baseline: %w", err)
	}
	return name, nil
}
