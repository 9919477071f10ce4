package engine

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/muni-codes/internal/registry"
)

// ResolutionEngine ties the in-memory pipeline to postgres: it loads the
// source rows and registry, runs the resolver, and persists the output
// with per-run bookkeeping.
type ResolutionEngine struct {
	db *sql.DB
}

// NewResolutionEngine creates an engine over an open database.
func NewResolutionEngine(db *sql.DB) *ResolutionEngine {
	return &ResolutionEngine{db: db}
}

// Run is one resolution run record.
type Run struct {
	RunID            int64
	Label            string
	AlgorithmVersion string
	Notes            string
	StartedAt        time.Time
	CompletedAt      *time.Time
	TotalProcessed   int
	TotalResolved    int
	TotalUnresolved  int
}

// Summary reports what a completed run did.
type Summary struct {
	RunID      int64
	Processed  int
	Resolved   int
	Unresolved int
	ByMethod   map[string]int
	Elapsed    time.Duration
}

// CreateRun inserts a new resolution run record.
func (e *ResolutionEngine) CreateRun(label, algorithmVersion, notes string) (*Run, error) {
	run := &Run{
		Label:            label,
		AlgorithmVersion: algorithmVersion,
		Notes:            notes,
		StartedAt:        time.Now(),
	}

	err := e.db.QueryRow(`
		INSERT INTO resolution_run (run_label, algorithm_version, notes, run_started_at)
		VALUES ($1, $2, $3, $4)
		RETURNING run_id
	`, label, algorithmVersion, notes, run.StartedAt).Scan(&run.RunID)
	if err != nil {
		return nil, fmt.Errorf("failed to create resolution run: %w", err)
	}

	fmt.Printf("Created resolution run %d: %s\n", run.RunID, label)
	return run, nil
}

// CompleteRun marks a run finished with its totals.
func (e *ResolutionEngine) CompleteRun(runID int64, processed, resolved, unresolved int) error {
	_, err := e.db.Exec(`
		UPDATE resolution_run
		SET run_completed_at = $1, total_processed = $2, total_resolved = $3, total_unresolved = $4
		WHERE run_id = $5
	`, time.Now(), processed, resolved, unresolved, runID)
	if err != nil {
		return fmt.Errorf("failed to complete resolution run: %w", err)
	}

	fmt.Printf("Completed resolution run %d: processed=%d, resolved=%d, unresolved=%d\n",
		runID, processed, resolved, unresolved)
	return nil
}

// LoadSourceReferences reads the distinct (name, province, code) triples
// from the SEPE source table. NULL codes come back as 0, the pipeline's
// "absent" sentinel.
func (e *ResolutionEngine) LoadSourceReferences() ([]RawPlaceReference, error) {
	rows, err := e.db.Query(`
		SELECT DISTINCT municipality_name, province, COALESCE(municipality_code, 0)
		FROM sepe_municipality_data
		ORDER BY municipality_name, province
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query source references: %w", err)
	}
	defer rows.Close()

	var refs []RawPlaceReference
	for rows.Next() {
		var ref RawPlaceReference
		if err := rows.Scan(&ref.RawName, &ref.RawProvince, &ref.MunicipalityCode); err != nil {
			return nil, fmt.Errorf("failed to scan source reference: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read source references: %w", err)
	}

	return refs, nil
}

// SaveMatches upserts the resolved output. Unresolved keys are written
// with a NULL municipality_code so consumers can tell "known-unresolved"
// from "never attempted".
func (e *ResolutionEngine) SaveMatches(runID int64, matches []ResolvedMatch) error {
	stmt, err := e.db.Prepare(`
		INSERT INTO municipality_code_match (raw_name, raw_province, municipality_code, method, confidence, run_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (raw_name, raw_province) DO UPDATE SET
			municipality_code = EXCLUDED.municipality_code,
			method = EXCLUDED.method,
			confidence = EXCLUDED.confidence,
			run_id = EXCLUDED.run_id,
			resolved_at = now()
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare match insert: %w", err)
	}
	defer stmt.Close()

	saved := 0
	for _, m := range matches {
		code := sql.NullInt64{Int64: int64(m.MunicipalityCode), Valid: m.MunicipalityCode != 0}
		if _, err := stmt.Exec(m.RawName, m.RawProvince, code, m.Method, m.Confidence, runID); err != nil {
			return fmt.Errorf("failed to save match for %q/%q: %w", m.RawName, m.RawProvince, err)
		}
		saved++
		if saved%1000 == 0 {
			fmt.Printf("Saved %d matches...\n", saved)
		}
	}

	return nil
}

// RunResolution performs a complete batch: load registry and sources,
// resolve, persist, and close out the run record.
func (e *ResolutionEngine) RunResolution(label string, workers, minConfidence int) (*Summary, error) {
	start := time.Now()

	if label == "" {
		label = fmt.Sprintf("resolve-%d", start.Unix())
	}

	reg, err := registry.LoadFromDB(e.db)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}
	fmt.Printf("Loaded registry: %d municipalities, %d provinces\n", reg.Len(), len(reg.Provinces()))

	refs, err := e.LoadSourceReferences()
	if err != nil {
		return nil, err
	}
	fmt.Printf("Loaded %d distinct source references\n", len(refs))

	run, err := e.CreateRun(label, "v1.0", fmt.Sprintf("Batch resolution: %d workers, confidence floor %d", workers, minConfidence))
	if err != nil {
		return nil, err
	}

	resolver := NewResolver(reg)
	if workers > 0 {
		resolver.Workers = workers
	}
	if minConfidence > 0 {
		resolver.MinConfidence = minConfidence
	}

	matches := resolver.Resolve(refs)

	if err := e.SaveMatches(run.RunID, matches); err != nil {
		return nil, err
	}

	summary := &Summary{
		RunID:    run.RunID,
		ByMethod: make(map[string]int),
	}
	for _, m := range matches {
		summary.Processed++
		summary.ByMethod[m.Method]++
		if m.Resolved() {
			summary.Resolved++
		} else {
			summary.Unresolved++
		}
	}
	summary.Elapsed = time.Since(start)

	if err := e.CompleteRun(run.RunID, summary.Processed, summary.Resolved, summary.Unresolved); err != nil {
		return nil, err
	}

	return summary, nil
}

// CoverageByMethod returns match counts per method for a run; runID 0
// means the most recent run.
func (e *ResolutionEngine) CoverageByMethod(runID int64) (map[string]int, error) {
	if runID == 0 {
		err := e.db.QueryRow(`SELECT COALESCE(MAX(run_id), 0) FROM resolution_run`).Scan(&runID)
		if err != nil {
			return nil, fmt.Errorf("failed to find latest run: %w", err)
		}
		if runID == 0 {
			return map[string]int{}, nil
		}
	}

	rows, err := e.db.Query(`
		SELECT method, COUNT(*)
		FROM municipality_code_match
		WHERE run_id = $1
		GROUP BY method
		ORDER BY COUNT(*) DESC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query coverage: %w", err)
	}
	defer rows.Close()

	coverage := make(map[string]int)
	for rows.Next() {
		var method string
		var count int
		if err := rows.Scan(&method, &count); err != nil {
			return nil, fmt.Errorf("failed to scan coverage row: %w", err)
		}
		coverage[method] = count
	}
	return coverage, rows.Err()
}
