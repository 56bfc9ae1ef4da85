// Package resultstore persists solver results for later inspection,
// independent of the in-process generic Result type: facts and values are
// serialized to strings by the caller before storage.
package resultstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested run has no stored facts.
var ErrNotFound = errors.New("resultstore: not found")

// FactRecord is one (node, fact) -> value entry from a completed or
// incremental solver run, with node/fact/value already rendered to
// strings by the caller (typically via fmt.Sprintf or json.Marshal,
// whichever the client's N/D/V types support).
type FactRecord struct {
	RunID string
	Node  string
	Fact  string
	Value string // empty when the run did not compute values
}

// Store persists and retrieves FactRecords for a solver run.
type Store interface {
	// SaveRun replaces any previously stored records for runID with
	// records.
	SaveRun(ctx context.Context, runID string, records []FactRecord) error

	// LoadRun returns every record stored for runID, in no particular
	// order. Returns ErrNotFound if runID has no stored records.
	LoadRun(ctx context.Context, runID string) ([]FactRecord, error)

	// DeleteRun removes all records for runID.
	DeleteRun(ctx context.Context, runID string) error

	Close() error
}
