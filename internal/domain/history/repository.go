package history

import "fmt"

// Repository persists build records.
type Repository interface {
	// Save inserts the record. Records are immutable once saved.
	Save(rec *Record) error

	// Get returns the record with id.
	// Returns RecordNotFoundError if no record matches.
	Get(id string) (*Record, error)

	// List returns records newest first. An empty rigName lists every rig;
	// a limit of 0 applies no limit.
	List(rigName string, limit int) ([]*Record, error)

	// Latest returns the newest record for rigName.
	// Returns RecordNotFoundError if the rig has no history.
	Latest(rigName string) (*Record, error)

	// Prune deletes all but the newest keep records of rigName and
	// returns how many were removed.
	Prune(rigName string, keep int) (int, error)
}

// RecordNotFoundError is returned when a lookup matches no record.
type RecordNotFoundError struct {
	ID      string
	RigName string
}

func (e *RecordNotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("history record not found: %s", e.ID)
	}
	return fmt.Sprintf("no history for rig: %s", e.RigName)
}
