// Package history records the outcome of rig builds so previous documents
// can be listed and restored.
package history

import (
	"time"

	"github.com/google/uuid"
)

// Action names what produced a record.
type Action string

const (
	ActionBuild  Action = "build"
	ActionSave   Action = "save"
	ActionReload Action = "reload"
	ActionCheck  Action = "check"
)

// Record is one build or save of a rig document.
type Record struct {
	id        string
	rigName   string
	rigFile   string
	version   float64
	action    Action
	built     int
	skipped   int
	failed    int
	document  string
	createdAt time.Time
}

// NewRecord creates a record with a fresh id stamped now. document is the
// serialized rig document the build ran against.
func NewRecord(rigName string, action Action, version float64, document string) *Record {
	return &Record{
		id:        uuid.New().String(),
		rigName:   rigName,
		action:    action,
		version:   version,
		document:  document,
		createdAt: time.Now(),
	}
}

// Reconstruct rebuilds a record from persisted fields.
func Reconstruct(id, rigName, rigFile string, version float64, action Action, built, skipped, failed int, document string, createdAt time.Time) *Record {
	return &Record{
		id:        id,
		rigName:   rigName,
		rigFile:   rigFile,
		version:   version,
		action:    action,
		built:     built,
		skipped:   skipped,
		failed:    failed,
		document:  document,
		createdAt: createdAt,
	}
}

func (r *Record) ID() string           { return r.id }
func (r *Record) RigName() string      { return r.rigName }
func (r *Record) RigFile() string      { return r.rigFile }
func (r *Record) Version() float64     { return r.version }
func (r *Record) Action() Action       { return r.action }
func (r *Record) Built() int           { return r.built }
func (r *Record) Skipped() int         { return r.skipped }
func (r *Record) Failed() int          { return r.failed }
func (r *Record) Document() string     { return r.document }
func (r *Record) CreatedAt() time.Time { return r.createdAt }

// WithFile sets the rig file the document was loaded from or saved to.
func (r *Record) WithFile(file string) *Record {
	r.rigFile = file
	return r
}

// WithCounts sets the build outcome counters.
func (r *Record) WithCounts(built, skipped, failed int) *Record {
	r.built, r.skipped, r.failed = built, skipped, failed
	return r
}

// OK reports whether the build had no failures.
func (r *Record) OK() bool { return r.failed == 0 }
