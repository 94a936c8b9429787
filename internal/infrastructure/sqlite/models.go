package sqlite

import (
	"time"

	"github.com/ncomes/MechanicalArt-sub001/internal/domain/history"
)

// HistoryModel is the row shape of build_history. CreatedAt is Unix milliseconds.
type HistoryModel struct {
	ID        string
	RigName   string
	RigFile   string
	Version   float64
	Action    string
	Built     int
	Skipped   int
	Failed    int
	Document  string
	CreatedAt int64
}

func toHistoryModel(r *history.Record) *HistoryModel {
	return &HistoryModel{
		ID:        r.ID(),
		RigName:   r.RigName(),
		RigFile:   r.RigFile(),
		Version:   r.Version(),
		Action:    string(r.Action()),
		Built:     r.Built(),
		Skipped:   r.Skipped(),
		Failed:    r.Failed(),
		Document:  r.Document(),
		CreatedAt: r.CreatedAt().UnixMilli(),
	}
}

func (m *HistoryModel) toDomain() *history.Record {
	return history.Reconstruct(
		m.ID, m.RigName, m.RigFile, m.Version, history.Action(m.Action),
		m.Built, m.Skipped, m.Failed, m.Document, time.UnixMilli(m.CreatedAt),
	)
}
