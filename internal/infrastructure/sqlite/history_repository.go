package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/ncomes/MechanicalArt-sub001/internal/domain/history"
)

const historyColumns = `id, rig_name, rig_file, version, action, built, skipped, failed, document, created_at`

type historyRepository struct {
	db *sql.DB
}

func newHistoryRepository(db *sql.DB) *historyRepository {
	return &historyRepository{db: db}
}

var _ history.Repository = (*historyRepository)(nil)

func scanHistory(scanner interface{ Scan(...any) error }) (*HistoryModel, error) {
	var m HistoryModel
	err := scanner.Scan(
		&m.ID, &m.RigName, &m.RigFile, &m.Version, &m.Action,
		&m.Built, &m.Skipped, &m.Failed, &m.Document, &m.CreatedAt,
	)
	return &m, err
}

// Save inserts a record.
func (r *historyRepository) Save(rec *history.Record) error {
	m := toHistoryModel(rec)
	_, err := r.db.Exec(
		`INSERT INTO build_history (`+historyColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.RigName, m.RigFile, m.Version, m.Action,
		m.Built, m.Skipped, m.Failed, m.Document, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert history record: %w", err)
	}
	return nil
}

// Get returns the record with id.
func (r *historyRepository) Get(id string) (*history.Record, error) {
	row := r.db.QueryRow(`SELECT `+historyColumns+` FROM build_history WHERE id = ?`, id)
	m, err := scanHistory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &history.RecordNotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get history record: %w", err)
	}
	return m.toDomain(), nil
}

// List returns records newest first, ties broken by insertion order.
func (r *historyRepository) List(rigName string, limit int) ([]*history.Record, error) {
	query := `SELECT ` + historyColumns + ` FROM build_history`
	var args []any
	if rigName != "" {
		query += ` WHERE rig_name = ?`
		args = append(args, rigName)
	}
	query += ` ORDER BY created_at DESC, rowid DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*history.Record
	for rows.Next() {
		m, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		out = append(out, m.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}
	return out, nil
}

// Latest returns the newest record of rigName.
func (r *historyRepository) Latest(rigName string) (*history.Record, error) {
	recs, err := r.List(rigName, 1)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, &history.RecordNotFoundError{RigName: rigName}
	}
	return recs[0], nil
}

// Prune keeps the newest keep records of rigName.
func (r *historyRepository) Prune(rigName string, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	result, err := r.db.Exec(
		`DELETE FROM build_history WHERE rig_name = ? AND id NOT IN (
			SELECT id FROM build_history WHERE rig_name = ?
			ORDER BY created_at DESC, rowid DESC LIMIT ?
		)`,
		rigName, rigName, keep,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(n), nil
}
