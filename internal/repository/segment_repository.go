package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noznum/tracklab/internal/database"
	"github.com/noznum/tracklab/internal/models"
)

// SegmentRepository handles the catalog of saved segments
type SegmentRepository struct {
	db *sql.DB
}

// NewSegmentRepository creates a new segment repository
func NewSegmentRepository(db *sql.DB) *SegmentRepository {
	return &SegmentRepository{db: db}
}

// SaveSegment records a saved segment. UUID and CreatedAt are filled in when
// empty, and ID is set from the inserted row.
func (r *SegmentRepository) SaveSegment(entry *models.SegmentEntry) error {
	if entry.UUID == "" {
		entry.UUID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	statsJSON, err := json.Marshal(entry.Stats)
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}

	return database.Transaction(r.db, func(tx *sql.Tx) error {
		result, err := tx.Exec(`INSERT INTO segments (
			uuid, label, file_name, dir_name, start_row, end_row,
			segment_path, distance, duration, stats_json, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			entry.UUID, entry.Label, entry.FileName, entry.DirName, entry.StartRow, entry.EndRow,
			entry.SegmentPath, entry.Distance, entry.Duration, string(statsJSON), entry.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert segment: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get segment id: %w", err)
		}
		entry.ID = id
		return nil
	})
}

// GetSegments retrieves saved segments with filtering and pagination
func (r *SegmentRepository) GetSegments(filter models.SegmentFilter) ([]models.SegmentEntry, int64, error) {
	query := `SELECT id, uuid, label, file_name, dir_name, start_row, end_row,
		segment_path, distance, duration, stats_json, created_at
		FROM segments`

	var conditions []string
	var args []interface{}

	if filter.Label != "" {
		conditions = append(conditions, "label = ?")
		args = append(args, filter.Label)
	}
	if filter.FileName != "" {
		conditions = append(conditions, "file_name = ?")
		args = append(args, filter.FileName)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM segments"
	if len(conditions) > 0 {
		countQuery += " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count segments: %w", err)
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 100
	}
	if filter.PageSize > 1000 {
		filter.PageSize = 1000
	}

	offset := (filter.Page - 1) * filter.PageSize
	query += " ORDER BY id DESC LIMIT ? OFFSET ?"
	args = append(args, filter.PageSize, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query segments: %w", err)
	}
	defer rows.Close()

	segments := []models.SegmentEntry{}
	for rows.Next() {
		var s models.SegmentEntry
		var statsJSON string
		err := rows.Scan(
			&s.ID, &s.UUID, &s.Label, &s.FileName, &s.DirName, &s.StartRow, &s.EndRow,
			&s.SegmentPath, &s.Distance, &s.Duration, &statsJSON, &s.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan segment: %w", err)
		}
		if err := json.Unmarshal([]byte(statsJSON), &s.Stats); err != nil {
			return nil, 0, fmt.Errorf("failed to decode stats of segment %d: %w", s.ID, err)
		}
		segments = append(segments, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate segments: %w", err)
	}

	return segments, total, nil
}

// GetSegmentByUUID retrieves one saved segment, nil when absent
func (r *SegmentRepository) GetSegmentByUUID(id string) (*models.SegmentEntry, error) {
	var s models.SegmentEntry
	var statsJSON string
	err := r.db.QueryRow(`SELECT id, uuid, label, file_name, dir_name, start_row, end_row,
		segment_path, distance, duration, stats_json, created_at
		FROM segments WHERE uuid = ?`, id).Scan(
		&s.ID, &s.UUID, &s.Label, &s.FileName, &s.DirName, &s.StartRow, &s.EndRow,
		&s.SegmentPath, &s.Distance, &s.Duration, &statsJSON, &s.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get segment: %w", err)
	}
	if err := json.Unmarshal([]byte(statsJSON), &s.Stats); err != nil {
		return nil, fmt.Errorf("failed to decode stats of segment %s: %w", id, err)
	}
	return &s, nil
}
