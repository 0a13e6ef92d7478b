package projectdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cutroom/internal/failure"
	"cutroom/internal/sqlitedb"
)

const placementQuery = `SELECT t.id, t.media_id, t.start_time, t.end_time, t.track_number, t.position,
       t.created_at, t.modified_at, m.file_name, m.file_type, m.duration
FROM timeline t
JOIN media_files m ON m.id = t.media_id`

func scanPlacement(scanner interface{ Scan(dest ...any) error }) (*Placement, error) {
	var (
		p           Placement
		createdRaw  sql.NullString
		modifiedRaw sql.NullString
		fileType    string
		duration    sql.NullFloat64
	)
	if err := scanner.Scan(&p.ID, &p.MediaID, &p.StartTime, &p.EndTime, &p.TrackNumber, &p.Position,
		&createdRaw, &modifiedRaw, &p.FileName, &fileType, &duration); err != nil {
		return nil, err
	}
	p.CreatedAt = sqlitedb.ParseNullTime(createdRaw)
	p.ModifiedAt = sqlitedb.ParseNullTime(modifiedRaw)
	p.FileType = FileType(fileType)
	p.MediaDuration = sqlitedb.FloatPtr(duration)
	return &p, nil
}

func validatePlacement(in PlacementInput) error {
	switch {
	case in.TrackNumber < 0:
		return failure.Wrap(failure.ErrInvalidInput, "add placement", fmt.Sprintf("track number %d is negative", in.TrackNumber), nil)
	case in.StartTime < 0 || in.EndTime < 0:
		return failure.Wrap(failure.ErrInvalidInput, "add placement", "trim window is negative", nil)
	case in.EndTime < in.StartTime:
		return failure.Wrap(failure.ErrInvalidInput, "add placement", "end time precedes start time", nil)
	case in.Position < 0:
		return failure.Wrap(failure.ErrInvalidInput, "add placement", "position is negative", nil)
	}
	return nil
}

// AddPlacement puts a window of a media file on a track and returns the new
// placement id.
func (s *Store) AddPlacement(ctx context.Context, in PlacementInput) (int64, error) {
	if err := validatePlacement(in); err != nil {
		return 0, err
	}
	var id int64
	err := sqlitedb.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM media_files WHERE id = ?`, in.MediaID).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return failure.NotFound("add placement", "media file", in.MediaID)
		}
		stamp := sqlitedb.FormatTime(s.clock.Now())
		res, err := tx.ExecContext(ctx,
			`INSERT INTO timeline (media_id, start_time, end_time, track_number, position, created_at, modified_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			in.MediaID, in.StartTime, in.EndTime, in.TrackNumber, in.Position, stamp, stamp,
		)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, storageErr("add placement", "insert placement", err)
	}
	return id, nil
}

// GetPlacement fetches one placement with its media columns.
func (s *Store) GetPlacement(ctx context.Context, id int64) (*Placement, error) {
	placement, err := scanPlacement(s.db.QueryRowContext(ctx, placementQuery+` WHERE t.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, failure.NotFound("get placement", "timeline placement", id)
	}
	if err != nil {
		return nil, failure.Wrap(failure.ErrStorage, "get placement", "query placement", err)
	}
	return placement, nil
}

// ListPlacements returns the timeline in render order: track_number, then
// position.
func (s *Store) ListPlacements(ctx context.Context) ([]*Placement, error) {
	rows, err := s.db.QueryContext(ctx, placementQuery+` ORDER BY t.track_number ASC, t.position ASC, t.id ASC`)
	if err != nil {
		return nil, failure.Wrap(failure.ErrStorage, "list placements", "query timeline", err)
	}
	defer rows.Close()

	var placements []*Placement
	for rows.Next() {
		placement, err := scanPlacement(rows)
		if err != nil {
			return nil, failure.Wrap(failure.ErrStorage, "list placements", "scan placement", err)
		}
		placements = append(placements, placement)
	}
	if err := rows.Err(); err != nil {
		return nil, failure.Wrap(failure.ErrStorage, "list placements", "iterate timeline", err)
	}
	return placements, nil
}

// DeletePlacement removes a placement and its effects.
func (s *Store) DeletePlacement(ctx context.Context, id int64) error {
	err := sqlitedb.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM effects WHERE timeline_id = ?`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM timeline WHERE id = ?`, id)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return failure.NotFound("delete placement", "timeline placement", id)
		}
		return nil
	})
	return storageErr("delete placement", "cascade delete", err)
}
