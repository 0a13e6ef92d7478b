package projectdb

import (
	"context"
	"database/sql"
	"strings"

	"cutroom/internal/failure"
	"cutroom/internal/sqlitedb"
)

const effectColumns = "id, timeline_id, effect_type, parameters, start_time, end_time, created_at"

func scanEffect(scanner interface{ Scan(dest ...any) error }) (*Effect, error) {
	var (
		effect     Effect
		parameters sql.NullString
		start      sql.NullFloat64
		end        sql.NullFloat64
		createdRaw sql.NullString
	)
	if err := scanner.Scan(&effect.ID, &effect.TimelineID, &effect.EffectType, &parameters, &start, &end, &createdRaw); err != nil {
		return nil, err
	}
	effect.Parameters = sqlitedb.DecodeMap(parameters.String)
	effect.StartTime = sqlitedb.FloatPtr(start)
	effect.EndTime = sqlitedb.FloatPtr(end)
	effect.CreatedAt = sqlitedb.ParseNullTime(createdRaw)
	return &effect, nil
}

// AddEffect attaches an effect to a placement and returns its id.
func (s *Store) AddEffect(ctx context.Context, in EffectInput) (int64, error) {
	if strings.TrimSpace(in.EffectType) == "" {
		return 0, failure.Wrap(failure.ErrInvalidInput, "add effect", "effect type is empty", nil)
	}
	if in.StartTime != nil && in.EndTime != nil && *in.EndTime < *in.StartTime {
		return 0, failure.Wrap(failure.ErrInvalidInput, "add effect", "end time precedes start time", nil)
	}
	parameters, err := sqlitedb.EncodeMap(in.Parameters)
	if err != nil {
		return 0, failure.Wrap(failure.ErrInvalidInput, "add effect", "parameters", err)
	}

	var id int64
	err = sqlitedb.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM timeline WHERE id = ?`, in.TimelineID).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return failure.NotFound("add effect", "timeline placement", in.TimelineID)
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO effects (timeline_id, effect_type, parameters, start_time, end_time, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			in.TimelineID, in.EffectType, parameters,
			sqlitedb.NullableFloat(in.StartTime), sqlitedb.NullableFloat(in.EndTime),
			sqlitedb.FormatTime(s.clock.Now()),
		)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, storageErr("add effect", "insert effect", err)
	}
	return id, nil
}

// ListEffects returns the effects of one placement ordered by start time.
// Effects without a start time span the whole placement and sort first.
func (s *Store) ListEffects(ctx context.Context, timelineID int64) ([]*Effect, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+effectColumns+` FROM effects WHERE timeline_id = ? ORDER BY start_time ASC, id ASC`,
		timelineID,
	)
	if err != nil {
		return nil, failure.Wrap(failure.ErrStorage, "list effects", "query effects", err)
	}
	defer rows.Close()

	var effects []*Effect
	for rows.Next() {
		effect, err := scanEffect(rows)
		if err != nil {
			return nil, failure.Wrap(failure.ErrStorage, "list effects", "scan effect", err)
		}
		effects = append(effects, effect)
	}
	if err := rows.Err(); err != nil {
		return nil, failure.Wrap(failure.ErrStorage, "list effects", "iterate effects", err)
	}
	return effects, nil
}

// DeleteEffect removes one effect.
func (s *Store) DeleteEffect(ctx context.Context, id int64) error {
	res, err := sqlitedb.Exec(ctx, s.db, `DELETE FROM effects WHERE id = ?`, id)
	if err != nil {
		return failure.Wrap(failure.ErrStorage, "delete effect", "delete effect", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return failure.Wrap(failure.ErrStorage, "delete effect", "rows affected", err)
	}
	if affected == 0 {
		return failure.NotFound("delete effect", "effect", id)
	}
	return nil
}
