package projectdb

import (
	"context"
	"database/sql"

	"cutroom/internal/failure"
	"cutroom/internal/sqlitedb"
)

// Stats counts the store's contents.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{MediaByType: make(map[FileType]int, 4)}
	for _, t := range FileTypes() {
		stats.MediaByType[t] = 0
	}

	rows, err := s.db.QueryContext(ctx, `SELECT file_type, COUNT(1), COALESCE(SUM(duration), 0) FROM media_files GROUP BY file_type`)
	if err != nil {
		return stats, failure.Wrap(failure.ErrStorage, "stats", "count media", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			fileType string
			count    int
			duration float64
		)
		if err := rows.Scan(&fileType, &count, &duration); err != nil {
			return stats, failure.Wrap(failure.ErrStorage, "stats", "scan media counts", err)
		}
		stats.MediaByType[FileType(fileType)] = count
		stats.TotalMedia += count
		stats.TotalDuration += duration
	}
	if err := rows.Err(); err != nil {
		return stats, failure.Wrap(failure.ErrStorage, "stats", "iterate media counts", err)
	}

	var oldest, newest sql.NullString
	row := s.db.QueryRowContext(ctx, `SELECT MIN(created_at), MAX(modified_at) FROM media_files`)
	if err := row.Scan(&oldest, &newest); err != nil {
		return stats, failure.Wrap(failure.ErrStorage, "stats", "media age", err)
	}
	stats.OldestMedia = sqlitedb.ParseNullTime(oldest)
	stats.NewestMedia = sqlitedb.ParseNullTime(newest)

	row = s.db.QueryRowContext(ctx, `SELECT COUNT(1), COUNT(DISTINCT track_number) FROM timeline`)
	if err := row.Scan(&stats.Placements, &stats.Tracks); err != nil {
		return stats, failure.Wrap(failure.ErrStorage, "stats", "count placements", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM effects`).Scan(&stats.Effects); err != nil {
		return stats, failure.Wrap(failure.ErrStorage, "stats", "count effects", err)
	}
	return stats, nil
}
