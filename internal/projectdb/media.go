package projectdb

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"cutroom/internal/failure"
	"cutroom/internal/sqlitedb"
)

const mediaColumns = "id, file_name, file_path, file_type, duration, metadata, created_at, modified_at"

func scanMedia(scanner interface{ Scan(dest ...any) error }) (*MediaFile, error) {
	var (
		media       MediaFile
		fileType    string
		duration    sql.NullFloat64
		metadata    sql.NullString
		createdRaw  sql.NullString
		modifiedRaw sql.NullString
	)
	if err := scanner.Scan(&media.ID, &media.FileName, &media.FilePath, &fileType, &duration, &metadata, &createdRaw, &modifiedRaw); err != nil {
		return nil, err
	}
	media.FileType = FileType(fileType)
	media.Duration = sqlitedb.FloatPtr(duration)
	media.Metadata = sqlitedb.DecodeMap(metadata.String)
	media.CreatedAt = sqlitedb.ParseNullTime(createdRaw)
	media.ModifiedAt = sqlitedb.ParseNullTime(modifiedRaw)
	return &media, nil
}

// AddMediaFile records a media file and returns the stored record. The file
// itself must already be in place; the store only keeps metadata. The insert
// and the read-back share one transaction, so a record is either stored and
// returned or not stored at all.
func (s *Store) AddMediaFile(ctx context.Context, in MediaInput) (*MediaFile, error) {
	if strings.TrimSpace(in.FileName) == "" {
		return nil, failure.Wrap(failure.ErrInvalidInput, "add media", "file name is empty", nil)
	}
	fileType := in.FileType
	if fileType == "" {
		fileType = InferFileType(in.FileName)
	}
	if !fileType.Valid() {
		return nil, failure.Wrap(failure.ErrInvalidInput, "add media", "unknown file type "+string(fileType), nil)
	}
	if in.Duration != nil && *in.Duration < 0 {
		return nil, failure.Wrap(failure.ErrInvalidInput, "add media", "duration is negative", nil)
	}
	metadata, err := sqlitedb.EncodeMap(in.Metadata)
	if err != nil {
		return nil, failure.Wrap(failure.ErrInvalidInput, "add media", "metadata", err)
	}

	stamp := sqlitedb.FormatTime(s.clock.Now())
	var media *MediaFile
	err = sqlitedb.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO media_files (file_name, file_path, file_type, duration, metadata, created_at, modified_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			in.FileName, in.FilePath, string(fileType), sqlitedb.NullableFloat(in.Duration), metadata, stamp, stamp,
		)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		media, err = scanMedia(tx.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media_files WHERE id = ?`, id))
		return err
	})
	if err != nil {
		return nil, failure.Wrap(failure.ErrStorage, "add media", "insert media file", err)
	}
	return media, nil
}

// GetMediaFile fetches one media file.
func (s *Store) GetMediaFile(ctx context.Context, id int64) (*MediaFile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media_files WHERE id = ?`, id)
	media, err := scanMedia(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, failure.NotFound("get media", "media file", id)
	}
	if err != nil {
		return nil, failure.Wrap(failure.ErrStorage, "get media", "query media file", err)
	}
	return media, nil
}

// ListMediaFiles returns every media file, newest first.
func (s *Store) ListMediaFiles(ctx context.Context) ([]*MediaFile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+mediaColumns+` FROM media_files ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, failure.Wrap(failure.ErrStorage, "list media", "query media files", err)
	}
	defer rows.Close()

	var files []*MediaFile
	for rows.Next() {
		media, err := scanMedia(rows)
		if err != nil {
			return nil, failure.Wrap(failure.ErrStorage, "list media", "scan media file", err)
		}
		files = append(files, media)
	}
	if err := rows.Err(); err != nil {
		return nil, failure.Wrap(failure.ErrStorage, "list media", "iterate media files", err)
	}
	return files, nil
}

// UpdateMediaMetadata replaces the metadata map of a media file.
func (s *Store) UpdateMediaMetadata(ctx context.Context, id int64, metadata map[string]any) error {
	encoded, err := sqlitedb.EncodeMap(metadata)
	if err != nil {
		return failure.Wrap(failure.ErrInvalidInput, "update media", "metadata", err)
	}
	res, err := sqlitedb.Exec(ctx, s.db,
		`UPDATE media_files SET metadata = ?, modified_at = ? WHERE id = ?`,
		encoded, sqlitedb.FormatTime(s.clock.Now()), id,
	)
	if err != nil {
		return failure.Wrap(failure.ErrStorage, "update media", "update media file", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return failure.Wrap(failure.ErrStorage, "update media", "rows affected", err)
	}
	if affected == 0 {
		return failure.NotFound("update media", "media file", id)
	}
	return nil
}

// DeleteMediaFile removes a media file together with its placements and
// their effects. It returns the deleted record so the caller can remove the
// physical file.
func (s *Store) DeleteMediaFile(ctx context.Context, id int64) (*MediaFile, error) {
	var deleted *MediaFile
	err := sqlitedb.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		media, err := scanMedia(tx.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media_files WHERE id = ?`, id))
		if errors.Is(err, sql.ErrNoRows) {
			return failure.NotFound("delete media", "media file", id)
		}
		if err != nil {
			return err
		}

		placementIDs, err := queryIDs(ctx, tx, `SELECT id FROM timeline WHERE media_id = ?`, id)
		if err != nil {
			return err
		}
		for _, placementID := range placementIDs {
			if _, err := tx.ExecContext(ctx, `DELETE FROM effects WHERE timeline_id = ?`, placementID); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM timeline WHERE media_id = ?`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM media_files WHERE id = ?`, id); err != nil {
			return err
		}
		deleted = media
		return nil
	})
	if err != nil {
		return nil, storageErr("delete media", "cascade delete", err)
	}
	return deleted, nil
}

func queryIDs(ctx context.Context, tx *sql.Tx, query string, args ...any) ([]int64, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
