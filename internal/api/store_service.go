package api

import (
	"context"
	"fmt"
	"strings"

	"cutroom/internal/failure"
	"cutroom/internal/projectdb"
)

// ImportMedia copies a file into the project's sources and records it.
func (s *ProjectService) ImportMedia(ctx context.Context, id int64, path string) Result {
	media, err := s.manager.ImportMedia(ctx, id, path)
	if err != nil {
		return failed(err)
	}
	result := succeeded(media.ID, fmt.Sprintf("Imported %s as %s", media.FileName, media.FileType))
	result.Path = media.FilePath
	return result
}

// ListMedia returns the project's media, newest first.
func (s *ProjectService) ListMedia(ctx context.Context, id int64) ([]MediaFile, error) {
	var media []*projectdb.MediaFile
	err := s.manager.WithStore(ctx, id, func(store *projectdb.Store) error {
		var err error
		media, err = store.ListMediaFiles(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return convertAll(media, FromMediaFile), nil
}

// RemoveMedia deletes a media record with its placements and effects, and
// optionally the file under sources/.
func (s *ProjectService) RemoveMedia(ctx context.Context, id, mediaID int64, deleteFile bool) Result {
	if err := s.manager.RemoveMedia(ctx, id, mediaID, deleteFile); err != nil {
		return failed(err)
	}
	return succeeded(mediaID, "Media removed")
}

// AddPlacement places a media window on the timeline.
func (s *ProjectService) AddPlacement(ctx context.Context, id int64, req PlacementRequest) Result {
	var placementID int64
	err := s.manager.UpdateStore(ctx, id, func(store *projectdb.Store) error {
		var err error
		placementID, err = store.AddPlacement(ctx, projectdb.PlacementInput{
			MediaID:     req.MediaID,
			StartTime:   req.StartTime,
			EndTime:     req.EndTime,
			TrackNumber: req.TrackNumber,
			Position:    req.Position,
		})
		return err
	})
	if err != nil {
		return failed(err)
	}
	return succeeded(placementID, fmt.Sprintf("Placed media %d on track %d", req.MediaID, req.TrackNumber))
}

// ListPlacements returns the project's timeline ordered by track and position.
func (s *ProjectService) ListPlacements(ctx context.Context, id int64) ([]Placement, error) {
	var placements []*projectdb.Placement
	err := s.manager.WithStore(ctx, id, func(store *projectdb.Store) error {
		var err error
		placements, err = store.ListPlacements(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return convertAll(placements, FromPlacement), nil
}

// RemovePlacement deletes a placement and its effects.
func (s *ProjectService) RemovePlacement(ctx context.Context, id, placementID int64) Result {
	err := s.manager.UpdateStore(ctx, id, func(store *projectdb.Store) error {
		return store.DeletePlacement(ctx, placementID)
	})
	if err != nil {
		return failed(err)
	}
	return succeeded(placementID, "Timeline placement removed")
}

// AddEffect attaches an effect to a placement.
func (s *ProjectService) AddEffect(ctx context.Context, id int64, req EffectRequest) Result {
	var effectID int64
	err := s.manager.UpdateStore(ctx, id, func(store *projectdb.Store) error {
		var err error
		effectID, err = store.AddEffect(ctx, projectdb.EffectInput{
			TimelineID: req.PlacementID,
			EffectType: req.EffectType,
			Parameters: req.Parameters,
			StartTime:  req.StartTime,
			EndTime:    req.EndTime,
		})
		return err
	})
	if err != nil {
		return failed(err)
	}
	return succeeded(effectID, fmt.Sprintf("Added %s effect", strings.TrimSpace(req.EffectType)))
}

// ListEffects returns a placement's effects ordered by start time.
func (s *ProjectService) ListEffects(ctx context.Context, id, placementID int64) ([]Effect, error) {
	var effects []*projectdb.Effect
	err := s.manager.WithStore(ctx, id, func(store *projectdb.Store) error {
		var err error
		effects, err = store.ListEffects(ctx, placementID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return convertAll(effects, FromEffect), nil
}

// RemoveEffect deletes one effect.
func (s *ProjectService) RemoveEffect(ctx context.Context, id, effectID int64) Result {
	err := s.manager.UpdateStore(ctx, id, func(store *projectdb.Store) error {
		return store.DeleteEffect(ctx, effectID)
	})
	if err != nil {
		return failed(err)
	}
	return succeeded(effectID, "Effect removed")
}

// StoreSettings returns the project-local key/value settings.
func (s *ProjectService) StoreSettings(ctx context.Context, id int64) (map[string]string, error) {
	var settings map[string]string
	err := s.manager.WithStore(ctx, id, func(store *projectdb.Store) error {
		var err error
		settings, err = store.Settings(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// SetStoreSetting upserts one project-local setting.
func (s *ProjectService) SetStoreSetting(ctx context.Context, id int64, key, value string) Result {
	key = strings.TrimSpace(key)
	if key == "" {
		return failed(failure.Wrap(failure.ErrInvalidInput, "set setting", "key is required", nil))
	}
	err := s.manager.UpdateStore(ctx, id, func(store *projectdb.Store) error {
		return store.SetSetting(ctx, key, value)
	})
	if err != nil {
		return failed(err)
	}
	return succeeded(id, fmt.Sprintf("Set %s = %s", key, value))
}
