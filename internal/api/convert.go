package api

import (
	"time"

	"cutroom/internal/failure"
	"cutroom/internal/projectdb"
	"cutroom/internal/registry"
)

// FromProject converts a registry record to its API representation.
func FromProject(p *registry.Project) Project {
	if p == nil {
		return Project{}
	}
	return Project{
		ID:         p.ID,
		Name:       p.Name,
		Path:       p.Path,
		Settings:   nonNilMap(p.Settings),
		CreatedAt:  formatTime(p.CreatedAt),
		ModifiedAt: formatTime(p.ModifiedAt),
	}
}

// FromProjects converts a slice of registry records.
func FromProjects(projects []*registry.Project) []Project {
	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		if p == nil {
			continue
		}
		out = append(out, FromProject(p))
	}
	return out
}

// FromMediaFile converts a store media record.
func FromMediaFile(m *projectdb.MediaFile) MediaFile {
	if m == nil {
		return MediaFile{}
	}
	return MediaFile{
		ID:         m.ID,
		FileName:   m.FileName,
		FilePath:   m.FilePath,
		FileType:   string(m.FileType),
		Duration:   m.Duration,
		Metadata:   nonNilMap(m.Metadata),
		CreatedAt:  formatTime(m.CreatedAt),
		ModifiedAt: formatTime(m.ModifiedAt),
	}
}

// FromPlacement converts a store timeline placement.
func FromPlacement(p *projectdb.Placement) Placement {
	if p == nil {
		return Placement{}
	}
	return Placement{
		ID:            p.ID,
		MediaID:       p.MediaID,
		StartTime:     p.StartTime,
		EndTime:       p.EndTime,
		TrackNumber:   p.TrackNumber,
		Position:      p.Position,
		FileName:      p.FileName,
		FileType:      string(p.FileType),
		MediaDuration: p.MediaDuration,
		CreatedAt:     formatTime(p.CreatedAt),
	}
}

// FromEffect converts a store effect.
func FromEffect(e *projectdb.Effect) Effect {
	if e == nil {
		return Effect{}
	}
	return Effect{
		ID:         e.ID,
		TimelineID: e.TimelineID,
		EffectType: e.EffectType,
		Parameters: nonNilMap(e.Parameters),
		StartTime:  e.StartTime,
		EndTime:    e.EndTime,
		CreatedAt:  formatTime(e.CreatedAt),
	}
}

// FromStats converts store statistics; every file type is present in
// MediaByType even when its count is zero.
func FromStats(s projectdb.Stats) ProjectStats {
	byType := make(map[string]int, len(projectdb.FileTypes()))
	for _, t := range projectdb.FileTypes() {
		byType[string(t)] = s.MediaByType[t]
	}
	return ProjectStats{
		MediaByType:   byType,
		TotalMedia:    s.TotalMedia,
		TotalDuration: s.TotalDuration,
		Placements:    s.Placements,
		Effects:       s.Effects,
		Tracks:        s.Tracks,
		OldestMedia:   formatTime(s.OldestMedia),
		NewestMedia:   formatTime(s.NewestMedia),
	}
}

func convertAll[T, D any](items []*T, convert func(*T) D) []D {
	out := make([]D, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		out = append(out, convert(item))
	}
	return out
}

// failed folds err into an unsuccessful Result.
func failed(err error) Result {
	return Result{OK: false, Message: failure.Message(err)}
}

func succeeded(id int64, message string) Result {
	return Result{OK: true, Message: message, ID: id}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}

func nonNilMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
