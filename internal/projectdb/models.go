package projectdb

import (
	"path/filepath"
	"strings"
	"time"
)

// FileType classifies a media file by extension.
type FileType string

const (
	FileTypeVideo FileType = "video"
	FileTypeAudio FileType = "audio"
	FileTypeImage FileType = "image"
	FileTypeOther FileType = "other"
)

var extensionTypes = map[string]FileType{
	".mp4":  FileTypeVideo,
	".avi":  FileTypeVideo,
	".mov":  FileTypeVideo,
	".mkv":  FileTypeVideo,
	".mp3":  FileTypeAudio,
	".wav":  FileTypeAudio,
	".aac":  FileTypeAudio,
	".m4a":  FileTypeAudio,
	".jpg":  FileTypeImage,
	".jpeg": FileTypeImage,
	".png":  FileTypeImage,
	".gif":  FileTypeImage,
}

// InferFileType maps a file extension to a FileType, case-insensitively.
func InferFileType(path string) FileType {
	if t, ok := extensionTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return t
	}
	return FileTypeOther
}

// Valid reports whether t is one of the known file types.
func (t FileType) Valid() bool {
	switch t {
	case FileTypeVideo, FileTypeAudio, FileTypeImage, FileTypeOther:
		return true
	default:
		return false
	}
}

// FileTypes lists every file type in display order.
func FileTypes() []FileType {
	return []FileType{FileTypeVideo, FileTypeAudio, FileTypeImage, FileTypeOther}
}

// MediaFile is a reference to an asset under the project's sources directory.
type MediaFile struct {
	ID         int64
	FileName   string
	FilePath   string
	FileType   FileType
	Duration   *float64
	Metadata   map[string]any
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// MediaInput describes a media file to record. An empty FileType is
// inferred from FileName.
type MediaInput struct {
	FileName string
	FilePath string
	FileType FileType
	Duration *float64
	Metadata map[string]any
}

// Placement positions a trimmed window of a media file on a track. List
// results carry the joined media columns.
type Placement struct {
	ID          int64
	MediaID     int64
	StartTime   float64
	EndTime     float64
	TrackNumber int
	Position    float64
	CreatedAt   time.Time
	ModifiedAt  time.Time

	FileName      string
	FileType      FileType
	MediaDuration *float64
}

// PlacementInput describes a new timeline placement.
type PlacementInput struct {
	MediaID     int64
	StartTime   float64
	EndTime     float64
	TrackNumber int
	Position    float64
}

// Effect is a parameterized modifier attached to a placement.
type Effect struct {
	ID         int64
	TimelineID int64
	EffectType string
	Parameters map[string]any
	StartTime  *float64
	EndTime    *float64
	CreatedAt  time.Time
}

// EffectInput describes a new effect.
type EffectInput struct {
	TimelineID int64
	EffectType string
	Parameters map[string]any
	StartTime  *float64
	EndTime    *float64
}

// Setting is one project-local key/value pair.
type Setting struct {
	Key        string
	Value      string
	ModifiedAt time.Time
}

// Stats summarizes the contents of a store.
type Stats struct {
	MediaByType   map[FileType]int
	TotalMedia    int
	TotalDuration float64
	Placements    int
	Effects       int
	Tracks        int
	OldestMedia   time.Time
	NewestMedia   time.Time
}

// DefaultSettings are seeded into every new store and never overwrite
// existing values.
var DefaultSettings = map[string]string{
	"resolution":        "1920x1080",
	"framerate":         "30",
	"audio_sample_rate": "44100",
	"audio_channels":    "2",
}
