package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Result is the outcome of a mutating operation.
type Result struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	ID      int64  `json:"id,omitempty"`
	Path    string `json:"path,omitempty"`
}

// Project describes a registry entry.
type Project struct {
	ID         int64          `json:"id"`
	Name       string         `json:"name"`
	Path       string         `json:"path"`
	Settings   map[string]any `json:"settings"`
	CreatedAt  string         `json:"createdAt,omitempty"`
	ModifiedAt string         `json:"modifiedAt,omitempty"`
}

// ProjectDetail extends Project with disk usage and store contents.
// DirectoryMissing is set when the registry row outlived its directory.
type ProjectDetail struct {
	Project
	SizeBytes        int64         `json:"sizeBytes"`
	FileCount        int           `json:"fileCount"`
	DirectoryMissing bool          `json:"directoryMissing,omitempty"`
	Stats            *ProjectStats `json:"stats,omitempty"`
}

// ProjectStats summarizes the project store.
type ProjectStats struct {
	MediaByType   map[string]int `json:"mediaByType"`
	TotalMedia    int            `json:"totalMedia"`
	TotalDuration float64        `json:"totalDuration"`
	Placements    int            `json:"placements"`
	Effects       int            `json:"effects"`
	Tracks        int            `json:"tracks"`
	OldestMedia   string         `json:"oldestMedia,omitempty"`
	NewestMedia   string         `json:"newestMedia,omitempty"`
}

// MediaFile describes a media record.
type MediaFile struct {
	ID         int64          `json:"id"`
	FileName   string         `json:"fileName"`
	FilePath   string         `json:"filePath"`
	FileType   string         `json:"fileType"`
	Duration   *float64       `json:"duration,omitempty"`
	Metadata   map[string]any `json:"metadata"`
	CreatedAt  string         `json:"createdAt,omitempty"`
	ModifiedAt string         `json:"modifiedAt,omitempty"`
}

// Placement describes a timeline placement with its media columns.
type Placement struct {
	ID            int64    `json:"id"`
	MediaID       int64    `json:"mediaId"`
	StartTime     float64  `json:"startTime"`
	EndTime       float64  `json:"endTime"`
	TrackNumber   int      `json:"trackNumber"`
	Position      float64  `json:"position"`
	FileName      string   `json:"fileName,omitempty"`
	FileType      string   `json:"fileType,omitempty"`
	MediaDuration *float64 `json:"mediaDuration,omitempty"`
	CreatedAt     string   `json:"createdAt,omitempty"`
}

// Effect describes an effect attached to a placement.
type Effect struct {
	ID         int64          `json:"id"`
	TimelineID int64          `json:"timelineId"`
	EffectType string         `json:"effectType"`
	Parameters map[string]any `json:"parameters"`
	StartTime  *float64       `json:"startTime,omitempty"`
	EndTime    *float64       `json:"endTime,omitempty"`
	CreatedAt  string         `json:"createdAt,omitempty"`
}

// PlacementRequest carries the fields of a new placement.
type PlacementRequest struct {
	MediaID     int64   `json:"mediaId"`
	StartTime   float64 `json:"startTime"`
	EndTime     float64 `json:"endTime"`
	TrackNumber int     `json:"trackNumber"`
	Position    float64 `json:"position"`
}

// EffectRequest carries the fields of a new effect.
type EffectRequest struct {
	PlacementID int64          `json:"placementId"`
	EffectType  string         `json:"effectType"`
	Parameters  map[string]any `json:"parameters,omitempty"`
	StartTime   *float64       `json:"startTime,omitempty"`
	EndTime     *float64       `json:"endTime,omitempty"`
}
