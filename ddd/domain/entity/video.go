package entity

import (
	"time"

	"github.com/google/uuid"

	"clipforge/ddd/domain/vo"
)

// RawMetadata is the tolerated subset of the download utility's companion
// metadata JSON (§4.3 step 7); absence is tolerated, defaults are zero values.
type RawMetadata struct {
	Uploader    string   `json:"uploader,omitempty"`
	ViewCount   int64    `json:"view_count,omitempty"`
	LikeCount   int64    `json:"like_count,omitempty"`
	UploadDate  string   `json:"upload_date,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Video is the downloaded source (§3). Created exactly once by DW, keyed by
// the platform-level external_id so re-delivery upserts rather than
// duplicates.
type Video struct {
	ID           string      `gorm:"column:id;primaryKey" json:"id"`
	UserID       string      `gorm:"column:user_id;index" json:"user_id"`
	ExternalID   string      `gorm:"column:external_id;uniqueIndex" json:"external_id"`
	SourceURL    string      `gorm:"column:source_url" json:"source_url"`
	Title        string      `gorm:"column:title" json:"title"`
	Description  *string     `gorm:"column:description" json:"description,omitempty"`
	Duration     int         `gorm:"column:duration" json:"duration"`
	ThumbnailURL *string     `gorm:"column:thumbnail_url" json:"thumbnail_url,omitempty"`
	StorageKey   string      `gorm:"column:storage_key" json:"storage_key"`
	Status       vo.VideoStatus `gorm:"column:status" json:"status"`
	RawMetadata  RawMetadata `gorm:"column:raw_metadata;serializer:json" json:"raw_metadata"`
	CreatedAt    time.Time   `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"column:updated_at" json:"updated_at"`
}

func (Video) TableName() string { return "videos" }

// NewVideo builds a Video row for an upsert keyed by ExternalID.
func NewVideo(userID, externalID, sourceURL, title string, duration int, storageKey string, meta RawMetadata) *Video {
	now := time.Now()
	return &Video{
		ID:          uuid.NewString(),
		UserID:      userID,
		ExternalID:  externalID,
		SourceURL:   sourceURL,
		Title:       title,
		Duration:    duration,
		StorageKey:  storageKey,
		Status:      vo.VideoDownloaded,
		RawMetadata: meta,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
