package entity

import (
	"time"

	"github.com/google/uuid"

	"clipforge/ddd/domain/vo"
)

// Clip is the final rendered artifact (§3), created exactly once by EW.
// Re-delivery of an extraction task must treat a unique-constraint violation
// on segment_id as success (§4.5 idempotency).
type Clip struct {
	ID            string     `gorm:"column:id;primaryKey" json:"id"`
	SegmentID     string     `gorm:"column:segment_id;uniqueIndex" json:"segment_id"`
	VideoID       string     `gorm:"column:video_id;index" json:"video_id"`
	StorageKey    string     `gorm:"column:storage_key" json:"storage_key"`
	ThumbnailKey  *string    `gorm:"column:thumbnail_key" json:"thumbnail_key,omitempty"`
	Title         string     `gorm:"column:title" json:"title"`
	Description   string     `gorm:"column:description" json:"description"`
	Tags          []string   `gorm:"column:tags;serializer:json" json:"tags"`
	Status        vo.ClipStatus `gorm:"column:status" json:"status"`
	CreatedAt     time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (Clip) TableName() string { return "clips" }

// NewClip builds the ready_for_review row EW inserts on successful extraction.
func NewClip(segmentID, videoID, storageKey, title, description string, tags []string) *Clip {
	now := time.Now()
	return &Clip{
		ID:          uuid.NewString(),
		SegmentID:   segmentID,
		VideoID:     videoID,
		StorageKey:  storageKey,
		Title:       title,
		Description: description,
		Tags:        tags,
		Status:      vo.ClipReadyForReview,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
