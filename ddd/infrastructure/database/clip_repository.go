package database

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"clipforge/ddd/domain/entity"
)

// ClipRepository is the GORM-backed ClipRepository. Insert treats a
// unique-constraint violation on segment_id as success (§4.5 idempotency):
// a concurrently-redelivered extraction task's insert is a no-op rather
// than an error.
type ClipRepository struct {
	db *gorm.DB
}

func NewClipRepository(db *gorm.DB) *ClipRepository { return &ClipRepository{db: db} }

func (r *ClipRepository) Insert(ctx context.Context, clip *entity.Clip) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "segment_id"}},
		DoNothing: true,
	}).Create(clip).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}

func (r *ClipRepository) GetBySegment(ctx context.Context, segmentID string) (*entity.Clip, error) {
	var clip entity.Clip
	if err := r.db.WithContext(ctx).First(&clip, "segment_id = ?", segmentID).Error; err != nil {
		return nil, err
	}
	return &clip, nil
}

func (r *ClipRepository) CountByVideo(ctx context.Context, videoID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Clip{}).Where("video_id = ?", videoID).Count(&count).Error
	return count, err
}
