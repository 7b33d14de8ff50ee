package database

import (
	"context"

	"gorm.io/gorm"

	"clipforge/ddd/domain/entity"
)

// SegmentRepository is the GORM-backed SegmentRepository.
type SegmentRepository struct {
	db *gorm.DB
}

func NewSegmentRepository(db *gorm.DB) *SegmentRepository { return &SegmentRepository{db: db} }

func (r *SegmentRepository) Create(ctx context.Context, segment *entity.Segment) error {
	return r.db.WithContext(ctx).Create(segment).Error
}

func (r *SegmentRepository) Get(ctx context.Context, id string) (*entity.Segment, error) {
	var segment entity.Segment
	if err := r.db.WithContext(ctx).First(&segment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &segment, nil
}

func (r *SegmentRepository) Update(ctx context.Context, segment *entity.Segment) error {
	return r.db.WithContext(ctx).Save(segment).Error
}

func (r *SegmentRepository) CountByVideo(ctx context.Context, videoID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Segment{}).Where("video_id = ?", videoID).Count(&count).Error
	return count, err
}
