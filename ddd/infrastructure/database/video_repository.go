package database

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"clipforge/ddd/domain/entity"
)

// VideoRepository is the GORM-backed VideoRepository. Upsert is keyed on
// the unique external_id column (§4.3 idempotency).
type VideoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) *VideoRepository { return &VideoRepository{db: db} }

// Upsert inserts a new Video, or on an external_id conflict overwrites
// every field re-delivery could legitimately change (storage key, title,
// duration, metadata) while leaving the row's identity and status intact.
func (r *VideoRepository) Upsert(ctx context.Context, video *entity.Video) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"source_url", "title", "description", "duration",
			"thumbnail_url", "storage_key", "raw_metadata", "updated_at",
		}),
	}).Create(video).Error
}

func (r *VideoRepository) Get(ctx context.Context, id string) (*entity.Video, error) {
	var video entity.Video
	if err := r.db.WithContext(ctx).First(&video, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &video, nil
}

func (r *VideoRepository) GetByExternalID(ctx context.Context, externalID string) (*entity.Video, error) {
	var video entity.Video
	if err := r.db.WithContext(ctx).First(&video, "external_id = ?", externalID).Error; err != nil {
		return nil, err
	}
	return &video, nil
}

func (r *VideoRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	return r.db.WithContext(ctx).Model(&entity.Video{}).Where("id = ?", id).
		Update("status", status).Error
}
