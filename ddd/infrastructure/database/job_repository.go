// Package database is the Job Store's GORM/MySQL implementation of the
// domain repo contracts (§4.2). Entities already carry gorm tags, so each
// repository is a thin pass-through rather than a separate DAO/PO layer.
package database

import (
	"context"

	"gorm.io/gorm"

	"clipforge/ddd/domain/entity"
)

// JobRepository is the GORM-backed JobRepository.
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository builds a JobRepository over db.
func NewJobRepository(db *gorm.DB) *JobRepository { return &JobRepository{db: db} }

func (r *JobRepository) Create(ctx context.Context, job *entity.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *JobRepository) Get(ctx context.Context, id string) (*entity.Job, error) {
	var job entity.Job
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *JobRepository) Update(ctx context.Context, job *entity.Job) error {
	return r.db.WithContext(ctx).Save(job).Error
}
