package repo

import (
	"context"

	"clipforge/ddd/domain/entity"
)

// JobRepository is the Job Store's typed CRUD surface for Jobs (§4.2).
type JobRepository interface {
	Create(ctx context.Context, job *entity.Job) error
	Get(ctx context.Context, id string) (*entity.Job, error)
	Update(ctx context.Context, job *entity.Job) error
}

// VideoRepository is the Job Store's typed CRUD surface for Videos.
// Upsert is keyed by ExternalID (§4.3 idempotency).
type VideoRepository interface {
	Upsert(ctx context.Context, video *entity.Video) error
	Get(ctx context.Context, id string) (*entity.Video, error)
	GetByExternalID(ctx context.Context, externalID string) (*entity.Video, error)
	UpdateStatus(ctx context.Context, id string, status string) error
}

// SegmentRepository is the Job Store's typed CRUD surface for Segments, plus
// the count_segments aggregation query (§4.2).
type SegmentRepository interface {
	Create(ctx context.Context, segment *entity.Segment) error
	Get(ctx context.Context, id string) (*entity.Segment, error)
	Update(ctx context.Context, segment *entity.Segment) error
	CountByVideo(ctx context.Context, videoID string) (int64, error)
}

// ClipRepository is the Job Store's typed CRUD surface for Clips, plus the
// count_clips aggregation query (§4.2). Insert must be idempotent on
// (segment_id) per §4.5.
type ClipRepository interface {
	Insert(ctx context.Context, clip *entity.Clip) error
	GetBySegment(ctx context.Context, segmentID string) (*entity.Clip, error)
	CountByVideo(ctx context.Context, videoID string) (int64, error)
}
