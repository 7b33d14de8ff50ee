package entity

import (
	"time"

	"github.com/google/uuid"

	"clipforge/ddd/domain/vo"
)

// Job is one submission of a source URL through the pipeline (§3). It is
// owned by whichever worker is currently driving its stage; DW, AW and EW
// each mutate it only while they hold it.
type Job struct {
	ID           string     `gorm:"column:id;primaryKey" json:"id"`
	UserID       string     `gorm:"column:user_id;index" json:"user_id"`
	SourceURL    string     `gorm:"column:source_url" json:"source_url"`
	VideoID      *string    `gorm:"column:video_id;index" json:"video_id,omitempty"`
	Status       vo.JobStatus `gorm:"column:status;index" json:"status"`
	Progress     int        `gorm:"column:progress" json:"progress"`
	CurrentStep  string     `gorm:"column:current_step" json:"current_step"`
	ErrorMessage *string    `gorm:"column:error_message" json:"error_message,omitempty"`
	Options      vo.JobOptions `gorm:"column:options;serializer:json" json:"options"`
	CreatedAt    time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at" json:"updated_at"`
	CompletedAt  *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
}

func (Job) TableName() string { return "jobs" }

// NewJob starts a submission in the queued state with normalized options.
func NewJob(userID, sourceURL string, opts vo.JobOptions) *Job {
	now := time.Now()
	return &Job{
		ID:          uuid.NewString(),
		UserID:      userID,
		SourceURL:   sourceURL,
		Status:      vo.JobQueued,
		Progress:    0,
		CurrentStep: "Queued",
		Options:     opts.Normalize(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Advance moves the job to a non-terminal status, recording progress and the
// human-readable step string. Callers are the stage worker currently driving
// the job; §3's monotonicity invariant is enforced by never calling Advance
// after Fail/Complete.
func (j *Job) Advance(status vo.JobStatus, progress int, step string) {
	j.Status = status
	j.Progress = clampProgress(progress)
	j.CurrentStep = step
	j.UpdatedAt = time.Now()
}

// Fail transitions the job to the terminal failed state (§3: any state may
// transition to failed). The message is truncated to 200 chars per §7.
func (j *Job) Fail(reason string) {
	if len(reason) > 200 {
		reason = reason[:200]
	}
	j.Status = vo.JobFailed
	j.ErrorMessage = &reason
	j.UpdatedAt = time.Now()
}

// Complete transitions the job to the terminal completed state (§4.5 step 9).
func (j *Job) Complete() {
	now := time.Now()
	j.Status = vo.JobCompleted
	j.Progress = 100
	j.CompletedAt = &now
	j.UpdatedAt = now
}

func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
