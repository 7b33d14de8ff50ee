package entity

import (
	"time"

	"github.com/google/uuid"

	"clipforge/ddd/domain/vo"
)

// SignalScores carries the per-signal [0,1] components that fed a Segment's
// composite score (§4.4.2).
type SignalScores struct {
	Audio      float64 `json:"audio"`
	Visual     float64 `json:"visual"`
	Speech     float64 `json:"speech"`
	Engagement float64 `json:"engagement"`
}

// CaptionSegment is one styled caption group (§4.6).
type CaptionSegment struct {
	Text  string        `json:"text"`
	Start float64       `json:"start"`
	End   float64       `json:"end"`
	Words []CaptionWord `json:"words"`
	Style string        `json:"style"`
	Emoji string        `json:"emoji,omitempty"`
}

// CaptionWord is one word-level timestamp inside a CaptionSegment.
type CaptionWord struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Segment is a candidate time-range chosen by AW (§3). Persisted once
// selected and boundary-snapped; mutated only by its corresponding EW task.
type Segment struct {
	ID              string       `gorm:"column:id;primaryKey" json:"id"`
	VideoID         string       `gorm:"column:video_id;index" json:"video_id"`
	StartTime       float64      `gorm:"column:start_time" json:"start_time"`
	EndTime         float64      `gorm:"column:end_time" json:"end_time"`
	CompositeScore  float64      `gorm:"column:composite_score" json:"composite_score"`
	YTRetention     float64      `gorm:"column:yt_retention" json:"yt_retention"`
	Signals         SignalScores `gorm:"column:signals;serializer:json" json:"signals"`
	Reason          string       `gorm:"column:reason" json:"reason"`
	Status          vo.SegmentStatus `gorm:"column:status;index" json:"status"`
	HasCaptions     bool         `gorm:"column:has_captions" json:"has_captions"`
	CaptionStyle    *string      `gorm:"column:caption_style" json:"caption_style,omitempty"`
	CaptionData     []CaptionSegment `gorm:"column:caption_data;serializer:json" json:"caption_data,omitempty"`
	CreatedAt       time.Time    `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"column:updated_at" json:"updated_at"`
}

func (Segment) TableName() string { return "segments" }

// Duration returns end-start, re-derived rather than stored (§3: "duration =
// end-start" is defined, not an independent column).
func (s *Segment) Duration() float64 { return s.EndTime - s.StartTime }

// NewSegment constructs a detected Segment from a ranked, snapped candidate.
func NewSegment(videoID string, start, end float64, composite float64, signals SignalScores, reason string) *Segment {
	now := time.Now()
	return &Segment{
		ID:             uuid.NewString(),
		VideoID:        videoID,
		StartTime:      start,
		EndTime:        end,
		CompositeScore: composite,
		YTRetention:    composite,
		Signals:        signals,
		Reason:         reason,
		Status:         vo.SegmentDetected,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Overlaps reports half-open interval intersection with another window,
// per §4.4.5/§8 invariant 3.
func Overlaps(aStart, aEnd, bStart, bEnd float64) bool {
	return aStart < bEnd && bStart < aEnd
}
