package vo

// JobOptions is the recognized subset of a job submission's options blob
// (§6). AW passes ClipCount to service/selection as the top-N to keep; its
// configured ranking depth (or 8) is used only when ClipCount is unset (§9
// open question — resolved in DESIGN.md).
type JobOptions struct {
	ClipCount     int  `json:"clipCount"`
	MinDuration   int  `json:"minDuration"`
	MaxDuration   int  `json:"maxDuration"`
	AutoUpload    bool `json:"autoUpload"`
	AddSubtitles  bool `json:"addSubtitles"`
}

// DefaultJobOptions fills in the defaults from §6.
func DefaultJobOptions() JobOptions {
	return JobOptions{
		ClipCount:    5,
		MinDuration:  15,
		MaxDuration:  60,
		AutoUpload:   false,
		AddSubtitles: true,
	}
}

// Normalize replaces out-of-range values with defaults: ClipCount <= 0
// becomes 5, MinDuration < 10 becomes 15, MaxDuration <= 0 or > 180 becomes
// 60; MaxDuration is then raised to MinDuration if it is lower.
func (o JobOptions) Normalize() JobOptions {
	out := o
	if out.ClipCount <= 0 {
		out.ClipCount = DefaultJobOptions().ClipCount
	}
	if out.MinDuration < 10 {
		out.MinDuration = 15
	}
	if out.MaxDuration > 180 || out.MaxDuration <= 0 {
		out.MaxDuration = 60
	}
	if out.MaxDuration < out.MinDuration {
		out.MaxDuration = out.MinDuration
	}
	return out
}
