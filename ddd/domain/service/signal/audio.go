package signal

import "math"

// AudioSignal is the per-window audio analysis result (§4.4.2).
type AudioSignal struct {
	MeanVolumeDB    float64
	MaxVolumeDB     float64
	SilenceSeconds  float64
	LoudMomentCount int
	Energy          float64
	EngagementScore float64
}

// NewAudioSignal derives Energy and EngagementScore from a raw probe plus
// the window length (§4.4.2: "Energy score = 0.6*normalize(mean_volume,
// -60..0) + 0.4*clamp(range/30, 0..1)"; engagement blends energy (0.4),
// dynamic range (0.3), loud-moment density bonus (0.2), minus silence
// penalty (0.1)).
func NewAudioSignal(meanVolumeDB, maxVolumeDB float64, silenceSeconds float64, loudMomentCount int, windowSeconds float64) AudioSignal {
	rng := maxVolumeDB - meanVolumeDB
	energy := 0.6*normalize(meanVolumeDB, -60, 0) + 0.4*clamp01(rng/30)
	dynamicRange := clamp01(rng / 30)
	density := 0.0
	if windowSeconds > 0 {
		density = clamp01(float64(loudMomentCount) / (windowSeconds / 10))
	}
	silencePenalty := 0.0
	if windowSeconds > 0 {
		silencePenalty = clamp01(silenceSeconds / windowSeconds)
	}
	engagement := clamp01(0.4*energy + 0.3*dynamicRange + 0.2*density - 0.1*silencePenalty)
	return AudioSignal{
		MeanVolumeDB:    meanVolumeDB,
		MaxVolumeDB:     maxVolumeDB,
		SilenceSeconds:  silenceSeconds,
		LoudMomentCount: loudMomentCount,
		Energy:          energy,
		EngagementScore: engagement,
	}
}

// AudioFallback is the neutral substitute used when the audio probe fails
// (§4.4.2): "energy 0.52".
func AudioFallback() AudioSignal {
	return AudioSignal{Energy: 0.52, EngagementScore: 0.52}
}

func normalize(v, min, max float64) float64 {
	if max <= min {
		return 0
	}
	return clamp01((v - min) / (max - min))
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
