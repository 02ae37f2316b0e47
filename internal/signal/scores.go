package signal

import (
	"math"

	"github.com/signalhouse/creatorstats/internal/model"
)

// Config holds the composite-score coefficients. The shapes are fixed
// (log-damped volume for heat, quality-weighted average for signal); the
// coefficients are tunable.
type Config struct {
	HeatMentionWeight  float64
	HeatLikesWeight    float64
	HeatResharesWeight float64
	HeatAuthorsWeight  float64
	HeatScale          float64

	SignalScale float64
	// DuplicateDiscount multiplies reshared and reply content; originals
	// keep full weight.
	DuplicateDiscount float64
	// SmartAmplificationGain scales the boost a post gets from its
	// author's smart score.
	SmartAmplificationGain float64
	// AudienceLiftMax caps the multiplier earned by the entity's own
	// smart-follower count; AudienceLiftCap is the count at which the
	// full lift applies.
	AudienceLiftMax float64
	AudienceLiftCap int

	// Band boundaries on the signal score: below LowBandMax is low, below
	// MediumBandMax is medium, the rest is high.
	LowBandMax    float64
	MediumBandMax float64
}

// DefaultConfig returns the production coefficients.
func DefaultConfig() Config {
	return Config{
		HeatMentionWeight:  1.0,
		HeatLikesWeight:    0.75,
		HeatResharesWeight: 1.25,
		HeatAuthorsWeight:  1.0,
		HeatScale:          6.0,

		SignalScale:            12.0,
		DuplicateDiscount:      0.35,
		SmartAmplificationGain: 0.8,
		AudienceLiftMax:        0.5,
		AudienceLiftCap:        100,

		LowBandMax:    35,
		MediumBandMax: 70,
	}
}

// Scorer computes heat, signal, and trust band for one entity and window.
type Scorer struct {
	cfg Config
}

// NewScorer creates a scorer with the given coefficients.
func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Pulse produces the composite triple for a window. records are the raw
// rows in the window, metrics their derived per-post view, and smart the
// entity's smart-follower result for the day.
func (s *Scorer) Pulse(window model.Window, records []model.ContentRecord, metrics []model.CreatorPostMetric, smart model.SmartFollowersResult) model.Pulse {
	p := model.Pulse{Window: window}
	p.Heat = s.Heat(records)
	p.Signal = s.Signal(metrics, smart)
	p.TrustBand = s.Band(p.Signal)
	return p
}

// Heat is the volume-sensitive pulse: mention count, average likes, average
// reshares, and distinct-author spread, each log-damped so a raid cannot
// run the score off the scale. An empty window has no heat at all and
// returns nil; nil and zero are different answers.
func (s *Scorer) Heat(records []model.ContentRecord) *float64 {
	if len(records) == 0 {
		return nil
	}

	var likes, reshares float64
	authors := make(map[string]struct{})
	for _, rec := range records {
		likes += float64(rec.Likes)
		reshares += float64(rec.Reshares)
		if key := authorKey(rec); key != "" {
			authors[key] = struct{}{}
		}
	}

	n := float64(len(records))
	raw := s.cfg.HeatMentionWeight*math.Log1p(n) +
		s.cfg.HeatLikesWeight*math.Log1p(likes/n) +
		s.cfg.HeatResharesWeight*math.Log1p(reshares/n) +
		s.cfg.HeatAuthorsWeight*math.Log1p(float64(len(authors)))

	heat := clamp(raw*s.cfg.HeatScale, 0, 100)
	return &heat
}

// Signal is the quality-sensitive measure: the average per-post quality,
// lifted by how smart the entity's own audience is. Per-post quality damps
// raw engagement, discounts unoriginal content, scales with sentiment
// around the neutral midpoint, and amplifies posts from high smart-score
// authors.
func (s *Scorer) Signal(metrics []model.CreatorPostMetric, smart model.SmartFollowersResult) *float64 {
	if len(metrics) == 0 {
		return nil
	}

	var total float64
	for _, m := range metrics {
		quality := math.Log1p(m.EngagementPoints)

		if !m.IsOriginal {
			quality *= s.cfg.DuplicateDiscount
		}

		// Neutral sentiment (50) keeps weight 1.0; the extremes halve or
		// lift by half.
		quality *= 0.5 + m.Sentiment/100

		quality *= 1 + s.cfg.SmartAmplificationGain*m.AuthorSmartScore
		quality *= 0.5 + 0.5*m.AudienceOrgScore

		total += quality
	}

	lift := s.audienceLift(smart.Count)
	sig := clamp(total/float64(len(metrics))*s.cfg.SignalScale*lift, 0, 100)
	return &sig
}

// audienceLift grows linearly with the smart-follower count up to the
// configured cap.
func (s *Scorer) audienceLift(smartCount int) float64 {
	if s.cfg.AudienceLiftCap <= 0 {
		return 1
	}
	count := smartCount
	if count > s.cfg.AudienceLiftCap {
		count = s.cfg.AudienceLiftCap
	}
	if count < 0 {
		count = 0
	}
	return 1 + s.cfg.AudienceLiftMax*float64(count)/float64(s.cfg.AudienceLiftCap)
}

// Band maps a signal score onto the discrete trust bands. A nil signal has
// no band.
func (s *Scorer) Band(signal *float64) model.TrustBand {
	if signal == nil {
		return ""
	}
	v := math.Round(*signal)
	switch {
	case v < s.cfg.LowBandMax:
		return model.TrustLow
	case v < s.cfg.MediumBandMax:
		return model.TrustMedium
	default:
		return model.TrustHigh
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
