// Package signal turns window slices of content into the composite triple
// leaderboards consume: a volume-sensitive heat score, a quality-sensitive
// signal score, and the trust band derived from signal.
package signal

import (
	"strings"

	"github.com/signalhouse/creatorstats/internal/analyzer"
	"github.com/signalhouse/creatorstats/internal/model"
)

// Content type labels carried on per-post metrics.
const (
	ContentPost    = "post"
	ContentReply   = "reply"
	ContentReshare = "reshare"
)

// MetricsBuilder derives per-post metrics from raw content rows. Metrics
// are computed on demand for a window and never persisted.
type MetricsBuilder struct {
	sentiment *analyzer.SentimentAnalyzer
	weights   analyzer.EngagementWeights
}

// NewMetricsBuilder creates a builder with the default engagement weights.
func NewMetricsBuilder() *MetricsBuilder {
	return &MetricsBuilder{
		sentiment: analyzer.NewSentimentAnalyzer(),
		weights:   analyzer.DefaultEngagementWeights(),
	}
}

// Build derives one metric per record. smartScores maps author account IDs
// to their smart score for the day; absent authors score zero.
func (b *MetricsBuilder) Build(records []model.ContentRecord, smartScores map[string]float64) []model.CreatorPostMetric {
	metrics := make([]model.CreatorPostMetric, 0, len(records))
	for _, rec := range records {
		contentType := classifyContent(rec.Text)
		authorScore := smartScores[authorKey(rec)]

		orgScore := authorScore
		if rec.IsOfficial {
			orgScore = 1.0
		}

		metrics = append(metrics, model.CreatorPostMetric{
			ContentType:      contentType,
			EngagementPoints: b.weights.Points(rec),
			Sentiment:        b.sentiment.ScoreRecord(rec),
			AuthorSmartScore: authorScore,
			AudienceOrgScore: orgScore,
			IsOriginal:       contentType == ContentPost,
		})
	}
	return metrics
}

// classifyContent buckets a post by its text shape: retweet-style prefixes
// mark reshares, a leading mention marks a reply, everything else is an
// original post.
func classifyContent(text string) string {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(strings.ToLower(trimmed), "rt @") {
		return ContentReshare
	}
	if strings.HasPrefix(trimmed, "@") {
		return ContentReply
	}
	return ContentPost
}

func authorKey(rec model.ContentRecord) string {
	if rec.AuthorID != "" {
		return rec.AuthorID
	}
	return rec.AuthorHandle
}
