package analyzer

import (
	"math"
	"sort"

	"github.com/signalhouse/creatorstats/internal/model"
)

// EngagementWeights define how raw interaction counts collapse into a
// single per-post point value.
type EngagementWeights struct {
	Like    float64
	Reply   float64
	Reshare float64
}

// DefaultEngagementWeights returns the stock weighting: replies cost more
// effort than likes, reshares more than replies.
func DefaultEngagementWeights() EngagementWeights {
	return EngagementWeights{Like: 1, Reply: 2, Reshare: 3}
}

// Points collapses one content record into weighted engagement points.
func (w EngagementWeights) Points(rec model.ContentRecord) float64 {
	return float64(rec.Likes)*w.Like +
		float64(rec.Replies)*w.Reply +
		float64(rec.Reshares)*w.Reshare
}

// AuthorEngagement is one author's engagement total over a window.
type AuthorEngagement struct {
	AuthorID string
	Points   float64
}

// AuthorTotals aggregates engagement points per distinct author across a
// set of content records. Authors are keyed by platform id, falling back
// to handle for records ingested before id resolution. The result is
// sorted by points descending, ties by author id, so output is stable.
func AuthorTotals(records []model.ContentRecord, w EngagementWeights) []AuthorEngagement {
	totals := make(map[string]float64)
	for _, rec := range records {
		author := rec.AuthorID
		if author == "" {
			author = rec.AuthorHandle
		}
		if author == "" {
			continue
		}
		totals[author] += w.Points(rec)
	}

	out := make([]AuthorEngagement, 0, len(totals))
	for author, points := range totals {
		out = append(out, AuthorEngagement{AuthorID: author, Points: points})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].AuthorID < out[j].AuthorID
	})
	return out
}

// PercentileScore returns the nearest-rank percentile of the given
// engagement totals. Ties share the same rank, so every author at the
// returned score qualifies together.
func PercentileScore(totals []AuthorEngagement, pct float64) float64 {
	if len(totals) == 0 {
		return 0
	}

	values := make([]float64, len(totals))
	for i, t := range totals {
		values[i] = t.Points
	}
	sort.Float64s(values)

	rank := int(math.Ceil(pct / 100 * float64(len(values))))
	if rank < 1 {
		rank = 1
	}
	if rank > len(values) {
		rank = len(values)
	}
	return values[rank-1]
}

// HighTrustEngagers derives the proxy smart-follower set used when the
// follow graph has no data for an account: authors whose engagement total
// clears max(minScore, percentile). The absolute floor keeps a single
// outlier from inflating the bar when activity is sparse.
func HighTrustEngagers(records []model.ContentRecord, w EngagementWeights, minScore, pct float64) []AuthorEngagement {
	totals := AuthorTotals(records, w)
	if len(totals) == 0 {
		return nil
	}

	threshold := math.Max(minScore, PercentileScore(totals, pct))

	var qualified []AuthorEngagement
	for _, t := range totals {
		if t.Points >= threshold {
			qualified = append(qualified, t)
		}
	}
	return qualified
}
