package smartrank

import (
	"math"
	"sort"
	"time"

	"github.com/signalhouse/creatorstats/internal/analyzer"
	"github.com/signalhouse/creatorstats/internal/model"
)

// Blend weights between graph rank and authenticity. Rank dominates, but a
// clean account profile keeps mid-rank accounts competitive.
const (
	rankWeight = 0.6
	riskWeight = 0.4
)

// Config holds the classification knobs.
type Config struct {
	Damping           float64
	Iterations        int
	MinAccountAgeDays int
	// BotRiskThreshold gates admission: accounts above it never enter the
	// smart set no matter how well they rank.
	BotRiskThreshold float64
	// TopN and TopPct set the admission cutoff: the larger of the absolute
	// count and the percentage of scored accounts wins.
	TopN   int
	TopPct float64
}

// Classifier runs the daily smart-account classification.
type Classifier struct {
	bots *analyzer.BotRiskScorer
	cfg  Config
}

// NewClassifier creates a classifier from explicit config.
func NewClassifier(cfg Config) *Classifier {
	return &Classifier{
		bots: analyzer.NewBotRiskScorer(analyzer.BotRiskConfig{MinAccountAgeDays: cfg.MinAccountAgeDays}),
		cfg:  cfg,
	}
}

// Classify scores every account touched by the graph or the profile list
// and admits the top slice into the day's smart set. Accounts missing a
// profile are scored on an empty one, which the bot-risk heuristic already
// treats as risk.
func (c *Classifier) Classify(edges []model.FollowEdge, accounts []model.TrackedAccount, asOfDate string, now time.Time) []model.SmartAccountScore {
	ranks := PageRank(edges, c.cfg.Damping, c.cfg.Iterations)

	profiles := make(map[string]model.TrackedAccount, len(accounts))
	for _, acct := range accounts {
		profiles[acct.XUserID] = acct
	}

	ids := make(map[string]struct{}, len(ranks)+len(accounts))
	for id := range ranks {
		ids[id] = struct{}{}
	}
	for id := range profiles {
		ids[id] = struct{}{}
	}

	scores := make([]model.SmartAccountScore, 0, len(ids))
	for id := range ids {
		risk := c.bots.Score(profiles[id], now)
		scores = append(scores, model.SmartAccountScore{
			AccountID:  id,
			AsOfDate:   asOfDate,
			PageRank:   ranks[id],
			BotRisk:    risk,
			SmartScore: rankWeight*ranks[id] + riskWeight*(1-risk),
		})
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].SmartScore != scores[j].SmartScore {
			return scores[i].SmartScore > scores[j].SmartScore
		}
		return scores[i].AccountID < scores[j].AccountID
	})

	admitted := 0
	cutoff := c.cutoff(len(scores))
	for i := range scores {
		if admitted >= cutoff {
			break
		}
		if scores[i].BotRisk > c.cfg.BotRiskThreshold {
			continue
		}
		scores[i].IsSmart = true
		admitted++
	}
	return scores
}

// cutoff is the admission size: the larger of the absolute TopN and TopPct
// percent of the scored population.
func (c *Classifier) cutoff(total int) int {
	byPct := int(math.Ceil(c.cfg.TopPct / 100 * float64(total)))
	if c.cfg.TopN > byPct {
		return c.cfg.TopN
	}
	return byPct
}
