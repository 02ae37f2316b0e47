package analyzer

import (
	"math"
	"time"

	"github.com/signalhouse/creatorstats/internal/model"
)

// Penalty weights for the bot-risk heuristic. The penalties are additive
// and not mutually exclusive, so the final score is capped at 1.
const (
	penaltyYoungAccount = 0.3
	penaltyUnknownAge   = 0.2
	penaltyStarvedRatio = 0.4
	penaltyLowRatio     = 0.2
	penaltyNoFollowers  = 0.3
	penaltyFewFollowers = 0.2
)

// BotRiskConfig holds the tunable inputs of the heuristic.
type BotRiskConfig struct {
	MinAccountAgeDays int
}

// DefaultBotRiskConfig returns the stock thresholds.
func DefaultBotRiskConfig() BotRiskConfig {
	return BotRiskConfig{MinAccountAgeDays: 90}
}

// BotRiskScorer estimates how likely an account is inauthentic. It is an
// approximate gate for ranking decisions, not a classifier.
type BotRiskScorer struct {
	minAccountAge time.Duration
}

// NewBotRiskScorer creates a scorer from explicit config.
func NewBotRiskScorer(cfg BotRiskConfig) *BotRiskScorer {
	if cfg.MinAccountAgeDays <= 0 {
		cfg = DefaultBotRiskConfig()
	}
	return &BotRiskScorer{
		minAccountAge: time.Duration(cfg.MinAccountAgeDays) * 24 * time.Hour,
	}
}

// Score returns the account's bot risk in [0,1], accumulated from age,
// follower/following ratio, and absolute follower count. A missing
// creation date is itself a risk signal, not a neutral condition.
func (s *BotRiskScorer) Score(acct model.TrackedAccount, now time.Time) float64 {
	risk := 0.0

	if acct.AccountCreatedAt == nil {
		risk += penaltyUnknownAge
	} else if now.Sub(*acct.AccountCreatedAt) < s.minAccountAge {
		risk += penaltyYoungAccount
	}

	// An account with no followers at all takes the flat penalty; the
	// ratio penalties only apply to accounts that have followers, so the
	// two can never stack.
	if acct.FollowerCount == 0 {
		risk += penaltyNoFollowers
	} else {
		if acct.FollowingCount > 0 {
			ratio := float64(acct.FollowerCount) / float64(acct.FollowingCount)
			if ratio < 0.1 {
				risk += penaltyStarvedRatio
			} else if ratio < 0.5 {
				risk += penaltyLowRatio
			}
		}
		if acct.FollowerCount < 10 {
			risk += penaltyFewFollowers
		}
	}

	return math.Min(1, risk)
}
