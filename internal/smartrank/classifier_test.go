package smartrank

import (
	"testing"
	"time"

	"github.com/signalhouse/creatorstats/internal/model"
)

var classifyNow = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

func oldDate() *time.Time {
	t := classifyNow.AddDate(-2, 0, 0)
	return &t
}

func youngDate() *time.Time {
	t := classifyNow.AddDate(0, 0, -10)
	return &t
}

func cleanAccount(id string) model.TrackedAccount {
	return model.TrackedAccount{
		XUserID:          id,
		FollowerCount:    100,
		FollowingCount:   100,
		AccountCreatedAt: oldDate(),
	}
}

func testClassifierConfig() Config {
	return Config{
		Damping:           0.85,
		Iterations:        50,
		MinAccountAgeDays: 90,
		BotRiskThreshold:  0.5,
		TopN:              1,
		TopPct:            0,
	}
}

func smartSet(scores []model.SmartAccountScore) map[string]bool {
	out := make(map[string]bool)
	for _, s := range scores {
		if s.IsSmart {
			out[s.AccountID] = true
		}
	}
	return out
}

func TestClassifyAdmitsTopSlice(t *testing.T) {
	edges := []model.FollowEdge{
		edge("b", "a"),
		edge("c", "a"),
		edge("d", "a"),
	}
	accounts := []model.TrackedAccount{
		cleanAccount("a"), cleanAccount("b"), cleanAccount("c"), cleanAccount("d"),
	}

	c := NewClassifier(testClassifierConfig())
	scores := c.Classify(edges, accounts, "2026-01-15", classifyNow)

	if len(scores) != 4 {
		t.Fatalf("expected 4 scored accounts, got %d", len(scores))
	}
	smart := smartSet(scores)
	if len(smart) != 1 || !smart["a"] {
		t.Errorf("smart set = %v, want exactly the hub a", smart)
	}
}

func TestClassifyPctCutoffDominates(t *testing.T) {
	// No edges: five accounts score on profile alone and tie, so admission
	// comes down to the cutoff size. 60% of 5 rounds up to 3, beating TopN=1.
	var accounts []model.TrackedAccount
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		accounts = append(accounts, cleanAccount(id))
	}

	cfg := testClassifierConfig()
	cfg.TopPct = 60
	c := NewClassifier(cfg)
	scores := c.Classify(nil, accounts, "2026-01-15", classifyNow)

	smart := smartSet(scores)
	if len(smart) != 3 {
		t.Errorf("smart set size = %d, want 3", len(smart))
	}
}

func TestClassifyGatesHighRisk(t *testing.T) {
	edges := []model.FollowEdge{
		edge("b", "a"),
		edge("c", "a"),
		edge("d", "a"),
	}
	// The hub ranks first but its profile screams bot: brand new and no
	// recorded followers. The gate must skip it and admit the next account.
	risky := model.TrackedAccount{XUserID: "a", AccountCreatedAt: youngDate()}
	accounts := []model.TrackedAccount{
		risky, cleanAccount("b"), cleanAccount("c"), cleanAccount("d"),
	}

	c := NewClassifier(testClassifierConfig())
	scores := c.Classify(edges, accounts, "2026-01-15", classifyNow)

	smart := smartSet(scores)
	if smart["a"] {
		t.Error("account above the risk threshold must never be smart")
	}
	if len(smart) != 1 {
		t.Errorf("gate must not shrink the admitted count, smart set = %v", smart)
	}
}

func TestClassifySmartScoreBlend(t *testing.T) {
	edges := []model.FollowEdge{
		edge("b", "a"),
		edge("c", "a"),
	}
	accounts := []model.TrackedAccount{cleanAccount("a")}

	c := NewClassifier(testClassifierConfig())
	scores := c.Classify(edges, accounts, "2026-01-15", classifyNow)

	for _, s := range scores {
		if s.AccountID != "a" {
			continue
		}
		// Rank 1 and risk 0 blend to the maximum score.
		if s.PageRank != 1.0 {
			t.Errorf("hub pagerank = %v, want 1.0", s.PageRank)
		}
		if s.BotRisk != 0 {
			t.Errorf("clean profile risk = %v, want 0", s.BotRisk)
		}
		if s.SmartScore != 1.0 {
			t.Errorf("smart score = %v, want 1.0", s.SmartScore)
		}
	}
}

func TestClassifyMissingProfileIsRisk(t *testing.T) {
	edges := []model.FollowEdge{edge("b", "a")}

	c := NewClassifier(testClassifierConfig())
	scores := c.Classify(edges, nil, "2026-01-15", classifyNow)

	for _, s := range scores {
		// Unknown age (+0.2) and no followers (+0.3) on the empty profile.
		if s.BotRisk != 0.5 {
			t.Errorf("account %s risk = %v, want 0.5 for missing profile", s.AccountID, s.BotRisk)
		}
	}
}

func TestClassifyStampsDate(t *testing.T) {
	c := NewClassifier(testClassifierConfig())
	scores := c.Classify(nil, []model.TrackedAccount{cleanAccount("a")}, "2026-01-15", classifyNow)

	if len(scores) != 1 {
		t.Fatalf("expected 1 score, got %d", len(scores))
	}
	if scores[0].AsOfDate != "2026-01-15" {
		t.Errorf("AsOfDate = %q, want 2026-01-15", scores[0].AsOfDate)
	}
}
