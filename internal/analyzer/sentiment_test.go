package analyzer

import (
	"strings"
	"testing"

	"github.com/signalhouse/creatorstats/internal/model"
)

func TestSentimentScoreRange(t *testing.T) {
	analyzer := NewSentimentAnalyzer()

	texts := []string{
		"",
		"gm",
		"this project is an absolute scam, rug pull incoming",
		"incredible gains, bullish on this amazing gem",
		"the weather is okay today",
		"not good, not bad",
		"https://example.com @someone #crypto",
	}

	for _, text := range texts {
		score := analyzer.Score(text)
		if score < 0 || score > 100 {
			t.Errorf("Score(%q) = %v, out of [0,100]", text, score)
		}
	}
}

func TestSentimentNeutral(t *testing.T) {
	analyzer := NewSentimentAnalyzer()

	tests := []struct {
		name string
		text string
	}{
		{name: "empty text", text: ""},
		{name: "no lexicon hits", text: "the quarterly report ships on tuesday"},
		{name: "only urls and mentions", text: "https://example.com @alice @bob"},
		{name: "single char tokens", text: "a b c 1 2 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := analyzer.Score(tt.text); got != 50 {
				t.Errorf("Score(%q) = %v, want 50", tt.text, got)
			}
		})
	}
}

func TestSentimentPolarity(t *testing.T) {
	analyzer := NewSentimentAnalyzer()

	tests := []struct {
		name      string
		text      string
		wantAbove bool // above the neutral midpoint
	}{
		{name: "positive keyword", text: "this is a promising project", wantAbove: true},
		{name: "negative keyword", text: "this is a scam", wantAbove: false},
		{name: "negated positive", text: "not good at all", wantAbove: false},
		{name: "negated negative", text: "this is not a scam", wantAbove: true},
		{name: "intensified negative", text: "extremely bearish price action", wantAbove: false},
		{name: "mixed leaning positive", text: "small loss today but amazing incredible growth ahead", wantAbove: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analyzer.Score(tt.text)
			if tt.wantAbove && got <= 50 {
				t.Errorf("Score(%q) = %v, want > 50", tt.text, got)
			}
			if !tt.wantAbove && got >= 50 {
				t.Errorf("Score(%q) = %v, want < 50", tt.text, got)
			}
		})
	}
}

func TestSentimentCaseAndNoiseInvariance(t *testing.T) {
	analyzer := NewSentimentAnalyzer()

	base := analyzer.Score("bullish on this gem")

	variants := []string{
		"BULLISH on this GEM",
		"Bullish On This Gem",
		"bullish on this gem https://t.co/xyz",
		"@trader bullish on this #gem",
	}

	for _, v := range variants {
		if got := analyzer.Score(v); got != base {
			t.Errorf("Score(%q) = %v, want %v (same as base text)", v, got, base)
		}
	}
}

func TestSentimentNegatedScamScenario(t *testing.T) {
	analyzer := NewSentimentAnalyzer()

	// "scam" flips to the positive accumulator through the negator and
	// "very" boosts "promising": all weight lands positive, raw = 100,
	// compressed to 50 + 50*0.6 = 80.
	got := analyzer.Score("This is NOT a scam, very promising")
	if got != 80 {
		t.Errorf("Score() = %v, want 80", got)
	}
}

func TestSentimentCompression(t *testing.T) {
	analyzer := NewSentimentAnalyzer()

	// A single strong keyword must not swing the score to the extreme.
	if got := analyzer.Score("scam"); got != 20 {
		t.Errorf("Score(\"scam\") = %v, want 20", got)
	}
	if got := analyzer.Score("amazing"); got != 80 {
		t.Errorf("Score(\"amazing\") = %v, want 80", got)
	}
}

func TestSentimentModifierReset(t *testing.T) {
	analyzer := NewSentimentAnalyzer()

	// An unrelated token between the modifier and the keyword resets the
	// modifier, so both texts score identically on the keyword alone.
	withGap := analyzer.Score("not really the chart looks bearish")
	plain := analyzer.Score("the chart looks bearish")
	if withGap != plain {
		t.Errorf("modifier leaked across tokens: with gap = %v, plain = %v", withGap, plain)
	}
}

func TestScoreAll(t *testing.T) {
	analyzer := NewSentimentAnalyzer()

	texts := []string{"amazing gains", "", "total scam"}
	scores := analyzer.ScoreAll(texts)

	if len(scores) != len(texts) {
		t.Fatalf("ScoreAll() returned %d scores, want %d", len(scores), len(texts))
	}
	if scores[0] <= 50 {
		t.Errorf("scores[0] = %v, want > 50", scores[0])
	}
	if scores[1] != 50 {
		t.Errorf("scores[1] = %v, want 50", scores[1])
	}
	if scores[2] >= 50 {
		t.Errorf("scores[2] = %v, want < 50", scores[2])
	}
}

func TestScoreRecordPrefersUpstreamScore(t *testing.T) {
	analyzer := NewSentimentAnalyzer()

	upstream := 72.0
	rec := model.ContentRecord{Text: "total scam", SentimentScore: &upstream}
	if got := analyzer.ScoreRecord(rec); got != 72 {
		t.Errorf("ScoreRecord() = %v, want upstream 72", got)
	}

	rec.SentimentScore = nil
	if got := analyzer.ScoreRecord(rec); got >= 50 {
		t.Errorf("ScoreRecord() without upstream = %v, want < 50", got)
	}
}

func TestTokenizeDropsShortTokens(t *testing.T) {
	tokens := tokenize("a I ok go nice")
	for _, tok := range tokens {
		if len(tok) <= 1 {
			t.Errorf("tokenize() kept short token %q", tok)
		}
	}
	joined := strings.Join(tokens, " ")
	if !strings.Contains(joined, "ok") || !strings.Contains(joined, "nice") {
		t.Errorf("tokenize() = %v, missing expected tokens", tokens)
	}
}
