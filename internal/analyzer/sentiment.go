// Package analyzer holds the pure scoring primitives: the weighted
// sentiment lexicon, the topic taxonomy, the bot-risk heuristic, and
// engagement weighting. Everything here is a deterministic function of its
// inputs; persistence and orchestration live elsewhere.
package analyzer

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/signalhouse/creatorstats/internal/model"
)

// Sentiment scores live on a 0-100 scale where 50 means neutral or
// indeterminate. Raw polarity is compressed toward the midpoint so a
// single strong keyword cannot swing a text to the extremes.
const (
	neutralSentiment  = 50.0
	compressionFactor = 0.6
)

var (
	urlPattern     = regexp.MustCompile(`https?://\S+`)
	mentionPattern = regexp.MustCompile(`@\w+`)
)

// SentimentAnalyzer scores text polarity against the built-in lexicon.
type SentimentAnalyzer struct{}

// NewSentimentAnalyzer creates a sentiment analyzer. The lexicon is
// package-level and immutable, so the analyzer itself carries no state.
func NewSentimentAnalyzer() *SentimentAnalyzer {
	return &SentimentAnalyzer{}
}

// Score returns the sentiment of a single text in [0,100].
func (a *SentimentAnalyzer) Score(text string) float64 {
	positive, negative := a.accumulate(text)

	total := positive + negative
	if total == 0 {
		return neutralSentiment
	}

	raw := positive / total * 100
	score := math.Round(neutralSentiment + (raw-neutralSentiment)*compressionFactor)
	return clampScore(score, 0, 100)
}

// ScoreAll applies Score across a batch of texts.
func (a *SentimentAnalyzer) ScoreAll(texts []string) []float64 {
	scores := make([]float64, len(texts))
	for i, text := range texts {
		scores[i] = a.Score(text)
	}
	return scores
}

// ScoreRecord scores one content record, preferring a sentiment computed
// upstream when the record already carries one.
func (a *SentimentAnalyzer) ScoreRecord(rec model.ContentRecord) float64 {
	if rec.SentimentScore != nil {
		return clampScore(*rec.SentimentScore, 0, 100)
	}
	return a.Score(rec.Text)
}

// accumulate walks the tokens left to right and returns the positive and
// negative weight totals. Negators and intensifiers modify only the next
// lexicon hit; any other token resets them.
func (a *SentimentAnalyzer) accumulate(text string) (positive, negative float64) {
	intensifier := 1.0
	negated := false

	for _, token := range tokenize(text) {
		if _, ok := negators[token]; ok {
			negated = true
			continue
		}
		if weight, ok := intensifiers[token]; ok {
			intensifier = weight
			continue
		}

		if weight, ok := positiveWords[token]; ok {
			contribution := weight * intensifier
			if negated {
				negative += contribution
			} else {
				positive += contribution
			}
			intensifier, negated = 1.0, false
			continue
		}
		if weight, ok := negativeWords[token]; ok {
			contribution := weight * intensifier
			if negated {
				positive += contribution
			} else {
				negative += contribution
			}
			intensifier, negated = 1.0, false
			continue
		}

		intensifier, negated = 1.0, false
	}

	return positive, negative
}

// normalize lowercases the text, strips URLs and mentions, and unwraps
// hashtags to their bare word.
func normalize(text string) string {
	t := strings.ToLower(text)
	t = urlPattern.ReplaceAllString(t, " ")
	t = mentionPattern.ReplaceAllString(t, " ")
	t = strings.ReplaceAll(t, "#", "")
	return t
}

// tokenize splits normalized text on whitespace and punctuation and drops
// tokens of length one or less.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(normalize(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})

	var tokens []string
	for _, field := range fields {
		field = strings.Trim(field, "'")
		if len(field) <= 1 {
			continue
		}
		tokens = append(tokens, field)
	}
	return tokens
}

func clampScore(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
