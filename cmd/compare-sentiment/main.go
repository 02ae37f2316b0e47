// compare-sentiment runs the engine's lexicon analyzer side by side with
// VADER over sample texts, for calibrating lexicon weights against a
// general-purpose model.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/jonreiter/govader"

	"github.com/signalhouse/creatorstats/internal/analyzer"
)

// sampleTexts exercises the cases the lexicon was tuned on: negation,
// intensifiers, hype vocabulary, and plain neutral updates.
var sampleTexts = []string{
	"This project is NOT a scam, very promising team",
	"Huge rugpull, devs dumped everything",
	"gm! new partnership announcement coming this week",
	"Extremely bullish on this roadmap",
	"The token dumped hard after the exploit",
	"Shipping steady updates, solid progress",
	"This is a scam, avoid at all costs",
	"Not great, not terrible",
	"Incredible growth this quarter, great community",
	"Weekly dev update: fixed indexer lag",
}

func main() {
	var (
		file    = flag.String("file", "", "Read texts to compare from this file, one per line")
		verbose = flag.Bool("verbose", false, "Print each text in full instead of a preview")
	)
	flag.Parse()

	texts := sampleTexts
	if *file != "" {
		loaded, err := readLines(*file)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", *file, err)
		}
		texts = loaded
	} else if flag.NArg() > 0 {
		texts = flag.Args()
	}

	if len(texts) == 0 {
		log.Fatal("No texts to compare")
	}

	lexicon := analyzer.NewSentimentAnalyzer()
	vader := govader.NewSentimentIntensityAnalyzer()

	type row struct {
		text    string
		lexicon float64
		vader   float64
	}

	rows := make([]row, 0, len(texts))
	var totalDiff float64
	for _, text := range texts {
		lex := lexicon.Score(text)
		// Rescale VADER's [-1,1] compound onto the engine's 0-100 scale.
		compound := vader.PolarityScores(text).Compound
		v := (compound + 1) * 50

		rows = append(rows, row{text: text, lexicon: lex, vader: v})
		totalDiff += math.Abs(lex - v)
	}

	// Biggest disagreements first; those are the lexicon entries worth a look.
	sort.Slice(rows, func(i, j int) bool {
		return math.Abs(rows[i].lexicon-rows[i].vader) > math.Abs(rows[j].lexicon-rows[j].vader)
	})

	fmt.Printf("%-52s %8s %8s %8s\n", "TEXT", "LEXICON", "VADER", "DIFF")
	for _, r := range rows {
		fmt.Printf("%-52s %8.1f %8.1f %+8.1f\n", preview(r.text, *verbose), r.lexicon, r.vader, r.lexicon-r.vader)
	}

	fmt.Println()
	fmt.Printf("Compared %d texts, mean absolute difference: %.1f points\n", len(rows), totalDiff/float64(len(rows)))
}

func preview(text string, full bool) string {
	text = strings.ReplaceAll(text, "\n", " ")
	if full || len(text) <= 52 {
		return text
	}
	return text[:49] + "..."
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}
