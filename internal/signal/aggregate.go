package signal

import "github.com/signalhouse/creatorstats/internal/model"

var bandRank = map[model.TrustBand]int{
	model.TrustLow:    0,
	model.TrustMedium: 1,
	model.TrustHigh:   2,
}

// AggregateCreator folds one creator's per-project pulses into a single
// view: arithmetic means that skip nil inputs, and the most frequent trust
// band. A project with no computable score contributes nothing to the mean
// instead of dragging it toward zero.
func AggregateCreator(pulses []model.Pulse) model.CreatorAggregate {
	agg := model.CreatorAggregate{Projects: len(pulses)}

	var heats, signals []float64
	var bands []model.TrustBand
	for _, p := range pulses {
		if p.Heat != nil {
			heats = append(heats, *p.Heat)
		}
		if p.Signal != nil {
			signals = append(signals, *p.Signal)
		}
		if p.TrustBand != "" {
			bands = append(bands, p.TrustBand)
		}
	}

	agg.Heat = mean(heats)
	agg.Signal = mean(signals)
	agg.TrustBand = bandMode(bands)
	return agg
}

func mean(vals []float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	m := sum / float64(len(vals))
	return &m
}

// bandMode returns the most frequent band; ties resolve to the higher band
// so a creator on a boundary is not penalized.
func bandMode(bands []model.TrustBand) model.TrustBand {
	if len(bands) == 0 {
		return ""
	}

	counts := make(map[model.TrustBand]int, 3)
	for _, b := range bands {
		counts[b]++
	}

	var best model.TrustBand
	bestCount := -1
	for band, count := range counts {
		if count > bestCount || (count == bestCount && bandRank[band] > bandRank[best]) {
			best = band
			bestCount = count
		}
	}
	return best
}
