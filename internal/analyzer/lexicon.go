package analyzer

// The lexicon is tuned for crypto/social chatter. Weights run 1 (mild)
// to 3 (strong). Tables are built once and never mutated; the
// compare-sentiment tool exists to recalibrate them against a general
// purpose analyzer.

var positiveWords = map[string]float64{
	// strong
	"amazing":       3,
	"excellent":     3,
	"incredible":    3,
	"outstanding":   3,
	"phenomenal":    3,
	"breakthrough":  3,
	"revolutionary": 3,
	"bullish":       3,

	// moderate
	"good":        2,
	"great":       2,
	"love":        2,
	"promising":   2,
	"solid":       2,
	"legit":       2,
	"gem":         2,
	"strong":      2,
	"win":         2,
	"winning":     2,
	"gains":       2,
	"profit":      2,
	"moon":        2,
	"mooning":     2,
	"rally":       2,
	"adoption":    2,
	"partnership": 2,
	"growth":      2,
	"undervalued": 2,
	"alpha":       2,
	"impressive":  2,
	"trusted":     2,
	"secure":      2,
	"innovative":  2,

	// mild
	"nice":        1,
	"cool":        1,
	"useful":      1,
	"helpful":     1,
	"safe":        1,
	"stable":      1,
	"growing":     1,
	"early":       1,
	"potential":   1,
	"interesting": 1,
	"green":       1,
	"bull":        1,
}

var negativeWords = map[string]float64{
	// strong
	"scam":      3,
	"fraud":     3,
	"ponzi":     3,
	"rug":       3,
	"rugpull":   3,
	"rugged":    3,
	"hack":      3,
	"hacked":    3,
	"exploit":   3,
	"exploited": 3,
	"phishing":  3,
	"honeypot":  3,
	"stolen":    3,
	"terrible":  3,
	"awful":     3,
	"horrible":  3,
	"worst":     3,

	// moderate
	"bad":          2,
	"hate":         2,
	"dump":         2,
	"dumping":      2,
	"crash":        2,
	"crashed":      2,
	"bearish":      2,
	"rekt":         2,
	"shady":        2,
	"fake":         2,
	"sketchy":      2,
	"suspicious":   2,
	"lawsuit":      2,
	"sued":         2,
	"insolvent":    2,
	"bankrupt":     2,
	"liquidated":   2,
	"manipulation": 2,
	"manipulated":  2,
	"dead":         2,
	"abandoned":    2,
	"delisted":     2,
	"vaporware":    2,
	"collapse":     2,
	"plummeting":   2,
	"panic":        2,

	// mild
	"down":       1,
	"red":        1,
	"risky":      1,
	"fud":        1,
	"doubt":      1,
	"slow":       1,
	"weak":       1,
	"loss":       1,
	"losses":     1,
	"concern":    1,
	"concerns":   1,
	"warning":    1,
	"drama":      1,
	"overvalued": 1,
}

// negators flip the polarity of the next lexicon hit.
var negators = map[string]struct{}{
	"not":       {},
	"no":        {},
	"never":     {},
	"none":      {},
	"cannot":    {},
	"can't":     {},
	"cant":      {},
	"don't":     {},
	"dont":      {},
	"doesn't":   {},
	"doesnt":    {},
	"didn't":    {},
	"didnt":     {},
	"isn't":     {},
	"isnt":      {},
	"wasn't":    {},
	"wasnt":     {},
	"aren't":    {},
	"arent":     {},
	"weren't":   {},
	"werent":    {},
	"won't":     {},
	"wont":      {},
	"wouldn't":  {},
	"wouldnt":   {},
	"shouldn't": {},
	"shouldnt":  {},
	"ain't":     {},
	"aint":      {},
	"without":   {},
	"hardly":    {},
}

// intensifiers scale the weight of the next lexicon hit. Values below one
// soften rather than amplify.
var intensifiers = map[string]float64{
	"very":       1.5,
	"really":     1.5,
	"truly":      1.5,
	"highly":     1.5,
	"totally":    1.5,
	"deeply":     1.5,
	"super":      1.75,
	"hugely":     1.75,
	"extremely":  2,
	"incredibly": 2,
	"absolutely": 2,
	"insanely":   2,
	"massively":  2,
	"utterly":    2,
	"somewhat":   0.7,
	"kinda":      0.7,
	"mildly":     0.6,
	"slightly":   0.5,
	"barely":     0.5,
}
