package analyzer

import "strings"

// topicOrder fixes the iteration order so classification output is
// deterministic regardless of map iteration.
var topicOrder = []string{
	"ai",
	"defi",
	"nfts",
	"news",
	"macro",
	"airdrops",
	"memes",
	"trading",
	"gaming",
	"crypto",
}

// topicKeywords maps each taxonomy topic to its keyword set. Single words
// match on token membership; entries containing a space match as
// substrings of the normalized text.
var topicKeywords = map[string][]string{
	"ai": {
		"ai", "agi", "llm", "llms", "gpt", "chatgpt", "openai",
		"anthropic", "neural", "agents", "inference",
		"machine learning", "deep learning",
	},
	"defi": {
		"defi", "dex", "amm", "staking", "yield", "liquidity",
		"lending", "vault", "vaults", "tvl", "swap", "stablecoin",
		"restaking", "perps",
	},
	"nfts": {
		"nft", "nfts", "mint", "minting", "pfp", "opensea",
		"collectible", "collectibles", "royalties",
	},
	"news": {
		"news", "announcement", "announced", "breaking", "launch",
		"launches", "launched", "release", "released", "listing",
		"listed",
	},
	"macro": {
		"fed", "macro", "inflation", "cpi", "rates", "recession",
		"etf", "treasury", "tariffs", "gdp",
	},
	"airdrops": {
		"airdrop", "airdrops", "claim", "testnet", "points",
		"eligibility", "allocation",
	},
	"memes": {
		"meme", "memes", "memecoin", "doge", "shiba", "pepe",
		"wojak", "degen", "wen", "gm", "lol", "lmao",
	},
	"trading": {
		"trading", "long", "short", "leverage", "chart", "breakout",
		"support", "resistance", "futures", "spot", "entry",
		"stoploss", "candles",
	},
	"gaming": {
		"gaming", "game", "games", "playtoearn", "p2e", "guild",
		"esports", "metaverse", "quest",
	},
	"crypto": {
		"crypto", "bitcoin", "btc", "ethereum", "eth", "solana",
		"sol", "blockchain", "token", "tokens", "onchain", "web3",
		"wallet", "altcoin", "altcoins", "hodl",
	},
}

// Topics tags a text with every taxonomy topic whose keyword set it
// matches. Matching is case-insensitive keyword membership; a text can
// carry zero, one, or several topics and there is no ranking.
func Topics(text string) []string {
	normalized := normalize(text)

	tokenSet := make(map[string]struct{})
	for _, token := range tokenize(text) {
		tokenSet[token] = struct{}{}
	}

	var topics []string
	for _, topic := range topicOrder {
		if matchesTopic(topic, normalized, tokenSet) {
			topics = append(topics, topic)
		}
	}
	return topics
}

// TopicsAll classifies a batch of texts.
func TopicsAll(texts []string) [][]string {
	result := make([][]string, len(texts))
	for i, text := range texts {
		result[i] = Topics(text)
	}
	return result
}

func matchesTopic(topic, normalized string, tokenSet map[string]struct{}) bool {
	for _, keyword := range topicKeywords[topic] {
		if strings.Contains(keyword, " ") {
			if strings.Contains(normalized, keyword) {
				return true
			}
			continue
		}
		if _, ok := tokenSet[keyword]; ok {
			return true
		}
	}
	return false
}
