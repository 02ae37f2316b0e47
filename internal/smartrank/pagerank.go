// Package smartrank produces the daily smart-account classification: a
// PageRank pass over the follow graph blended with the bot-risk heuristic,
// with the top slice of accounts admitted to the day's smart set.
package smartrank

import (
	"sort"

	"github.com/signalhouse/creatorstats/internal/model"
)

// convergenceEpsilon stops iteration early once ranks move less than this
// in aggregate.
const convergenceEpsilon = 1e-6

// PageRank ranks accounts by follow-graph influence. An edge src→dst means
// src follows dst, so rank flows toward the followed account. The returned
// ranks are normalized so the top account scores 1. Nodes are walked in
// sorted order to keep float accumulation, and therefore output, identical
// across runs.
func PageRank(edges []model.FollowEdge, damping float64, iterations int) map[string]float64 {
	nodeSet := make(map[string]struct{})
	outDegree := make(map[string]int)
	incoming := make(map[string][]string)
	for _, e := range edges {
		nodeSet[e.SrcAccountID] = struct{}{}
		nodeSet[e.DstAccountID] = struct{}{}
		outDegree[e.SrcAccountID]++
		incoming[e.DstAccountID] = append(incoming[e.DstAccountID], e.SrcAccountID)
	}
	if len(nodeSet) == 0 {
		return map[string]float64{}
	}

	nodes := make([]string, 0, len(nodeSet))
	for node := range nodeSet {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)

	n := float64(len(nodes))
	ranks := make(map[string]float64, len(nodes))
	for _, node := range nodes {
		ranks[node] = 1 / n
	}

	for i := 0; i < iterations; i++ {
		// Rank held by accounts that follow nobody would otherwise leak
		// out of the system; spread it evenly instead.
		var danglingMass float64
		for _, node := range nodes {
			if outDegree[node] == 0 {
				danglingMass += ranks[node]
			}
		}

		next := make(map[string]float64, len(nodes))
		base := (1 - damping) / n
		var delta float64
		for _, node := range nodes {
			sum := danglingMass / n
			for _, src := range incoming[node] {
				sum += ranks[src] / float64(outDegree[src])
			}
			rank := base + damping*sum
			next[node] = rank
			diff := rank - ranks[node]
			if diff < 0 {
				diff = -diff
			}
			delta += diff
		}
		ranks = next

		if delta < convergenceEpsilon {
			break
		}
	}

	var max float64
	for _, rank := range ranks {
		if rank > max {
			max = rank
		}
	}
	if max > 0 {
		for _, node := range nodes {
			ranks[node] /= max
		}
	}
	return ranks
}
