package smartrank

import (
	"testing"

	"github.com/signalhouse/creatorstats/internal/model"
)

func edge(src, dst string) model.FollowEdge {
	return model.FollowEdge{SrcAccountID: src, DstAccountID: dst}
}

func TestPageRankEmpty(t *testing.T) {
	ranks := PageRank(nil, 0.85, 30)
	if len(ranks) != 0 {
		t.Errorf("PageRank(no edges) = %v, want empty", ranks)
	}
}

func TestPageRankChain(t *testing.T) {
	// a follows b follows c: influence accumulates down the chain.
	ranks := PageRank([]model.FollowEdge{edge("a", "b"), edge("b", "c")}, 0.85, 50)

	if len(ranks) != 3 {
		t.Fatalf("expected 3 ranked nodes, got %d", len(ranks))
	}
	if ranks["c"] != 1.0 {
		t.Errorf("top node must normalize to 1, got %v", ranks["c"])
	}
	if !(ranks["c"] > ranks["b"] && ranks["b"] > ranks["a"]) {
		t.Errorf("rank order wrong: a=%v b=%v c=%v", ranks["a"], ranks["b"], ranks["c"])
	}
}

func TestPageRankStar(t *testing.T) {
	edges := []model.FollowEdge{
		edge("b", "a"),
		edge("c", "a"),
		edge("d", "a"),
	}
	ranks := PageRank(edges, 0.85, 50)

	if ranks["a"] != 1.0 {
		t.Errorf("hub rank = %v, want 1.0", ranks["a"])
	}
	if ranks["b"] != ranks["c"] || ranks["c"] != ranks["d"] {
		t.Errorf("symmetric spokes must rank equally: b=%v c=%v d=%v", ranks["b"], ranks["c"], ranks["d"])
	}
	if ranks["b"] >= 1.0 || ranks["b"] <= 0 {
		t.Errorf("spoke rank = %v, want in (0,1)", ranks["b"])
	}
}

func TestPageRankConservesMass(t *testing.T) {
	// b is dangling; its mass must be redistributed, not lost, so every
	// node keeps a positive rank.
	edges := []model.FollowEdge{edge("a", "b"), edge("c", "a")}
	ranks := PageRank(edges, 0.85, 50)

	for node, rank := range ranks {
		if rank <= 0 {
			t.Errorf("node %s rank = %v, want positive", node, rank)
		}
		if rank > 1 {
			t.Errorf("node %s rank = %v, want <= 1 after normalization", node, rank)
		}
	}
}

func TestPageRankDeterministic(t *testing.T) {
	edges := []model.FollowEdge{
		edge("a", "b"), edge("b", "c"), edge("c", "a"),
		edge("d", "a"), edge("d", "b"), edge("e", "d"),
	}

	first := PageRank(edges, 0.85, 40)
	second := PageRank(edges, 0.85, 40)
	for node, rank := range first {
		if second[node] != rank {
			t.Errorf("node %s rank differs across runs: %v vs %v", node, rank, second[node])
		}
	}
}
