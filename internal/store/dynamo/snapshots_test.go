package dynamo

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/signalhouse/creatorstats/internal/model"
)

func TestEntityKey(t *testing.T) {
	got := entityKey(model.EntityProject, "proj-1", "u42")
	want := "project#proj-1#u42"
	if got != want {
		t.Errorf("entityKey = %q, want %q", got, want)
	}
}

// The insert condition checks attribute_not_exists(asOfDate), so the sort
// key must land as a top-level attribute when the snapshot is embedded.
func TestSnapshotItemLayout(t *testing.T) {
	snap := model.SmartFollowersSnapshot{
		EntityType:          model.EntityCreator,
		EntityID:            "creator-9",
		XUserID:             "u9",
		AsOfDate:            "2026-02-28",
		SmartFollowersCount: 120,
		SmartFollowersPct:   4.8,
		IsEstimate:          true,
		CreatedAt:           time.Date(2026, 2, 28, 6, 0, 0, 0, time.UTC),
	}

	item, err := attributevalue.MarshalMap(snapshotItem{
		EntityKey:              entityKey(snap.EntityType, snap.EntityID, snap.XUserID),
		SmartFollowersSnapshot: snap,
		TTL:                    time.Now().Add(snapshotTTL).Unix(),
	})
	if err != nil {
		t.Fatalf("MarshalMap failed: %v", err)
	}

	for _, attr := range []string{"entityKey", "asOfDate", "ttl"} {
		if _, ok := item[attr]; !ok {
			t.Errorf("marshalled item missing top-level attribute %q", attr)
		}
	}
	if av, ok := item["asOfDate"].(*types.AttributeValueMemberS); !ok || av.Value != "2026-02-28" {
		t.Errorf("asOfDate attribute = %#v, want S 2026-02-28", item["asOfDate"])
	}

	var back snapshotItem
	if err := attributevalue.UnmarshalMap(item, &back); err != nil {
		t.Fatalf("UnmarshalMap failed: %v", err)
	}
	if back.SmartFollowersSnapshot != snap {
		t.Errorf("round-trip snapshot = %+v, want %+v", back.SmartFollowersSnapshot, snap)
	}
	if back.EntityKey != "creator#creator-9#u9" {
		t.Errorf("round-trip entityKey = %q", back.EntityKey)
	}
}
