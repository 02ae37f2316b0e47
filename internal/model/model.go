package model

import (
	"fmt"
	"time"
)

// DateFormat is the calendar-day key format used by all date-scoped rows.
const DateFormat = "2006-01-02"

// EntityType identifies what kind of entity a score is attached to.
type EntityType string

const (
	EntityProject EntityType = "project"
	EntityCreator EntityType = "creator"
)

// ParseEntityType validates an entity type string.
func ParseEntityType(s string) (EntityType, error) {
	switch EntityType(s) {
	case EntityProject:
		return EntityProject, nil
	case EntityCreator:
		return EntityCreator, nil
	}
	return "", fmt.Errorf("unknown entity type: %q", s)
}

// Valid reports whether the entity type is one of the known values.
func (e EntityType) Valid() bool {
	return e == EntityProject || e == EntityCreator
}

// ParseDate parses a calendar-day key. Malformed dates are the caller's
// problem and propagate as errors.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders a time as a calendar-day key in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateFormat)
}

// Window is a scoring lookback window.
type Window string

const (
	WindowDay   Window = "24h"
	WindowWeek  Window = "7d"
	WindowMonth Window = "30d"
)

// ParseWindow validates a window string.
func ParseWindow(s string) (Window, error) {
	switch Window(s) {
	case WindowDay, WindowWeek, WindowMonth:
		return Window(s), nil
	}
	return "", fmt.Errorf("unknown window: %q", s)
}

// Duration returns the window length.
func (w Window) Duration() time.Duration {
	switch w {
	case WindowDay:
		return 24 * time.Hour
	case WindowWeek:
		return 7 * 24 * time.Hour
	case WindowMonth:
		return 30 * 24 * time.Hour
	}
	return 0
}

// TrustBand is the coarse classification derived from a signal score.
type TrustBand string

const (
	TrustLow    TrustBand = "low"
	TrustMedium TrustBand = "medium"
	TrustHigh   TrustBand = "high"
)

// TrackedAccount is a platform profile as ingested upstream. The engine
// only reads these rows.
type TrackedAccount struct {
	XUserID          string     `json:"xUserId" db:"x_user_id"`
	Handle           string     `json:"handle" db:"handle"`
	FollowerCount    int        `json:"followerCount" db:"follower_count"`
	FollowingCount   int        `json:"followingCount" db:"following_count"`
	AccountCreatedAt *time.Time `json:"accountCreatedAt" db:"account_created_at"`
}

// FollowEdge is a directed edge meaning src follows dst.
type FollowEdge struct {
	SrcAccountID string `json:"srcAccountId" db:"src_account_id"`
	DstAccountID string `json:"dstAccountId" db:"dst_account_id"`
}

// SmartAccountScore is the daily classification of an account produced by
// the ranking stage: raw pagerank, bot risk, the blended smart score, and
// whether the account made the smart set for that day.
type SmartAccountScore struct {
	AccountID  string  `json:"accountId" db:"account_id"`
	AsOfDate   string  `json:"asOfDate" db:"as_of_date"`
	PageRank   float64 `json:"pagerank" db:"pagerank"`
	BotRisk    float64 `json:"botRisk" db:"bot_risk"`
	SmartScore float64 `json:"smartScore" db:"smart_score"`
	IsSmart    bool    `json:"isSmart" db:"is_smart"`
}

// ContentRecord is the raw unit of engagement analysis: one post or mention
// attributed to an entity.
type ContentRecord struct {
	ID             int64      `json:"id" db:"id"`
	AuthorHandle   string     `json:"authorHandle" db:"author_handle"`
	AuthorID       string     `json:"authorId" db:"author_id"`
	EntityType     EntityType `json:"entityType" db:"entity_type"`
	EntityID       string     `json:"entityId" db:"entity_id"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
	Likes          int        `json:"likes" db:"likes"`
	Replies        int        `json:"replies" db:"replies"`
	Reshares       int        `json:"reshares" db:"reshares"`
	Text           string     `json:"text" db:"text"`
	SentimentScore *float64   `json:"sentimentScore" db:"sentiment_score"`
	IsOfficial     bool       `json:"isOfficial" db:"is_official"`
}

// TrackedEntity is a scoreable entity (a project or a creator) together
// with the platform account it is measured through.
type TrackedEntity struct {
	EntityType EntityType `json:"entityType" db:"entity_type"`
	EntityID   string     `json:"entityId" db:"entity_id"`
	XUserID    string     `json:"xUserId" db:"x_user_id"`
}

// SnapshotKey is the unique key of a smart-followers snapshot row.
type SnapshotKey struct {
	EntityType EntityType
	EntityID   string
	XUserID    string
	AsOfDate   string
}

// Validate rejects unknown entity types and malformed dates, the only
// input class that surfaces as an error.
func (k SnapshotKey) Validate() error {
	if !k.EntityType.Valid() {
		return fmt.Errorf("unknown entity type: %q", k.EntityType)
	}
	if _, err := ParseDate(k.AsOfDate); err != nil {
		return err
	}
	return nil
}

// SmartFollowersSnapshot is the date-keyed cached result of a
// smart-followers computation. At most one row exists per key; rows are
// written once and never mutated for that day.
type SmartFollowersSnapshot struct {
	EntityType          EntityType `json:"entityType" db:"entity_type" dynamodbav:"entityType"`
	EntityID            string     `json:"entityId" db:"entity_id" dynamodbav:"entityId"`
	XUserID             string     `json:"xUserId" db:"x_user_id" dynamodbav:"xUserId"`
	AsOfDate            string     `json:"asOfDate" db:"as_of_date" dynamodbav:"asOfDate"`
	SmartFollowersCount int        `json:"smartFollowersCount" db:"smart_followers_count" dynamodbav:"smartFollowersCount"`
	SmartFollowersPct   float64    `json:"smartFollowersPct" db:"smart_followers_pct" dynamodbav:"smartFollowersPct"`
	IsEstimate          bool       `json:"isEstimate" db:"is_estimate" dynamodbav:"isEstimate"`
	CreatedAt           time.Time  `json:"createdAt" db:"created_at" dynamodbav:"createdAt"`
}

// Key returns the snapshot's unique key tuple.
func (s SmartFollowersSnapshot) Key() SnapshotKey {
	return SnapshotKey{
		EntityType: s.EntityType,
		EntityID:   s.EntityID,
		XUserID:    s.XUserID,
		AsOfDate:   s.AsOfDate,
	}
}

// Result returns the lookup triple callers consume.
func (s SmartFollowersSnapshot) Result() SmartFollowersResult {
	return SmartFollowersResult{
		Count:      s.SmartFollowersCount,
		Pct:        s.SmartFollowersPct,
		IsEstimate: s.IsEstimate,
	}
}

// SmartFollowersResult is the answer to a smart-followers lookup.
// IsEstimate marks results computed without graph data; consumers treat
// those as lower confidence.
type SmartFollowersResult struct {
	Count      int     `json:"count"`
	Pct        float64 `json:"pct"`
	IsEstimate bool    `json:"isEstimate"`
}

// SmartFollowersDelta is the point-in-time comparison against one week and
// one month earlier. Deltas are simple subtractions of three point reads.
type SmartFollowersDelta struct {
	Current   SmartFollowersResult `json:"current"`
	Change7d  int                  `json:"change7d"`
	Change30d int                  `json:"change30d"`
}

// CreatorPostMetric is the derived per-post view the composite scores
// consume. It is computed on demand and never persisted.
type CreatorPostMetric struct {
	ContentType      string  `json:"contentType"`
	EngagementPoints float64 `json:"engagementPoints"`
	Sentiment        float64 `json:"sentiment"`
	AuthorSmartScore float64 `json:"authorSmartScore"`
	AudienceOrgScore float64 `json:"audienceOrgScore"`
	IsOriginal       bool    `json:"isOriginal"`
}

// Pulse is the composite triple for one entity over one window. Heat and
// Signal are nil when the window holds no computable activity; nil and
// zero are different answers.
type Pulse struct {
	Window    Window    `json:"window"`
	Heat      *float64  `json:"heat"`
	Signal    *float64  `json:"signal"`
	TrustBand TrustBand `json:"trustBand,omitempty"`
}

// CreatorAggregate folds per-project pulses into one creator-level view:
// arithmetic means that skip nil inputs, and the most frequent trust band.
type CreatorAggregate struct {
	Heat      *float64  `json:"heat"`
	Signal    *float64  `json:"signal"`
	TrustBand TrustBand `json:"trustBand,omitempty"`
	Projects  int       `json:"projects"`
}
