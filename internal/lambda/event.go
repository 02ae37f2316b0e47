// Package lambda holds the shared invocation types and runtime wiring for
// the pipeline Lambda functions.
package lambda

import (
	"time"

	"github.com/signalhouse/creatorstats/internal/model"
)

// Event represents the EventBridge event structure passed to the pipeline
// functions. The orchestrator forwards asOfDate and runId so a whole day's
// run stays traceable across functions.
type Event struct {
	Source   string `json:"source"`
	Time     string `json:"time"`
	AsOfDate string `json:"asOfDate,omitempty"`
	RunID    string `json:"runId,omitempty"`
}

// Response represents the Lambda response
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
	RunID      string `json:"runId,omitempty"`
	AsOfDate   string `json:"asOfDate,omitempty"`
}

// Date returns the event's score date, defaulting to today in UTC when the
// trigger carries none. EventBridge cron events carry no asOfDate.
func (e Event) Date(now time.Time) string {
	if e.AsOfDate != "" {
		return e.AsOfDate
	}
	return now.UTC().Format(model.DateFormat)
}
