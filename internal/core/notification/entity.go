package notification

import (
	"context"
	"time"
)

// Outcome classifies what happened to one subscriber during a fan-out
type Outcome string

const (
	OutcomeSent       Outcome = "sent"
	OutcomeNotFound   Outcome = "not_found"
	OutcomeFailed     Outcome = "failed"
	OutcomeSendFailed Outcome = "send_failed"
	OutcomeSkipped    Outcome = "skipped"
)

// Result is the outcome for one subscriber
type Result struct {
	UserID  int64
	City    string
	Outcome Outcome
	Err     error
}

// Report summarizes one fan-out over all subscribers
type Report struct {
	TickID    string
	StartedAt time.Time
	Duration  time.Duration
	Results   []Result
	// Err is set when the subscription list could not be read
	Err error
}

// Count returns the number of results with outcome
func (r *Report) Count(outcome Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == outcome {
			n++
		}
	}
	return n
}

// Delivered counts subscribers that received any message
func (r *Report) Delivered() int {
	return r.Count(OutcomeSent) + r.Count(OutcomeNotFound)
}

type tickIDKey struct{}

// WithTickID attaches a tick correlation id to ctx
func WithTickID(ctx context.Context, tickID string) context.Context {
	return context.WithValue(ctx, tickIDKey{}, tickID)
}

// TickID returns the tick correlation id of ctx or ""
func TickID(ctx context.Context) string {
	id, _ := ctx.Value(tickIDKey{}).(string)
	return id
}
