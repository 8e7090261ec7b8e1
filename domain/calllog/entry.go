// Package calllog provides value types for the dispatch audit trail.
package calllog

import "time"

// Outcome classifies how a dispatch ended.
type Outcome string

const (
	OutcomeOK         Outcome = "ok"
	OutcomeValidation Outcome = "validation_error"
	OutcomeNotFound   Outcome = "not_found"
	OutcomeError      Outcome = "error"
)

// Entry represents one dispatched call (value type).
type Entry struct {
	ID        string
	RequestID string
	Feature   string
	Method    string
	Outcome   Outcome
	LatencyMs int64
	RemoteIP  string
	Timestamp time.Time
}

// Summary is aggregated dispatch activity for one feature over a period.
type Summary struct {
	Feature      string
	PeriodStart  time.Time
	PeriodEnd    time.Time
	CallCount    int64
	ErrorCount   int64
	AvgLatencyMs int64
}

// ErrorRate returns the fraction of calls that did not end OutcomeOK.
func (s Summary) ErrorRate() float64 {
	if s.CallCount == 0 {
		return 0
	}
	return float64(s.ErrorCount) / float64(s.CallCount)
}
