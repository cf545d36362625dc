package models

import "time"

// Keyword lookup outcome constants
const (
	OutcomeReserved = "reserved"
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
)

// KeywordLookup represents a per-keyword hit count by outcome.
type KeywordLookup struct {
	Keyword    string
	Outcome    string
	Count      int64
	LastSeenAt time.Time
}
