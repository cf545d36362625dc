package models

// Reservation pins a keyword to a single gif url. One keyword maps to
// exactly one url at a time.
type Reservation struct {
	Keyword string `json:"keyword" yaml:"keyword"`
	URL     string `json:"url" yaml:"url"`
}

