package models

// Candidate is a single gif returned by a search, already narrowed to the
// configured size variant.
type Candidate struct {
	URL     string
	Variant string
}

// Resolution is the answer to a single gif request.
type Resolution struct {
	URL      string `json:"url"`
	Reserved bool   `json:"reserved"`
}
