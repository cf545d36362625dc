package models

// GifResponse contains the result of resolving a keyword through the JSON API.
type GifResponse struct {
	Keyword  string `json:"keyword"`
	URL      string `json:"url"`
	Reserved bool   `json:"reserved"`
}
