// Package giphy is a small client for the Giphy search API.
package giphy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"giphygetter/internal/models"
)

// PublicAPIKey is Giphy's public beta key, used when no key is configured.
const PublicAPIKey = "dc6zaTOxFJmzC"

const (
	DefaultBaseURL = "https://api.giphy.com"
	DefaultTimeout = 5 * time.Second
)

// ErrInvalidVariant is returned for image size names Giphy does not provide.
var ErrInvalidVariant = errors.New("invalid giphy image variant")

// Variant is a named image rendition in a Giphy search result.
type Variant string

// Giphy rendition names.
const (
	VariantOriginal         Variant = "original"
	VariantFixedHeight      Variant = "fixed_height"
	VariantFixedWidth       Variant = "fixed_width"
	VariantFixedHeightSmall Variant = "fixed_height_small"
	VariantFixedWidthSmall  Variant = "fixed_width_small"
)

var variants = []Variant{
	VariantOriginal,
	VariantFixedHeight,
	VariantFixedWidth,
	VariantFixedHeightSmall,
	VariantFixedWidthSmall,
}

// ParseVariant validates a rendition name.
func ParseVariant(s string) (Variant, error) {
	v := Variant(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range variants {
		if v == known {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidVariant, s)
}

// SearchError reports a failed search call. Callers treat it as an empty
// result set.
type SearchError struct {
	Keyword string
	Err     error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("giphy search %q: %v", e.Keyword, e.Err)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// Config configures a Client.
type Config struct {
	BaseURL   string
	APIKey    string
	Variant   string
	Timeout   time.Duration
	UserAgent string
}

// Client searches Giphy for gifs. It is safe for concurrent use.
type Client struct {
	http    *resty.Client
	apiKey  string
	variant Variant
	timeout time.Duration
}

// New creates a Client. An unknown variant is rejected here, before any
// search is attempted.
func New(cfg Config) (*Client, error) {
	variant, err := ParseVariant(cfg.Variant)
	if err != nil {
		return nil, err
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.APIKey == "" {
		cfg.APIKey = PublicAPIKey
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	if cfg.UserAgent != "" {
		httpClient.SetHeader("User-Agent", cfg.UserAgent)
	}

	return &Client{
		http:    httpClient,
		apiKey:  cfg.APIKey,
		variant: variant,
		timeout: cfg.Timeout,
	}, nil
}

// Variant returns the rendition the client selects from results.
func (c *Client) Variant() Variant {
	return c.variant
}

// Search runs one search for keyword and returns the configured rendition
// of each result, in Giphy's order. It never retries.
func (c *Client) Search(ctx context.Context, keyword string) ([]models.Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":       keyword,
			"api_key": c.apiKey,
		}).
		Get("/v1/gifs/search")
	if err != nil {
		return nil, &SearchError{Keyword: keyword, Err: err}
	}
	if resp.IsError() {
		return nil, &SearchError{Keyword: keyword, Err: fmt.Errorf("status %d", resp.StatusCode())}
	}

	var sr searchResponse
	if err := json.Unmarshal(resp.Body(), &sr); err != nil {
		return nil, &SearchError{Keyword: keyword, Err: fmt.Errorf("decode response: %w", err)}
	}

	candidates := make([]models.Candidate, 0, len(sr.Data))
	for _, gif := range sr.Data {
		image, ok := gif.Images[string(c.variant)]
		if !ok || image.URL == "" {
			continue
		}
		candidates = append(candidates, models.Candidate{
			URL:     image.URL,
			Variant: string(c.variant),
		})
	}
	return candidates, nil
}

type searchResponse struct {
	Data []struct {
		ID     string `json:"id"`
		Images map[string]struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"data"`
}
