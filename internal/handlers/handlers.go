package handlers

import (
	"context"

	"giphygetter/internal/gif"
	"giphygetter/internal/metrics"
	"giphygetter/internal/models"
)

// GifResolver picks gifs and maintains reservations and bans.
type GifResolver interface {
	Resolve(ctx context.Context, keyword string, mode gif.Mode) (*models.Resolution, error)
	Reserve(ctx context.Context, keyword, url string) error
	Ban(ctx context.Context, url string) error
}

// resolve runs a lookup and records its outcome.
func resolve(ctx context.Context, r GifResolver, keyword string, mode gif.Mode) (*models.Resolution, error) {
	res, err := r.Resolve(ctx, keyword, mode)
	metrics.RecordResolution(keyword, res, err)
	return res, err
}
