package api

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"giphygetter/internal/gif"
	"giphygetter/internal/metrics"
	"giphygetter/internal/models"
	"giphygetter/internal/validation"
)

// Resolver picks a gif for a keyword.
type Resolver interface {
	Resolve(ctx context.Context, keyword string, mode gif.Mode) (*models.Resolution, error)
}

// GifHandler resolves keywords to gif urls via JSON API.
type GifHandler struct {
	resolver Resolver
}

// NewGifHandler creates a new API gif handler.
func NewGifHandler(resolver Resolver) *GifHandler {
	return &GifHandler{resolver: resolver}
}

// Get resolves a keyword to a gif url without downloading it.
func (h *GifHandler) Get(c fiber.Ctx) error {
	raw, err := url.PathUnescape(c.Params("keyword"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid keyword")
	}
	keyword := validation.NormalizeKeyword(raw)
	if err := validation.ValidateKeyword(keyword); err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	mode := gif.ModeRandom
	if sticky, _ := strconv.ParseBool(c.Query("sticky")); sticky {
		mode = gif.ModeSticky
	}

	res, err := h.resolver.Resolve(c.Context(), keyword, mode)
	metrics.RecordResolution(keyword, res, err)
	if err != nil {
		if errors.Is(err, gif.ErrNotFound) {
			return jsonError(c, fiber.StatusNotFound, "no gif found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to resolve keyword")
	}

	return jsonSuccess(c, models.GifResponse{
		Keyword:  keyword,
		URL:      res.URL,
		Reserved: res.Reserved,
	})
}
