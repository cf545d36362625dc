package handlers

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"giphygetter/internal/delivery"
	"giphygetter/internal/gif"
	"giphygetter/internal/validation"
)

// GifHandler serves resolved gifs as image downloads.
type GifHandler struct {
	resolver   GifResolver
	downloader *delivery.Downloader
}

// NewGifHandler creates a new gif handler. A nil downloader disables
// delivery; requests then fail with 400.
func NewGifHandler(resolver GifResolver, downloader *delivery.Downloader) *GifHandler {
	return &GifHandler{resolver: resolver, downloader: downloader}
}

// Deliver resolves a keyword and streams the gif back.
// ?download=1 forces an attachment, ?sticky=1 prefers the same gif each time.
func (h *GifHandler) Deliver(c fiber.Ctx) error {
	if h.downloader == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": "error",
			"error":  "Unable to store local file. No temp directory was provided.",
		})
	}

	raw, err := url.PathUnescape(c.Params("keyword"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid keyword")
	}
	keyword := validation.NormalizeKeyword(raw)
	if err := validation.ValidateKeyword(keyword); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	mode := gif.ModeRandom
	if queryFlag(c, "sticky") {
		mode = gif.ModeSticky
	}

	ctx := c.Context()
	res, err := resolve(ctx, h.resolver, keyword, mode)
	if err != nil {
		if errors.Is(err, gif.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "no gif found")
		}
		return err
	}

	data, err := h.downloader.Read(ctx, keyword, res.URL)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("keyword", keyword).Str("url", res.URL).Msg("gif download failed")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to download gif")
	}

	disposition := fmt.Sprintf("filename=%q", keyword+".gif")
	if queryFlag(c, "download") {
		disposition = "attachment; " + disposition
	}
	c.Set(fiber.HeaderContentType, "image/gif")
	c.Set(fiber.HeaderContentLength, strconv.Itoa(len(data)))
	c.Set(fiber.HeaderContentDisposition, disposition)
	return c.Send(data)
}

func queryFlag(c fiber.Ctx, name string) bool {
	v, err := strconv.ParseBool(c.Query(name))
	return err == nil && v
}
