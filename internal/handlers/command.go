package handlers

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"

	"giphygetter/internal/gif"
	"giphygetter/internal/metrics"
	"giphygetter/internal/slackmsg"
	"giphygetter/internal/validation"
)

// CommandHandler serves the Slack slash command and its message buttons.
type CommandHandler struct {
	resolver GifResolver
}

// NewCommandHandler creates a new command handler.
func NewCommandHandler(resolver GifResolver) *CommandHandler {
	return &CommandHandler{resolver: resolver}
}

// Handle answers both slash commands (form field "text") and button
// presses (form field "payload").
func (h *CommandHandler) Handle(c fiber.Ctx) error {
	if len(c.Body()) == 0 {
		return fiber.ErrBadRequest
	}

	ctx := c.Context()
	logger := log.Ctx(ctx)

	search := c.FormValue("text")
	if payload := c.FormValue("payload"); payload != "" {
		var cb slack.InteractionCallback
		if err := json.Unmarshal([]byte(payload), &cb); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		if len(cb.ActionCallback.AttachmentActions) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "payload has no actions")
		}

		action, err := slackmsg.ParseAction(cb.ActionCallback.AttachmentActions[0].Value)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		metrics.RecordAction(action.Name)

		switch action.Name {
		case slackmsg.ActionBan:
			if action.URL == "" {
				return fiber.NewError(fiber.StatusBadRequest, "ban requires a url")
			}
			if err := h.resolver.Ban(ctx, action.URL); err != nil {
				var partial *gif.PartialBanError
				if !errors.As(err, &partial) {
					logger.Error().Err(err).Str("url", action.URL).Msg("ban failed")
					return c.JSON(slackmsg.Failure("Sorry, that gif could not be banished."))
				}
			}
			logger.Info().Str("url", action.URL).Str("user", cb.User.ID).Msg("gif banned")
			return c.JSON(slackmsg.DeleteOriginal())
		case slackmsg.ActionDelete:
			return c.JSON(slackmsg.DeleteOriginal())
		case slackmsg.ActionReserve:
			if action.URL == "" {
				return fiber.NewError(fiber.StatusBadRequest, "reserve requires a url")
			}
			keyword := validation.NormalizeKeyword(action.Keyword)
			if err := validation.ValidateKeyword(keyword); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			if err := h.resolver.Reserve(ctx, keyword, action.URL); err != nil {
				logger.Error().Err(err).Str("keyword", keyword).Msg("reserve failed")
				return c.JSON(slackmsg.Failure("Sorry, that search term could not be reserved."))
			}
			logger.Info().Str("keyword", keyword).Str("url", action.URL).Msg("keyword reserved")
			search = keyword
		case slackmsg.ActionRetry:
			search = action.Keyword
		default:
			return fiber.NewError(fiber.StatusBadRequest, "unknown action")
		}
	} else {
		metrics.RecordAction("search")
	}

	keyword := validation.NormalizeKeyword(search)
	if err := validation.ValidateKeyword(keyword); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	res, err := resolve(ctx, h.resolver, keyword, gif.ModeRandom)
	if err != nil {
		if errors.Is(err, gif.ErrNotFound) {
			logger.Debug().Err(err).Str("keyword", keyword).Msg("no gif found")
			return c.JSON(slackmsg.NotFound(keyword))
		}
		return err
	}

	return c.JSON(slackmsg.GifMessage(keyword, res.URL, res.Reserved))
}
