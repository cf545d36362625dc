package handlers

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"giphygetter/internal/config"
)

const (
	installFailed    = "An error occurred and your Slack was not integrated with GiphyGetter."
	installSucceeded = "GiphyGetter was successfully added to your Slack!"
)

// AuthHandler handles the Slack app install (OAuth) flow.
type AuthHandler struct {
	oauth2Config oauth2.Config
}

// NewAuthHandler creates a new auth handler for the given Slack OAuth endpoint.
func NewAuthHandler(cfg *config.Config, endpoint oauth2.Endpoint) *AuthHandler {
	endpoint.AuthStyle = oauth2.AuthStyleInParams
	return &AuthHandler{
		oauth2Config: oauth2.Config{
			ClientID:     cfg.SlackClientID,
			ClientSecret: cfg.SlackClientSecret,
			RedirectURL:  cfg.SlackRedirectURI,
			Endpoint:     endpoint,
			Scopes:       []string{"commands"},
		},
	}
}

// Login starts the install flow by redirecting to Slack.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	state := generateState()

	sess := session.FromContext(c)
	if sess == nil {
		return fiber.NewError(fiber.StatusInternalServerError, "session not available")
	}
	sess.Set("oauth_state", state)

	return c.Redirect().To(h.oauth2Config.AuthCodeURL(state))
}

// Callback exchanges the code Slack sends back for an access token.
// Installs started from Slack's app directory carry no state of ours, so
// the state is only checked when Login stored one.
func (h *AuthHandler) Callback(c fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing code")
	}

	if sess := session.FromContext(c); sess != nil {
		if saved, ok := sess.Get("oauth_state").(string); ok && saved != "" {
			if saved != c.Query("state") {
				return fiber.NewError(fiber.StatusBadRequest, "invalid state")
			}
			sess.Delete("oauth_state")
		}
	}

	ctx := c.Context()
	token, err := h.oauth2Config.Exchange(ctx, code)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("slack oauth exchange failed")
		return c.Status(fiber.StatusInternalServerError).Render("install", fiber.Map{
			"Title":   "Install failed",
			"Message": installFailed,
		})
	}

	teamID, _ := token.Extra("team_id").(string)
	teamName, _ := token.Extra("team_name").(string)
	log.Ctx(ctx).Info().Str("team_id", teamID).Str("team", teamName).Msg("slack team installed")

	return c.Render("install", fiber.Map{
		"Title":   "Installed",
		"Message": installSucceeded,
	})
}

func generateState() string {
	b := make([]byte, 16)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
