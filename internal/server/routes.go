package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	slackoauth "golang.org/x/oauth2/slack"

	"giphygetter/internal/delivery"
	"giphygetter/internal/handlers"
	"giphygetter/internal/handlers/api"
	"giphygetter/internal/middleware"
)

// Deps are the services routes are wired to.
type Deps struct {
	Resolver handlers.GifResolver
	Store    handlers.Pinger
	// Downloader may be nil, which disables /gif delivery.
	Downloader *delivery.Downloader
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(deps Deps) {
	probeHandler := handlers.NewProbeHandler(deps.Store)
	commandHandler := handlers.NewCommandHandler(deps.Resolver)
	gifHandler := handlers.NewGifHandler(deps.Resolver, deps.Downloader)
	apiGifHandler := api.NewGifHandler(deps.Resolver)

	s.App.Get("/", handlers.Home(s.Cfg.IsOAuthEnabled()))

	// Health and metrics
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Slack
	s.App.Post("/slack/command", middleware.VerifySlack(s.Cfg.SlackSigningSecret), commandHandler.Handle)

	// Gif delivery
	s.App.Get("/gif/:keyword", gifHandler.Deliver)
	s.App.Get("/api/gif/:keyword", apiGifHandler.Get)

	// Slack app install
	if s.Cfg.IsOAuthEnabled() {
		authHandler := handlers.NewAuthHandler(s.Cfg, slackoauth.Endpoint)
		auth := s.App.Group("/auth/slack", s.sessions...)
		auth.Get("/login", authHandler.Login)
		auth.Get("/callback", authHandler.Callback)
	}
}
