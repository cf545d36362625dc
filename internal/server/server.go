package server

import (
	"crypto/sha256"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/encryptcookie"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/session"
	"github.com/gofiber/storage/redis/v3"
	"github.com/gofiber/template/html/v3"
	"github.com/rs/zerolog/log"

	"giphygetter/internal/config"
	"giphygetter/internal/middleware"
	"giphygetter/views"
)

// Server wraps the Fiber app and configuration.
type Server struct {
	App *fiber.App
	Cfg *config.Config

	// sessions is the cookie and session stack used by the install flow.
	sessions []any
}

// jsonPrefixes are served JSON errors instead of the HTML error page.
var jsonPrefixes = []string{"/api/", "/slack/", "/gif/"}

// probePaths are exempt from rate limiting.
var probePaths = map[string]bool{"/healthz": true, "/readyz": true, "/metrics": true}

// skipLimiter exempts probes and Slack. Every Slack request arrives from
// Slack's own servers, so a per-IP limit would throttle a whole workspace;
// those routes are guarded by signature verification instead.
func skipLimiter(c fiber.Ctx) bool {
	return probePaths[c.Path()] || strings.HasPrefix(c.Path(), "/slack/")
}

// New creates a new server with middleware configured.
func New(cfg *config.Config) *Server {
	engine := html.NewFileSystem(http.FS(views.FS), ".html")

	app := fiber.New(fiber.Config{
		Views:        engine,
		ViewsLayout:  "layouts/main",
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger())

	var storage fiber.Storage
	if cfg.IsRedisEnabled() {
		storage = redis.New(redis.Config{URL: cfg.RedisURL})
		log.Info().Msg("using redis for sessions and rate limits")
	}

	app.Use(limiter.New(limiter.Config{
		Next:       skipLimiter,
		Max:        cfg.RateLimitMax,
		Expiration: 1 * time.Minute,
		Storage:    storage,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"status": "error",
				"error":  "Rate limit exceeded. Please try again later.",
			})
		},
	}))

	sessionMiddleware, _ := session.NewWithStore(session.Config{
		Storage:        storage,
		CookieSecure:   cfg.TLSEnabled || !cfg.IsDev(),
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})

	return &Server{
		App: app,
		Cfg: cfg,
		sessions: []any{
			encryptcookie.New(encryptcookie.Config{Key: deriveEncryptionKey(cfg.SessionSecret)}),
			sessionMiddleware,
		},
	}
}

func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	for _, prefix := range jsonPrefixes {
		if strings.HasPrefix(c.Path(), prefix) {
			return c.Status(code).JSON(fiber.Map{
				"status": "error",
				"error":  message,
			})
		}
	}

	return c.Status(code).Render("error", fiber.Map{
		"Title":   "Error",
		"Message": message,
	})
}

// Start starts the server with the configured address and TLS settings.
func (s *Server) Start() error {
	if s.Cfg.TLSEnabled {
		log.Info().Str("addr", s.Cfg.ServerAddr).Msg("starting server with TLS")
		return s.App.Listen(s.Cfg.ServerAddr, fiber.ListenConfig{
			CertFile:              s.Cfg.TLSCertFile,
			CertKeyFile:           s.Cfg.TLSKeyFile,
			DisableStartupMessage: true,
			TLSConfigFunc: func(tc *tls.Config) {
				tc.MinVersion = tls.VersionTLS12
			},
		})
	}
	log.Info().Str("addr", s.Cfg.ServerAddr).Msg("starting server")
	return s.App.Listen(s.Cfg.ServerAddr, fiber.ListenConfig{DisableStartupMessage: true})
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.App.Shutdown()
}

// deriveEncryptionKey derives a 32-byte encryption key from the session secret.
func deriveEncryptionKey(secret string) string {
	hash := sha256.Sum256([]byte(secret))
	return base64.StdEncoding.EncodeToString(hash[:])
}
