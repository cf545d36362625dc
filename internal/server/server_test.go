package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"

	"giphygetter/internal/config"
	"giphygetter/internal/gif"
	"giphygetter/internal/memstore"
	"giphygetter/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:           "development",
		SessionSecret: "test-secret-that-is-long-enough-for-production",
		RateLimitMax:  100,
	}
}

type staticSearcher []string

func (s staticSearcher) Search(ctx context.Context, keyword string) ([]models.Candidate, error) {
	out := make([]models.Candidate, len(s))
	for i, u := range s {
		out[i] = models.Candidate{URL: u}
	}
	return out, nil
}

func newTestServer(cfg *config.Config) *Server {
	store := memstore.New()
	s := New(cfg)
	s.RegisterRoutes(Deps{
		Resolver: gif.NewResolver(store, staticSearcher{"https://media.giphy.com/a.gif"}),
		Store:    store,
	})
	return s
}

func do(t *testing.T, app *fiber.App, method, path string) (*http.Response, string) {
	t.Helper()
	req, _ := http.NewRequest(method, path, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

// TestSessionRoundTrip verifies that the encryptcookie + session stack used
// by the install flow survives replayed encrypted cookies.
func TestSessionRoundTrip(t *testing.T) {
	s := New(testConfig())

	g := s.App.Group("/t", s.sessions...)
	g.Post("/set", func(c fiber.Ctx) error {
		sess := session.FromContext(c)
		if sess == nil {
			return c.Status(500).SendString("no session")
		}
		sess.Set("oauth_state", "xyz")
		return c.SendString("ok")
	})
	g.Get("/get", func(c fiber.Ctx) error {
		sess := session.FromContext(c)
		if sess == nil {
			return c.Status(500).SendString("no session")
		}
		val, _ := sess.Get("oauth_state").(string)
		return c.SendString(val)
	})

	req, _ := http.NewRequest("POST", "/t/set", nil)
	resp, err := s.App.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	cookies := resp.Cookies()
	if len(cookies) == 0 {
		t.Fatal("no cookies returned")
	}

	for i := 0; i < 2; i++ {
		req, _ := http.NewRequest("GET", "/t/get", nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		resp, err := s.App.Test(req)
		if err != nil {
			t.Fatalf("replay %d failed: %v", i, err)
		}
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != 200 || string(body) != "xyz" {
			t.Fatalf("replay %d: got %d %q", i, resp.StatusCode, body)
		}
		if next := resp.Cookies(); len(next) > 0 {
			cookies = next
		}
	}
}

func TestRoutes(t *testing.T) {
	s := newTestServer(testConfig())

	tests := []struct {
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"GET", "/", 200, "GiphyGetter"},
		{"GET", "/healthz", 200, `"ok"`},
		{"GET", "/readyz", 200, `"ok"`},
		{"GET", "/metrics", 200, "go_goroutines"},
		{"GET", "/api/gif/cats", 200, "https://media.giphy.com/a.gif"},
		{"GET", "/gif/cats", 400, "No temp directory"},
		{"POST", "/slack/command", 400, `"error"`},
		{"GET", "/auth/slack/login", 404, ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			resp, body := do(t, s.App, tt.method, tt.path)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", resp.StatusCode, tt.wantStatus, body)
			}
			if !strings.Contains(body, tt.wantBody) {
				t.Errorf("body %q does not contain %q", body, tt.wantBody)
			}
		})
	}
}

func TestRoutes_OAuthLoginRedirects(t *testing.T) {
	cfg := testConfig()
	cfg.SlackClientID = "id"
	cfg.SlackClientSecret = "secret"
	s := newTestServer(cfg)

	resp, _ := do(t, s.App, "GET", "/auth/slack/login")
	if resp.StatusCode != fiber.StatusSeeOther && resp.StatusCode != fiber.StatusFound {
		t.Fatalf("status = %d, want redirect", resp.StatusCode)
	}
	loc := resp.Header.Get("Location")
	if !strings.HasPrefix(loc, "https://slack.com/oauth/authorize") || !strings.Contains(loc, "state=") {
		t.Errorf("Location = %q", loc)
	}

	resp, _ = do(t, s.App, "GET", "/auth/slack/callback")
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("callback without code status = %d, want 400", resp.StatusCode)
	}
}

func TestErrorHandler_JSONForAPI(t *testing.T) {
	s := newTestServer(testConfig())

	resp, body := do(t, s.App, "GET", "/api/gif/"+strings.Repeat("a", 101))
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out map[string]string
	if err := json.Unmarshal([]byte(body), &out); err != nil || out["status"] != "error" {
		t.Errorf("expected JSON error envelope, got %s", body)
	}

	resp, body = do(t, s.App, "GET", "/nope")
	if resp.StatusCode != fiber.StatusNotFound || !strings.Contains(body, "<html") {
		t.Errorf("expected HTML 404 page, got %d %s", resp.StatusCode, body)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitMax = 2
	s := newTestServer(cfg)

	for i := 0; i < 2; i++ {
		if resp, _ := do(t, s.App, "GET", "/api/gif/cats"); resp.StatusCode != 200 {
			t.Fatalf("request %d status = %d", i, resp.StatusCode)
		}
	}
	if resp, _ := do(t, s.App, "GET", "/api/gif/cats"); resp.StatusCode != fiber.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", resp.StatusCode)
	}
	if resp, _ := do(t, s.App, "GET", "/healthz"); resp.StatusCode != 200 {
		t.Errorf("probes should not be rate limited, got %d", resp.StatusCode)
	}
}

func TestRateLimit_SlackExempt(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitMax = 1
	s := newTestServer(cfg)

	for i := 0; i < 5; i++ {
		req, _ := http.NewRequest("POST", "/slack/command", strings.NewReader("text=cats"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		resp, err := s.App.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("slack request %d status = %d, want 200", i, resp.StatusCode)
		}
	}
}
