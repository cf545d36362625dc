package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"

	"giphygetter/internal/gif"
	"giphygetter/internal/memstore"
	"giphygetter/internal/models"
)

type fakeSearcher struct {
	urls []string
}

func (f *fakeSearcher) Search(ctx context.Context, keyword string) ([]models.Candidate, error) {
	out := make([]models.Candidate, len(f.urls))
	for i, u := range f.urls {
		out[i] = models.Candidate{URL: u, Variant: "fixed_height"}
	}
	return out, nil
}

func newTestResolver(store *memstore.Store, urls ...string) *gif.Resolver {
	return gif.NewResolver(store, &fakeSearcher{urls: urls},
		gif.WithSampler(&gif.SequenceSampler{Indices: []int{0}}))
}

func postForm(t *testing.T, app *fiber.App, path string, form url.Values) (*http.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	return resp, body
}

func get(t *testing.T, app *fiber.App, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	return resp, body
}

func TestProbeHandler(t *testing.T) {
	app := fiber.New()
	h := NewProbeHandler(memstore.New())
	app.Get("/healthz", h.Liveness)
	app.Get("/readyz", h.Readiness)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, body := get(t, app, path)
		if resp.StatusCode != fiber.StatusOK {
			t.Errorf("GET %s status = %d, body %s", path, resp.StatusCode, body)
		}
	}
}

type downStore struct{}

func (downStore) Ping(context.Context) error { return context.DeadlineExceeded }

func TestProbeHandler_NotReady(t *testing.T) {
	app := fiber.New()
	app.Get("/readyz", NewProbeHandler(downStore{}).Readiness)

	resp, _ := get(t, app, "/readyz")
	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}
