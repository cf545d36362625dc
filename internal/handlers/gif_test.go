package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"

	"giphygetter/internal/delivery"
	"giphygetter/internal/memstore"
)

var testGif = []byte("GIF89a\x01\x00\x01\x00test")

func gifApp(t *testing.T, withDownloader bool, urls ...string) *fiber.App {
	t.Helper()
	var dl *delivery.Downloader
	if withDownloader {
		var err error
		dl, err = delivery.New(delivery.Config{
			Dir:   t.TempDir(),
			Guard: func(string) error { return nil },
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	app := fiber.New()
	app.Get("/gif/:keyword", NewGifHandler(newTestResolver(memstore.New(), urls...), dl).Deliver)
	return app
}

func gifServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.gif" {
			http.NotFound(w, r)
			return
		}
		w.Write(testGif)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGif_Deliver(t *testing.T) {
	srv := gifServer(t)
	app := gifApp(t, true, srv.URL+"/a.gif")

	resp, body := get(t, app, "/gif/cats")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	if string(body) != string(testGif) {
		t.Errorf("body = %q", body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/gif" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != `filename="cats.gif"` {
		t.Errorf("Content-Disposition = %q", cd)
	}
}

func TestGif_DeliverDownload(t *testing.T) {
	srv := gifServer(t)
	app := gifApp(t, true, srv.URL+"/a.gif")

	resp, _ := get(t, app, "/gif/cats?download=1&sticky=1")
	if cd := resp.Header.Get("Content-Disposition"); cd != `attachment; filename="cats.gif"` {
		t.Errorf("Content-Disposition = %q", cd)
	}
}

func TestGif_Errors(t *testing.T) {
	srv := gifServer(t)

	tests := []struct {
		name       string
		app        *fiber.App
		wantStatus int
	}{
		{"no temp dir", gifApp(t, false, srv.URL+"/a.gif"), fiber.StatusBadRequest},
		{"not found", gifApp(t, true), fiber.StatusNotFound},
		{"download failure", gifApp(t, true, srv.URL+"/missing.gif"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, tt.app, "/gif/cats")
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", resp.StatusCode, tt.wantStatus, body)
			}
		})
	}
}

func TestGif_ReservedGifServed(t *testing.T) {
	srv := gifServer(t)
	store := memstore.New()
	store.UpsertReservation(context.Background(), "cats", srv.URL+"/reserved.gif")

	dl, err := delivery.New(delivery.Config{Dir: t.TempDir(), Guard: func(string) error { return nil }})
	if err != nil {
		t.Fatal(err)
	}
	app := fiber.New()
	app.Get("/gif/:keyword", NewGifHandler(newTestResolver(store), dl).Deliver)

	resp, _ := get(t, app, "/gif/Cats")
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
