// Package delivery downloads resolved gifs to local temp files so they can
// be served as attachments.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"giphygetter/internal/validation"
)

// TempPattern matches the files Fetch leaves in the temp dir.
const TempPattern = "gg-*.gif"

const (
	DefaultTimeout  = 15 * time.Second
	DefaultMaxBytes = 20 << 20
	maxRedirects    = 5
)

var (
	// ErrNoTempDir means delivery is disabled because no temp dir is configured.
	ErrNoTempDir = errors.New("no temp directory configured")
	// ErrTooLarge means the remote file exceeds the configured size limit.
	ErrTooLarge = errors.New("gif exceeds size limit")
)

// DownloadError reports a failed fetch of a gif url.
type DownloadError struct {
	URL    string
	Status int
	Err    error
}

func (e *DownloadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("download %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("download %s: status %d", e.URL, e.Status)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// Config configures a Downloader.
type Config struct {
	Dir     string
	Timeout time.Duration
	// MaxBytes caps the size of a single download. Defaults to DefaultMaxBytes.
	MaxBytes int64
	// Guard vets every url fetched, redirects included. Defaults to
	// validation.CheckDownloadURL.
	Guard func(url string) error
}

// Downloader fetches gifs into a temp directory.
type Downloader struct {
	client   *resty.Client
	dir      string
	maxBytes int64
	guard    func(string) error
}

// New returns a Downloader writing into cfg.Dir.
func New(cfg Config) (*Downloader, error) {
	if strings.TrimSpace(cfg.Dir) == "" {
		return nil, ErrNoTempDir
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.Guard == nil {
		cfg.Guard = validation.CheckDownloadURL
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}

	guard := cfg.Guard
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRedirectPolicy(resty.RedirectPolicyFunc(func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return guard(req.URL.String())
		}))

	return &Downloader{client: client, dir: cfg.Dir, maxBytes: cfg.MaxBytes, guard: guard}, nil
}

// Dir is the directory downloads are written to.
func (d *Downloader) Dir() string {
	return d.dir
}

// File is a downloaded gif. Callers must Remove it when done.
type File struct {
	Path string
	Size int64
}

// Remove deletes the temp file.
func (f *File) Remove() error {
	err := os.Remove(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// Fetch downloads url into a new temp file named after keyword.
func (d *Downloader) Fetch(ctx context.Context, keyword, url string) (*File, error) {
	if err := d.guard(url); err != nil {
		return nil, &DownloadError{URL: url, Err: err}
	}

	name := unsafeName.ReplaceAllString(keyword, "-")
	if len(name) > 40 {
		name = name[:40]
	}
	resp, err := d.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return nil, &DownloadError{URL: url, Err: err}
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() {
		return nil, &DownloadError{URL: url, Status: resp.StatusCode()}
	}
	if resp.RawResponse.ContentLength > d.maxBytes {
		return nil, &DownloadError{URL: url, Err: ErrTooLarge}
	}

	tmp, err := os.CreateTemp(d.dir, "gg-"+name+"-*.gif")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	f := &File{Path: tmp.Name()}

	// Read one byte past the limit to tell "exactly at" from "over".
	n, err := io.Copy(tmp, io.LimitReader(body, d.maxBytes+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > d.maxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		f.Remove()
		return nil, &DownloadError{URL: url, Err: err}
	}
	f.Size = n

	log.Ctx(ctx).Debug().
		Str("url", url).
		Str("file", filepath.Base(f.Path)).
		Int64("bytes", f.Size).
		Msg("gif downloaded")
	return f, nil
}

// Read downloads url, returns its contents and removes the temp file.
func (d *Downloader) Read(ctx context.Context, keyword, url string) ([]byte, error) {
	f, err := d.Fetch(ctx, keyword, url)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := f.Remove(); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("file", f.Path).Msg("failed to remove temp gif")
		}
	}()
	return os.ReadFile(f.Path)
}
