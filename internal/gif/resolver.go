// Package gif decides which gif url answers a keyword, and maintains the
// reservation and ban rules that constrain that choice.
package gif

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"giphygetter/internal/models"
)

// MaxDraws is the number of random picks made before giving up.
const MaxDraws = 10

var (
	// ErrNotFound means no usable gif exists for the keyword.
	ErrNotFound = errors.New("no gif found")
	// ErrEmptyURL is returned when reserving or banning an empty url.
	ErrEmptyURL = errors.New("empty gif url")
)

// Mode selects how a candidate is chosen from search results.
type Mode int

const (
	// ModeRandom picks a random non-banned candidate.
	ModeRandom Mode = iota
	// ModeSticky prefers the first candidate so a keyword tends to repeat.
	ModeSticky
)

func (m Mode) String() string {
	switch m {
	case ModeSticky:
		return "sticky"
	default:
		return "random"
	}
}

// Store holds reservations and bans.
type Store interface {
	GetReservation(ctx context.Context, keyword string) (string, bool, error)
	UpsertReservation(ctx context.Context, keyword, url string) error
	RemoveReservationsForURL(ctx context.Context, url string) error
	IsBanned(ctx context.Context, url string) (bool, error)
	AddBan(ctx context.Context, url string) error
}

// Searcher finds candidate gifs for a keyword.
type Searcher interface {
	Search(ctx context.Context, keyword string) ([]models.Candidate, error)
}

// PartialBanError means the ban was stored but reservations pointing at the
// url could not be removed. The url stays banned and is never resolved by
// search, but a keyword may still return it until the reservation is
// replaced.
type PartialBanError struct {
	URL string
	Err error
}

func (e *PartialBanError) Error() string {
	return fmt.Sprintf("banned %s but failed to remove its reservations: %v", e.URL, e.Err)
}

func (e *PartialBanError) Unwrap() error {
	return e.Err
}

// Resolver applies the reservation and ban rules on top of search.
type Resolver struct {
	store    Store
	searcher Searcher
	sampler  Sampler
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithSampler replaces the default random sampler.
func WithSampler(s Sampler) Option {
	return func(r *Resolver) {
		r.sampler = s
	}
}

// NewResolver creates a resolver backed by store and searcher.
func NewResolver(store Store, searcher Searcher, opts ...Option) *Resolver {
	r := &Resolver{
		store:    store,
		searcher: searcher,
		sampler:  RandomSampler{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the gif for keyword. A reservation always wins, in either
// mode. Otherwise the keyword is searched and a non-banned candidate is
// chosen according to mode. When nothing qualifies the error is ErrNotFound;
// if the search itself failed, the error also wraps the search failure.
func (r *Resolver) Resolve(ctx context.Context, keyword string, mode Mode) (*models.Resolution, error) {
	url, reserved, err := r.store.GetReservation(ctx, keyword)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("keyword", keyword).Msg("reservation lookup failed, searching instead")
	}
	if reserved {
		return &models.Resolution{URL: url, Reserved: true}, nil
	}

	candidates, err := r.searcher.Search(ctx, keyword)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if len(candidates) == 0 {
		return nil, ErrNotFound
	}

	if mode == ModeSticky {
		first := candidates[0].URL
		if !r.banned(ctx, first) {
			return &models.Resolution{URL: first}, nil
		}
		// Sticky never re-queries; it falls back to random over the same results.
	}

	return r.pickRandom(ctx, candidates)
}

// pickRandom makes up to MaxDraws draws and returns the first non-banned
// candidate drawn.
func (r *Resolver) pickRandom(ctx context.Context, candidates []models.Candidate) (*models.Resolution, error) {
	for i := 0; i < MaxDraws; i++ {
		url := candidates[r.sampler.Intn(len(candidates))].URL
		if !r.banned(ctx, url) {
			return &models.Resolution{URL: url}, nil
		}
	}
	return nil, ErrNotFound
}

// banned reports whether url must be skipped. A url whose ban status cannot
// be read is skipped too.
func (r *Resolver) banned(ctx context.Context, url string) bool {
	banned, err := r.store.IsBanned(ctx, url)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("url", url).Msg("ban check failed, skipping candidate")
		return true
	}
	return banned
}

// Reserve pins keyword to url. The url is not checked against search
// results; any url may be reserved.
func (r *Resolver) Reserve(ctx context.Context, keyword, url string) error {
	if url == "" {
		return fmt.Errorf("reserve %q: %w", keyword, ErrEmptyURL)
	}
	if err := r.store.UpsertReservation(ctx, keyword, url); err != nil {
		return fmt.Errorf("reserve %q: %w", keyword, err)
	}
	return nil
}

// Ban excludes url from all future results and drops reservations that
// point at it. The two writes are not atomic: a concurrent Reserve of the
// same url between them survives the ban.
func (r *Resolver) Ban(ctx context.Context, url string) error {
	if url == "" {
		return ErrEmptyURL
	}
	if err := r.store.AddBan(ctx, url); err != nil {
		return fmt.Errorf("ban %s: %w", url, err)
	}
	if err := r.store.RemoveReservationsForURL(ctx, url); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("url", url).Msg("url banned but reservations were not removed")
		return &PartialBanError{URL: url, Err: err}
	}
	return nil
}
