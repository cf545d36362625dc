package jobs

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"giphygetter/internal/delivery"
)

// TempSweeper removes gif temp files left behind by aborted deliveries.
type TempSweeper struct {
	dir      string
	interval time.Duration
	maxAge   time.Duration
	now      func() time.Time
}

// NewTempSweeper creates a sweeper for dir.
func NewTempSweeper(dir string, interval, maxAge time.Duration) *TempSweeper {
	return &TempSweeper{
		dir:      dir,
		interval: interval,
		maxAge:   maxAge,
		now:      time.Now,
	}
}

// Start begins the background sweep loop. It returns when ctx is done.
func (s *TempSweeper) Start(ctx context.Context) {
	log.Info().
		Str("dir", s.dir).
		Dur("interval", s.interval).
		Dur("max_age", s.maxAge).
		Msg("temp sweeper started")

	s.Sweep()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("temp sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep removes temp gifs older than maxAge and returns how many it removed.
func (s *TempSweeper) Sweep() int {
	matches, err := filepath.Glob(filepath.Join(s.dir, delivery.TempPattern))
	if err != nil {
		log.Error().Err(err).Msg("temp sweeper: bad pattern")
		return 0
	}

	cutoff := s.now().Add(-s.maxAge)
	removed := 0
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("file", path).Msg("temp sweeper: remove failed")
			continue
		}
		removed++
	}

	if removed > 0 {
		log.Info().Int("removed", removed).Msg("temp sweeper: removed stale gifs")
	}
	return removed
}
