package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"giphygetter/internal/models"
)

// Store is the persistence the collector and recorder read and write.
type Store interface {
	IncrementKeywordLookup(ctx context.Context, keyword, outcome string) error
	GetAllKeywordLookups(ctx context.Context) ([]models.KeywordLookup, error)
	CountReservations(ctx context.Context) (int64, error)
	CountBans(ctx context.Context) (int64, error)
}

const collectTimeout = 5 * time.Second

var (
	keywordLookupDesc = prometheus.NewDesc(
		"giphygetter_keyword_lookups_total",
		"Total keyword lookup count by outcome",
		[]string{"keyword", "outcome"},
		nil,
	)
	reservationsDesc = prometheus.NewDesc(
		"giphygetter_reservations",
		"Number of reserved keywords",
		nil, nil,
	)
	bansDesc = prometheus.NewDesc(
		"giphygetter_bans",
		"Number of banned gif urls",
		nil, nil,
	)

	// ActionsTotal counts Slack button presses and commands by action.
	ActionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "giphygetter_actions_total",
		Help: "Slack actions handled, by action",
	}, []string{"action"})
)

// KeywordCollector is a custom Prometheus collector that reads keyword lookup
// counts and table sizes from the store on each scrape.
type KeywordCollector struct {
	store Store
}

// NewKeywordCollector returns a collector over store.
func NewKeywordCollector(store Store) *KeywordCollector {
	return &KeywordCollector{store: store}
}

func (c *KeywordCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- keywordLookupDesc
	ch <- reservationsDesc
	ch <- bansDesc
}

func (c *KeywordCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), collectTimeout)
	defer cancel()

	if n, err := c.store.CountReservations(ctx); err == nil {
		ch <- prometheus.MustNewConstMetric(reservationsDesc, prometheus.GaugeValue, float64(n))
	} else {
		log.Error().Err(err).Msg("failed to count reservations")
	}
	if n, err := c.store.CountBans(ctx); err == nil {
		ch <- prometheus.MustNewConstMetric(bansDesc, prometheus.GaugeValue, float64(n))
	} else {
		log.Error().Err(err).Msg("failed to count bans")
	}

	lookups, err := c.store.GetAllKeywordLookups(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to collect keyword lookup metrics")
		return
	}
	for _, l := range lookups {
		ch <- prometheus.MustNewConstMetric(
			keywordLookupDesc,
			prometheus.CounterValue,
			float64(l.Count),
			l.Keyword,
			l.Outcome,
		)
	}
}

// Recorder writes keyword lookup outcomes in the background.
type Recorder struct {
	store Store
	wg    sync.WaitGroup
}

// NewRecorder returns a Recorder writing to store.
func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

// Record asynchronously increments the count for keyword and outcome.
func (r *Recorder) Record(keyword, outcome string) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.store.IncrementKeywordLookup(context.Background(), keyword, outcome); err != nil {
			log.Error().Err(err).
				Str("keyword", keyword).
				Str("outcome", outcome).
				Msg("failed to record keyword lookup")
		}
	}()
}

// Wait blocks until pending writes finish.
func (r *Recorder) Wait() {
	r.wg.Wait()
}

var (
	recorder     *Recorder
	recorderOnce sync.Once
)

// Init registers the collectors with the default registry and initializes
// the package recorder. Must be called once at startup.
func Init(store Store) {
	recorderOnce.Do(func() {
		recorder = NewRecorder(store)
		prometheus.MustRegister(NewKeywordCollector(store), ActionsTotal)
	})
}

// RecordKeywordLookup asynchronously records a keyword lookup outcome.
// It is a no-op before Init.
func RecordKeywordLookup(keyword, outcome string) {
	if recorder == nil {
		return
	}
	recorder.Record(keyword, outcome)
}

// RecordResolution records the lookup outcome of a Resolve call.
func RecordResolution(keyword string, res *models.Resolution, err error) {
	switch {
	case err != nil || res == nil:
		RecordKeywordLookup(keyword, models.OutcomeNotFound)
	case res.Reserved:
		RecordKeywordLookup(keyword, models.OutcomeReserved)
	default:
		RecordKeywordLookup(keyword, models.OutcomeFound)
	}
}

// RecordAction counts a handled Slack action.
func RecordAction(action string) {
	ActionsTotal.WithLabelValues(action).Inc()
}

// Flush waits for pending lookup writes. Used during shutdown.
func Flush() {
	if recorder != nil {
		recorder.Wait()
	}
}
