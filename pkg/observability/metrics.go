package observability

import (
	"errors"
	"time"

	"github.com/aretw0/tela/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
)

// Metrics holds the translator collectors.
type Metrics struct {
	translations *prometheus.CounterVec
	duration     prometheus.Histogram
	states       prometheus.Histogram
	marks        prometheus.Histogram
	events       *prometheus.CounterVec
	cache        *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		translations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tela_translations_total",
				Help: "Translations by winning pass and outcome",
			},
			[]string{"pass", "outcome"},
		),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tela_translation_duration_seconds",
			Help:    "Duration of complete translations",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		states: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tela_automaton_states",
			Help:    "States of the produced automata",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		marks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tela_automaton_marks",
			Help:    "Acceptance marks of the produced automata",
			Buckets: prometheus.LinearBuckets(0, 2, 9),
		}),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tela_construction_events_total",
				Help: "Merge decisions taken while building alternating automata",
			},
			[]string{"type"},
		),
		cache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tela_cache_lookups_total",
				Help: "Rendered automaton cache lookups",
			},
			[]string{"result"},
		),
	}

	var err error
	for _, c := range m.collectors() {
		err = multierr.Append(err, reg.Register(c))
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.translations, m.duration, m.states, m.marks, m.events, m.cache}
}

// ObserveTranslation records one translation. Failed runs only count.
func (m *Metrics) ObserveTranslation(stats domain.Stats, d time.Duration, err error) {
	if err != nil {
		outcome := "error"
		if errors.Is(err, domain.ErrTooManyMarks) {
			outcome = "too_many_marks"
		}
		m.translations.WithLabelValues("none", outcome).Inc()
		return
	}
	m.translations.WithLabelValues(stats.Pass, "ok").Inc()
	m.duration.Observe(d.Seconds())
	m.states.Observe(float64(stats.States))
	m.marks.Observe(float64(stats.Marks))
}

// ObserveCache records a cache lookup.
func (m *Metrics) ObserveCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cache.WithLabelValues(result).Inc()
}

// Observer counts construction events.
func (m *Metrics) Observer() domain.Observer {
	return func(e domain.Event) {
		m.events.WithLabelValues(string(e.Type)).Inc()
	}
}
