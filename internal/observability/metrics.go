package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	questionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidstat_questions_total",
			Help: "Total number of handled questions by outcome.",
		},
		[]string{"outcome"},
	)
	templateMatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidstat_template_matches_total",
			Help: "Total number of questions answered by a question template.",
		},
		[]string{"shape"},
	)
	translationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidstat_translations_total",
			Help: "Total number of generative SQL translations by status.",
		},
		[]string{"status"},
	)
	repairsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidstat_repairs_total",
			Help: "Total number of applied SQL repairs by kind.",
		},
		[]string{"kind"},
	)
	answerDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vidstat_answer_duration_seconds",
			Help:    "End-to-end question handling latency in seconds.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)
)

func init() {
	prometheus.MustRegister(
		questionsTotal,
		templateMatchesTotal,
		translationsTotal,
		repairsTotal,
		answerDurationSeconds,
	)
}

func ObserveQuestion(outcome string, elapsed time.Duration) {
	questionsTotal.WithLabelValues(outcome).Inc()
	answerDurationSeconds.Observe(elapsed.Seconds())
}

func IncrementTemplateMatch(shape string) {
	templateMatchesTotal.WithLabelValues(shape).Inc()
}

func IncrementTranslation(status string) {
	translationsTotal.WithLabelValues(status).Inc()
}

func IncrementRepair(kind string) {
	repairsTotal.WithLabelValues(kind).Inc()
}
