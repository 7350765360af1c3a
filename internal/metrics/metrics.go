// Package metrics exposes pipeline outcomes as Prometheus counters.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/datasheet/internal/core"
)

const namespace = "datasheet"

// Table outcomes.
const (
	OutcomeWritten = "written"
	OutcomeDryRun  = "dry_run"
	OutcomeFailed  = "failed"
)

// Recorder implements core.Recorder.
type Recorder struct {
	previewed        prometheus.Counter
	degraded         prometheus.Counter
	tables           *prometheus.CounterVec
	rowsWritten      prometheus.Counter
	validationErrors *prometheus.CounterVec
}

var _ core.Recorder = (*Recorder)(nil)

// New registers the pipeline counters with reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		previewed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tables_previewed_total",
			Help:      "Tables parsed, mapped, sanitized and validated.",
		}),
		degraded: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_degraded_total",
			Help:      "Tables whose structured parse fell back to a text table.",
		}),
		tables: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tables_processed_total",
			Help:      "Tables run through the import pipeline, by outcome.",
		}, []string{"outcome"}),
		rowsWritten: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_written_total",
			Help:      "Rows persisted to a target.",
		}),
		validationErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_errors_total",
			Help:      "Validation errors reported before and after auto-fix.",
		}, []string{"stage"}),
	}
}

func (r *Recorder) RecordPreview(p core.TablePreview) {
	r.previewed.Inc()
	if len(p.ParseNotes) > 0 {
		r.degraded.Inc()
	}
}

func (r *Recorder) RecordTable(tr core.TableReport, dryRun bool) {
	switch {
	case tr.Failed():
		r.tables.WithLabelValues(OutcomeFailed).Inc()
	case dryRun:
		r.tables.WithLabelValues(OutcomeDryRun).Inc()
	default:
		r.tables.WithLabelValues(OutcomeWritten).Inc()
	}
	r.rowsWritten.Add(float64(tr.RowsWritten))
	r.validationErrors.WithLabelValues("before").Add(float64(len(tr.ValidationBefore.Errors)))
	r.validationErrors.WithLabelValues("after").Add(float64(len(tr.ValidationAfter.Errors)))
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
