package main

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

var (
	recordsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "diag_records_total",
		Help: "Diagnostic records seen in the input",
	})
	parsedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "diag_records_parsed_total",
		Help: "Records parsed successfully (repaired or not)",
	})
	repairedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "diag_records_repaired_total",
		Help: "Records that needed truncation repair before parsing",
	})
	failedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "diag_records_failed_total",
		Help: "Records dropped after exhausting repair attempts",
	})
	interactionsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "diag_interactions_total",
		Help: "Network interactions extracted from eligible records",
	})
	analyzeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "diag_analyze_duration_seconds",
		Help:    "Wall time of one full analysis run",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})
	recordDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "diag_record_duration_ms",
		Help:    "Operation duration of parsed records in milliseconds",
		Buckets: prometheus.ExponentialBuckets(1, 2, 15),
	})
)

func init() {
	prometheus.MustRegister(
		recordsCounter, parsedCounter, repairedCounter, failedCounter,
		interactionsCounter, analyzeDuration, recordDuration,
	)
}

// dumpMetrics writes all registered metrics in text exposition format. The
// analyzer is one-shot, so metrics are dumped at end of run instead of being
// served.
func dumpMetrics(w io.Writer) error {
	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range mfs {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
