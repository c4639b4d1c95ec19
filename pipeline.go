package main

import (
	"errors"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultLatencyThresholdMs gates which records count as high latency when
// no threshold is configured or the configured value is unusable.
const DefaultLatencyThresholdMs = 600

// Config is the per-run analyzer configuration. The zero value is usable:
// defaults are applied by Analyze.
type Config struct {
	// LatencyThresholdMs is the duration cutoff above which a record seeds
	// interaction extraction.
	LatencyThresholdMs float64
	// SkipLatencyFilter treats every record as eligible (single-record
	// mode).
	SkipLatencyFilter bool
	// Workers bounds the parse/repair worker pool; 0 means NumCPU.
	Workers int
}

func (c *Config) applyDefaults() {
	if c.LatencyThresholdMs <= 0 || c.LatencyThresholdMs != c.LatencyThresholdMs {
		c.LatencyThresholdMs = DefaultLatencyThresholdMs
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// splitRecords detects the input format by its leading content and cuts the
// blob into independently repairable raw records: one object, one array
// (handled whole so a truncated tail can still be repaired), or
// newline-delimited objects.
func splitRecords(text string) []string {
	trimmed := strings.TrimLeft(text, " \t\r\n\uFEFF")
	if trimmed == "" {
		return nil
	}
	if trimmed[0] == '[' {
		return []string{trimmed}
	}

	lines := strings.Split(trimmed, "\n")
	var nonEmpty []string
	allObjects := true
	for _, line := range lines {
		l := strings.TrimSpace(line)
		if l == "" {
			continue
		}
		nonEmpty = append(nonEmpty, l)
		if l[0] != '{' {
			allObjects = false
		}
	}
	// ND-JSON: several lines, each starting its own object. A single
	// pretty-printed object has continuation lines that fail this test.
	if len(nonEmpty) > 1 && allObjects {
		return nonEmpty
	}
	return []string{trimmed}
}

// parseRecord repairs, parses, normalizes, and builds the diagnostic
// record(s) in one raw slice. An array blob yields one record per element.
func parseRecord(raw string) ([]*DiagnosticRecord, bool, error) {
	v, repaired, err := repairParse(raw)
	if err != nil {
		return nil, false, err
	}
	v = normalizeKeys(v)

	var recs []*DiagnosticRecord
	switch t := v.(type) {
	case map[string]any:
		if r := buildRecord(t); r != nil {
			recs = append(recs, r)
		}
	case []any:
		for _, e := range t {
			if m := asMap(e); m != nil {
				if r := buildRecord(m); r != nil {
					recs = append(recs, r)
				}
			}
		}
	}
	if len(recs) == 0 {
		return nil, repaired, errors.New("no diagnostic object in record")
	}
	return recs, repaired, nil
}

type parseCounters struct {
	parsed   int
	repaired int
	failed   int
}

// parseAll fans raw records out over a worker pool. Each worker accumulates
// its own counters; partial sums are merged after the pool drains, so no
// counter needs a lock. Results stay index-aligned to preserve input order.
func parseAll(raws []string, workers int) ([]*DiagnosticRecord, parseCounters) {
	if workers > len(raws) {
		workers = len(raws)
	}
	if workers < 1 {
		workers = 1
	}

	results := make([][]*DiagnosticRecord, len(raws))
	partials := make([]parseCounters, workers)

	idxCh := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := range idxCh {
				recs, repaired, err := parseRecord(raws[i])
				if err != nil {
					partials[w].failed++
					continue
				}
				results[i] = recs
				partials[w].parsed += len(recs)
				if repaired {
					partials[w].repaired++
				}
			}
		}(w)
	}
	for i := range raws {
		idxCh <- i
	}
	close(idxCh)
	wg.Wait()

	var total parseCounters
	for _, p := range partials {
		total.parsed += p.parsed
		total.repaired += p.repaired
		total.failed += p.failed
	}

	var records []*DiagnosticRecord
	for _, recs := range results {
		records = append(records, recs...)
	}
	return records, total
}

// Analyze runs the full pipeline over one diagnostics blob: split, repair/
// parse, flatten, extract, aggregate. Per-record failures are counted and
// never abort the run. The returned result is pure data.
func Analyze(input []byte, cfg Config) *AnalysisResult {
	cfg.applyDefaults()
	started := time.Now()

	raws := splitRecords(string(input))
	records, counters := parseAll(raws, cfg.Workers)

	recordsCounter.Add(float64(counters.parsed + counters.failed))
	parsedCounter.Add(float64(counters.parsed))
	repairedCounter.Add(float64(counters.repaired))
	failedCounter.Add(float64(counters.failed))
	for _, r := range records {
		recordDuration.Observe(r.DurationMs)
	}

	result := &AnalysisResult{
		ReportID:           uuid.NewString(),
		GeneratedAt:        started.UTC(),
		LatencyThresholdMs: cfg.LatencyThresholdMs,
		TotalRecords:       counters.parsed + counters.failed,
		ParsedRecords:      counters.parsed,
		RepairedRecords:    counters.repaired,
		FailedRecords:      counters.failed,
	}

	highLatency := 0
	for _, r := range records {
		if r.DurationMs > cfg.LatencyThresholdMs {
			highLatency++
		}
	}
	result.HighLatencyRecords = highLatency

	result.OperationBuckets = groupRecordsByOperation(records)
	if len(result.OperationBuckets) > 0 {
		result.TargetOperation = result.OperationBuckets[0].Key
	}
	result.CallCounts = mergeCallCounts(records)

	// One record means drill into it regardless of the threshold.
	skipFilter := cfg.SkipLatencyFilter || len(records) == 1

	var interactions []*NetworkInteraction
	for _, r := range records {
		if !skipFilter && r.DurationMs <= cfg.LatencyThresholdMs {
			continue
		}
		if result.TargetOperation != "" && r.Name != result.TargetOperation {
			continue
		}
		interactions = append(interactions, extractInteractions(flattenRecord(r))...)
	}
	interactionsCounter.Add(float64(len(interactions)))

	result.Interactions = interactions
	result.ResourceTypeGroups = groupByResourceType(interactions)
	result.StatusCodeGroups = groupByStatusCode(interactions)
	result.TransportEventGroups = groupByTransportEvent(interactions)
	result.TransportExceptionGroups = groupByTransportException(interactions)

	// System metrics are read from every parsed record, not just the
	// high-latency set.
	var allSpans []*DiagnosticRecord
	for _, r := range records {
		allSpans = append(allSpans, flattenRecord(r)...)
	}
	result.SystemMetrics = extractSystemMetrics(allSpans)
	result.LatencyTimeline = buildLatencyTimeline(records)

	analyzeDuration.Observe(time.Since(started).Seconds())
	return result
}
