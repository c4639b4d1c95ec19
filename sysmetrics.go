package main

import (
	"fmt"
	"sort"
	"time"
)

// latencyBandLabels is the fixed six-bucket latency ladder of the timeline
// histogram.
var latencyBandLabels = []string{
	"0-100ms", "100-500ms", "500ms-1s", "1-2s", "2-5s", "5s+",
}

func latencyBand(ms float64) int {
	switch {
	case ms < 100:
		return 0
	case ms < 500:
		return 1
	case ms < 1000:
		return 2
	case ms < 2000:
		return 3
	case ms < 5000:
		return 4
	default:
		return 5
	}
}

// extractSystemMetrics scans flattened spans for embedded system-history
// samples. The same sample is often reachable through several traversal
// paths, so snapshots are deduplicated on a (timestamp, cpu, memory)
// composite key before sorting and summarizing.
func extractSystemMetrics(spans []*DiagnosticRecord) *SystemMetricsReport {
	seen := make(map[string]bool)
	var snaps []SystemMetricSnapshot

	for _, span := range spans {
		if span == nil {
			continue
		}
		for _, sample := range systemHistorySamples(span) {
			snap := SystemMetricSnapshot{
				Timestamp:      parseTimestampFromMap(sample, "timestamp"),
				CPU:            getFloat64FromMap(sample, "cpu"),
				Memory:         getFloat64FromMap(sample, "memory"),
				TCPConnections: getInt64FromMap(sample, "tcpConnections"),
			}
			if ti := asMap(sample["threadInfo"]); ti != nil {
				snap.ThreadWaitMs = getFloat64FromMap(ti, "threadWaitMs")
			} else {
				snap.ThreadWaitMs = getFloat64FromMap(sample, "threadWaitMs")
			}

			key := fmt.Sprintf("%d|%.4f|%.4f", snap.Timestamp.UnixMilli(), snap.CPU, snap.Memory)
			if seen[key] {
				continue
			}
			seen[key] = true
			snaps = append(snaps, snap)
		}
	}

	if len(snaps) == 0 {
		return nil
	}

	sort.SliceStable(snaps, func(i, j int) bool {
		return snaps[i].Timestamp.Before(snaps[j].Timestamp)
	})

	metrics := map[string]MetricSummary{
		"cpu":            summarizeMetric(snaps, func(s SystemMetricSnapshot) float64 { return s.CPU }),
		"memory":         summarizeMetric(snaps, func(s SystemMetricSnapshot) float64 { return s.Memory }),
		"threadWaitMs":   summarizeMetric(snaps, func(s SystemMetricSnapshot) float64 { return s.ThreadWaitMs }),
		"tcpConnections": summarizeMetric(snaps, func(s SystemMetricSnapshot) float64 { return float64(s.TCPConnections) }),
	}

	return &SystemMetricsReport{Snapshots: snaps, Metrics: metrics}
}

func summarizeMetric(snaps []SystemMetricSnapshot, valueFn func(SystemMetricSnapshot) float64) MetricSummary {
	values := make([]float64, len(snaps))
	for i, s := range snaps {
		values[i] = valueFn(s)
	}
	avg := mean(values)
	sort.Float64s(values)
	return MetricSummary{Stats: computeStats(values), Avg: avg}
}

// systemHistorySamples reads the system-history list off a span. It can sit
// at the payload level or inside the data blob.
func systemHistorySamples(span *DiagnosticRecord) []map[string]any {
	var out []map[string]any
	for _, m := range []map[string]any{span.Payload, span.Data} {
		if m == nil {
			continue
		}
		for _, e := range asSlice(m["systemHistory"]) {
			if em := asMap(e); em != nil {
				out = append(out, em)
			}
		}
	}
	return out
}

// buildLatencyTimeline buckets (start time, duration) pairs of parsed
// records into a 2-D histogram. The time-axis bucket width adapts to the
// observed span: one minute up to an hour, five minutes up to a day, one
// hour beyond that.
func buildLatencyTimeline(records []*DiagnosticRecord) *TimeLatencyHistogram {
	type pair struct {
		ts time.Time
		ms float64
	}
	var pairs []pair
	for _, r := range records {
		if r == nil || r.StartTime.IsZero() {
			continue
		}
		pairs = append(pairs, pair{r.StartTime, r.DurationMs})
	}
	if len(pairs) == 0 {
		return nil
	}

	minTS, maxTS := pairs[0].ts, pairs[0].ts
	for _, p := range pairs[1:] {
		if p.ts.Before(minTS) {
			minTS = p.ts
		}
		if p.ts.After(maxTS) {
			maxTS = p.ts
		}
	}

	span := maxTS.Sub(minTS)
	var width time.Duration
	switch {
	case span <= time.Hour:
		width = time.Minute
	case span <= 24*time.Hour:
		width = 5 * time.Minute
	default:
		width = time.Hour
	}

	cellIdx := make(map[int64]int)
	var cells []HistogramCell
	for _, p := range pairs {
		bucket := p.ts.Truncate(width)
		i, ok := cellIdx[bucket.UnixNano()]
		if !ok {
			i = len(cells)
			cellIdx[bucket.UnixNano()] = i
			cells = append(cells, HistogramCell{Time: bucket, Counts: make([]int, len(latencyBandLabels))})
		}
		cells[i].Counts[latencyBand(p.ms)]++
	}

	sort.SliceStable(cells, func(i, j int) bool {
		return cells[i].Time.Before(cells[j].Time)
	})

	return &TimeLatencyHistogram{
		BucketSeconds: int64(width / time.Second),
		Bands:         latencyBandLabels,
		Cells:         cells,
	}
}
