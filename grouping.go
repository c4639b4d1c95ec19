package main

import (
	"sort"
	"strings"
)

// Display caps. Counts and percentile stats always cover the full group
// membership; only retained entry lists are truncated to bound memory on
// very large captures.
const (
	maxGroupEntries  = 50
	maxBucketEntries = 20
	maxPhaseEntries  = 10
	maxTopHosts      = 10
)

// bucketRanges labels the half-open percentile ranges anchored at a group's
// own stats: (-inf,P50] (P50,P75] (P75,P90] (P90,P95] (P95,P99] (P99,+inf).
var bucketRanges = []string{
	"<=P50", "P50-P75", "P75-P90", "P90-P95", "P95-P99", ">P99",
}

type grouped[T any] struct {
	key     string
	members []T
}

// partitionBy splits items by key, preserving first-seen key order.
func partitionBy[T any](items []T, keyFn func(T) string) []grouped[T] {
	idx := make(map[string]int)
	var out []grouped[T]
	for _, it := range items {
		k := keyFn(it)
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, grouped[T]{key: k})
		}
		out[i].members = append(out[i].members, it)
	}
	return out
}

// groupBy partitions items, aggregates each partition, and orders groups by
// descending count with first-seen key order breaking ties.
func groupBy[T any](items []T, keyFn func(T) string, durFn func(T) float64, labelFn func(T) string) []*Group {
	parts := partitionBy(items, keyFn)
	groups := make([]*Group, 0, len(parts))
	for _, p := range parts {
		groups = append(groups, buildGroup(p.key, p.members, durFn, labelFn))
	}
	sortGroups(groups)
	return groups
}

func sortGroups(groups []*Group) {
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Count > groups[j].Count
	})
}

// buildGroup aggregates one partition: durations sorted once, percentile
// stats, top entries by duration, and the full membership distributed into
// percentile buckets.
func buildGroup[T any](key string, members []T, durFn func(T) float64, labelFn func(T) string) *Group {
	durs := make([]float64, len(members))
	for i, m := range members {
		durs[i] = durFn(m)
	}
	sorted := append([]float64(nil), durs...)
	sort.Float64s(sorted)
	stats := computeStats(sorted)

	g := &Group{
		Key:     key,
		Count:   len(members),
		Stats:   stats,
		Entries: topEntries(members, durs, labelFn, maxGroupEntries),
		Buckets: fillBuckets(members, durs, labelFn, stats, maxBucketEntries),
	}
	return g
}

// topEntries retains the slowest max entries, ordered by descending duration.
func topEntries[T any](members []T, durs []float64, labelFn func(T) string, max int) []GroupEntry {
	order := make([]int, len(members))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return durs[order[a]] > durs[order[b]]
	})
	if len(order) > max {
		order = order[:max]
	}
	entries := make([]GroupEntry, len(order))
	for i, idx := range order {
		entries[i] = GroupEntry{Label: labelFn(members[idx]), DurationMs: durs[idx]}
	}
	return entries
}

// fillBuckets distributes every member into its percentile range. All
// members are counted; entry lists are capped per bucket.
func fillBuckets[T any](members []T, durs []float64, labelFn func(T) string, stats PercentileStats, entryCap int) []Bucket {
	bounds := []float64{stats.P50, stats.P75, stats.P90, stats.P95, stats.P99}
	buckets := make([]Bucket, len(bounds)+1)
	for i := range buckets {
		buckets[i].Range = bucketRanges[i]
	}
	for i, m := range members {
		b := bucketIndex(durs[i], bounds)
		buckets[b].Count++
		if len(buckets[b].Entries) < entryCap {
			buckets[b].Entries = append(buckets[b].Entries, GroupEntry{Label: labelFn(m), DurationMs: durs[i]})
		}
	}
	return buckets
}

func bucketIndex(d float64, bounds []float64) int {
	for i, b := range bounds {
		if d <= b {
			return i
		}
	}
	return len(bounds)
}

func recordDurationOf(r *DiagnosticRecord) float64 { return r.DurationMs }

func interactionDurationOf(n *NetworkInteraction) float64 { return n.DurationMs }

func interactionLabel(n *NetworkInteraction) string {
	label := n.EndpointHost
	if label == "" {
		label = n.PhysicalAddress
	}
	if n.StatusCode != "" {
		label += " [" + n.StatusCode + "/" + n.SubStatusCode + "]"
	}
	return label
}

// groupRecordsByOperation buckets records by operation name. The bucket with
// the highest count is the target operation for the drill-down groupings.
func groupRecordsByOperation(records []*DiagnosticRecord) []*Group {
	return groupBy(records,
		func(r *DiagnosticRecord) string { return r.Name },
		recordDurationOf,
		func(r *DiagnosticRecord) string { return r.Name })
}

func groupByResourceType(interactions []*NetworkInteraction) []*Group {
	return groupBy(interactions,
		func(n *NetworkInteraction) string {
			return n.ResourceType + " -> " + n.OperationType
		},
		interactionDurationOf, interactionLabel)
}

func groupByStatusCode(interactions []*NetworkInteraction) []*Group {
	return groupBy(interactions,
		func(n *NetworkInteraction) string {
			return n.StatusCode + " -> " + n.SubStatusCode
		},
		interactionDurationOf, interactionLabel)
}

// groupByTransportEvent groups interactions by their last transport event
// and sub-aggregates each group by bottleneck phase.
func groupByTransportEvent(interactions []*NetworkInteraction) []*Group {
	parts := partitionBy(interactions, func(n *NetworkInteraction) string {
		if n.LastEvent == "" {
			return "Unknown"
		}
		return n.LastEvent
	})
	groups := make([]*Group, 0, len(parts))
	for _, p := range parts {
		g := buildGroup(p.key, p.members, interactionDurationOf, interactionLabel)
		g.Phases = phaseDetails(p.members)
		groups = append(groups, g)
	}
	sortGroups(groups)
	return groups
}

// phaseDetails partitions one transport-event group by bottleneck phase,
// each phase carrying its own stats, buckets, and top endpoint hosts.
func phaseDetails(members []*NetworkInteraction) []*TransportPhaseDetail {
	parts := partitionBy(members, func(n *NetworkInteraction) string {
		if n.BottleneckPhase == "" {
			return "Unknown"
		}
		return n.BottleneckPhase
	})
	details := make([]*TransportPhaseDetail, 0, len(parts))
	for _, p := range parts {
		g := buildGroup(p.key, p.members, interactionDurationOf, interactionLabel)
		details = append(details, &TransportPhaseDetail{
			Phase:    p.key,
			Count:    g.Count,
			Stats:    g.Stats,
			Buckets:  g.Buckets,
			TopHosts: topHosts(p.members),
			Entries:  topEntriesOf(g, maxPhaseEntries),
		})
	}
	sort.SliceStable(details, func(i, j int) bool {
		return details[i].Count > details[j].Count
	})
	return details
}

func topEntriesOf(g *Group, max int) []GroupEntry {
	if len(g.Entries) > max {
		return g.Entries[:max]
	}
	return g.Entries
}

// topHosts returns the most frequent endpoint hosts, descending by count,
// first-seen order breaking ties, capped at ten.
func topHosts(members []*NetworkInteraction) []HostCount {
	idx := make(map[string]int)
	var hosts []HostCount
	for _, n := range members {
		if n.EndpointHost == "" {
			continue
		}
		i, ok := idx[n.EndpointHost]
		if !ok {
			i = len(hosts)
			idx[n.EndpointHost] = i
			hosts = append(hosts, HostCount{Host: n.EndpointHost})
		}
		hosts[i].Count++
	}
	sort.SliceStable(hosts, func(i, j int) bool {
		return hosts[i].Count > hosts[j].Count
	})
	if len(hosts) > maxTopHosts {
		hosts = hosts[:maxTopHosts]
	}
	return hosts
}

// exceptionTimeMarker starts the timestamp suffix some transports embed in
// exception messages. Stripping it collapses messages identical except for
// the embedded time.
const exceptionTimeMarker = "(Time:"

func exceptionGroupKey(msg string) string {
	if i := strings.Index(msg, exceptionTimeMarker); i >= 0 {
		return strings.TrimSpace(msg[:i])
	}
	return msg
}

// groupByTransportException groups interactions that carried a transport
// exception, keyed by the message with any timestamp suffix stripped.
func groupByTransportException(interactions []*NetworkInteraction) []*Group {
	var withException []*NetworkInteraction
	for _, n := range interactions {
		if n.TransportException != "" {
			withException = append(withException, n)
		}
	}
	return groupBy(withException,
		func(n *NetworkInteraction) string { return exceptionGroupKey(n.TransportException) },
		interactionDurationOf,
		func(n *NetworkInteraction) string { return n.TransportException })
}
