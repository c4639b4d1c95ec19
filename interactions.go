package main

import (
	"net/url"
	"strings"
)

// lastEventPriority orders transport phases from furthest reached to
// earliest. The last event of an interaction is the first phase on this list
// present in its timeline — "furthest phase reached", not the temporally
// last entry recorded.
var lastEventPriority = []string{
	"Completed",
	"Received",
	"TransitTime",
	"Pipelined",
	"ChannelAcquisitionStarted",
	"Created",
}

// extractInteractions pulls every store round-trip out of a flattened span
// list. Spans without request statistics contribute nothing.
func extractInteractions(spans []*DiagnosticRecord) []*NetworkInteraction {
	var out []*NetworkInteraction
	for _, span := range spans {
		if span == nil {
			continue
		}
		for _, stat := range storeResponseStats(span) {
			if ni := buildInteraction(stat); ni != nil {
				out = append(out, ni)
			}
		}
	}
	return out
}

// storeResponseStats locates the request-statistics payload on a span. After
// normalization the payload hangs off one canonical key, but it can sit at
// the span level or inside the data blob, and a span payload can itself be a
// single store response entry.
func storeResponseStats(span *DiagnosticRecord) []map[string]any {
	var out []map[string]any
	for _, m := range []map[string]any{span.Payload, span.Data} {
		if m == nil {
			continue
		}
		if asMap(m["storeResult"]) != nil {
			out = append(out, m)
			continue
		}
		stats := asMap(m["clientSideRequestStats"])
		if stats == nil {
			continue
		}
		for _, e := range asSlice(stats["storeResponseStatistics"]) {
			if em := asMap(e); em != nil {
				out = append(out, em)
			}
		}
	}
	return out
}

func buildInteraction(stat map[string]any) *NetworkInteraction {
	sr := asMap(stat["storeResult"])
	if sr == nil {
		return nil
	}

	address := getStringFromMap(sr, "storePhysicalAddress")
	if address == "" {
		// Without a physical address the entry cannot be attributed to an
		// endpoint and is useless for drill-down.
		return nil
	}

	ni := &NetworkInteraction{
		ResourceType:     getStringFromMap(stat, "resourceType"),
		OperationType:    getStringFromMap(stat, "operationType"),
		StatusCode:       getStringFromMap(sr, "statusCode"),
		SubStatusCode:    getStringFromMap(sr, "subStatusCode"),
		BackendLatencyMs: getFloat64FromMap(sr, "backendLatencyMs"),
		PhysicalAddress:  address,
		EndpointHost:     endpointHost(address),
	}
	if ni.ResourceType == "" {
		ni.ResourceType = getStringFromMap(sr, "resourceType")
	}
	if ni.OperationType == "" {
		ni.OperationType = getStringFromMap(sr, "operationType")
	}

	ni.TransportException = exceptionMessage(sr["transportException"])
	ni.Timeline = requestTimeline(sr)
	ni.LastEvent = resolveLastEvent(ni.Timeline)
	ni.BottleneckPhase = resolveBottleneck(ni.Timeline)

	// Total transport time is the sum of the timeline phases; when no
	// timeline survived truncation, the backend latency is the best proxy.
	for _, p := range ni.Timeline {
		ni.DurationMs += p.DurationMs
	}
	if len(ni.Timeline) == 0 {
		ni.DurationMs = ni.BackendLatencyMs
	}

	return ni
}

// requestTimeline reads the transport timeline off a store result. Some
// producers nest the phase list one level deeper under the same key.
func requestTimeline(sr map[string]any) []TimelinePhase {
	v := sr["requestTimeline"]
	if m := asMap(v); m != nil {
		v = m["requestTimeline"]
	}
	entries := asSlice(v)
	if len(entries) == 0 {
		return nil
	}

	phases := make([]TimelinePhase, 0, len(entries))
	for _, e := range entries {
		em := asMap(e)
		if em == nil {
			continue
		}
		name := phaseName(getStringFromMap(em, "event"))
		if name == "" {
			continue
		}
		phases = append(phases, TimelinePhase{
			Name:       name,
			StartTime:  parseTimestampFromMap(em, "startTime"),
			DurationMs: getFloat64FromMap(em, "durationMs"),
		})
	}
	return phases
}

// phaseName canonicalizes a timeline event name; the .NET SDK writes
// "Transit Time" where others write "TransitTime".
func phaseName(s string) string {
	return strings.ReplaceAll(s, " ", "")
}

func resolveLastEvent(timeline []TimelinePhase) string {
	if len(timeline) == 0 {
		return ""
	}
	for _, candidate := range lastEventPriority {
		for _, p := range timeline {
			if p.Name == candidate {
				return candidate
			}
		}
	}
	return ""
}

// resolveBottleneck picks the timeline phase with the maximum duration,
// first occurrence winning ties.
func resolveBottleneck(timeline []TimelinePhase) string {
	best := ""
	bestDur := -1.0
	for _, p := range timeline {
		if p.DurationMs > bestDur {
			best = p.Name
			bestDur = p.DurationMs
		}
	}
	return best
}

// exceptionMessage extracts a display message from a transport exception
// payload, which may be a plain string or a structured object.
func exceptionMessage(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case map[string]any:
		if msg := getStringFromMap(t, "message"); msg != "" {
			return msg
		}
		if msg := getStringFromMap(t, "error"); msg != "" {
			return msg
		}
	}
	return ""
}

// endpointHost extracts the host from a store physical address like
// "rntbd://host.documents.example.com:14331/apps/.../replicas/...".
func endpointHost(address string) string {
	if u, err := url.Parse(address); err == nil && u.Hostname() != "" {
		return u.Hostname()
	}
	// Malformed addresses still usually carry a scheme separator.
	s := address
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexAny(s, "/:"); i >= 0 {
		s = s[:i]
	}
	return s
}
