package main

import (
	"fmt"
	"testing"
)

func spanFromJSON(t *testing.T, raw string) []*DiagnosticRecord {
	t.Helper()
	recs, _, err := parseRecord(raw)
	if err != nil {
		t.Fatalf("parseRecord failed: %v", err)
	}
	var spans []*DiagnosticRecord
	for _, r := range recs {
		spans = append(spans, flattenRecord(r)...)
	}
	return spans
}

func storeResponseJSON(timeline string, extra string) string {
	return fmt.Sprintf(`{
		"name": "ReadItemAsync",
		"duration in milliseconds": 812.5,
		"data": {
			"Client Side Request Stats": {
				"StoreResponseStatistics": [
					{
						"ResourceType": "Document",
						"OperationType": "Read",
						"StoreResult": {
							"StatusCode": "Ok",
							"SubStatusCode": "Unknown",
							"StorePhysicalAddress": "rntbd://cdb-host-1.example.com:14331/apps/a/replicas/r/",
							"BELatencyInMs": "1.84"%s%s
						}
					}
				]
			}
		}
	}`, timeline, extra)
}

func TestExtractInteractionBasics(t *testing.T) {
	timeline := `,
		"transportRequestTimeline": {
			"requestTimeline": [
				{"event": "Created", "durationInMs": 0.5},
				{"event": "ChannelAcquisitionStarted", "durationInMs": 0.1},
				{"event": "Pipelined", "durationInMs": 0.4},
				{"event": "Transit Time", "durationInMs": 500},
				{"event": "Received", "durationInMs": 2},
				{"event": "Completed", "durationInMs": 0}
			]
		}`
	spans := spanFromJSON(t, storeResponseJSON(timeline, ""))
	interactions := extractInteractions(spans)
	if len(interactions) != 1 {
		t.Fatalf("expected 1 interaction, got %d", len(interactions))
	}
	ni := interactions[0]

	if ni.ResourceType != "Document" || ni.OperationType != "Read" {
		t.Fatalf("type fields = %s/%s", ni.ResourceType, ni.OperationType)
	}
	if ni.StatusCode != "Ok" || ni.SubStatusCode != "Unknown" {
		t.Fatalf("status fields = %s/%s", ni.StatusCode, ni.SubStatusCode)
	}
	if ni.BackendLatencyMs != 1.84 {
		t.Fatalf("backend latency = %v", ni.BackendLatencyMs)
	}
	if ni.EndpointHost != "cdb-host-1.example.com" {
		t.Fatalf("endpoint host = %q", ni.EndpointHost)
	}
	if len(ni.Timeline) != 6 {
		t.Fatalf("timeline phases = %d", len(ni.Timeline))
	}
	if ni.Timeline[3].Name != "TransitTime" {
		t.Fatalf("phase name not canonicalized: %q", ni.Timeline[3].Name)
	}
	wantDur := 0.5 + 0.1 + 0.4 + 500 + 2 + 0
	if ni.DurationMs != wantDur {
		t.Fatalf("durationMs = %v, want %v", ni.DurationMs, wantDur)
	}
}

func TestLastEventIsPriorityNotTemporal(t *testing.T) {
	// Completed appears first in the recorded order; it still wins because
	// resolution follows the fixed priority list, not recording order.
	timeline := `,
		"transportRequestTimeline": {
			"requestTimeline": [
				{"event": "Completed", "durationInMs": 0},
				{"event": "Created", "durationInMs": 1},
				{"event": "Pipelined", "durationInMs": 2}
			]
		}`
	interactions := extractInteractions(spanFromJSON(t, storeResponseJSON(timeline, "")))
	if len(interactions) != 1 {
		t.Fatalf("expected 1 interaction, got %d", len(interactions))
	}
	if interactions[0].LastEvent != "Completed" {
		t.Fatalf("lastEvent = %q, want Completed", interactions[0].LastEvent)
	}
}

func TestLastEventFurthestReached(t *testing.T) {
	timeline := `,
		"transportRequestTimeline": {
			"requestTimeline": [
				{"event": "Created", "durationInMs": 1},
				{"event": "ChannelAcquisitionStarted", "durationInMs": 200},
				{"event": "Pipelined", "durationInMs": 3}
			]
		}`
	interactions := extractInteractions(spanFromJSON(t, storeResponseJSON(timeline, "")))
	if interactions[0].LastEvent != "Pipelined" {
		t.Fatalf("lastEvent = %q, want Pipelined", interactions[0].LastEvent)
	}
}

func TestBottleneckPhase(t *testing.T) {
	timeline := `,
		"transportRequestTimeline": {
			"requestTimeline": [
				{"event": "Created", "durationInMs": 1},
				{"event": "ChannelAcquisitionStarted", "durationInMs": 200},
				{"event": "Transit Time", "durationInMs": 500}
			]
		}`
	interactions := extractInteractions(spanFromJSON(t, storeResponseJSON(timeline, "")))
	if interactions[0].BottleneckPhase != "TransitTime" {
		t.Fatalf("bottleneck = %q, want TransitTime", interactions[0].BottleneckPhase)
	}
}

func TestBottleneckTieFirstOccurrence(t *testing.T) {
	phases := []TimelinePhase{
		{Name: "Pipelined", DurationMs: 5},
		{Name: "TransitTime", DurationMs: 5},
	}
	if got := resolveBottleneck(phases); got != "Pipelined" {
		t.Fatalf("tie resolution = %q, want first occurrence Pipelined", got)
	}
}

func TestSkipEntriesWithoutPhysicalAddress(t *testing.T) {
	raw := `{
		"name": "ReadItemAsync",
		"data": {
			"Client Side Request Stats": {
				"StoreResponseStatistics": [
					{"StoreResult": {"StatusCode": "Gone"}}
				]
			}
		}
	}`
	interactions := extractInteractions(spanFromJSON(t, raw))
	if len(interactions) != 0 {
		t.Fatalf("expected no interactions without a physical address, got %d", len(interactions))
	}
}

func TestExceptionMessageShapes(t *testing.T) {
	asString := `,
		"TransportException": "connection reset (Time: 2026-08-30T10:00:00Z)"`
	interactions := extractInteractions(spanFromJSON(t, storeResponseJSON("", asString)))
	if got := interactions[0].TransportException; got != "connection reset (Time: 2026-08-30T10:00:00Z)" {
		t.Fatalf("string exception = %q", got)
	}

	asObject := `,
		"TransportException": {"Message": "channel closed", "code": 10054}`
	interactions = extractInteractions(spanFromJSON(t, storeResponseJSON("", asObject)))
	if got := interactions[0].TransportException; got != "channel closed" {
		t.Fatalf("object exception = %q", got)
	}
}

func TestTimelineMissingIsNotAnError(t *testing.T) {
	interactions := extractInteractions(spanFromJSON(t, storeResponseJSON("", "")))
	if len(interactions) != 1 {
		t.Fatalf("expected 1 interaction, got %d", len(interactions))
	}
	ni := interactions[0]
	if ni.LastEvent != "" || ni.BottleneckPhase != "" {
		t.Fatalf("derived fields should be empty without a timeline: %+v", ni)
	}
	if ni.DurationMs != ni.BackendLatencyMs {
		t.Fatalf("duration should fall back to backend latency: %v != %v", ni.DurationMs, ni.BackendLatencyMs)
	}
}

func TestEndpointHost(t *testing.T) {
	cases := []struct{ in, want string }{
		{"rntbd://cdb-host.example.com:14331/apps/a/", "cdb-host.example.com"},
		{"https://region.documents.example.com/", "region.documents.example.com"},
		{"garbage-no-scheme/path", "garbage-no-scheme"},
	}
	for _, tc := range cases {
		if got := endpointHost(tc.in); got != tc.want {
			t.Fatalf("endpointHost(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
