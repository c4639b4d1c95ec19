package main

import "time"

// DiagnosticRecord is one normalized client diagnostic entry: an operation
// with its nested span tree. Records are built once per analysis run and
// never mutated afterwards.
type DiagnosticRecord struct {
	Name       string              `json:"name"`
	StartTime  time.Time           `json:"startTime"`
	DurationMs float64             `json:"durationMs"`
	Calls      map[string]int64    `json:"calls,omitempty"`
	Data       map[string]any      `json:"data,omitempty"`
	Children   []*DiagnosticRecord `json:"children,omitempty"`

	// Payload keeps the full normalized object for extraction passes.
	Payload map[string]any `json:"-"`
}

// TimelinePhase is one transport phase from a request timeline.
type TimelinePhase struct {
	Name       string    `json:"name"`
	StartTime  time.Time `json:"startTime,omitempty"`
	DurationMs float64   `json:"durationMs"`
}

// NetworkInteraction is a single store round-trip extracted from a span's
// request-statistics payload.
type NetworkInteraction struct {
	ResourceType       string          `json:"resourceType"`
	OperationType      string          `json:"operationType"`
	StatusCode         string          `json:"statusCode"`
	SubStatusCode      string          `json:"subStatusCode"`
	DurationMs         float64         `json:"durationMs"`
	BackendLatencyMs   float64         `json:"backendLatencyMs,omitempty"`
	TransportException string          `json:"transportException,omitempty"`
	PhysicalAddress    string          `json:"physicalAddress"`
	EndpointHost       string          `json:"endpointHost,omitempty"`
	LastEvent          string          `json:"lastEvent,omitempty"`
	BottleneckPhase    string          `json:"bottleneckPhase,omitempty"`
	Timeline           []TimelinePhase `json:"timeline,omitempty"`
}

// PercentileStats summarizes a duration distribution. For a fixed sorted
// input the fields are non-decreasing from Min through Max.
type PercentileStats struct {
	Min float64 `json:"min"`
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
	P90 float64 `json:"p90"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
	Max float64 `json:"max"`
}

// GroupEntry is one member of a group, reduced to what the drill-down needs.
type GroupEntry struct {
	Label      string  `json:"label"`
	DurationMs float64 `json:"durationMs"`
}

// Bucket is one percentile range of a group. Count always reflects the full
// membership; Entries is capped for display.
type Bucket struct {
	Range   string       `json:"range"`
	Count   int          `json:"count"`
	Entries []GroupEntry `json:"entries,omitempty"`
}

// Group is one aggregation partition. The buckets are disjoint half-open
// percentile ranges anchored at the group's own stats and their counts sum
// to Count.
type Group struct {
	Key     string                  `json:"key"`
	Count   int                     `json:"count"`
	Stats   PercentileStats         `json:"stats"`
	Entries []GroupEntry            `json:"entries,omitempty"`
	Buckets []Bucket                `json:"buckets"`
	Phases  []*TransportPhaseDetail `json:"phases,omitempty"`
}

// HostCount is one endpoint host with its interaction count.
type HostCount struct {
	Host  string `json:"host"`
	Count int    `json:"count"`
}

// TransportPhaseDetail sub-aggregates a last-transport-event group by
// bottleneck phase.
type TransportPhaseDetail struct {
	Phase    string          `json:"phase"`
	Count    int             `json:"count"`
	Stats    PercentileStats `json:"stats"`
	Buckets  []Bucket        `json:"buckets"`
	TopHosts []HostCount     `json:"topHosts,omitempty"`
	Entries  []GroupEntry    `json:"entries,omitempty"`
}

// SystemMetricSnapshot is one client system-history sample.
type SystemMetricSnapshot struct {
	Timestamp      time.Time `json:"timestamp"`
	CPU            float64   `json:"cpu"`
	Memory         float64   `json:"memory"`
	ThreadWaitMs   float64   `json:"threadWaitMs"`
	TCPConnections int64     `json:"tcpConnections"`
}

// MetricSummary carries percentile stats plus the average for one metric.
type MetricSummary struct {
	Stats PercentileStats `json:"stats"`
	Avg   float64         `json:"avg"`
}

// SystemMetricsReport is the deduplicated, chronologically sorted view of all
// system-history samples found in the input.
type SystemMetricsReport struct {
	Snapshots []SystemMetricSnapshot   `json:"snapshots,omitempty"`
	Metrics   map[string]MetricSummary `json:"metrics,omitempty"`
}

// HistogramCell is one time bucket of the latency timeline with per-band
// counts.
type HistogramCell struct {
	Time   time.Time `json:"time"`
	Counts []int     `json:"counts"`
}

// TimeLatencyHistogram buckets (timestamp, latency) pairs on a time axis
// whose width adapts to the observed span and a fixed latency band ladder.
type TimeLatencyHistogram struct {
	BucketSeconds int64           `json:"bucketSeconds"`
	Bands         []string        `json:"bands"`
	Cells         []HistogramCell `json:"cells"`
}

// AnalysisResult is the full serializable output of one analysis run. It is
// pure data; rendering is a separate concern.
type AnalysisResult struct {
	ReportID           string    `json:"reportId"`
	GeneratedAt        time.Time `json:"generatedAt"`
	LatencyThresholdMs float64   `json:"latencyThresholdMs"`

	TotalRecords       int `json:"totalRecords"`
	ParsedRecords      int `json:"parsedRecords"`
	RepairedRecords    int `json:"repairedRecords"`
	FailedRecords      int `json:"failedRecords"`
	HighLatencyRecords int `json:"highLatencyRecords"`

	OperationBuckets []*Group              `json:"operationBuckets,omitempty"`
	TargetOperation  string                `json:"targetOperation,omitempty"`
	CallCounts       map[string]int64      `json:"callCounts,omitempty"`
	Interactions     []*NetworkInteraction `json:"interactions,omitempty"`

	ResourceTypeGroups       []*Group `json:"resourceTypeGroups,omitempty"`
	StatusCodeGroups         []*Group `json:"statusCodeGroups,omitempty"`
	TransportEventGroups     []*Group `json:"transportEventGroups,omitempty"`
	TransportExceptionGroups []*Group `json:"transportExceptionGroups,omitempty"`

	SystemMetrics   *SystemMetricsReport  `json:"systemMetrics,omitempty"`
	LatencyTimeline *TimeLatencyHistogram `json:"latencyTimeline,omitempty"`
}
