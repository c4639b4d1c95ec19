package main

// Field names in exported diagnostics vary by SDK language and version: the
// .NET direct path writes "duration in milliseconds" and "StoreResult", the
// Java path writes "durationInMs" and "storeResult", older captures use yet
// other casings. One static alias table maps every known spelling onto a
// single canonical key during normalization; nothing downstream re-checks
// aliases.
var keyAliases = map[string]string{
	"Name": "name",

	"start time":   "startTime",
	"Start Time":   "startTime",
	"StartTimeUTC": "startTime",
	"StartTimeUtc": "startTime",
	"startTimeUtc": "startTime",

	"duration in milliseconds": "durationMs",
	"Duration in Milliseconds": "durationMs",
	"DurationInMs":             "durationMs",
	"durationInMs":             "durationMs",
	"durationInMilliseconds":   "durationMs",

	"Data":     "data",
	"Children": "children",
	"Summary":  "summary",

	"StatusCode":  "statusCode",
	"status code": "statusCode",

	"SubStatusCode":   "subStatusCode",
	"sub status code": "subStatusCode",
	"subStatus":       "subStatusCode",

	"ResourceType":  "resourceType",
	"resource type": "resourceType",

	"OperationType":  "operationType",
	"operation type": "operationType",

	"StoreResult":   "storeResult",
	"Store Result":  "storeResult",
	"storeResponse": "storeResult",

	"Client Side Request Stats":   "clientSideRequestStats",
	"ClientSideRequestStatistics": "clientSideRequestStats",
	"clientSideRequestStatistics": "clientSideRequestStats",
	"StoreResponseStatistics":     "storeResponseStatistics",
	"storeResponseStatisticsList": "storeResponseStatistics",

	"ResponseTimeUTC":      "responseTime",
	"responseTimeUTC":      "responseTime",
	"LocationEndpoint":     "locationEndpoint",
	"StorePhysicalAddress": "storePhysicalAddress",
	"physicalAddress":      "storePhysicalAddress",

	"BELatencyInMs":      "backendLatencyMs",
	"beLatencyInMs":      "backendLatencyMs",
	"BackendLatencyInMs": "backendLatencyMs",
	"backendLatencyInMs": "backendLatencyMs",

	"TransportException":       "transportException",
	"transportRequestTimeline": "requestTimeline",
	"TransportRequestTimeline": "requestTimeline",
	"RequestTimeline":          "requestTimeline",

	"Event":     "event",
	"EventName": "event",
	"eventName": "event",
	"Message":   "message",

	"SystemHistory":   "systemHistory",
	"systemHistories": "systemHistory",
	"DateUtc":         "timestamp",
	"dateUtc":         "timestamp",
	"Timestamp":       "timestamp",
	"Cpu":             "cpu",
	"CpuUsage":        "cpu",
	"Memory":          "memory",
	"memoryUsage":     "memory",
	"ThreadInfo":      "threadInfo",

	"threadWaitIntervalInMs": "threadWaitMs",
	"ThreadWaitIntervalInMs": "threadWaitMs",

	"numberOfOpenTcpConnection":  "tcpConnections",
	"numberOfOpenTcpConnections": "tcpConnections",
	"NumberOfOpenTcpConnections": "tcpConnections",
}

// normalizeKeys canonicalizes alias field names across a parsed value,
// recursing through objects and arrays. Idempotent: canonical names are
// never themselves aliases.
func normalizeKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[canonicalKey(k)] = normalizeKeys(val)
		}
		return out
	case []any:
		for i := range t {
			t[i] = normalizeKeys(t[i])
		}
		return t
	}
	return v
}

func canonicalKey(k string) string {
	if c, ok := keyAliases[k]; ok {
		return c
	}
	return k
}
