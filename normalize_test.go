package main

import (
	"reflect"
	"testing"
)

func TestNormalizeKeysAliases(t *testing.T) {
	in := map[string]any{
		"Name":                     "ReadItemAsync",
		"start time":               "2026-08-30T10:00:00Z",
		"duration in milliseconds": 812.5,
		"Children": []any{
			map[string]any{
				"name": "Transport",
				"data": map[string]any{
					"StoreResult": map[string]any{
						"StatusCode":           float64(200),
						"SubStatusCode":        float64(0),
						"StorePhysicalAddress": "rntbd://host:14331/",
						"BELatencyInMs":        "1.84",
					},
				},
			},
		},
	}

	out, ok := normalizeKeys(in).(map[string]any)
	if !ok {
		t.Fatal("normalizeKeys did not return a map")
	}
	for _, key := range []string{"name", "startTime", "durationMs", "children"} {
		if _, ok := out[key]; !ok {
			t.Fatalf("canonical key %q missing: %v", key, out)
		}
	}
	child := asMap(asSlice(out["children"])[0])
	sr := asMap(asMap(child["data"])["storeResult"])
	if sr == nil {
		t.Fatalf("storeResult not canonicalized: %v", child)
	}
	for _, key := range []string{"statusCode", "subStatusCode", "storePhysicalAddress", "backendLatencyMs"} {
		if _, ok := sr[key]; !ok {
			t.Fatalf("canonical key %q missing in store result: %v", key, sr)
		}
	}
}

func TestNormalizeKeysPassThrough(t *testing.T) {
	in := map[string]any{"unknownField": float64(1), "another": "x"}
	out := normalizeKeys(in).(map[string]any)
	if !reflect.DeepEqual(out, in) {
		t.Fatalf("unknown keys must pass through unchanged: %v != %v", out, in)
	}
}

func TestNormalizeKeysIdempotent(t *testing.T) {
	in := map[string]any{
		"StartTimeUTC": "2026-08-30T10:00:00Z",
		"DurationInMs": 5.0,
		"Data": map[string]any{
			"systemHistories": []any{
				map[string]any{"dateUtc": "2026-08-30T10:00:00Z", "CpuUsage": 12.5},
			},
		},
	}
	once := normalizeKeys(in)
	twice := normalizeKeys(normalizeKeys(map[string]any{
		"StartTimeUTC": "2026-08-30T10:00:00Z",
		"DurationInMs": 5.0,
		"Data": map[string]any{
			"systemHistories": []any{
				map[string]any{"dateUtc": "2026-08-30T10:00:00Z", "CpuUsage": 12.5},
			},
		},
	}))
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("normalizeKeys is not idempotent:\nonce:  %#v\ntwice: %#v", once, twice)
	}
}

func TestNoCanonicalKeyIsAnAlias(t *testing.T) {
	// Idempotence depends on canonical names never being aliases themselves.
	for alias, canonical := range keyAliases {
		if mapped, ok := keyAliases[canonical]; ok {
			t.Fatalf("canonical key %q (for alias %q) is itself an alias of %q", canonical, alias, mapped)
		}
	}
}
