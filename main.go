package main

import (
	"encoding/json"
	"flag"
	"io"
	"os"
	"strconv"
	"time"
)

var (
	inputPath   = flag.String("input", "", "diagnostics file to analyze (default: stdin)")
	thresholdMs = flag.String("threshold", "", "high-latency threshold in ms (default 600; invalid values fall back)")
	allRecords  = flag.Bool("all", false, "skip the latency filter and analyze every record")
	workers     = flag.Int("workers", 0, "parse workers (default: number of CPUs)")
	pretty      = flag.Bool("pretty", false, "indent the JSON output")
	metricsOut  = flag.String("metrics", "", "write prometheus metrics to this file after the run ('-' for stderr)")
)

func main() {
	flag.Parse()

	data, err := readInput(*inputPath)
	if err != nil {
		LogError(err, "cannot read input")
		os.Exit(1)
	}
	data, err = decodeInput(data)
	if err != nil {
		LogError(err, "cannot decompress input")
		os.Exit(1)
	}

	cfg := Config{
		LatencyThresholdMs: parseThreshold(*thresholdMs),
		SkipLatencyFilter:  *allRecords,
		Workers:            *workers,
	}

	started := time.Now()
	result := Analyze(data, cfg)

	LogRunSummary("analyze", result.TotalRecords, time.Since(started), map[string]any{
		"parsed":       result.ParsedRecords,
		"repaired":     result.RepairedRecords,
		"failed":       result.FailedRecords,
		"high_latency": result.HighLatencyRecords,
		"interactions": len(result.Interactions),
		"report_id":    result.ReportID,
	})

	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		LogError(err, "cannot write result")
		os.Exit(1)
	}

	if *metricsOut != "" {
		if err := writeMetrics(*metricsOut); err != nil {
			LogWarn("cannot write metrics", map[string]any{"error": err.Error()})
		}
	}
}

func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// parseThreshold parses the threshold flag; empty, non-numeric, or
// non-positive values fall back to the default rather than failing the run.
func parseThreshold(s string) float64 {
	if s == "" {
		return DefaultLatencyThresholdMs
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		LogWarn("invalid threshold, using default", map[string]any{
			"value":   s,
			"default": DefaultLatencyThresholdMs,
		})
		return DefaultLatencyThresholdMs
	}
	return v
}

func writeMetrics(dest string) error {
	if dest == "-" {
		return dumpMetrics(os.Stderr)
	}
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()
	return dumpMetrics(f)
}
