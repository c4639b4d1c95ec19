package main

import "math"

// percentile computes the nearest-rank percentile of a pre-sorted ascending
// slice: index = ceil(p/100*n)-1, clamped. Empty input yields 0. This is the
// only percentile algorithm in the analyzer; every aggregation uses it.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(n))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	return sorted[idx]
}

// computeStats summarizes a pre-sorted ascending slice.
func computeStats(sorted []float64) PercentileStats {
	if len(sorted) == 0 {
		return PercentileStats{}
	}
	return PercentileStats{
		Min: sorted[0],
		P50: percentile(sorted, 50),
		P75: percentile(sorted, 75),
		P90: percentile(sorted, 90),
		P95: percentile(sorted, 95),
		P99: percentile(sorted, 99),
		Max: sorted[len(sorted)-1],
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
