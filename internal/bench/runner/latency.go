package runner

import (
	"math"
	"sort"
	"time"
)

var reportedPercentiles = []float64{50, 90, 95, 99}

// Summarize counts outcomes and computes latency statistics over the
// successful results.
func Summarize(results []QueryResult) BenchmarkSummary {
	summary := BenchmarkSummary{TotalQueries: len(results)}

	latencies := make([]float64, 0, len(results))
	for _, r := range results {
		if !r.Success {
			summary.FailedQueries++
			continue
		}
		summary.SuccessfulQueries++
		latencies = append(latencies, r.LatencyMs)
	}

	summary.Latency = ComputeLatencyStats(latencies)
	return summary
}

// ComputeLatencyStats returns nil for an empty sample. The input is not modified.
func ComputeLatencyStats(latencies []float64) *LatencyStats {
	if len(latencies) == 0 {
		return nil
	}

	sorted := make([]float64, len(latencies))
	copy(sorted, latencies)
	sort.Float64s(sorted)

	var sum float64
	for _, l := range sorted {
		sum += l
	}

	stats := &LatencyStats{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: sum / float64(len(sorted)),
	}
	pcts := make([]float64, len(reportedPercentiles))
	for i, p := range reportedPercentiles {
		pcts[i] = Percentile(sorted, p)
	}
	stats.P50, stats.P90, stats.P95, stats.P99 = pcts[0], pcts[1], pcts[2], pcts[3]

	return stats
}

// Percentile uses the nearest-rank method on an ascending slice: the value
// at index ceil(p/100*n)-1, clamped to the slice bounds. It returns NaN for
// an empty slice.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
