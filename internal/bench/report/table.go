package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/DjordjeVuckovic/searchbench/internal/bench/runner"
)

type latencyRow struct {
	label string
	value func(*runner.LatencyStats) float64
}

var latencyRows = []latencyRow{
	{"Min", func(s *runner.LatencyStats) float64 { return s.Min }},
	{"P50", func(s *runner.LatencyStats) float64 { return s.P50 }},
	{"P90", func(s *runner.LatencyStats) float64 { return s.P90 }},
	{"P95", func(s *runner.LatencyStats) float64 { return s.P95 }},
	{"P99", func(s *runner.LatencyStats) float64 { return s.P99 }},
	{"Max", func(s *runner.LatencyStats) float64 { return s.Max }},
	{"Mean", func(s *runner.LatencyStats) float64 { return s.Mean }},
}

// WriteSummary prints the result of a single engine.
func WriteSummary(w io.Writer, run *runner.BenchmarkRun) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "\n=== %s Results ===\n\n", strings.ToUpper(run.API))
	fmt.Fprintf(tw, "Successful:\t%d/%d\n", run.Summary.SuccessfulQueries, run.Summary.TotalQueries)
	fmt.Fprintf(tw, "Mode:\t%s (workers: %d)\n", run.ExecutionMode, run.MaxWorkers)
	fmt.Fprintf(tw, "Total time:\t%.0fms\n\n", run.TotalExecutionTimeMs)

	fmt.Fprintln(tw, "Metric\tValue (ms)")
	fmt.Fprintln(tw, "---\t---")
	for _, row := range latencyRows {
		fmt.Fprintf(tw, "%s\t%s\n", row.label, fmtLatency(run.Summary.Latency, row.value))
	}
	fmt.Fprintln(tw)

	tw.Flush()
}

// WriteComparison prints one latency column per engine.
func WriteComparison(w io.Writer, runs []*runner.BenchmarkRun) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "\n=== Latency (ms) ===\n\n")

	header := []string{"Metric"}
	for _, run := range runs {
		header = append(header, strings.ToUpper(run.API))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	fmt.Fprintln(tw, strings.Join(sep, "\t"))

	for _, row := range latencyRows {
		cells := []string{row.label}
		for _, run := range runs {
			cells = append(cells, fmtLatency(run.Summary.Latency, row.value))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}

	cells := []string{"OK"}
	for _, run := range runs {
		cells = append(cells, fmt.Sprintf("%d/%d", run.Summary.SuccessfulQueries, run.Summary.TotalQueries))
	}
	fmt.Fprintln(tw, strings.Join(cells, "\t"))
	fmt.Fprintln(tw)

	tw.Flush()
}

func fmtLatency(s *runner.LatencyStats, value func(*runner.LatencyStats) float64) string {
	if s == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", value(s))
}
