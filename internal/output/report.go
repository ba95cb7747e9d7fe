package output

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/oklog/ulid/v2"
	"gopkg.in/yaml.v3"

	"github.com/torosent/bufferbench/internal/metrics"
	"github.com/torosent/bufferbench/internal/runner"
)

// Report is the machine-readable result of one bufferbench invocation.
type Report struct {
	RunID     string        `json:"run_id" yaml:"run_id"`
	StartedAt time.Time     `json:"started_at" yaml:"started_at"`
	Suites    []SuiteReport `json:"suites" yaml:"suites"`
}

type SuiteReport struct {
	Title    string       `json:"title" yaml:"title"`
	Ordering string       `json:"ordering" yaml:"ordering"`
	Tests    []TestReport `json:"tests" yaml:"tests"`
}

type TestReport struct {
	Label              string               `json:"label" yaml:"label"`
	URL                string               `json:"url_get" yaml:"url_get"`
	RequestsNumber     int                  `json:"requests_number" yaml:"requests_number"`
	ConcurrentRequests int                  `json:"concurrent_requests" yaml:"concurrent_requests"`
	Repeats            int                  `json:"repeats" yaml:"repeats"`
	DelaySeconds       float64              `json:"delay_s" yaml:"delay_s"`
	Summary            metrics.Summary      `json:"summary" yaml:"summary"`
	Samples            []float32            `json:"samples_seconds" yaml:"samples_seconds"`
	Latency            metrics.LatencyStats `json:"latency" yaml:"latency"`
}

// NewRunID returns a lexically sortable identifier for a run started at t.
func NewRunID(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), ulid.DefaultEntropy()).String()
}

func NewReport(runID string, startedAt time.Time, suites []runner.SuiteResult) Report {
	report := Report{
		RunID:     runID,
		StartedAt: startedAt.UTC(),
		Suites:    make([]SuiteReport, 0, len(suites)),
	}
	for _, suite := range suites {
		sr := SuiteReport{
			Title:    suite.Title,
			Ordering: suite.Ordering.String(),
			Tests:    make([]TestReport, 0, len(suite.Results)),
		}
		for _, res := range suite.Results {
			samples := res.Samples
			if samples == nil {
				samples = []float32{}
			}
			sr.Tests = append(sr.Tests, TestReport{
				Label:              res.Test.Label,
				URL:                res.Test.URL,
				RequestsNumber:     res.Test.RequestsNumber,
				ConcurrentRequests: res.Test.ConcurrentRequests,
				Repeats:            res.Test.Repeats,
				DelaySeconds:       res.Test.Delay.Seconds(),
				Summary:            res.Summary,
				Samples:            samples,
				Latency:            res.Latency,
			})
		}
		report.Suites = append(report.Suites, sr)
	}
	return report
}

// PrintReport writes a human-readable summary table for one suite.
func PrintReport(w io.Writer, suite runner.SuiteResult) {
	fmt.Fprintf(w, "\n--- %s ---\n", suite.Title)
	if len(suite.Results) == 0 {
		fmt.Fprintln(w, "No tests.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tLabel\tRequests\tConcurrency\tRepeats\tMean[s]\tStdDev[s]\tP50[ms]\tP99[ms]")
	for i, res := range suite.Results {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%.4f\t%.4f\t%.2f\t%.2f\n",
			i+1,
			res.Test.Label,
			res.Test.RequestsNumber,
			res.Test.ConcurrentRequests,
			res.Test.Repeats,
			res.Summary.Mean,
			res.Summary.StdDev,
			res.Latency.P50LatencyMs,
			res.Latency.P99LatencyMs,
		)
	}
	_ = tw.Flush()
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, report Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func PrintYAMLReport(w io.Writer, report Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return err
	}
	return enc.Close()
}
