package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"
)

// Mode selects which result-ordering policies each suite runs under.
type Mode string

const (
	ModeOrdered   Mode = "ordered"
	ModeUnordered Mode = "unordered"
	ModeBoth      Mode = "both"
)

// OutputFormat selects how suite results are reported.
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
	OutputYAML OutputFormat = "yaml"
)

// ChartAxis names the Test field plotted on a suite chart's x axis.
type ChartAxis string

const (
	ChartAxisAuto               ChartAxis = ""
	ChartAxisConcurrentRequests ChartAxis = "concurrent_requests"
	ChartAxisRequestsNumber     ChartAxis = "requests_number"
)

const highConcurrencyWarning = 500

type Config struct {
	ConfigFiles []string      `mapstructure:"-"`
	Suites      []Suite       `mapstructure:"-"`
	Mode        Mode          `mapstructure:"mode"`
	Title       string        `mapstructure:"title"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Output      OutputFormat  `mapstructure:"output"`
	Chart       bool          `mapstructure:"chart"`
	Verbose     bool          `mapstructure:"verbose"`
	Tracing     TracingConfig `mapstructure:"tracing"`
}

// Suite is the content of one suite file.
type Suite struct {
	Source    string    `mapstructure:"-"`
	Title     string    `mapstructure:"title"`
	ChartAxis ChartAxis `mapstructure:"chart_axis"`
	Tests     []Test    `mapstructure:"tests"`
}

// Test is one benchmark definition as written in a suite file.
type Test struct {
	Label              string        `mapstructure:"label"`
	URLGet             string        `mapstructure:"url_get"`
	RequestsNumber     int           `mapstructure:"requests_number"`
	ConcurrentRequests int           `mapstructure:"concurrent_requests"`
	Repeats            int           `mapstructure:"repeats"`
	Delay              time.Duration `mapstructure:"delay_s"`
	RatePerSecond      int           `mapstructure:"rate_per_second"`
	ExpectJSONPath     string        `mapstructure:"expect_json_path"`

	// Missing lists required keys absent from the suite file entry.
	Missing []string `mapstructure:"-"`
}

// requiredTestKeys must appear in every suite file test entry. A zero value
// is accepted when written out.
var requiredTestKeys = []string{"url_get", "requests_number", "concurrent_requests", "repeats", "delay_s"}

type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // "grpc" or "http"
	ServiceName string  `mapstructure:"service_name"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Insecure    bool    `mapstructure:"insecure"`
	Propagate   *bool   `mapstructure:"propagate"` // nil follows Enabled
}

// Enabled reports whether spans are exported.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != ""
}

// ShouldPropagate reports whether trace context is sent to the target.
func (t TracingConfig) ShouldPropagate() bool {
	if t.Propagate != nil {
		return *t.Propagate
	}
	return t.Enabled()
}

// Orderings returns the ordering modes to run, ordered first.
func (m Mode) Orderings() []Mode {
	switch m {
	case ModeOrdered, ModeUnordered:
		return []Mode{m}
	default:
		return []Mode{ModeOrdered, ModeUnordered}
	}
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func (c Config) Validate() error {
	var issues []string

	if len(c.ConfigFiles) == 0 {
		issues = append(issues, "at least one suite file is required (use --help for usage information)")
	}

	switch c.Mode {
	case ModeOrdered, ModeUnordered, ModeBoth:
	default:
		issues = append(issues, fmt.Sprintf("mode must be 'ordered', 'unordered', or 'both', got %q", c.Mode))
	}

	switch c.Output {
	case OutputText, OutputJSON, OutputYAML:
	default:
		issues = append(issues, fmt.Sprintf("output must be 'text', 'json', or 'yaml', got %q", c.Output))
	}

	if c.Timeout < 0 {
		issues = append(issues, "timeout must be >= 0")
	}
	if strings.TrimSpace(c.Title) != "" && len(c.Suites) > 1 {
		issues = append(issues, "title can only be set when a single suite file is given")
	}

	issues = append(issues, validateTracingConfig(c.Tracing)...)

	for _, suite := range c.Suites {
		issues = append(issues, validateSuite(suite)...)
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}

// Warnings returns non-fatal remarks about the configuration.
func (c Config) Warnings() []string {
	var warnings []string
	for _, suite := range c.Suites {
		for idx, t := range suite.Tests {
			if t.ConcurrentRequests > highConcurrencyWarning {
				warnings = append(warnings, fmt.Sprintf("%s: tests[%d]: high concurrency configured (%d requests in flight). Ensure you have authorization to test the target system.", suite.Source, idx, t.ConcurrentRequests))
			}
		}
	}
	return warnings
}

func validateSuite(suite Suite) []string {
	var issues []string
	prefix := suite.Source
	if prefix == "" {
		prefix = suite.Title
	}

	switch suite.ChartAxis {
	case ChartAxisAuto, ChartAxisConcurrentRequests, ChartAxisRequestsNumber:
	default:
		issues = append(issues, fmt.Sprintf("%s: chart_axis must be 'concurrent_requests' or 'requests_number', got %q", prefix, suite.ChartAxis))
	}

	if len(suite.Tests) == 0 {
		issues = append(issues, fmt.Sprintf("%s: tests are required", prefix))
	}

	for idx, t := range suite.Tests {
		issues = append(issues, validateTest(fmt.Sprintf("%s: tests[%d]", prefix, idx), t)...)
	}
	return issues
}

func validateTest(prefix string, t Test) []string {
	var issues []string

	for _, key := range t.Missing {
		issues = append(issues, fmt.Sprintf("%s: %s is required", prefix, key))
	}

	target := strings.TrimSpace(t.URLGet)
	if target == "" && !slices.Contains(t.Missing, "url_get") {
		issues = append(issues, fmt.Sprintf("%s: url_get is required", prefix))
	} else if u, err := url.Parse(target); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		issues = append(issues, fmt.Sprintf("%s: url_get must be an absolute http(s) URL, got %q", prefix, t.URLGet))
	}

	if t.RequestsNumber < 0 {
		issues = append(issues, fmt.Sprintf("%s: requests_number must be >= 0", prefix))
	}
	if t.ConcurrentRequests < 1 {
		issues = append(issues, fmt.Sprintf("%s: concurrent_requests must be >= 1", prefix))
	}
	if t.Repeats < 0 {
		issues = append(issues, fmt.Sprintf("%s: repeats must be >= 0", prefix))
	}
	if t.Delay < 0 {
		issues = append(issues, fmt.Sprintf("%s: delay_s must be >= 0", prefix))
	}
	if t.RatePerSecond < 0 {
		issues = append(issues, fmt.Sprintf("%s: rate_per_second must be >= 0", prefix))
	}
	return issues
}

func validateTracingConfig(t TracingConfig) []string {
	if !t.Enabled() {
		return nil
	}
	var issues []string
	switch strings.ToLower(strings.TrimSpace(t.Protocol)) {
	case "", "grpc", "http":
	default:
		issues = append(issues, fmt.Sprintf("tracing: protocol must be 'grpc' or 'http', got %q", t.Protocol))
	}
	if t.SampleRate < 0 || t.SampleRate > 1 {
		issues = append(issues, fmt.Sprintf("tracing: sample_rate must be between 0.0 and 1.0, got %g", t.SampleRate))
	}
	return issues
}
