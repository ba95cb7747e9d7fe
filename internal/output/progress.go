package output

import (
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/torosent/bufferbench/internal/runner"
)

// ConsoleReporter prints suite progress as it happens. It implements
// runner.Observer.
type ConsoleReporter struct {
	mu     sync.Mutex
	writer io.Writer
}

func NewConsoleReporter(writer io.Writer) *ConsoleReporter {
	if writer == nil {
		writer = io.Discard
	}
	return &ConsoleReporter{writer: writer}
}

func (c *ConsoleReporter) SuiteStarted(title string) {
	c.printf("\n🌊🌊🌊 %s 🌊🌊🌊\n", title)
}

func (c *ConsoleReporter) TestStarted(index int, test runner.Test) {
	c.printf("\n🚀Test%d - %s\n", index+1, FormatTest(test))
}

func (c *ConsoleReporter) TrialCompleted(trial, repeats int, elapsed time.Duration) {
	c.printf("  [%d/%d] time: %ss\n", trial, repeats, formatSeconds(float32(elapsed.Seconds())))
}

func (c *ConsoleReporter) TestCompleted(result runner.TestResult) {
	c.printf("SUMMARY: %s±%ss\n", formatSeconds(result.Summary.Mean), formatSeconds(result.Summary.StdDev))
}

func (c *ConsoleReporter) printf(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.writer, format, args...)
}

// FormatTest renders a test definition as a multi-line block.
func FormatTest(test runner.Test) string {
	s := fmt.Sprintf("%s\nurl_get: %s\nrequests_number: %d\nconcurrent_requests: %d\nrepeats: %d\ndelay: %ss",
		test.Label,
		test.URL,
		test.RequestsNumber,
		test.ConcurrentRequests,
		test.Repeats,
		strconv.FormatFloat(test.Delay.Seconds(), 'f', -1, 64),
	)
	if test.RatePerSecond > 0 {
		s += fmt.Sprintf("\nrate_per_second: %d", test.RatePerSecond)
	}
	if test.ExpectJSONPath != "" {
		s += fmt.Sprintf("\nexpect_json_path: %s", test.ExpectJSONPath)
	}
	return s
}

func formatSeconds(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', -1, 32)
}
