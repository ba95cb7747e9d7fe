package runner

import (
	"strings"

	"github.com/tidwall/gjson"
)

const maxReportedBodyBytes = 1024

// validateOutcomes returns an error for the first outcome that is not a
// success, in collection order.
func validateOutcomes(outcomes []Outcome, jsonPath string) error {
	for _, o := range outcomes {
		if !o.Success() {
			return &HTTPError{
				URL:        o.URL,
				StatusCode: o.StatusCode,
				Body:       snippet(o.Body),
			}
		}
		if jsonPath != "" && !gjson.Get(o.Body, jsonPath).Exists() {
			return &BodyValidationError{URL: o.URL, Path: jsonPath}
		}
	}
	return nil
}

func snippet(body string) string {
	body = strings.TrimSpace(body)
	if len(body) > maxReportedBodyBytes {
		body = body[:maxReportedBodyBytes]
	}
	return body
}
