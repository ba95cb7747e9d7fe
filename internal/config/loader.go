package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader builds a Config from command-line arguments and suite files.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

func NewLoader() *Loader {
	return &Loader{}
}

// Load parses args and reads every suite file they name. The result is not
// validated; call Config.Validate before running it.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	if len(args) == 0 {
		displayHelp(cmd)
		return nil, ErrHelpRequested
	}

	cfg := &Config{}
	if err := applyFlags(cfg, flagSet); err != nil {
		return nil, err
	}

	for _, path := range cfg.ConfigFiles {
		suite, err := LoadSuiteFile(path)
		if err != nil {
			return nil, err
		}
		cfg.Suites = append(cfg.Suites, suite)
	}

	if title := strings.TrimSpace(cfg.Title); title != "" && len(cfg.Suites) == 1 {
		cfg.Suites[0].Title = title
	}

	return cfg, nil
}

// LoadSuiteFile reads one suite file. The format follows the file extension.
// A suite without a title is named after the file.
func LoadSuiteFile(path string) (Suite, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Suite{}, fmt.Errorf("read suite %s: %w", path, err)
	}

	suite := Suite{Source: path}
	if err := applySuiteSettings(&suite, v.AllSettings()); err != nil {
		return Suite{}, fmt.Errorf("suite %s: %w", path, err)
	}
	if strings.TrimSpace(suite.Title) == "" {
		suite.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return suite, nil
}

func applySuiteSettings(suite *Suite, settings map[string]interface{}) error {
	if raw, ok := lookupSetting(settings, "title"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("title: %w", err)
		}
		suite.Title = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "chart_axis", "chartAxis"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("chart_axis: %w", err)
		}
		suite.ChartAxis = ChartAxis(strings.ToLower(strings.TrimSpace(val)))
	}

	if raw, ok := lookupSetting(settings, "tests"); ok {
		tests, err := parseTests(raw)
		if err != nil {
			return fmt.Errorf("tests: %w", err)
		}
		suite.Tests = tests
	}
	return nil
}

// testKeyAliases maps a suite file test key to every spelling accepted for it.
var testKeyAliases = map[string][]string{
	"url_get":             {"url_get", "url"},
	"requests_number":     {"requests_number"},
	"concurrent_requests": {"concurrent_requests"},
	"repeats":             {"repeats"},
	"delay_s":             {"delay_s", "delay"},
}

func parseTests(value interface{}) ([]Test, error) {
	items, err := toInterfaceSlice(value)
	if err != nil {
		return nil, err
	}
	tests := make([]Test, 0, len(items))
	for i, item := range items {
		settings, err := toStringKeyMap(item)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		t, err := buildTest(settings)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		tests = append(tests, t)
	}
	return tests, nil
}

func buildTest(settings map[string]interface{}) (Test, error) {
	var t Test
	for _, key := range requiredTestKeys {
		if v, ok := lookupSetting(settings, testKeyAliases[key]...); !ok || v == nil {
			t.Missing = append(t.Missing, key)
		}
	}

	if raw, ok := lookupSetting(settings, "label", "name"); ok {
		val, err := asString(raw)
		if err != nil {
			return Test{}, fmt.Errorf("label: %w", err)
		}
		t.Label = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(settings, "url_get", "url"); ok {
		val, err := asString(raw)
		if err != nil {
			return Test{}, fmt.Errorf("url_get: %w", err)
		}
		t.URLGet = strings.TrimSpace(val)
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"requests_number", &t.RequestsNumber},
		{"concurrent_requests", &t.ConcurrentRequests},
		{"repeats", &t.Repeats},
		{"rate_per_second", &t.RatePerSecond},
	}
	for _, field := range ints {
		raw, ok := lookupSetting(settings, field.key)
		if !ok {
			continue
		}
		val, err := asInt(raw)
		if err != nil {
			return Test{}, fmt.Errorf("%s: %w", field.key, err)
		}
		*field.dst = val
	}

	if raw, ok := lookupSetting(settings, "delay_s", "delay"); ok {
		val, err := asDuration(raw)
		if err != nil {
			return Test{}, fmt.Errorf("delay_s: %w", err)
		}
		t.Delay = val
	}
	if raw, ok := lookupSetting(settings, "expect_json_path"); ok {
		val, err := asString(raw)
		if err != nil {
			return Test{}, fmt.Errorf("expect_json_path: %w", err)
		}
		t.ExpectJSONPath = strings.TrimSpace(val)
	}

	if t.Label == "" {
		t.Label = t.URLGet
	}
	return t, nil
}
