// Package config loads benchmark suites and command-line options for bufferbench.
package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// lookupSetting returns the first suite-file key present in settings. Test
// entries are lowercased by toStringKeyMap while top-level keys come straight
// from viper, so camelCase aliases such as "chartAxis" are also tried folded.
func lookupSetting(settings map[string]interface{}, keys ...string) (interface{}, bool) {
	for _, key := range keys {
		for _, candidate := range [...]string{key, strings.ToLower(key)} {
			if val, ok := settings[candidate]; ok {
				return val, true
			}
		}
	}
	return nil, false
}

func asString(value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	case []byte:
		return string(v), nil
	default:
		return fmt.Sprint(v), nil
	}
}

// asInt converts numbers and numeric strings to an int. JSON decodes every
// number as float64, so whole floats are accepted and fractional ones are not.
func asInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case int:
		return v, nil
	case int8:
		return int(v), nil
	case int16:
		return int(v), nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case uint:
		return int(v), nil
	case uint8:
		return int(v), nil
	case uint16:
		return int(v), nil
	case uint32:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float32:
		return wholeFloat(float64(v))
	case float64:
		return wholeFloat(v)
	case string:
		if strings.TrimSpace(v) == "" {
			return 0, nil
		}
		return strconv.Atoi(strings.TrimSpace(v))
	default:
		return 0, fmt.Errorf("unsupported numeric type %T", value)
	}
}

func wholeFloat(v float64) (int, error) {
	if v != math.Trunc(v) {
		return 0, fmt.Errorf("expected a whole number, got %g", v)
	}
	return int(v), nil
}

func asFloat64(value interface{}) (float64, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		if strings.TrimSpace(v) == "" {
			return 0, nil
		}
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return 0, fmt.Errorf("unsupported float type %T", value)
	}
}

// asDuration converts a value to a time.Duration. Strings go through
// time.ParseDuration; bare numbers are seconds, fractions included.
func asDuration(value interface{}) (time.Duration, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case time.Duration:
		return v, nil
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return 0, nil
		}
		if secs, err := strconv.ParseFloat(v, 64); err == nil {
			return secondsToDuration(secs), nil
		}
		return time.ParseDuration(v)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		iv, err := asInt(v)
		if err != nil {
			return 0, err
		}
		return time.Duration(iv) * time.Second, nil
	case float32, float64:
		fv, err := asFloat64(v)
		if err != nil {
			return 0, err
		}
		return secondsToDuration(fv), nil
	default:
		return 0, fmt.Errorf("unsupported duration type %T", value)
	}
}

func secondsToDuration(secs float64) time.Duration {
	return time.Duration(math.Round(secs * float64(time.Second)))
}

// toInterfaceSlice returns the entries of a suite's "tests" list. JSON
// decodes them as []interface{}; YAML may hand back typed map slices.
func toInterfaceSlice(value interface{}) ([]interface{}, error) {
	if value == nil {
		return nil, nil
	}
	if entries, ok := value.([]interface{}); ok {
		return entries, nil
	}

	var entries []interface{}
	switch list := value.(type) {
	case []map[string]interface{}:
		for _, entry := range list {
			entries = append(entries, entry)
		}
	case []map[interface{}]interface{}:
		for _, entry := range list {
			entries = append(entries, entry)
		}
	default:
		return nil, fmt.Errorf("tests must be a list of objects, got %T", value)
	}
	return entries, nil
}

// toStringKeyMap turns one entry of the tests list into a map keyed by the
// trimmed, lowercased key names ("URL_GET" and "url_get" are the same key).
func toStringKeyMap(value interface{}) (map[string]interface{}, error) {
	var entry map[string]interface{}
	switch m := value.(type) {
	case map[string]interface{}:
		entry = make(map[string]interface{}, len(m))
		for key, val := range m {
			entry[normalizeKey(key)] = val
		}
	case map[interface{}]interface{}:
		entry = make(map[string]interface{}, len(m))
		for key, val := range m {
			name, err := asString(key)
			if err != nil {
				return nil, err
			}
			entry[normalizeKey(name)] = val
		}
	default:
		return nil, fmt.Errorf("test entry must be an object, got %T", value)
	}
	return entry, nil
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
