package config

import (
	"reflect"
	"testing"
	"time"
)

func TestAsString(t *testing.T) {
	tests := []struct {
		input interface{}
		want  string
	}{
		{"hello", "hello"},
		{123, "123"},
		{true, "true"},
		{nil, ""},
		{[]byte("bytes"), "bytes"},
	}

	for _, tt := range tests {
		got, err := asString(tt.input)
		if err != nil {
			t.Errorf("asString(%v) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("asString(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestAsInt(t *testing.T) {
	tests := []struct {
		input interface{}
		want  int
	}{
		{123, 123},
		{"456", 456},
		{int64(789), 789},
		{float64(10.0), 10},
		{nil, 0},
	}

	for _, tt := range tests {
		got, err := asInt(tt.input)
		if err != nil {
			t.Errorf("asInt(%v) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("asInt(%v) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestAsIntRejectsFractions(t *testing.T) {
	if _, err := asInt(2.5); err == nil {
		t.Fatal("asInt(2.5) expected error")
	}
	if _, err := asInt([]int{1}); err == nil {
		t.Fatal("asInt([]int) expected error")
	}
}

func TestAsDuration(t *testing.T) {
	tests := []struct {
		input interface{}
		want  time.Duration
	}{
		{nil, 0},
		{1, time.Second},
		{float64(3), 3 * time.Second},
		{0.5, 500 * time.Millisecond},
		{"2", 2 * time.Second},
		{"250ms", 250 * time.Millisecond},
		{time.Minute, time.Minute},
	}

	for _, tt := range tests {
		got, err := asDuration(tt.input)
		if err != nil {
			t.Errorf("asDuration(%v) error = %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("asDuration(%v) = %s, want %s", tt.input, got, tt.want)
		}
	}

	if _, err := asDuration("soon"); err == nil {
		t.Error("asDuration(\"soon\") expected error")
	}
}

func TestToStringKeyMapLowercasesKeys(t *testing.T) {
	got, err := toStringKeyMap(map[interface{}]interface{}{" URL_Get ": "http://x"})
	if err != nil {
		t.Fatalf("toStringKeyMap() error = %v", err)
	}
	if got["url_get"] != "http://x" {
		t.Fatalf("toStringKeyMap() = %v", got)
	}
	if _, err := toStringKeyMap("nope"); err == nil {
		t.Fatal("toStringKeyMap(string) expected error")
	}
}

func TestBuildTest(t *testing.T) {
	test, err := buildTest(map[string]interface{}{
		"url_get":             "http://localhost:8080/",
		"requests_number":     float64(250),
		"concurrent_requests": float64(25),
		"repeats":             float64(10),
		"delay_s":             float64(1),
		"rate_per_second":     40,
		"expect_json_path":    " data.id ",
	})
	if err != nil {
		t.Fatalf("buildTest() error = %v", err)
	}

	want := Test{
		Label:              "http://localhost:8080/",
		URLGet:             "http://localhost:8080/",
		RequestsNumber:     250,
		ConcurrentRequests: 25,
		Repeats:            10,
		Delay:              time.Second,
		RatePerSecond:      40,
		ExpectJSONPath:     "data.id",
	}
	if !reflect.DeepEqual(test, want) {
		t.Fatalf("buildTest() = %+v, want %+v", test, want)
	}
}

func TestBuildTestRecordsMissingKeys(t *testing.T) {
	test, err := buildTest(map[string]interface{}{
		"url":                 "http://localhost:8080/",
		"concurrent_requests": 5,
		"delay":               "250ms",
		"repeats":             nil,
	})
	if err != nil {
		t.Fatalf("buildTest() error = %v", err)
	}
	want := []string{"requests_number", "repeats"}
	if !reflect.DeepEqual(test.Missing, want) {
		t.Fatalf("Missing = %v, want %v", test.Missing, want)
	}
}

func TestBuildTestZeroValuesAreNotMissing(t *testing.T) {
	test, err := buildTest(map[string]interface{}{
		"url_get":             "http://localhost:8080/",
		"requests_number":     0,
		"concurrent_requests": 1,
		"repeats":             0,
		"delay_s":             0,
	})
	if err != nil {
		t.Fatalf("buildTest() error = %v", err)
	}
	if len(test.Missing) != 0 {
		t.Fatalf("Missing = %v, want none", test.Missing)
	}
}

func TestBuildTestInvalidField(t *testing.T) {
	_, err := buildTest(map[string]interface{}{"repeats": "many"})
	if err == nil {
		t.Fatal("buildTest() expected error")
	}
}
