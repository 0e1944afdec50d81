package testutil

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/brendan.keane/urlquery/pkg/urlquery"
)

// Custom assertion helpers to reduce boilerplate in tests

// AssertNoError fails the test if err is not nil
func AssertNoError(t *testing.T, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: got error %v, expected none", msg, err)
	}
}

// AssertError fails the test if err is nil
func AssertError(t *testing.T, err error, msg string) {
	t.Helper()
	if err == nil {
		t.Fatalf("%s: expected error, got none", msg)
	}
}

// AssertErrorContains fails the test if err is nil or doesn't contain the expected substring
func AssertErrorContains(t *testing.T, err error, expected string, msg string) {
	t.Helper()
	if err == nil {
		t.Fatalf("%s: expected error containing %q, got none", msg, expected)
	}
	if !strings.Contains(err.Error(), expected) {
		t.Fatalf("%s: expected error containing %q, got %q", msg, expected, err.Error())
	}
}

// AssertStringEqual fails the test if got != expected
func AssertStringEqual(t *testing.T, got, expected string, msg string) {
	t.Helper()
	if got != expected {
		t.Fatalf("%s: got %q, expected %q", msg, got, expected)
	}
}

// AssertStringContains fails the test if str doesn't contain substring
func AssertStringContains(t *testing.T, str, substring string, msg string) {
	t.Helper()
	if !strings.Contains(str, substring) {
		t.Fatalf("%s: expected %q to contain %q", msg, str, substring)
	}
}

// AssertQueryEqual fails the test with a diff if two queries differ.
// Nested maps compare equal whether typed as urlquery.Query or map[string]any.
func AssertQueryEqual(t *testing.T, got, expected urlquery.Query, msg string) {
	t.Helper()
	if diff := cmp.Diff(normalize(expected), normalize(got), cmpopts.EquateNaNs()); diff != "" {
		t.Fatalf("%s: query mismatch (-expected +got):\n%s", msg, diff)
	}
}

// AssertURLEqual fails the test if the decomposed URLs differ
func AssertURLEqual(t *testing.T, got, expected urlquery.URLWithQueryParams, msg string) {
	t.Helper()
	if got.BaseURL != expected.BaseURL {
		t.Fatalf("%s: base URL: got %q, expected %q", msg, got.BaseURL, expected.BaseURL)
	}
	AssertQueryEqual(t, got.QueryParams, expected.QueryParams, msg)
}

func normalize(v any) any {
	switch n := v.(type) {
	case urlquery.Query:
		return normalize(map[string]any(n))
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, val := range n {
			out[k] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(n))
		for i, val := range n {
			out[i] = normalize(val)
		}
		return out
	}
	return v
}

// AssertMockCalled fails the test if the mock wasn't called the expected number of times
func AssertMockCalled(t *testing.T, actualCalls, expectedCalls int, mockName string) {
	t.Helper()
	if actualCalls != expectedCalls {
		t.Fatalf("Mock %s: expected %d calls, got %d", mockName, expectedCalls, actualCalls)
	}
}
