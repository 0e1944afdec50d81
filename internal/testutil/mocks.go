package testutil

import (
	"github.com/brendan.keane/urlquery/pkg/urlquery"
)

// MockCodec records every call and returns canned results
type MockCodec struct {
	ParseResult     urlquery.Query
	ParseError      error
	StringifyResult string
	StringifyError  error

	ParseCalls     []string         // query strings passed to Parse
	StringifyCalls []urlquery.Query // queries passed to Stringify
}

// Parse implements urlquery.Codec
func (m *MockCodec) Parse(queryString string) (urlquery.Query, error) {
	m.ParseCalls = append(m.ParseCalls, queryString)
	return m.ParseResult, m.ParseError
}

// Stringify implements urlquery.Codec
func (m *MockCodec) Stringify(query urlquery.Query) (string, error) {
	m.StringifyCalls = append(m.StringifyCalls, query)
	return m.StringifyResult, m.StringifyError
}

// NewMockCodec creates a mock codec with the given results
func NewMockCodec(parsed urlquery.Query, stringified string) *MockCodec {
	return &MockCodec{
		ParseResult:     parsed,
		StringifyResult: stringified,
		ParseCalls:      make([]string, 0),
		StringifyCalls:  make([]urlquery.Query, 0),
	}
}

// MockError provides a simple mock error implementation
type MockError struct {
	Message string
}

func (e *MockError) Error() string {
	return e.Message
}

// NewMockError creates a mock error
func NewMockError(message string) *MockError {
	return &MockError{Message: message}
}

// FailingMerge returns a merge function that always fails with err
func FailingMerge(err error) urlquery.MergeFunc {
	return func(old, next urlquery.Query) (urlquery.Query, error) {
		return nil, err
	}
}
