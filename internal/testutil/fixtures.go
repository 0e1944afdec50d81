// Package testutil provides shared testing utilities and fixtures
package testutil

import (
	"github.com/brendan.keane/urlquery/pkg/urlquery"
)

// Literals is a query with one value of each scalar kind
func Literals() urlquery.Query {
	return urlquery.Query{"number": 1, "text": "string", "boolean": true}
}

// LiteralsString is Literals as a decoder returns it
func LiteralsString() urlquery.Query {
	return urlquery.Query{"number": "1", "text": "string", "boolean": "true"}
}

// Common URLs used across test files
const (
	// LiteralsQuery is Literals encoded with sorted keys
	LiteralsQuery = "boolean=true&number=1&text=string"

	// EncodedQueryURL carries its whole query as one percent-encoded component
	EncodedQueryURL = "txt.com?a%3D1%26b%3Dstring%26c%3Dtrue"

	// NestedQuery uses bracket notation for maps and sequences
	NestedQuery = "filter[color]=red&filter[size][]=s&filter[size][]=m&page=2"
)

// Nested is NestedQuery decoded
func Nested() urlquery.Query {
	return urlquery.Query{
		"filter": map[string]any{
			"color": "red",
			"size":  []any{"s", "m"},
		},
		"page": "2",
	}
}
