// Package urlquery splits URLs into a base and a query, and parses,
// stringifies and merges query parameters through a pluggable codec.
//
// The package never implements query-string grammar itself. A Codec decides
// how a raw query string maps to a Query; this package decides when the codec
// is called, what counts as an empty query, how a trailing slash is handled
// and how an existing query is combined with new parameters.
package urlquery

// Query is a decoded query string. Values may be strings, numbers, booleans,
// nil, nested map[string]any values or []any sequences. A key that is present
// with a nil value is distinct from an absent key.
type Query map[string]any

// URLWithQueryParams is a URL decomposed into the part before its first '?'
// and the decoded query that followed it.
type URLWithQueryParams struct {
	BaseURL     string `json:"baseUrl"`
	QueryParams Query  `json:"queryParams"`
}

// Codec converts between a raw query string (without the leading '?') and a
// Query. Any configuration a codec needs is carried by the codec value
// itself.
//
// Errors returned by a codec are passed through to the caller of Parse,
// Stringify or Update unchanged.
type Codec interface {
	Parse(queryString string) (Query, error)
	Stringify(query Query) (string, error)
}

// ParseFunc overrides Codec.Parse for a single instance or call.
type ParseFunc func(queryString string) (Query, error)

// StringifyFunc overrides Codec.Stringify for a single instance or call.
type StringifyFunc func(query Query) (string, error)

// MergeFunc combines an existing query with new parameters and returns the
// full merged query.
type MergeFunc func(old, next Query) (Query, error)

// BaseURLOptions controls how the base URL is normalized.
type BaseURLOptions struct {
	// RemoveTrailingSlash strips a single trailing '/' from the base URL.
	RemoveTrailingSlash bool
}
