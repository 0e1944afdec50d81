package urlquery

import "strings"

// Extracted is the result of splitting a URL on its first '?'.
type Extracted struct {
	BaseURL     string
	QueryString string
	// HasQuery is false when the URL has no '?' or nothing follows it.
	HasQuery bool
}

// ExtractQuery splits rawURL on its first '?'. Everything after that
// character, including any further '?', belongs to the query string. The
// trailing slash is removed from the base after splitting, so the query is
// never affected.
func ExtractQuery(rawURL string, opts BaseURLOptions) Extracted {
	base, query, _ := strings.Cut(rawURL, "?")
	if opts.RemoveTrailingSlash {
		base = TrimTrailingSlash(base)
	}
	return Extracted{
		BaseURL:     base,
		QueryString: query,
		HasQuery:    query != "",
	}
}

// ExtractQueryFrom re-splits the BaseURL of an already decomposed URL. Its
// QueryParams are ignored.
func ExtractQueryFrom(u URLWithQueryParams, opts BaseURLOptions) Extracted {
	return ExtractQuery(u.BaseURL, opts)
}

// TrimTrailingSlash removes a single trailing '/'.
func TrimTrailingSlash(rawURL string) string {
	return strings.TrimSuffix(rawURL, "/")
}

// HasQueryParams reports whether rawURL contains a query separator.
func HasQueryParams(rawURL string) bool {
	return strings.Contains(rawURL, "?")
}

// QuerySeparator returns the separator needed to append another parameter to
// rawURL: "&" once a query has started, "?" otherwise.
func QuerySeparator(rawURL string) string {
	if HasQueryParams(rawURL) {
		return "&"
	}
	return "?"
}
