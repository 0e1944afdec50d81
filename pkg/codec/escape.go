package codec

import (
	"net/url"
	"strings"

	"github.com/brendan.keane/urlquery/internal/errors"
)

// escape percent-encodes s the way browsers encode form components, with
// spaces as %20 rather than '+'.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// unescape decodes a key or value from a query string, treating '+' as a
// space.
func unescape(s, query string) (string, error) {
	out, err := url.QueryUnescape(s)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeCodec, "failed to decode query component").
			WithContext("query", query)
	}
	return out, nil
}
