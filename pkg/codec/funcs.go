package codec

import (
	"net/url"

	"github.com/brendan.keane/urlquery/internal/errors"
	"github.com/brendan.keane/urlquery/pkg/urlquery"
)

// Funcs adapts a pair of functions, usually closures over some other
// library's options, to urlquery.Codec.
type Funcs struct {
	ParseFunc     urlquery.ParseFunc
	StringifyFunc urlquery.StringifyFunc
}

var _ urlquery.Codec = Funcs{}

// Parse calls ParseFunc.
func (f Funcs) Parse(queryString string) (urlquery.Query, error) {
	return f.ParseFunc(queryString)
}

// Stringify calls StringifyFunc.
func (f Funcs) Stringify(query urlquery.Query) (string, error) {
	return f.StringifyFunc(query)
}

// Decoded percent-decodes the whole query string before handing it to inner,
// for URLs whose query was encoded as a single component, e.g.
// "?a%3D1%26b%3D2". Stringify is passed through unchanged.
func Decoded(inner urlquery.Codec) urlquery.Codec {
	return Funcs{
		ParseFunc: func(queryString string) (urlquery.Query, error) {
			decoded, err := url.PathUnescape(queryString)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrorTypeCodec, "failed to decode query string").
					WithContext("query", queryString)
			}
			return inner.Parse(decoded)
		},
		StringifyFunc: inner.Stringify,
	}
}
