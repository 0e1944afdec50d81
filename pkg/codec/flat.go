// Package codec provides query-string codecs for urlquery.
package codec

import (
	"net/url"
	"sort"
	"strings"

	"github.com/brendan.keane/urlquery/internal/errors"
	"github.com/brendan.keane/urlquery/internal/values"
	"github.com/brendan.keane/urlquery/pkg/urlquery"
)

// Flat is a codec with net/url semantics: keys are never nested, a key seen
// once decodes to a string and a repeated key decodes to a []any of strings.
type Flat struct {
	// SkipNulls drops nil values when stringifying instead of emitting "key=".
	SkipNulls bool
}

var _ urlquery.Codec = Flat{}

// Parse decodes queryString with url.ParseQuery.
func (f Flat) Parse(queryString string) (urlquery.Query, error) {
	vals, err := url.ParseQuery(queryString)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeCodec, "failed to parse query string").
			WithContext("query", queryString)
	}

	q := make(urlquery.Query, len(vals))
	for k, vv := range vals {
		if len(vv) == 1 {
			q[k] = vv[0]
			continue
		}
		list := make([]any, len(vv))
		for i, v := range vv {
			list[i] = v
		}
		q[k] = list
	}
	return q, nil
}

// Stringify encodes query with keys in sorted order. Sequences repeat the
// key; nested maps are rejected.
func (f Flat) Stringify(query urlquery.Query) (string, error) {
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		v := query[k]
		if list, ok := values.AsSlice(v); ok {
			for _, item := range list {
				part, err := f.pair(k, item)
				if err != nil {
					return "", err
				}
				if part != "" {
					parts = append(parts, part)
				}
			}
			continue
		}

		part, err := f.pair(k, v)
		if err != nil {
			return "", err
		}
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, "&"), nil
}

func (f Flat) pair(key string, v any) (string, error) {
	if values.IsNil(v) {
		if f.SkipNulls {
			return "", nil
		}
		return url.QueryEscape(key) + "=", nil
	}
	if _, ok := values.AsMap(v); ok {
		return "", errors.New(errors.ErrorTypeCodec, "flat codec cannot encode nested values").
			WithContext("key", key)
	}
	if _, ok := values.AsSlice(v); ok {
		return "", errors.New(errors.ErrorTypeCodec, "flat codec cannot encode nested sequences").
			WithContext("key", key)
	}
	return url.QueryEscape(key) + "=" + url.QueryEscape(values.FormatScalar(v)), nil
}
