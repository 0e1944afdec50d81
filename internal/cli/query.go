package cli

import (
	"encoding/json"
	"strings"

	"github.com/brendan.keane/urlquery/internal/errors"
	"github.com/brendan.keane/urlquery/pkg/urlquery"
)

// BuildQuery turns -q pairs and an optional JSON object into a query.
// "key=value" sets a string, "key=" an empty string and a bare "key" sets
// null, so a parameter can be cleared on update. A key given more than once
// collects its values into a sequence. Pairs are merged over the JSON object.
func BuildQuery(pairs []string, jsonText string) (urlquery.Query, error) {
	base := urlquery.Query{}
	if strings.TrimSpace(jsonText) != "" {
		if err := json.Unmarshal([]byte(jsonText), &base); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeValidation, "query JSON must be an object").
				WithContext("field", "json")
		}
		if base == nil {
			base = urlquery.Query{}
		}
	}

	fromPairs := urlquery.Query{}
	for _, param := range pairs {
		// Split on first = to get key and value
		key, value, hasValue := strings.Cut(param, "=")
		if key == "" {
			return nil, errors.New(errors.ErrorTypeValidation, "query parameter has no key").
				WithContext("field", "query").
				WithContext("param", param)
		}

		var v any
		if hasValue {
			v = value
		}

		existing, seen := fromPairs[key]
		switch {
		case !seen:
			fromPairs[key] = v
		default:
			if list, ok := existing.([]any); ok {
				fromPairs[key] = append(list, v)
			} else {
				fromPairs[key] = []any{existing, v}
			}
		}
	}

	if len(fromPairs) == 0 {
		return base, nil
	}
	return urlquery.ShallowMerge(base, fromPairs)
}
