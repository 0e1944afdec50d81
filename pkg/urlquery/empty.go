package urlquery

import (
	"reflect"

	"github.com/brendan.keane/urlquery/internal/values"
)

// CheckEmpty reports whether a single query value counts as empty. Strings,
// maps, slices and arrays are empty when they have no elements. Every other
// value is empty only when it is nil, so 0, false and NaN are not empty.
func CheckEmpty(v any) bool {
	if values.IsNil(v) {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() == 0
	}
	return false
}

// IsQueryEmpty reports whether every value in q is empty. An empty query is
// empty.
func IsQueryEmpty(q Query) bool {
	for _, v := range q {
		if !CheckEmpty(v) {
			return false
		}
	}
	return true
}
