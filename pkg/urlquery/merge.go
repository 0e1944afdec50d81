package urlquery

import (
	"fmt"

	"github.com/brendan.keane/urlquery/internal/values"
	"github.com/mitchellh/copystructure"
)

// DeepMerge is the default MergeFunc. Keys only in old are kept and keys only
// in next are added. When both hold maps they are merged recursively, when
// both hold sequences they are merged index by index, and otherwise the value
// from next wins, including an explicit nil.
//
// Merging sequences by index rather than replacing them can leave ragged
// results, e.g. [a b c] merged with [x] gives [x b c]. Callers that want
// next's sequence to replace old's should pass their own MergeFunc.
//
// Neither argument is modified.
func DeepMerge(old, next Query) (Query, error) {
	dst, err := copyQuery(old)
	if err != nil {
		return nil, err
	}
	src, err := copyQuery(next)
	if err != nil {
		return nil, err
	}

	mergeMap(dst, src)
	return dst, nil
}

func copyQuery(q Query) (Query, error) {
	if q == nil {
		return Query{}, nil
	}
	c, err := copystructure.Copy(q)
	if err != nil {
		return nil, fmt.Errorf("urlquery: copy query: %w", err)
	}
	return c.(Query), nil
}

func mergeMap(dst, src map[string]any) {
	for k, sv := range src {
		dv, ok := dst[k]
		if !ok {
			dst[k] = sv
			continue
		}
		dst[k] = mergeValue(dv, sv)
	}
}

func mergeValue(dv, sv any) any {
	if sm, ok := values.AsMap(sv); ok {
		if dm, ok := values.AsMap(dv); ok {
			mergeMap(dm, sm)
			return dm
		}
		return sm
	}

	if ss, ok := values.AsSlice(sv); ok {
		ds, ok := values.AsSlice(dv)
		if !ok {
			return ss
		}
		out := make([]any, max(len(ds), len(ss)))
		copy(out, ds)
		for i, v := range ss {
			if i < len(ds) {
				out[i] = mergeValue(ds[i], v)
				continue
			}
			out[i] = v
		}
		return out
	}

	return sv
}

// ShallowMerge copies old and then sets every key of next on the copy, so a
// sequence or map in next replaces the old value instead of merging with it.
func ShallowMerge(old, next Query) (Query, error) {
	out := make(Query, len(old)+len(next))
	for k, v := range old {
		out[k] = v
	}
	for k, v := range next {
		out[k] = v
	}
	return out, nil
}

// Reverse swaps the arguments of fn, so values already in the URL win over
// new ones.
func Reverse(fn MergeFunc) MergeFunc {
	return func(old, next Query) (Query, error) {
		return fn(next, old)
	}
}
