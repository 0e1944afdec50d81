package codec

import (
	"sort"
	"strconv"
	"strings"

	"github.com/brendan.keane/urlquery/internal/values"
	"github.com/brendan.keane/urlquery/pkg/urlquery"
)

// ArrayFormat selects how Brackets writes sequences.
type ArrayFormat string

const (
	// ArrayBrackets writes a[]=1&a[]=2.
	ArrayBrackets ArrayFormat = "brackets"
	// ArrayIndices writes a[0]=1&a[1]=2.
	ArrayIndices ArrayFormat = "indices"
	// ArrayRepeat writes a=1&a=2.
	ArrayRepeat ArrayFormat = "repeat"
	// ArrayComma writes a=1,2 and splits comma separated values on parse.
	ArrayComma ArrayFormat = "comma"
)

const (
	defaultDepth = 5
	// Indices above this parse as map keys, so a[999999]=x cannot allocate
	// a huge sequence.
	arrayLimit = 20
)

// Brackets is a codec for nested keys written with brackets, such as
// user[name]=x, tags[]=a or items[0][id]=1. With AllowDots, user.name=x is
// read and written as well.
//
// A key given both plainly and with brackets keeps every value: a=1&a[b]=2
// parses to a sequence holding "1" and {b: "2"}, in input order.
//
// The zero value parses bracket keys and writes them unencoded with the
// brackets array format.
type Brackets struct {
	ArrayFormat ArrayFormat
	AllowDots   bool
	SkipNulls   bool
	// Encode percent-encodes keys and values when stringifying.
	Encode bool
	// Depth limits how many bracket segments are nested; the rest of the
	// key becomes a single literal segment. Zero means 5.
	Depth int
}

var _ urlquery.Codec = Brackets{}

// NewBrackets returns a Brackets codec that percent-encodes its output.
func NewBrackets() Brackets {
	return Brackets{ArrayFormat: ArrayBrackets, Encode: true}
}

// Parse decodes queryString into nested maps and sequences.
func (b Brackets) Parse(queryString string) (urlquery.Query, error) {
	root := map[string]any{}

	for _, part := range strings.Split(queryString, "&") {
		if part == "" {
			continue
		}
		rawKey, rawVal, _ := strings.Cut(part, "=")

		key, err := unescape(rawKey, queryString)
		if err != nil {
			return nil, err
		}
		if key == "" {
			continue
		}
		val, err := unescape(rawVal, queryString)
		if err != nil {
			return nil, err
		}

		var leaf any = val
		if b.ArrayFormat == ArrayComma && strings.Contains(val, ",") {
			items := strings.Split(val, ",")
			list := make([]any, len(items))
			for i, item := range items {
				list[i] = item
			}
			leaf = list
		}

		if b.AllowDots {
			key = dotsToBrackets(key)
		}
		segs := splitKey(key, b.depth())
		root[segs[0]] = assign(root[segs[0]], segs[1:], leaf)
	}

	return urlquery.Query(finalize(root).(map[string]any)), nil
}

func (b Brackets) depth() int {
	if b.Depth > 0 {
		return b.Depth
	}
	return defaultDepth
}

// dotsToBrackets rewrites a.b[c].d as a[b][c][d].
func dotsToBrackets(key string) string {
	if !strings.Contains(key, ".") {
		return key
	}
	var sb strings.Builder
	inBracket := false
	open := false
	for _, r := range key {
		switch {
		case r == '[':
			if open {
				sb.WriteByte(']')
				open = false
			}
			inBracket = true
			sb.WriteRune(r)
		case r == ']':
			inBracket = false
			sb.WriteRune(r)
		case r == '.' && !inBracket:
			if open {
				sb.WriteByte(']')
			}
			sb.WriteByte('[')
			open = true
		default:
			sb.WriteRune(r)
		}
	}
	if open {
		sb.WriteByte(']')
	}
	return sb.String()
}

// splitKey returns the parent key followed by up to depth bracket segments.
// Whatever follows the last consumed segment is kept as one literal segment.
func splitKey(key string, depth int) []string {
	i := strings.IndexByte(key, '[')
	if i < 0 || !strings.Contains(key[i:], "]") {
		return []string{key}
	}

	var segs []string
	if i > 0 {
		segs = append(segs, key[:i])
	}
	rest := key[i:]
	for depth > 0 && strings.HasPrefix(rest, "[") {
		j := strings.IndexByte(rest, ']')
		if j < 0 {
			break
		}
		segs = append(segs, rest[1:j])
		rest = rest[j+1:]
		depth--
	}
	if rest != "" {
		segs = append(segs, rest)
	}
	if segs[0] == "" && len(segs) > 1 {
		// "[a]=1" has no parent; qs-style decoders key it as "a".
		segs = segs[1:]
	}
	return segs
}

// list collects sequence items by index while parsing.
type list struct {
	items map[int]any
	next  int
}

func newList() *list {
	return &list{items: map[int]any{}}
}

func (l *list) set(i int, v any) {
	l.items[i] = v
	if i >= l.next {
		l.next = i + 1
	}
}

func (l *list) push(v any) {
	l.set(l.next, v)
}

func (l *list) toMap() map[string]any {
	m := make(map[string]any, len(l.items))
	for i, v := range l.items {
		m[strconv.Itoa(i)] = v
	}
	return m
}

func asIndex(seg string) (int, bool) {
	n, err := strconv.Atoi(seg)
	if err != nil || n < 0 || n > arrayLimit || strconv.Itoa(n) != seg {
		return 0, false
	}
	return n, true
}

// assign places v under segs inside cur and returns the updated node.
func assign(cur any, segs []string, v any) any {
	if len(segs) == 0 {
		switch c := cur.(type) {
		case nil:
			return v
		case *list:
			c.push(v)
			return c
		default:
			// Repeated plain key a=1&a=2, or a plain key after a nested
			// one as in a[b]=1&a=2.
			l := newList()
			l.push(c)
			l.push(v)
			return l
		}
	}

	seg, rest := segs[0], segs[1:]

	if seg == "" {
		l, ok := cur.(*list)
		if !ok {
			l = newList()
			if cur != nil {
				l.push(cur)
			}
		}
		l.push(assign(nil, rest, v))
		return l
	}

	if n, ok := asIndex(seg); ok {
		switch c := cur.(type) {
		case nil:
			l := newList()
			l.set(n, assign(nil, rest, v))
			return l
		case *list:
			c.set(n, assign(c.items[n], rest, v))
			return c
		case map[string]any:
		default:
			// a=1&a[0]=2 appends to the plain value.
			l := newList()
			l.push(c)
			l.push(assign(nil, rest, v))
			return l
		}
	}

	var m map[string]any
	switch c := cur.(type) {
	case nil:
		m = map[string]any{}
	case map[string]any:
		m = c
	case *list:
		m = c.toMap()
	default:
		// a=1&a[b]=2 keeps the plain value next to the map.
		l := newList()
		l.push(c)
		l.push(assign(nil, segs, v))
		return l
	}
	m[seg] = assign(m[seg], rest, v)
	return m
}

// finalize converts parse-time lists into compacted []any values.
func finalize(node any) any {
	switch n := node.(type) {
	case map[string]any:
		for k, v := range n {
			n[k] = finalize(v)
		}
		return n
	case *list:
		idx := make([]int, 0, len(n.items))
		for i := range n.items {
			idx = append(idx, i)
		}
		sort.Ints(idx)
		out := make([]any, len(idx))
		for j, i := range idx {
			out[j] = finalize(n.items[i])
		}
		return out
	}
	return node
}

// Stringify encodes query with keys in sorted order at every level.
func (b Brackets) Stringify(query urlquery.Query) (string, error) {
	var parts []string
	for _, k := range sortedKeys(query) {
		parts = b.encode(parts, k, query[k])
	}
	return strings.Join(parts, "&"), nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (b Brackets) encode(parts []string, prefix string, v any) []string {
	if values.IsNil(v) {
		if b.SkipNulls {
			return parts
		}
		return append(parts, b.component(prefix)+"=")
	}

	if m, ok := values.AsMap(v); ok {
		for _, k := range sortedKeys(m) {
			child := prefix + "[" + k + "]"
			if b.AllowDots {
				child = prefix + "." + k
			}
			parts = b.encode(parts, child, m[k])
		}
		return parts
	}

	if list, ok := values.AsSlice(v); ok {
		if b.ArrayFormat == ArrayComma && allScalar(list) {
			if len(list) == 0 {
				return parts
			}
			items := make([]string, len(list))
			for i, item := range list {
				if !values.IsNil(item) {
					items[i] = b.component(values.FormatScalar(item))
				}
			}
			return append(parts, b.component(prefix)+"="+strings.Join(items, ","))
		}

		for i, item := range list {
			var child string
			switch b.ArrayFormat {
			case ArrayIndices:
				child = prefix + "[" + strconv.Itoa(i) + "]"
			case ArrayRepeat, ArrayComma:
				child = prefix
			default:
				child = prefix + "[]"
			}
			parts = b.encode(parts, child, item)
		}
		return parts
	}

	return append(parts, b.component(prefix)+"="+b.component(values.FormatScalar(v)))
}

func (b Brackets) component(s string) string {
	if b.Encode {
		return escape(s)
	}
	return s
}

func allScalar(list []any) bool {
	for _, item := range list {
		if _, ok := values.AsMap(item); ok {
			return false
		}
		if _, ok := values.AsSlice(item); ok {
			return false
		}
	}
	return true
}
