package urlquery_test

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brendan.keane/urlquery/internal/testutil"
	"github.com/brendan.keane/urlquery/pkg/codec"
	"github.com/brendan.keane/urlquery/pkg/urlquery"
)

func newFlat(opts ...urlquery.Option) *urlquery.Instance {
	return urlquery.New(codec.Flat{}, opts...)
}

func TestNew_NilCodecPanics(t *testing.T) {
	assert.Panics(t, func() { urlquery.New(nil) })
}

func TestStringify(t *testing.T) {
	rawBrackets := codec.Brackets{ArrayFormat: codec.ArrayBrackets}

	tests := []struct {
		name     string
		url      string
		query    urlquery.Query
		opts     []urlquery.Option
		expected string
	}{
		{
			name:     "construct url with query params",
			url:      "test.com",
			query:    testutil.Literals(),
			expected: "test.com?" + testutil.LiteralsQuery,
		},
		{
			name:     "existing query params are replaced",
			url:      "www.mypage.com/action?number=33",
			query:    testutil.Literals(),
			expected: "www.mypage.com/action?" + testutil.LiteralsQuery,
		},
		{
			name:     "existing params not carried over",
			url:      "test.com?number=33",
			query:    urlquery.Query{"text": "x"},
			expected: "test.com?text=x",
		},
		{
			name:     "dangling separator",
			url:      "www.mypage.com/action?",
			query:    testutil.Literals(),
			expected: "www.mypage.com/action?" + testutil.LiteralsQuery,
		},
		{
			name:     "empty query removes all parameters",
			url:      "www.mypage.com/?a%3D1%26b%3Dstring%26c%3Dtrue",
			query:    urlquery.Query{},
			expected: "www.mypage.com/",
		},
		{
			name:     "empty values leave no separator",
			url:      "www.mypage.com/?a=1",
			query:    urlquery.Query{"a": nil, "b": "", "c": []any{}},
			expected: "www.mypage.com/",
		},
		{
			name:     "null params skipped by codec override",
			url:      "test.com",
			query:    urlquery.Query{"page": nil, "color": "red"},
			opts:     []urlquery.Option{urlquery.WithStringify(codec.Flat{SkipNulls: true}.Stringify)},
			expected: "test.com?color=red",
		},
		{
			name:     "trailing slash removed before appending",
			url:      "test.com/",
			query:    urlquery.Query{"page": 1},
			opts:     []urlquery.Option{urlquery.RemoveTrailingSlash(true)},
			expected: "test.com?page=1",
		},
		{
			name:     "trailing slash removed for empty query",
			url:      "test.com/?page=1",
			query:    urlquery.Query{},
			opts:     []urlquery.Option{urlquery.RemoveTrailingSlash(true)},
			expected: "test.com",
		},
		{
			name:  "arrays with bracket style unencoded",
			url:   "test.com",
			query: urlquery.Query{"tests": []any{1, 2, 3}, "colors": []any{"red", "blue"}},
			opts:  []urlquery.Option{urlquery.WithCodec(rawBrackets)},
			expected: "test.com?colors[]=red&colors[]=blue" +
				"&tests[]=1&tests[]=2&tests[]=3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newFlat().Stringify(tt.url, tt.query, tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestStringify_LeadingSeparatorFromCodec(t *testing.T) {
	mock := testutil.NewMockCodec(nil, "?a=1")
	got, err := urlquery.New(mock).Stringify("x.com?old=1", urlquery.Query{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, "x.com?a=1", got)
}

func TestStringify_CodecReturnsNothing(t *testing.T) {
	mock := testutil.NewMockCodec(nil, "")
	got, err := urlquery.New(mock).Stringify("x.com/", urlquery.Query{"a": nil, "b": 1})
	require.NoError(t, err)
	assert.Equal(t, "x.com/", got)
}

func TestStringify_EmptyQuerySkipsCodec(t *testing.T) {
	mock := testutil.NewMockCodec(nil, "never")
	_, err := urlquery.New(mock).Stringify("x.com", urlquery.Query{"a": nil})
	require.NoError(t, err)
	testutil.AssertMockCalled(t, len(mock.StringifyCalls), 0, "Stringify")
}

func TestStringify_CodecErrorPropagates(t *testing.T) {
	sentinel := errors.New("cannot encode")
	mock := testutil.NewMockCodec(nil, "")
	mock.StringifyError = sentinel

	_, err := urlquery.New(mock).Stringify("x.com", urlquery.Query{"a": 1})
	assert.Same(t, sentinel, err)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		opts     []urlquery.Option
		expected urlquery.URLWithQueryParams
	}{
		{
			name:     "url with query params",
			url:      "test.com?number=1&text=string&boolean=true",
			expected: urlquery.URLWithQueryParams{BaseURL: "test.com", QueryParams: testutil.LiteralsString()},
		},
		{
			name:     "url without query params",
			url:      "www.mypage.com/action?",
			expected: urlquery.URLWithQueryParams{BaseURL: "www.mypage.com/action", QueryParams: urlquery.Query{}},
		},
		{
			name:     "relative url",
			url:      "/action?number=1&text=string&boolean=true",
			expected: urlquery.URLWithQueryParams{BaseURL: "/action", QueryParams: testutil.LiteralsString()},
		},
		{
			name:     "leading ampersand",
			url:      "test.com?&number=1&text=string&boolean=true",
			expected: urlquery.URLWithQueryParams{BaseURL: "test.com", QueryParams: testutil.LiteralsString()},
		},
		{
			name:     "encoded query",
			url:      "test.com?number%3D1%26text%3Dstring%26boolean%3Dtrue",
			opts:     []urlquery.Option{urlquery.WithParse(codec.Decoded(codec.Flat{}).Parse)},
			expected: urlquery.URLWithQueryParams{BaseURL: "test.com", QueryParams: testutil.LiteralsString()},
		},
		{
			name:     "later separators belong to the query",
			url:      "a.com?next=/b?c=1",
			expected: urlquery.URLWithQueryParams{BaseURL: "a.com", QueryParams: urlquery.Query{"next": "/b?c=1"}},
		},
		{
			name:     "trailing slash removed",
			url:      "a.com/?x=1",
			opts:     []urlquery.Option{urlquery.RemoveTrailingSlash(true)},
			expected: urlquery.URLWithQueryParams{BaseURL: "a.com", QueryParams: urlquery.Query{"x": "1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newFlat().Parse(tt.url, tt.opts...)
			require.NoError(t, err)
			testutil.AssertURLEqual(t, got, tt.expected, "Parse")
		})
	}
}

func TestParse_NoQuerySkipsCodec(t *testing.T) {
	mock := testutil.NewMockCodec(urlquery.Query{"never": "used"}, "")
	inst := urlquery.New(mock)

	for _, u := range []string{"a.com", "a.com?"} {
		got, err := inst.Parse(u)
		require.NoError(t, err)
		assert.NotNil(t, got.QueryParams)
		assert.Empty(t, got.QueryParams)
	}
	testutil.AssertMockCalled(t, len(mock.ParseCalls), 0, "Parse")
}

func TestParse_CodecReceivesQueryWithoutSeparator(t *testing.T) {
	mock := testutil.NewMockCodec(urlquery.Query{}, "")
	_, err := urlquery.New(mock).Parse("a.com?x=1?y")
	require.NoError(t, err)
	require.Len(t, mock.ParseCalls, 1)
	assert.Equal(t, "x=1?y", mock.ParseCalls[0])
}

func TestParse_CodecErrorPropagates(t *testing.T) {
	_, err := newFlat().Parse("a.com?x=%zz")
	testutil.AssertErrorContains(t, err, "invalid URL escape", "flat codec error")
}

func TestUpdate(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		query    urlquery.Query
		opts     []urlquery.Option
		expected urlquery.URLWithQueryParams
	}{
		{
			name:  "update and replace color",
			url:   "txt.com/delete?test=1&color=blue",
			query: urlquery.Query{"color": "red", "page": 2},
			expected: urlquery.URLWithQueryParams{
				BaseURL:     "txt.com/delete",
				QueryParams: urlquery.Query{"color": "red", "page": 2, "test": "1"},
			},
		},
		{
			name:  "merge query params",
			url:   "txt.com/edit?page=1",
			query: urlquery.Query{"color": "black", "skip": true},
			expected: urlquery.URLWithQueryParams{
				BaseURL:     "txt.com/edit",
				QueryParams: urlquery.Query{"color": "black", "page": "1", "skip": true},
			},
		},
		{
			name:  "reset param to null",
			url:   "txt.com/edit?page=1",
			query: urlquery.Query{"page": nil},
			expected: urlquery.URLWithQueryParams{
				BaseURL:     "txt.com/edit",
				QueryParams: urlquery.Query{"page": nil},
			},
		},
		{
			name:  "custom merge strategy",
			url:   "txt.com/edit?page=1&test=true",
			query: urlquery.Query{"page": nil, "count": 5},
			opts: []urlquery.Option{urlquery.WithMergeQuery(func(old, next urlquery.Query) (urlquery.Query, error) {
				return urlquery.DeepMerge(next, old)
			})},
			expected: urlquery.URLWithQueryParams{
				BaseURL:     "txt.com/edit",
				QueryParams: urlquery.Query{"page": "1", "test": "true", "count": 5},
			},
		},
		{
			name:  "url without query",
			url:   "txt.com/edit",
			query: urlquery.Query{"page": 2},
			expected: urlquery.URLWithQueryParams{
				BaseURL:     "txt.com/edit",
				QueryParams: urlquery.Query{"page": 2},
			},
		},
		{
			name:  "encoded query",
			url:   testutil.EncodedQueryURL,
			query: testutil.Literals(),
			opts:  []urlquery.Option{urlquery.WithParse(codec.Decoded(codec.Flat{}).Parse)},
			expected: urlquery.URLWithQueryParams{
				BaseURL: "txt.com",
				QueryParams: urlquery.Query{
					"a": "1", "b": "string", "c": "true",
					"number": 1, "text": "string", "boolean": true,
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newFlat().Update(tt.url, tt.query, tt.opts...)
			require.NoError(t, err)
			testutil.AssertURLEqual(t, got, tt.expected, "Update")
		})
	}
}

func TestUpdateDecomposed_DoesNotReparse(t *testing.T) {
	mock := testutil.NewMockCodec(urlquery.Query{"never": "used"}, "")
	u := urlquery.URLWithQueryParams{BaseURL: "txt.com/edit?ignored", QueryParams: urlquery.Query{"page": "1"}}

	got, err := urlquery.New(mock).UpdateDecomposed(u, urlquery.Query{"color": "black"})
	require.NoError(t, err)

	testutil.AssertMockCalled(t, len(mock.ParseCalls), 0, "Parse")
	testutil.AssertURLEqual(t, got, urlquery.URLWithQueryParams{
		BaseURL:     "txt.com/edit?ignored",
		QueryParams: urlquery.Query{"page": "1", "color": "black"},
	}, "UpdateDecomposed")
}

func TestUpdate_MergeErrorPropagates(t *testing.T) {
	sentinel := testutil.NewMockError("shapes differ")
	_, err := newFlat(urlquery.WithMergeQuery(testutil.FailingMerge(sentinel))).
		Update("a.com?x=1", urlquery.Query{"x": 2})
	assert.Same(t, sentinel, err)
}

func TestUpdate_ThenStringify(t *testing.T) {
	inst := urlquery.New(codec.Brackets{})

	updated, err := inst.Update("shop.com/list?"+testutil.NestedQuery, urlquery.Query{
		"filter": map[string]any{"size": []any{"l"}},
		"page":   3,
	})
	require.NoError(t, err)

	got, err := inst.Stringify(updated.BaseURL, updated.QueryParams)
	require.NoError(t, err)
	assert.Equal(t, "shop.com/list?filter[color]=red&filter[size][]=l&filter[size][]=m&page=3", got)
}

func TestOptions_CallOverridesInstance(t *testing.T) {
	inst := newFlat(urlquery.WithBaseURLOptions(urlquery.BaseURLOptions{RemoveTrailingSlash: true}))
	assert.True(t, inst.BaseURLOptions().RemoveTrailingSlash)

	got, err := inst.Stringify("a.com/", urlquery.Query{"x": 1})
	require.NoError(t, err)
	assert.Equal(t, "a.com?x=1", got)

	got, err = inst.Stringify("a.com/", urlquery.Query{"x": 1}, urlquery.RemoveTrailingSlash(false))
	require.NoError(t, err)
	assert.Equal(t, "a.com/?x=1", got)

	// The override does not leak into later calls.
	got, err = inst.Stringify("a.com/", urlquery.Query{"x": 1})
	require.NoError(t, err)
	assert.Equal(t, "a.com?x=1", got)
}

func TestOptions_LastWriteWins(t *testing.T) {
	first := testutil.NewMockCodec(nil, "first=1")
	second := testutil.NewMockCodec(nil, "second=1")

	got, err := urlquery.New(first).Stringify("a.com", urlquery.Query{"x": 1},
		urlquery.WithCodec(second),
		urlquery.WithStringify(first.Stringify),
	)
	require.NoError(t, err)
	assert.Equal(t, "a.com?first=1", got)
	testutil.AssertMockCalled(t, len(second.StringifyCalls), 0, "second.Stringify")
}

func TestRoundTrip(t *testing.T) {
	inst := urlquery.New(codec.NewBrackets())
	queries := []urlquery.Query{
		testutil.LiteralsString(),
		testutil.Nested(),
		{"q": "a b&c=d?", "list": []any{"x", "y z"}},
	}

	for _, q := range queries {
		u, err := inst.Stringify("https://example.com/search", q)
		require.NoError(t, err)

		parsed, err := inst.Parse(u)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/search", parsed.BaseURL)
		testutil.AssertQueryEqual(t, parsed.QueryParams, q, "round trip of "+u)
	}
}

func TestInstance_Logs(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)

	_, err := newFlat(urlquery.WithLogger(log)).Parse("a.com?x=1")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"operation":"parse"`)
	assert.Contains(t, buf.String(), `"base_url":"a.com"`)
}

func TestInstance_ConcurrentUse(t *testing.T) {
	inst := newFlat()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := inst.Update("a.com?page=1", urlquery.Query{"color": "red"})
			assert.NoError(t, err)
			assert.Equal(t, "1", got.QueryParams["page"])
			assert.Equal(t, "red", got.QueryParams["color"])
		}()
	}
	wg.Wait()
}
