package urlquery

import (
	"strings"

	"github.com/rs/zerolog"
)

// settings is the resolved configuration for one operation. Instance
// defaults are copied and then overridden field by field by per-call
// options, last write wins.
type settings struct {
	removeTrailingSlash bool
	parse               ParseFunc
	stringify           StringifyFunc
	merge               MergeFunc
	logger              zerolog.Logger
}

// Option configures an Instance when passed to New, or a single operation
// when passed to Parse, Stringify or Update.
type Option func(*settings)

// RemoveTrailingSlash sets whether a single trailing '/' is stripped from the
// base URL.
func RemoveTrailingSlash(remove bool) Option {
	return func(s *settings) {
		s.removeTrailingSlash = remove
	}
}

// WithBaseURLOptions applies every field of opts.
func WithBaseURLOptions(opts BaseURLOptions) Option {
	return func(s *settings) {
		s.removeTrailingSlash = opts.RemoveTrailingSlash
	}
}

// WithParse replaces the codec's Parse.
func WithParse(fn ParseFunc) Option {
	return func(s *settings) {
		if fn != nil {
			s.parse = fn
		}
	}
}

// WithStringify replaces the codec's Stringify.
func WithStringify(fn StringifyFunc) Option {
	return func(s *settings) {
		if fn != nil {
			s.stringify = fn
		}
	}
}

// WithCodec replaces both halves of the codec.
func WithCodec(c Codec) Option {
	return func(s *settings) {
		if c != nil {
			s.parse = c.Parse
			s.stringify = c.Stringify
		}
	}
}

// WithMergeQuery replaces the merge policy used by Update.
func WithMergeQuery(fn MergeFunc) Option {
	return func(s *settings) {
		if fn != nil {
			s.merge = fn
		}
	}
}

// WithLogger sets the logger that receives debug events for each operation.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// Instance binds a Codec to the URL policies of this package. It holds only
// configuration fixed at construction and is safe for concurrent use.
type Instance struct {
	defaults settings
}

// New returns an Instance that parses and stringifies queries with codec.
// It panics if codec is nil.
func New(codec Codec, opts ...Option) *Instance {
	if codec == nil {
		panic("urlquery: nil codec")
	}

	s := settings{
		parse:     codec.Parse,
		stringify: codec.Stringify,
		merge:     DeepMerge,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return &Instance{defaults: s}
}

// BaseURLOptions returns the instance-level base URL options.
func (i *Instance) BaseURLOptions() BaseURLOptions {
	return BaseURLOptions{RemoveTrailingSlash: i.defaults.removeTrailingSlash}
}

func (i *Instance) resolve(opts []Option) settings {
	s := i.defaults
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (s settings) baseURLOptions() BaseURLOptions {
	return BaseURLOptions{RemoveTrailingSlash: s.removeTrailingSlash}
}

// Parse splits rawURL and decodes its query. A URL without a query yields an
// empty Query and the codec is not called.
func (i *Instance) Parse(rawURL string, opts ...Option) (URLWithQueryParams, error) {
	return i.resolve(opts).parseURL(rawURL)
}

func (s settings) parseURL(rawURL string) (URLWithQueryParams, error) {
	ex := ExtractQuery(rawURL, s.baseURLOptions())
	out := URLWithQueryParams{BaseURL: ex.BaseURL, QueryParams: Query{}}

	if ex.HasQuery {
		q, err := s.parse(ex.QueryString)
		if err != nil {
			return URLWithQueryParams{}, err
		}
		if q != nil {
			out.QueryParams = q
		}
	}

	s.logger.Debug().
		Str("operation", "parse").
		Str("base_url", out.BaseURL).
		Bool("has_query", ex.HasQuery).
		Int("params", len(out.QueryParams)).
		Msg("parsed url")
	return out, nil
}

// Stringify replaces whatever query rawURL carries with query. The existing
// query is discarded, never merged. When query is empty the bare base URL is
// returned with no '?'.
func (i *Instance) Stringify(rawURL string, query Query, opts ...Option) (string, error) {
	s := i.resolve(opts)
	ex := ExtractQuery(rawURL, s.baseURLOptions())

	if IsQueryEmpty(query) {
		s.logger.Debug().
			Str("operation", "stringify").
			Str("base_url", ex.BaseURL).
			Msg("query empty, returning base url")
		return ex.BaseURL, nil
	}

	encoded, err := s.stringify(query)
	if err != nil {
		return "", err
	}
	// Some codecs add the prefix themselves.
	encoded = strings.TrimPrefix(encoded, "?")
	if encoded == "" {
		return ex.BaseURL, nil
	}

	s.logger.Debug().
		Str("operation", "stringify").
		Str("base_url", ex.BaseURL).
		Int("params", len(query)).
		Msg("stringified url")
	return ex.BaseURL + "?" + encoded, nil
}

// Update parses rawURL and merges query into its parameters. The result is
// structured; pass it to Stringify to get a URL back.
func (i *Instance) Update(rawURL string, query Query, opts ...Option) (URLWithQueryParams, error) {
	s := i.resolve(opts)
	parsed, err := s.parseURL(rawURL)
	if err != nil {
		return URLWithQueryParams{}, err
	}
	return s.update(parsed, query)
}

// UpdateDecomposed merges query into an already decomposed URL without
// parsing it again.
func (i *Instance) UpdateDecomposed(u URLWithQueryParams, query Query, opts ...Option) (URLWithQueryParams, error) {
	return i.resolve(opts).update(u, query)
}

func (s settings) update(u URLWithQueryParams, query Query) (URLWithQueryParams, error) {
	old := u.QueryParams
	if old == nil {
		old = Query{}
	}

	merged, err := s.merge(old, query)
	if err != nil {
		return URLWithQueryParams{}, err
	}

	s.logger.Debug().
		Str("operation", "update").
		Str("base_url", u.BaseURL).
		Int("old_params", len(old)).
		Int("new_params", len(query)).
		Int("params", len(merged)).
		Msg("merged query")
	return URLWithQueryParams{BaseURL: u.BaseURL, QueryParams: merged}, nil
}
