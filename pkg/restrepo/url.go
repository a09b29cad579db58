package restrepo

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// RootFunc returns the path prefix of a resource collection, e.g. "/users".
// It is evaluated on every URL build, so roots may depend on runtime state.
type RootFunc func() string

// Root returns a RootFunc for a fixed path.
func Root(path string) RootFunc {
	return func() string { return path }
}

// URLOption configures a URLBuilder.
type URLOption func(*URLBuilder)

// WithTrailingSlash sets whether query-less list and detail URLs end in "/".
// It defaults to true.
func WithTrailingSlash(appendSlash bool) URLOption {
	return func(b *URLBuilder) {
		b.appendSlash = appendSlash
	}
}

// URLBuilder is the single place list and detail URLs are built.
type URLBuilder struct {
	root        RootFunc
	appendSlash bool
}

// NewURLBuilder creates a URLBuilder for the given root.
func NewURLBuilder(root RootFunc, opts ...URLOption) (*URLBuilder, error) {
	if root == nil {
		return nil, ErrRootRequired
	}

	builder := &URLBuilder{
		root:        root,
		appendSlash: true,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder, nil
}

// AppendSlash reports the trailing slash policy.
func (b *URLBuilder) AppendSlash() bool {
	return b.appendSlash
}

func (b *URLBuilder) base() string {
	return strings.TrimSuffix(b.root(), "/")
}

func (b *URLBuilder) tail() string {
	if b.appendSlash {
		return "/"
	}

	return ""
}

// List returns the collection URL used by list and create.
func (b *URLBuilder) List(query Params) string {
	base := b.base()

	if qs := query.Encode(); qs != "" {
		return base + "/?" + qs
	}

	return base + b.tail()
}

// Detail returns the URL of the entity identified by pk.
func (b *URLBuilder) Detail(pk PK, query Params) (string, error) {
	segment, err := FormatPK(pk)
	if err != nil {
		return "", err
	}

	base := b.base() + "/" + url.PathEscape(segment)

	if qs := query.Encode(); qs != "" {
		return base + "/?" + qs, nil
	}

	return base + b.tail(), nil
}

// maxExactFloatInt bounds the integers a float64 holds exactly.
const maxExactFloatInt = 1 << 53

// FormatPK renders a primary key as a path segment. Nil and empty strings
// count as missing; zero is a valid key.
func FormatPK(pk PK) (string, error) {
	switch v := pk.(type) {
	case nil:
		return "", ErrMissingPK
	case string:
		if v == "" {
			return "", ErrMissingPK
		}

		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", v), nil
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v), nil
	case float64:
		// JSON numbers decode as float64; accept them when integral.
		if math.Abs(v) < maxExactFloatInt && v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10), nil
		}
	case fmt.Stringer:
		if s := v.String(); s != "" {
			return s, nil
		}

		return "", ErrMissingPK
	}

	return "", fmt.Errorf("%w: got %T", ErrInvalidPK, pk)
}
