package restrepo

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Well-known keys inside a RequestContext.
const (
	// PKParam holds the primary key in URLParams.
	PKParam = "pk"
	// PageParam holds the requested page number in Pagination.
	PageParam = "page"
	// PageSizeParam holds a per-call page size in Pagination.
	PageSizeParam = "pageSize"
)

// Param is a single key/value entry of Params.
type Param struct {
	Key   string
	Value any
}

// Params is an insertion ordered map. Overwriting a key keeps its original
// position, so query strings come out in the order keys were first set.
type Params []Param

// P builds Params from alternating keys and values. It panics on an odd
// number of arguments or a non-string key.
func P(kv ...any) Params {
	if len(kv)%2 != 0 {
		panic("restrepo.P: odd argument count")
	}

	params := make(Params, 0, len(kv)/2)

	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("restrepo.P: key %v is not a string", kv[i]))
		}

		params.Set(key, kv[i+1])
	}

	return params
}

func (p Params) index(key string) int {
	for i := range p {
		if p[i].Key == key {
			return i
		}
	}

	return -1
}

// Get returns the value stored under key.
func (p Params) Get(key string) (any, bool) {
	if i := p.index(key); i >= 0 {
		return p[i].Value, true
	}

	return nil, false
}

// Has reports whether key is present, even with a nil value.
func (p Params) Has(key string) bool {
	return p.index(key) >= 0
}

// Set stores value under key.
func (p *Params) Set(key string, value any) {
	if i := p.index(key); i >= 0 {
		(*p)[i].Value = value

		return
	}

	*p = append(*p, Param{Key: key, Value: value})
}

// Delete removes key.
func (p *Params) Delete(key string) {
	if i := p.index(key); i >= 0 {
		*p = append((*p)[:i], (*p)[i+1:]...)
	}
}

// Len returns the number of entries.
func (p Params) Len() int {
	return len(p)
}

// Keys returns the keys in insertion order.
func (p Params) Keys() []string {
	keys := make([]string, len(p))
	for i := range p {
		keys[i] = p[i].Key
	}

	return keys
}

// Clone returns a non-nil copy of p.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	copy(out, p)

	return out
}

// Merge returns a copy of p with every entry of others applied in order.
func (p Params) Merge(others ...Params) Params {
	out := p.Clone()

	for _, other := range others {
		for _, entry := range other {
			out.Set(entry.Key, entry.Value)
		}
	}

	return out
}

// Map returns the entries as a plain map.
func (p Params) Map() map[string]any {
	out := make(map[string]any, len(p))
	for _, entry := range p {
		out[entry.Key] = entry.Value
	}

	return out
}

// Encode renders p as a form encoded query string in insertion order.
// Nil values are skipped and slices produce one pair per element.
func (p Params) Encode() string {
	var buf strings.Builder

	write := func(key string, value any) {
		if value == nil {
			return
		}

		if buf.Len() > 0 {
			buf.WriteByte('&')
		}

		buf.WriteString(url.QueryEscape(key))
		buf.WriteByte('=')
		buf.WriteString(url.QueryEscape(stringify(value)))
	}

	for _, entry := range p {
		rv := reflect.ValueOf(entry.Value)
		if entry.Value != nil && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Type().Elem().Kind() != reflect.Uint8 {
			for i := range rv.Len() {
				write(entry.Key, rv.Index(i).Interface())
			}

			continue
		}

		write(entry.Key, entry.Value)
	}

	return buf.String()
}

func stringify(value any) string {
	switch v := value.(type) {
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return v.String()
	}

	s, err := cast.ToStringE(value)
	if err != nil {
		return fmt.Sprint(value)
	}

	return s
}

// RequestContext is the value threaded through every repository and API
// call. It is built fresh per call by BuildContext.
type RequestContext struct {
	URLParams   Params
	QueryParams Params
	Pagination  Params
	Data        any
}

// BuildContext merges partial contexts onto an empty one. Later partials win
// per key inside URLParams, QueryParams and Pagination; Data is replaced by
// any later non-nil Data. The inputs are never modified or aliased.
func BuildContext(partials ...RequestContext) RequestContext {
	rc := RequestContext{
		URLParams:   Params{},
		QueryParams: Params{},
		Pagination:  Params{},
	}

	for _, partial := range partials {
		rc.URLParams = rc.URLParams.Merge(partial.URLParams)
		rc.QueryParams = rc.QueryParams.Merge(partial.QueryParams)
		rc.Pagination = rc.Pagination.Merge(partial.Pagination)

		if partial.Data != nil {
			rc.Data = partial.Data
		}
	}

	return rc
}

// PK returns the primary key stored in URLParams.
func (rc RequestContext) PK() (PK, bool) {
	pk, ok := rc.URLParams.Get(PKParam)
	if !ok || pk == nil {
		return nil, false
	}

	return pk, true
}

// WithPK is a partial context carrying a primary key.
func WithPK(pk PK) RequestContext {
	return RequestContext{URLParams: P(PKParam, pk)}
}

// WithQuery is a partial context carrying query parameters.
func WithQuery(kv ...any) RequestContext {
	return RequestContext{QueryParams: P(kv...)}
}

// WithPage is a partial context selecting a page and, when size > 0, a page size.
func WithPage(page, size int) RequestContext {
	pagination := P(PageParam, page)
	if size > 0 {
		pagination.Set(PageSizeParam, size)
	}

	return RequestContext{Pagination: pagination}
}

// WithData is a partial context carrying an outgoing payload.
func WithData(data any) RequestContext {
	return RequestContext{Data: data}
}
