package restrepo

import (
	"fmt"

	"github.com/spf13/cast"

	"github.com/fivetwenty-io/restrepo/internal/coerce"
	"github.com/fivetwenty-io/restrepo/internal/constants"
)

// Pagination rewrites outgoing list requests and reshapes list responses.
// BuildContext must be total; strategies without anything to add return the
// context unchanged.
type Pagination interface {
	BuildContext(rc RequestContext) RequestContext
	Cast(body any) (Page, error)
}

// Page is one list response: the raw items plus whatever metadata the
// strategy extracted (e.g. "count").
type Page struct {
	Items []DTO
	Meta  Meta
}

// Meta is the residual pagination metadata of a Page.
type Meta map[string]any

// Count returns the total number of results reported by the server.
func (m Meta) Count() (int, bool) {
	v, ok := m["count"]
	if !ok || v == nil {
		return 0, false
	}

	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, false
	}

	return n, true
}

// Next returns the URL of the next page, or "" on the last page.
func (m Meta) Next() string {
	s, _ := m["next"].(string)

	return s
}

// Previous returns the URL of the previous page, or "" on the first page.
func (m Meta) Previous() string {
	s, _ := m["previous"].(string)

	return s
}

func toItems(raw any) ([]DTO, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a JSON array, got %T", ErrUnexpectedPayload, raw)
	}

	items := make([]DTO, 0, len(list))

	for i, entry := range list {
		item, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: item %d is %T, not an object", ErrUnexpectedPayload, i, entry)
		}

		items = append(items, item)
	}

	return items, nil
}

// castResults handles the {"count": n, "results": [...]} envelope shared by
// DRF's page number and limit/offset paginators.
func castResults(body any) (Page, error) {
	envelope, ok := body.(map[string]any)
	if !ok {
		return Page{}, fmt.Errorf("%w: expected a paginated object, got %T", ErrUnexpectedPayload, body)
	}

	results, ok := envelope["results"]
	if !ok {
		return Page{}, fmt.Errorf("%w: missing \"results\"", ErrUnexpectedPayload)
	}

	items, err := toItems(results)
	if err != nil {
		return Page{}, err
	}

	meta := Meta{}

	if count, ok := envelope["count"]; ok {
		n, err := cast.ToIntE(count)
		if err != nil {
			return Page{}, fmt.Errorf("%w: bad \"count\": %w", ErrUnexpectedPayload, err)
		}

		meta["count"] = n
	}

	for _, key := range []string{"next", "previous"} {
		if link, ok := envelope[key]; ok {
			meta[key] = link
		}
	}

	return Page{Items: items, Meta: meta}, nil
}

func requestedPage(rc RequestContext) int {
	if v, ok := rc.Pagination.Get(PageParam); ok {
		if page, err := cast.ToIntE(v); err == nil && page >= 1 {
			return page
		}
	}

	return 1
}

func requestedPageSize(rc RequestContext, fallback int) int {
	if v, ok := rc.Pagination.Get(PageSizeParam); ok {
		if size, err := cast.ToIntE(v); err == nil && size > 0 {
			return size
		}
	}

	return fallback
}

// NoPagination expects the list endpoint to return a bare JSON array.
type NoPagination struct{}

// BuildContext returns rc unchanged.
func (NoPagination) BuildContext(rc RequestContext) RequestContext {
	return rc
}

// Cast wraps the array into a Page with empty metadata.
func (NoPagination) Cast(body any) (Page, error) {
	items, err := toItems(body)
	if err != nil {
		return Page{}, err
	}

	return Page{Items: items, Meta: Meta{}}, nil
}

// PageNumberOptions configures PageNumberPagination.
type PageNumberOptions struct {
	PageSize           int
	PageSizeQueryParam string
	PageQueryParam     string
}

// PageNumberPagination speaks DRF's PageNumberPagination: ?page=N&page_size=M
// out, {"count": n, "results": [...]} back.
type PageNumberPagination struct {
	options PageNumberOptions
}

// NewPageNumberPagination fills unset options with DRF defaults.
func NewPageNumberPagination(opts PageNumberOptions) *PageNumberPagination {
	if opts.PageSize <= 0 {
		opts.PageSize = constants.DefaultPageSize
	}

	if opts.PageSizeQueryParam == "" {
		opts.PageSizeQueryParam = constants.DefaultPageSizeQueryParam
	}

	if opts.PageQueryParam == "" {
		opts.PageQueryParam = constants.DefaultPageQueryParam
	}

	return &PageNumberPagination{options: opts}
}

// Options returns the effective configuration.
func (p *PageNumberPagination) Options() PageNumberOptions {
	return p.options
}

// BuildContext writes the page and page size query parameters. The page
// always comes from rc.Pagination; the page size prefers a value already in
// the query, then rc.Pagination, then the configured default.
func (p *PageNumberPagination) BuildContext(rc RequestContext) RequestContext {
	page := requestedPage(rc)

	var size any = requestedPageSize(rc, p.options.PageSize)
	if v, ok := rc.QueryParams.Get(p.options.PageSizeQueryParam); ok && coerce.Truthy(v) {
		size = v
	}

	out := rc
	out.QueryParams = rc.QueryParams.Clone()
	out.QueryParams.Set(p.options.PageQueryParam, page)
	out.QueryParams.Set(p.options.PageSizeQueryParam, size)

	return out
}

// Cast unpacks the {"count", "results"} envelope.
func (p *PageNumberPagination) Cast(body any) (Page, error) {
	return castResults(body)
}

// LimitOffsetOptions configures LimitOffsetPagination.
type LimitOffsetOptions struct {
	Limit            int
	LimitQueryParam  string
	OffsetQueryParam string
}

// LimitOffsetPagination speaks DRF's LimitOffsetPagination. Callers still
// ask for page numbers; the offset is derived as (page-1)*limit.
type LimitOffsetPagination struct {
	options LimitOffsetOptions
}

// NewLimitOffsetPagination fills unset options with DRF defaults.
func NewLimitOffsetPagination(opts LimitOffsetOptions) *LimitOffsetPagination {
	if opts.Limit <= 0 {
		opts.Limit = constants.DefaultPageSize
	}

	if opts.LimitQueryParam == "" {
		opts.LimitQueryParam = constants.DefaultLimitQueryParam
	}

	if opts.OffsetQueryParam == "" {
		opts.OffsetQueryParam = constants.DefaultOffsetQueryParam
	}

	return &LimitOffsetPagination{options: opts}
}

// BuildContext writes the limit and offset query parameters.
func (p *LimitOffsetPagination) BuildContext(rc RequestContext) RequestContext {
	page := requestedPage(rc)
	limit := requestedPageSize(rc, p.options.Limit)

	if v, ok := rc.QueryParams.Get(p.options.LimitQueryParam); ok && coerce.Truthy(v) {
		if n, err := cast.ToIntE(v); err == nil && n > 0 {
			limit = n
		}
	}

	out := rc
	out.QueryParams = rc.QueryParams.Clone()
	out.QueryParams.Set(p.options.LimitQueryParam, limit)
	out.QueryParams.Set(p.options.OffsetQueryParam, (page-1)*limit)

	return out
}

// Cast unpacks the {"count", "results"} envelope.
func (p *LimitOffsetPagination) Cast(body any) (Page, error) {
	return castResults(body)
}
