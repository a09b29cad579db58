package restrepo

import (
	"context"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
)

// APIOption configures a ResourceAPI.
type APIOption func(*apiOptions)

type apiOptions struct {
	appendSlash bool
	pagination  Pagination
	logger      Logger
}

// WithAppendSlash sets the trailing slash policy of generated URLs.
func WithAppendSlash(appendSlash bool) APIOption {
	return func(o *apiOptions) {
		o.appendSlash = appendSlash
	}
}

// WithPagination sets the list pagination strategy. Defaults to NoPagination.
func WithPagination(p Pagination) APIOption {
	return func(o *apiOptions) {
		if p != nil {
			o.pagination = p
		}
	}
}

// WithAPILogger sets the logger for per-call debug logging.
func WithAPILogger(logger Logger) APIOption {
	return func(o *apiOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// ResourceAPI turns request contexts into exactly one HTTP call against a
// resource root and decodes the JSON reply.
type ResourceAPI struct {
	client     HTTPClient
	urls       *URLBuilder
	pagination Pagination
	logger     Logger
}

// NewResourceAPI creates a ResourceAPI for the collection at root.
func NewResourceAPI(client HTTPClient, root RootFunc, opts ...APIOption) (*ResourceAPI, error) {
	if client == nil {
		return nil, ErrClientRequired
	}

	options := apiOptions{
		appendSlash: true,
		pagination:  NoPagination{},
		logger:      NopLogger{},
	}

	for _, opt := range opts {
		opt(&options)
	}

	urls, err := NewURLBuilder(root, WithTrailingSlash(options.appendSlash))
	if err != nil {
		return nil, err
	}

	return &ResourceAPI{
		client:     client,
		urls:       urls,
		pagination: options.pagination,
		logger:     options.logger,
	}, nil
}

// URLs returns the builder used for every request.
func (a *ResourceAPI) URLs() *URLBuilder {
	return a.urls
}

// Pagination returns the list pagination strategy.
func (a *ResourceAPI) Pagination() Pagination {
	return a.pagination
}

func (a *ResourceAPI) detailURL(rc RequestContext) (string, error) {
	pk, ok := rc.PK()
	if !ok {
		return "", ErrMissingPK
	}

	return a.urls.Detail(pk, rc.QueryParams)
}

func (a *ResourceAPI) trace(method, url string) {
	a.logger.Debug("resource request", map[string]interface{}{
		"method": method,
		"url":    url,
	})
}

// Get fetches the entity identified by the context's pk.
func (a *ResourceAPI) Get(ctx context.Context, rc RequestContext) (DTO, error) {
	url, err := a.detailURL(rc)
	if err != nil {
		return nil, err
	}

	a.trace(http.MethodGet, url)

	resp, err := a.client.Get(ctx, url)
	if err != nil {
		return nil, err
	}

	return decodeObject(resp)
}

// Create posts the context's data to the collection URL.
func (a *ResourceAPI) Create(ctx context.Context, rc RequestContext) (DTO, error) {
	url := a.urls.List(rc.QueryParams)

	a.trace(http.MethodPost, url)

	resp, err := a.client.Post(ctx, url, rc.Data)
	if err != nil {
		return nil, err
	}

	return decodeObject(resp)
}

// Update patches the entity identified by the context's pk with its data.
func (a *ResourceAPI) Update(ctx context.Context, rc RequestContext) (DTO, error) {
	url, err := a.detailURL(rc)
	if err != nil {
		return nil, err
	}

	a.trace(http.MethodPatch, url)

	resp, err := a.client.Patch(ctx, url, rc.Data)
	if err != nil {
		return nil, err
	}

	return decodeObject(resp)
}

// Delete removes the entity identified by the context's pk.
func (a *ResourceAPI) Delete(ctx context.Context, rc RequestContext) error {
	url, err := a.detailURL(rc)
	if err != nil {
		return err
	}

	a.trace(http.MethodDelete, url)

	_, err = a.client.Delete(ctx, url)

	return err
}

// List lets the pagination strategy rewrite the context, fetches the
// collection and hands the decoded body back to the strategy.
func (a *ResourceAPI) List(ctx context.Context, rc RequestContext) (Page, error) {
	rc = a.pagination.BuildContext(rc)
	url := a.urls.List(rc.QueryParams)

	a.trace(http.MethodGet, url)

	resp, err := a.client.Get(ctx, url)
	if err != nil {
		return Page{}, err
	}

	body, err := decode(resp)
	if err != nil {
		return Page{}, err
	}

	return a.pagination.Cast(body)
}

func decode(resp *Response) (any, error) {
	if resp == nil || len(resp.Body) == 0 {
		return nil, nil
	}

	var body any

	err := json.Unmarshal(resp.Body, &body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnexpectedPayload, err)
	}

	return body, nil
}

// decodeObject accepts an empty body (204) as an empty DTO.
func decodeObject(resp *Response) (DTO, error) {
	body, err := decode(resp)
	if err != nil {
		return nil, err
	}

	if body == nil {
		return DTO{}, nil
	}

	dto, ok := body.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a JSON object, got %T", ErrUnexpectedPayload, body)
	}

	return dto, nil
}
