package restrepo_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/fivetwenty-io/restrepo/pkg/restrepo"
)

// MockHTTPClient implements restrepo.HTTPClient for testing.
type MockHTTPClient struct {
	mock.Mock
}

func (m *MockHTTPClient) response(args mock.Arguments) (*restrepo.Response, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*restrepo.Response), args.Error(1)
}

func (m *MockHTTPClient) Get(ctx context.Context, url string) (*restrepo.Response, error) {
	return m.response(m.Called(ctx, url))
}

func (m *MockHTTPClient) Post(ctx context.Context, url string, body any) (*restrepo.Response, error) {
	return m.response(m.Called(ctx, url, body))
}

func (m *MockHTTPClient) Patch(ctx context.Context, url string, body any) (*restrepo.Response, error) {
	return m.response(m.Called(ctx, url, body))
}

func (m *MockHTTPClient) Delete(ctx context.Context, url string) (*restrepo.Response, error) {
	return m.response(m.Called(ctx, url))
}

func jsonResponse(body string) *restrepo.Response {
	return &restrepo.Response{StatusCode: 200, Body: []byte(body)}
}

// MockLogger for testing.
type MockLogger struct {
	logs []map[string]interface{}
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "debug", "msg": msg, "fields": fields})
}

func (l *MockLogger) Info(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "info", "msg": msg, "fields": fields})
}

func (l *MockLogger) Warn(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "warn", "msg": msg, "fields": fields})
}

func (l *MockLogger) Error(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "error", "msg": msg, "fields": fields})
}
