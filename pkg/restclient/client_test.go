package restclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fivetwenty-io/restrepo/pkg/restclient"
	"github.com/fivetwenty-io/restrepo/pkg/restrepo"
)

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := restclient.New(nil)
	require.ErrorIs(t, err, restrepo.ErrConfigRequired)

	_, err = restclient.New(&restrepo.Config{})
	require.ErrorIs(t, err, restrepo.ErrBaseURLRequired)
}

func TestNew_EndToEnd(t *testing.T) {
	t.Parallel()

	var unauthorized atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "Token secret", request.Header.Get("Authorization"))
		assert.Equal(t, "acme", request.Header.Get("X-Tenant"))

		switch request.URL.Path {
		case "/api/users/1/":
			_, _ = writer.Write([]byte(`{"id": 1, "name": "anton"}`))
		case "/api/users/":
			assert.Equal(t, "page=1&page_size=2", request.URL.RawQuery)
			_, _ = writer.Write([]byte(`{"count": 1, "next": null, "previous": null, "results": [{"id": 1, "name": "anton"}]}`))
		default:
			writer.WriteHeader(http.StatusUnauthorized)
			_, _ = writer.Write([]byte(`{"detail": "Invalid token."}`))
		}
	}))
	defer server.Close()

	client, err := restclient.New(&restrepo.Config{
		BaseURL:        server.URL + "/api/",
		Token:          "secret",
		Headers:        map[string]string{"X-Tenant": "acme"},
		RetryMax:       restrepo.Retries(1),
		RetryWaitMin:   time.Millisecond,
		RetryWaitMax:   time.Millisecond,
		OnUnauthorized: func(context.Context) { unauthorized.Add(1) },
		Metrics:        prometheus.NewRegistry(),
	})
	require.NoError(t, err)

	api, err := restrepo.NewResourceAPI(client, restrepo.Root("/users"),
		restrepo.WithPagination(restrepo.NewPageNumberPagination(restrepo.PageNumberOptions{PageSize: 2})))
	require.NoError(t, err)

	repo, err := restrepo.NewRepository[restrepo.DTO](api, passthrough{})
	require.NoError(t, err)

	ctx := context.Background()

	user, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "anton", user["name"])

	users, meta, err := repo.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	count, ok := meta.Count()
	require.True(t, ok)
	assert.Equal(t, 1, count)

	badAPI, err := restrepo.NewResourceAPI(client, restrepo.Root("/admin"))
	require.NoError(t, err)

	_, err = badAPI.Get(ctx, restrepo.BuildContext(restrepo.WithPK(1)))
	require.Error(t, err)
	assert.True(t, restrepo.IsUnauthorized(err))
	assert.Contains(t, err.Error(), "Invalid token.")
	assert.Equal(t, int32(1), unauthorized.Load())
}

func TestNew_Metrics(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_, _ = writer.Write([]byte(`[]`))
	}))
	defer server.Close()

	reg := prometheus.NewRegistry()
	client, err := restclient.New(&restrepo.Config{BaseURL: server.URL, Metrics: reg})
	require.NoError(t, err)

	_, err = client.Get(context.Background(), "/things/")
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "restrepo_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNew_RetryMax(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		retryMax *int
		wantHits int32
	}{
		{name: "zero disables retries", retryMax: restrepo.Retries(0), wantHits: 1},
		{name: "explicit count", retryMax: restrepo.Retries(2), wantHits: 3},
		{name: "nil keeps the default", retryMax: nil, wantHits: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var hits atomic.Int32

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				hits.Add(1)
				writer.WriteHeader(http.StatusServiceUnavailable)
			}))
			defer server.Close()

			client, err := restclient.New(&restrepo.Config{
				BaseURL:      server.URL,
				RetryMax:     tt.retryMax,
				RetryWaitMin: time.Millisecond,
				RetryWaitMax: time.Millisecond,
			})
			require.NoError(t, err)

			_, err = client.Get(context.Background(), "/things/")
			require.Error(t, err)
			assert.True(t, restrepo.IsStatus(err, http.StatusServiceUnavailable))
			assert.Equal(t, tt.wantHits, hits.Load())
		})
	}
}

func TestNewWithToken(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "Token abc", request.Header.Get("Authorization"))
		writer.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client, err := restclient.NewWithToken(server.URL, "abc")
	require.NoError(t, err)

	resp, err := client.Delete(context.Background(), "/things/1/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	anonymous, err := restclient.NewWithEndpoint(server.URL)
	require.NoError(t, err)
	assert.NotNil(t, anonymous)
}

func TestZapLogger(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	logger := restclient.NewZapLogger(zap.New(core))

	logger.Debug("resource request", map[string]interface{}{"method": "GET", "url": "/users/"})
	logger.Info("info", nil)
	logger.Warn("unmapped field skipped", map[string]interface{}{"key": "zip"})
	logger.Error("boom", map[string]interface{}{"error": "x"})

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, map[string]interface{}{"method": "GET", "url": "/users/"}, entries[0].ContextMap())
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, "boom", entries[3].Message)

	assert.NotPanics(t, func() { restclient.NewZapLogger(nil).Info("dropped", nil) })
}

type passthrough struct{}

func (passthrough) FromDTO(dto restrepo.DTO) (restrepo.DTO, error) { return dto, nil }
func (passthrough) ToDTO(dto restrepo.DTO) (restrepo.DTO, error)   { return dto, nil }
