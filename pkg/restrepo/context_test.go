package restrepo_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/restrepo/pkg/restrepo"
)

func TestParams_SetKeepsPosition(t *testing.T) {
	t.Parallel()

	params := restrepo.P("status", "active", "page", 1)
	params.Set("status", "archived")
	params.Set("ordering", "-created")

	assert.Equal(t, []string{"status", "page", "ordering"}, params.Keys())

	value, ok := params.Get("status")
	require.True(t, ok)
	assert.Equal(t, "archived", value)
}

func TestParams_Delete(t *testing.T) {
	t.Parallel()

	params := restrepo.P("a", 1, "b", 2, "c", 3)
	params.Delete("b")
	params.Delete("missing")

	assert.Equal(t, []string{"a", "c"}, params.Keys())
	assert.False(t, params.Has("b"))
	assert.Equal(t, 2, params.Len())
}

func TestParams_HasNilValue(t *testing.T) {
	t.Parallel()

	params := restrepo.P("cursor", nil)

	assert.True(t, params.Has("cursor"))
	assert.Equal(t, "", params.Encode())
}

func TestParams_P(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { restrepo.P("odd") })
	assert.Panics(t, func() { restrepo.P(1, "value") })
	assert.NotNil(t, restrepo.P())
}

func TestParams_Encode(t *testing.T) {
	t.Parallel()

	stamp := time.Date(2023, 2, 11, 14, 52, 14, 565000000, time.FixedZone("CET", 3600))

	tests := []struct {
		name     string
		params   restrepo.Params
		expected string
	}{
		{
			name:     "empty",
			params:   nil,
			expected: "",
		},
		{
			name:     "insertion order",
			params:   restrepo.P("z", "last", "a", "first"),
			expected: "z=last&a=first",
		},
		{
			name:     "scalars",
			params:   restrepo.P("page", 2, "active", true, "ratio", 0.5),
			expected: "page=2&active=true&ratio=0.5",
		},
		{
			name:     "escaping",
			params:   restrepo.P("search", "a b&c", "email", "x@y.z"),
			expected: "search=a+b%26c&email=x%40y.z",
		},
		{
			name:     "repeated slice values",
			params:   restrepo.P("id", []int{1, 2}, "tag", []string{"x"}),
			expected: "id=1&id=2&tag=x",
		},
		{
			name:     "nil skipped",
			params:   restrepo.P("a", nil, "b", "1"),
			expected: "b=1",
		},
		{
			name:     "time",
			params:   restrepo.P("since", stamp),
			expected: "since=2023-02-11T13%3A52%3A14.565Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, tt.params.Encode())
		})
	}
}

func TestBuildContext_Empty(t *testing.T) {
	t.Parallel()

	rc := restrepo.BuildContext()

	assert.NotNil(t, rc.URLParams)
	assert.NotNil(t, rc.QueryParams)
	assert.NotNil(t, rc.Pagination)
	assert.Nil(t, rc.Data)
	assert.Equal(t, 0, rc.URLParams.Len())
}

func TestBuildContext_LaterWinsPerKey(t *testing.T) {
	t.Parallel()

	rc := restrepo.BuildContext(
		restrepo.RequestContext{
			URLParams:   restrepo.P("pk", 1),
			QueryParams: restrepo.P("status", "active", "ordering", "name"),
			Pagination:  restrepo.P("page", 1),
			Data:        map[string]any{"name": "a"},
		},
		restrepo.RequestContext{
			QueryParams: restrepo.P("status", "archived"),
			Pagination:  restrepo.P("pageSize", 10),
		},
		restrepo.RequestContext{
			URLParams: restrepo.P("pk", 2),
			Data:      map[string]any{"name": "b"},
		},
	)

	pk, ok := rc.PK()
	require.True(t, ok)
	assert.Equal(t, 2, pk)
	assert.Equal(t, "status=archived&ordering=name", rc.QueryParams.Encode())
	assert.Equal(t, map[string]any{"page": 1, "pageSize": 10}, rc.Pagination.Map())
	assert.Equal(t, map[string]any{"name": "b"}, rc.Data)
}

func TestBuildContext_NilDataDoesNotReplace(t *testing.T) {
	t.Parallel()

	rc := restrepo.BuildContext(restrepo.WithData("payload"), restrepo.WithQuery("a", 1))

	assert.Equal(t, "payload", rc.Data)
}

func TestBuildContext_DoesNotMutateInputs(t *testing.T) {
	t.Parallel()

	first := restrepo.WithQuery("a", 1)
	second := restrepo.WithQuery("a", 2, "b", 3)

	rc := restrepo.BuildContext(first, second)
	rc.QueryParams.Set("c", 4)

	assert.Equal(t, "a=1", first.QueryParams.Encode())
	assert.Equal(t, "a=2&b=3", second.QueryParams.Encode())
	assert.Equal(t, "a=2&b=3&c=4", rc.QueryParams.Encode())
}

func TestRequestContext_PK(t *testing.T) {
	t.Parallel()

	_, ok := restrepo.BuildContext().PK()
	assert.False(t, ok)

	pk, ok := restrepo.BuildContext(restrepo.WithPK(0)).PK()
	assert.True(t, ok)
	assert.Equal(t, 0, pk)

	_, ok = restrepo.BuildContext(restrepo.WithPK(nil)).PK()
	assert.False(t, ok)
}

func TestWithPage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, map[string]any{"page": 3}, restrepo.WithPage(3, 0).Pagination.Map())
	assert.Equal(t, map[string]any{"page": 3, "pageSize": 25}, restrepo.WithPage(3, 25).Pagination.Map())
}
