package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/restrepo/pkg/restrepo"
)

func TestParseQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pairs   []string
		want    string
		wantErr bool
	}{
		{name: "empty", pairs: nil, want: ""},
		{name: "keeps order", pairs: []string{"b=2", "a=1"}, want: "b=2&a=1"},
		{name: "repeated key", pairs: []string{"id=1", "id=2"}, want: "id=1&id=2"},
		{name: "repeated three times", pairs: []string{"id=1", "page=2", "id=3", "id=4"}, want: "id=1&id=3&id=4&page=2"},
		{name: "value with equals", pairs: []string{"filter=x=y"}, want: "filter=x%3Dy"},
		{name: "empty value", pairs: []string{"flag="}, want: "flag="},
		{name: "missing equals", pairs: []string{"broken"}, wantErr: true},
		{name: "missing key", pairs: []string{"=1"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			params, err := parseQuery(tt.pairs)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidQuery)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, params.Encode())
		})
	}
}

func TestReadPayload(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	payloadFile := filepath.Join(dir, "payload.json")
	require.NoError(t, os.WriteFile(payloadFile, []byte(`{"name": "from file"}`), 0o600))

	tests := []struct {
		name    string
		stdin   string
		data    string
		file    string
		want    restrepo.Model
		wantErr error
	}{
		{name: "inline", data: `{"name": "ada"}`, want: restrepo.Model{"name": "ada"}},
		{name: "file", file: payloadFile, want: restrepo.Model{"name": "from file"}},
		{name: "stdin", file: "-", stdin: `{"n": 1}`, want: restrepo.Model{"n": float64(1)}},
		{name: "both", data: `{}`, file: payloadFile, wantErr: ErrDataConflict},
		{name: "neither", wantErr: ErrDataRequired},
		{name: "array", data: `[1, 2]`, wantErr: ErrDataNotObject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := readPayload(strings.NewReader(tt.stdin), tt.data, tt.file)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("invalid json", func(t *testing.T) {
		t.Parallel()

		_, err := readPayload(strings.NewReader(""), `{"name"`, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing payload")
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := readPayload(strings.NewReader(""), "", filepath.Join(dir, "nope.json"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading payload file")
	})
}

func TestColumnsOf(t *testing.T) {
	t.Parallel()

	items := []restrepo.Model{
		{"name": "a", "id": 1},
		{"email": "b@example.com", "id": 2},
	}

	assert.Equal(t, []string{"id", "email", "name"}, columnsOf(items))
	assert.Empty(t, columnsOf(nil))
}

func TestFormatCell(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{name: "nil", value: nil, want: ""},
		{name: "string", value: "ada", want: "ada"},
		{name: "float", value: float64(42), want: "42"},
		{name: "bool", value: true, want: "true"},
		{name: "map", value: map[string]any{"a": 1}, want: `{"a":1}`},
		{name: "slice", value: []any{"x", "y"}, want: `["x","y"]`},
		{name: "time", value: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), want: "2024-01-02 03:04:05 +0000 UTC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, formatCell(tt.value))
		})
	}
}

func TestRenderListTable(t *testing.T) {
	t.Parallel()

	count := 3

	var buf bytes.Buffer

	err := renderListTable(&buf, listOutput{
		Count:   &count,
		Results: []restrepo.Model{{"id": 1, "name": "ada"}, {"id": 2}},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "ada")
	assert.Contains(t, out, NotAvailable)
	assert.Contains(t, out, "Showing 2 of 3")
}

func TestRenderListTableEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, renderListTable(&buf, listOutput{}))
	assert.Equal(t, "No results found.\n", buf.String())
}

func TestNewPagination(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		style   string
		want    restrepo.Pagination
		wantErr bool
	}{
		{name: "default", style: "", want: &restrepo.PageNumberPagination{}},
		{name: "page number", style: PaginationPageNumber, want: &restrepo.PageNumberPagination{}},
		{name: "limit offset", style: PaginationLimitOffset, want: &restrepo.LimitOffsetPagination{}},
		{name: "none", style: PaginationNone, want: restrepo.NoPagination{}},
		{name: "unknown", style: "cursor", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := newPagination(&Config{Pagination: tt.style, PageSize: 10})
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownPagination)

				return
			}

			require.NoError(t, err)
			assert.IsType(t, tt.want, got)
		})
	}
}

func TestPageNumberPaginationUsesConfiguredSize(t *testing.T) {
	t.Parallel()

	p, err := newPagination(&Config{Pagination: PaginationPageNumber, PageSize: 25})
	require.NoError(t, err)

	rc := p.BuildContext(restrepo.BuildContext(restrepo.WithPage(2, 0)))
	assert.Equal(t, "page=2&page_size=25", rc.QueryParams.Encode())
}
