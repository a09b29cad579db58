package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/restrepo/internal/constants"
	"github.com/fivetwenty-io/restrepo/pkg/restrepo"
)

// Common string constants used throughout the commands package.
const (
	NotAvailable = "N/A"
	Masked       = "***"

	// YAML formatting.
	defaultYAMLIndent = 2

	// Pagination styles accepted in the config file.
	PaginationPageNumber  = "page_number"
	PaginationLimitOffset = "limit_offset"
	PaginationNone        = "none"

	// Stdin marker for --file.
	stdinPath = "-"
)

// Common static errors used throughout the commands package.
var (
	ErrBaseURLNotSet      = errors.New("no base URL configured, use --base-url or 'restrepo config set base_url URL'")
	ErrDataRequired       = errors.New("one of --data or --file is required")
	ErrDataConflict       = errors.New("--data and --file are mutually exclusive")
	ErrDataNotObject      = errors.New("payload must be a JSON object")
	ErrInvalidQuery       = errors.New("query must be in key=value form")
	ErrUnknownConfigKey   = errors.New("unknown configuration key")
	ErrUnknownPagination  = errors.New("unknown pagination style")
	ErrUnknownOutput      = errors.New("unknown output format")
	ErrTokenRequired      = errors.New("token is required")
	ErrResourceRequired   = errors.New("resource path is required")
	ErrInvalidConfigValue = errors.New("invalid configuration value")
)

// outputFormat returns the configured format. With nothing configured it is
// a table on a terminal and JSON otherwise, so piping into jq works.
func outputFormat() string {
	output := strings.ToLower(viper.GetString("output"))
	if output != "" {
		return output
	}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		return constants.FormatTable
	}

	return constants.FormatJSON
}

func renderJSON(w io.Writer, data any) error {
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding data to JSON: %w", err)
	}

	_, err = fmt.Fprintln(w, string(encoded))

	return err
}

func renderYAML(w io.Writer, data any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(defaultYAMLIndent)

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to YAML: %w", err)
	}

	return encoder.Close()
}

// renderObject prints one entity.
func renderObject(w io.Writer, model restrepo.Model) error {
	switch format := outputFormat(); format {
	case constants.FormatJSON:
		return renderJSON(w, model)
	case constants.FormatYAML:
		return renderYAML(w, model)
	case constants.FormatTable:
		table := newTable(w)
		table.Header("Field", "Value")

		for _, key := range sortedKeys(model) {
			_ = table.Append(key, formatCell(model[key]))
		}

		return renderTable(table)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownOutput, format)
	}
}

// listOutput is the JSON/YAML shape of a list result.
type listOutput struct {
	Count    *int            `json:"count,omitempty"    yaml:"count,omitempty"`
	Next     string          `json:"next,omitempty"     yaml:"next,omitempty"`
	Previous string          `json:"previous,omitempty" yaml:"previous,omitempty"`
	Results  []restrepo.Model `json:"results"            yaml:"results"`
}

// renderList prints a page, or every page when meta is nil.
func renderList(w io.Writer, items []restrepo.Model, meta restrepo.Meta) error {
	out := listOutput{Results: items}
	if count, ok := meta.Count(); ok {
		out.Count = &count
	}

	out.Next = meta.Next()
	out.Previous = meta.Previous()

	switch format := outputFormat(); format {
	case constants.FormatJSON:
		return renderJSON(w, out)
	case constants.FormatYAML:
		return renderYAML(w, out)
	case constants.FormatTable:
		return renderListTable(w, out)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownOutput, format)
	}
}

func renderListTable(w io.Writer, out listOutput) error {
	columns := columnsOf(out.Results)
	if len(columns) == 0 {
		_, err := fmt.Fprintln(w, "No results found.")

		return err
	}

	header := make([]any, len(columns))
	for i, column := range columns {
		header[i] = column
	}

	table := newTable(w)
	table.Header(header...)

	for _, item := range out.Results {
		row := make([]string, len(columns))
		for i, column := range columns {
			value, ok := item[column]
			if !ok {
				row[i] = NotAvailable

				continue
			}

			row[i] = formatCell(value)
		}

		_ = table.Append(row)
	}

	err := renderTable(table)
	if err != nil {
		return err
	}

	if out.Count != nil {
		_, err = fmt.Fprintf(w, "\nShowing %d of %d\n", len(out.Results), *out.Count)
	}

	return err
}

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewWriter(w)
}

func renderTable(table *tablewriter.Table) error {
	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// columnsOf is the sorted union of keys across items, with "id" first.
func columnsOf(items []restrepo.Model) []string {
	seen := map[string]struct{}{}

	for _, item := range items {
		for key := range item {
			seen[key] = struct{}{}
		}
	}

	columns := make([]string, 0, len(seen))
	for key := range seen {
		columns = append(columns, key)
	}

	slices.SortFunc(columns, func(a, b string) int {
		switch {
		case a == b:
			return 0
		case a == "id":
			return -1
		case b == "id":
			return 1
		default:
			return strings.Compare(a, b)
		}
	})

	return columns
}

func sortedKeys(model restrepo.Model) []string {
	keys := make([]string, 0, len(model))
	for key := range model {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	return keys
}

// formatCell renders scalars directly and everything else as compact JSON.
func formatCell(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case map[string]any, []any:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}

		return string(encoded)
	default:
		s, err := cast.ToStringE(v)
		if err != nil {
			return fmt.Sprint(v)
		}

		return s
	}
}

// parseQuery turns key=value flags into ordered query params. A repeated key
// becomes a slice and is sent once per value.
func parseQuery(pairs []string) (restrepo.Params, error) {
	params := restrepo.Params{}

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidQuery, pair)
		}

		existing, ok := params.Get(key)
		if !ok {
			params.Set(key, value)

			continue
		}

		if values, isSlice := existing.([]any); isSlice {
			params.Set(key, append(values, value))
		} else {
			params.Set(key, []any{existing, value})
		}
	}

	return params, nil
}

// readPayload loads the request body from --data or --file.
func readPayload(stdin io.Reader, data, file string) (restrepo.Model, error) {
	var raw []byte

	switch {
	case data != "" && file != "":
		return nil, ErrDataConflict
	case data != "":
		raw = []byte(data)
	case file == stdinPath:
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}

		raw = b
	case file != "":
		// #nosec G304 -- the path is supplied by the user on purpose
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading payload file: %w", err)
		}

		raw = b
	default:
		return nil, ErrDataRequired
	}

	var payload any

	err := json.Unmarshal(raw, &payload)
	if err != nil {
		return nil, fmt.Errorf("parsing payload: %w", err)
	}

	model, ok := payload.(map[string]any)
	if !ok {
		return nil, ErrDataNotObject
	}

	return model, nil
}
