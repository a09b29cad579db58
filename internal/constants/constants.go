package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Pagination defaults, matching Django REST framework's stock paginators.
const (
	// DefaultPageSize is the page size used when nothing else is configured.
	DefaultPageSize = 50

	// DefaultPageQueryParam names the page number query parameter.
	DefaultPageQueryParam = "page"

	// DefaultPageSizeQueryParam names the page size query parameter.
	DefaultPageSizeQueryParam = "page_size"

	// DefaultLimitQueryParam names the limit query parameter.
	DefaultLimitQueryParam = "limit"

	// DefaultOffsetQueryParam names the offset query parameter.
	DefaultOffsetQueryParam = "offset"

	// MaxListAllPages stops ListAll from looping forever on a misbehaving backend.
	MaxListAllPages = 10000
)

// Wire format.
const (
	// ISODateLayout is the millisecond precision UTC layout dates are sent in.
	ISODateLayout = "2006-01-02T15:04:05.000Z07:00"

	// DefaultTokenScheme is the Authorization scheme of DRF TokenAuthentication.
	DefaultTokenScheme = "Token"

	// RequestIDHeader carries a per request UUID.
	RequestIDHeader = "X-Request-ID"
)

// Format constants.
const (
	// FormatJSON selects JSON output.
	FormatJSON = "json"

	// FormatYAML selects YAML output.
	FormatYAML = "yaml"

	// FormatTable selects table output.
	FormatTable = "table"
)

// Metrics.
const (
	// MetricsNamespace prefixes every exported metric.
	MetricsNamespace = "restrepo"
)
