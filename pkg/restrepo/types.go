package restrepo

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DTO is the wire representation of one entity, as decoded from JSON.
type DTO = map[string]any

// Model is the converted, application level representation of one entity
// when no Go struct is bound to it.
type Model = map[string]any

// PK is a primary key. Strings and integers are accepted.
type PK = any

// Response is what an HTTPClient hands back for a completed request.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// HTTPClient is the transport a ResourceAPI sends requests through.
// Implementations own headers, authentication, retries and status handling;
// a non-2xx response must surface as an error.
type HTTPClient interface {
	Get(ctx context.Context, url string) (*Response, error)
	Post(ctx context.Context, url string, body any) (*Response, error)
	Patch(ctx context.Context, url string, body any) (*Response, error)
	Delete(ctx context.Context, url string) (*Response, error)
}

// Serializer converts between DTOs and models of type M.
type Serializer[M any] interface {
	FromDTO(dto DTO) (M, error)
	ToDTO(model M) (DTO, error)
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, map[string]interface{}) {}
func (NopLogger) Info(string, map[string]interface{})  {}
func (NopLogger) Warn(string, map[string]interface{})  {}
func (NopLogger) Error(string, map[string]interface{}) {}

// Config represents the configuration used by restclient.New to build the
// default HTTPClient.
type Config struct {
	// BaseURL is prepended to every resource root (e.g. "https://api.example.com").
	BaseURL string

	// Token is sent as "Authorization: <TokenScheme> <Token>" when set.
	Token string
	// TokenScheme defaults to "Token" (DRF TokenAuthentication). Use "Bearer" for JWT.
	TokenScheme string

	// HTTPTimeout bounds a single attempt. Per call deadlines belong on the context.
	HTTPTimeout time.Duration
	// RetryMax is the number of retries for 5xx, 429 and connection errors.
	// Nil keeps the default of 3; zero disables retries.
	RetryMax *int
	// Zero waits keep the defaults.
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// Debug enables request/response logging through Logger.
	Debug  bool
	Logger Logger

	UserAgent string
	Headers   map[string]string

	// OnUnauthorized is invoked whenever the server answers 401.
	OnUnauthorized func(ctx context.Context)

	// Metrics, when set, receives the transport's request counters and latency histogram.
	Metrics prometheus.Registerer
}

// Retries returns n as a Config.RetryMax value.
func Retries(n int) *int {
	return &n
}
