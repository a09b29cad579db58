package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/fivetwenty-io/restrepo/pkg/restclient"
	"github.com/fivetwenty-io/restrepo/pkg/restrepo"
	"github.com/fivetwenty-io/restrepo/pkg/restrepo/serializer"
)

const userAgent = "restrepo-cli"

// session is one resource repository plus whatever must be released after
// the command finishes.
type session struct {
	repo    *restrepo.Repository[restrepo.Model]
	logger  *zap.Logger
	closers []func()
}

func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}

	_ = s.logger.Sync()
}

// newLogger logs warnings and up, or everything in development format with --verbose.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	cfg.Encoding = "console"

	return cfg.Build()
}

func newPagination(config *Config) (restrepo.Pagination, error) {
	switch config.Pagination {
	case PaginationPageNumber, "":
		return restrepo.NewPageNumberPagination(restrepo.PageNumberOptions{PageSize: config.PageSize}), nil
	case PaginationLimitOffset:
		return restrepo.NewLimitOffsetPagination(restrepo.LimitOffsetOptions{Limit: config.PageSize}), nil
	case PaginationNone:
		return restrepo.NoPagination{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownPagination, config.Pagination)
	}
}

// newSerializer loads the schema when one is configured. Drift warnings go to
// the log and, with a NATS URL, to the drift subject as well.
func newSerializer(config *Config, logger restrepo.Logger) (restrepo.Serializer[restrepo.Model], func(), error) {
	if config.Schema == "" {
		return serializer.Passthrough(), func() {}, nil
	}

	reporters := serializer.MultiReporter{serializer.NewLogReporter(logger)}
	closer := func() {}

	if config.DriftNATSURL != "" {
		nats, drain, err := serializer.ConnectNATSReporter(config.DriftNATSURL, config.DriftSubject, logger)
		if err != nil {
			return nil, nil, err
		}

		reporters = append(reporters, nats)
		closer = drain
	}

	ms, err := serializer.LoadSchema(config.Schema, serializer.WithReporter(reporters))
	if err != nil {
		closer()

		return nil, nil, err
	}

	return ms, closer, nil
}

func newSession(resource string) (*session, error) {
	resource = strings.Trim(resource, "/")
	if resource == "" {
		return nil, ErrResourceRequired
	}

	config := loadConfig()
	if config.BaseURL == "" {
		return nil, ErrBaseURLNotSet
	}

	zl, err := newLogger(viper.GetBool("verbose"))
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	logger := restclient.NewZapLogger(zl)
	s := &session{logger: zl}

	client, err := restclient.New(&restrepo.Config{
		BaseURL:     config.BaseURL,
		Token:       config.Token,
		TokenScheme: config.TokenScheme,
		HTTPTimeout: config.Timeout,
		RetryMax:    restrepo.Retries(config.RetryMax),
		Debug:       viper.GetBool("verbose"),
		Logger:      logger,
		UserAgent:   userAgent,
		OnUnauthorized: func(context.Context) {
			logger.Warn("server rejected the credentials, run 'restrepo login'", nil)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	pagination, err := newPagination(config)
	if err != nil {
		return nil, err
	}

	api, err := restrepo.NewResourceAPI(client, restrepo.Root("/"+resource),
		restrepo.WithAppendSlash(config.AppendSlash),
		restrepo.WithPagination(pagination),
		restrepo.WithAPILogger(logger),
	)
	if err != nil {
		return nil, err
	}

	ser, closer, err := newSerializer(config, logger)
	if err != nil {
		return nil, err
	}

	s.closers = append(s.closers, closer)

	s.repo, err = restrepo.NewRepository(api, ser)
	if err != nil {
		s.Close()

		return nil, err
	}

	return s, nil
}
