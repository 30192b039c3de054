package http

import (
	"fmt"
	nethttp "net/http"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/sofiamatics/hospdir/internal/config"
	"github.com/sofiamatics/hospdir/internal/constants"
	"github.com/sofiamatics/hospdir/internal/logging"
)

// retryLogger adapts logging.Logger to retryablehttp.LeveledLogger.
type retryLogger struct {
	logger *logging.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	// Request-level chatter; only interesting when debugging
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn().Fields(keysAndValues).Msg(msg)
}

// NewRetryClient returns a standard *http.Client that routes requests through
// the configured proxy and retries according to cfg.MaxRetries. With the
// default of zero retries each request is attempted exactly once.
//
// The final response is always handed back to the caller, even for error
// statuses, so that callers can report the server's status text.
func NewRetryClient(cfg *config.Config, logger *logging.Logger) (*nethttp.Client, error) {
	httpClient, err := ConfigureHTTPClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = httpClient
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = constants.RetryWaitMin
	retryClient.RetryWaitMax = constants.RetryWaitMax
	retryClient.CheckRetry = CheckRetry
	retryClient.Backoff = Backoff
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = &retryLogger{logger: logger.Component("http")}

	return retryClient.StandardClient(), nil
}
