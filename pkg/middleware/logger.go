package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

type LoggerOpts func(*loggerConfig)

type loggerConfig struct {
	level      slog.Level
	errorLevel slog.Level
}

// WithLevel sets the level used for completed round trips.
func WithLevel(level slog.Level) LoggerOpts {
	return func(c *loggerConfig) {
		c.level = level
	}
}

// LoggingTransport logs every outbound request once it completes. The log
// call runs inside client.Do, so latency-sensitive callers use LogRoundTrip.
type LoggingTransport struct {
	next http.RoundTripper
	cfg  loggerConfig
}

// Logger wraps next, or http.DefaultTransport when next is nil.
func Logger(next http.RoundTripper, opts ...LoggerOpts) *LoggingTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	cfg := defaultOpt()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &LoggingTransport{next: next, cfg: cfg}
}

func defaultOpt() loggerConfig {
	return loggerConfig{
		level:      slog.LevelDebug,
		errorLevel: slog.LevelWarn,
	}
}

func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	if !slog.Default().Enabled(ctx, t.cfg.level) && !slog.Default().Enabled(ctx, t.cfg.errorLevel) {
		return t.next.RoundTrip(req)
	}

	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	t.cfg.log(req, status, time.Since(start), err)
	return resp, err
}

// LogRoundTrip logs a finished request with the default levels. Callers that
// time requests themselves call it after the clock has stopped.
func LogRoundTrip(req *http.Request, status int, elapsed time.Duration, err error) {
	defaultOpt().log(req, status, elapsed, err)
}

func (c loggerConfig) log(req *http.Request, status int, elapsed time.Duration, err error) {
	ctx := req.Context()
	if err != nil {
		if !slog.Default().Enabled(ctx, c.errorLevel) {
			return
		}
		logRequest(ctx, c.errorLevel, "REQUEST_ERROR", req,
			slog.Int("status", status),
			slog.Duration("elapsed", elapsed),
			slog.String("err", err.Error()),
		)
		return
	}

	if !slog.Default().Enabled(ctx, c.level) {
		return
	}
	logRequest(ctx, c.level, "REQUEST", req,
		slog.Int("status", status),
		slog.Duration("elapsed", elapsed),
	)
}

// CloseIdleConnections lets http.Client.CloseIdleConnections reach the wrapped transport.
func (t *LoggingTransport) CloseIdleConnections() {
	if c, ok := t.next.(interface{ CloseIdleConnections() }); ok {
		c.CloseIdleConnections()
	}
}

func logRequest(ctx context.Context, level slog.Level, msg string, req *http.Request, attrs ...slog.Attr) {
	base := []slog.Attr{
		slog.String("method", req.Method),
		slog.String("host", req.URL.Host),
		slog.String("path", req.URL.Path),
	}
	slog.LogAttrs(ctx, level, msg, append(base, attrs...)...)
}
