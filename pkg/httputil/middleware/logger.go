package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/edgeflare/fakeuser/pkg/httputil"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ResponseRecorder is a wrapper for http.ResponseWriter to capture status codes and response size.
type ResponseRecorder struct {
	http.ResponseWriter
	StatusCode int
	Bytes      int
}

func NewResponseRecorder(w http.ResponseWriter) *ResponseRecorder {
	return &ResponseRecorder{
		ResponseWriter: w,
		StatusCode:     http.StatusOK,
	}
}

func (rr *ResponseRecorder) WriteHeader(statusCode int) {
	rr.StatusCode = statusCode
	rr.ResponseWriter.WriteHeader(statusCode)
}

func (rr *ResponseRecorder) Write(b []byte) (int, error) {
	n, err := rr.ResponseWriter.Write(b)
	rr.Bytes += n
	return n, err
}

// LogEntry returns the request-scoped logger set by the logger middleware, or a no-op logger.
func LogEntry(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(httputil.LogEntryCtxKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// LoggerOptions defines configuration for the logger middleware.
type LoggerOptions struct {
	Logger *zap.Logger
	Format func(reqID string, rec *ResponseRecorder, r *http.Request, latency time.Duration) []zap.Field
}

var defaultLogger *zap.Logger

func init() {
	var err error
	defaultLogger, err = zap.NewProduction()
	if err != nil {
		panic(err)
	}
}

func defaultFormat(reqID string, rec *ResponseRecorder, r *http.Request, latency time.Duration) []zap.Field {
	return []zap.Field{
		zap.String("req_id", reqID),
		zap.Int("status", rec.StatusCode),
		zap.Int("bytes", rec.Bytes),
		zap.String("method", r.Method),
		zap.String("host", r.Host),
		zap.String("url", r.URL.String()),
		zap.String("remote_addr", r.RemoteAddr),
		zap.String("user_agent", r.UserAgent()),
		zap.Duration("latency", latency),
	}
}

// LoggerWithOptions logs one "response" entry per request and exposes a logger
// tagged with the request ID to downstream handlers via LogEntry.
func LoggerWithOptions(options *LoggerOptions) func(http.Handler) http.Handler {
	opts := LoggerOptions{Logger: defaultLogger}
	if options != nil {
		opts = *options
		if opts.Logger == nil {
			opts.Logger = defaultLogger
		}
	}
	if opts.Format == nil {
		opts.Format = defaultFormat
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// already wrapped further up the chain
			if _, ok := r.Context().Value(httputil.LogEntryCtxKey).(*zap.Logger); ok {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			reqID := httputil.RequestID(r)
			if reqID == "" {
				reqID = uuid.Nil.String()
			}

			rec := NewResponseRecorder(w)
			entry := opts.Logger.With(zap.String("req_id", reqID))
			r = r.WithContext(context.WithValue(r.Context(), httputil.LogEntryCtxKey, entry))

			next.ServeHTTP(rec, r)

			opts.Logger.Info("response", opts.Format(reqID, rec, r, time.Since(start))...)
		})
	}
}
