package logging

import (
	"context"
	"io"
	"log/slog"
	"time"
)

type loggerKey struct{}

// Component names attached to log lines under the "component" key.
const (
	ComponentHTTP     = "http_server"
	ComponentServer   = "server"
	ComponentDatasets = "datasets"
	ComponentPricing  = "pricing"
)

// Component tags a log line with the subsystem that wrote it.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// NewStructuredLogger creates a JSON logger writing to w at the given level.
// Every line carries attrs. Duration values are written as fractional
// milliseconds under "<key>_ms".
func NewStructuredLogger(w io.Writer, level slog.Level, attrs ...slog.Attr) *slog.Logger {
	var handler slog.Handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: millisecondDurations,
	})
	if len(attrs) > 0 {
		handler = handler.WithAttrs(attrs)
	}
	return slog.New(handler)
}

func millisecondDurations(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() != slog.KindDuration {
		return a
	}
	return slog.Float64(a.Key+"_ms", milliseconds(a.Value.Duration()))
}

func milliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

// LogError logs err under message along with any extra attributes. A nil err
// still produces the line, without the "error" key.
func LogError(logger *slog.Logger, message string, err error, attrs ...slog.Attr) {
	if logger == nil {
		return
	}

	if err != nil {
		attrs = append([]slog.Attr{slog.String("error", err.Error())}, attrs...)
	}
	logger.LogAttrs(context.Background(), slog.LevelError, message, attrs...)
}

// LogOperation logs a completed startup or shutdown step at INFO. A zero
// "duration" is dropped.
func LogOperation(logger *slog.Logger, operation string, attrs ...slog.Attr) {
	if logger == nil {
		return
	}

	kept := attrs[:0:0]
	for _, attr := range attrs {
		if attr.Key == "duration" && attr.Value.Kind() == slog.KindDuration && attr.Value.Duration() == 0 {
			continue
		}
		kept = append(kept, attr)
	}
	logger.LogAttrs(context.Background(), slog.LevelInfo, operation, kept...)
}

// LogHTTPRequest logs one served request as "http_request".
func LogHTTPRequest(logger *slog.Logger, method, path string, status int, elapsed time.Duration, attrs ...slog.Attr) {
	if logger == nil {
		return
	}

	base := []slog.Attr{
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("duration_ms", milliseconds(elapsed)),
	}
	logger.LogAttrs(context.Background(), slog.LevelInfo, "http_request", append(base, attrs...)...)
}

// LogPrediction records a served price prediction. Localities the model never
// saw are logged at WARN because the answer is only the intercept.
func LogPrediction(logger *slog.Logger, locality string, year int, price float64, knownLocality bool) {
	if logger == nil {
		return
	}

	level, message := slog.LevelDebug, "prediction"
	if !knownLocality {
		level, message = slog.LevelWarn, "locality not seen in training data, predicting intercept"
	}
	logger.LogAttrs(context.Background(), level, message,
		slog.String("locality", locality),
		slog.Int("year", year),
		slog.Float64("predicted_price", price),
		slog.Bool("known_locality", knownLocality),
		Component(ComponentPricing))
}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger stored in ctx, or slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}
