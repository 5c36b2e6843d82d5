package restapi

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

// CompressionConfig controls which responses are gzipped.
type CompressionConfig struct {
	MinSize      int      // bytes; smaller bodies are sent as-is
	Level        int      // gzip level, 1-9
	ContentTypes []string // media types eligible for compression
}

// DefaultCompressionConfig targets the JSON dataset dumps. Prediction and
// error bodies stay under MinSize, and /metrics negotiates its own encoding.
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize:      1024,
		Level:        6,
		ContentTypes: []string{"application/json"},
	}
}

// NewCompressionMiddleware builds a gzip middleware for config.
func NewCompressionMiddleware(config CompressionConfig) (func(http.Handler) http.Handler, error) {
	if len(config.ContentTypes) == 0 {
		return nil, fmt.Errorf("compression: no content types configured")
	}

	wrapper, err := gzhttp.NewWrapper(
		gzhttp.MinSize(config.MinSize),
		gzhttp.CompressionLevel(config.Level),
		gzhttp.ContentTypes(config.ContentTypes),
	)
	if err != nil {
		return nil, fmt.Errorf("compression: %w", err)
	}
	return func(next http.Handler) http.Handler {
		return wrapper(next)
	}, nil
}

// withCompression wraps next in gzip compression. An unusable config is
// logged and the handler is served uncompressed.
func (api *RestAPI) withCompression(next http.Handler, config CompressionConfig) http.Handler {
	middleware, err := NewCompressionMiddleware(config)
	if err != nil {
		api.Logger.Warn("response compression disabled", slog.String("error", err.Error()))
		return next
	}
	return middleware(next)
}
