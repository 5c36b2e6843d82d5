package restapi

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/melbourne-housing/price-api/internal/app"
	"github.com/melbourne-housing/price-api/internal/appconf"
	"github.com/melbourne-housing/price-api/internal/datasets"
	"github.com/melbourne-housing/price-api/internal/logging"
)

// createTestApi builds a RestAPI over the fixture datasets in testdata/.
func createTestApi(t *testing.T) *RestAPI {
	return createTestApiWithRateLimit(t, 0)
}

func createTestApiWithRateLimit(t *testing.T, rateLimit int) *RestAPI {
	t.Helper()

	datasetConfig := datasets.DefaultConfig()
	datasetConfig.DataDir = filepath.Join("..", "..", "testdata")

	cfg := appconf.Config{
		Env:       appconf.EnvFlagToEnvironment("test"),
		RateLimit: rateLimit,
	}

	application, err := app.New(cfg, datasetConfig, logging.NewStructuredLogger(io.Discard, slog.LevelError))
	require.NoError(t, err)

	api := NewRestAPI(application)
	t.Cleanup(api.Shutdown)

	return api
}

// serveApiAndRequest starts a test server for the full handler chain, sends one
// request and returns the response with its body already read.
func serveApiAndRequest(t *testing.T, api *RestAPI, method, endpoint string, body []byte) (*http.Response, []byte) {
	t.Helper()

	server := httptest.NewServer(api.Handler())
	defer server.Close()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, server.URL+endpoint, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer logging.SafeCloseWithLogging(resp.Body,
		slog.Default().With(slog.String("component", "test")),
		"http_response_body")

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, data
}

func decodeDetail(t *testing.T, body []byte) string {
	t.Helper()

	var response errorResponse
	require.NoError(t, json.Unmarshal(body, &response))
	return response.Detail
}
