package restapi

import (
	"math"
	"net/http"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/melbourne-housing/price-api/internal/pricing"
)

func decodePrediction(t *testing.T, body []byte) float64 {
	t.Helper()

	var response map[string]float64
	require.NoError(t, json.Unmarshal(body, &response))
	price, ok := response["predicted_price"]
	require.True(t, ok, "response should carry predicted_price: %s", body)
	return price
}

func TestPredictHandler(t *testing.T) {
	api := createTestApi(t)

	t.Run("known locality returns a finite price", func(t *testing.T) {
		resp, body := serveApiAndRequest(t, api, http.MethodPost, "/predict?locality=ABBOTSFORD&year=2023", nil)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

		price := decodePrediction(t, body)
		assert.False(t, math.IsNaN(price) || math.IsInf(price, 0))

		expected, err := api.Model.Predict("ABBOTSFORD")
		require.NoError(t, err)
		assert.InDelta(t, expected.Price, price, 1e-6)
	})

	t.Run("repeated calls are identical", func(t *testing.T) {
		_, first := serveApiAndRequest(t, api, http.MethodPost, "/predict?locality=CARLTON&year=2023", nil)
		_, second := serveApiAndRequest(t, api, http.MethodPost, "/predict?locality=CARLTON&year=2023", nil)

		assert.Equal(t, decodePrediction(t, first), decodePrediction(t, second))
	})

	t.Run("every year column gives the same answer", func(t *testing.T) {
		_, body2013 := serveApiAndRequest(t, api, http.MethodPost, "/predict?locality=FITZROY&year=2013", nil)
		_, body2023 := serveApiAndRequest(t, api, http.MethodPost, "/predict?locality=FITZROY&year=2023", nil)

		assert.Equal(t, decodePrediction(t, body2013), decodePrediction(t, body2023))
	})

	t.Run("unknown year is not found", func(t *testing.T) {
		for _, locality := range []string{"ABBOTSFORD", "NOWHERE"} {
			resp, body := serveApiAndRequest(t, api, http.MethodPost, "/predict?locality="+locality+"&year=1999", nil)

			assert.Equal(t, http.StatusNotFound, resp.StatusCode)
			assert.Equal(t, "Year data not available", decodeDetail(t, body))
		}
	})

	t.Run("unseen locality predicts the intercept", func(t *testing.T) {
		resp, body := serveApiAndRequest(t, api, http.MethodPost, "/predict?locality=DOCKLANDS&year=2023", nil)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.InDelta(t, api.Model.Intercept(), decodePrediction(t, body), 1e-6)
	})

	t.Run("missing locality is a bad request", func(t *testing.T) {
		resp, body := serveApiAndRequest(t, api, http.MethodPost, "/predict?year=2023", nil)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "locality is required", decodeDetail(t, body))
	})

	t.Run("missing year is a bad request", func(t *testing.T) {
		resp, body := serveApiAndRequest(t, api, http.MethodPost, "/predict?locality=ABBOTSFORD", nil)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "year is required", decodeDetail(t, body))
	})

	t.Run("non-integer year is a bad request", func(t *testing.T) {
		resp, body := serveApiAndRequest(t, api, http.MethodPost, "/predict?locality=ABBOTSFORD&year=twenty", nil)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "year must be an integer", decodeDetail(t, body))
	})

	t.Run("no parameters at all is a bad request", func(t *testing.T) {
		resp, _ := serveApiAndRequest(t, api, http.MethodPost, "/predict", nil)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestPredictHandlerJSONBody(t *testing.T) {
	api := createTestApi(t)

	t.Run("accepts locality and year in the body", func(t *testing.T) {
		resp, body := serveApiAndRequest(t, api, http.MethodPost, "/predict",
			[]byte(`{"locality": "RICHMOND", "year": 2023}`))

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		expected, err := api.Model.Predict("RICHMOND")
		require.NoError(t, err)
		assert.InDelta(t, expected.Price, decodePrediction(t, body), 1e-6)
	})

	t.Run("query string wins over the body", func(t *testing.T) {
		resp, body := serveApiAndRequest(t, api, http.MethodPost, "/predict?locality=RICHMOND&year=1999",
			[]byte(`{"locality": "RICHMOND", "year": 2023}`))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Year data not available", decodeDetail(t, body))
	})

	t.Run("null year is a bad request", func(t *testing.T) {
		resp, body := serveApiAndRequest(t, api, http.MethodPost, "/predict",
			[]byte(`{"locality": "RICHMOND", "year": null}`))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "year is required", decodeDetail(t, body))
	})

	t.Run("malformed body is a bad request", func(t *testing.T) {
		resp, body := serveApiAndRequest(t, api, http.MethodPost, "/predict", []byte(`not json`))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, decodeDetail(t, body), "invalid request body")
	})
}

func TestPredictHandlerWrongMethod(t *testing.T) {
	api := createTestApi(t)

	resp, body := serveApiAndRequest(t, api, http.MethodGet, "/predict?locality=ABBOTSFORD&year=2023", nil)

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "Method Not Allowed", decodeDetail(t, body))
}

func TestPredictHandlerPredictionFailure(t *testing.T) {
	api := createTestApi(t)

	cfg := pricing.DefaultTrainingConfig()
	model, err := pricing.NewModel(cfg, []string{"ABBOTSFORD"}, make([]float64, len(cfg.FeatureColumns)+1), math.Inf(1))
	require.NoError(t, err)
	api.Model = model

	resp, body := serveApiAndRequest(t, api, http.MethodPost, "/predict?locality=ABBOTSFORD&year=2023", nil)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "prediction is not a finite number", decodeDetail(t, body))

	_, metricsBody := serveApiAndRequest(t, api, http.MethodGet, "/metrics", nil)
	assert.Contains(t, string(metricsBody), `housing_api_predictions_total{outcome="error"} 1`)
}

func TestPredictHandlerRecoversFromPanic(t *testing.T) {
	api := createTestApi(t)
	api.Model = nil

	resp, body := serveApiAndRequest(t, api, http.MethodPost, "/predict?locality=ABBOTSFORD&year=2023", nil)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeDetail(t, body), "nil pointer dereference")

	_, metricsBody := serveApiAndRequest(t, api, http.MethodGet, "/metrics", nil)
	assert.Contains(t, string(metricsBody), `housing_api_predictions_total{outcome="error"} 1`)
}

func TestPredictHandlerAcceptsAnyLocality(t *testing.T) {
	api := createTestApi(t)
	long := strings.Repeat("a", 201)

	t.Run("long locality with unknown year is not found", func(t *testing.T) {
		resp, body := serveApiAndRequest(t, api, http.MethodPost, "/predict?locality="+long+"&year=1999", nil)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Year data not available", decodeDetail(t, body))
	})

	t.Run("long locality with known year predicts the intercept", func(t *testing.T) {
		resp, body := serveApiAndRequest(t, api, http.MethodPost, "/predict?locality="+long+"&year=2023", nil)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.InDelta(t, api.Model.Intercept(), decodePrediction(t, body), 1e-6)
	})

	t.Run("invalid UTF-8 locality with unknown year is not found", func(t *testing.T) {
		resp, body := serveApiAndRequest(t, api, http.MethodPost, "/predict?locality=%FF&year=1999", nil)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Year data not available", decodeDetail(t, body))
	})

	t.Run("invalid UTF-8 locality with known year predicts the intercept", func(t *testing.T) {
		resp, body := serveApiAndRequest(t, api, http.MethodPost, "/predict?locality=%FF&year=2023", nil)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.InDelta(t, api.Model.Intercept(), decodePrediction(t, body), 1e-6)
	})
}
