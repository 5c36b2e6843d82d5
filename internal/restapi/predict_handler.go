package restapi

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/melbourne-housing/price-api/internal/logging"
	"github.com/melbourne-housing/price-api/internal/metrics"
	"github.com/melbourne-housing/price-api/internal/utils"
)

const maxPredictBodyBytes = 1 << 16

var (
	errLocalityRequired = errors.New("locality is required")
	errYearRequired     = errors.New("year is required")
)

type predictRequest struct {
	Locality *string `json:"locality"`
	Year     *int    `json:"year"`
}

type predictResponse struct {
	PredictedPrice float64 `json:"predicted_price"`
}

func (api *RestAPI) predictHandler(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("prediction panicked", slog.Any("panic", rec))
			api.Metrics.ObservePrediction(metrics.OutcomeError)
			api.badRequestResponse(w, r, fmt.Sprint(rec))
		}
	}()

	locality, year, err := predictionParams(r)
	if err != nil {
		api.Metrics.ObservePrediction(metrics.OutcomeError)
		api.badRequestResponse(w, r, err.Error())
		return
	}

	sales, err := api.Datasets.PropertySales()
	if err != nil {
		api.Metrics.ObservePrediction(metrics.OutcomeError)
		api.badRequestResponse(w, r, err.Error())
		return
	}

	if !sales.HasColumn(strconv.Itoa(year)) {
		api.Metrics.ObservePrediction(metrics.OutcomeYearNotFound)
		api.notFoundResponse(w, r, "Year data not available")
		return
	}

	prediction, err := api.Model.Predict(locality)
	if err != nil {
		logging.LogError(logger, "prediction failed", err, slog.String("locality", locality))
		api.Metrics.ObservePrediction(metrics.OutcomeError)
		api.badRequestResponse(w, r, err.Error())
		return
	}

	logging.LogPrediction(logger, locality, year, prediction.Price, prediction.KnownLocality)
	if prediction.KnownLocality {
		api.Metrics.ObservePrediction(metrics.OutcomeOK)
	} else {
		api.Metrics.ObservePrediction(metrics.OutcomeUnknownLocality)
	}

	api.sendJSON(w, r, http.StatusOK, predictResponse{PredictedPrice: prediction.Price})
}

// predictionParams reads locality and year from the query string. When the
// query carries neither, a JSON body {"locality": ..., "year": ...} is used.
// Any locality text is accepted; one the model never saw predicts the intercept.
func predictionParams(r *http.Request) (string, int, error) {
	query := r.URL.Query()

	var req predictRequest
	if query.Has("locality") || query.Has("year") {
		if query.Has("locality") {
			locality := query.Get("locality")
			req.Locality = &locality
		}
		if query.Has("year") {
			year, err := utils.ParseYear(query.Get("year"))
			if err != nil {
				return "", 0, err
			}
			req.Year = &year
		}
	} else if r.Body != nil {
		err := json.NewDecoder(io.LimitReader(r.Body, maxPredictBodyBytes)).Decode(&req)
		if err != nil && !errors.Is(err, io.EOF) {
			return "", 0, fmt.Errorf("invalid request body: %w", err)
		}
	}

	if req.Locality == nil {
		return "", 0, errLocalityRequired
	}
	if req.Year == nil {
		return "", 0, errYearRequired
	}

	return *req.Locality, *req.Year, nil
}
