package restapi

import (
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/melbourne-housing/price-api/internal/logging"
)

func setJSONResponseType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
}

// sendJSON encodes payload before writing the status, so an encoding
// failure can still be answered with a 500.
func (api *RestAPI) sendJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	setJSONResponseType(w)
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		logging.LogError(logging.FromContext(r.Context()), "failed to write response", err,
			slog.String("path", r.URL.Path))
	}
}
