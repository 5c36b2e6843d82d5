package restapi

import (
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/melbourne-housing/price-api/internal/logging"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

func (api *RestAPI) errorResponse(w http.ResponseWriter, r *http.Request, status int, detail string) {
	body, err := json.Marshal(errorResponse{Detail: detail})
	if err != nil {
		logging.LogError(logging.FromContext(r.Context()), "failed to encode error response", err,
			slog.Int("status", status))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	setJSONResponseType(w)
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func (api *RestAPI) badRequestResponse(w http.ResponseWriter, r *http.Request, detail string) {
	api.errorResponse(w, r, http.StatusBadRequest, detail)
}

func (api *RestAPI) notFoundResponse(w http.ResponseWriter, r *http.Request, detail string) {
	api.errorResponse(w, r, http.StatusNotFound, detail)
}

func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logging.LogError(logging.FromContext(r.Context()), "internal server error", err,
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path))
	api.errorResponse(w, r, http.StatusInternalServerError, "Internal Server Error")
}

func (api *RestAPI) routeNotFoundResponse(w http.ResponseWriter, r *http.Request) {
	api.errorResponse(w, r, http.StatusNotFound, "Not Found")
}

func (api *RestAPI) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	api.errorResponse(w, r, http.StatusMethodNotAllowed, "Method Not Allowed")
}
