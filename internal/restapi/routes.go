package restapi

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/melbourne-housing/price-api/internal/appconf"
	"github.com/melbourne-housing/price-api/internal/webui"
)

func (api *RestAPI) SetRoutes(router *httprouter.Router) {
	router.Handler(http.MethodPost, "/predict", api.instrument("/predict", api.predictHandler))
	router.Handler(http.MethodGet, "/data/:dataset_name", api.instrument("/data/:dataset_name", api.dataHandler))
	router.Handler(http.MethodGet, "/healthz", api.instrument("/healthz", api.healthHandler))
	router.Handler(http.MethodGet, "/metrics", api.Metrics.Handler())

	// The debug pages expose model internals and are never served in production.
	if api.Config.Env != appconf.Production {
		webui.New(api.Application).SetRoutes(router)
	}

	router.NotFound = http.HandlerFunc(api.routeNotFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(api.methodNotAllowedResponse)
}

// instrument records request count and latency for route.
func (api *RestAPI) instrument(route string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next(wrapped, r)

		api.Metrics.ObserveRequest(r.Method, route, wrapped.statusCode, time.Since(start))
	})
}
