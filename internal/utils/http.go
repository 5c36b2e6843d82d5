package utils

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// ExtractParam retrieves a route parameter from the request context, exactly
// as it appeared in the path.
func ExtractParam(r *http.Request, paramName string) string {
	return httprouter.ParamsFromContext(r.Context()).ByName(paramName)
}
