package restapi

import (
	"net/http"

	"github.com/melbourne-housing/price-api/internal/utils"
)

func (api *RestAPI) dataHandler(w http.ResponseWriter, r *http.Request) {
	name := utils.ExtractParam(r, "dataset_name")

	if err := utils.ValidateDatasetName(name); err != nil {
		api.notFoundResponse(w, r, "Dataset not found")
		return
	}

	table, err := api.Datasets.Table(name)
	if err != nil {
		api.notFoundResponse(w, r, "Dataset not found")
		return
	}

	api.sendJSON(w, r, http.StatusOK, table.Records())
}
