package restapi

import (
	"net/http"
	"time"
)

type healthResponse struct {
	Status       string         `json:"status"`
	Environment  string         `json:"environment"`
	Uptime       string         `json:"uptime"`
	Datasets     map[string]int `json:"datasets"`
	LoadedAt     time.Time      `json:"loaded_at"`
	TrainingRows int            `json:"training_rows"`
	TrainedAt    time.Time      `json:"trained_at"`
}

func (api *RestAPI) healthHandler(w http.ResponseWriter, r *http.Request) {
	api.sendJSON(w, r, http.StatusOK, healthResponse{
		Status:       "ok",
		Environment:  api.Config.Env.String(),
		Uptime:       time.Since(api.StartedAt).Round(time.Second).String(),
		Datasets:     api.Datasets.RowCounts(),
		LoadedAt:     api.Datasets.LoadedAt.UTC(),
		TrainingRows: api.Model.TrainingRows(),
		TrainedAt:    api.Model.TrainedAt().UTC(),
	})
}
