package webui

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"

	"github.com/melbourne-housing/price-api/internal/logging"
)

//go:embed debug_index.html
var templateFS embed.FS

var debugTemplate = template.Must(template.ParseFS(templateFS, "debug_index.html"))

// debugContentSecurityPolicy relaxes the API-wide policy just enough for the
// page's inline stylesheet.
const debugContentSecurityPolicy = "default-src 'none'; style-src 'unsafe-inline'; frame-ancestors 'none';"

var dataTypes = []string{"model", "features", "localities", "datasets", "config"}

type debugData struct {
	Title     string
	Pre       string
	DataTypes []string
}

type coefficient struct {
	Feature string
	Weight  float64
}

type datasetSummary struct {
	Name    string
	Source  string
	Rows    int
	Columns []string
}

var dumper = spew.ConfigState{Indent: "  ", SortKeys: true, DisablePointerAddresses: true}

func writeDebugData(w http.ResponseWriter, r *http.Request, title string, data interface{}) {
	var buf bytes.Buffer
	err := debugTemplate.Execute(&buf, debugData{
		Title:     title,
		Pre:       dumper.Sdump(data),
		DataTypes: dataTypes,
	})
	if err != nil {
		logging.LogError(logging.FromContext(r.Context()), "failed to render debug page", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Security-Policy", debugContentSecurityPolicy)
	_, _ = buf.WriteTo(w)
}

func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	dataType := r.URL.Query().Get("dataType")

	var data interface{}
	var title string

	switch dataType {
	case "model":
		data = struct {
			TrainingRows int
			TrainedAt    string
			Intercept    float64
			Coefficients []coefficient
		}{
			TrainingRows: webUI.Model.TrainingRows(),
			TrainedAt:    webUI.Model.TrainedAt().Format(time.RFC3339),
			Intercept:    webUI.Model.Intercept(),
			Coefficients: webUI.coefficients(),
		}
		title = "Price Model - Coefficients"
	case "features":
		data = webUI.Model.FeatureNames()
		title = "Price Model - Feature Order"
	case "localities":
		data = webUI.Model.Localities()
		title = "Price Model - Training Localities"
	case "datasets":
		data = struct {
			LoadedAt string
			Tables   []datasetSummary
		}{
			LoadedAt: webUI.Datasets.LoadedAt.Format(time.RFC3339),
			Tables:   webUI.datasetSummaries(),
		}
		title = "Datasets"
	case "config":
		data = struct {
			Env       string
			Port      int
			LogLevel  string
			RateLimit int
			Datasets  interface{}
		}{
			Env:       webUI.Config.Env.String(),
			Port:      webUI.Config.Port,
			LogLevel:  webUI.Config.LogLevel.String(),
			RateLimit: webUI.Config.RateLimit,
			Datasets:  webUI.DatasetConfig,
		}
		title = "Configuration"
	default:
		data = map[string]string{
			"error": "Please use one of the following: " + strings.Join(dataTypes, ", ") + ".",
		}
		title = "Choose a data type"
	}

	writeDebugData(w, r, title, data)
}

func (webUI *WebUI) coefficients() []coefficient {
	names := webUI.Model.FeatureNames()
	weights := webUI.Model.Coefficients()

	out := make([]coefficient, len(names))
	for i, name := range names {
		out[i] = coefficient{Feature: name, Weight: weights[i]}
	}
	return out
}

func (webUI *WebUI) datasetSummaries() []datasetSummary {
	names := webUI.Datasets.Names()

	out := make([]datasetSummary, 0, len(names))
	for _, name := range names {
		table, err := webUI.Datasets.Table(name)
		if err != nil {
			continue
		}
		out = append(out, datasetSummary{
			Name:    table.Name,
			Source:  table.Source,
			Rows:    table.Rows(),
			Columns: table.Columns(),
		})
	}
	return out
}
