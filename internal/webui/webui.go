package webui

import (
	"github.com/melbourne-housing/price-api/internal/app"
)

// WebUI serves HTML debugging pages over the loaded application state.
type WebUI struct {
	*app.Application
}

func New(application *app.Application) *WebUI {
	return &WebUI{Application: application}
}
