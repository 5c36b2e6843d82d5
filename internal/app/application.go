package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/melbourne-housing/price-api/internal/appconf"
	"github.com/melbourne-housing/price-api/internal/datasets"
	"github.com/melbourne-housing/price-api/internal/logging"
	"github.com/melbourne-housing/price-api/internal/metrics"
	"github.com/melbourne-housing/price-api/internal/pricing"
)

// Application holds the dependencies for our HTTP handlers, helpers,
// and middleware. Everything in it is built once by New and only read
// afterwards.
type Application struct {
	Config        appconf.Config
	DatasetConfig datasets.Config
	Logger        *slog.Logger
	Datasets      *datasets.Store
	Model         *pricing.Model
	Metrics       *metrics.Metrics
	StartedAt     time.Time
}

// New loads the datasets and trains the price model. Any failure is returned
// to the caller, which is expected to abort startup.
func New(cfg appconf.Config, datasetConfig datasets.Config, logger *slog.Logger) (*Application, error) {
	store, err := datasets.Load(datasetConfig, logger)
	if err != nil {
		return nil, err
	}

	sales, err := store.PropertySales()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	model, err := pricing.Train(sales.Frame(), pricing.DefaultTrainingConfig())
	if err != nil {
		return nil, fmt.Errorf("error training price model: %w", err)
	}

	logging.LogOperation(logger, "model_trained",
		slog.Int("training_rows", model.TrainingRows()),
		slog.Int("features", len(model.FeatureNames())),
		slog.Int("localities", len(model.Localities())),
		slog.Float64("intercept", model.Intercept()),
		slog.Duration("duration", time.Since(start)),
		logging.Component(logging.ComponentPricing))

	m := metrics.New()
	m.SetDatasetRows(store.RowCounts())
	m.SetTrainingRows(model.TrainingRows())

	return &Application{
		Config:        cfg,
		DatasetConfig: datasetConfig,
		Logger:        logger,
		Datasets:      store,
		Model:         model,
		Metrics:       m,
		StartedAt:     time.Now(),
	}, nil
}
