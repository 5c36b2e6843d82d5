package pricing

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrMissingColumn is returned by Train when a configured column is absent.
	ErrMissingColumn = errors.New("column not found")
	// ErrNoTrainingRows means no row survived missing-value filtering.
	ErrNoTrainingRows = errors.New("no complete rows to train on")
	// ErrNonFinitePrediction is returned by Predict for a NaN or infinite price.
	ErrNonFinitePrediction = errors.New("prediction is not a finite number")
	// ErrCoefficientCount is returned by NewModel when the coefficients do not
	// match the feature layout.
	ErrCoefficientCount = errors.New("coefficient count does not match features")
)

// TrainingConfig names the columns used to fit the model.
type TrainingConfig struct {
	CategoryColumn string
	FeatureColumns []string
	TargetColumn   string
}

// DefaultTrainingConfig regresses the 2023 price on locality and the yearly
// prices from 2013 through 2023.
func DefaultTrainingConfig() TrainingConfig {
	years := make([]string, 0, 11)
	for year := 2013; year <= 2023; year++ {
		years = append(years, strconv.Itoa(year))
	}
	return TrainingConfig{
		CategoryColumn: "Locality",
		FeatureColumns: years,
		TargetColumn:   "2023",
	}
}

// columns returns category, features and target without duplicates.
func (cfg TrainingConfig) columns() []string {
	seen := make(map[string]bool)
	var columns []string
	for _, c := range append(append([]string{cfg.CategoryColumn}, cfg.FeatureColumns...), cfg.TargetColumn) {
		if seen[c] {
			continue
		}
		seen[c] = true
		columns = append(columns, c)
	}
	return columns
}

// Model is a fitted linear regression. It is immutable once Train returns.
type Model struct {
	features     *FeatureSpace
	coefficients []float64
	intercept    float64
	trainingRows int
	trainedAt    time.Time
}

// Prediction is the result of Model.Predict.
type Prediction struct {
	Price         float64
	KnownLocality bool
}

func notMissing(el series.Element) bool {
	return !el.IsNA()
}

// Train fits the model on df. Rows with a missing value in any selected
// column are dropped before fitting.
func Train(df dataframe.DataFrame, cfg TrainingConfig) (*Model, error) {
	columns := cfg.columns()

	present := make(map[string]bool, df.Ncol())
	for _, name := range df.Names() {
		present[name] = true
	}
	for _, column := range columns {
		if !present[column] {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, column)
		}
	}

	data := df.Select(columns)
	if data.Err != nil {
		return nil, fmt.Errorf("error selecting training columns: %w", data.Err)
	}
	if data.Nrow() == 0 {
		return nil, ErrNoTrainingRows
	}

	filters := make([]dataframe.F, len(columns))
	for i, column := range columns {
		filters[i] = dataframe.F{Colname: column, Comparator: series.CompFunc, Comparando: notMissing}
	}
	data = data.FilterAggregation(dataframe.And, filters...)
	if data.Err != nil {
		return nil, fmt.Errorf("error dropping incomplete rows: %w", data.Err)
	}

	n := data.Nrow()
	if n == 0 {
		return nil, ErrNoTrainingRows
	}

	numeric := make([][]float64, len(cfg.FeatureColumns))
	for j, column := range cfg.FeatureColumns {
		values, err := numericValues(data.Col(column))
		if err != nil {
			return nil, err
		}
		numeric[j] = values
	}
	target, err := numericValues(data.Col(cfg.TargetColumn))
	if err != nil {
		return nil, err
	}

	categories := data.Col(cfg.CategoryColumn).Records()
	fs := newFeatureSpace(cfg.FeatureColumns, cfg.CategoryColumn, categories)

	x := mat.NewDense(n, fs.Len(), nil)
	values := make([]float64, len(numeric))
	for i := 0; i < n; i++ {
		for j := range numeric {
			values[j] = numeric[j][i]
		}
		x.SetRow(i, fs.row(values, categories[i]))
	}

	coefficients, intercept, err := fitOLS(x, target)
	if err != nil {
		return nil, fmt.Errorf("error fitting regression: %w", err)
	}

	return &Model{
		features:     fs,
		coefficients: coefficients,
		intercept:    intercept,
		trainingRows: n,
		trainedAt:    time.Now(),
	}, nil
}

// NewModel assembles a model from already fitted parameters. coefficients
// follow FeatureNames order: cfg.FeatureColumns, then one indicator per
// distinct locality in sorted order.
func NewModel(cfg TrainingConfig, localities []string, coefficients []float64, intercept float64) (*Model, error) {
	fs := newFeatureSpace(cfg.FeatureColumns, cfg.CategoryColumn, localities)
	if len(coefficients) != fs.Len() {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrCoefficientCount, len(coefficients), fs.Len())
	}

	return &Model{
		features:     fs,
		coefficients: append([]float64(nil), coefficients...),
		intercept:    intercept,
		trainedAt:    time.Now(),
	}, nil
}

// Predict returns the price for locality. Only the locality indicator is set;
// the yearly price features are zero-filled.
func (m *Model) Predict(locality string) (Prediction, error) {
	vector, known := m.features.Encode(locality)

	price := m.predictVector(vector)
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return Prediction{}, ErrNonFinitePrediction
	}

	return Prediction{Price: price, KnownLocality: known}, nil
}

func (m *Model) predictVector(x []float64) float64 {
	return floats.Dot(m.coefficients, x) + m.intercept
}

// FeatureNames lists the features in coefficient order.
func (m *Model) FeatureNames() []string {
	return m.features.Names()
}

// Localities are the category values seen in training, sorted.
func (m *Model) Localities() []string {
	return m.features.Categories()
}

// Coefficients returns a copy of the fitted weights.
func (m *Model) Coefficients() []float64 {
	return append([]float64(nil), m.coefficients...)
}

// Intercept is the prediction for an all-zero feature vector.
func (m *Model) Intercept() float64 {
	return m.intercept
}

// TrainingRows is the number of complete rows the model was fitted on.
func (m *Model) TrainingRows() int {
	return m.trainingRows
}

// TrainedAt is when the model was built.
func (m *Model) TrainedAt() time.Time {
	return m.trainedAt
}
