package pricing

import (
	"sort"

	"golang.org/x/text/unicode/norm"
)

// FeatureSpace is the fixed column layout of the design matrix: the numeric
// columns in configured order followed by one indicator per category value,
// sorted lexically. It is built once from the training rows and reused
// verbatim for every prediction.
type FeatureSpace struct {
	numeric    []string
	prefix     string
	categories []string
	index      map[string]int
}

func newFeatureSpace(numeric []string, prefix string, values []string) *FeatureSpace {
	seen := make(map[string]struct{}, len(values))
	categories := make([]string, 0)
	for _, value := range values {
		value = normalizeCategory(value)
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		categories = append(categories, value)
	}
	sort.Strings(categories)

	index := make(map[string]int, len(categories))
	for i, category := range categories {
		index[category] = len(numeric) + i
	}

	return &FeatureSpace{
		numeric:    append([]string(nil), numeric...),
		prefix:     prefix,
		categories: categories,
		index:      index,
	}
}

func normalizeCategory(value string) string {
	return norm.NFC.String(value)
}

// Len is the number of features.
func (fs *FeatureSpace) Len() int {
	return len(fs.numeric) + len(fs.categories)
}

// Names lists the features in design-matrix order. Indicator columns are named
// "<category column>_<value>".
func (fs *FeatureSpace) Names() []string {
	names := make([]string, 0, fs.Len())
	names = append(names, fs.numeric...)
	for _, category := range fs.categories {
		names = append(names, fs.prefix+"_"+category)
	}
	return names
}

// Categories returns the category values seen in training, sorted.
func (fs *FeatureSpace) Categories() []string {
	return append([]string(nil), fs.categories...)
}

// categoryIndex returns the indicator column for value.
func (fs *FeatureSpace) categoryIndex(value string) (int, bool) {
	i, ok := fs.index[normalizeCategory(value)]
	return i, ok
}

// row builds one design-matrix row from numeric values and a category.
func (fs *FeatureSpace) row(numeric []float64, category string) []float64 {
	row := make([]float64, fs.Len())
	copy(row, numeric)
	if i, ok := fs.categoryIndex(category); ok {
		row[i] = 1
	}
	return row
}

// Encode builds the prediction vector for category alone. Every numeric
// feature and every other indicator is zero-filled; an unseen category
// yields the all-zero vector.
func (fs *FeatureSpace) Encode(category string) (vector []float64, known bool) {
	_, known = fs.categoryIndex(category)
	return fs.row(nil, category), known
}
