package datasets

import "path/filepath"

// Names under which the three tables are served.
const (
	PropertySales = "property_sales"
	Kaggle        = "kaggle"
	OpenPortal    = "open_portal"
)

// DefaultPlaceholder marks a missing price in the property sales table.
const DefaultPlaceholder = "-"

// Config locates the dataset files read at startup.
type Config struct {
	DataDir           string
	PropertySalesFile string
	KaggleFile        string
	OpenPortalFile    string
	Placeholder       string
}

func DefaultConfig() Config {
	return Config{
		DataDir:           ".",
		PropertySalesFile: "Property_sales.csv",
		KaggleFile:        "Kaggle_dataset.csv",
		OpenPortalFile:    "Open_Portal.csv",
		Placeholder:       DefaultPlaceholder,
	}
}

// path resolves file against DataDir unless it is already absolute.
func (c Config) path(file string) string {
	if filepath.IsAbs(file) || c.DataDir == "" {
		return file
	}
	return filepath.Join(c.DataDir, file)
}

type source struct {
	name        string
	path        string
	placeholder string
}

func (c Config) sources() []source {
	return []source{
		{name: PropertySales, path: c.path(c.PropertySalesFile), placeholder: c.Placeholder},
		{name: Kaggle, path: c.path(c.KaggleFile)},
		{name: OpenPortal, path: c.path(c.OpenPortalFile)},
	}
}
