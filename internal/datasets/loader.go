package datasets

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/xuri/excelize/v2"

	"github.com/melbourne-housing/price-api/internal/logging"
)

var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// missingValues are the cell spellings read as NA in every table.
var missingValues = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "<nil>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

// NaNValues returns the NA spellings for a table, plus placeholder if set.
func NaNValues(placeholder string) []string {
	values := make([]string, len(missingValues), len(missingValues)+1)
	copy(values, missingValues)
	if placeholder != "" {
		values = append(values, placeholder)
	}
	return values
}

// LoadFile reads a .csv or .xlsx file into a dataframe. Cells matching one of
// nanValues are loaded as NA.
func LoadFile(path string, nanValues []string, logger *slog.Logger) (dataframe.DataFrame, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return loadCSV(path, nanValues, logger)
	case ".xlsx":
		return loadXLSX(path, nanValues, logger)
	default:
		return dataframe.DataFrame{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// loadCSV only reads the file, so a failed close is logged but does not fail
// the load.
func loadCSV(path string, nanValues []string, logger *slog.Logger) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("error opening dataset: %w", err)
	}
	defer logging.SafeCloseWithLogging(f, logger, "close_csv")

	df := dataframe.ReadCSV(f, dataframe.NaNValues(nanValues))
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("error parsing %s: %w", path, df.Err)
	}
	return df, nil
}

// loadXLSX reports a failed close as a load error: excelize unpacks large
// workbooks into temporary files that Close removes.
func loadXLSX(path string, nanValues []string, logger *slog.Logger) (df dataframe.DataFrame, err error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("error opening dataset: %w", err)
	}
	defer logging.HandleDeferredError(&err, f.Close, logger, "close_xlsx")

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("error parsing %s: workbook has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("error reading sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("error parsing %s: sheet %q is empty", path, sheets[0])
	}

	// GetRows trims trailing empty cells, so rows are padded to the header width.
	width := len(rows[0])
	records := make([][]string, len(rows))
	for i, row := range rows {
		if len(row) > width {
			return dataframe.DataFrame{}, fmt.Errorf("error parsing %s: row %d has %d cells, header has %d", path, i+1, len(row), width)
		}
		record := make([]string, width)
		copy(record, row)
		records[i] = record
	}

	df = dataframe.LoadRecords(records, dataframe.NaNValues(nanValues))
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("error parsing %s: %w", path, df.Err)
	}
	return df, nil
}
