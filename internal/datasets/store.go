package datasets

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/go-gota/gota/dataframe"

	"github.com/melbourne-housing/price-api/internal/logging"
)

var ErrUnknownDataset = errors.New("dataset not found")

// Table is one dataset loaded at startup. It is never modified afterwards.
type Table struct {
	Name   string
	Source string
	frame  dataframe.DataFrame
}

// NewTable wraps an already loaded dataframe.
func NewTable(name, source string, frame dataframe.DataFrame) *Table {
	return &Table{Name: name, Source: source, frame: frame}
}

// Frame returns the underlying dataframe. Callers must treat it as read-only.
func (t *Table) Frame() dataframe.DataFrame {
	return t.frame
}

func (t *Table) Rows() int {
	return t.frame.Nrow()
}

func (t *Table) Columns() []string {
	return t.frame.Names()
}

func (t *Table) HasColumn(name string) bool {
	for _, column := range t.frame.Names() {
		if column == name {
			return true
		}
	}
	return false
}

// Records serializes the table as one map per row keyed by column header.
// NA cells and non-finite numbers become nil.
func (t *Table) Records() []map[string]any {
	records := t.frame.Maps()
	for _, record := range records {
		for key, value := range record {
			if f, ok := value.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
				record[key] = nil
			}
		}
	}
	return records
}

// Store holds the three startup tables by name.
type Store struct {
	tables   map[string]*Table
	LoadedAt time.Time
}

// NewStore builds a store from tables, keyed by Table.Name.
func NewStore(tables ...*Table) *Store {
	store := &Store{
		tables:   make(map[string]*Table, len(tables)),
		LoadedAt: time.Now(),
	}
	for _, table := range tables {
		store.tables[table.Name] = table
	}
	return store
}

// Load reads every dataset named by cfg. The first failure aborts the load.
func Load(cfg Config, logger *slog.Logger) (*Store, error) {
	var tables []*Table

	for _, src := range cfg.sources() {
		start := time.Now()

		frame, err := LoadFile(src.path, NaNValues(src.placeholder), logger)
		if err != nil {
			return nil, fmt.Errorf("error loading %s dataset: %w", src.name, err)
		}

		logging.LogOperation(logger, "dataset_loaded",
			slog.String("dataset", src.name),
			slog.String("source", src.path),
			slog.Int("rows", frame.Nrow()),
			slog.Int("columns", frame.Ncol()),
			slog.Duration("duration", time.Since(start)),
			logging.Component(logging.ComponentDatasets))

		tables = append(tables, NewTable(src.name, src.path, frame))
	}

	return NewStore(tables...), nil
}

// Table returns the dataset registered under name.
func (s *Store) Table(name string) (*Table, error) {
	table, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataset, name)
	}
	return table, nil
}

func (s *Store) PropertySales() (*Table, error) {
	return s.Table(PropertySales)
}

// Names lists the registered dataset names in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RowCounts maps each dataset name to its row count.
func (s *Store) RowCounts() map[string]int {
	counts := make(map[string]int, len(s.tables))
	for name, table := range s.tables {
		counts[name] = table.Rows()
	}
	return counts
}
