// Package storage persists the flat tables. CSV files are the primary,
// human-inspectable store; writes are atomic (write to a temp file, then
// rename) so a concurrent reader sees either the old or the new complete
// table, never a partial one. An optional SQLite mirror carries the same
// logical schema for ad-hoc querying.
package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Table filenames under the CSV directory.
const (
	SeriesValuesFile   = "fred_series_values.csv"
	MarketMetricsFile  = "market_metrics.csv"
	SkillsTaxonomyFile = "skills_taxonomy.csv"
)

// ErrNotExist is returned by ReadTable when the table has not been written
// yet, which is the normal first-run state.
var ErrNotExist = errors.New("table does not exist")

// CSVStore reads and writes CSV tables in a fixed directory.
type CSVStore struct {
	dir    string
	logger *slog.Logger
}

// NewCSVStore creates a store rooted at dir.
func NewCSVStore(dir string, logger *slog.Logger) *CSVStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVStore{dir: dir, logger: logger.With(slog.String("component", "csv_store"))}
}

// Path returns the full path of a named table file.
func (s *CSVStore) Path(filename string) string {
	return filepath.Join(s.dir, filename)
}

// WriteTable atomically replaces the named table with headers plus records.
// The table is written to a temp file in the same directory and renamed over
// the target, so failures leave the prior table untouched.
func (s *CSVStore) WriteTable(filename string, headers []string, records [][]string) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, filename+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		// No-op after a successful rename.
		_ = os.Remove(tmpPath)
	}()

	writer := csv.NewWriter(tmp)
	if err := writer.Write(headers); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	target := s.Path(filename)
	if err := os.Rename(tmpPath, target); err != nil {
		return fmt.Errorf("failed to replace %s: %w", filename, err)
	}

	s.logger.Info("wrote table",
		slog.String("table", filename),
		slog.Int("rows", len(records)))
	return nil
}

// ReadTable reads the named table, returning its data records with the
// header row stripped. A missing file returns ErrNotExist.
func (s *CSVStore) ReadTable(filename string) ([][]string, error) {
	file, err := os.Open(s.Path(filename))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", filename, ErrNotExist)
		}
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read header of %s: %w", filename, err)
	}

	var records [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", filename, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
