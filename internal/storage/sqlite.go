package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLite table names for the mirrored tables.
const (
	SeriesValuesTable   = "series_values"
	MarketMetricsTable  = "market_metrics"
	SkillsTaxonomyTable = "skills_taxonomy"
)

// Mirror maintains the optional SQLite copy of the flat tables. Each table
// is rebuilt wholesale per refresh cycle inside a transaction, mirroring the
// replace semantics of the CSV store. The CSVs stay the source of truth; the
// mirror only serves ad-hoc SQL.
type Mirror struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenMirror opens or creates the SQLite database at path.
func OpenMirror(path string, logger *slog.Logger) (*Mirror, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite works best with a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &Mirror{db: db, logger: logger.With(slog.String("component", "sqlite_mirror"))}, nil
}

// Close closes the underlying database.
func (m *Mirror) Close() error {
	return m.db.Close()
}

// ReplaceTable drops and recreates the named table with the given columns,
// all typed TEXT, and bulk-inserts the records in one transaction. A failure
// rolls back, leaving the prior table intact.
func (m *Mirror) ReplaceTable(ctx context.Context, table string, columns []string, records [][]string) error {
	if err := validIdentifier(table); err != nil {
		return err
	}
	for _, col := range columns {
		if err := validIdentifier(col); err != nil {
			return err
		}
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
		return fmt.Errorf("failed to drop %s: %w", table, err)
	}

	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = col + " TEXT"
	}
	createStmt := fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(quoted, ", "))
	if _, err := tx.ExecContext(ctx, createStmt); err != nil {
		return fmt.Errorf("failed to create %s: %w", table, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(columns)), ",")
	insertStmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), placeholders)
	stmt, err := tx.PrepareContext(ctx, insertStmt)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		args := make([]any, len(record))
		for i, v := range record {
			args[i] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", table, err)
	}

	m.logger.Info("mirrored table",
		slog.String("table", table),
		slog.Int("rows", len(records)))
	return nil
}

// validIdentifier guards table and column names interpolated into DDL. All
// names used here are compile-time constants, this is a backstop.
func validIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("empty SQL identifier")
	}
	for _, r := range name {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return fmt.Errorf("invalid SQL identifier %q", name)
		}
	}
	return nil
}
