package sink

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/ChrisGrossi/sportsbet/internal/htmltable"
)

// WarehouseWriter appends tables to Postgres, one destination table per
// worksheet name, stamping every row with the collection time. Unlike
// the spreadsheet surface it accumulates history across runs.
type WarehouseWriter struct {
	db  *sql.DB
	now func() time.Time
	log *logrus.Entry
}

// NewWarehouseWriter opens a Postgres connection from a DSN
func NewWarehouseWriter(dsn string, log *logrus.Entry) (*WarehouseWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open warehouse connection: %w", err)
	}

	return &WarehouseWriter{
		db:  db,
		now: time.Now,
		log: log.WithField("component", "warehouse"),
	}, nil
}

// Close releases the underlying connection pool
func (w *WarehouseWriter) Close() error {
	return w.db.Close()
}

// Write appends the table's rows in one transaction, creating the
// destination table on first use. Every column is stored as text;
// typed reads are the consumer's concern.
func (w *WarehouseWriter) Write(ctx context.Context, worksheet string, table *htmltable.Table) error {
	tableName := sanitizeIdentifier(worksheet)
	columns := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		columns[i] = sanitizeIdentifier(col)
	}

	if err := w.ensureTable(ctx, tableName, columns); err != nil {
		return err
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := insertQuery(tableName, columns)
	scrapedAt := w.now().UTC()

	for _, row := range table.Rows {
		args := make([]interface{}, 0, len(columns)+1)
		for i := range columns {
			if i < len(row) {
				args = append(args, row[i])
			} else {
				args = append(args, "")
			}
		}
		args = append(args, scrapedAt)

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", tableName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.log.WithFields(logrus.Fields{
		"table": tableName,
		"rows":  len(table.Rows),
	}).Info("appended warehouse rows")

	return nil
}

func (w *WarehouseWriter) ensureTable(ctx context.Context, tableName string, columns []string) error {
	defs := make([]string, 0, len(columns)+1)
	for _, col := range columns {
		defs = append(defs, fmt.Sprintf("%q TEXT", col))
	}
	defs = append(defs, `"scraped_at" TIMESTAMPTZ NOT NULL`)

	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %q (%s)", tableName, strings.Join(defs, ", "))
	if _, err := w.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure table %s: %w", tableName, err)
	}
	return nil
}

func insertQuery(tableName string, columns []string) string {
	quoted := make([]string, 0, len(columns)+1)
	placeholders := make([]string, 0, len(columns)+1)

	for i, col := range columns {
		quoted = append(quoted, fmt.Sprintf("%q", col))
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
	}
	quoted = append(quoted, `"scraped_at"`)
	placeholders = append(placeholders, fmt.Sprintf("$%d", len(columns)+1))

	return fmt.Sprintf("INSERT INTO %q (%s) VALUES (%s)",
		tableName, strings.Join(quoted, ", "), strings.Join(placeholders, ", "))
}

// sanitizeIdentifier lowercases a worksheet or column name and folds
// anything outside [a-z0-9] to underscores so it is safe to quote
func sanitizeIdentifier(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	if sb.Len() == 0 {
		return "unnamed"
	}
	return sb.String()
}
