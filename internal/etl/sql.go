package etl

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/bangtanmom/contentsync/pkg/models"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLGateway reads and writes posts in a SQL Server table. The instance is
// the schema and the collection is the table.
type SQLGateway struct {
	DB *sql.DB
}

// NewSQLGateway returns a gateway over db.
func NewSQLGateway(db *sql.DB) *SQLGateway {
	return &SQLGateway{DB: db}
}

// Extract returns up to limit rows of the table as records.
func (s *SQLGateway) Extract(ctx context.Context, instance, collection string, limit int) ([]models.Record, error) {
	table, err := qualifiedTable(instance, collection)
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, fmt.Sprintf("SELECT TOP (@p1) * FROM %s", table), limit)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}

	slog.Debug("Read rows", "table", table, "count", len(records))
	return records, nil
}

// Load inserts record as a new row. Identity columns are left to the table.
func (s *SQLGateway) Load(ctx context.Context, instance, collection string, record models.Record) (models.Receipt, error) {
	query, args, err := buildInsert(instance, collection, record)
	if err != nil {
		return models.Receipt{}, err
	}

	if _, err := s.DB.ExecContext(ctx, query, args...); err != nil {
		return models.Receipt{}, fmt.Errorf("create in %s.%s: %w", instance, collection, err)
	}
	return models.Receipt{}, nil
}

func scanRecords(rows *sql.Rows) ([]models.Record, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []models.Record
	for rows.Next() {
		values := make([]any, len(cols))
		pointers := make([]any, len(cols))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		rec := make(models.Record, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				rec[col] = string(b)
				continue
			}
			rec[col] = values[i]
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// buildInsert renders an INSERT with one positional parameter per field, in
// column name order.
func buildInsert(instance, collection string, record models.Record) (string, []any, error) {
	table, err := qualifiedTable(instance, collection)
	if err != nil {
		return "", nil, err
	}
	if len(record) == 0 {
		return "", nil, fmt.Errorf("create in %s: empty record", table)
	}

	cols := make([]string, 0, len(record))
	for col := range record {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	names := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		quoted, err := quoteIdent(col)
		if err != nil {
			return "", nil, err
		}
		names[i] = quoted
		placeholders[i] = fmt.Sprintf("@p%d", i+1)
		args[i] = record[col]
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(names, ", "), strings.Join(placeholders, ", "))
	return query, args, nil
}

func qualifiedTable(schema, table string) (string, error) {
	s, err := quoteIdent(schema)
	if err != nil {
		return "", err
	}
	t, err := quoteIdent(table)
	if err != nil {
		return "", err
	}
	return s + "." + t, nil
}

func quoteIdent(name string) (string, error) {
	if !identPattern.MatchString(name) {
		return "", fmt.Errorf("invalid SQL identifier %q", name)
	}
	return "[" + name + "]", nil
}
