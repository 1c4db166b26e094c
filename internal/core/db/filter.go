package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/solatis/jsoncond/internal/rules"
	"github.com/solatis/jsoncond/internal/sqlgen"
	"github.com/solatis/jsoncond/internal/types"
)

/*
 * Predicate execution against stored rows.
 *
 * Filter pushes a compiled predicate down to PostgreSQL. FilterInMemory
 * reads the whole table and evaluates each row with the rule evaluator,
 * which covers element quantifiers and offset-aware date comparison that
 * the compiler rejects. Query picks between them: SQL first, then memory
 * when the condition is unsupported in SQL or the driver is not PostgreSQL.
 *
 * Rows are normalized before evaluation: integers widen to float64,
 * timestamps render as RFC 3339 text, and JSON documents (jsonb columns, or
 * text holding a JSON object or array) decode to nested values so dotted
 * field paths reach into them.
 */

// Mode reports which path served a query.
type Mode string

const (
	ModeSQL    Mode = "sql"
	ModeMemory Mode = "memory"
)

// Row is a normalized result row keyed by column name.
type Row = map[string]any

// Executor runs conditions against database tables.
type Executor struct {
	db       *sqlx.DB
	compiler sqlgen.Compiler
	logger   *slog.Logger
}

// NewExecutor creates an Executor using compiler for SQL pushdown.
func NewExecutor(db *sqlx.DB, compiler sqlgen.Compiler, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{db: db, compiler: compiler, logger: logger.With(slog.String("component", "executor"))}
}

// Filter returns the rows of table matching cond, evaluated by PostgreSQL.
func (e *Executor) Filter(ctx context.Context, table string, cond types.Condition) ([]Row, error) {
	if e.db.DriverName() != DriverPostgres {
		return nil, fmt.Errorf("%w: %s cannot run PostgreSQL predicates", types.ErrUnsupportedDriver, e.db.DriverName())
	}
	pred, err := e.compiler.Compile(cond)
	if err != nil {
		return nil, err
	}

	query := "SELECT * FROM " + sqlgen.QuoteIdentifier(table) + " " + pred.Where()
	e.logger.DebugContext(ctx, "filtering in SQL",
		slog.String("table", table),
		slog.String("sql", pred.SQL),
		slog.Int("params", len(pred.Params)),
	)
	return e.fetch(ctx, query, bindParams(pred.Params)...)
}

// FilterInMemory returns the rows of table matching cond, evaluated by the
// rule evaluator. Malformed conditions abort the scan.
func (e *Executor) FilterInMemory(ctx context.Context, table string, cond types.Condition) ([]Row, error) {
	rows, err := e.fetch(ctx, "SELECT * FROM "+sqlgen.QuoteIdentifier(table))
	if err != nil {
		return nil, err
	}

	matched := make([]Row, 0, len(rows))
	for _, row := range rows {
		result, err := rules.Check(cond, row)
		if err != nil {
			return nil, err
		}
		if result.Passed {
			matched = append(matched, row)
		}
	}
	e.logger.DebugContext(ctx, "filtered in memory",
		slog.String("table", table),
		slog.Int("scanned", len(rows)),
		slog.Int("matched", len(matched)),
	)
	return matched, nil
}

// Query filters in SQL where possible and in memory otherwise.
func (e *Executor) Query(ctx context.Context, table string, cond types.Condition) ([]Row, Mode, error) {
	rows, err := e.Filter(ctx, table, cond)
	switch {
	case err == nil:
		return rows, ModeSQL, nil
	case errors.Is(err, types.ErrUnsupportedInSQL), errors.Is(err, types.ErrUnsupportedDriver):
		e.logger.InfoContext(ctx, "falling back to in-memory filtering",
			slog.String("table", table),
			slog.String("reason", types.Detail(err)),
		)
	default:
		return nil, "", err
	}

	rows, err = e.FilterInMemory(ctx, table, cond)
	if err != nil {
		return nil, "", err
	}
	return rows, ModeMemory, nil
}

func (e *Executor) fetch(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := e.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	jsonColumns := make(map[string]bool, len(colTypes))
	for _, ct := range colTypes {
		switch strings.ToUpper(ct.DatabaseTypeName()) {
		case "JSON", "JSONB":
			jsonColumns[ct.Name()] = true
		}
	}

	var out []Row
	for rows.Next() {
		raw := make(map[string]any)
		if err := rows.MapScan(raw); err != nil {
			return nil, err
		}
		row := make(Row, len(raw))
		for col, v := range raw {
			row[col] = normalizeValue(v, jsonColumns[col])
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// normalizeValue converts driver values to the shapes the evaluator reads.
func normalizeValue(v any, isJSON bool) any {
	switch t := v.(type) {
	case []byte:
		return normalizeText(string(t), isJSON)
	case string:
		return normalizeText(t, isJSON)
	case int64:
		return float64(t)
	case float32:
		return float64(t)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	default:
		return v
	}
}

func normalizeText(s string, isJSON bool) any {
	trimmed := strings.TrimSpace(s)
	if isJSON || strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		var doc any
		if err := json.Unmarshal([]byte(trimmed), &doc); err == nil {
			return doc
		}
	}
	return s
}

// bindParams wraps list parameters for PostgreSQL array binding.
func bindParams(params []any) []any {
	args := make([]any, len(params))
	for i, p := range params {
		if p != nil {
			if kind := reflect.TypeOf(p).Kind(); kind == reflect.Slice || kind == reflect.Array {
				args[i] = pq.Array(p)
				continue
			}
		}
		args[i] = p
	}
	return args
}
