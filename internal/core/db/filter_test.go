package db

import (
	"context"
	"errors"
	"os"
	"sort"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/solatis/jsoncond/internal/sqlgen"
	"github.com/solatis/jsoncond/internal/types"
)

func seedOrders(t *testing.T, database *sqlx.DB) {
	t.Helper()
	stmts := []string{
		`CREATE TABLE orders (id INTEGER PRIMARY KEY, status TEXT, total REAL, placed_at TEXT, doc TEXT)`,
		`INSERT INTO orders VALUES (1, 'paid', 120.5, '2025-01-20T10:00:00+11:00', '{"lines": [{"sku": "a", "qty": 2}], "tags": ["vip"]}')`,
		`INSERT INTO orders VALUES (2, 'open', 15, '2025-01-19T23:00:00Z', '{"lines": [], "tags": []}')`,
		`INSERT INTO orders VALUES (3, 'paid', 40, '2025-02-01T09:00:00Z', '{"lines": [{"sku": "b", "qty": 0}], "tags": ["new"]}')`,
	}
	for _, s := range stmts {
		if _, err := database.Exec(s); err != nil {
			t.Fatalf("seed %q: %v", s, err)
		}
	}
}

func rowIDs(rows []Row) []float64 {
	ids := make([]float64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r["id"].(float64))
	}
	sort.Float64s(ids)
	return ids
}

func mustCondition(t *testing.T, s string) types.Condition {
	t.Helper()
	c, err := types.Parse([]byte(s))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return c
}

func TestExecutor_SQLiteFallsBackToMemory(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	seedOrders(t, database)
	exec := NewExecutor(database, sqlgen.Compiler{}, nil)

	tests := []struct {
		name      string
		condition string
		want      []float64
	}{
		{"scalar", `{"field": "status", "operator": "equal", "value": "paid"}`, []float64{1, 3}},
		{"numeric", `{"field": "total", "operator": "greaterThan", "value": 20}`, []float64{1, 3}},
		{"nested json", `{"field": "doc.tags", "operator": "contains", "value": "vip"}`, []float64{1}},
		{"quantifier", `{"field": "doc.lines", "arrayOperator": "any", "condition": {"field": "qty", "operator": "greaterThan", "value": 0}}`, []float64{1}},
		{"offset-aware date", `{"field": "placed_at", "dateOperator": "onOrAfter", "value": "2025-01-20"}`, []float64{1, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, mode, err := exec.Query(ctx, "orders", mustCondition(t, tt.condition))
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if mode != ModeMemory {
				t.Errorf("Query() mode = %s, want memory", mode)
			}
			got := rowIDs(rows)
			if len(got) != len(tt.want) {
				t.Fatalf("Query() ids = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Query() ids = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestExecutor_FilterRejectsSQLite(t *testing.T) {
	exec := NewExecutor(openTestDB(t), sqlgen.Compiler{}, nil)
	_, err := exec.Filter(context.Background(), "orders", types.Boolean(true))
	if !errors.Is(err, types.ErrUnsupportedDriver) {
		t.Errorf("Filter() error = %v, want ErrUnsupportedDriver", err)
	}
}

func TestExecutor_MalformedAbortsScan(t *testing.T) {
	database := openTestDB(t)
	seedOrders(t, database)
	exec := NewExecutor(database, sqlgen.Compiler{}, nil)

	cond := mustCondition(t, `{"field": "total", "operator": "between", "value": [1]}`)
	if _, _, err := exec.Query(context.Background(), "orders", cond); !errors.Is(err, types.ErrMalformedRule) {
		t.Errorf("Query() error = %v, want ErrMalformedRule", err)
	}
}

func TestNormalizeValue(t *testing.T) {
	if got := normalizeValue(int64(3), false); got != float64(3) {
		t.Errorf("normalizeValue(int64) = %#v", got)
	}
	if got := normalizeValue([]byte("plain"), false); got != "plain" {
		t.Errorf("normalizeValue([]byte) = %#v", got)
	}
	doc, ok := normalizeValue([]byte(`{"a": 1}`), true).(map[string]any)
	if !ok || doc["a"] != float64(1) {
		t.Errorf("normalizeValue(json) = %#v", doc)
	}
	if got := normalizeValue("{not json", false); got != "{not json" {
		t.Errorf("normalizeValue(broken json) = %#v", got)
	}
}

// TestExecutor_Postgres runs the SQL path against a live server when
// JC_TEST_POSTGRES_URL is set.
func TestExecutor_Postgres(t *testing.T) {
	dbURL := os.Getenv("JC_TEST_POSTGRES_URL")
	if dbURL == "" {
		t.Skip("JC_TEST_POSTGRES_URL not set")
	}
	ctx := context.Background()
	database, err := Open(ctx, dbURL)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer database.Close()

	stmts := []string{
		`DROP TABLE IF EXISTS jc_test_orders`,
		`CREATE TABLE jc_test_orders (id BIGINT PRIMARY KEY, status TEXT, tags JSONB, days TEXT[])`,
		`INSERT INTO jc_test_orders VALUES (1, 'paid', '["vip"]', '{mon}'), (2, 'open', '[]', '{}'), (3, 'paid', NULL, NULL)`,
	}
	for _, s := range stmts {
		if _, err := database.ExecContext(ctx, s); err != nil {
			t.Fatalf("setup %q: %v", s, err)
		}
	}
	defer database.ExecContext(ctx, `DROP TABLE jc_test_orders`)

	exec := NewExecutor(database, sqlgen.Compiler{}, nil)

	rows, mode, err := exec.Query(ctx, "jc_test_orders", mustCondition(t, `{"all": [
		{"field": "status", "operator": "in", "value": ["paid", "refunded"]},
		{"field": "tags", "arrayOperator": "notEmpty"}
	]}`))
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if mode != ModeSQL {
		t.Errorf("Query() mode = %s, want sql", mode)
	}
	if ids := rowIDs(rows); len(ids) != 1 || ids[0] != 1 {
		t.Errorf("Query() ids = %v, want [1]", ids)
	}

	rows, mode, err = exec.Query(ctx, "jc_test_orders", mustCondition(t,
		`{"field": "days", "arrayOperator": "empty", "arrayType": "native"}`))
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if ids := rowIDs(rows); mode != ModeSQL || len(ids) != 2 {
		t.Errorf("Query() mode = %s ids = %v, want sql [2 3]", mode, ids)
	}
}
