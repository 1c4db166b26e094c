package api

import (
	"context"
	"net"
	"path/filepath"
	"testing"

	"github.com/solatis/jsoncond/internal/core/db"
	"github.com/solatis/jsoncond/internal/sqlgen"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

func newTestStore(t *testing.T) *db.Store {
	t.Helper()
	ctx := context.Background()
	database, err := db.Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "jsoncond.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if _, err := db.MigrateUp(ctx, database); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}
	store, err := db.NewStore(database, nil)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return store
}

// dial serves srv over an in-memory listener and returns a connected client.
func dial(t *testing.T, srv ConditionServer) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	RegisterConditionServer(s, srv)
	go s.Serve(lis)
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return NewClient(conn)
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	if err != nil {
		t.Fatalf("NewStruct() error = %v", err)
	}
	return s
}

var adult = map[string]any{"field": "age", "operator": "greaterThanEqual", "value": 18}

func TestNewConditionService_NilStore(t *testing.T) {
	if _, err := NewConditionService(nil, sqlgen.Compiler{}, nil); err == nil {
		t.Error("NewConditionService(nil) error = nil, want error")
	}
}

func TestCheck(t *testing.T) {
	svc, err := NewConditionService(newTestStore(t), sqlgen.Compiler{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	client := dial(t, svc)
	ctx := context.Background()

	tests := []struct {
		name        string
		req         map[string]any
		wantCode    codes.Code
		wantPassed  bool
		wantMessage string
	}{
		{
			name:       "passes",
			req:        map[string]any{"condition": adult, "data": map[string]any{"age": 21}},
			wantPassed: true,
		},
		{
			name:        "fails with message",
			req:         map[string]any{"condition": adult, "data": map[string]any{"age": 15}},
			wantMessage: "age must be greater than or equal to 18",
		},
		{
			name:       "boolean literal",
			req:        map[string]any{"condition": true},
			wantPassed: true,
		},
		{
			name:     "missing condition",
			req:      map[string]any{"data": map[string]any{}},
			wantCode: codes.InvalidArgument,
		},
		{
			name:     "unknown operator",
			req:      map[string]any{"condition": map[string]any{"field": "a", "operator": "sortOf", "value": 1}},
			wantCode: codes.InvalidArgument,
		},
		{
			name: "malformed at evaluation",
			req: map[string]any{
				"condition": map[string]any{"field": "a", "operator": "between", "value": []any{1}},
				"data":      map[string]any{"a": 1},
			},
			wantCode: codes.InvalidArgument,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := client.Check(ctx, mustStruct(t, tt.req))
			if code := status.Code(err); code != tt.wantCode {
				t.Fatalf("Check() code = %v, want %v (err %v)", code, tt.wantCode, err)
			}
			if err != nil {
				return
			}
			fields := resp.GetFields()
			if got := fields["passed"].GetBoolValue(); got != tt.wantPassed {
				t.Errorf("passed = %v, want %v", got, tt.wantPassed)
			}
			if got := fields["message"].GetStringValue(); got != tt.wantMessage {
				t.Errorf("message = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestToSQL(t *testing.T) {
	svc, err := NewConditionService(newTestStore(t), sqlgen.Compiler{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	client := dial(t, svc)
	ctx := context.Background()

	resp, err := client.ToSQL(ctx, mustStruct(t, map[string]any{
		"condition": map[string]any{"all": []any{
			map[string]any{"field": "status", "operator": "equal", "value": "active"},
			map[string]any{"field": "at", "dateOperator": "dayIn", "value": []any{"monday", "friday"}},
		}},
	}))
	if err != nil {
		t.Fatalf("ToSQL() error = %v", err)
	}
	wantSQL := `("status" = $1 AND EXTRACT(DOW FROM "at") = ANY($2))`
	if got := resp.GetFields()["sql"].GetStringValue(); got != wantSQL {
		t.Errorf("sql = %s, want %s", got, wantSQL)
	}
	params := resp.GetFields()["params"].GetListValue().AsSlice()
	if len(params) != 2 || params[0] != "active" {
		t.Fatalf("params = %#v", params)
	}
	days, ok := params[1].([]any)
	if !ok || len(days) != 2 || days[0] != float64(1) || days[1] != float64(5) {
		t.Errorf("day params = %#v, want [1 5]", params[1])
	}

	_, err = client.ToSQL(ctx, mustStruct(t, map[string]any{
		"condition": map[string]any{"field": "lines", "arrayOperator": "any", "condition": true},
	}))
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("ToSQL(quantifier) code = %v, want InvalidArgument", status.Code(err))
	}
}

func TestCheckStored(t *testing.T) {
	store := newTestStore(t)
	saved, err := store.Save(context.Background(), "adult", "", []byte(`{"field": "age", "operator": "greaterThanEqual", "value": 18}`))
	if err != nil {
		t.Fatal(err)
	}
	svc, err := NewConditionService(store, sqlgen.Compiler{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	client := dial(t, svc)
	ctx := context.Background()

	resp, err := client.CheckStored(ctx, mustStruct(t, map[string]any{
		"name": "adult",
		"data": map[string]any{"age": 30},
	}))
	if err != nil {
		t.Fatalf("CheckStored() error = %v", err)
	}
	fields := resp.GetFields()
	if !fields["passed"].GetBoolValue() {
		t.Errorf("passed = false, want true")
	}
	if got := fields["condition_id"].GetStringValue(); got != string(saved.ID) {
		t.Errorf("condition_id = %s, want %s", got, saved.ID)
	}

	byID, err := client.CheckStored(ctx, mustStruct(t, map[string]any{
		"name": string(saved.ID),
		"data": map[string]any{"age": 3},
	}))
	if err != nil {
		t.Fatalf("CheckStored(id) error = %v", err)
	}
	if byID.GetFields()["passed"].GetBoolValue() {
		t.Error("CheckStored(id) passed = true, want false")
	}

	_, err = client.CheckStored(ctx, mustStruct(t, map[string]any{"name": "absent"}))
	if status.Code(err) != codes.NotFound {
		t.Errorf("CheckStored(absent) code = %v, want NotFound", status.Code(err))
	}
	_, err = client.CheckStored(ctx, mustStruct(t, map[string]any{}))
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("CheckStored(no name) code = %v, want InvalidArgument", status.Code(err))
	}
}

func TestParamValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"string", "a", "a"},
		{"float", float64(2), float64(2)},
		{"int", 3, float64(3)},
		{"day numbers", []int64{0, 6}, []any{float64(0), float64(6)}},
		{"nil", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := paramValue(tt.in)
			if _, err := structpb.NewValue(got); err != nil {
				t.Fatalf("paramValue(%#v) = %#v, not structpb-compatible: %v", tt.in, got, err)
			}
			gotList, gotIsList := got.([]any)
			wantList, wantIsList := tt.want.([]any)
			if gotIsList != wantIsList {
				t.Fatalf("paramValue(%#v) = %#v, want %#v", tt.in, got, tt.want)
			}
			if gotIsList {
				if len(gotList) != len(wantList) || gotList[0] != wantList[0] {
					t.Errorf("paramValue(%#v) = %#v, want %#v", tt.in, got, tt.want)
				}
				return
			}
			if got != tt.want {
				t.Errorf("paramValue(%#v) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}
