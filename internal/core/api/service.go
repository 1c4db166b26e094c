// Package api provides the gRPC ConditionService implementation.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/solatis/jsoncond/internal/core/db"
	"github.com/solatis/jsoncond/internal/rules"
	"github.com/solatis/jsoncond/internal/sqlgen"
	"github.com/solatis/jsoncond/internal/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ConditionService implements ConditionServer.
// Thin orchestration layer delegating to rules, sqlgen, and db packages.
type ConditionService struct {
	store    *db.Store
	compiler sqlgen.Compiler
	logger   *slog.Logger
}

// NewConditionService creates service instance with dependencies.
func NewConditionService(store *db.Store, compiler sqlgen.Compiler, logger *slog.Logger) (*ConditionService, error) {
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ConditionService{
		store:    store,
		compiler: compiler,
		logger:   logger.With(slog.String("component", "condition_service")),
	}, nil
}

// Check evaluates an inline condition against inline data.
// Request: {condition, data}. Response: {passed, message}.
func (s *ConditionService) Check(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	cond, err := conditionField(req)
	if err != nil {
		return nil, err
	}
	result, err := rules.Check(cond, dataField(req))
	if err != nil {
		return nil, toStatus(err)
	}
	return resultStruct(result, nil)
}

// ToSQL compiles an inline condition to a PostgreSQL predicate.
// Request: {condition}. Response: {sql, params}.
func (s *ConditionService) ToSQL(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	cond, err := conditionField(req)
	if err != nil {
		return nil, err
	}
	pred, err := s.compiler.Compile(cond)
	if err != nil {
		return nil, toStatus(err)
	}

	params := make([]any, len(pred.Params))
	for i, p := range pred.Params {
		params[i] = paramValue(p)
	}
	resp, err := structpb.NewStruct(map[string]any{
		"sql":    pred.SQL,
		"params": params,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("failed to encode response: %v", err))
	}
	return resp, nil
}

// CheckStored evaluates a stored condition, looked up by name or ID.
// Request: {name, data}. Response: {passed, message, condition_id}.
func (s *ConditionService) CheckStored(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name := req.GetFields()["name"].GetStringValue()
	if name == "" {
		return nil, status.Error(codes.InvalidArgument, "name is required")
	}

	stored, cond, err := s.store.Load(ctx, name)
	if err != nil {
		return nil, toStatus(err)
	}
	result, err := rules.Check(cond, dataField(req))
	if err != nil {
		return nil, toStatus(err)
	}

	s.logger.DebugContext(ctx, "stored condition checked",
		slog.String("condition_id", string(stored.ID)),
		slog.String("name", stored.Name),
		slog.Bool("passed", result.Passed),
	)
	return resultStruct(result, map[string]any{"condition_id": string(stored.ID)})
}

// conditionField decodes the request's condition member.
func conditionField(req *structpb.Struct) (types.Condition, error) {
	v, ok := req.GetFields()["condition"]
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "condition is required")
	}
	cond, err := types.FromValue(v.AsInterface())
	if err != nil {
		return nil, toStatus(err)
	}
	return cond, nil
}

// dataField returns the request's data member, nil when absent.
func dataField(req *structpb.Struct) any {
	v, ok := req.GetFields()["data"]
	if !ok {
		return nil
	}
	return v.AsInterface()
}

func resultStruct(result rules.Result, extra map[string]any) (*structpb.Struct, error) {
	fields := map[string]any{
		"passed":  result.Passed,
		"message": result.Message,
	}
	for k, v := range extra {
		fields[k] = v
	}
	resp, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("failed to encode response: %v", err))
	}
	return resp, nil
}

// paramValue converts a bound parameter to a structpb-compatible value.
func paramValue(p any) any {
	switch t := p.(type) {
	case nil, bool, string, float64:
		return t
	case []int64:
		out := make([]any, len(t))
		for i, n := range t {
			out[i] = float64(n)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, elem := range t {
			out[i] = paramValue(elem)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, elem := range t {
			out[k] = paramValue(elem)
		}
		return out
	case time.Time:
		return t.Format(time.RFC3339Nano)
	default:
		if n, ok := types.Normalize(t).(float64); ok {
			return n
		}
		return fmt.Sprint(t)
	}
}
