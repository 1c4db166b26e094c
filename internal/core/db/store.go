package db

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/solatis/jsoncond/internal/types"
)

// StoredCondition is a named condition document.
type StoredCondition struct {
	ID          types.ConditionID
	Name        string
	Description string
	Body        json.RawMessage
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Condition decodes the stored body.
func (s *StoredCondition) Condition() (types.Condition, error) {
	return types.Parse(s.Body)
}

// conditionRow is the scan target for the conditions table. Timestamps scan
// as text on both drivers.
type conditionRow struct {
	ID          string `db:"condition_id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	Body        string `db:"body"`
	CreatedAt   string `db:"created_at"`
	UpdatedAt   string `db:"updated_at"`
}

func (r conditionRow) toStored() *StoredCondition {
	created, _ := time.Parse(time.RFC3339Nano, r.CreatedAt)
	updated, _ := time.Parse(time.RFC3339Nano, r.UpdatedAt)
	return &StoredCondition{
		ID:          types.ConditionID(r.ID),
		Name:        r.Name,
		Description: r.Description,
		Body:        json.RawMessage(r.Body),
		CreatedAt:   created,
		UpdatedAt:   updated,
	}
}

// Store persists named conditions.
type Store struct {
	db      *sqlx.DB
	queries *Queries
	logger  *slog.Logger
}

// NewStore creates a Store over a migrated database.
func NewStore(db *sqlx.DB, logger *slog.Logger) (*Store, error) {
	queries, err := LoadQueries(db)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, queries: queries, logger: logger.With(slog.String("component", "store"))}, nil
}

// DB returns the underlying connection.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Save validates body and stores it under name, replacing the body of an
// existing condition with the same name. The condition ID is kept across
// replacements.
func (s *Store) Save(ctx context.Context, name, description string, body []byte) (*StoredCondition, error) {
	if name == "" || len(name) > types.MaxConditionNameLength {
		return nil, fmt.Errorf("%w: name must be 1-%d bytes", types.ErrInvalidConditionName, types.MaxConditionNameLength)
	}
	if _, err := types.Parse(body); err != nil {
		return nil, err
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, body); err != nil {
		return nil, fmt.Errorf("invalid condition JSON: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	id := types.NewConditionID()
	if _, err := s.queries.Exec(ctx, "upsert-condition", string(id), name, description, compact.String(), now, now); err != nil {
		return nil, fmt.Errorf("failed to save condition %s: %w", name, err)
	}

	stored, err := s.getBy(ctx, "get-condition-by-name", name)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "condition saved",
		slog.String("condition_id", string(stored.ID)),
		slog.String("name", name),
	)
	return stored, nil
}

// Get looks a condition up by ID, falling back to name.
func (s *Store) Get(ctx context.Context, key string) (*StoredCondition, error) {
	if _, err := types.ParseConditionID(key); err == nil {
		stored, err := s.getBy(ctx, "get-condition-by-id", key)
		if !errors.Is(err, types.ErrConditionNotFound) {
			return stored, err
		}
	}
	return s.getBy(ctx, "get-condition-by-name", key)
}

// Load fetches and decodes a stored condition.
func (s *Store) Load(ctx context.Context, key string) (*StoredCondition, types.Condition, error) {
	stored, err := s.Get(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	cond, err := stored.Condition()
	if err != nil {
		return nil, nil, fmt.Errorf("stored condition %s: %w", stored.Name, err)
	}
	return stored, cond, nil
}

// List returns all stored conditions ordered by name.
func (s *Store) List(ctx context.Context) ([]*StoredCondition, error) {
	var rows []conditionRow
	if err := s.queries.Select(ctx, "list-conditions", &rows); err != nil {
		return nil, fmt.Errorf("failed to list conditions: %w", err)
	}
	out := make([]*StoredCondition, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toStored())
	}
	return out, nil
}

// Delete removes a condition by ID or name.
func (s *Store) Delete(ctx context.Context, key string) error {
	stored, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	res, err := s.queries.Exec(ctx, "delete-condition", string(stored.ID))
	if err != nil {
		return fmt.Errorf("failed to delete condition %s: %w", key, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", types.ErrConditionNotFound, key)
	}
	s.logger.InfoContext(ctx, "condition deleted",
		slog.String("condition_id", string(stored.ID)),
		slog.String("name", stored.Name),
	)
	return nil
}

func (s *Store) getBy(ctx context.Context, query, key string) (*StoredCondition, error) {
	var row conditionRow
	if err := s.queries.Get(ctx, query, &row, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", types.ErrConditionNotFound, key)
		}
		return nil, fmt.Errorf("failed to get condition %s: %w", key, err)
	}
	return row.toStored(), nil
}
