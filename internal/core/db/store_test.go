package db

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/solatis/jsoncond/internal/types"
)

const adultRule = `{"field": "age", "operator": "greaterThanEqual", "value": 18}`

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(openTestDB(t), nil)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return store
}

func TestStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	saved, err := store.Save(ctx, "adult", "age gate", []byte(adultRule))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := types.ParseConditionID(string(saved.ID)); err != nil {
		t.Errorf("Save() ID %q is not a UUID: %v", saved.ID, err)
	}
	if string(saved.Body) != `{"field":"age","operator":"greaterThanEqual","value":18}` {
		t.Errorf("Save() Body = %s, want compact JSON", saved.Body)
	}
	if saved.CreatedAt.IsZero() || saved.UpdatedAt.IsZero() {
		t.Errorf("Save() timestamps not set: %+v", saved)
	}

	byName, err := store.Get(ctx, "adult")
	if err != nil {
		t.Fatalf("Get(name) error = %v", err)
	}
	byID, err := store.Get(ctx, string(saved.ID))
	if err != nil {
		t.Fatalf("Get(id) error = %v", err)
	}
	if byName.ID != saved.ID || byID.Name != "adult" || byID.Description != "age gate" {
		t.Errorf("Get() mismatch: byName=%+v byID=%+v", byName, byID)
	}

	_, cond, err := store.Load(ctx, "adult")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if rule, ok := cond.(*types.FieldRule); !ok || rule.Field != "age" {
		t.Errorf("Load() condition = %#v", cond)
	}
}

func TestStore_SaveReplacesByName(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	first, err := store.Save(ctx, "adult", "", []byte(adultRule))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	second, err := store.Save(ctx, "adult", "raised", []byte(`{"field": "age", "operator": "greaterThanEqual", "value": 21}`))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("replacement changed ID: %s -> %s", first.ID, second.ID)
	}
	if !strings.Contains(string(second.Body), "21") || second.Description != "raised" {
		t.Errorf("replacement not stored: %+v", second)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 1 {
		t.Errorf("List() returned %d conditions, want 1", len(all))
	}
}

func TestStore_SaveRejects(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	tests := []struct {
		name    string
		key     string
		body    string
		wantErr error
	}{
		{"empty name", "", adultRule, types.ErrInvalidConditionName},
		{"long name", strings.Repeat("n", types.MaxConditionNameLength+1), adultRule, types.ErrInvalidConditionName},
		{"malformed condition", "bad", `{"field": "a", "operator": "sortOf"}`, types.ErrMalformedRule},
		{"ambiguous condition", "bad", `{"all": [], "any": []}`, types.ErrMalformedRule},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Save(ctx, tt.key, "", []byte(tt.body))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Save() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := store.Save(ctx, "broken", "", []byte(`{not json`)); err == nil {
		t.Error("Save() error = nil, want JSON error")
	}
}

func TestStore_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if _, err := store.Save(ctx, name, "", []byte(`true`)); err != nil {
			t.Fatalf("Save(%s) error = %v", name, err)
		}
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	var names []string
	for _, c := range all {
		names = append(names, c.Name)
	}
	if strings.Join(names, ",") != "alpha,mid,zeta" {
		t.Errorf("List() order = %v, want alpha,mid,zeta", names)
	}

	if err := store.Delete(ctx, "mid"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(ctx, "mid"); !errors.Is(err, types.ErrConditionNotFound) {
		t.Errorf("Get(deleted) error = %v, want ErrConditionNotFound", err)
	}
	if err := store.Delete(ctx, "mid"); !errors.Is(err, types.ErrConditionNotFound) {
		t.Errorf("Delete(deleted) error = %v, want ErrConditionNotFound", err)
	}
}

func TestStore_GetUnknownID(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Get(context.Background(), string(types.NewConditionID()))
	if !errors.Is(err, types.ErrConditionNotFound) {
		t.Errorf("Get() error = %v, want ErrConditionNotFound", err)
	}
}
