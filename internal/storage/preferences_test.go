package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/coinsort/coinsort/internal/common"
	"github.com/coinsort/coinsort/internal/model"
)

func TestUserPreferenceRoundTrip(t *testing.T) {
	store, cleanup := createTestStore(t)
	defer cleanup()

	ctx := context.Background()
	pref := model.UserPreference{
		UserID:      "user1",
		Category:    "Food & Dining",
		Weight:      0.7,
		CustomRules: []string{"always coffee"},
	}

	if err := store.SaveUserPreference(ctx, &pref); err != nil {
		t.Fatalf("SaveUserPreference failed: %v", err)
	}

	got, err := store.GetUserPreference(ctx, "user1", "Food & Dining")
	if err != nil {
		t.Fatalf("GetUserPreference failed: %v", err)
	}
	if got.Weight != 0.7 {
		t.Errorf("Weight = %v, want 0.7", got.Weight)
	}
	if len(got.CustomRules) != 1 || got.CustomRules[0] != "always coffee" {
		t.Errorf("CustomRules = %v, want [always coffee]", got.CustomRules)
	}
	if got.Exceptions == nil {
		t.Error("Exceptions should decode to an empty slice, not nil")
	}
}

func TestUserPreferenceUpsert(t *testing.T) {
	store, cleanup := createTestStore(t)
	defer cleanup()

	ctx := context.Background()
	pref := model.UserPreference{UserID: "user1", Category: "Food & Dining", Weight: 0.7}
	if err := store.SaveUserPreference(ctx, &pref); err != nil {
		t.Fatalf("SaveUserPreference failed: %v", err)
	}

	// Last write wins for the same key.
	pref.Weight = 0.8
	if err := store.SaveUserPreference(ctx, &pref); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	got, err := store.GetUserPreference(ctx, "user1", "Food & Dining")
	if err != nil {
		t.Fatalf("GetUserPreference failed: %v", err)
	}
	if got.Weight != 0.8 {
		t.Errorf("Weight = %v, want 0.8", got.Weight)
	}
}

func TestGetUserPreferenceNotFound(t *testing.T) {
	store, cleanup := createTestStore(t)
	defer cleanup()

	ctx := context.Background()
	_, err := store.GetUserPreference(ctx, "nobody", "Food & Dining")
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSaveUserPreferenceValidation(t *testing.T) {
	store, cleanup := createTestStore(t)
	defer cleanup()

	ctx := context.Background()
	tests := []struct {
		pref *model.UserPreference
		name string
	}{
		{name: "nil preference", pref: nil},
		{name: "missing user", pref: &model.UserPreference{Category: "Food & Dining", Weight: 0.5}},
		{name: "weight above one", pref: &model.UserPreference{UserID: "user1", Category: "Food & Dining", Weight: 1.1}},
		{name: "negative weight", pref: &model.UserPreference{UserID: "user1", Category: "Food & Dining", Weight: -0.1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.SaveUserPreference(ctx, tt.pref); err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}
}
