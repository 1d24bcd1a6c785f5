package storage

import (
	"context"
	"testing"
)

func incrementSpending(t *testing.T, store *SQLiteStore, userID, category string, rangeMin, rangeMax float64, times int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < times; i++ {
		if err := store.IncrementSpendingPattern(ctx, userID, category, rangeMin, rangeMax); err != nil {
			t.Fatalf("IncrementSpendingPattern failed: %v", err)
		}
	}
}

func TestIncrementSpendingPattern(t *testing.T) {
	store, cleanup := createTestStore(t)
	defer cleanup()

	ctx := context.Background()
	incrementSpending(t, store, "user1", "Food & Dining", 0, 49, 3)

	patterns, err := store.GetSpendingPatterns(ctx, "user1", 0, 0)
	if err != nil {
		t.Fatalf("GetSpendingPatterns failed: %v", err)
	}
	if len(patterns) != 1 {
		t.Fatalf("Expected 1 pattern, got %d", len(patterns))
	}
	if patterns[0].Frequency != 3 {
		t.Errorf("Frequency = %d, want 3", patterns[0].Frequency)
	}
	if patterns[0].RangeMax != 49 {
		t.Errorf("RangeMax = %v, want 49", patterns[0].RangeMax)
	}
}

func TestGetSpendingPatternsBucketed(t *testing.T) {
	store, cleanup := createTestStore(t)
	defer cleanup()

	ctx := context.Background()
	incrementSpending(t, store, "user1", "Food & Dining", 0, 49, 2)
	incrementSpending(t, store, "user1", "Shopping", 0, 49, 5)
	incrementSpending(t, store, "user1", "Shopping", 100, 149, 1)

	patterns, err := store.GetSpendingPatterns(ctx, "user1", 0, 5)
	if err != nil {
		t.Fatalf("GetSpendingPatterns failed: %v", err)
	}
	if len(patterns) != 2 {
		t.Fatalf("Expected 2 patterns in the $0 bucket, got %d", len(patterns))
	}
	if patterns[0].Category != "Shopping" {
		t.Errorf("First pattern = %s, want most frequent (Shopping)", patterns[0].Category)
	}
}

func TestGetSimilarUserPatterns(t *testing.T) {
	store, cleanup := createTestStore(t)
	defer cleanup()

	ctx := context.Background()
	incrementSpending(t, store, "user1", "Food & Dining", 0, 49, 2)
	incrementSpending(t, store, "user2", "Entertainment", 0, 49, 4)
	incrementSpending(t, store, "user3", "Food & Dining", 0, 49, 1)

	patterns, err := store.GetSimilarUserPatterns(ctx, "user1", 0, 10)
	if err != nil {
		t.Fatalf("GetSimilarUserPatterns failed: %v", err)
	}
	if len(patterns) != 2 {
		t.Fatalf("Expected 2 similar-user patterns, got %d", len(patterns))
	}
	for _, p := range patterns {
		if p.UserID == "user1" {
			t.Error("Similar-user query returned the excluded user")
		}
	}
	if patterns[0].Category != "Entertainment" {
		t.Errorf("First pattern = %s, want most frequent (Entertainment)", patterns[0].Category)
	}
}
