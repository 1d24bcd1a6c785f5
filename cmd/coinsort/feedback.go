package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/coinsort/coinsort/internal/common"
	"github.com/coinsort/coinsort/internal/model"
	"github.com/coinsort/coinsort/internal/service"
)

// feedbackProcessor is the slice of the learner bulk mode needs.
type feedbackProcessor interface {
	ProcessBulkFeedback(ctx context.Context, corrections []model.LearningFeedback, progress func(done int)) error
}

func feedbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Record category corrections",
		Long: `Record a user correction so future classifications learn from it.

A correction upserts a learned rule, reinforces the category preference,
and updates spending patterns, all keyed so replaying the same correction
is harmless.

Examples:
  coinsort feedback --user alice --transaction txn-1 \
    --description "STARBUCKS COFFEE" --original Uncategorized \
    --corrected "Food & Dining" --subcategory Coffee --amount 4.50
  coinsort feedback --user alice --bulk corrections.json`,
		RunE: runFeedback,
	}

	// Flags
	cmd.Flags().StringP("user", "u", "", "User ID (required)")
	cmd.Flags().StringP("transaction", "t", "", "Transaction ID")
	cmd.Flags().StringP("description", "d", "", "Transaction description")
	cmd.Flags().String("original", "", "Category the engine assigned")
	cmd.Flags().String("corrected", "", "Category the user chose")
	cmd.Flags().String("subcategory", "", "Corrected subcategory")
	cmd.Flags().String("reasoning", "", "Why the correction was made")
	cmd.Flags().Float64P("amount", "a", 0, "Transaction amount")
	cmd.Flags().Float64("confidence", 0, "Confidence in the correction (default 0.8 for bulk)")
	cmd.Flags().String("bulk", "", "JSON file of corrections to apply in batches")

	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runFeedback(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	userID, _ := cmd.Flags().GetString("user")
	bulkFile, _ := cmd.Flags().GetString("bulk")

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close database", "error", closeErr)
		}
	}()

	eng, err := createEngine(store)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	learner := createLearner(store, eng)

	if bulkFile != "" {
		return runBulkFeedback(cmd, bulkFile, userID, learner)
	}

	transactionID, _ := cmd.Flags().GetString("transaction")
	description, _ := cmd.Flags().GetString("description")
	original, _ := cmd.Flags().GetString("original")
	corrected, _ := cmd.Flags().GetString("corrected")
	subcategory, _ := cmd.Flags().GetString("subcategory")
	reasoning, _ := cmd.Flags().GetString("reasoning")
	amount, _ := cmd.Flags().GetFloat64("amount")
	confidence, _ := cmd.Flags().GetFloat64("confidence")

	if corrected == "" {
		return fmt.Errorf("--corrected is required without --bulk")
	}
	if description == "" {
		return fmt.Errorf("--description is required without --bulk")
	}

	feedback := model.LearningFeedback{
		Timestamp:            time.Now(),
		TransactionID:        transactionID,
		Description:          description,
		OriginalCategory:     original,
		CorrectedCategory:    corrected,
		CorrectedSubcategory: subcategory,
		UserID:               userID,
		Reasoning:            reasoning,
		Amount:               amount,
		Confidence:           confidence,
	}

	// Transient SQLITE_BUSY errors are worth a couple of retries; the
	// learner's writes are keyed so replays are harmless.
	err = common.WithRetry(ctx, func() error {
		return learner.ProcessFeedback(ctx, feedback)
	}, service.RetryOptions{MaxAttempts: 3})
	if err != nil {
		return fmt.Errorf("failed to process feedback: %w", err)
	}

	slog.Info("✅ Correction recorded",
		"user", userID,
		"category", corrected)

	return nil
}

func runBulkFeedback(cmd *cobra.Command, bulkFile, userID string, learner feedbackProcessor) error {
	ctx := cmd.Context()

	data, err := os.ReadFile(bulkFile) // #nosec G304 - user-provided path is intentional
	if err != nil {
		return fmt.Errorf("failed to read corrections file: %w", err)
	}

	var corrections []model.LearningFeedback
	if err := json.Unmarshal(data, &corrections); err != nil {
		return fmt.Errorf("failed to parse corrections file: %w", err)
	}

	// Fill in the user and timestamp where the file omits them.
	now := time.Now()
	for i := range corrections {
		if corrections[i].UserID == "" {
			corrections[i].UserID = userID
		}
		if corrections[i].Timestamp.IsZero() {
			corrections[i].Timestamp = now
		}
	}

	slog.Info("Processing bulk corrections", "count", len(corrections))

	bar := progressbar.NewOptions(len(corrections),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Applying corrections..."),
	)

	err = learner.ProcessBulkFeedback(ctx, corrections, func(done int) {
		_ = bar.Set(done)
	})
	_ = bar.Finish()
	fmt.Fprintln(os.Stderr)

	if err != nil {
		return fmt.Errorf("bulk feedback failed: %w", err)
	}

	slog.Info("✅ Bulk corrections applied", "count", len(corrections))
	return nil
}
