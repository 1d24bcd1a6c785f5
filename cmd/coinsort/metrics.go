package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func metricsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Show learning metrics for a user",
		Long: `Summarize how the learning system is performing: total corrections,
distinct categories learned, patterns recognized, recent accuracy
improvement, and user satisfaction.`,
		RunE: runMetrics,
	}

	cmd.Flags().StringP("user", "u", "", "User ID (required)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runMetrics(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	userID, _ := cmd.Flags().GetString("user")

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

	metrics, err := learner.Metrics(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to compute metrics: %w", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(metrics); err != nil {
		return fmt.Errorf("failed to encode metrics: %w", err)
	}

	return nil
}
