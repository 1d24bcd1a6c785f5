package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/coinsort/coinsort/internal/model"
	"github.com/spf13/cobra"
)

func suggestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest categories for a transaction",
		Long: `Suggest ranked category candidates based on the user's correction
history, similar users' spending, spending-amount patterns, and learned
vendor rules.

Examples:
  coinsort suggest --user alice --description "Whole Foods Market" --amount 87.20
  coinsort suggest -u alice -d "Shell" -a 42.10 --predict "Transportation"`,
		RunE: runSuggest,
	}

	// Flags
	cmd.Flags().StringP("user", "u", "", "User ID (required)")
	cmd.Flags().StringP("description", "d", "", "Transaction description (required)")
	cmd.Flags().Float64P("amount", "a", 0, "Transaction amount")
	cmd.Flags().StringP("vendor", "v", "", "Vendor name")
	cmd.Flags().String("predict", "", "Also predict confidence for this category")

	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}

func runSuggest(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	userID, _ := cmd.Flags().GetString("user")
	description, _ := cmd.Flags().GetString("description")
	amount, _ := cmd.Flags().GetFloat64("amount")
	vendor, _ := cmd.Flags().GetString("vendor")
	predictCategory, _ := cmd.Flags().GetString("predict")

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

	txn := model.Transaction{
		Description: description,
		Amount:      amount,
		Vendor:      vendor,
		Type:        model.TypeDebit,
	}

	suggestions, err := learner.Suggestions(ctx, txn, userID)
	if err != nil {
		return fmt.Errorf("failed to build suggestions: %w", err)
	}

	output := struct {
		Suggestions         []model.CategorySuggestion `json:"suggestions"`
		PredictedCategory   string                     `json:"predicted_category,omitempty"`
		PredictedConfidence *float64                   `json:"predicted_confidence,omitempty"`
	}{Suggestions: suggestions}

	if predictCategory != "" {
		confidence, predictErr := learner.PredictConfidence(ctx, txn, predictCategory, userID)
		if predictErr != nil {
			return fmt.Errorf("failed to predict confidence: %w", predictErr)
		}
		output.PredictedCategory = predictCategory
		output.PredictedConfidence = &confidence
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(output); err != nil {
		return fmt.Errorf("failed to encode suggestions: %w", err)
	}

	return nil
}
