// Package main contains the coinsort CLI commands.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/coinsort/coinsort/internal/model"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Categorize a transaction",
		Long: `Categorize a single transaction through the full cascade: explicit rules,
learned corrections, semantic AI analysis, and adaptive pattern matching.

Examples:
  coinsort classify --description "STARBUCKS COFFEE #1234" --amount 4.50
  coinsort classify -d "Shell Gas Station" -a 42.10 --user alice
  coinsort classify -d "ACME Payroll" -a 2500 --type credit`,
		RunE: runClassify,
	}

	// Flags
	cmd.Flags().StringP("description", "d", "", "Transaction description (required)")
	cmd.Flags().Float64P("amount", "a", 0, "Transaction amount")
	cmd.Flags().StringP("vendor", "v", "", "Vendor name")
	cmd.Flags().StringP("user", "u", "", "User ID for personalized categorization")
	cmd.Flags().String("date", "", "Transaction date (format: 2006-01-02)")
	cmd.Flags().String("type", "debit", "Transaction type (debit, credit)")
	cmd.Flags().StringSlice("categories", nil, "Custom categories to consider")
	cmd.Flags().Bool("record", false, "Record the transaction for future pattern matching")

	_ = cmd.MarkFlagRequired("description")

	return cmd
}

func runClassify(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	description, _ := cmd.Flags().GetString("description")
	amount, _ := cmd.Flags().GetFloat64("amount")
	vendor, _ := cmd.Flags().GetString("vendor")
	userID, _ := cmd.Flags().GetString("user")
	dateStr, _ := cmd.Flags().GetString("date")
	txnType, _ := cmd.Flags().GetString("type")
	categories, _ := cmd.Flags().GetStringSlice("categories")
	record, _ := cmd.Flags().GetBool("record")

	txn := model.Transaction{
		ID:          uuid.NewString(),
		Description: description,
		Amount:      amount,
		Vendor:      vendor,
		Type:        model.TypeDebit,
	}
	if txnType == "credit" {
		txn.Type = model.TypeCredit
	}
	if dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}
		txn.Date = &parsed
	}

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

	prefs := model.UserPreferences{
		UserID:           userID,
		CustomCategories: categories,
	}

	result := eng.Classify(ctx, txn, prefs)

	if record && userID != "" {
		categorized := model.CategorizedTransaction{
			ID:          txn.ID,
			UserID:      userID,
			Description: txn.Description,
			Vendor:      txn.Vendor,
			Category:    result.Category,
			Subcategory: result.Subcategory,
			Amount:      txn.Amount,
			Date:        txn.Date,
		}
		if recordErr := store.RecordTransaction(ctx, &categorized); recordErr != nil {
			slog.Warn("Failed to record transaction", "error", recordErr)
		}
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	if result.FlagForReview {
		slog.Warn("Low confidence result flagged for review",
			"category", result.Category,
			"confidence", result.Confidence)
	}

	return nil
}
