package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/coinsort/coinsort/internal/common"
	"github.com/coinsort/coinsort/internal/engine"
	"github.com/coinsort/coinsort/internal/model"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage categorization rules",
		Long:  `View built-in rules and manage user-authored rules.`,
	}

	// Subcommands
	cmd.AddCommand(rulesListCmd())
	cmd.AddCommand(rulesAddCmd())

	return cmd
}

func rulesListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categorization rules",
		Long: `List the built-in rules, plus a user's own and learned rules
when --user is given.`,
		RunE: runRulesList,
	}

	cmd.Flags().StringP("user", "u", "", "Also list this user's rules")
	cmd.Flags().Bool("system", true, "Include built-in rules")

	return cmd
}

func runRulesList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	userID, _ := cmd.Flags().GetString("user")
	includeSystem, _ := cmd.Flags().GetBool("system")

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tSOURCE\tPATTERN\tCATEGORY\tSUBCATEGORY\tCONFIDENCE\tMATCHES\n")

	if includeSystem {
		for _, rule := range engine.SystemRules() {
			writeRuleRow(w, rule)
		}
	}

	if userID != "" {
		store, err := initStorage(ctx)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer func() {
			if closeErr := store.Close(); closeErr != nil {
				slog.Error("Failed to close database", "error", closeErr)
			}
		}()

		rules, err := store.GetUserRules(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load user rules: %w", err)
		}
		for _, rule := range rules {
			writeRuleRow(w, rule)
		}
	}

	return w.Flush()
}

func writeRuleRow(w *tabwriter.Writer, rule model.CategorizationRule) {
	pattern := rule.Pattern
	if pattern == "" {
		pattern = "keyword: " + rule.Keyword
	}
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.2f\t%d\n",
		rule.ID, rule.Source, pattern, rule.Category, rule.Subcategory,
		rule.Confidence, rule.MatchCount)
}

func rulesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a user rule",
		Long: `Add a user-authored categorization rule. User rules are checked
after the built-in rules and before learned rules.

Examples:
  coinsort rules add --user alice --pattern "trader joe" --category "Food & Dining" --subcategory Groceries
  coinsort rules add -u alice -p "netflix|hulu" --kind regex --category Entertainment --confidence 0.95`,
		RunE: runRulesAdd,
	}

	cmd.Flags().StringP("user", "u", "", "User ID (required)")
	cmd.Flags().StringP("pattern", "p", "", "Text pattern to match (required)")
	cmd.Flags().String("kind", "literal", "Pattern kind (literal, regex)")
	cmd.Flags().String("category", "", "Category to assign (required)")
	cmd.Flags().String("subcategory", "", "Subcategory to assign")
	cmd.Flags().Float64("confidence", 0.9, "Rule confidence")
	cmd.Flags().Float64("min-amount", 0, "Only match at or above this amount")
	cmd.Flags().Float64("max-amount", 0, "Only match at or below this amount")

	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("pattern")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func runRulesAdd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	userID, _ := cmd.Flags().GetString("user")
	pattern, _ := cmd.Flags().GetString("pattern")
	kind, _ := cmd.Flags().GetString("kind")
	category, _ := cmd.Flags().GetString("category")
	subcategory, _ := cmd.Flags().GetString("subcategory")
	confidence, _ := cmd.Flags().GetFloat64("confidence")
	minAmount, _ := cmd.Flags().GetFloat64("min-amount")
	maxAmount, _ := cmd.Flags().GetFloat64("max-amount")

	patternKind := model.PatternLiteral
	switch kind {
	case "literal":
	case "regex":
		patternKind = model.PatternRegex
		// Reject broken regexes here; the matcher would silently never
		// match them.
		if _, err := common.MatchRegex(pattern, ""); err != nil {
			return fmt.Errorf("invalid regex pattern: %w", err)
		}
	default:
		return fmt.Errorf("invalid pattern kind: %s", kind)
	}

	rule := model.CategorizationRule{
		UserID:      userID,
		Pattern:     pattern,
		Kind:        patternKind,
		Category:    category,
		Subcategory: subcategory,
		Source:      model.SourceUser,
		Confidence:  confidence,
	}

	var conditions model.RuleConditions
	if cmd.Flags().Changed("min-amount") {
		conditions.MinAmount = &minAmount
	}
	if cmd.Flags().Changed("max-amount") {
		conditions.MaxAmount = &maxAmount
	}
	if conditions.MinAmount != nil || conditions.MaxAmount != nil {
		rule.Conditions = &conditions
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

	if err := store.CreateUserRule(ctx, &rule); err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}

	slog.Info("✅ Rule created",
		"id", rule.ID,
		"pattern", pattern,
		"category", category)

	return nil
}
