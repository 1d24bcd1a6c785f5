package semantic

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/coinsort/coinsort/internal/model"
)

// Classifier implements the engine's semantic tier using an external
// language-understanding API.
type Classifier struct {
	client      Client
	rateLimiter *rateLimiter
	logger      *slog.Logger
}

// Config holds configuration for the semantic classifier.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
	RateLimit   int
}

// NewClassifier creates a classifier for the configured provider.
func NewClassifier(cfg Config, logger *slog.Logger) (*Classifier, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var client Client
	var err error
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		client, err = newOpenAIClient(cfg)
	case "anthropic":
		client, err = newAnthropicClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported semantic provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create semantic client: %w", err)
	}

	return &Classifier{
		client:      client,
		rateLimiter: newRateLimiter(cfg.RateLimit),
		logger:      logger,
	}, nil
}

// NewClassifierWithClient wires an explicit client, used by tests.
func NewClassifierWithClient(client Client, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{
		client:      client,
		rateLimiter: newRateLimiter(0),
		logger:      logger,
	}
}

// Classify builds a natural-language description of the transaction, sends
// it to the service, and converts the structured reply to a result. Errors
// propagate so the engine can degrade the tier to zero confidence.
func (c *Classifier) Classify(ctx context.Context, txn model.Transaction, prefs model.UserPreferences) (model.CategorizationResult, error) {
	if err := c.rateLimiter.wait(ctx); err != nil {
		return model.CategorizationResult{}, err
	}

	response, err := c.client.Classify(ctx, buildPrompt(txn, prefs))
	if err != nil {
		return model.CategorizationResult{}, fmt.Errorf("semantic classification failed: %w", err)
	}

	alternatives := make([]model.Alternative, 0, len(response.Alternatives))
	for _, alt := range response.Alternatives {
		alternatives = append(alternatives, model.Alternative{
			Category:    alt.Category,
			Subcategory: alt.Subcategory,
			Confidence:  alt.Confidence,
		})
	}

	c.logger.Debug("semantic classification",
		"description", txn.Description,
		"category", response.Category,
		"confidence", response.Confidence)

	return model.CategorizationResult{
		Category:     response.Category,
		Subcategory:  response.Subcategory,
		Confidence:   response.Confidence,
		Source:       model.SourceSemanticAI,
		Reasoning:    response.Reasoning,
		Alternatives: alternatives,
	}, nil
}

// buildPrompt renders the transaction and the user's custom categories as
// a classification request.
func buildPrompt(txn model.Transaction, prefs model.UserPreferences) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Analyze this transaction and categorize it:\n\n")
	fmt.Fprintf(&b, "Transaction: %q\n", txn.Description)
	fmt.Fprintf(&b, "Amount: $%.2f\n", txn.Amount)

	vendor := txn.Vendor
	if vendor == "" {
		vendor = "Unknown"
	}
	fmt.Fprintf(&b, "Vendor: %s\n", vendor)

	if txn.Date != nil {
		fmt.Fprintf(&b, "Date: %s\n", txn.Date.Format("2006-01-02"))
	} else {
		fmt.Fprintf(&b, "Date: Unknown\n")
	}

	if len(prefs.CustomCategories) > 0 {
		fmt.Fprintf(&b, "\nCustom categories available: %s\n", strings.Join(prefs.CustomCategories, ", "))
	}

	b.WriteString(`
Respond with JSON:
{
  "category": "string",
  "subcategory": "string or null",
  "confidence": 0.0-1.0,
  "reasoning": "explanation",
  "alternatives": [{"category": "string", "confidence": 0.0-1.0}]
}`)

	return b.String()
}
