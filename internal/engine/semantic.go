package engine

import (
	"context"

	"github.com/coinsort/coinsort/internal/model"
)

// classifyBySemantic delegates to the external language-understanding
// service with a bounded timeout. Any failure degrades to zero confidence;
// this tier never blocks the cascade indefinitely and never raises.
func (e *Engine) classifyBySemantic(ctx context.Context, txn model.Transaction, prefs model.UserPreferences) model.CategorizationResult {
	if e.semantic == nil {
		return zeroResult(model.SourceSemanticAI, "Semantic analysis unavailable")
	}

	ctx, cancel := context.WithTimeout(ctx, e.semanticTimeout)
	defer cancel()

	result, err := e.semantic.Classify(ctx, txn, prefs)
	if err != nil {
		e.logger.Warn("semantic classification failed",
			"description", txn.Description,
			"error", err)
		return zeroResult(model.SourceSemanticAI, "Semantic analysis failed")
	}

	result.Source = model.SourceSemanticAI
	if result.Category == "" {
		return zeroResult(model.SourceSemanticAI, "Semantic analysis returned no category")
	}

	return result
}
