package engine

import "math"

// Acceptance thresholds for the cascade tiers. Each layer has a different
// trustworthiness profile: exact rules are near-certain, learned memory is
// user-specific but can be noisy, semantic inference is general but
// fallible, amount/similarity heuristics are the weakest signal. Tuning
// happens here, not at the call sites.
const (
	ruleAcceptThreshold     = 0.9
	memoryAcceptThreshold   = 0.8
	semanticAcceptThreshold = 0.7
	adaptiveAcceptThreshold = 0.6

	// Results below this are flagged for human review.
	reviewThreshold = 0.6

	// Confidence assigned when no rule matches at all.
	noMatchConfidence = 0.1
)

// Query limits for the store-backed layers.
const (
	memoryMatchLimit     = 5
	similarTxnLimit      = 10
	spendingPatternLimit = 5
)

// memoryConfidence scores a memory match by its historical match count.
func memoryConfidence(matchCount int) float64 {
	return math.Min(0.95, 0.6+float64(matchCount)*0.05)
}

// memoryAlternativeConfidence scores the runner-up memory candidates.
func memoryAlternativeConfidence(matchCount int) float64 {
	return math.Min(0.9, 0.5+float64(matchCount)*0.05)
}

// similarityConfidence scores the textual-similarity signal by how many
// similar transactions were found.
func similarityConfidence(similarCount int) float64 {
	return math.Min(0.8, 0.4+float64(similarCount)*0.1)
}

// spendingConfidence scores the amount-bucket signal by aggregate frequency.
func spendingConfidence(frequency int) float64 {
	return math.Min(0.8, float64(frequency)/10)
}

// spendingAlternativeConfidence scores bucket alternatives.
func spendingAlternativeConfidence(frequency int) float64 {
	return math.Min(0.7, float64(frequency)/15)
}
