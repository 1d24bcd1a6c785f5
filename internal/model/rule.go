package model

import "time"

// PatternKind distinguishes literal substring patterns from regular expressions.
type PatternKind string

// Pattern kind constants.
const (
	PatternLiteral PatternKind = "literal"
	PatternRegex   PatternKind = "regex"
)

// RuleSource indicates where a categorization rule came from.
type RuleSource string

// Rule source constants.
const (
	SourceSystem  RuleSource = "system"
	SourceUser    RuleSource = "user"
	SourceLearned RuleSource = "learned"
)

// DateRange restricts a rule to transactions within a time window.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// RuleConditions are optional constraints beyond the text pattern.
// A rule with conditions only matches when every present condition holds.
type RuleConditions struct {
	MinAmount     *float64
	MaxAmount     *float64
	DateRange     *DateRange
	VendorPattern string
}

// CategorizationRule maps a text pattern to a category. System rules are
// seeded at startup and immutable; user and learned rules live in the store.
type CategorizationRule struct {
	LastMatched *time.Time
	Conditions  *RuleConditions
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ID          string
	UserID      string
	Pattern     string
	Keyword     string // derived keyword for learned rules, empty otherwise
	Category    string
	Subcategory string
	Kind        PatternKind
	Source      RuleSource
	Confidence  float64
	MatchCount  int
}
