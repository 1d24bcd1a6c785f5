package engine

import (
	"regexp"
	"strings"
	"sync"

	"github.com/coinsort/coinsort/internal/model"
)

// ruleMatcher evaluates pattern rules against transactions. Compiled
// regexes are cached by pattern since user rules arrive dynamically.
type ruleMatcher struct {
	compiled map[string]*regexp.Regexp
	mu       sync.RWMutex
}

func newRuleMatcher() *ruleMatcher {
	return &ruleMatcher{
		compiled: make(map[string]*regexp.Regexp),
	}
}

// matches reports whether the transaction satisfies the rule's pattern and
// every condition the rule carries.
func (m *ruleMatcher) matches(txn model.Transaction, rule model.CategorizationRule) bool {
	if rule.Pattern == "" {
		return false
	}

	description := strings.ToLower(txn.Description)
	vendor := strings.ToLower(txn.Vendor)

	if !m.matchesPattern(description, vendor, rule) {
		return false
	}

	return m.matchesConditions(txn, rule.Conditions)
}

func (m *ruleMatcher) matchesPattern(description, vendor string, rule model.CategorizationRule) bool {
	switch rule.Kind {
	case model.PatternRegex:
		re := m.regex(rule.Pattern)
		if re == nil {
			return false
		}
		return re.MatchString(description) || re.MatchString(vendor)
	default:
		pattern := strings.ToLower(rule.Pattern)
		return strings.Contains(description, pattern) || strings.Contains(vendor, pattern)
	}
}

func (m *ruleMatcher) matchesConditions(txn model.Transaction, conditions *model.RuleConditions) bool {
	if conditions == nil {
		return true
	}

	if conditions.MinAmount != nil && txn.Amount < *conditions.MinAmount {
		return false
	}
	if conditions.MaxAmount != nil && txn.Amount > *conditions.MaxAmount {
		return false
	}
	if conditions.VendorPattern != "" {
		re := m.regex(conditions.VendorPattern)
		if re == nil || !re.MatchString(strings.ToLower(txn.Vendor)) {
			return false
		}
	}
	if conditions.DateRange != nil {
		if txn.Date == nil {
			return false
		}
		if txn.Date.Before(conditions.DateRange.Start) || txn.Date.After(conditions.DateRange.End) {
			return false
		}
	}

	return true
}

// regex returns the compiled case-insensitive pattern, or nil when the
// pattern is invalid. Invalid patterns simply never match.
func (m *ruleMatcher) regex(pattern string) *regexp.Regexp {
	m.mu.RLock()
	re, ok := m.compiled[pattern]
	m.mu.RUnlock()
	if ok {
		return re
	}

	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		re = nil
	}

	m.mu.Lock()
	m.compiled[pattern] = re
	m.mu.Unlock()
	return re
}
