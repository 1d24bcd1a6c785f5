// Package semantic delegates free-text transaction categorization to an
// external language-understanding service.
package semantic

import "context"

// Client defines the interface for semantic service providers.
type Client interface {
	Classify(ctx context.Context, prompt string) (Response, error)
}

// Alternative is one alternative category in a semantic reply.
type Alternative struct {
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory,omitempty"`
	Confidence  float64 `json:"confidence"`
}

// Response is the structured reply expected from the semantic service.
type Response struct {
	Category     string        `json:"category"`
	Subcategory  string        `json:"subcategory,omitempty"`
	Reasoning    string        `json:"reasoning,omitempty"`
	Alternatives []Alternative `json:"alternatives,omitempty"`
	Confidence   float64       `json:"confidence"`
}
