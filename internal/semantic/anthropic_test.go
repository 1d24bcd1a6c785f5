package semantic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnthropicClassify(t *testing.T) {
	tests := []struct {
		name           string
		content        []map[string]string
		statusCode     int
		wantCategory   string
		wantConfidence float64
		wantErr        bool
	}{
		{
			name: "successful classification",
			content: []map[string]string{
				{"type": "text", "text": `{"category": "Transportation", "subcategory": "Gas", "confidence": 0.85}`},
			},
			statusCode:     http.StatusOK,
			wantCategory:   "Transportation",
			wantConfidence: 0.85,
		},
		{
			name: "missing confidence uses parser default",
			content: []map[string]string{
				{"type": "text", "text": `{"category": "Utilities"}`},
			},
			statusCode:     http.StatusOK,
			wantCategory:   "Utilities",
			wantConfidence: 0.75,
		},
		{
			name:       "API error",
			statusCode: http.StatusInternalServerError,
			wantErr:    true,
		},
		{
			name:       "no content in response",
			content:    []map[string]string{},
			statusCode: http.StatusOK,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "POST", r.Method)
				assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
				assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

				w.WriteHeader(tt.statusCode)
				if tt.statusCode == http.StatusOK {
					_ = json.NewEncoder(w).Encode(map[string]any{"content": tt.content})
				}
			}))
			defer server.Close()

			client := &anthropicClient{
				endpoint:    server.URL,
				apiKey:      "test-key",
				model:       "claude-3-5-haiku-latest",
				temperature: 0.3,
				maxTokens:   200,
				httpClient:  server.Client(),
			}

			resp, err := client.Classify(context.Background(), "Test prompt")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCategory, resp.Category)
			assert.InDelta(t, tt.wantConfidence, resp.Confidence, 1e-9)
		})
	}
}
