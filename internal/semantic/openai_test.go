package semantic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openAIReply(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
}

func TestOpenAIClassify(t *testing.T) {
	tests := []struct {
		name           string
		mockResponse   map[string]any
		statusCode     int
		wantCategory   string
		wantConfidence float64
		wantErr        bool
	}{
		{
			name:           "successful classification",
			mockResponse:   openAIReply(`{"category": "Food & Dining", "subcategory": "Coffee", "confidence": 0.9}`),
			statusCode:     http.StatusOK,
			wantCategory:   "Food & Dining",
			wantConfidence: 0.9,
		},
		{
			name:           "markdown-fenced reply",
			mockResponse:   openAIReply("```json\n{\"category\": \"Shopping\", \"confidence\": 0.8}\n```"),
			statusCode:     http.StatusOK,
			wantCategory:   "Shopping",
			wantConfidence: 0.8,
		},
		{
			name:         "API error",
			statusCode:   http.StatusTooManyRequests,
			mockResponse: map[string]any{"error": "rate limited"},
			wantErr:      true,
		},
		{
			name:         "no choices in response",
			statusCode:   http.StatusOK,
			mockResponse: map[string]any{"choices": []any{}},
			wantErr:      true,
		},
		{
			name:         "unparseable content",
			statusCode:   http.StatusOK,
			mockResponse: openAIReply("no structured data here"),
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "POST", r.Method)
				assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				var reqBody map[string]any
				require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
				assert.Equal(t, "gpt-4o-mini", reqBody["model"])
				messages, ok := reqBody["messages"].([]any)
				require.True(t, ok)
				require.Len(t, messages, 2)

				w.WriteHeader(tt.statusCode)
				_ = json.NewEncoder(w).Encode(tt.mockResponse)
			}))
			defer server.Close()

			client := &openAIClient{
				endpoint:    server.URL,
				apiKey:      "test-key",
				model:       "gpt-4o-mini",
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

func TestNewOpenAIClientDefaults(t *testing.T) {
	client, err := newOpenAIClient(Config{APIKey: "test-key"})
	require.NoError(t, err)

	oc, ok := client.(*openAIClient)
	require.True(t, ok)
	assert.Equal(t, "gpt-4o-mini", oc.model)
	assert.InDelta(t, 0.3, oc.temperature, 1e-9)
	assert.Equal(t, 200, oc.maxTokens)
	assert.Equal(t, 30*time.Second, oc.httpClient.Timeout)
	assert.Equal(t, openAIEndpoint, oc.endpoint)
}
