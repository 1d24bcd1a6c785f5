package semantic

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/coinsort/coinsort/internal/common"
)

// parseResponse extracts the structured classification from the service's
// text reply. Models wrap JSON in markdown fences or prose more often than
// not, so the parser hunts for the outermost object before unmarshaling.
// A reply without a usable category is an error; the caller degrades it.
func parseResponse(content string) (Response, error) {
	content = strings.TrimSpace(content)

	if start := strings.Index(content, "{"); start >= 0 {
		if end := strings.LastIndex(content, "}"); end > start {
			content = content[start : end+1]
		}
	}

	var response Response
	if err := json.Unmarshal([]byte(content), &response); err != nil {
		return Response{}, fmt.Errorf("%w: %v", common.ErrMalformedResponse, err)
	}

	if response.Category == "" {
		return Response{}, fmt.Errorf("%w: missing category", common.ErrMalformedResponse)
	}

	// The service frequently omits confidence; assume a solid-but-not-
	// certain default rather than rejecting the reply.
	if response.Confidence == 0 {
		response.Confidence = 0.75
	}
	if response.Confidence < 0 {
		response.Confidence = 0
	}
	if response.Confidence > 1 {
		response.Confidence = 1
	}
	if response.Reasoning == "" {
		response.Reasoning = "AI semantic analysis"
	}

	return response, nil
}
