package semantic

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/questbank/questbank-backend/internal/extraction/domain"
	"github.com/questbank/questbank-backend/pkg/errors"
)

// stripCodeFences removes a Markdown code fence wrapper if the model added
// one. Handles bare ``` fences and a json language tag in any case; anything
// else is returned unchanged.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
		s = s[4:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// parseCandidates decodes the model reply into untrusted candidate records.
// The reply must be a JSON array of objects; anything else, including a bare
// JSON null, fails the page.
func parseCandidates(reply string) ([]domain.Candidate, error) {
	cleaned := stripCodeFences(reply)

	var parsed any
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, errors.DataShape("generative reply is not valid JSON")
	}
	items, ok := parsed.([]any)
	if !ok {
		return nil, errors.DataShape("generative reply is not a JSON array")
	}

	candidates := make([]domain.Candidate, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, errors.DataShape(fmt.Sprintf("generative reply element %d is not an object", i))
		}
		candidates = append(candidates, domain.Candidate(obj))
	}
	return candidates, nil
}
