package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questbank/questbank-backend/pkg/errors"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare json", `[{"question":"q"}]`, `[{"question":"q"}]`},
		{"json fence", "```json\n[{\"question\":\"q\"}]\n```", `[{"question":"q"}]`},
		{"plain fence", "```\n[]\n```", "[]"},
		{"uppercase tag", "```JSON\n[]\n```", "[]"},
		{"surrounding whitespace", "  \n```json\n[]\n```\n ", "[]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripCodeFences(tt.input))
		})
	}
}

func TestParseCandidates(t *testing.T) {
	candidates, err := parseCandidates("```json\n[{\"question\": \"What is 2+2?\", \"question_type\": \"Short Answer\"}, {\"question\": \"Define osmosis.\"}]\n```")

	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "What is 2+2?", candidates[0]["question"])
	assert.Equal(t, "Short Answer", candidates[0]["question_type"])
	assert.Equal(t, "Define osmosis.", candidates[1]["question"])
}

func TestParseCandidatesEmptyArray(t *testing.T) {
	candidates, err := parseCandidates("[]")

	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestParseCandidatesUppercaseFence(t *testing.T) {
	candidates, err := parseCandidates("```JSON\n[{\"question\": \"Name the capital of France.\"}]\n```")

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Name the capital of France.", candidates[0]["question"])
}

func TestParseCandidatesNullReply(t *testing.T) {
	// "null" decodes without error but is not an array; it must not be
	// mistaken for an empty result.
	_, err := parseCandidates("null")

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDataShape))
	assert.Contains(t, err.Error(), "not a JSON array")
}

func TestParseCandidatesNotAnArray(t *testing.T) {
	_, err := parseCandidates(`{"question": "wrapped in an object"}`)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDataShape))
}

func TestParseCandidatesNonObjectElement(t *testing.T) {
	_, err := parseCandidates(`[{"question": "ok"}, "just a string"]`)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDataShape))
	assert.Contains(t, err.Error(), "element 1")
}

func TestParseCandidatesProse(t *testing.T) {
	_, err := parseCandidates("Here are the questions I found on this page.")

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDataShape))
}
