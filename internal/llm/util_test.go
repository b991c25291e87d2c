package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json code block",
			input:    "```json\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "generic code block",
			input:    "```\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "plain JSON",
			input:    `  {"key": "value"}  `,
			expected: `{"key": "value"}`,
		},
		{
			name:     "preamble before object",
			input:    "Here is the voice profile:\n{\"warmth\": 0.5}",
			expected: `{"warmth": 0.5}`,
		},
		{
			name:     "trailing commentary",
			input:    "{\"key\": \"value\"}\n\nLet me know if you need anything else!",
			expected: `{"key": "value"}`,
		},
		{
			name:     "braces inside strings",
			input:    `{"template": "Hello {name}!"} done`,
			expected: `{"template": "Hello {name}!"}`,
		},
		{
			name:     "escaped quotes",
			input:    `Result: {"message": "He said \"hi}\""}`,
			expected: `{"message": "He said \"hi}\""}`,
		},
		{
			name:     "array",
			input:    "Items:\n[\"a\", \"b\"]",
			expected: `["a", "b"]`,
		},
		{
			name:     "no JSON",
			input:    "  not json at all ",
			expected: "not json at all",
		},
		{
			name:     "unterminated object",
			input:    `{"key": "value"`,
			expected: `{"key": "value"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}
