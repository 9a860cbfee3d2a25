package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"fence same line", "```json{\"a\":1}```", `{"a":1}`},
		{"whitespace", "  \n{\"a\":1}\n  ", `{"a":1}`},
		{"lead-in prose", "Here is your plan:\n```json\n{\"a\":1}\n```", `{"a":1}`},
		{"closing prose", "```json\n{\"a\":1}\n```\nLet me know if you need changes.", `{"a":1}`},
		{"unfenced prose", "Sure! {\"a\":1} Hope that helps.", `{"a":1}`},
		{"trailing comma", "{\"a\":[1,2,],\n\"b\":2,\n}", "{\"a\":[1,2],\n\"b\":2}"},
		{"line comment", "{\n\"a\": 1, // score\n\"url\": \"https://x.test\"\n}", "{\n\"a\": 1,\n\"url\": \"https://x.test\"\n}"},
		{"no object", "I cannot help with that.", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractJSON(tt.input)
			assert.Equal(t, tt.want, got)
			if tt.want != "" {
				assert.True(t, json.Valid([]byte(got)), "extracted text must decode: %q", got)
			}
		})
	}
}
