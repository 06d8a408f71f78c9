package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildContext(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		want   string
	}{
		{"empty", nil, ""},
		{"single", []string{"one"}, "[CHUNK]\none"},
		{"several", []string{"one", "two", "three"}, "[CHUNK]\none\n\n[CHUNK]\ntwo\n\n[CHUNK]\nthree"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildContext(tt.chunks))
		})
	}
}

func TestUserMessage(t *testing.T) {
	got := UserMessage("[CHUNK]\nfacts", "How do I reset it?")

	assert.Equal(t, "Context:\n[CHUNK]\nfacts\n\nQuestion: How do I reset it?\n\nAnswer clearly with practical steps or bullets.", got)
}
