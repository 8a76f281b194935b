package cli

import "testing"

func TestResolveModelAlias(t *testing.T) {
	tests := []struct {
		model string
		want  string
	}{
		{"claude-opus-4-20250514", "opus"},
		{"claude-sonnet-4-20250514", "sonnet"},
		{"claude-3-5-sonnet-20241022", "sonnet"},
		{"claude-3-5-haiku-20241022", "haiku"},
		{"claude-3-opus-20240229", "opus"},
		// Unknown identifiers pass through unchanged.
		{"claude-99-experimental", "claude-99-experimental"},
		{"sonnet", "sonnet"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			if got := resolveModelAlias(tt.model); got != tt.want {
				t.Errorf("resolveModelAlias(%q) = %q, want %q", tt.model, got, tt.want)
			}
		})
	}
}
