package cli

import (
	"strings"

	"github.com/promptpipe/promptpipe/internal/core"
)

// formatPrompt renders a message array into the single prompt string the
// CLI expects on stdin: the first system message as a labeled preamble,
// then every user message, blank-line separated, in original order.
func formatPrompt(messages []core.Message) string {
	var parts []string

	for _, msg := range messages {
		if msg.Role == core.RoleSystem {
			parts = append(parts, "System: "+msg.Content)
			break
		}
	}

	for _, msg := range messages {
		if msg.Role == core.RoleUser {
			parts = append(parts, msg.Content)
		}
	}

	return strings.Join(parts, "\n\n")
}
