package cli

import (
	"testing"

	"github.com/promptpipe/promptpipe/internal/core"
)

func TestFormatPrompt(t *testing.T) {
	tests := []struct {
		name     string
		messages []core.Message
		want     string
	}{
		{
			name: "system and user",
			messages: []core.Message{
				{Role: core.RoleSystem, Content: "return JSON"},
				{Role: core.RoleUser, Content: "Say hi"},
			},
			want: "System: return JSON\n\nSay hi",
		},
		{
			name: "user only",
			messages: []core.Message{
				{Role: core.RoleUser, Content: "Say hi"},
			},
			want: "Say hi",
		},
		{
			name: "multiple user messages keep order",
			messages: []core.Message{
				{Role: core.RoleUser, Content: "first"},
				{Role: core.RoleUser, Content: "second"},
				{Role: core.RoleUser, Content: "third"},
			},
			want: "first\n\nsecond\n\nthird",
		},
		{
			name: "only first system message is used",
			messages: []core.Message{
				{Role: core.RoleSystem, Content: "primary"},
				{Role: core.RoleSystem, Content: "ignored"},
				{Role: core.RoleUser, Content: "question"},
			},
			want: "System: primary\n\nquestion",
		},
		{
			name: "system after user still leads",
			messages: []core.Message{
				{Role: core.RoleUser, Content: "question"},
				{Role: core.RoleSystem, Content: "behave"},
			},
			want: "System: behave\n\nquestion",
		},
		{
			name: "assistant messages are ignored",
			messages: []core.Message{
				{Role: core.RoleUser, Content: "question"},
				{Role: core.RoleAssistant, Content: "previous answer"},
				{Role: core.RoleUser, Content: "followup"},
			},
			want: "question\n\nfollowup",
		},
		{
			name:     "empty",
			messages: nil,
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatPrompt(tt.messages); got != tt.want {
				t.Errorf("formatPrompt() = %q, want %q", got, tt.want)
			}
		})
	}
}
