package core

import "time"

// Message roles understood by the prompt formatter.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single role-tagged turn of a conversation.
type Message struct {
	Role    string
	Content string
}

// Request describes one generation call to a provider.
type Request struct {
	// Messages is the ordered conversation to render into a prompt.
	Messages []Message
	// Model selects the model; empty uses the provider default.
	Model string
	// Schema is the JSON schema source for object generation.
	// Required by GenerateObject, ignored by the text paths.
	Schema string
	// Timeout overrides the provider's default per-call timeout when > 0.
	Timeout time.Duration
	// WorkDir is the working directory for the underlying CLI process.
	WorkDir string
}

// Usage carries pass-through cost accounting for one call.
// Local CLI tools report cost rather than token counts, so the
// token fields are always zero.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
	CostUSD      float64
}

// TextResult is the outcome of a text generation call.
type TextResult struct {
	Text     string
	Usage    Usage
	Duration time.Duration
}

// ObjectResult is the outcome of a structured generation call.
type ObjectResult struct {
	Object   map[string]any
	Usage    Usage
	Duration time.Duration
}

// TextStream is a compatibility shim for callers that expect streaming.
// The underlying tool has no incremental output mode, so Chunks delivers
// exactly one chunk and closes; Usage delivers one value after that.
// It is not restartable and must not be generalized into real streaming.
type TextStream struct {
	Chunks <-chan string
	Usage  <-chan Usage
}
