package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/promptpipe/promptpipe/internal/core"
	"github.com/promptpipe/promptpipe/internal/logging"
)

// defaultCommand is the bare command name resolved through $PATH.
const defaultCommand = "claude"

// installHint names the remediation for a missing binary. A missing CLI is
// a missing dependency, not a runtime fault, and gets its own message.
const installHint = "claude CLI not found; install it with: npm install -g @anthropic-ai/claude-code"

// truncationHint gives the caller the one fix that actually helps here.
const truncationHint = "output was truncated; try reducing the size of the prompt or the requested response"

// ProviderConfig configures the Claude provider.
type ProviderConfig struct {
	// Path overrides executable resolution with an explicit binary path.
	Path string
	// Model is the default model; aliased before being passed to the CLI.
	Model string
	// Timeout is the per-invocation wall-clock limit.
	Timeout time.Duration
	// WorkDir is the subprocess working directory.
	WorkDir string
}

// ClaudeProvider implements core.Provider on top of the claude CLI.
type ClaudeProvider struct {
	config   ProviderConfig
	launcher *Launcher
	logger   *logging.Logger
}

// NewClaudeProvider creates a Claude provider.
func NewClaudeProvider(cfg ProviderConfig, logger *logging.Logger) *ClaudeProvider {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.WithProvider("claude")
	return &ClaudeProvider{
		config:   cfg,
		launcher: NewLauncher(logger),
		logger:   logger,
	}
}

// Launcher exposes the underlying launcher for preflight/env configuration.
func (p *ClaudeProvider) Launcher() *Launcher {
	return p.launcher
}

// Name returns the provider identifier.
func (p *ClaudeProvider) Name() string {
	return "claude"
}

// pathCandidates returns the ordered executable paths to try. The
// user-local install location is preferred; the bare command name through
// $PATH is the fallback. No filesystem probing happens here: the launcher
// spawns and reacts to the error.
func (p *ClaudeProvider) pathCandidates() []string {
	if p.config.Path != "" {
		return []string{p.config.Path}
	}

	var candidates []string
	if home := os.Getenv("HOME"); home != "" {
		candidates = append(candidates, filepath.Join(home, ".claude", "local", defaultCommand))
	}
	return append(candidates, defaultCommand)
}

// buildArgs constructs the argument vector. JSON output is always
// requested; the prompt itself travels only on stdin.
func (p *ClaudeProvider) buildArgs(model string) []string {
	args := []string{"--print", "--output-format", "json"}

	if model == "" {
		model = p.config.Model
	}
	if model != "" {
		args = append(args, "--model", resolveModelAlias(model))
	}

	return args
}

// GenerateText runs one prompt and returns the generated text.
func (p *ClaudeProvider) GenerateText(ctx context.Context, req core.Request) (*core.TextResult, error) {
	prompt := formatPrompt(req.Messages)

	parsed, inv, err := p.run(ctx, req, prompt)
	if err != nil {
		return nil, err
	}

	text, _ := parsed["result"].(string)

	return &core.TextResult{
		Text:     text,
		Usage:    usageFrom(parsed),
		Duration: inv.Duration,
	}, nil
}

// GenerateObject runs one prompt and parses the response text as a JSON
// object conforming to req.Schema.
func (p *ClaudeProvider) GenerateObject(ctx context.Context, req core.Request) (*core.ObjectResult, error) {
	if strings.TrimSpace(req.Schema) == "" {
		return nil, core.ErrValidation(core.CodeSchemaMissing,
			"object generation requires a JSON schema")
	}

	prompt := formatPrompt(req.Messages) + schemaInstruction(req.Schema)

	parsed, inv, err := p.run(ctx, req, prompt)
	if err != nil {
		return nil, err
	}

	text, _ := parsed["result"].(string)
	object, err := parseLooseObject(text)
	if err != nil {
		return nil, p.translateFailure(err)
	}

	return &core.ObjectResult{
		Object:   object,
		Usage:    usageFrom(parsed),
		Duration: inv.Duration,
	}, nil
}

// Ping verifies the CLI is installed and responding. It reuses the
// launcher so the same candidate fallback applies.
func (p *ClaudeProvider) Ping(ctx context.Context) error {
	_, err := p.launcher.Invoke(ctx, Invocation{
		PathCandidates: p.pathCandidates(),
		Args:           []string{"--version"},
		Timeout:        30 * time.Second,
	})
	if err != nil {
		return p.translateFailure(err)
	}
	return nil
}

// Version returns the CLI's reported version string.
func (p *ClaudeProvider) Version(ctx context.Context) (string, error) {
	result, err := p.launcher.Invoke(ctx, Invocation{
		PathCandidates: p.pathCandidates(),
		Args:           []string{"--version"},
		Timeout:        30 * time.Second,
	})
	if err != nil {
		return "", p.translateFailure(err)
	}
	return strings.TrimSpace(result.Stdout), nil
}

// run executes one invocation end to end: format, spawn, extract,
// semantic error check.
func (p *ClaudeProvider) run(ctx context.Context, req core.Request, prompt string) (map[string]any, *InvocationResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, nil, core.ErrValidation(core.CodeEmptyPrompt, "prompt is empty")
	}
	if len(prompt) > core.MaxPromptLength {
		// Log-only threshold: long prompts often work, they just cost more
		// and truncate more often.
		p.logger.Warn("prompt exceeds recommended length",
			"length", len(prompt),
			"threshold", core.MaxPromptLength,
		)
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = p.config.Timeout
	}
	workDir := req.WorkDir
	if workDir == "" {
		workDir = p.config.WorkDir
	}

	result, err := p.launcher.Invoke(ctx, Invocation{
		PathCandidates: p.pathCandidates(),
		Args:           p.buildArgs(req.Model),
		Stdin:          prompt,
		Timeout:        timeout,
		WorkDir:        workDir,
	})
	if err != nil {
		return nil, nil, p.translateFailure(err)
	}

	parsed, err := Extract(result.Stdout, result.Stderr)
	if err != nil {
		return nil, nil, p.translateFailure(err)
	}

	// JSON validity and semantic success are independent: a well-formed
	// envelope can still carry is_error.
	if isErr, ok := parsed["is_error"].(bool); ok && isErr {
		msg, _ := parsed["result"].(string)
		if msg == "" {
			msg = "tool reported an error"
		}
		return nil, nil, core.ErrParse(core.CodeReportedError, msg)
	}

	return parsed, result, nil
}

// translateFailure maps selected failures to actionable messages while
// preserving their code and category.
func (p *ClaudeProvider) translateFailure(err error) error {
	var domErr *core.DomainError
	if !errors.As(err, &domErr) {
		return err
	}

	switch domErr.Code {
	case core.CodeExecutableNotFound:
		return core.ErrNotFound(core.CodeExecutableNotFound, installHint).WithCause(err)
	case core.CodeTruncatedOutput:
		return core.ErrParse(core.CodeTruncatedOutput, truncationHint).WithCause(err)
	}
	return err
}

// usageFrom shapes usage metadata from the parsed envelope. The CLI
// reports cost, not token counts, so the token fields stay zero.
func usageFrom(parsed map[string]any) core.Usage {
	usage := core.Usage{}
	if cost, ok := parsed["cost_usd"].(float64); ok {
		usage.CostUSD = cost
	}
	return usage
}

// schemaInstruction renders the schema injection block appended to object
// generation prompts.
func schemaInstruction(schema string) string {
	return fmt.Sprintf(
		"\n\nRespond only with a JSON object that conforms to this JSON schema, with no surrounding prose or code fences:\n%s",
		schema,
	)
}

// Ensure ClaudeProvider implements core.Provider.
var _ core.Provider = (*ClaudeProvider)(nil)
