package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/promptpipe/promptpipe/internal/core"
)

// fakeClaude writes a fake claude binary whose stdout is the given
// envelope. The received args and stdin are captured to files next to it.
func fakeClaude(t *testing.T, envelope string) (path, argsFile, stdinFile string) {
	t.Helper()
	dir := t.TempDir()
	argsFile = filepath.Join(dir, "args")
	stdinFile = filepath.Join(dir, "stdin")
	body := fmt.Sprintf(`printf '%%s' "$*" > %q
cat > %q
printf '%%s' '%s'`, argsFile, stdinFile, envelope)
	return writeScript(t, body), argsFile, stdinFile
}

func newTestProvider(t *testing.T, envelope string) (*ClaudeProvider, string, string) {
	t.Helper()
	path, argsFile, stdinFile := fakeClaude(t, envelope)
	p := NewClaudeProvider(ProviderConfig{
		Path:    path,
		Timeout: 10 * time.Second,
	}, nil)
	return p, argsFile, stdinFile
}

func TestClaudeProvider_GenerateText(t *testing.T) {
	p, _, stdinFile := newTestProvider(t, `{"result":"hi","cost_usd":0.002,"is_error":false}`)

	result, err := p.GenerateText(context.Background(), core.Request{
		Messages: []core.Message{
			{Role: core.RoleSystem, Content: "return JSON"},
			{Role: core.RoleUser, Content: "Say hi"},
		},
	})
	if err != nil {
		t.Fatalf("GenerateText() error = %v", err)
	}

	if result.Text != "hi" {
		t.Errorf("Text = %q, want %q", result.Text, "hi")
	}
	want := core.Usage{InputTokens: 0, OutputTokens: 0, TotalTokens: 0, CostUSD: 0.002}
	if result.Usage != want {
		t.Errorf("Usage = %+v, want %+v", result.Usage, want)
	}

	stdin, err := os.ReadFile(stdinFile)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(stdin); got != "System: return JSON\n\nSay hi" {
		t.Errorf("prompt on stdin = %q", got)
	}
}

func TestClaudeProvider_ArgumentVector(t *testing.T) {
	p, argsFile, _ := newTestProvider(t, `{"result":"ok"}`)

	_, err := p.GenerateText(context.Background(), core.Request{
		Messages: []core.Message{{Role: core.RoleUser, Content: "hello"}},
		Model:    "claude-3-5-sonnet-20241022",
	})
	if err != nil {
		t.Fatal(err)
	}

	args, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatal(err)
	}
	got := string(args)
	if got != "--print --output-format json --model sonnet" {
		t.Errorf("args = %q", got)
	}
}

func TestClaudeProvider_NoModelFlagWithoutModel(t *testing.T) {
	p, argsFile, _ := newTestProvider(t, `{"result":"ok"}`)

	_, err := p.GenerateText(context.Background(), core.Request{
		Messages: []core.Message{{Role: core.RoleUser, Content: "hello"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	args, _ := os.ReadFile(argsFile)
	if got := string(args); got != "--print --output-format json" {
		t.Errorf("args = %q", got)
	}
}

func TestClaudeProvider_SemanticError(t *testing.T) {
	p, _, _ := newTestProvider(t, `{"result":"credit balance exhausted","cost_usd":0,"is_error":true}`)

	_, err := p.GenerateText(context.Background(), core.Request{
		Messages: []core.Message{{Role: core.RoleUser, Content: "hello"}},
	})
	if !core.IsCode(err, core.CodeReportedError) {
		t.Fatalf("error = %v, want REPORTED_ERROR", err)
	}
	if !strings.Contains(err.Error(), "credit balance exhausted") {
		t.Errorf("error = %v, want the tool's message", err)
	}
}

func TestClaudeProvider_NonZeroExitCarriesStderr(t *testing.T) {
	path := writeScript(t, `printf 'rate limited' >&2
exit 1`)
	p := NewClaudeProvider(ProviderConfig{Path: path, Timeout: 10 * time.Second}, nil)

	_, err := p.GenerateText(context.Background(), core.Request{
		Messages: []core.Message{{Role: core.RoleUser, Content: "hello"}},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("error = %v, want literal stderr text", err)
	}
}

func TestClaudeProvider_ExecutableNotFound(t *testing.T) {
	p := NewClaudeProvider(ProviderConfig{
		Path:    filepath.Join(t.TempDir(), "claude"),
		Timeout: 10 * time.Second,
	}, nil)

	_, err := p.GenerateText(context.Background(), core.Request{
		Messages: []core.Message{{Role: core.RoleUser, Content: "hello"}},
	})
	if !core.IsCode(err, core.CodeExecutableNotFound) {
		t.Fatalf("error = %v, want EXECUTABLE_NOT_FOUND", err)
	}
	if !strings.Contains(err.Error(), "npm install") {
		t.Errorf("error = %v, want install remediation", err)
	}
}

func TestClaudeProvider_TruncatedOutputGuidance(t *testing.T) {
	p, _, _ := newTestProvider(t, `{"result":"partia`)

	_, err := p.GenerateText(context.Background(), core.Request{
		Messages: []core.Message{{Role: core.RoleUser, Content: "hello"}},
	})
	if !core.IsCode(err, core.CodeTruncatedOutput) {
		t.Fatalf("error = %v, want TRUNCATED_OUTPUT", err)
	}
	if !strings.Contains(err.Error(), "reducing the size") {
		t.Errorf("error = %v, want size-reduction guidance", err)
	}
}

func TestClaudeProvider_EmptyPrompt(t *testing.T) {
	p, _, _ := newTestProvider(t, `{"result":"ok"}`)

	_, err := p.GenerateText(context.Background(), core.Request{})
	if !core.IsCode(err, core.CodeEmptyPrompt) {
		t.Errorf("error = %v, want EMPTY_PROMPT", err)
	}
}

func TestClaudeProvider_GenerateObject(t *testing.T) {
	// The envelope's result field holds the model text, which itself
	// contains the requested object wrapped in prose.
	envelope := `{"result":"Here you go:\n{\"name\":\"Ada\",\"age\":36}","cost_usd":0.003,"is_error":false}`
	p, _, stdinFile := newTestProvider(t, envelope)

	schema := `{"type":"object","properties":{"name":{"type":"string"},"age":{"type":"number"}}}`
	result, err := p.GenerateObject(context.Background(), core.Request{
		Messages: []core.Message{{Role: core.RoleUser, Content: "Describe Ada"}},
		Schema:   schema,
	})
	if err != nil {
		t.Fatalf("GenerateObject() error = %v", err)
	}

	if result.Object["name"] != "Ada" {
		t.Errorf("Object[name] = %v", result.Object["name"])
	}
	if result.Object["age"] != 36.0 {
		t.Errorf("Object[age] = %v", result.Object["age"])
	}
	if result.Usage.CostUSD != 0.003 {
		t.Errorf("CostUSD = %v", result.Usage.CostUSD)
	}

	stdin, _ := os.ReadFile(stdinFile)
	if !strings.Contains(string(stdin), schema) {
		t.Error("schema should be injected into the prompt")
	}
	if !strings.Contains(string(stdin), "Describe Ada") {
		t.Error("user message should precede the schema block")
	}
}

func TestClaudeProvider_GenerateObject_SchemaMissing(t *testing.T) {
	p, _, _ := newTestProvider(t, `{"result":"ok"}`)

	_, err := p.GenerateObject(context.Background(), core.Request{
		Messages: []core.Message{{Role: core.RoleUser, Content: "hello"}},
	})
	if !core.IsCode(err, core.CodeSchemaMissing) {
		t.Errorf("error = %v, want SCHEMA_MISSING", err)
	}
}

func TestClaudeProvider_GenerateObject_NonObjectResult(t *testing.T) {
	p, _, _ := newTestProvider(t, `{"result":"I refuse to produce JSON.","is_error":false}`)

	_, err := p.GenerateObject(context.Background(), core.Request{
		Messages: []core.Message{{Role: core.RoleUser, Content: "hello"}},
		Schema:   `{"type":"object"}`,
	})
	if !core.IsCode(err, core.CodeNotJSON) {
		t.Errorf("error = %v, want NOT_JSON", err)
	}
}

func TestClaudeProvider_Ping(t *testing.T) {
	path := writeScript(t, `printf '1.0.42 (test)\n'`)
	p := NewClaudeProvider(ProviderConfig{Path: path}, nil)

	if err := p.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}

	version, err := p.Version(context.Background())
	if err != nil {
		t.Fatalf("Version() error = %v", err)
	}
	if version != "1.0.42 (test)" {
		t.Errorf("Version() = %q", version)
	}
}

func TestClaudeProvider_PathCandidates(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	p := NewClaudeProvider(ProviderConfig{}, nil)

	got := p.pathCandidates()
	want := []string{"/home/tester/.claude/local/claude", "claude"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("pathCandidates() = %v, want %v", got, want)
	}

	t.Setenv("HOME", "")
	got = p.pathCandidates()
	if len(got) != 1 || got[0] != "claude" {
		t.Errorf("pathCandidates() without HOME = %v, want [claude]", got)
	}
}

func TestClaudeProvider_Name(t *testing.T) {
	p := NewClaudeProvider(ProviderConfig{}, nil)
	if p.Name() != "claude" {
		t.Errorf("Name() = %q", p.Name())
	}
}
