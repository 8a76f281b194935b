// Package cli adapts locally-installed AI command-line tools into the
// core.Provider interface: it resolves the executable, runs it as a
// subprocess with the prompt on stdin, and recovers a structured result
// from whatever the tool printed.
package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/promptpipe/promptpipe/internal/core"
	"github.com/promptpipe/promptpipe/internal/diagnostics"
	"github.com/promptpipe/promptpipe/internal/logging"
)

// DefaultTimeout bounds an invocation when neither the request nor the
// configuration sets one.
const DefaultTimeout = 2 * time.Minute

// Invocation describes a single subprocess run.
type Invocation struct {
	// PathCandidates is the ordered list of executable paths to try.
	// Each candidate is attempted by spawning, not by probing the
	// filesystem; a "not found" spawn error moves to the next candidate.
	PathCandidates []string
	// Args is the argument vector, excluding the executable name.
	Args []string
	// Stdin is the full input payload, written up front and then closed.
	Stdin string
	// Timeout is the wall-clock limit; DefaultTimeout when zero.
	Timeout time.Duration
	// WorkDir is the subprocess working directory.
	WorkDir string
}

// InvocationResult holds captured output from a zero-exit invocation.
type InvocationResult struct {
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Launcher spawns CLI subprocesses with piped stdio and a timeout.
type Launcher struct {
	logger    *logging.Logger
	preflight *diagnostics.Preflight

	// ExtraEnv holds additional environment variables for the subprocess,
	// applied on top of the current process environment.
	ExtraEnv map[string]string
}

// NewLauncher creates a launcher.
func NewLauncher(logger *logging.Logger) *Launcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Launcher{logger: logger}
}

// WithPreflight enables a resource check before each spawn.
func (l *Launcher) WithPreflight(p *diagnostics.Preflight) *Launcher {
	l.preflight = p
	return l
}

// Invoke runs the invocation and returns captured output on a zero exit.
//
// Candidates are tried in order: a spawn failing with "executable not
// found" falls through to the next candidate transparently; any other
// failure settles the invocation immediately. Exactly one outcome is
// produced per call.
func (l *Launcher) Invoke(ctx context.Context, inv Invocation) (*InvocationResult, error) {
	if len(inv.PathCandidates) == 0 {
		return nil, core.ErrValidation(core.CodeNoPath, "no executable path candidates supplied")
	}

	if l.preflight != nil {
		check := l.preflight.Run()
		if !check.OK {
			return nil, core.ErrExecution(core.CodePreflightFailed,
				fmt.Sprintf("preflight check failed: %v", check.Errors))
		}
		for _, w := range check.Warnings {
			l.logger.Warn("preflight warning before spawn", "warning", w)
		}
	}

	last := len(inv.PathCandidates) - 1
	for i, path := range inv.PathCandidates {
		result, err := l.invokeOnce(ctx, path, inv)
		if err != nil && core.IsCode(err, core.CodeExecutableNotFound) && i < last {
			l.logger.Info("cli: executable not found, falling back",
				"path", path,
				"next", inv.PathCandidates[i+1],
			)
			continue
		}
		return result, err
	}

	// Unreachable: the final candidate always returns above.
	return nil, core.ErrNotFound(core.CodeExecutableNotFound, "no executable candidate could be spawned")
}

// invokeOnce runs a single candidate to completion.
func (l *Launcher) invokeOnce(ctx context.Context, path string, inv Invocation) (*InvocationResult, error) {
	timeout := inv.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logger := l.logger.WithInvocation(uuid.NewString()[:8])

	// #nosec G204 -- path and args come from validated provider config
	cmd := exec.CommandContext(ctx, path, inv.Args...)
	if inv.WorkDir != "" {
		cmd.Dir = inv.WorkDir
	}

	// The tool expects the whole prompt followed by EOF; no interactive
	// writing, and never the parent's terminal.
	cmd.Stdin = strings.NewReader(inv.Stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	cmd.Env = os.Environ()
	for k, v := range l.ExtraEnv {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	stdinPreview := inv.Stdin
	if len(stdinPreview) > 500 {
		stdinPreview = stdinPreview[:500] + "... [truncated]"
	}
	logger.Info("cli: spawning",
		"path", path,
		"args", inv.Args,
		"work_dir", cmd.Dir,
		"stdin_length", len(inv.Stdin),
		"stdin_preview", stdinPreview,
		"timeout", timeout,
	)

	startTime := time.Now()

	if err := cmd.Start(); err != nil {
		if isNotFoundErr(err) {
			logger.Warn("cli: executable not found", "path", path)
			return nil, core.ErrNotFound(core.CodeExecutableNotFound,
				fmt.Sprintf("executable not found: %s", path)).WithCause(err)
		}
		logger.Error("cli: spawn failed", "path", path, "error", err)
		return nil, core.ErrExecution(core.CodeLaunchFailed,
			fmt.Sprintf("starting %s: %v", path, err)).WithCause(err)
	}

	logger.Debug("cli: process started", "pid", cmd.Process.Pid)

	err := cmd.Wait()
	duration := time.Since(startTime)

	result := &InvocationResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: duration,
	}

	if ctx.Err() == context.DeadlineExceeded {
		logger.Error("cli: timeout",
			"path", path,
			"duration", duration,
			"timeout", timeout,
			"stdout_length", len(result.Stdout),
			"stderr_length", len(result.Stderr),
		)
		return nil, core.ErrTimeout(
			fmt.Sprintf("command timed out after %v", timeout)).
			WithDetail("elapsed_ms", duration.Milliseconds())
	}
	if ctx.Err() == context.Canceled {
		logger.Info("cli: cancelled", "path", path, "duration", duration)
		return nil, core.ErrExecution(core.CodeCancelled, "invocation cancelled by caller")
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code := exitErr.ExitCode()
			logger.Error("cli: non-zero exit",
				"path", path,
				"exit_code", code,
				"duration", duration,
				"stderr", truncateForLog(result.Stderr, 2000),
			)
			return nil, classifyExitError(code, result.Stderr)
		}
		logger.Error("cli: wait failed", "path", path, "error", err)
		return nil, core.ErrExecution(core.CodeLaunchFailed,
			fmt.Sprintf("running %s: %v", path, err)).WithCause(err)
	}

	logger.Info("cli: completed",
		"path", path,
		"duration", duration,
		"stdout_length", len(result.Stdout),
		"stderr_length", len(result.Stderr),
	)

	return result, nil
}

// classifyExitError converts a non-zero exit into a domain error, with the
// captured stderr carried verbatim.
func classifyExitError(code int, stderr string) error {
	msg := strings.TrimSpace(stderr)
	if msg == "" {
		msg = "(no error output captured)"
	}

	lower := strings.ToLower(msg)
	if strings.Contains(lower, "rate limit") || strings.Contains(lower, "too many requests") || strings.Contains(lower, "429") {
		return core.ErrRateLimit(msg).WithDetail("exit_code", code)
	}

	return core.ErrExecution(core.CodeNonZeroExit,
		fmt.Sprintf("command failed with exit code %d: %s", code, msg)).
		WithDetail("exit_code", code).
		WithDetail("stderr", stderr)
}

// isNotFoundErr reports whether a spawn error means the binary is missing.
// A bare name resolved through $PATH yields exec.ErrNotFound; an explicit
// path yields ENOENT from the kernel.
func isNotFoundErr(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist)
}

func truncateForLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "... [truncated]"
}
