package cli

import (
	"encoding/json"
	"strings"

	"github.com/promptpipe/promptpipe/internal/core"
)

// maxSnippetLen bounds the diagnostic output snippet carried on failures,
// so a huge payload never ends up in an error message or a log line.
const maxSnippetLen = 256

// errorMarker flags output where the tool printed an error banner instead
// of (or in front of) a result. Checked before any parse attempt.
const errorMarker = "error:"

// Extract validates and parses captured CLI output into a JSON object.
//
// The pipeline is strict-then-lenient: empty check, error-marker check,
// strict parse of the whole output, then a single recovery pass over the
// first-{..last-} span for output wrapped in banner or logging noise.
// Failures are classified so callers can give targeted guidance:
// truncated output (no closing brace after an opening one) is
// distinguished from generally malformed JSON.
func Extract(stdout, stderr string) (map[string]any, error) {
	trimmed := strings.TrimSpace(stdout)

	if trimmed == "" {
		return nil, core.ErrParse(core.CodeEmptyOutput, "no output captured from tool").
			WithDetail("stderr", snippet(stderr))
	}

	if strings.Contains(strings.ToLower(trimmed), errorMarker) {
		return nil, core.ErrParse(core.CodeReportedError, "tool reported an error").
			WithDetail("output", snippet(trimmed))
	}

	var parsed map[string]any
	strictErr := json.Unmarshal([]byte(trimmed), &parsed)
	if strictErr == nil {
		return parsed, nil
	}

	start := strings.Index(trimmed, "{")
	if start == -1 {
		return nil, core.ErrParse(core.CodeNotJSON, "output contains no JSON object").
			WithDetail("output", snippet(trimmed))
	}

	// Recovery pass: the tool may wrap valid JSON in banner text.
	end := strings.LastIndex(trimmed, "}")
	if end > start {
		if err := json.Unmarshal([]byte(trimmed[start:end+1]), &parsed); err == nil {
			return parsed, nil
		}
	}

	// Well-formed JSON objects always end in a closing brace; its absence
	// is a higher-confidence diagnosis than a generic parse failure.
	if !strings.HasSuffix(trimmed, "}") {
		return nil, core.ErrParse(core.CodeTruncatedOutput, "output appears truncated").
			WithDetail("output", snippet(trimmed))
	}

	return nil, core.ErrParse(core.CodeMalformedJSON, "output is not valid JSON").
		WithCause(strictErr).
		WithDetail("output", snippet(trimmed))
}

// parseLooseObject applies the same strict-then-recovery parse to a text
// fragment, without the empty/marker stages. Used for object generation,
// where the JSON lives inside the result text rather than the envelope.
func parseLooseObject(text string) (map[string]any, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, core.ErrParse(core.CodeEmptyOutput, "empty result text")
	}

	var parsed map[string]any
	strictErr := json.Unmarshal([]byte(trimmed), &parsed)
	if strictErr == nil {
		return parsed, nil
	}

	start := strings.Index(trimmed, "{")
	if start == -1 {
		return nil, core.ErrParse(core.CodeNotJSON, "result text contains no JSON object").
			WithDetail("output", snippet(trimmed))
	}

	end := strings.LastIndex(trimmed, "}")
	if end > start {
		if err := json.Unmarshal([]byte(trimmed[start:end+1]), &parsed); err == nil {
			return parsed, nil
		}
	}

	if !strings.HasSuffix(trimmed, "}") {
		return nil, core.ErrParse(core.CodeTruncatedOutput, "result text appears truncated").
			WithDetail("output", snippet(trimmed))
	}

	return nil, core.ErrParse(core.CodeMalformedJSON, "result text is not valid JSON").
		WithCause(strictErr).
		WithDetail("output", snippet(trimmed))
}

// snippet returns a bounded prefix of s for diagnostics.
func snippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxSnippetLen {
		return s
	}
	return s[:maxSnippetLen] + "..."
}
