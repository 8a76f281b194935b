package cli

import (
	"context"

	"github.com/promptpipe/promptpipe/internal/core"
)

// StreamText exposes GenerateText through a streaming-shaped interface.
//
// The CLI has no incremental output mode, so this is a compatibility shim
// for callers that expect a stream: the full result is obtained first,
// then delivered as exactly one chunk, with usage following on its own
// channel. It is not real incremental delivery and should not be built on
// as if it were.
func (p *ClaudeProvider) StreamText(ctx context.Context, req core.Request) (*core.TextStream, error) {
	result, err := p.GenerateText(ctx, req)
	if err != nil {
		return nil, err
	}

	chunks := make(chan string, 1)
	usage := make(chan core.Usage, 1)

	chunks <- result.Text
	close(chunks)
	usage <- result.Usage
	close(usage)

	return &core.TextStream{
		Chunks: chunks,
		Usage:  usage,
	}, nil
}
