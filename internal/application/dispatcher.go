package application

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"

	"atlassian-mcp/internal/domain"
)

// Dispatcher routes a tool invocation to its handler and normalizes the
// outcome into the MCP response envelope. It is the sole catch-all: no
// handler failure, backend error or panic escapes Invoke, and every call
// yields exactly one result.
type Dispatcher[C any] struct {
	holder *ClientHolder[C]
	tools  []Tool[C]
	index  map[string]int
	redact func(string) string
	log    *logrus.Logger
}

// NewDispatcher creates a dispatcher over an ordered tool registry.
// The redactor scrubs credentials from failure texts before they reach the
// envelope; nil means no scrubbing. A nil logger falls back to the logrus
// standard logger (which writes to stderr, keeping stdout free for the
// stdio transport).
func NewDispatcher[C any](holder *ClientHolder[C], tools []Tool[C], redact func(string) string, log *logrus.Logger) *Dispatcher[C] {
	if redact == nil {
		redact = func(s string) string { return s }
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	index := make(map[string]int, len(tools))
	for i, tool := range tools {
		index[tool.Name] = i
	}

	return &Dispatcher[C]{
		holder: holder,
		tools:  tools,
		index:  index,
		redact: redact,
		log:    log,
	}
}

// Tools returns the tool catalog in registration order, for capability
// advertisement. The catalog is static: identical across calls.
func (d *Dispatcher[C]) Tools() []mcp.Tool {
	catalog := make([]mcp.Tool, len(d.tools))
	for i, tool := range d.tools {
		catalog[i] = tool.Definition()
	}
	return catalog
}

// Invoke dispatches one tool call: registry lookup, argument validation,
// client acquisition, handler execution, envelope conversion. Failures of
// any kind become an isError envelope; the process is never terminated by
// a per-call failure.
func (d *Dispatcher[C]) Invoke(ctx context.Context, name string, args map[string]any) (result *mcp.CallToolResult) {
	defer func() {
		if r := recover(); r != nil {
			result = d.failure(name, fmt.Errorf("%s failed: internal error: %v", name, r))
		}
	}()

	idx, ok := d.index[name]
	if !ok {
		return d.failure(name, &domain.UnknownToolError{Tool: name})
	}
	tool := d.tools[idx]

	if err := tool.Validate(args); err != nil {
		return d.failure(name, err)
	}

	client, err := d.holder.Get()
	if err != nil {
		return d.failure(name, &domain.ConnectionError{Err: err})
	}

	d.log.WithField("tool", name).Debug("dispatching tool call")

	payload, err := tool.Handle(ctx, client, Arguments(args))
	if err != nil {
		return d.failure(name, fmt.Errorf("%s failed: %w", name, err))
	}

	return mcp.NewToolResultText(payload)
}

// failure converts any per-call error into the isError envelope, scrubbing
// credentials from the message first.
func (d *Dispatcher[C]) failure(name string, err error) *mcp.CallToolResult {
	msg := d.redact(err.Error())
	d.log.WithField("tool", name).Warn(msg)
	return mcp.NewToolResultError(msg)
}
