package application

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"atlassian-mcp/internal/domain"
)

// ArgType enumerates the argument types tools declare.
type ArgType string

// Supported argument types. These follow JSON Schema primitive names so the
// advertised inputSchema and the validator agree by construction.
const (
	ArgString  ArgType = "string"
	ArgInteger ArgType = "integer"
	ArgBoolean ArgType = "boolean"
	ArgObject  ArgType = "object"
)

// ArgSpec declares one argument of a tool: its type, whether it is
// required, and any value constraints. The same spec drives both the
// advertised JSON schema and incoming-call validation.
type ArgSpec struct {
	Name        string
	Description string
	Type        ArgType
	Required    bool
	// Enum restricts a string argument to a fixed value set.
	Enum []string
	// DefaultString/DefaultInt are advertised schema defaults. They are
	// hints for callers; handlers apply the same defaults when binding.
	DefaultString string
	DefaultInt    *int
	// Properties is the advertised sub-schema for object arguments.
	Properties map[string]any
}

// HandlerFunc translates validated arguments into a single backend
// operation and a textual payload. Handlers never catch backend errors;
// propagation to the dispatch boundary keeps normalization centralized.
type HandlerFunc[C any] func(ctx context.Context, client C, args Arguments) (string, error)

// Tool is one entry of the static tool registry: a name, a description,
// an argument schema and the handler bound to it.
type Tool[C any] struct {
	Name        string
	Description string
	Args        []ArgSpec
	Handle      HandlerFunc[C]
}

// Definition renders the registry entry as an MCP tool descriptor
// ({name, description, inputSchema}) for capability advertisement.
func (t Tool[C]) Definition() mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(t.Description)}

	for _, spec := range t.Args {
		var propOpts []mcp.PropertyOption
		if spec.Description != "" {
			propOpts = append(propOpts, mcp.Description(spec.Description))
		}
		if spec.Required {
			propOpts = append(propOpts, mcp.Required())
		}

		switch spec.Type {
		case ArgString:
			if spec.DefaultString != "" {
				propOpts = append(propOpts, mcp.DefaultString(spec.DefaultString))
			}
			if len(spec.Enum) > 0 {
				propOpts = append(propOpts, mcp.Enum(spec.Enum...))
			}
			opts = append(opts, mcp.WithString(spec.Name, propOpts...))
		case ArgInteger:
			if spec.DefaultInt != nil {
				propOpts = append(propOpts, mcp.DefaultNumber(float64(*spec.DefaultInt)))
			}
			opts = append(opts, mcp.WithNumber(spec.Name, propOpts...))
		case ArgBoolean:
			opts = append(opts, mcp.WithBoolean(spec.Name, propOpts...))
		case ArgObject:
			if spec.Properties != nil {
				propOpts = append(propOpts, mcp.Properties(spec.Properties))
			}
			opts = append(opts, mcp.WithObject(spec.Name, propOpts...))
		}
	}

	return mcp.NewTool(t.Name, opts...)
}

// Validate checks an untrusted argument bag against the tool's schema:
// every required argument present, every present argument of the declared
// type and within its value constraints. The first violation wins.
func (t Tool[C]) Validate(args map[string]any) error {
	for _, spec := range t.Args {
		value, present := args[spec.Name]
		if !present || value == nil {
			if spec.Required {
				return &domain.ValidationError{Detail: "missing required argument: " + spec.Name}
			}
			continue
		}
		if err := spec.check(value); err != nil {
			return err
		}
	}
	return nil
}

// check validates a single present value against its spec.
func (s ArgSpec) check(value any) error {
	switch s.Type {
	case ArgString:
		str, ok := value.(string)
		if !ok {
			return &domain.ValidationError{Detail: s.Name + " must be a string"}
		}
		if len(s.Enum) > 0 && !containsFold(s.Enum, str) {
			return &domain.ValidationError{
				Detail: fmt.Sprintf("%s must be one of: %s", s.Name, strings.Join(s.Enum, ", ")),
			}
		}
	case ArgInteger:
		switch v := value.(type) {
		case int:
		case float64:
			if v != math.Trunc(v) {
				return &domain.ValidationError{Detail: s.Name + " must be an integer"}
			}
		case json.Number:
			if _, err := v.Int64(); err != nil {
				return &domain.ValidationError{Detail: s.Name + " must be an integer"}
			}
		default:
			return &domain.ValidationError{Detail: s.Name + " must be an integer"}
		}
	case ArgBoolean:
		if _, ok := value.(bool); !ok {
			return &domain.ValidationError{Detail: s.Name + " must be a boolean"}
		}
	case ArgObject:
		if _, ok := value.(map[string]any); !ok {
			return &domain.ValidationError{Detail: s.Name + " must be an object"}
		}
	}
	return nil
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}
