package tools

import (
	"context"

	"github.com/effective-security/agentloop/pkg/llms"
	"github.com/invopop/jsonschema"
)

//go:generate mockgen -source=tool.go -destination=../mocks/mocktools/tools_mock.gen.go -package mocktools

// MCPPrefix marks tool names that are dispatched to a connected MCP server
// instead of the local registry. The full form is mcp_<server>_<tool>.
const MCPPrefix = "mcp_"

// Tool is a locally implemented function the model can invoke.
type Tool interface {
	// Name returns the name of the Tool.
	Name() string
	// Description returns the description of the tool, to be used in the prompt.
	// Should not exceed LLM model limit.
	Description() string
	// Parameters returns the JSON schema of the tool arguments.
	Parameters() *jsonschema.Schema

	// Execute runs the tool with already-decoded arguments.
	Execute(ctx context.Context, args map[string]any) (any, error)
}

// Definition renders a tool as the wire-level function declaration sent to
// the model.
func Definition(t Tool) llms.Tool {
	return llms.Tool{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		},
	}
}
