package llms

import (
	"github.com/invopop/jsonschema"
)

// Tool is a tool that can be used by the model.
type Tool struct {
	// Type is the type of the tool.
	Type string `json:"type"`
	// Function is the function to call.
	Function *FunctionDefinition `json:"function,omitempty"`
}

// FunctionDefinition is a definition of a function that can be called by the
// model.
type FunctionDefinition struct {
	// Name is the name of the function, unique within a registry.
	Name string `json:"name"`
	// Description is a description of the function.
	Description string `json:"description"`
	// Parameters is the JSON Schema object for the function parameters.
	Parameters *jsonschema.Schema `json:"parameters,omitempty"`
}
