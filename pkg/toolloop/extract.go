package toolloop

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentloop/pkg/llms"
	"github.com/effective-security/agentloop/pkg/llmutils"
)

// ExtractToolCalls returns the tool-call intents of one model turn. Native
// structured calls win; otherwise the response text is mined for a tool-call
// shaped JSON object, which some backends emit instead of structured calls.
// mined reports whether the intents came from text mining.
func ExtractToolCalls(choice *llms.ContentChoice) (intents []llms.ToolCall, mined bool) {
	for _, tc := range choice.ToolCalls {
		if tc.FunctionCall == nil || tc.FunctionCall.Name == "" {
			continue
		}
		intents = append(intents, tc)
	}
	if len(intents) > 0 {
		return intents, false
	}
	if tc, ok := MineToolCall(choice.Content); ok {
		return []llms.ToolCall{tc}, true
	}
	return nil, false
}

// MineToolCall recovers a single tool-call intent from unstructured response
// text: one leading/trailing code fence (```json, ```, or an unterminated
// fence) is stripped, and the remainder must be a JSON object carrying both
// a "name" and an "arguments" key.
func MineToolCall(text string) (llms.ToolCall, bool) {
	trimmed := llmutils.TrimBackticks(strings.TrimSpace(text))
	if !strings.HasPrefix(trimmed, "{") {
		return llms.ToolCall{}, false
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return llms.ToolCall{}, false
	}
	rawName, hasName := obj["name"]
	rawArgs, hasArgs := obj["arguments"]
	if !hasName || !hasArgs {
		return llms.ToolCall{}, false
	}

	var name string
	if err := json.Unmarshal(rawName, &name); err != nil || name == "" {
		return llms.ToolCall{}, false
	}

	return llms.ToolCall{
		Type: "function",
		FunctionCall: &llms.FunctionCall{
			Name:      name,
			Arguments: string(rawArgs),
		},
	}, true
}

// NormalizeArguments decodes tool-call arguments into a map. Backends differ:
// arguments arrive as a JSON object, as a JSON-encoded string containing an
// object, or empty.
func NormalizeArguments(args string) (map[string]any, error) {
	args = strings.TrimSpace(args)
	if args == "" || args == "null" {
		return map[string]any{}, nil
	}

	var v any
	if err := json.Unmarshal([]byte(args), &v); err != nil {
		return nil, errors.WithMessage(err, "failed to parse tool arguments")
	}
	switch val := v.(type) {
	case map[string]any:
		return val, nil
	case string:
		// double-encoded object
		var m map[string]any
		if err := json.Unmarshal([]byte(val), &m); err != nil {
			return nil, errors.WithMessage(err, "failed to parse tool arguments")
		}
		return m, nil
	default:
		return nil, errors.Newf("unexpected tool arguments type %T", v)
	}
}
