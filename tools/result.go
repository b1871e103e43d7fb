package tools

import (
	"github.com/effective-security/agentloop/pkg/llmutils"
)

// Result is the total outcome of a tool dispatch. Execution never surfaces a
// Go error to the loop; failures are carried in Err and rendered into the
// transcript like any other result.
type Result struct {
	// Err is the failure description, empty on success.
	Err string
	// Data is the tool's return value on success.
	Data any
}

// Failed reports whether the dispatch failed.
func (r Result) Failed() bool {
	return r.Err != ""
}

// Payload renders the result as the map entered into the transcript:
// {"error": msg} on failure, {"success": true, ...fields} on success.
func (r Result) Payload() map[string]any {
	if r.Err != "" {
		return map[string]any{"error": r.Err}
	}
	out := map[string]any{"success": true}
	switch v := r.Data.(type) {
	case nil:
	case map[string]any:
		for k, val := range v {
			if k != "success" {
				out[k] = val
			}
		}
	default:
		out["result"] = v
	}
	return out
}

func (r Result) String() string {
	return llmutils.ToJSON(r.Payload())
}
