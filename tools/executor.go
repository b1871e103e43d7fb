package tools

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentloop/pkg/llms"
	"github.com/effective-security/agentloop/pkg/llmutils"
	"github.com/effective-security/agentloop/pkg/metricskey"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/agentloop", "tools")

// Executor dispatches tool-call intents against a registry and, for
// MCP-prefixed names, against the agent's server connections. Execute is
// total: it never panics and never returns a Go error, every failure becomes
// a Result the model can read.
type Executor struct {
	registry *Registry
}

func NewExecutor(registry *Registry) *Executor {
	return &Executor{
		registry: registry,
	}
}

// Execute runs one tool-call intent. caller may be nil when the agent has no
// MCP connections; observer may be nil.
func (e *Executor) Execute(ctx context.Context, name string, args map[string]any, caller llms.MCPCaller, observer llms.ToolObserver) Result {
	started := time.Now()
	defer metricskey.PerfToolCall.MeasureSince(started, name)

	argsJSON := llmutils.ToJSON(args)
	notifyStart(ctx, observer, name, argsJSON)

	var res Result
	if strings.HasPrefix(strings.ToLower(name), MCPPrefix) {
		res = e.executeMCP(ctx, name, args, caller)
	} else {
		res = e.executeLocal(ctx, name, args)
	}

	if res.Failed() {
		metricskey.StatsToolCallsFailed.IncrCounter(1, name)
		notifyError(ctx, observer, name, argsJSON, errors.New(res.Err))
	} else {
		metricskey.StatsToolCallsSucceeded.IncrCounter(1, name)
		notifyEnd(ctx, observer, name, argsJSON, res.String())
	}
	return res
}

func (e *Executor) executeMCP(ctx context.Context, name string, args map[string]any, caller llms.MCPCaller) (res Result) {
	if caller == nil {
		return Result{Err: "Agent instance required for MCP tool execution"}
	}
	defer func() {
		if r := recover(); r != nil {
			logger.ContextKV(ctx, xlog.ERROR, "reason", "tool_panic", "tool", name, "recovered", r)
			res = Result{Err: errors.Newf("MCP tool execution failed for %s: panic: %v", name, r).Error()}
		}
	}()

	out, err := caller.ExecuteMCPTool(ctx, name, args)
	if err != nil {
		return Result{Err: errors.WithMessagef(err, "MCP tool execution failed for %s", name).Error()}
	}
	return Result{Data: out}
}

func (e *Executor) executeLocal(ctx context.Context, name string, args map[string]any) (res Result) {
	tool, ok := e.registry.Get(name)
	if !ok {
		metricskey.StatsToolCallsNotFound.IncrCounter(1, name)
		return Result{Err: errors.Newf("Tool %s not found in registry", name).Error()}
	}
	defer func() {
		if r := recover(); r != nil {
			logger.ContextKV(ctx, xlog.ERROR, "reason", "tool_panic", "tool", name, "recovered", r)
			res = Result{Err: errors.Newf("Local tool execution failed for %s: panic: %v", name, r).Error()}
		}
	}()

	out, err := tool.Execute(ctx, args)
	if err != nil {
		return Result{Err: errors.WithMessagef(err, "Local tool execution failed for %s", name).Error()}
	}
	return Result{Data: out}
}

// Observer panics must not alter the dispatch outcome.

func notifyStart(ctx context.Context, observer llms.ToolObserver, name, args string) {
	if observer == nil {
		return
	}
	defer func() { _ = recover() }()
	observer.OnToolStart(ctx, name, args)
}

func notifyEnd(ctx context.Context, observer llms.ToolObserver, name, args, result string) {
	if observer == nil {
		return
	}
	defer func() { _ = recover() }()
	observer.OnToolEnd(ctx, name, args, result)
}

func notifyError(ctx context.Context, observer llms.ToolObserver, name, args string, err error) {
	if observer == nil {
		return
	}
	defer func() { _ = recover() }()
	observer.OnToolError(ctx, name, args, err)
}
