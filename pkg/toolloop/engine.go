package toolloop

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentloop/pkg/llms"
	"github.com/effective-security/agentloop/pkg/llmutils"
	"github.com/effective-security/agentloop/pkg/metricskey"
	"github.com/effective-security/agentloop/pkg/sanitize"
	"github.com/effective-security/agentloop/tools"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/agentloop", "toolloop")

// SendFunc performs one model turn over the given transcript. toolDefs is
// nil for the plain fallback send.
type SendFunc func(ctx context.Context, history []llms.Message, toolDefs []llms.Tool) (*llms.ContentResponse, error)

// Config fixes the loop parameters for one engine. Adapters rebuild their
// engine when the model changes.
type Config struct {
	// Provider and Model tag metrics and log lines.
	Provider llms.ProviderType
	Model    string

	// MaxToolRounds bounds the number of tool rounds before the fallback.
	MaxToolRounds int
	// RequestDelay is slept before every send except the first.
	RequestDelay time.Duration
	// AppendToolResults appends raw tool results to the final answer.
	AppendToolResults bool
	// PerCallToolMessages emits one tool_call_id-addressed message per
	// executed call instead of a single merged report.
	PerCallToolMessages bool
}

// Engine drives the bounded tool-use loop shared by all provider adapters:
// send transcript, extract intents, execute tools, append results, repeat.
// One Run owns its transcript and round counter; engines are stateless
// across runs and safe for concurrent use.
type Engine struct {
	cfg  Config
	send SendFunc
	exec *tools.Executor
	san  *sanitize.Sanitizer

	// replaced in tests
	sleep func(ctx context.Context, d time.Duration) error
}

func NewEngine(cfg Config, send SendFunc, exec *tools.Executor, san *sanitize.Sanitizer) *Engine {
	if cfg.MaxToolRounds <= 0 {
		cfg.MaxToolRounds = 10
	}
	return &Engine{
		cfg:   cfg,
		send:  send,
		exec:  exec,
		san:   san,
		sleep: sleepCtx,
	}
}

// stop reasons that still carry a usable model turn
var validStopReasons = map[string]bool{
	"":               true,
	"stop":           true,
	"length":         true,
	"tool_calls":     true,
	"content_filter": true,
	"function_call":  true,
}

// Run executes the loop over the seeded transcript and returns the final
// answer. The transcript slice is not mutated; each round appends to an
// owned copy.
func (e *Engine) Run(ctx context.Context, history []llms.Message, toolDefs []llms.Tool, opts llms.RunOptions) (string, error) {
	transcript := make([]llms.Message, len(history))
	copy(transcript, history)

	var rawResults []string

	for round := 0; round < e.cfg.MaxToolRounds; round++ {
		if round > 0 {
			if err := e.sleep(ctx, e.cfg.RequestDelay); err != nil {
				return "", err
			}
		}

		resp, err := e.meteredSend(ctx, transcript, toolDefs)
		if err != nil {
			return "", err
		}
		choice, err := firstChoice(resp)
		if err != nil {
			return "", err
		}

		intents, mined := ExtractToolCalls(choice)
		if len(intents) == 0 {
			content := choice.Content
			if e.cfg.AppendToolResults && len(rawResults) > 0 {
				content = content + "\n\n" + strings.Join(rawResults, "\n")
			}
			return content, nil
		}
		if mined {
			metricskey.StatsToolCallsMined.IncrCounter(1, string(e.cfg.Provider), e.cfg.Model)
		}
		metricskey.StatsToolRounds.IncrCounter(1, string(e.cfg.Provider), e.cfg.Model)

		logger.ContextKV(ctx, xlog.DEBUG,
			"provider", e.cfg.Provider,
			"model", e.cfg.Model,
			"round", round+1,
			"tool_calls", len(intents),
			"mined", mined,
		)

		backfillToolCallIDs(intents)
		transcript = append(transcript, assistantTurn(choice, intents))
		transcript, rawResults = e.executeRound(ctx, transcript, rawResults, intents, opts)
	}

	// round budget exhausted: drop tool traffic and ask for a plain answer
	metricskey.StatsToolRoundsExhausted.IncrCounter(1, string(e.cfg.Provider), e.cfg.Model)
	if err := e.sleep(ctx, e.cfg.RequestDelay); err != nil {
		return "", err
	}

	resp, err := e.meteredSend(ctx, dropToolMessages(transcript), nil)
	if err != nil {
		return "", err
	}
	choice, err := firstChoice(resp)
	if err != nil {
		return "", err
	}
	return choice.Content, nil
}

// meteredSend wraps the send function with request, byte and latency metrics.
func (e *Engine) meteredSend(ctx context.Context, transcript []llms.Message, toolDefs []llms.Tool) (*llms.ContentResponse, error) {
	tagvals := []string{string(e.cfg.Provider), e.cfg.Model}
	metricskey.StatsLLMRequestsSent.IncrCounter(1, tagvals...)
	metricskey.StatsLLMBytesSent.IncrCounter(float64(llmutils.CountMessagesContentSize(transcript)), tagvals...)

	started := time.Now()
	resp, err := e.send(ctx, transcript, toolDefs)
	metricskey.PerfLLMCall.MeasureSince(started, tagvals...)
	if err != nil {
		return nil, err
	}
	metricskey.StatsLLMBytesReceived.IncrCounter(float64(llmutils.CountResponseContentSize(resp)), tagvals...)
	return resp, nil
}

// backfillToolCallIDs assigns a deterministic id to every intent that arrived
// without one, so the assistant turn and the tool result addressed to it
// carry the same id on the wire.
func backfillToolCallIDs(intents []llms.ToolCall) {
	for i := range intents {
		if intents[i].ID == "" {
			intents[i].ID = fmt.Sprintf("%s_%d", intents[i].FunctionCall.Name, i)
		}
	}
}

// executeRound runs every intent sequentially in model order and appends the
// round's result messages. Partial failures never abort sibling calls.
func (e *Engine) executeRound(ctx context.Context, transcript []llms.Message, rawResults []string, intents []llms.ToolCall, opts llms.RunOptions) ([]llms.Message, []string) {
	var blocks []string

	for _, intent := range intents {
		name := intent.FunctionCall.Name

		var res tools.Result
		args, err := NormalizeArguments(intent.FunctionCall.Arguments)
		if err != nil {
			res = tools.Result{Err: err.Error()}
		} else {
			res = e.exec.Execute(ctx, name, args, opts.Caller, opts.Observer)
		}
		rawResults = append(rawResults, res.String())

		block := llmutils.ToJSON(map[string]any{
			"tool":      name,
			"arguments": args,
			"result":    e.san.Sanitize(res.Payload()),
		})

		if e.cfg.PerCallToolMessages {
			transcript = append(transcript, llms.MessageFromToolResponse(llms.RoleTool, llms.ToolCallResponse{
				ToolCallID: intent.ID,
				Name:       name,
				Content:    block,
			}))
		} else {
			blocks = append(blocks, block)
		}
	}

	if !e.cfg.PerCallToolMessages {
		transcript = append(transcript, llms.MessageFromTextParts(llms.RoleTool, strings.Join(blocks, "\n")))
	}
	return transcript, rawResults
}

// assistantTurn renders the model's tool-call response as the assistant
// transcript entry preceding the round's tool results.
func assistantTurn(choice *llms.ContentChoice, intents []llms.ToolCall) llms.Message {
	msg := llms.Message{Role: llms.RoleAI}
	if choice.Content != "" {
		msg.Parts = append(msg.Parts, llms.TextPart(choice.Content))
	}
	for _, intent := range intents {
		msg.Parts = append(msg.Parts, intent)
	}
	return msg
}

func firstChoice(resp *llms.ContentResponse) (*llms.ContentChoice, error) {
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return nil, errors.New("model returned an empty response")
	}
	choice := resp.Choices[0]
	if !validStopReasons[choice.StopReason] {
		return nil, errors.Newf("unexpected finish reason: %s", choice.StopReason)
	}
	return choice, nil
}

func dropToolMessages(transcript []llms.Message) []llms.Message {
	out := make([]llms.Message, 0, len(transcript))
	for _, m := range transcript {
		if m.Role == llms.RoleTool {
			continue
		}
		out = append(out, m)
	}
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return errors.WithStack(ctx.Err())
	case <-t.C:
		return nil
	}
}
