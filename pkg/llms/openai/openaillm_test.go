package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/effective-security/agentloop/pkg/llms"
	"github.com/effective-security/agentloop/pkg/llms/openai"
	"github.com/effective-security/agentloop/tools"
	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type searchTool struct {
	calls []map[string]any
}

func (t *searchTool) Name() string                   { return "search" }
func (t *searchTool) Description() string            { return "Searches the web" }
func (t *searchTool) Parameters() *jsonschema.Schema { return &jsonschema.Schema{Type: "object"} }
func (t *searchTool) Execute(_ context.Context, args map[string]any) (any, error) {
	t.calls = append(t.calls, args)
	return map[string]any{"hits": 3}, nil
}

func chatResponse(msg map[string]any, finishReason string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-123",
		"object":  "chat.completion",
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{"index": 0, "message": msg, "finish_reason": finishReason}},
		"usage":   map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	}
}

func TestChatWithTools(t *testing.T) {
	tool := &searchTool{}
	var requests []map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		requests = append(requests, req)

		if len(requests) == 1 {
			// arguments are a JSON-encoded string on this protocol
			_ = json.NewEncoder(w).Encode(chatResponse(map[string]any{
				"role":    "assistant",
				"content": "",
				"tool_calls": []map[string]any{{
					"id":   "call_abc",
					"type": "function",
					"function": map[string]any{
						"name":      "search",
						"arguments": `{"query":"golang"}`,
					},
				}},
			}, "tool_calls"))
			return
		}
		_ = json.NewEncoder(w).Encode(chatResponse(map[string]any{
			"role":    "assistant",
			"content": "found 3 results",
		}, "stop"))
	}))
	defer srv.Close()

	registry := tools.NewRegistry()
	require.NoError(t, registry.Register(tool))
	llm, err := openai.New(
		openai.WithBaseURL(srv.URL),
		openai.WithToken("sk-test"),
		openai.WithRegistry(registry),
	)
	require.NoError(t, err)

	out, err := llm.GenerateWithTools(context.Background(), "search golang", registry.Definitions(), "be helpful")
	require.NoError(t, err)
	assert.Equal(t, "found 3 results", out)

	require.Len(t, tool.calls, 1)
	assert.Equal(t, map[string]any{"query": "golang"}, tool.calls[0])

	require.Len(t, requests, 2)
	assert.Equal(t, "auto", requests[0]["tool_choice"])

	// follow-up is addressed per call via tool_call_id
	msgs := requests[1]["messages"].([]any)
	require.Len(t, msgs, 4) // system, user, assistant, tool
	last := msgs[3].(map[string]any)
	assert.Equal(t, "tool", last["role"])
	assert.Equal(t, "call_abc", last["tool_call_id"])
	assert.Equal(t, "search", last["name"])
	assert.Contains(t, last["content"], `"success":true`)
}

func TestChatWithTools_ErrorAsString(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "rate limit exceeded", "type": "rate_limit"},
		})
	}))
	defer srv.Close()

	llm, err := openai.New(openai.WithBaseURL(srv.URL))
	require.NoError(t, err)

	out, err := llm.ChatWithTools(context.Background(),
		[]llms.Message{llms.MessageFromTextParts(llms.RoleHuman, "hi")}, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Error: openai provider error - ")
	assert.Contains(t, out, "rate limit exceeded")

	_, err = llm.Chat(context.Background(),
		[]llms.Message{llms.MessageFromTextParts(llms.RoleHuman, "hi")})
	require.Error(t, err)
}

func TestChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		msgs := req["messages"].([]any)
		require.Len(t, msgs, 1)
		assert.Equal(t, "user", msgs[0].(map[string]any)["role"])

		_ = json.NewEncoder(w).Encode(chatResponse(map[string]any{
			"role":    "assistant",
			"content": "hello",
		}, "stop"))
	}))
	defer srv.Close()

	llm, err := openai.New(openai.WithBaseURL(srv.URL), openai.WithModel("gpt-4o"))
	require.NoError(t, err)
	assert.Equal(t, llms.ProviderOpenAI, llm.GetProviderType())
	assert.Equal(t, "gpt-4o", llm.GetModel())

	out, err := llm.Chat(context.Background(),
		[]llms.Message{llms.MessageFromTextParts(llms.RoleHuman, "hi")})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}
