package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentloop/agents"
	"github.com/effective-security/agentloop/pkg/llms"
	"github.com/effective-security/agentloop/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	model        string
	out          string
	err          error
	lastPrompt   string
	lastMessages []llms.Message
}

func (p *stubProvider) GetProviderType() llms.ProviderType { return llms.ProviderOllama }
func (p *stubProvider) GetModel() string                   { return p.model }
func (p *stubProvider) SetModel(model string)              { p.model = model }

func (p *stubProvider) Generate(_ context.Context, prompt, _ string) (string, error) {
	p.lastPrompt = prompt
	return p.out, p.err
}

func (p *stubProvider) Chat(_ context.Context, messages []llms.Message) (string, error) {
	p.lastMessages = messages
	return p.out, p.err
}

func (p *stubProvider) GenerateWithTools(_ context.Context, prompt string, _ []llms.Tool, _ string, _ ...llms.RunOption) (string, error) {
	p.lastPrompt = prompt
	return p.out, p.err
}

func (p *stubProvider) ChatWithTools(_ context.Context, messages []llms.Message, _ []llms.Tool, _ ...llms.RunOption) (string, error) {
	p.lastMessages = messages
	return p.out, p.err
}

func newTestServer(prov *stubProvider) *httptest.Server {
	srv := server.New(agents.New(prov, agents.WithName("researcher")))
	return httptest.NewServer(srv)
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	prov := &stubProvider{model: "llama3.2", out: "hello there"}
	ts := newTestServer(prov)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/generate", "application/json",
		strings.NewReader(`{"model": "researcher", "prompt": "say hello"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "researcher", body["model"])
	assert.Equal(t, "hello there", body["response"])
	assert.Equal(t, true, body["done"])
	assert.EqualValues(t, 0, body["total_duration"])
	assert.EqualValues(t, 0, body["eval_count"])
	assert.NotEmpty(t, body["created_at"])
	assert.Equal(t, "say hello", prov.lastPrompt)
}

func TestChat(t *testing.T) {
	t.Parallel()

	prov := &stubProvider{out: "sure"}
	ts := newTestServer(prov)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/chat", "application/json",
		strings.NewReader(`{"model": "researcher", "messages": [{"role": "user", "content": "help me"}]}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Model   string `json:"model"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		Done bool `json:"done"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "assistant", body.Message.Role)
	assert.Equal(t, "sure", body.Message.Content)
	assert.True(t, body.Done)

	require.Len(t, prov.lastMessages, 1)
	assert.Equal(t, llms.RoleHuman, prov.lastMessages[0].Role)
	assert.Equal(t, "help me", prov.lastMessages[0].GetContent())
}

func TestChatCompletions(t *testing.T) {
	t.Parallel()

	prov := &stubProvider{out: "12345678"}
	ts := newTestServer(prov)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/v1/chat/completions", "application/json",
		strings.NewReader(`{"model": "researcher", "messages": [{"role": "user", "content": "abcdefgh"}]}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		ID      string `json:"id"`
		Object  string `json:"object"`
		Choices []struct {
			Index        int `json:"index"`
			Message      struct{ Role, Content string }
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, strings.HasPrefix(body.ID, "chatcmpl-"), body.ID)
	assert.Equal(t, "chat.completion", body.Object)
	require.Len(t, body.Choices, 1)
	assert.Equal(t, "stop", body.Choices[0].FinishReason)
	assert.Equal(t, "12345678", body.Choices[0].Message.Content)
	assert.Equal(t, 2, body.Usage.PromptTokens)
	assert.Equal(t, 2, body.Usage.CompletionTokens)
	assert.Equal(t, 4, body.Usage.TotalTokens)
}

func TestUnknownModel(t *testing.T) {
	t.Parallel()

	ts := newTestServer(&stubProvider{})
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/generate", "application/json",
		strings.NewReader(`{"model": "nope", "prompt": "hi"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["error"], "model not found")

	resp2, err := http.Post(ts.URL+"/v1/chat/completions", "application/json",
		strings.NewReader(`{"model": "nope", "messages": []}`))
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusNotFound, resp2.StatusCode)

	var oaiBody struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&oaiBody))
	assert.Equal(t, "invalid_request_error", oaiBody.Error.Type)
}

func TestAgentError(t *testing.T) {
	t.Parallel()

	ts := newTestServer(&stubProvider{err: errors.New("backend unavailable")})
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/chat", "application/json",
		strings.NewReader(`{"model": "researcher", "messages": [{"role": "user", "content": "hi"}]}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["error"], "backend unavailable")
}

func TestListings(t *testing.T) {
	t.Parallel()

	srv := server.New(
		agents.New(&stubProvider{}, agents.WithName("researcher")),
		agents.New(&stubProvider{}, agents.WithName("coder")),
	)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/tags")
	require.NoError(t, err)
	defer resp.Body.Close()

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tags))
	require.Len(t, tags.Models, 2)
	assert.Equal(t, "coder", tags.Models[0].Name)
	assert.Equal(t, "researcher", tags.Models[1].Name)

	resp2, err := http.Get(ts.URL + "/v1/models")
	require.NoError(t, err)
	defer resp2.Body.Close()

	var models struct {
		Object string `json:"object"`
		Data   []struct {
			ID      string `json:"id"`
			Object  string `json:"object"`
			OwnedBy string `json:"owned_by"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&models))
	assert.Equal(t, "list", models.Object)
	require.Len(t, models.Data, 2)
	assert.Equal(t, "model", models.Data[0].Object)
	assert.Equal(t, "agentloop", models.Data[0].OwnedBy)
}
