package ollamaclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"
)

const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.2"
)

// ErrEmptyResponse is returned when the Ollama API returns an empty response.
var ErrEmptyResponse = errors.New("empty response")

// Doer performs a HTTP request.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a client for a local Ollama daemon.
type Client struct {
	Model string

	baseURL    string
	keepAlive  string
	httpClient Doer
}

// New returns a new Ollama client.
func New(model, baseURL, keepAlive string, httpClient Doer) (*Client, error) {
	c := &Client{
		Model:      model,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		keepAlive:  keepAlive,
		httpClient: httpClient,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	return c, nil
}

// Message is one chat transcript entry on the wire.
type Message struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// ToolCall is a structured tool invocation returned by the daemon.
// Arguments arrive pre-parsed, not as a JSON string.
type ToolCall struct {
	Function FunctionCall `json:"function"`
}

type FunctionCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type Tool struct {
	Type     string   `json:"type"`
	Function Function `json:"function"`
}

type Function struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters"`
}

// Options are the model options passed through to the daemon.
type Options struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumCtx      int     `json:"num_ctx,omitempty"`
}

type GenerateRequest struct {
	Model     string   `json:"model"`
	Prompt    string   `json:"prompt"`
	System    string   `json:"system,omitempty"`
	Stream    bool     `json:"stream"`
	Options   *Options `json:"options,omitempty"`
	KeepAlive string   `json:"keep_alive,omitempty"`
}

type GenerateResponse struct {
	Model      string `json:"model"`
	Response   string `json:"response"`
	Done       bool   `json:"done"`
	DoneReason string `json:"done_reason"`
}

type ChatRequest struct {
	Model     string    `json:"model"`
	Messages  []Message `json:"messages"`
	Stream    bool      `json:"stream"`
	Tools     []Tool    `json:"tools,omitempty"`
	Options   *Options  `json:"options,omitempty"`
	KeepAlive string    `json:"keep_alive,omitempty"`
}

type ChatResponse struct {
	Model      string   `json:"model"`
	Message    *Message `json:"message"`
	Done       bool     `json:"done"`
	DoneReason string   `json:"done_reason"`

	PromptEvalCount int `json:"prompt_eval_count"`
	EvalCount       int `json:"eval_count"`
}

// Generate runs a single non-streaming completion.
func (c *Client) Generate(ctx context.Context, r *GenerateRequest) (*GenerateResponse, error) {
	if r.Model == "" {
		r.Model = c.Model
	}
	if r.KeepAlive == "" {
		r.KeepAlive = c.keepAlive
	}
	r.Stream = false

	var resp GenerateResponse
	if err := c.do(ctx, "/api/generate", r, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Chat runs a single non-streaming chat turn.
func (c *Client) Chat(ctx context.Context, r *ChatRequest) (*ChatResponse, error) {
	if r.Model == "" {
		r.Model = c.Model
	}
	if r.KeepAlive == "" {
		r.KeepAlive = c.keepAlive
	}
	r.Stream = false

	var resp ChatResponse
	if err := c.do(ctx, "/api/chat", r, &resp); err != nil {
		return nil, err
	}
	if resp.Message == nil {
		return nil, ErrEmptyResponse
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, path string, payload, out any) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payloadBytes))
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")

	r, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "send request")
	}
	defer func() {
		_ = r.Body.Close()
	}()

	if r.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("API returned unexpected status code: %d", r.StatusCode)

		var errResp errorMessage
		if err := json.NewDecoder(r.Body).Decode(&errResp); err != nil || errResp.Error == "" {
			return errors.New(msg) // nolint:goerr113
		}
		return errors.Errorf("%s: %s", msg, errResp.Error) // nolint:goerr113
	}

	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}

type errorMessage struct {
	Error string `json:"error"`
}
