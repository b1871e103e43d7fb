package agents

import (
	"context"
	"testing"

	"github.com/effective-security/agentloop/chatmodel"
	"github.com/effective-security/agentloop/mocks/mockllms"
	"github.com/effective-security/agentloop/pkg/llms"
	"github.com/effective-security/agentloop/store"
	"github.com/effective-security/agentloop/tools"
	"github.com/invopop/jsonschema"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type stubProvider struct {
	model string

	lastPrompt   string
	lastSystem   string
	lastMessages []llms.Message
	lastTools    []llms.Tool
	lastOpts     llms.RunOptions

	out string
	err error
}

func (p *stubProvider) GetProviderType() llms.ProviderType { return llms.ProviderOllama }
func (p *stubProvider) GetModel() string                   { return p.model }
func (p *stubProvider) SetModel(model string)              { p.model = model }

func (p *stubProvider) Generate(_ context.Context, prompt, system string) (string, error) {
	p.lastPrompt, p.lastSystem = prompt, system
	return p.out, p.err
}

func (p *stubProvider) Chat(_ context.Context, messages []llms.Message) (string, error) {
	p.lastMessages = messages
	return p.out, p.err
}

func (p *stubProvider) GenerateWithTools(_ context.Context, prompt string, toolDefs []llms.Tool, system string, opts ...llms.RunOption) (string, error) {
	p.lastPrompt, p.lastSystem, p.lastTools = prompt, system, toolDefs
	p.lastOpts = llms.NewRunOptions(opts...)
	return p.out, p.err
}

func (p *stubProvider) ChatWithTools(_ context.Context, messages []llms.Message, toolDefs []llms.Tool, opts ...llms.RunOption) (string, error) {
	p.lastMessages, p.lastTools = messages, toolDefs
	p.lastOpts = llms.NewRunOptions(opts...)
	return p.out, p.err
}

type echoTool struct{}

func (echoTool) Name() string                  { return "echo" }
func (echoTool) Description() string           { return "Echoes input back." }
func (echoTool) Parameters() *jsonschema.Schema { return &jsonschema.Schema{Type: "object"} }
func (echoTool) Execute(_ context.Context, args map[string]any) (any, error) {
	return args, nil
}

type fakeSession struct {
	lastName string
	lastArgs map[string]any
	result   *mcpsdk.CallToolResult
	err      error
	closed   bool
}

func (s *fakeSession) CallTool(_ context.Context, params *mcpsdk.CallToolParams) (*mcpsdk.CallToolResult, error) {
	s.lastName = params.Name
	if args, ok := params.Arguments.(map[string]any); ok {
		s.lastArgs = args
	}
	return s.result, s.err
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

func TestAgent_Prompt(t *testing.T) {
	t.Parallel()

	reg := tools.NewRegistry()
	require.NoError(t, reg.Register(echoTool{}))

	prov := &stubProvider{model: "llama3.2", out: "final answer"}
	a := New(prov,
		WithName("researcher"),
		WithDescription("Finds things."),
		WithSystemPrompt("You are terse."),
		WithRegistry(reg),
	)

	out, err := a.Prompt(context.Background(), "what is up?")
	require.NoError(t, err)
	assert.Equal(t, "final answer", out)
	assert.Equal(t, "what is up?", prov.lastPrompt)
	assert.Equal(t, "You are terse.", prov.lastSystem)
	require.Len(t, prov.lastTools, 1)
	assert.Equal(t, "echo", prov.lastTools[0].Function.Name)
	assert.Same(t, a, prov.lastOpts.Caller)

	assert.Equal(t, "researcher", a.Name())
	assert.Equal(t, "Finds things.", a.Description())
	assert.Equal(t, "llama3.2", a.Model())
}

func TestAgent_ChatPrependsSystemPrompt(t *testing.T) {
	t.Parallel()

	prov := &stubProvider{out: "ok"}
	a := New(prov, WithSystemPrompt("Be helpful."))

	_, err := a.Chat(context.Background(), []llms.Message{
		llms.MessageFromTextParts(llms.RoleHuman, "hi"),
	})
	require.NoError(t, err)
	require.Len(t, prov.lastMessages, 2)
	assert.Equal(t, llms.RoleSystem, prov.lastMessages[0].Role)
	assert.Equal(t, "Be helpful.", prov.lastMessages[0].GetContent())

	// already has a system turn, nothing prepended
	_, err = a.Chat(context.Background(), []llms.Message{
		llms.MessageFromTextParts(llms.RoleSystem, "custom"),
		llms.MessageFromTextParts(llms.RoleHuman, "hi"),
	})
	require.NoError(t, err)
	require.Len(t, prov.lastMessages, 2)
	assert.Equal(t, "custom", prov.lastMessages[0].GetContent())
}

func TestAgent_RecordsTranscript(t *testing.T) {
	t.Parallel()

	prov := &stubProvider{out: "answer"}
	s := store.NewInMemory()
	a := New(prov, WithMessageStore(s))

	ctx := chatmodel.WithChatContext(context.Background(), chatmodel.NewChatContext("chat-7", nil))
	_, err := a.Prompt(ctx, "question")
	require.NoError(t, err)

	msgs := s.Messages("chat-7")
	require.Len(t, msgs, 2)
	assert.Equal(t, "question", msgs[0].GetContent())
	assert.Equal(t, "answer", msgs[1].GetContent())

	// no chat ID in context, nothing recorded
	_, err = a.Prompt(context.Background(), "other")
	require.NoError(t, err)
	assert.Len(t, s.Messages("chat-7"), 2)
}

func TestAgent_PromptWithMockProvider(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	prov := mockllms.NewMockProvider(ctrl)
	prov.EXPECT().
		GenerateWithTools(gomock.Any(), "ping", gomock.Any(), "", gomock.Any()).
		Return("pong", nil)

	a := New(prov)
	out, err := a.Prompt(context.Background(), "ping")
	require.NoError(t, err)
	assert.Equal(t, "pong", out)
}

func TestAgent_ExecuteMCPTool(t *testing.T) {
	t.Parallel()

	a := New(&stubProvider{})
	session := &fakeSession{
		result: &mcpsdk.CallToolResult{
			Content: []mcpsdk.Content{
				&mcpsdk.TextContent{Text: "4"},
				&mcpsdk.TextContent{Text: "2"},
			},
		},
	}
	a.sessions["dice"] = session
	a.mcpTools["dice"] = []llms.Tool{{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:       "mcp_dice_roll",
			Parameters: &jsonschema.Schema{Type: "object"},
		},
	}}

	res, err := a.ExecuteMCPTool(context.Background(), "mcp_dice_roll", map[string]any{"sides": float64(20)})
	require.NoError(t, err)
	assert.Equal(t, "42", res)
	assert.Equal(t, "roll", session.lastName)
	assert.Equal(t, map[string]any{"sides": float64(20)}, session.lastArgs)

	// definitions include both local registry and MCP tools
	defs := a.Definitions()
	require.Len(t, defs, 1)
	assert.Equal(t, "mcp_dice_roll", defs[0].Function.Name)

	// unknown server
	_, err = a.ExecuteMCPTool(context.Background(), "mcp_other_roll", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no MCP server registered")

	// application-level tool error
	session.result = &mcpsdk.CallToolResult{
		IsError: true,
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: "bad sides"}},
	}
	_, err = a.ExecuteMCPTool(context.Background(), "mcp_dice_roll", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad sides")

	require.NoError(t, a.Close())
	assert.True(t, session.closed)
	assert.Empty(t, a.Definitions())
}
