package toolloop

import (
	"testing"

	"github.com/effective-security/agentloop/pkg/llms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMineToolCall(t *testing.T) {
	t.Parallel()

	tcases := []struct {
		name string
		text string
		ok   bool
		tool string
		args string
	}{
		{
			name: "bare object",
			text: `{"name": "search", "arguments": {"query": "go"}}`,
			ok:   true, tool: "search", args: `{"query": "go"}`,
		},
		{
			name: "json fence",
			text: "```json\n{\"name\": \"search\", \"arguments\": {\"query\": \"go\"}}\n```",
			ok:   true, tool: "search", args: `{"query": "go"}`,
		},
		{
			name: "plain fence",
			text: "```\n{\"name\": \"search\", \"arguments\": {}}\n```",
			ok:   true, tool: "search", args: `{}`,
		},
		{
			name: "unterminated fence",
			text: "```json\n{\"name\": \"search\", \"arguments\": {}}",
			ok:   true, tool: "search", args: `{}`,
		},
		{
			name: "arguments as string",
			text: `{"name": "search", "arguments": "{\"query\": \"go\"}"}`,
			ok:   true, tool: "search", args: `"{\"query\": \"go\"}"`,
		},
		{
			name: "missing arguments key",
			text: `{"name": "search"}`,
		},
		{
			name: "missing name key",
			text: `{"arguments": {}}`,
		},
		{
			name: "empty name",
			text: `{"name": "", "arguments": {}}`,
		},
		{
			name: "prose",
			text: "The files in /tmp are a.txt and b.txt.",
		},
		{
			name: "malformed json",
			text: `{"name": "search", "arguments":`,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			call, ok := MineToolCall(tc.text)
			require.Equal(t, tc.ok, ok)
			if !tc.ok {
				return
			}
			assert.Equal(t, tc.tool, call.FunctionCall.Name)
			assert.Equal(t, tc.args, call.FunctionCall.Arguments)
		})
	}
}

func TestExtractToolCalls_NativeWins(t *testing.T) {
	t.Parallel()
	choice := &llms.ContentChoice{
		Content: `{"name": "mined", "arguments": {}}`,
		ToolCalls: []llms.ToolCall{
			{ID: "c1", Type: "function", FunctionCall: &llms.FunctionCall{Name: "native", Arguments: "{}"}},
			{ID: "c2", Type: "function"}, // no function payload, skipped
		},
	}
	intents, mined := ExtractToolCalls(choice)
	require.Len(t, intents, 1)
	assert.False(t, mined)
	assert.Equal(t, "native", intents[0].FunctionCall.Name)
}

func TestExtractToolCalls_Mined(t *testing.T) {
	t.Parallel()
	choice := &llms.ContentChoice{Content: `{"name": "search", "arguments": {"q": 1}}`}
	intents, mined := ExtractToolCalls(choice)
	require.Len(t, intents, 1)
	assert.True(t, mined)
	assert.Equal(t, "search", intents[0].FunctionCall.Name)

	intents, mined = ExtractToolCalls(&llms.ContentChoice{Content: "just text"})
	assert.Empty(t, intents)
	assert.False(t, mined)
}

func TestNormalizeArguments(t *testing.T) {
	t.Parallel()

	m, err := NormalizeArguments(`{"dir": "/tmp", "depth": 2}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"dir": "/tmp", "depth": float64(2)}, m)

	// double-encoded
	m, err = NormalizeArguments(`"{\"dir\": \"/tmp\"}"`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"dir": "/tmp"}, m)

	// empty forms
	for _, in := range []string{"", "  ", "null"} {
		m, err = NormalizeArguments(in)
		require.NoError(t, err)
		assert.Empty(t, m)
	}

	_, err = NormalizeArguments(`[1, 2]`)
	assert.Error(t, err)
	_, err = NormalizeArguments(`{broken`)
	assert.Error(t, err)
}
