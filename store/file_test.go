package store_test

import (
	"testing"

	"github.com/effective-security/agentloop/pkg/llms"
	"github.com/effective-security/agentloop/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := store.NewFile(dir)
	require.NoError(t, err)
	assert.Empty(t, s.Messages("chat1"))

	require.NoError(t, s.Add("chat1", llms.MessageFromTextParts(llms.RoleHuman, "hello")))
	require.NoError(t, s.Add("chat1", llms.Message{
		Role: llms.RoleAI,
		Parts: []llms.ContentPart{
			llms.TextPart("let me check"),
			llms.ToolCall{
				ID:           "call_1",
				Type:         "function",
				FunctionCall: &llms.FunctionCall{Name: "fs_list", Arguments: `{"dir":"/a"}`},
			},
		},
	}))
	require.NoError(t, s.Add("chat1", llms.MessageFromToolResponse(llms.RoleTool, llms.ToolCallResponse{
		ToolCallID: "call_1",
		Name:       "fs_list",
		Content:    `{"success":true}`,
	})))

	// the transcript survives a reopen with every part type intact
	reopened, err := store.NewFile(dir)
	require.NoError(t, err)
	msgs := reopened.Messages("chat1")
	require.Len(t, msgs, 3)
	assert.Equal(t, "hello", msgs[0].GetContent())

	require.Len(t, msgs[1].Parts, 2)
	call, ok := msgs[1].Parts[1].(llms.ToolCall)
	require.True(t, ok)
	assert.Equal(t, "call_1", call.ID)
	assert.Equal(t, "fs_list", call.FunctionCall.Name)

	tr, ok := msgs[2].Parts[0].(llms.ToolCallResponse)
	require.True(t, ok)
	assert.Equal(t, "call_1", tr.ToolCallID)
	assert.Equal(t, `{"success":true}`, tr.Content)

	require.NoError(t, s.Reset("chat1"))
	assert.Empty(t, s.Messages("chat1"))
	require.NoError(t, s.Reset("chat1"))
}

func TestFile_UnsafeChatID(t *testing.T) {
	t.Parallel()

	s, err := store.NewFile(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Add("../escape/../../etc", llms.MessageFromTextParts(llms.RoleHuman, "hi")))
	require.Len(t, s.Messages("../escape/../../etc"), 1)
}
