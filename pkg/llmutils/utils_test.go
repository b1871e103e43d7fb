package llmutils_test

import (
	"testing"

	"github.com/effective-security/agentloop/pkg/llms"
	"github.com/effective-security/agentloop/pkg/llmutils"
	"github.com/stretchr/testify/assert"
)

func Test_TrimBackticks(t *testing.T) {
	expected := "{\"city\": \"Paris\", \"country\": \"France\"}"

	assert.Equal(t, expected, llmutils.TrimBackticks("\n```json\n\n{\"city\": \"Paris\", \"country\": \"France\"}\n\n```\n\n"))
	// the same
	assert.Equal(t, expected, llmutils.TrimBackticks(expected))
	assert.Equal(t, expected, llmutils.TrimBackticks("\n```\n\n{\"city\": \"Paris\", \"country\": \"France\"}\n\n```\n\n"))
	// unterminated fence
	assert.Equal(t, expected, llmutils.TrimBackticks("```json\n{\"city\": \"Paris\", \"country\": \"France\"}"))
}

func Test_ToJSON(t *testing.T) {
	val := map[string]any{"b": 1, "a": "x"}
	assert.Equal(t, "{\"a\":\"x\",\"b\":1}", llmutils.ToJSON(val))
}

func Test_CountContentSize(t *testing.T) {
	msgs := []llms.Message{
		llms.MessageFromTextParts(llms.RoleHuman, "12345"),
		llms.MessageFromTextParts(llms.RoleAI, "678"),
	}
	// role names count toward the total
	assert.Equal(t, uint64(15), llmutils.CountMessagesContentSize(msgs))

	resp := &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "abcd"}}}
	assert.Equal(t, uint64(4), llmutils.CountResponseContentSize(resp))
}
