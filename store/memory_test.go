package store_test

import (
	"testing"

	"github.com/effective-security/agentloop/pkg/llms"
	"github.com/effective-security/agentloop/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemory(t *testing.T) {
	t.Parallel()

	s := store.NewInMemory()
	assert.Empty(t, s.Messages("chat1"))

	err := s.Add("chat1", llms.MessageFromTextParts(llms.RoleHuman, "hello"))
	require.NoError(t, err)
	err = s.Add("chat1", llms.MessageFromTextParts(llms.RoleAI, "hi there"))
	require.NoError(t, err)
	err = s.Add("chat2", llms.MessageFromTextParts(llms.RoleHuman, "other chat"))
	require.NoError(t, err)

	msgs := s.Messages("chat1")
	require.Len(t, msgs, 2)
	assert.Equal(t, llms.RoleHuman, msgs[0].Role)
	assert.Equal(t, "hello", msgs[0].GetContent())
	assert.Equal(t, "hi there", msgs[1].GetContent())

	require.Len(t, s.Messages("chat2"), 1)

	// returned slice is a copy
	msgs[0] = llms.MessageFromTextParts(llms.RoleHuman, "mutated")
	assert.Equal(t, "hello", s.Messages("chat1")[0].GetContent())

	require.NoError(t, s.Reset("chat1"))
	assert.Empty(t, s.Messages("chat1"))
	assert.Len(t, s.Messages("chat2"), 1)
}
