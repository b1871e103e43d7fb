// Package store provides conversation history storage keyed by Chat ID.
package store

import (
	"github.com/effective-security/agentloop/pkg/llms"
)

// MessageStore is an interface for storing and retrieving chat transcripts.
type MessageStore interface {
	// Messages returns the messages recorded for the given chat, in order.
	Messages(chatID string) []llms.Message
	// Add appends a message to the chat transcript.
	Add(chatID string, msg llms.Message) error
	// Reset removes all messages recorded for the chat.
	Reset(chatID string) error
}
