package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentloop/pkg/llms"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/agentloop", "store")

var unsafeChatID = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// fileStore persists each chat transcript as a JSON file under dir.
type fileStore struct {
	mu  sync.Mutex
	dir string
}

// NewFile returns a MessageStore that persists each transcript as
// <dir>/<chatID>.json. The directory is created if missing.
func NewFile(dir string) (MessageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create store directory")
	}
	return &fileStore{dir: dir}, nil
}

func (s *fileStore) path(chatID string) string {
	return filepath.Join(s.dir, unsafeChatID.ReplaceAllString(chatID, "_")+".json")
}

func (s *fileStore) Messages(chatID string) []llms.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(chatID)
}

func (s *fileStore) load(chatID string) []llms.Message {
	data, err := os.ReadFile(s.path(chatID))
	if err != nil {
		if !os.IsNotExist(err) {
			logger.KV(xlog.ERROR, "reason", "read transcript", "chat_id", chatID, "err", err.Error())
		}
		return nil
	}
	var msgs []llms.Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		logger.KV(xlog.ERROR, "reason", "unmarshal transcript", "chat_id", chatID, "err", err.Error())
		return nil
	}
	return msgs
}

func (s *fileStore) Add(chatID string, msg llms.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := append(s.load(chatID), msg)
	data, err := json.Marshal(msgs)
	if err != nil {
		return errors.Wrap(err, "failed to marshal transcript")
	}
	if err := os.WriteFile(s.path(chatID), data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write transcript")
	}
	return nil
}

func (s *fileStore) Reset(chatID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(chatID)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove transcript")
	}
	return nil
}
