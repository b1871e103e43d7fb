package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/effective-security/agentloop/pkg/llms"
	"github.com/effective-security/xlog"
	"github.com/google/uuid"
)

// generateRequest is the Ollama /api/generate request body.
type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
	Stream bool   `json:"stream,omitempty"`
}

// generateResponse is the Ollama /api/generate response envelope. Timing
// fields are reported zeroed.
type generateResponse struct {
	Model              string `json:"model"`
	CreatedAt          string `json:"created_at"`
	Response           string `json:"response"`
	Done               bool   `json:"done"`
	Context            []int  `json:"context"`
	TotalDuration      int64  `json:"total_duration"`
	LoadDuration       int64  `json:"load_duration"`
	PromptEvalCount    int    `json:"prompt_eval_count"`
	PromptEvalDuration int64  `json:"prompt_eval_duration"`
	EvalCount          int    `json:"eval_count"`
	EvalDuration       int64  `json:"eval_duration"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream,omitempty"`
}

// chatResponse is the Ollama /api/chat response envelope.
type chatResponse struct {
	Model              string      `json:"model"`
	CreatedAt          string      `json:"created_at"`
	Message            chatMessage `json:"message"`
	Done               bool        `json:"done"`
	TotalDuration      int64       `json:"total_duration"`
	LoadDuration       int64       `json:"load_duration"`
	PromptEvalCount    int         `json:"prompt_eval_count"`
	PromptEvalDuration int64       `json:"prompt_eval_duration"`
	EvalCount          int         `json:"eval_count"`
	EvalDuration       int64       `json:"eval_duration"`
}

// completionResponse is the OpenAI /v1/chat/completions response envelope.
type completionResponse struct {
	ID      string             `json:"id"`
	Object  string             `json:"object"`
	Created int64              `json:"created"`
	Model   string             `json:"model"`
	Choices []completionChoice `json:"choices"`
	Usage   completionUsage    `json:"usage"`
}

type completionChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type completionUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeOllamaError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	a, ok := s.agent(req.Model)
	if !ok {
		writeOllamaError(w, http.StatusNotFound, "model not found: "+req.Model)
		return
	}

	out, err := a.Prompt(r.Context(), req.Prompt)
	if err != nil {
		logger.ContextKV(r.Context(), xlog.ERROR, "agent", req.Model, "err", err.Error())
		writeOllamaError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{
		Model:     req.Model,
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
		Response:  out,
		Done:      true,
		Context:   []int{},
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeOllamaError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	a, ok := s.agent(req.Model)
	if !ok {
		writeOllamaError(w, http.StatusNotFound, "model not found: "+req.Model)
		return
	}

	out, err := a.Chat(r.Context(), toMessages(req.Messages))
	if err != nil {
		logger.ContextKV(r.Context(), xlog.ERROR, "agent", req.Model, "err", err.Error())
		writeOllamaError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Model:     req.Model,
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
		Message:   chatMessage{Role: "assistant", Content: out},
		Done:      true,
	})
}

func (s *Server) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeOpenAIError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: "+err.Error())
		return
	}
	a, ok := s.agent(req.Model)
	if !ok {
		writeOpenAIError(w, http.StatusNotFound, "invalid_request_error", "model not found: "+req.Model)
		return
	}

	out, err := a.Chat(r.Context(), toMessages(req.Messages))
	if err != nil {
		logger.ContextKV(r.Context(), xlog.ERROR, "agent", req.Model, "err", err.Error())
		writeOpenAIError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	promptLen := 0
	for _, m := range req.Messages {
		promptLen += len(m.Content)
	}

	// token counts approximated as character length / 4
	writeJSON(w, http.StatusOK, completionResponse{
		ID:      "chatcmpl-" + uuid.NewString(),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   req.Model,
		Choices: []completionChoice{{
			Index:        0,
			Message:      chatMessage{Role: "assistant", Content: out},
			FinishReason: "stop",
		}},
		Usage: completionUsage{
			PromptTokens:     promptLen / 4,
			CompletionTokens: len(out) / 4,
			TotalTokens:      (promptLen + len(out)) / 4,
		},
	})
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	type tagModel struct {
		Name       string `json:"name"`
		Model      string `json:"model"`
		ModifiedAt string `json:"modified_at"`
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	models := make([]tagModel, 0)
	for _, name := range s.agentNames() {
		models = append(models, tagModel{Name: name, Model: name, ModifiedAt: now})
	}
	writeJSON(w, http.StatusOK, map[string]any{"models": models})
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	type modelEntry struct {
		ID      string `json:"id"`
		Object  string `json:"object"`
		Created int64  `json:"created"`
		OwnedBy string `json:"owned_by"`
	}
	now := time.Now().Unix()
	data := make([]modelEntry, 0)
	for _, name := range s.agentNames() {
		data = append(data, modelEntry{ID: name, Object: "model", Created: now, OwnedBy: "agentloop"})
	}
	writeJSON(w, http.StatusOK, map[string]any{"object": "list", "data": data})
}

func toMessages(in []chatMessage) []llms.Message {
	out := make([]llms.Message, 0, len(in))
	for _, m := range in {
		role := llms.RoleHuman
		switch m.Role {
		case "assistant":
			role = llms.RoleAI
		case "system":
			role = llms.RoleSystem
		case "tool":
			role = llms.RoleTool
		}
		out = append(out, llms.MessageFromTextParts(role, m.Content))
	}
	return out
}

func writeOllamaError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeOpenAIError(w http.ResponseWriter, status int, typ, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{"message": msg, "type": typ},
	})
}
