package copilotclient

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/agentloop", "copilotclient")

const (
	DefaultCommand          = "copilot-language-server"
	DefaultHandshakeTimeout = 30 * time.Second
)

// Client owns a Copilot language server child process and speaks
// Content-Length framed JSON-RPC 2.0 over its stdio. The handle is
// lifecycle-scoped: Start spawns and performs the handshake, Shutdown
// terminates the process. There is no process singleton.
type Client struct {
	command          string
	args             []string
	handshakeTimeout time.Duration

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader

	mu      sync.Mutex
	nextID  int64
	pending map[int64]chan *rpcResponse
	done    chan struct{}
	started bool
}

// New returns an unstarted client for the given server command.
func New(command string, args []string, handshakeTimeout time.Duration) *Client {
	if command == "" {
		command = DefaultCommand
	}
	if handshakeTimeout <= 0 {
		handshakeTimeout = DefaultHandshakeTimeout
	}
	return &Client{
		command:          command,
		args:             args,
		handshakeTimeout: handshakeTimeout,
		pending:          make(map[int64]chan *rpcResponse),
		done:             make(chan struct{}),
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      *int64 `json:"id,omitempty"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *int64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Start spawns the language server and performs the initialize and sign-in
// handshake. The handshake runs under its own timeout, independent of the
// caller's context lifetime.
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return errors.New("copilot client already started")
	}
	c.started = true
	c.mu.Unlock()

	cmd := exec.Command(c.command, c.args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return errors.Wrap(err, "stdin pipe")
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return errors.Wrap(err, "stdout pipe")
	}
	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "start %s", c.command)
	}
	c.cmd = cmd
	c.stdin = stdin
	c.stdout = bufio.NewReader(stdout)

	go c.readLoop()

	hctx, cancel := context.WithTimeout(ctx, c.handshakeTimeout)
	defer cancel()

	var initRes json.RawMessage
	err = c.Call(hctx, "initialize", map[string]any{
		"processId": os.Getpid(),
		"clientInfo": map[string]any{
			"name":    "agentloop",
			"version": "1.0.0",
		},
		"capabilities": map[string]any{},
	}, &initRes)
	if err != nil {
		_ = c.Shutdown()
		return errors.WithMessage(err, "initialize handshake")
	}
	c.notify("initialized", map[string]any{})

	var status struct {
		Status string `json:"status"`
		User   string `json:"user"`
	}
	if err := c.Call(hctx, "checkStatus", map[string]any{}, &status); err != nil {
		_ = c.Shutdown()
		return errors.WithMessage(err, "checkStatus handshake")
	}
	if status.Status != "OK" && status.Status != "MaybeOK" {
		_ = c.Shutdown()
		return errors.Newf("copilot not signed in: status %s", status.Status)
	}

	logger.KV(xlog.DEBUG, "status", status.Status, "user", status.User)
	return nil
}

// GetCompletion requests one completion for the rendered prompt. The prompt
// is presented as the tail of a plain-text document.
func (c *Client) GetCompletion(ctx context.Context, prompt string) (string, error) {
	lines := strings.Split(prompt, "\n")
	lastLine := lines[len(lines)-1]

	var res struct {
		Completions []struct {
			Text        string `json:"text"`
			DisplayText string `json:"displayText"`
		} `json:"completions"`
	}
	err := c.Call(ctx, "getCompletions", map[string]any{
		"doc": map[string]any{
			"source":       prompt,
			"languageId":   "markdown",
			"relativePath": "conversation.md",
			"uri":          "file:///conversation.md",
			"position": map[string]any{
				"line":      len(lines) - 1,
				"character": len(lastLine),
			},
		},
	}, &res)
	if err != nil {
		return "", err
	}
	if len(res.Completions) == 0 {
		return "", errors.New("empty response")
	}
	return res.Completions[0].Text, nil
}

// Call issues one request and decodes its result.
func (c *Client) Call(ctx context.Context, method string, params, result any) error {
	c.mu.Lock()
	if c.stdin == nil {
		c.mu.Unlock()
		return errors.New("copilot client not started")
	}
	c.nextID++
	id := c.nextID
	ch := make(chan *rpcResponse, 1)
	c.pending[id] = ch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	if err := c.write(&rpcRequest{JSONRPC: "2.0", ID: &id, Method: method, Params: params}); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return errors.Wrapf(ctx.Err(), "call %s", method)
	case <-c.done:
		return errors.Newf("call %s: server exited", method)
	case resp := <-ch:
		if resp.Error != nil {
			return errors.Newf("call %s: %s (code %d)", method, resp.Error.Message, resp.Error.Code)
		}
		if result != nil {
			if err := json.Unmarshal(resp.Result, result); err != nil {
				return errors.Wrapf(err, "decode %s result", method)
			}
		}
		return nil
	}
}

func (c *Client) notify(method string, params any) {
	_ = c.write(&rpcRequest{JSONRPC: "2.0", Method: method, Params: params})
}

func (c *Client) write(req *rpcRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return errors.Wrap(err, "marshal request")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stdin == nil {
		return errors.New("copilot client not started")
	}
	if _, err := fmt.Fprintf(c.stdin, "Content-Length: %d\r\n\r\n", len(body)); err != nil {
		return errors.Wrap(err, "write frame header")
	}
	if _, err := c.stdin.Write(body); err != nil {
		return errors.Wrap(err, "write frame body")
	}
	return nil
}

// readLoop parses Content-Length frames off stdout and routes responses to
// their pending calls. Server-initiated requests and notifications are
// dropped.
func (c *Client) readLoop() {
	defer close(c.done)
	for {
		body, err := readFrame(c.stdout)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logger.KV(xlog.DEBUG, "reason", "read_frame", "err", err.Error())
			}
			return
		}

		var resp rpcResponse
		if err := json.Unmarshal(body, &resp); err != nil || resp.ID == nil {
			continue
		}
		c.mu.Lock()
		ch, ok := c.pending[*resp.ID]
		c.mu.Unlock()
		if ok {
			ch <- &resp
		}
	}
}

func readFrame(r *bufio.Reader) ([]byte, error) {
	contentLength := -1
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if name, value, ok := strings.Cut(line, ":"); ok && strings.EqualFold(name, "Content-Length") {
			contentLength, err = strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, errors.Wrap(err, "parse Content-Length")
			}
		}
	}
	if contentLength < 0 {
		return nil, errors.New("frame without Content-Length")
	}
	body := make([]byte, contentLength)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	return body, nil
}

// Shutdown terminates the server process. Safe to call more than once.
func (c *Client) Shutdown() error {
	c.mu.Lock()
	stdin := c.stdin
	c.stdin = nil
	cmd := c.cmd
	c.cmd = nil
	c.mu.Unlock()

	if stdin == nil || cmd == nil {
		return nil
	}

	// best-effort polite exit before closing the pipe
	body, _ := json.Marshal(&rpcRequest{JSONRPC: "2.0", Method: "exit"})
	_, _ = fmt.Fprintf(stdin, "Content-Length: %d\r\n\r\n%s", len(body), body)
	_ = stdin.Close()

	waited := make(chan error, 1)
	go func() { waited <- cmd.Wait() }()
	select {
	case err := <-waited:
		if err != nil && !strings.Contains(err.Error(), "signal") {
			return errors.Wrap(err, "server exit")
		}
		return nil
	case <-time.After(5 * time.Second):
		_ = cmd.Process.Kill()
		<-waited
		return nil
	}
}
