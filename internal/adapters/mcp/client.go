// Package mcp implements the stdio JSON-RPC 2.0 client for external tool
// servers.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"

	"go.trai.ch/relay/internal/core/domain"
	"go.trai.ch/relay/internal/core/ports"
	"go.trai.ch/zerr"
)

const protocolVersion = "2024-11-05"

// maxResponseLine bounds a single response line from a tool server.
const maxResponseLine = 16 * 1024 * 1024

var _ ports.Dispatcher = (*Client)(nil)

// Client is a connection to one tool server speaking JSON-RPC 2.0 over
// stdio, line-delimited.
type Client struct {
	server string
	cmd    *exec.Cmd
	stdin  io.WriteCloser

	writeMu sync.Mutex
	id      atomic.Int64

	pendMu  sync.Mutex
	pending map[int64]chan *response
	closed  bool

	ready      atomic.Bool
	operations []domain.OperationDescriptor
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type notification struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type toolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type toolsListResult struct {
	Tools []toolInfo `json:"tools"`
}

type toolCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

type toolCallResult struct {
	Content []contentBlock `json:"content"`
	IsError bool           `json:"isError"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// NewClient spawns the described server process and attaches to its stdio.
// The caller must run Initialize before dispatching.
func NewClient(desc domain.ServerDescriptor) (*Client, error) {
	cmd := exec.Command(desc.Command, desc.Args...) //nolint:gosec // Command comes from the user's own config
	cmd.Dir = desc.WorkingDirectory
	cmd.Env = os.Environ()
	for k, v := range desc.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to open stdin pipe")
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to open stdout pipe")
	}

	if err := cmd.Start(); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrServerLaunchFailed.Error()), "server", desc.ID)
	}

	c := newClient(desc.ID, stdin, stdout)
	c.cmd = cmd
	return c, nil
}

// newClient attaches a client to raw pipes. Split out of NewClient so tests
// can speak the protocol in-process.
func newClient(server string, stdin io.WriteCloser, stdout io.Reader) *Client {
	c := &Client{
		server:  server,
		stdin:   stdin,
		pending: make(map[int64]chan *response),
	}
	go c.readResponses(stdout)
	return c
}

// Initialize performs the protocol handshake and discovers the server's
// operations.
func (c *Client) Initialize(ctx context.Context) error {
	_, err := c.call(ctx, "initialize", map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities":    map[string]any{},
		"clientInfo":      map[string]any{"name": "relay", "version": "1.0.0"},
	})
	if err != nil {
		return zerr.With(zerr.Wrap(err, "initialize handshake failed"), "server", c.server)
	}

	if err := c.notify("notifications/initialized", nil); err != nil {
		return zerr.With(zerr.Wrap(err, "initialized notification failed"), "server", c.server)
	}

	result, err := c.call(ctx, "tools/list", nil)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "tool discovery failed"), "server", c.server)
	}

	var list toolsListResult
	if err := json.Unmarshal(result, &list); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to parse tool list"), "server", c.server)
	}

	ops := make([]domain.OperationDescriptor, 0, len(list.Tools))
	for _, t := range list.Tools {
		ops = append(ops, domain.OperationDescriptor{
			Server:      c.server,
			Name:        t.Name,
			Description: t.Description,
		})
	}
	c.operations = ops
	c.ready.Store(true)

	return nil
}

// Operations returns the operations discovered during Initialize.
func (c *Client) Operations() []domain.OperationDescriptor {
	return c.operations
}

// Dispatch invokes a named operation and returns the concatenated text
// content of its result.
func (c *Client) Dispatch(ctx context.Context, name string, args map[string]any) (string, error) {
	if !c.ready.Load() {
		return "", zerr.With(domain.ErrServerNotReady, "server", c.server)
	}

	result, err := c.call(ctx, "tools/call", toolCallParams{Name: name, Arguments: args})
	if err != nil {
		return "", zerr.With(zerr.With(err, "operation", name), "server", c.server)
	}

	var call toolCallResult
	if err := json.Unmarshal(result, &call); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to parse tool result"), "operation", name)
	}

	var sb strings.Builder
	for _, block := range call.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	if call.IsError {
		err := zerr.Wrap(domain.ErrToolCallFailed, sb.String())
		return "", zerr.With(zerr.With(err, "operation", name), "server", c.server)
	}

	return sb.String(), nil
}

// Close shuts the server down by closing its stdin and waiting for exit.
// Pending calls fail with domain.ErrServerClosed.
func (c *Client) Close() error {
	c.ready.Store(false)
	_ = c.stdin.Close()
	if c.cmd != nil {
		return c.cmd.Wait()
	}
	return nil
}

func (c *Client) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	id := c.id.Add(1)
	respCh := make(chan *response, 1)

	c.pendMu.Lock()
	if c.closed {
		c.pendMu.Unlock()
		return nil, zerr.With(domain.ErrServerClosed, "server", c.server)
	}
	c.pending[id] = respCh
	c.pendMu.Unlock()

	defer func() {
		c.pendMu.Lock()
		delete(c.pending, id)
		c.pendMu.Unlock()
	}()

	if err := c.send(request{JSONRPC: "2.0", ID: id, Method: method, Params: params}); err != nil {
		return nil, zerr.Wrap(err, "failed to send request")
	}

	select {
	case resp, ok := <-respCh:
		if !ok {
			return nil, zerr.With(domain.ErrServerClosed, "server", c.server)
		}
		if resp.Error != nil {
			return nil, resp.Error
		}
		return resp.Result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Client) notify(method string, params any) error {
	return c.send(notification{JSONRPC: "2.0", Method: method, Params: params})
}

func (c *Client) send(msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, err = c.stdin.Write(append(data, '\n'))
	return err
}

// readResponses pumps the server's stdout, matching responses to pending
// calls by request id. When the stream ends, every pending call is failed.
func (c *Client) readResponses(stdout io.Reader) {
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), maxResponseLine)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var resp response
		if err := json.Unmarshal(line, &resp); err != nil {
			// Skip notifications and malformed lines.
			continue
		}

		c.pendMu.Lock()
		ch, ok := c.pending[resp.ID]
		c.pendMu.Unlock()
		if ok {
			ch <- &resp
		}
	}

	c.pendMu.Lock()
	c.closed = true
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
	c.pendMu.Unlock()
}
