package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/renamekit/internal/engine/buffer"
)

// DefaultTimeout bounds every request to the server.
const DefaultTimeout = 30 * time.Second

// ClientStatus represents the client's lifecycle state.
type ClientStatus int32

const (
	// ClientStatusStopped indicates the client is not running.
	ClientStatusStopped ClientStatus = iota
	// ClientStatusStarting indicates the initialize handshake is running.
	ClientStatusStarting
	// ClientStatusReady indicates the client is ready for requests.
	ClientStatusReady
	// ClientStatusShuttingDown indicates the client is shutting down.
	ClientStatusShuttingDown
)

// String returns a human-readable status string.
func (s ClientStatus) String() string {
	switch s {
	case ClientStatusStopped:
		return "stopped"
	case ClientStatusStarting:
		return "starting"
	case ClientStatusReady:
		return "ready"
	case ClientStatusShuttingDown:
		return "shutting down"
	default:
		return "unknown"
	}
}

// ServerConfig defines how to start a language server.
type ServerConfig struct {
	// Command is the executable to run.
	Command string

	// Args are command-line arguments.
	Args []string

	// Env are additional environment variables.
	Env map[string]string

	// WorkDir is the working directory (defaults to the workspace root).
	WorkDir string

	// InitializationOptions are sent during initialize.
	InitializationOptions any

	// Timeout for requests (default: DefaultTimeout).
	Timeout time.Duration
}

// Logger is the logging interface used by the client.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger routes server stderr and protocol warnings to l.
func WithLogger(l Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// docState is the server's view of one document.
type docState struct {
	version  int
	revision buffer.RevisionID
}

// Client is a connection to one language server.
type Client struct {
	config     ServerConfig
	languageID string
	logger     Logger

	mu           sync.Mutex
	status       atomic.Int32
	cmd          *exec.Cmd
	transport    *Transport
	capabilities ServerCapabilities
	serverInfo   *InitializeServerInfo
	docs         map[DocumentURI]*docState
}

// NewClient creates a client for a server (not yet started).
func NewClient(config ServerConfig, languageID string, opts ...ClientOption) *Client {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	c := &Client{
		config:     config,
		languageID: languageID,
		docs:       make(map[DocumentURI]*docState),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LanguageID returns the language the client serves.
func (c *Client) LanguageID() string {
	return c.languageID
}

// Status returns the client status.
func (c *Client) Status() ClientStatus {
	return ClientStatus(c.status.Load())
}

// Start launches the server process and initializes it with root as the
// workspace folder.
func (c *Client) Start(ctx context.Context, root string) error {
	if c.config.Command == "" {
		return &ServerError{LanguageID: c.languageID, Err: fmt.Errorf("no command configured")}
	}

	cmd := exec.Command(c.config.Command, c.config.Args...)
	cmd.Env = os.Environ()
	for k, v := range c.config.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	cmd.Dir = c.config.WorkDir
	if cmd.Dir == "" {
		cmd.Dir = root
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return &ServerError{LanguageID: c.languageID, Err: fmt.Errorf("start process: %w", err)}
	}

	c.mu.Lock()
	c.cmd = cmd
	c.mu.Unlock()

	go c.drainStderr(stderr)

	if err := c.Connect(ctx, stdout, stdin, stdin, root); err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return err
	}
	return nil
}

// Connect initializes a server reachable over r and w. c, if not nil, is
// closed on shutdown. Start uses it for process pipes.
func (c *Client) Connect(ctx context.Context, r io.Reader, w io.Writer, closer io.Closer, root string) error {
	if !c.status.CompareAndSwap(int32(ClientStatusStopped), int32(ClientStatusStarting)) {
		return ErrAlreadyStarted
	}

	t := NewTransport(r, w, closer)
	c.registerHandlers(t)
	// The read loop outlives ctx, which only bounds the handshake
	t.Start(context.WithoutCancel(ctx))

	c.mu.Lock()
	c.transport = t
	c.docs = make(map[DocumentURI]*docState)
	c.mu.Unlock()

	if err := c.initialize(ctx, t, root); err != nil {
		_ = t.Close()
		c.status.Store(int32(ClientStatusStopped))
		return &ServerError{LanguageID: c.languageID, Err: err}
	}

	c.status.Store(int32(ClientStatusReady))
	return nil
}

func (c *Client) initialize(ctx context.Context, t *Transport, root string) error {
	params := InitializeParams{
		ProcessID:             os.Getpid(),
		ClientInfo:            &ClientInfo{Name: "renamekit"},
		Capabilities:          DefaultClientCapabilities(),
		InitializationOptions: c.config.InitializationOptions,
	}
	if root != "" {
		params.RootURI = FilePathToURI(root)
		params.WorkspaceFolders = []WorkspaceFolder{{URI: params.RootURI, Name: filepath.Base(root)}}
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	var result InitializeResult
	if err := t.Call(ctx, "initialize", params, &result); err != nil {
		return fmt.Errorf("initialize request: %w", err)
	}

	c.mu.Lock()
	c.capabilities = result.Capabilities
	c.serverInfo = result.ServerInfo
	c.mu.Unlock()

	if err := t.Notify(ctx, "initialized", InitializedParams{}); err != nil {
		return fmt.Errorf("initialized notification: %w", err)
	}
	return nil
}

// registerHandlers answers the server requests a rename session triggers.
func (c *Client) registerHandlers(t *Transport) {
	t.OnRequest("workspace/configuration", func(_ context.Context, params json.RawMessage) (any, error) {
		var p ConfigurationParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, &RPCError{Code: CodeInvalidParams, Message: err.Error()}
		}
		// No settings for any section
		return make([]any, len(p.Items)), nil
	})
	t.OnRequest("client/registerCapability", func(context.Context, json.RawMessage) (any, error) {
		return nil, nil
	})
	t.OnRequest("window/workDoneProgress/create", func(context.Context, json.RawMessage) (any, error) {
		return nil, nil
	})
	t.OnNotification("window/logMessage", func(_ string, params json.RawMessage) {
		var p struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(params, &p) == nil {
			c.debug("lsp %s: %s", c.languageID, p.Message)
		}
	})
}

func (c *Client) drainStderr(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		c.debug("lsp %s stderr: %s", c.languageID, scanner.Text())
	}
}

// Capabilities returns the server's capabilities.
func (c *Client) Capabilities() ServerCapabilities {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capabilities
}

// ServerInfo returns information about the server from initialization.
func (c *Client) ServerInfo() *InitializeServerInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.serverInfo
}

func (c *Client) ready() (*Transport, error) {
	if c.Status() != ClientStatusReady {
		return nil, ErrNotStarted
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transport, nil
}

// Sync sends the buffer's content to the server: didOpen the first time,
// then a full didChange whenever the buffer revision moved.
func (c *Client) Sync(ctx context.Context, buf *buffer.Buffer) error {
	t, err := c.ready()
	if err != nil {
		return err
	}

	uri := FilePathToURI(buf.Path())
	rev := buf.Revision()
	text := buf.Text()

	c.mu.Lock()
	state, open := c.docs[uri]
	if open && state.revision == rev {
		c.mu.Unlock()
		return nil
	}
	if !open {
		state = &docState{}
		c.docs[uri] = state
	}
	state.version++
	state.revision = rev
	version := state.version
	c.mu.Unlock()

	if !open {
		return t.Notify(ctx, "textDocument/didOpen", DidOpenTextDocumentParams{
			TextDocument: TextDocumentItem{
				URI:        uri,
				LanguageID: buf.LanguageID(),
				Version:    version,
				Text:       text,
			},
		})
	}
	return t.Notify(ctx, "textDocument/didChange", DidChangeTextDocumentParams{
		TextDocument: VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: TextDocumentIdentifier{URI: uri},
			Version:                version,
		},
		ContentChanges: []TextDocumentContentChangeEvent{{Text: text}},
	})
}

// Rename asks the server for the edits renaming the symbol at pos.
// A nil edit means the server found nothing to rename.
func (c *Client) Rename(ctx context.Context, buf *buffer.Buffer, pos buffer.Point, newName string) (*WorkspaceEdit, error) {
	t, err := c.ready()
	if err != nil {
		return nil, err
	}
	if !c.Capabilities().SupportsRename() {
		return nil, fmt.Errorf("%w: textDocument/rename", ErrNotSupported)
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	if err := c.Sync(ctx, buf); err != nil {
		return nil, fmt.Errorf("sync %s: %w", buf.Path(), err)
	}

	params := RenameParams{
		TextDocumentPositionParams: TextDocumentPositionParams{
			TextDocument: TextDocumentIdentifier{URI: FilePathToURI(buf.Path())},
			Position:     ToPosition(buf, pos),
		},
		NewName: newName,
	}

	var edit *WorkspaceEdit
	if err := t.Call(ctx, "textDocument/rename", params, &edit); err != nil {
		return nil, err
	}
	return edit, nil
}

// Shutdown sends shutdown and exit, then stops the process.
func (c *Client) Shutdown(ctx context.Context) error {
	if !c.status.CompareAndSwap(int32(ClientStatusReady), int32(ClientStatusShuttingDown)) {
		return nil
	}

	c.mu.Lock()
	t, cmd := c.transport, c.cmd
	c.mu.Unlock()

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := t.Call(shutdownCtx, "shutdown", nil, nil); err != nil {
		c.warn("lsp %s: shutdown: %v", c.languageID, err)
	}
	_ = t.Notify(shutdownCtx, "exit", nil)
	err := t.Close()

	if cmd != nil {
		exited := make(chan struct{})
		go func() {
			_ = cmd.Wait()
			close(exited)
		}()
		select {
		case <-exited:
		case <-shutdownCtx.Done():
			_ = cmd.Process.Kill()
			<-exited
		}
	}

	c.status.Store(int32(ClientStatusStopped))
	return err
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func (c *Client) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
