package lsp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// Transport handles JSON-RPC 2.0 communication over a byte stream.
// It implements the LSP base protocol with Content-Length headers.
type Transport struct {
	reader *bufio.Reader
	writer io.Writer
	closer io.Closer

	writeMu sync.Mutex

	mu       sync.Mutex
	nextID   atomic.Int64
	pending  map[int64]chan *message
	notifies map[string]NotificationHandler
	requests map[string]RequestHandler

	closed  atomic.Bool
	done    chan struct{}
	readErr error
}

// NotificationHandler handles incoming notifications.
type NotificationHandler func(method string, params json.RawMessage)

// RequestHandler answers an incoming request. Returning an *RPCError sends
// it as is; other errors are sent as internal errors.
type RequestHandler func(ctx context.Context, params json.RawMessage) (any, error)

// request is an outgoing request or notification.
type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id,omitempty"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// response is an outgoing response to a peer request.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// message is any incoming message.
type message struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

var nullResult = json.RawMessage("null")

// NewTransport creates a transport reading from r and writing to w.
// c, if not nil, is closed by Close.
func NewTransport(r io.Reader, w io.Writer, c io.Closer) *Transport {
	return &Transport{
		reader:   bufio.NewReaderSize(r, 64*1024),
		writer:   w,
		closer:   c,
		pending:  make(map[int64]chan *message),
		notifies: make(map[string]NotificationHandler),
		requests: make(map[string]RequestHandler),
		done:     make(chan struct{}),
	}
}

// Start begins reading messages on a new goroutine.
func (t *Transport) Start(ctx context.Context) {
	go t.readLoop(ctx)
}

// Done is closed when the transport stops.
func (t *Transport) Done() <-chan struct{} {
	return t.done
}

// Close closes the transport and releases resources.
func (t *Transport) Close() error {
	return t.shutdown(nil)
}

func (t *Transport) shutdown(readErr error) error {
	if t.closed.Swap(true) {
		return nil
	}

	t.mu.Lock()
	t.readErr = readErr
	// Waiting callers observe done; channels are left open for late responses
	t.pending = make(map[int64]chan *message)
	t.mu.Unlock()
	close(t.done)

	if t.closer != nil {
		return t.closer.Close()
	}
	return nil
}

// stopErr returns the error for calls interrupted by the transport stopping.
func (t *Transport) stopErr() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.readErr != nil {
		return fmt.Errorf("%w: %v", ErrServerCrashed, t.readErr)
	}
	return ErrShutdown
}

// Call sends a request and waits for its response. A null result leaves
// result untouched.
func (t *Transport) Call(ctx context.Context, method string, params any, result any) error {
	if t.closed.Load() {
		return t.stopErr()
	}

	id := t.nextID.Add(1)
	ch := make(chan *message, 1)

	t.mu.Lock()
	t.pending[id] = ch
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		delete(t.pending, id)
		t.mu.Unlock()
	}()

	if err := t.send(&request{JSONRPC: "2.0", ID: id, Method: method, Params: params}); err != nil {
		return fmt.Errorf("send %s: %w", method, err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.done:
		return t.stopErr()
	case resp := <-ch:
		if resp.Error != nil {
			return resp.Error
		}
		if result != nil && len(resp.Result) > 0 {
			if err := json.Unmarshal(resp.Result, result); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalidResponse, method, err)
			}
		}
		return nil
	}
}

// Notify sends a notification.
func (t *Transport) Notify(ctx context.Context, method string, params any) error {
	if t.closed.Load() {
		return t.stopErr()
	}
	return t.send(&request{JSONRPC: "2.0", Method: method, Params: params})
}

// OnNotification registers a handler for notifications of method.
// The method "*" matches notifications without their own handler.
func (t *Transport) OnNotification(method string, handler NotificationHandler) {
	t.mu.Lock()
	t.notifies[method] = handler
	t.mu.Unlock()
}

// OnRequest registers a handler for requests of method. Requests without a
// handler are answered with MethodNotFound.
func (t *Transport) OnRequest(method string, handler RequestHandler) {
	t.mu.Lock()
	t.requests[method] = handler
	t.mu.Unlock()
}

// send writes a message with its Content-Length header.
func (t *Transport) send(msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if _, err := fmt.Fprintf(t.writer, "Content-Length: %d\r\n\r\n", len(data)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := t.writer.Write(data); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	return nil
}

func (t *Transport) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			_ = t.shutdown(nil)
			return
		case <-t.done:
			return
		default:
		}

		data, err := t.readMessage()
		if err != nil {
			if t.closed.Load() {
				return
			}
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, io.ErrUnexpectedEOF) {
				_ = t.shutdown(err)
				return
			}
			// A malformed frame; keep reading
			continue
		}

		t.dispatch(ctx, data)
	}
}

// readMessage reads a single framed message.
func (t *Transport) readMessage() ([]byte, error) {
	contentLength := -1
	for {
		line, err := t.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			// Content-Type and unknown headers
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid Content-Length %q", value)
		}
		contentLength = n
	}

	if contentLength < 0 {
		return nil, fmt.Errorf("missing Content-Length header")
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(t.reader, body); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// dispatch routes a message to a pending call or a handler.
func (t *Transport) dispatch(ctx context.Context, data []byte) {
	var msg message
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}

	hasID := len(msg.ID) > 0 && !bytes.Equal(msg.ID, nullResult)
	switch {
	case msg.Method == "" && hasID:
		t.handleResponse(&msg)
	case msg.Method != "" && hasID:
		go t.handleRequest(ctx, &msg)
	case msg.Method != "":
		t.handleNotification(&msg)
	}
}

func (t *Transport) handleResponse(msg *message) {
	var id int64
	if err := json.Unmarshal(msg.ID, &id); err != nil {
		return
	}

	t.mu.Lock()
	ch, ok := t.pending[id]
	if ok {
		delete(t.pending, id)
	}
	t.mu.Unlock()

	if ok {
		ch <- msg
	}
}

func (t *Transport) handleRequest(ctx context.Context, msg *message) {
	t.mu.Lock()
	handler, ok := t.requests[msg.Method]
	t.mu.Unlock()

	resp := &response{JSONRPC: "2.0", ID: msg.ID}
	if !ok {
		resp.Error = &RPCError{Code: CodeMethodNotFound, Message: "method not found: " + msg.Method}
		_ = t.send(resp)
		return
	}

	result, err := handler(ctx, msg.Params)
	if err != nil {
		var rpcErr *RPCError
		if !errors.As(err, &rpcErr) {
			rpcErr = &RPCError{Code: CodeInternalError, Message: err.Error()}
		}
		resp.Error = rpcErr
		_ = t.send(resp)
		return
	}

	resp.Result = nullResult
	if result != nil {
		data, err := json.Marshal(result)
		if err != nil {
			resp.Error = &RPCError{Code: CodeInternalError, Message: err.Error()}
			resp.Result = nil
		} else {
			resp.Result = data
		}
	}
	_ = t.send(resp)
}

func (t *Transport) handleNotification(msg *message) {
	t.mu.Lock()
	handler, ok := t.notifies[msg.Method]
	if !ok {
		handler, ok = t.notifies["*"]
	}
	t.mu.Unlock()

	if ok && handler != nil {
		// Handlers must not block the read loop
		go handler(msg.Method, msg.Params)
	}
}

// IsClosed returns true if the transport has been closed.
func (t *Transport) IsClosed() bool {
	return t.closed.Load()
}
