package rename

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/renamekit/internal/bulkedit"
	"github.com/dshills/renamekit/internal/engine/buffer"
	"github.com/dshills/renamekit/internal/engine/cursor"
	"github.com/dshills/renamekit/internal/event"
	"github.com/dshills/renamekit/internal/event/topic"
)

// EventSource is the source of rename events and edit transactions.
const EventSource = "rename"

// Event topics published by the controller.
const (
	TopicStarted   topic.Topic = "rename.started"
	TopicCancelled topic.Topic = "rename.cancelled"
	TopicRejected  topic.Topic = "rename.rejected"
	TopicCommitted topic.Topic = "rename.committed"
	TopicFailed    topic.Topic = "rename.failed"
)

// EventPayload is the payload of rename events.
type EventPayload struct {
	EditorID string
	Path     string
	Word     string
	NewName  string
	Reason   string
	Err      error
}

// Editor is the editor a controller renames in.
type Editor interface {
	ID() string
	Buffer() *buffer.Buffer
	Path() string
	Selection() cursor.Selection
	SetSelection(sel cursor.Selection) error
	Focus()
	Blur()
}

// Transaction accumulates edits and commits them with conflict detection.
type Transaction interface {
	Add(e bulkedit.WorkspaceEdit) error
	Finish(ctx context.Context) (*cursor.Selection, error)
}

// EditService opens transactions scoped to an editor.
type EditService interface {
	Open(source string, ed bulkedit.Editor) Transaction
}

// BulkEdits adapts a bulk edit service to EditService.
func BulkEdits(svc *bulkedit.Service) EditService {
	return bulkEditService{svc: svc}
}

type bulkEditService struct {
	svc *bulkedit.Service
}

func (b bulkEditService) Open(source string, ed bulkedit.Editor) Transaction {
	return b.svc.Open(source, ed)
}

// LanguageSupport reports whether a language can be renamed.
type LanguageSupport interface {
	Has(languageID string) bool
}

// Publisher publishes events. *event.Bus implements it.
type Publisher interface {
	Publish(ctx context.Context, event any) error
}

// Config holds the collaborators of a Controller.
type Config struct {
	Editor   Editor
	Session  *Session
	State    *State
	Resolver Resolver
	Edits    EditService
	Feedback Feedback

	// Languages gates the rename command. Defaults to Resolver when it
	// implements LanguageSupport.
	Languages LanguageSupport

	// Optional.
	Progress      Progress
	ProgressDelay time.Duration
	Events        Publisher
	Logger        Logger
}

// Controller runs renames for one editor.
type Controller struct {
	editor    Editor
	session   *Session
	state     *State
	resolver  Resolver
	edits     EditService
	feedback  Feedback
	languages LanguageSupport
	progress  Progress
	delay     time.Duration
	events    Publisher
	logger    Logger
}

// NewController creates a controller from cfg.
func NewController(cfg Config) *Controller {
	c := &Controller{
		editor:    cfg.Editor,
		session:   cfg.Session,
		state:     cfg.State,
		resolver:  cfg.Resolver,
		edits:     cfg.Edits,
		feedback:  cfg.Feedback,
		languages: cfg.Languages,
		progress:  cfg.Progress,
		delay:     cfg.ProgressDelay,
		events:    cfg.Events,
		logger:    cfg.Logger,
	}
	if c.delay <= 0 {
		c.delay = DefaultProgressDelay
	}
	if c.logger == nil {
		c.logger = nopLogger{}
	}
	if c.languages == nil {
		if ls, ok := cfg.Resolver.(LanguageSupport); ok {
			c.languages = ls
		}
	}
	return c
}

// State returns the controller's state.
func (c *Controller) State() *State {
	return c.state
}

// Session returns the controller's input session.
func (c *Controller) Session() *Session {
	return c.session
}

// CanRename reports whether the rename command is enabled: the buffer is
// writable, its language has a resolver and no rename is pending.
func (c *Controller) CanRename() bool {
	buf := c.editor.Buffer()
	if buf.IsReadOnly() || c.state.Busy() {
		return false
	}
	return c.languages == nil || c.languages.Has(buf.LanguageID())
}

// Run performs one rename at the editor's selection.
//
// Run returns a nil error for every outcome except StatusFailed, whose
// error is a *Error. Cancelling ctx cancels the input; after a name is
// accepted ctx cancellation is ignored.
func (c *Controller) Run(ctx context.Context) (Result, error) {
	c.state.setBusy(true)
	defer c.state.setBusy(false)

	buf := c.editor.Buffer()
	ws, ok := ResolveWord(buf, c.editor.Selection())
	if !ok {
		c.logger.Debug("rename: no word at %s", c.editor.Selection().Start())
		return Result{Status: StatusNoWord}, nil
	}

	opID := uuid.NewString()
	payload := EventPayload{EditorID: c.editor.ID(), Path: c.editor.Path(), Word: ws.Word.Text}
	c.publish(ctx, TopicStarted, opID, payload)

	// The input takes focus while it is open
	c.editor.Blur()
	outcome, err := c.session.Show(ctx, ws.Range, ws.Word.Text, ws.Selection.Start, ws.Selection.End)
	c.editor.Focus()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			c.publish(ctx, TopicCancelled, opID, payload)
			return Result{Status: StatusCancelled, Word: ws.Word}, nil
		}
		rerr := &Error{Op: "show", Word: ws.Word.Text, Err: err}
		c.logger.Error("%v", rerr)
		payload.Err = rerr
		c.publish(ctx, TopicFailed, opID, payload)
		return Result{Status: StatusFailed, Word: ws.Word, Err: rerr}, rerr
	}
	if !outcome.IsAccepted() {
		c.publish(ctx, TopicCancelled, opID, payload)
		return Result{Status: StatusCancelled, Word: ws.Word}, nil
	}

	newName := outcome.NewName
	payload.NewName = newName

	actx := context.WithoutCancel(ctx)
	res := showWhile(c.progress, c.delay, ProgressMessage, func() acceptedResult {
		return c.apply(actx, buf, ws.Position, newName)
	})

	result := Result{Word: ws.Word, NewName: newName}
	switch res.kind {
	case resultRejected:
		c.feedback.Show(SeverityInfo, res.reason)
		payload.Reason = res.reason
		c.publish(actx, TopicRejected, opID, payload)
		result.Status = StatusRejected
		result.Reason = res.reason
		return result, nil

	case resultFailed:
		rerr := &Error{Op: res.op, Word: ws.Word.Text, NewName: newName, Err: res.err}
		c.feedback.Show(SeverityError, FailureMessage)
		payload.Err = rerr
		c.publish(actx, TopicFailed, opID, payload)
		result.Status = StatusFailed
		result.Err = rerr
		return result, rerr

	default:
		if res.selection != nil {
			if err := c.editor.SetSelection(*res.selection); err != nil {
				c.logger.Warn("rename: restore selection: %v", err)
			}
		}
		c.publish(actx, TopicCommitted, opID, payload)
		result.Status = StatusCommitted
		result.Selection = res.selection
		return result, nil
	}
}

type resultKind uint8

const (
	resultCommitted resultKind = iota
	resultRejected
	resultFailed
)

// acceptedResult is the outcome of the accepted path.
type acceptedResult struct {
	kind      resultKind
	reason    string
	op        string
	err       error
	selection *cursor.Selection
}

func rejected(reason string) acceptedResult {
	return acceptedResult{kind: resultRejected, reason: reason}
}

func failed(op string, err error) acceptedResult {
	return acceptedResult{kind: resultFailed, op: op, err: err}
}

func committed(sel *cursor.Selection) acceptedResult {
	return acceptedResult{kind: resultCommitted, selection: sel}
}

// apply resolves and commits a rename. The transaction is opened first so
// changes made while resolving are detected at Finish.
func (c *Controller) apply(ctx context.Context, buf *buffer.Buffer, pos buffer.Point, newName string) acceptedResult {
	tx := c.edits.Open(EventSource, c.editor)

	resolution, err := c.resolver.Resolve(ctx, buf, pos, newName)
	if err != nil {
		return failed("resolve", err)
	}
	if resolution.IsRejected() {
		return rejected(resolution.Reason())
	}

	if err := tx.Add(resolution.WorkspaceEdit()); err != nil {
		return failed("add", err)
	}
	sel, err := tx.Finish(ctx)
	if err != nil {
		return failed("finish", err)
	}
	return committed(sel)
}

func (c *Controller) publish(ctx context.Context, t topic.Topic, opID string, payload EventPayload) {
	if c.events == nil {
		return
	}
	ev := event.NewEvent(t, payload, EventSource).WithCorrelation(opID)
	if err := c.events.Publish(context.WithoutCancel(ctx), ev); err != nil {
		c.logger.Warn("rename: publish %s: %v", t, err)
	}
}
