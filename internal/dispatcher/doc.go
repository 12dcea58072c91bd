// Package dispatcher routes actions to command handlers.
//
// Commands are registered by name with a handler and an optional
// precondition. Dispatch runs the handler only when the precondition holds;
// otherwise it returns a no-op result. Handler panics are recovered and
// reported as error results.
//
//	d := dispatcher.New()
//	d.Register(dispatcher.Command{
//		Name:    "editor.rename",
//		When:    ctrl.CanRename,
//		Handler: handler.HandlerFunc(renameHandler),
//	})
//	result := d.Dispatch(ctx, input.NewAction("editor.rename", input.SourceKeyboard))
package dispatcher
