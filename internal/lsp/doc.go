// Package lsp resolves renames through a Language Server Protocol server.
//
// The package speaks JSON-RPC 2.0 with Content-Length framing over the
// server's stdio, keeps the server's view of each buffer in sync with full
// document updates, and turns textDocument/rename answers into workspace
// edits:
//
//	client := lsp.NewClient(lsp.ServerConfig{Command: "gopls"}, "go")
//	if err := client.Start(ctx, root); err != nil {
//	    return err
//	}
//	defer client.Shutdown(ctx)
//
//	registry.Register("go", lsp.NewResolver(client, workspace))
//
// Columns on the wire are UTF-16 code units; buffers use byte columns.
// ToPosition and ToPoint convert between the two.
package lsp
