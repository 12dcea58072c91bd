// Package main is the entry point for renamekit.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/pflag"

	"github.com/dshills/renamekit/internal/app"
	"github.com/dshills/renamekit/internal/rename"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const shutdownTimeout = 5 * time.Second

// cliOptions holds the parsed command line.
type cliOptions struct {
	app.Options

	name        string
	showVersion bool
	showHelp    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, fs, err := parseFlags(args, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if opts.showHelp {
		fs.Usage()
		return 0
	}
	if opts.showVersion {
		fmt.Fprintf(stdout, "renamekit %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return 0
	}

	opts.Output = stdout
	opts.LogOutput = stderr
	opts.Watch = opts.name == ""

	application, err := app.New(opts.Options)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	// Ensure cleanup on all exit paths
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := application.Shutdown(sctx); err != nil {
			fmt.Fprintf(stderr, "Error: shutdown: %v\n", err)
		}
	}()

	if opts.name != "" {
		res, err := application.RunRename(ctx, opts.name)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return exitCode(res.Status)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	if err := application.RunInteractive(ctx, screen); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// exitCode maps a finished rename to the process exit status.
func exitCode(status rename.Status) int {
	if status == rename.StatusFailed {
		return 1
	}
	return 0
}

func parseFlags(args []string, stderr io.Writer) (cliOptions, *pflag.FlagSet, error) {
	var opts cliOptions
	var server string

	fs := pflag.NewFlagSet("renamekit", pflag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVarP(&opts.name, "name", "n", "", "Rename to `NAME` without prompting")
	fs.BoolVar(&opts.DryRun, "dry-run", false, "Print a patch instead of saving")
	fs.StringVar(&opts.ScriptPath, "script", "", "Lua rename script for the file's language")
	fs.StringVar(&server, "server", "", "Language server command for the file's language")
	fs.BoolVarP(&opts.showVersion, "version", "v", false, "Show version information")
	fs.BoolVarP(&opts.showHelp, "help", "h", false, "Show help message")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "renamekit - rename the symbol under the cursor\n\n")
		fmt.Fprintf(stderr, "Usage: renamekit [options] FILE LINE[:COL]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  renamekit main.go 12:6               Rename interactively\n")
		fmt.Fprintf(stderr, "  renamekit -n total main.go 12:6      Rename to total and save\n")
		fmt.Fprintf(stderr, "  renamekit --dry-run -n total a.go 3  Print the patch only\n")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			opts.showHelp = true
			return opts, fs, nil
		}
		return opts, fs, err
	}
	if opts.showHelp || opts.showVersion {
		return opts, fs, nil
	}

	// Validate log level
	switch opts.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return opts, fs, fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", opts.LogLevel)
	}

	if fs.NArg() != 2 {
		return opts, fs, fmt.Errorf("expected FILE and LINE[:COL], got %d arguments", fs.NArg())
	}
	opts.File = fs.Arg(0)

	line, col, err := parsePosition(fs.Arg(1))
	if err != nil {
		return opts, fs, err
	}
	opts.Line, opts.Column = line, col

	if server != "" {
		opts.ServerCommand = strings.Fields(server)
	}
	return opts, fs, nil
}

// parsePosition parses LINE or LINE:COL, both 1-based.
func parsePosition(s string) (line, col int, err error) {
	lineStr, colStr, hasCol := strings.Cut(s, ":")
	line, err = strconv.Atoi(lineStr)
	if err != nil || line < 1 {
		return 0, 0, fmt.Errorf("invalid line in position %q", s)
	}
	col = 1
	if hasCol {
		col, err = strconv.Atoi(colStr)
		if err != nil || col < 1 {
			return 0, 0, fmt.Errorf("invalid column in position %q", s)
		}
	}
	return line, col, nil
}
