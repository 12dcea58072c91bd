package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dshills/renamekit/internal/engine/buffer"
	"github.com/dshills/renamekit/internal/input/keymap"
)

// Environment variables read by ApplyEnv.
const (
	EnvLogLevel      = "RENAMEKIT_LOG_LEVEL"
	EnvProgressDelay = "RENAMEKIT_PROGRESS_DELAY"
)

// Resolver sources.
const (
	// SourceAuto uses the language server if one is configured and the
	// script otherwise.
	SourceAuto = "auto"
	// SourceLSP uses only language servers.
	SourceLSP = "lsp"
	// SourceScript uses only Lua scripts.
	SourceScript = "script"
)

var logLevels = []string{"debug", "info", "warn", "error"}

// Config is the complete renamekit configuration.
type Config struct {
	LogLevel  string                    `toml:"log_level" yaml:"log_level"`
	Rename    RenameConfig              `toml:"rename" yaml:"rename"`
	Keys      KeysConfig                `toml:"keys" yaml:"keys"`
	Languages map[string]LanguageConfig `toml:"languages" yaml:"languages"`
}

// RenameConfig configures the rename controller.
type RenameConfig struct {
	// ProgressDelay is how long an accepted rename runs before the
	// progress indicator appears.
	ProgressDelay Duration `toml:"progress_delay" yaml:"progress_delay"`

	// Source selects the resolvers: auto, lsp or script.
	Source string `toml:"source" yaml:"source"`
}

// KeysConfig holds the keys of the rename commands.
type KeysConfig struct {
	Rename []string `toml:"rename" yaml:"rename"`
	Accept []string `toml:"accept" yaml:"accept"`
	Cancel []string `toml:"cancel" yaml:"cancel"`
}

// LanguageConfig configures one language.
type LanguageConfig struct {
	Extensions  []string     `toml:"extensions" yaml:"extensions"`
	WordPattern string       `toml:"word_pattern" yaml:"word_pattern"`
	Server      ServerConfig `toml:"server" yaml:"server"`
	Script      string       `toml:"script" yaml:"script"`
}

// ServerConfig is the language server command of a language.
type ServerConfig struct {
	Command string            `toml:"command" yaml:"command"`
	Args    []string          `toml:"args" yaml:"args"`
	Env     map[string]string `toml:"env" yaml:"env"`
}

// Pattern compiles the language's word pattern. An empty pattern gives the
// default.
func (l LanguageConfig) Pattern() (*regexp.Regexp, error) {
	return buffer.CompileWordPattern(l.WordPattern)
}

// Duration is a time.Duration written as a string such as "250ms".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Rename: RenameConfig{
			ProgressDelay: Duration(250 * time.Millisecond),
			Source:        SourceAuto,
		},
		Keys: KeysConfig{
			Rename: []string{"F2"},
			Accept: []string{"Enter"},
			Cancel: []string{"Esc", "Shift+Esc"},
		},
		Languages: map[string]LanguageConfig{
			"go": {
				Extensions: []string{".go"},
				Server:     ServerConfig{Command: "gopls"},
			},
			"rust": {
				Extensions: []string{".rs"},
				Server:     ServerConfig{Command: "rust-analyzer"},
			},
			"typescript": {
				Extensions: []string{".ts", ".tsx"},
				Server:     ServerConfig{Command: "typescript-language-server", Args: []string{"--stdio"}},
			},
			"python": {
				Extensions: []string{".py"},
				Server:     ServerConfig{Command: "pylsp"},
			},
		},
	}
}

// Extensions returns the extensions of every language, for language
// detection.
func (c *Config) Extensions() map[string][]string {
	out := make(map[string][]string, len(c.Languages))
	for id, lang := range c.Languages {
		if len(lang.Extensions) > 0 {
			out[id] = lang.Extensions
		}
	}
	return out
}

// ApplyEnv overrides settings from environment variables. lookup is
// os.LookupEnv outside tests.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvProgressDelay); ok && v != "" {
		var d Duration
		if err := d.UnmarshalText([]byte(v)); err != nil {
			return &ValidationError{Path: EnvProgressDelay, Message: err.Error(), Value: v}
		}
		c.Rename.ProgressDelay = d
	}
	return nil
}

// Validate checks the configuration. All failures are joined into the
// returned error.
func (c *Config) Validate() error {
	var errs []error
	add := func(path, msg string, value any) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: value})
	}

	if !slices.Contains(logLevels, strings.ToLower(c.LogLevel)) {
		add("log_level", "must be one of "+strings.Join(logLevels, ", "), c.LogLevel)
	}
	if c.Rename.ProgressDelay < 0 {
		add("rename.progress_delay", "must not be negative", c.Rename.ProgressDelay.Std())
	}
	switch c.Rename.Source {
	case SourceAuto, SourceLSP, SourceScript:
	default:
		add("rename.source", "must be auto, lsp or script", c.Rename.Source)
	}

	for name, keys := range map[string][]string{
		"keys.rename": c.Keys.Rename,
		"keys.accept": c.Keys.Accept,
		"keys.cancel": c.Keys.Cancel,
	} {
		if len(keys) == 0 {
			add(name, "needs at least one key", keys)
		}
		for _, k := range keys {
			if keymap.NormalizeKey(k) == "" {
				add(name, "empty key", k)
			}
		}
	}

	for id, lang := range c.Languages {
		if _, err := lang.Pattern(); err != nil {
			add(fmt.Sprintf("languages.%s.word_pattern", id), err.Error(), lang.WordPattern)
		}
		for _, ext := range lang.Extensions {
			if strings.TrimSpace(ext) == "" {
				add(fmt.Sprintf("languages.%s.extensions", id), "empty extension", ext)
			}
		}
	}

	return errors.Join(errs...)
}
