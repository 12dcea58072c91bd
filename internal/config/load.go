package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultPath returns the default configuration file,
// $XDG_CONFIG_HOME/renamekit/config.toml or its platform equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "renamekit", "config.toml"), nil
}

// Load reads the file at path over Default, applies the environment and
// validates the result. An empty path loads the file at DefaultPath if it
// exists.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if p, err := DefaultPath(); err == nil {
			path = p
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := Decode(path, data, cfg); err != nil {
				return nil, err
			}
		case errors.Is(err, os.ErrNotExist):
			if explicit {
				return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
			}
		default:
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode parses data over cfg. The format is chosen from the extension of
// path: .toml, .yaml or .yml. Unknown settings are errors.
//
// A language entry overrides only the fields it sets on the entry of the
// same id in cfg.
func Decode(path string, data []byte, cfg *Config) error {
	base := cfg.Languages
	cfg.Languages = nil

	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = decodeTOML(path, data, cfg)
	case ".yaml", ".yml":
		err = decodeYAML(path, data, cfg)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		cfg.Languages = base
		return err
	}

	cfg.Languages = mergeLanguages(base, cfg.Languages)
	return nil
}

func decodeTOML(path string, data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		perr := &ParseError{Path: path, Message: err.Error(), Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		return perr
	}
	return nil
}

func decodeYAML(path string, data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return &ParseError{Path: path, Message: err.Error(), Err: err}
	}
	return nil
}

func mergeLanguages(base, over map[string]LanguageConfig) map[string]LanguageConfig {
	out := make(map[string]LanguageConfig, len(base)+len(over))
	for id, lang := range base {
		out[id] = lang
	}
	for id, lang := range over {
		merged := out[id]
		if len(lang.Extensions) > 0 {
			merged.Extensions = lang.Extensions
		}
		if lang.WordPattern != "" {
			merged.WordPattern = lang.WordPattern
		}
		if lang.Server.Command != "" {
			merged.Server = lang.Server
		}
		if lang.Script != "" {
			merged.Script = lang.Script
		}
		out[id] = merged
	}
	return out
}
