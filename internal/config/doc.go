// Package config loads renamekit configuration.
//
// A configuration file is TOML or YAML, chosen by extension. Values in the
// file override Default; environment variables override the file:
//
//	log_level = "debug"
//
//	[rename]
//	progress_delay = "250ms"
//	source = "auto"
//
//	[keys]
//	rename = ["F2"]
//	accept = ["Enter"]
//	cancel = ["Esc", "Shift+Esc"]
//
//	[languages.go]
//	extensions = [".go"]
//	server.command = "gopls"
//
//	[languages.lua]
//	extensions = [".lua"]
//	script = "~/.config/renamekit/lua-rename.lua"
//
// RENAMEKIT_LOG_LEVEL and RENAMEKIT_PROGRESS_DELAY override log_level and
// rename.progress_delay.
package config
