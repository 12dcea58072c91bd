package workspace

import (
	"path/filepath"
	"strings"
)

// LanguageDetector returns the language id for a file path, or "" if unknown.
type LanguageDetector func(path string) string

var defaultLanguages = map[string]string{
	".go":   "go",
	".py":   "python",
	".js":   "javascript",
	".ts":   "typescript",
	".jsx":  "javascriptreact",
	".tsx":  "typescriptreact",
	".rs":   "rust",
	".rb":   "ruby",
	".java": "java",
	".c":    "c",
	".h":    "c",
	".cpp":  "cpp",
	".cc":   "cpp",
	".hpp":  "cpp",
	".cs":   "csharp",
	".php":  "php",
	".lua":  "lua",
	".sh":   "shellscript",
	".bash": "shellscript",
	".md":   "markdown",
}

// DetectLanguageID detects a language id from a file extension.
func DetectLanguageID(path string) string {
	return defaultLanguages[strings.ToLower(filepath.Ext(path))]
}

// ExtensionDetector builds a detector from a language id -> extensions map.
// Extensions may be given with or without the leading dot. Paths whose
// extension is not listed fall back to DetectLanguageID.
func ExtensionDetector(languages map[string][]string) LanguageDetector {
	byExt := make(map[string]string)
	for lang, exts := range languages {
		for _, ext := range exts {
			ext = strings.ToLower(ext)
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			byExt[ext] = lang
		}
	}
	return func(path string) string {
		if lang, ok := byExt[strings.ToLower(filepath.Ext(path))]; ok {
			return lang
		}
		return DetectLanguageID(path)
	}
}
