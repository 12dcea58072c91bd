package bulkedit

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Preview renders a line diff between two versions of a document.
// Only changed lines are shown, each run preceded by an "@@ -old +new @@"
// header with 1-based line numbers. Identical texts render as "".
func Preview(path, before, after string) string {
	if before == after {
		return ""
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s\n+++ %s\n", path, path)

	oldLine, newLine := 1, 1
	inHunk := false
	for _, d := range diffs {
		text := splitDiffLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			oldLine += len(text)
			newLine += len(text)
			inHunk = false
		case diffmatchpatch.DiffDelete:
			if !inHunk {
				fmt.Fprintf(&sb, "@@ -%d +%d @@\n", oldLine, newLine)
				inHunk = true
			}
			for _, l := range text {
				sb.WriteString("-" + l + "\n")
			}
			oldLine += len(text)
		case diffmatchpatch.DiffInsert:
			if !inHunk {
				fmt.Fprintf(&sb, "@@ -%d +%d @@\n", oldLine, newLine)
				inHunk = true
			}
			for _, l := range text {
				sb.WriteString("+" + l + "\n")
			}
			newLine += len(text)
		}
	}
	return sb.String()
}

// splitDiffLines splits line-mode diff text into lines without newlines.
func splitDiffLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
