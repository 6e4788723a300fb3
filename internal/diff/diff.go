// Package diff renders line-based differences between an env file and its sorted form.
package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Lines returns a unified-style listing of the changes from before to after.
// Every line of both texts is printed with a "-", "+" or " " prefix under a
// "--- name" / "+++ name (sorted)" header. It returns "" when the texts are equal.
func Lines(name, before, after string) string {
	if before == after {
		return ""
	}

	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)

	var out strings.Builder
	out.WriteString("--- " + name + "\n")
	out.WriteString("+++ " + name + " (sorted)\n")

	for _, d := range diffs {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		default:
			prefix = " "
		}
		for _, line := range splitLines(d.Text) {
			out.WriteString(prefix + line + "\n")
		}
	}
	return out.String()
}

// splitLines splits text into lines without their terminators. A missing
// final newline still yields the last line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
