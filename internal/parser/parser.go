package parser

import (
	"strings"
)

// Block is the unit of reordering in an env file: an entry line with the
// comment lines directly above it, or a run of comment lines that no entry
// follows before the next blank line.
type Block []string

// IsComment reports whether line is a comment line (trimmed text starts with '#').
func IsComment(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "#")
}

// IsBlank reports whether line contains only whitespace.
func IsBlank(line string) bool {
	return len(strings.TrimSpace(line)) == 0
}

type state int

const (
	stateBoundary state = iota // after a blank line or at start of input
	stateComments              // open block ends with a comment line
	stateEntry                 // open block was closed by an entry line
)

// Blockify splits env file content into blocks. Blank lines only separate
// blocks and are not kept; leading, trailing and repeated blank lines never
// produce empty blocks.
func Blockify(content string) []Block {
	var blocks []Block
	current := -1 // index of the block that may still grow
	st := stateBoundary

	for _, line := range strings.Split(content, "\n") {
		if IsBlank(line) {
			st = stateBoundary
			continue
		}

		switch st {
		case stateComments:
			blocks[current] = append(blocks[current], line)
		default: // boundary or entry: this line starts a new block
			blocks = append(blocks, Block{line})
			current = len(blocks) - 1
		}

		if IsComment(line) {
			st = stateComments
		} else {
			st = stateEntry
		}
	}

	return blocks
}
