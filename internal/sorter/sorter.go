package sorter

import (
	"strings"

	"github.com/tjun/sortenv/internal/parser"
)

const newline = "\n"

// Sort orders the entries of env file content by key, keeping comment lines
// attached to the entry below them. It never fails: malformed lines are
// sorted as ordinary entries. The result always ends with exactly one newline,
// so empty input yields "\n".
func Sort(content string) string {
	return Render(Order(parser.Blockify(content)))
}

// Render joins blocks back into file content. A blank line is placed before
// every block except the first when the block spans several lines or is a
// single comment line; bare single-line entries are kept adjacent.
func Render(blocks []parser.Block) string {
	var b strings.Builder
	for i, block := range blocks {
		if i > 0 {
			b.WriteString(newline)
			if needsSeparator(block) {
				b.WriteString(newline)
			}
		}
		b.WriteString(strings.Join(block, newline))
	}
	b.WriteString(newline)
	return b.String()
}

func needsSeparator(block parser.Block) bool {
	return len(block) > 1 || parser.IsComment(block[0])
}
