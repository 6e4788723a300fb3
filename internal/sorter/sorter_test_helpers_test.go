package sorter

import (
	"sort"
	"strings"

	"github.com/tjun/sortenv/internal/parser"
)

// blockSet renders every block of content as a single string and returns
// them sorted, so two contents can be compared regardless of block order.
func blockSet(content string) []string {
	blocks := parser.Blockify(content)
	set := make([]string, 0, len(blocks))
	for _, block := range blocks {
		set = append(set, strings.Join(block, "\n"))
	}
	sort.Strings(set)
	return set
}

// keysInOrder returns the keys of the keyed blocks of content in the order they appear.
func keysInOrder(content string) []string {
	var keys []string
	for _, block := range parser.Blockify(content) {
		if key, ok := KeyOf(block); ok {
			keys = append(keys, key)
		}
	}
	return keys
}
