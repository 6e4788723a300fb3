package sorter

import (
	"sort"

	"github.com/tjun/sortenv/internal/parser"
)

// KeyOf returns the sort key of a block: the verbatim text of its last
// non-comment line. ok is false for dangling comment blocks.
func KeyOf(block parser.Block) (key string, ok bool) {
	for i := len(block) - 1; i >= 0; i-- {
		if !parser.IsComment(block[i]) {
			return block[i], true
		}
	}
	return "", false
}

// Order returns the blocks with keyed blocks sorted ascending by key, followed
// by the dangling comment blocks in their original order. Blocks sharing a key
// keep their relative order. The input slice is not modified.
func Order(blocks []parser.Block) []parser.Block {
	type keyedBlock struct {
		key   string
		block parser.Block
	}

	keyed := make([]keyedBlock, 0, len(blocks))
	var dangling []parser.Block
	for _, block := range blocks {
		if key, ok := KeyOf(block); ok {
			keyed = append(keyed, keyedBlock{key: key, block: block})
		} else {
			dangling = append(dangling, block)
		}
	}

	sort.SliceStable(keyed, func(i, j int) bool {
		return keyed[i].key < keyed[j].key
	})

	ordered := make([]parser.Block, 0, len(blocks))
	for _, kb := range keyed {
		ordered = append(ordered, kb.block)
	}
	return append(ordered, dangling...)
}
