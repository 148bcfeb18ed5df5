// Package constraint parses the trees of a constraint forest and compiles
// must-link / cannot-link expressions into such forests.
//
// A tree partitions part of the vocabulary into equivalence partitions,
// whose members are pushed to share topic mass, and an independent set
// whose members are generated directly from the topic root. Every other
// word is an unconstrained leaf of the tree.
package constraint

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrSyntax        = errors.New("constraint: syntax error")
	ErrBadWordID     = errors.New("constraint: bad word id")
	ErrDuplicateWord = errors.New("constraint: word used twice in a tree")
)

// separators of the forest line format "0,1:2,3;4,5"
const (
	segmentSep   = ";"
	partitionSep = ":"
	wordSep      = ","
)

type WordType int

const (
	Unconstrained WordType = iota
	PartitionMember
	Independent
)

func (t WordType) String() string {
	switch t {
	case PartitionMember:
		return "PartitionMember"
	case Independent:
		return "Independent"
	default:
		return "Unconstrained"
	}
}

// slot values of Tree.slots below zero
const (
	slotUnconstrained = -1
	slotIndependent   = -2
)

type Tree struct {
	// Partitions[e] holds the words of the e-th equivalence partition
	Partitions [][]uint32
	// Independent holds the words generated directly from the root
	Independent []uint32

	// slots[w] is the partition index of w, or a negative slot value.
	// Words beyond len(slots) are unconstrained.
	slots []int32
}

// NewTree builds a tree from disjoint word groups, empty partitions are
// dropped
func NewTree(partitions [][]uint32, independent []uint32) (*Tree, error) {
	t := &Tree{}
	for _, words := range partitions {
		if len(words) == 0 {
			continue
		}
		if err := t.assign(words, int32(len(t.Partitions))); err != nil {
			return nil, err
		}
		t.Partitions = append(t.Partitions, words)
	}
	if err := t.assign(independent, slotIndependent); err != nil {
		return nil, err
	}
	t.Independent = independent
	return t, nil
}

func (t *Tree) assign(words []uint32, slot int32) error {
	for _, w := range words {
		if int(w) >= len(t.slots) {
			grown := make([]int32, int(w)+1)
			copy(grown, t.slots)
			for i := len(t.slots); i < len(grown); i += 1 {
				grown[i] = slotUnconstrained
			}
			t.slots = grown
		}
		if t.slots[w] != slotUnconstrained {
			return fmt.Errorf("%w: %d", ErrDuplicateWord, w)
		}
		t.slots[w] = slot
	}
	return nil
}

// Parse reads one forest line "ep:ep:...;np" where every group is a
// comma separated list of word ids. Empty groups are legal. The rendered
// form produced by String is accepted as well.
func Parse(line string) (*Tree, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return NewTree(nil, nil)
	}
	if strings.ContainsRune(line, '(') {
		return parseRendered(line)
	}

	segments := strings.Split(line, segmentSep)
	if len(segments) != 2 {
		return nil, fmt.Errorf("%w: want exactly one %q in %q", ErrSyntax, segmentSep, line)
	}

	var partitions [][]uint32
	for _, group := range strings.Split(segments[0], partitionSep) {
		words, err := parseWords(group)
		if err != nil {
			return nil, err
		}
		partitions = append(partitions, words)
	}
	independent, err := parseWords(segments[1])
	if err != nil {
		return nil, err
	}
	return NewTree(partitions, independent)
}

// parseRendered reads "Partition(0,1)^Independent(4,5)"
func parseRendered(line string) (*Tree, error) {
	var partitions [][]uint32
	var independent []uint32
	for _, prim := range strings.Split(line, "^") {
		prim = strings.TrimSpace(prim)
		open := strings.IndexByte(prim, '(')
		if open < 0 || !strings.HasSuffix(prim, ")") {
			return nil, fmt.Errorf("%w: %q", ErrSyntax, prim)
		}
		words, err := parseWords(prim[open+1 : len(prim)-1])
		if err != nil {
			return nil, err
		}
		switch prim[:open] {
		case "Partition":
			partitions = append(partitions, words)
		case "Independent":
			independent = append(independent, words...)
		default:
			return nil, fmt.Errorf("%w: unknown primitive %q", ErrSyntax, prim[:open])
		}
	}
	return NewTree(partitions, independent)
}

func parseWords(group string) ([]uint32, error) {
	var words []uint32
	for _, tok := range strings.Split(group, wordSep) {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		w, err := strconv.ParseUint(tok, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadWordID, tok)
		}
		words = append(words, uint32(w))
	}
	return words, nil
}

// TypeOf reports how the tree treats word w
func (t *Tree) TypeOf(w uint32) WordType {
	if int(w) >= len(t.slots) {
		return Unconstrained
	}
	switch s := t.slots[w]; {
	case s >= 0:
		return PartitionMember
	case s == slotIndependent:
		return Independent
	default:
		return Unconstrained
	}
}

// PartitionIndex returns the partition holding w, it panics unless
// TypeOf(w) is PartitionMember
func (t *Tree) PartitionIndex(w uint32) int {
	if int(w) >= len(t.slots) || t.slots[w] < 0 {
		panic(fmt.Sprintf("constraint: word %d is not a partition member", w))
	}
	return int(t.slots[w])
}

// Lookup combines TypeOf and PartitionIndex, the index is -1 for words
// that are not partition members
func (t *Tree) Lookup(w uint32) (WordType, int) {
	if int(w) >= len(t.slots) {
		return Unconstrained, -1
	}
	switch s := t.slots[w]; {
	case s >= 0:
		return PartitionMember, int(s)
	case s == slotIndependent:
		return Independent, -1
	default:
		return Unconstrained, -1
	}
}

// MaxWord returns the largest word id mentioned by the tree, or -1
func (t *Tree) MaxWord() int {
	for w := len(t.slots) - 1; w >= 0; w -= 1 {
		if t.slots[w] != slotUnconstrained {
			return w
		}
	}
	return -1
}

// ConstrainedCount is the number of words in partitions or the independent set
func (t *Tree) ConstrainedCount() int {
	n := len(t.Independent)
	for _, p := range t.Partitions {
		n += len(p)
	}
	return n
}

// String renders the tree for diagnostics,
// e.g. Partition(0,1)^Partition(2,3)^Independent(4,5)
func (t *Tree) String() string {
	return t.Format(nil)
}

// Format is String with every word id rendered by name, a nil name
// prints the ids
func (t *Tree) Format(name func(uint32) string) string {
	if name == nil {
		name = func(w uint32) string { return strconv.FormatUint(uint64(w), 10) }
	}
	group := func(words []uint32) string {
		strs := make([]string, len(words))
		for i, w := range words {
			strs[i] = name(w)
		}
		return strings.Join(strs, wordSep)
	}
	var prims []string
	for _, p := range t.Partitions {
		prims = append(prims, "Partition("+group(p)+")")
	}
	if len(t.Independent) > 0 {
		prims = append(prims, "Independent("+group(t.Independent)+")")
	}
	return strings.Join(prims, "^")
}

// Line renders the tree in the forest file format
func (t *Tree) Line() string {
	groups := make([]string, len(t.Partitions))
	for i, p := range t.Partitions {
		groups[i] = joinWords(p)
	}
	return strings.Join(groups, partitionSep) + segmentSep + joinWords(t.Independent)
}

func joinWords(words []uint32) string {
	strs := make([]string, len(words))
	for i, w := range words {
		strs[i] = strconv.FormatUint(uint64(w), 10)
	}
	return strings.Join(strs, wordSep)
}
