package constraint

import (
	"fmt"
	"sort"
	"strings"
)

type wordSet map[uint32]struct{}

func newWordSet(words []uint32) wordSet {
	s := make(wordSet, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

func (s wordSet) has(w uint32) bool {
	_, ok := s[w]
	return ok
}

func (s wordSet) union(o wordSet) {
	for w := range o {
		s[w] = struct{}{}
	}
}

func (s wordSet) intersects(o wordSet) bool {
	for w := range s {
		if o.has(w) {
			return true
		}
	}
	return false
}

func (s wordSet) subsetOf(o wordSet) bool {
	for w := range s {
		if !o.has(w) {
			return false
		}
	}
	return true
}

func (s wordSet) minus(o wordSet) wordSet {
	d := make(wordSet)
	for w := range s {
		if !o.has(w) {
			d[w] = struct{}{}
		}
	}
	return d
}

func (s wordSet) clone() wordSet {
	c := make(wordSet, len(s))
	c.union(s)
	return c
}

func (s wordSet) sorted() []uint32 {
	words := make([]uint32, 0, len(s))
	for w := range s {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool { return words[i] < words[j] })
	return words
}

// Conj is a conjunction of Ep (equivalence partition) and Np (independent)
// primitives, i.e. a single constraint tree
type Conj struct {
	eps []wordSet
	np  wordSet
}

func NewConj() *Conj {
	return &Conj{np: make(wordSet)}
}

// AddEp conjoins Ep(words). Overlapping partitions merge,
// Ep(A,B) & Ep(B,C) = Ep(A,B,C), and a partition touching the
// independent set dissolves into it, Ep(A,B) & Np(A) = Np(A) & Np(B).
func (c *Conj) AddEp(words []uint32) error {
	ep := newWordSet(words)
	if len(ep) < 2 {
		return fmt.Errorf("%w: Ep needs at least two words, got %v", ErrSyntax, words)
	}
	kept := c.eps[:0]
	for _, old := range c.eps {
		if ep.intersects(old) {
			ep.union(old)
			continue
		}
		kept = append(kept, old)
	}
	c.eps = kept

	if ep.intersects(c.np) {
		c.np.union(ep)
	} else {
		c.eps = append(c.eps, ep)
	}
	return nil
}

// AddNp conjoins Np(w), pulling the partition of w into the independent set
func (c *Conj) AddNp(w uint32) {
	for i, ep := range c.eps {
		if ep.has(w) {
			c.np.union(ep)
			c.eps = append(c.eps[:i], c.eps[i+1:]...)
			return
		}
	}
	c.np[w] = struct{}{}
}

func (c *Conj) Clone() *Conj {
	n := &Conj{np: c.np.clone()}
	for _, ep := range c.eps {
		n.eps = append(n.eps, ep.clone())
	}
	return n
}

// And returns c & o
func (c *Conj) And(o *Conj) *Conj {
	n := c.Clone()
	for _, ep := range o.eps {
		// merged partitions always hold two or more words
		_ = n.AddEp(ep.sorted())
	}
	for w := range o.np {
		n.AddNp(w)
	}
	return n
}

// absorbs reports whether c | o = c, using X | (X & Y) = X generalized by
// Ep(A,B,..) | (Np(A) & Np(B) & ..) = Ep(A,B,..)
func (c *Conj) absorbs(o *Conj) bool {
	if !c.np.subsetOf(o.np) {
		return false
	}
	npDif := o.np.minus(c.np)
	for _, ep := range c.eps {
		contained := false
		for _, ep2 := range o.eps {
			if ep.subsetOf(ep2) {
				contained = true
				break
			}
		}
		if !contained && !ep.subsetOf(npDif) {
			return false
		}
	}
	return true
}

// Tree converts the conjunction to a constraint tree, words ascending
func (c *Conj) Tree() *Tree {
	partitions := make([][]uint32, len(c.eps))
	for i, ep := range c.eps {
		partitions[i] = ep.sorted()
	}
	// the merge rules keep partitions and the independent set disjoint
	t, err := NewTree(partitions, c.np.sorted())
	if err != nil {
		panic(err)
	}
	return t
}

func (c *Conj) String() string {
	var prims []string
	for _, ep := range c.eps {
		prims = append(prims, "Ep("+joinWords(ep.sorted())+")")
	}
	for _, w := range c.np.sorted() {
		prims = append(prims, fmt.Sprintf("Np(%d)", w))
	}
	sort.Strings(prims)
	return strings.Join(prims, "&")
}

// DNF is a disjunction of conjunctions, each becoming one tree
type DNF []*Conj

// And distributes the conjunction over both disjunctions
func (d DNF) And(o DNF) DNF {
	n := make(DNF, 0, len(d)*len(o))
	for _, c1 := range d {
		for _, c2 := range o {
			n = append(n, c1.And(c2))
		}
	}
	return n
}

func (d DNF) Or(o DNF) DNF {
	n := make(DNF, 0, len(d)+len(o))
	for _, c := range d {
		n = append(n, c.Clone())
	}
	for _, c := range o {
		n = append(n, c.Clone())
	}
	return n
}

// Shrink drops every conjunction absorbed by another one
func (d DNF) Shrink() DNF {
	n := append(DNF(nil), d...)
	for i := 0; i < len(n)-1; i += 1 {
		if n[i] == nil {
			continue
		}
		for j := i + 1; j < len(n); j += 1 {
			if n[j] == nil {
				continue
			}
			if n[j].absorbs(n[i]) {
				n[i] = nil
				break
			}
			if n[i].absorbs(n[j]) {
				n[j] = nil
			}
		}
	}

	kept := n[:0]
	for _, c := range n {
		if c != nil {
			kept = append(kept, c)
		}
	}
	return kept
}

func (d DNF) Forest() Forest {
	forest := make(Forest, len(d))
	for i, c := range d {
		forest[i] = c.Tree()
	}
	return forest
}

func (d DNF) String() string {
	strs := make([]string, len(d))
	for i, c := range d {
		strs[i] = c.String()
	}
	sort.Strings(strs)
	return strings.Join(strs, " | ")
}
