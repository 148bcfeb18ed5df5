package corpus

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Lexicon maps word ids to surface forms, the id of a word is the
// (zero based) line number it appears on in a .lex file
type Lexicon struct {
	Words []string
	ids   map[string]uint32
}

func NewLexicon(words []string) *Lexicon {
	lex := &Lexicon{
		Words: words,
		ids:   make(map[string]uint32, len(words)),
	}
	for i, w := range words {
		lex.ids[w] = uint32(i)
	}
	return lex
}

func ReadLexicon(r io.Reader) (*Lexicon, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		words = append(words, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return NewLexicon(words), nil
}

func LoadLexicon(fn string) (*Lexicon, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	lex, err := ReadLexicon(f)
	if err != nil {
		return nil, fmt.Errorf("load lexicon %s: %w", fn, err)
	}
	return lex, nil
}

// Id looks up the id of word
func (lex *Lexicon) Id(word string) (uint32, bool) {
	id, ok := lex.ids[word]
	return id, ok
}

// Word returns the surface form of id, or the id itself when unknown
func (lex *Lexicon) Word(id uint32) string {
	if lex == nil || int(id) >= len(lex.Words) {
		return fmt.Sprint(id)
	}
	return lex.Words[id]
}
