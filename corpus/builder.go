package corpus

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	log "github.com/golang/glog"
)

// simple English words, no numbers or symbols, no contractions
var reWord = regexp.MustCompile(`^[a-zA-Z][a-zA-Z\-\.]*$`)

// words longer than this are treated as noise
const maxWordLen = 27

func isWord(word string) bool {
	return len(word) <= maxWordLen && reWord.MatchString(word)
}

// BuildLexicon collects the words of raw texts whose frequency is at
// least minFreq, most frequent first. Ties keep first-occurrence order.
func BuildLexicon(texts []string, minFreq int) *Lexicon {
	freq := make(map[string]int)
	var order []string
	for _, text := range texts {
		for _, w := range strings.Fields(text) {
			if _, ok := freq[w]; !ok {
				order = append(order, w)
			}
			freq[w] += 1
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return freq[order[i]] > freq[order[j]]
	})

	var words []string
	for _, w := range order {
		if freq[w] < minFreq {
			break
		}
		if !isWord(w) {
			continue
		}
		words = append(words, w)
	}
	return NewLexicon(words)
}

// FormatDoc renders one raw text as a corpus line, word ids ascending
func FormatDoc(text string, lex *Lexicon) string {
	counts := make(map[uint32]uint32)
	for _, w := range strings.Fields(text) {
		if id, ok := lex.Id(w); ok {
			counts[id] += 1
		}
	}
	ids := make([]uint32, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	fields := make([]string, len(ids))
	for i, id := range ids {
		fields[i] = fmt.Sprintf("%d:%d", id, counts[id])
	}
	return strings.Join(fields, " ")
}

// WriteDataset writes the lexicon and the corpus built from texts
func WriteDataset(texts []string, lex *Lexicon, lexOut, datOut io.Writer) error {
	lw := bufio.NewWriter(lexOut)
	for _, w := range lex.Words {
		fmt.Fprintln(lw, w)
	}
	if err := lw.Flush(); err != nil {
		return err
	}

	dw := bufio.NewWriter(datOut)
	for _, text := range texts {
		fmt.Fprintln(dw, FormatDoc(text, lex))
	}
	return dw.Flush()
}

// BuildDataset makes <outBase>.lex and <outBase>.dat from a raw text file
// holding one space separated document per line
func BuildDataset(rawFn, outBase string, minFreq int) error {
	raw, err := os.ReadFile(rawFn)
	if err != nil {
		return err
	}
	texts := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	if len(raw) == 0 {
		texts = nil
	}

	lex := BuildLexicon(texts, minFreq)
	log.Infof("lexicon size %d (min freq %d)", len(lex.Words), minFreq)

	lexFn, datFn := outBase+".lex", outBase+".dat"
	lexOut, err := os.Create(lexFn)
	if err != nil {
		return err
	}
	defer lexOut.Close()
	datOut, err := os.Create(datFn)
	if err != nil {
		return err
	}
	defer datOut.Close()

	if err := WriteDataset(texts, lex, lexOut, datOut); err != nil {
		return fmt.Errorf("write dataset %s: %w", outBase, err)
	}
	if err := lexOut.Close(); err != nil {
		return err
	}
	if err := datOut.Close(); err != nil {
		return err
	}
	log.Infof("wrote %s and %s", lexFn, datFn)
	return nil
}
