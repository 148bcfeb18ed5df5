package corpus

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	log "github.com/golang/glog"
)

var ErrBadToken = errors.New("corpus: malformed word count")

type Corpus struct {
	VocabSize uint32
	DocNum    uint32
	// total number of tokens
	TermNum uint32
	// Docs[d] is the token sequence of document d, each word id
	// repeated by its frequency
	Docs [][]uint32
}

type WordCount struct {
	WordId uint32
	Count  uint32
}

func ExpandWords(wcs []*WordCount) []uint32 {
	var words []uint32
	for _, wc := range wcs {
		for i := uint32(0); i < wc.Count; i += 1 {
			words = append(words, wc.WordId)
		}
	}
	return words
}

// ParseWordCounts parses one document line of the form
// [wordId:wordCount wordId:wordCount ... wordId:wordCount]
func ParseWordCounts(line string) ([]*WordCount, error) {
	var wcs []*WordCount
	for _, kv := range strings.Fields(line) {
		wc := strings.Split(kv, ":")
		if len(wc) != 2 {
			return nil, fmt.Errorf("%w: %q", ErrBadToken, kv)
		}

		wordId, err := strconv.ParseUint(wc[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrBadToken, kv, err)
		}

		count, err := strconv.ParseUint(wc[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrBadToken, kv, err)
		}

		wcs = append(wcs, &WordCount{
			WordId: uint32(wordId),
			Count:  uint32(count),
		})
	}
	return wcs, nil
}

// Read loads documents from r, one document per line. A blank line is
// an empty document. The vocabulary size is the largest word id plus one.
func Read(r io.Reader) (*Corpus, error) {
	c := &Corpus{}
	vocabMaxId := int64(-1)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	lineIdx := 0
	for scanner.Scan() {
		lineIdx += 1
		wcs, err := ParseWordCounts(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineIdx, err)
		}

		doc := ExpandWords(wcs)
		for _, wc := range wcs {
			if int64(wc.WordId) > vocabMaxId {
				vocabMaxId = int64(wc.WordId)
			}
		}
		c.Docs = append(c.Docs, doc)
		c.TermNum += uint32(len(doc))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	c.DocNum = uint32(len(c.Docs))
	c.VocabSize = uint32(vocabMaxId + 1)
	return c, nil
}

// Load reads the training data from file, the file format should be like:
// [wordId:wordCount wordId:wordCount ... wordId:wordCount]
func Load(fn string) (*Corpus, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", fn, err)
	}

	log.Infof("number of documents %d", c.DocNum)
	log.Infof("vocabulary size %d", c.VocabSize)
	log.Infof("number of terms %d", c.TermNum)
	return c, nil
}

// DocLen returns the number of tokens of document d
func (this *Corpus) DocLen(d uint32) uint32 {
	return uint32(len(this.Docs[d]))
}
