package constraint

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/golang/glog"
)

// Forest is the ordered list of trees read from a .dnf file, tree t
// is referred to by its index
type Forest []*Tree

// ReadForest parses one tree per line, blank lines are skipped
func ReadForest(r io.Reader) (Forest, error) {
	var forest Forest
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	lineIdx := 0
	for scanner.Scan() {
		lineIdx += 1
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		tree, err := Parse(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineIdx, err)
		}
		log.V(1).Infof("- tree %d: %s", len(forest), tree)
		forest = append(forest, tree)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return forest, nil
}

func LoadForest(fn string) (Forest, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	forest, err := ReadForest(f)
	if err != nil {
		return nil, fmt.Errorf("load forest %s: %w", fn, err)
	}
	return forest, nil
}

func WriteForest(w io.Writer, forest Forest) error {
	out := bufio.NewWriter(w)
	for _, tree := range forest {
		fmt.Fprintln(out, tree.Line())
	}
	return out.Flush()
}

func SaveForest(fn string, forest Forest) error {
	out, err := os.Create(fn)
	if err != nil {
		return err
	}
	if err := WriteForest(out, forest); err != nil {
		out.Close()
		return fmt.Errorf("save forest %s: %w", fn, err)
	}
	return out.Close()
}

// MaxWord returns the largest word id mentioned by any tree, or -1
func (f Forest) MaxWord() int {
	top := -1
	for _, t := range f {
		if m := t.MaxWord(); m > top {
			top = m
		}
	}
	return top
}

func (f Forest) String() string {
	strs := make([]string, len(f))
	for i, t := range f {
		strs[i] = t.String()
	}
	return strings.Join(strs, " | ")
}
