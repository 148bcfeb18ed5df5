package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	log "github.com/golang/glog"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/hakobayato/ldadf/constraint"
	"github.com/hakobayato/ldadf/corpus"
	"github.com/hakobayato/ldadf/matrix"
)

// Viewer prints a parameter snapshot written by train
type Viewer struct {
	Lex       *corpus.Lexicon
	Forest    constraint.Forest
	NumWords  int
	NumTopics int
	NumDocs   int
	Verbose   bool
}

func (c *CLI) newViewCommand() *cobra.Command {
	var lexFile, dnfFile, outFile string
	v := &Viewer{}

	cmd := &cobra.Command{
		Use:   "view <prefix>",
		Short: "Show learned parameters (.phi, .dti, .theta, .smp)",
		Args:  cobra.ExactArgs(1),
		Example: `  ldadf view out/test.final
  ldadf view out/test.final -l data/test.lex -d data/test.dnf -n 1 --verbose`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if lexFile != "" {
				lex, err := corpus.LoadLexicon(lexFile)
				if err != nil {
					return err
				}
				v.Lex = lex
			}
			if dnfFile != "" {
				forest, err := constraint.LoadForest(dnfFile)
				if err != nil {
					return err
				}
				v.Forest = forest
			}
			v.Verbose = c.verbose

			out := c.stdout
			if outFile != "" {
				f, err := os.Create(outFile)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			return v.Show(out, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVarP(&lexFile, "lex", "l", "", "lexicon (.lex) of the corpus")
	f.StringVarP(&dnfFile, "dnf", "d", "", "constraint forest (.dnf) used in training")
	f.IntVarP(&v.NumWords, "num-words", "n", 10, "maximum number of words to display")
	f.IntVarP(&v.NumTopics, "num-topics", "t", 10, "maximum number of topics to display")
	f.IntVarP(&v.NumDocs, "num-docs", "m", 10, "maximum number of documents to display")
	f.StringVar(&outFile, "out", "", "write to file instead of stdout")
	return cmd
}

// Show prints prefix.phi and prefix.dti, plus prefix.theta and prefix.smp
// in verbose mode. Missing files are skipped.
func (v *Viewer) Show(w io.Writer, prefix string) error {
	if err := v.showPhi(w, prefix+".phi"); err != nil {
		return err
	}
	if err := v.showDti(w, prefix+".dti"); err != nil {
		return err
	}
	if !v.Verbose {
		return nil
	}
	if err := v.showTheta(w, prefix+".theta"); err != nil {
		return err
	}
	return v.showSmp(w, prefix+".smp")
}

// loadMatrix returns nil without error when fn does not exist
func loadMatrix(fn string) (*matrix.Float64Matrix, error) {
	m, err := matrix.Float64Deserialize(fn)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return m, err
}

func (v *Viewer) word(id uint32) (string, error) {
	if v.Lex == nil {
		return strconv.FormatUint(uint64(id), 10), nil
	}
	if int(id) >= len(v.Lex.Words) {
		return "", fmt.Errorf("unknown word id: %d", id)
	}
	return v.Lex.Words[id], nil
}

// descending indices of vec
func ranking(vec []float64) []int {
	neg := make([]float64, len(vec))
	floats.ScaleTo(neg, -1, vec)
	inds := make([]int, len(vec))
	floats.Argsort(neg, inds)
	return inds
}

func (v *Viewer) showPhi(w io.Writer, fn string) error {
	phi, err := loadMatrix(fn)
	if err != nil {
		return err
	}
	if phi == nil {
		log.Warningf("not found: %s", fn)
		return nil
	}

	fmt.Fprintln(w, "- Word probabilities in each topic")
	probsByTopic := phi.Transpose()
	topicNum, wordNum := probsByTopic.Shape()
	for k := uint32(0); k < topicNum; k += 1 {
		if int(k) >= v.NumTopics {
			fmt.Fprintln(w, "...")
			break
		}
		fmt.Fprintf(w, "<topic-%d>\n", k)
		probs := probsByTopic.Row(k)
		for i, id := range ranking(probs) {
			if i >= v.NumWords {
				break
			}
			word, err := v.word(uint32(id))
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%0.6f\n", word, probs[id])
		}
		if int(wordNum) > v.NumWords {
			fmt.Fprintln(w, "...")
		}
	}
	fmt.Fprintln(w)
	return nil
}

func (v *Viewer) showDti(w io.Writer, fn string) error {
	// plain LDA writes no .dti
	dti, err := loadMatrix(fn)
	if err != nil || dti == nil {
		return err
	}

	fmt.Fprintln(w, "- Assignment of dtree on topics")
	name := func(id uint32) string {
		s, _ := v.word(id)
		return s
	}
	if v.Forest != nil {
		strs := make([]string, len(v.Forest))
		for i, tree := range v.Forest {
			strs[i] = tree.Format(name)
		}
		fmt.Fprintf(w, "dtrees: %s\n", strings.Join(strs, " | "))
	}
	rows, cols := dti.Shape()
	for k := uint32(0); rows > 0 && k < cols; k += 1 {
		if int(k) >= v.NumTopics {
			fmt.Fprintln(w, "...")
			break
		}
		t := int(dti.Get(0, k))
		if v.Forest == nil {
			fmt.Fprintf(w, "topic-%d: %d\n", k, t)
			continue
		}
		if t < 0 || t >= len(v.Forest) {
			return fmt.Errorf("unknown dtree id: %d", t)
		}
		fmt.Fprintf(w, "topic-%d: %s\n", k, v.Forest[t].Format(name))
	}
	fmt.Fprintln(w)
	return nil
}

func (v *Viewer) showTheta(w io.Writer, fn string) error {
	theta, err := loadMatrix(fn)
	if err != nil {
		return err
	}
	if theta == nil {
		log.Warningf("not found: %s", fn)
		return nil
	}

	fmt.Fprintln(w, "- Topic probabilities in each document")
	docNum, topicNum := theta.Shape()
	for d := uint32(0); d < docNum; d += 1 {
		if int(d) >= v.NumDocs {
			fmt.Fprintln(w, "...")
			break
		}
		fmt.Fprintf(w, "<doc-%d>\n", d)
		probs := theta.Row(d)
		for i, k := range ranking(probs) {
			if i >= v.NumTopics {
				break
			}
			fmt.Fprintf(w, "topic-%d\t%0.6f\n", k, probs[k])
		}
		if int(topicNum) > v.NumTopics {
			fmt.Fprintln(w, "...")
		}
	}
	fmt.Fprintln(w)
	return nil
}

func (v *Viewer) showSmp(w io.Writer, fn string) error {
	smp, err := loadMatrix(fn)
	if err != nil {
		return err
	}
	if smp == nil {
		log.Warningf("not found: %s", fn)
		return nil
	}

	fmt.Fprintln(w, "- Word-topic counts (c_{wz}) of the last sample")
	if v.Lex != nil {
		words := v.Lex.Words
		if len(words) > v.NumWords {
			words = append(append([]string(nil), words[:v.NumWords]...), "...")
		}
		fmt.Fprintf(w, "         %s\n", strings.Join(words, "\t"))
	}
	// stored words x topics
	counts := smp.Transpose()
	topicNum, _ := counts.Shape()
	for k := uint32(0); k < topicNum; k += 1 {
		if int(k) >= v.NumTopics {
			fmt.Fprintln(w, "...")
			break
		}
		row := counts.Row(k)
		if len(row) > v.NumWords {
			row = row[:v.NumWords]
		}
		strs := make([]string, len(row))
		for i, cnt := range row {
			strs[i] = strconv.FormatFloat(cnt, 'f', -1, 64)
		}
		fmt.Fprintf(w, "topic-%d: %s\n", k, strings.Join(strs, "\t"))
	}
	fmt.Fprintln(w)
	return nil
}
