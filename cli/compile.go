package cli

import (
	"fmt"
	"io"
	"os"

	log "github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/hakobayato/ldadf/constraint"
	"github.com/hakobayato/ldadf/corpus"
)

func (c *CLI) newCompileCommand() *cobra.Command {
	var cst, lexFile, dnfFile string

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile word constraints into a forest of constraint trees (.dnf)",
		Args:  cobra.NoArgs,
		Example: `  ldadf compile -c 'ML(0,1)&CL(1,2)'
  ldadf compile -c 'IL(apple,banana)' -l data/test.lex -d data/test.dnf
  ldadf compile -c data/test.cst -l data/test.lex -d data/test.dnf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readConstraint(cst)
			if err != nil {
				return err
			}

			var vocab constraint.Vocabulary
			if lexFile != "" {
				lex, err := corpus.LoadLexicon(lexFile)
				if err != nil {
					return err
				}
				vocab = lex
			}
			dnf, err := constraint.Compile(text, vocab)
			if err != nil {
				return fmt.Errorf("compile %q: %w", text, err)
			}
			log.Infof("%d trees", len(dnf))

			if dnfFile == "" {
				return constraint.WriteForest(c.stdout, dnf.Forest())
			}
			return constraint.SaveForest(dnfFile, dnf.Forest())
		},
	}

	cmd.Flags().StringVarP(&cst, "cst", "c", "", "constraint expression, or a file holding one")
	cmd.Flags().StringVarP(&lexFile, "lex", "l", "", "lexicon (.lex) mapping words to ids")
	cmd.Flags().StringVarP(&dnfFile, "dnf", "d", "", "output file (default: stdout)")
	_ = cmd.MarkFlagRequired("cst")
	return cmd
}

// readConstraint returns the file content when cst names a file
func readConstraint(cst string) (string, error) {
	f, err := os.Open(cst)
	if err != nil {
		return cst, nil
	}
	defer f.Close()
	raw, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
