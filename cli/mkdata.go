package cli

import (
	"github.com/spf13/cobra"

	"github.com/hakobayato/ldadf/corpus"
)

func (c *CLI) newMkdataCommand() *cobra.Command {
	var rawFile, outBase string
	var minFreq int

	cmd := &cobra.Command{
		Use:     "mkdata",
		Short:   "Make a corpus (.dat) and its lexicon (.lex) from raw text, one document per line",
		Args:    cobra.NoArgs,
		Example: `  ldadf mkdata -i data/raw.txt -o data/test -m 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outBase == "" {
				outBase = rawFile
			}
			return corpus.BuildDataset(rawFile, outBase, minFreq)
		},
	}

	cmd.Flags().StringVarP(&rawFile, "input", "i", "", "raw text file")
	cmd.Flags().StringVarP(&outBase, "out", "o", "", "prefix of the .dat and .lex files (default: the input file)")
	cmd.Flags().IntVarP(&minFreq, "min-freq", "m", 5, "minimum frequency of words kept in the lexicon")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
