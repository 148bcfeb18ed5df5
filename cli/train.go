package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hakobayato/ldadf/config"
	"github.com/hakobayato/ldadf/model"
)

func (c *CLI) newTrainCommand() *cobra.Command {
	var configFile string
	opts := config.Default()

	cmd := &cobra.Command{
		Use:   "train <datafile>",
		Short: "Estimate LDA, or LDA with a Dirichlet forest prior when a dnf file is given",
		Args:  cobra.ExactArgs(1),
		Example: `  ldadf train data/test.dat -o out/test -n 2 -m 100
  ldadf train data/test.dat -d data/test.dnf -e 100 --verbose
  ldadf train data/test.dat --config train.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configFile != "" {
				var err error
				if cfg, err = config.Load(configFile); err != nil {
					return err
				}
			}
			applyFlags(cmd.Flags(), opts, cfg)
			cfg.Data = args[0]
			if c.verbose {
				cfg.Verbose = true
			}
			// verbose from a config file
			if cfg.Verbose {
				raiseVerbosity()
			}
			_, err := model.Run(cfg)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "YAML file with the settings below, flags take precedence")
	f.StringVarP(&opts.Out, "out", "o", "", "prefix of output files (default: the data file)")
	f.IntVarP(&opts.Topics, "topics", "n", opts.Topics, "number of topics")
	f.Float64VarP(&opts.Alpha, "alpha", "a", opts.Alpha, "initial document-topic concentration")
	f.Float64VarP(&opts.Beta, "beta", "b", opts.Beta, "topic-word concentration")
	f.IntVarP(&opts.MaxSteps, "max-steps", "m", opts.MaxSteps, "maximum number of sampling rounds")
	f.IntVarP(&opts.NumLoops, "num-loops", "l", opts.NumLoops, "hyperparameter updates per round")
	f.IntVarP(&opts.BurnIn, "burn-in", "u", opts.BurnIn, "rounds before hyperparameter updates")
	f.BoolVarP(&opts.Converge, "converge", "c", opts.Converge, "stop once the perplexity stops changing")
	f.Float64Var(&opts.ConvergeLimit, "converge-limit", opts.ConvergeLimit, "perplexity change that counts as converged")
	f.Int64VarP(&opts.Seed, "seed", "s", opts.Seed, "random seed (default: current time)")
	f.StringVarP(&opts.Forest, "dnf", "d", "", "compiled constraint forest (.dnf)")
	f.Float64VarP(&opts.Eta, "eta", "e", opts.Eta, "strength of the constraints")
	f.BoolVarP(&opts.Progress, "progress", "p", false, "show a progress bar")
	f.StringVar(&opts.Sampler, "sampler", "", "sampler without a dnf file: lda or sparselda")
	return cmd
}

// applyFlags copies the explicitly set flags from opts over cfg
func applyFlags(f *pflag.FlagSet, opts, cfg *config.Config) {
	f.Visit(func(fl *pflag.Flag) {
		switch fl.Name {
		case "out":
			cfg.Out = opts.Out
		case "topics":
			cfg.Topics = opts.Topics
		case "alpha":
			cfg.Alpha = opts.Alpha
		case "beta":
			cfg.Beta = opts.Beta
		case "max-steps":
			cfg.MaxSteps = opts.MaxSteps
		case "num-loops":
			cfg.NumLoops = opts.NumLoops
		case "burn-in":
			cfg.BurnIn = opts.BurnIn
		case "converge":
			cfg.Converge = opts.Converge
		case "converge-limit":
			cfg.ConvergeLimit = opts.ConvergeLimit
		case "seed":
			cfg.Seed = opts.Seed
		case "dnf":
			cfg.Forest = opts.Forest
		case "eta":
			cfg.Eta = opts.Eta
		case "progress":
			cfg.Progress = opts.Progress
		case "sampler":
			cfg.Sampler = opts.Sampler
		}
	})
}
