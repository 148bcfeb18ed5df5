// Package cli wires the samplers and the data tools to the ldadf command.
package cli

import (
	"flag"
	"io"
	"os"

	log "github.com/golang/glog"
	"github.com/spf13/cobra"
)

// CLI encapsulates the command-line interface with its dependencies.
type CLI struct {
	verbose     bool
	initialized bool
	stdout      io.Writer
	rootCmd     *cobra.Command
}

func New() *CLI {
	c := &CLI{stdout: os.Stdout}
	c.setupCommands()
	return c
}

func (c *CLI) setupCommands() {
	c.rootCmd = &cobra.Command{
		Use:           "ldadf",
		Short:         "LDA with Dirichlet forest priors built from word constraints",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			c.initApp()
		},
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	c.rootCmd.PersistentFlags().BoolVar(&c.verbose, "verbose", false, "verbose mode, also raises the log level")
	// glog flags: -v, --logtostderr, --log_dir, ...
	c.rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	c.rootCmd.AddCommand(c.newTrainCommand())
	c.rootCmd.AddCommand(c.newCompileCommand())
	c.rootCmd.AddCommand(c.newViewCommand())
	c.rootCmd.AddCommand(c.newMkdataCommand())
}

// Run executes the command line args and returns any error.
func (c *CLI) Run(args []string) error {
	c.rootCmd.SetArgs(args)
	err := c.rootCmd.Execute()
	if err != nil {
		log.Errorf("%v", err)
	}
	log.Flush()
	return err
}

// initApp routes glog to stderr unless a log dir was asked for and
// raises its verbosity in verbose mode
func (c *CLI) initApp() {
	if c.initialized {
		return
	}
	c.initialized = true

	if f := flag.Lookup("log_dir"); f == nil || f.Value.String() == "" {
		_ = flag.Set("logtostderr", "true")
	}
	if c.verbose {
		raiseVerbosity()
	}
	// glog expects the go flag set to be parsed
	_ = flag.CommandLine.Parse(nil)
}

// raiseVerbosity turns on the V(1) logs unless -v already asks for more
func raiseVerbosity() {
	if f := flag.Lookup("v"); f != nil && f.Value.String() == "0" {
		_ = flag.Set("v", "1")
	}
}
