package cmd

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagVerbose bool
	flagConfig  string
)

// NewRootCmd builds the autotab root command and registers all subcommands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "autotab",
		Short: "Baseline AutoML runs for tabular competition datasets",
		Long: `autotab imports the train/test/sample-submission CSV files of a tabular
competition, delegates model search to a modeling engine, and writes a
submission file plus a bar-chart comparison of every candidate's metrics.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to the config file (default "+DefaultConfigFile+")")

	rootCmd.AddCommand(NewRunCmd())
	rootCmd.AddCommand(NewInspectCmd())
	rootCmd.AddCommand(NewConfigCmd())
	rootCmd.AddCommand(NewVersionCmd())
	return rootCmd
}

func configureLogging() {
	level := logrus.InfoLevel
	if flagVerbose {
		level = logrus.DebugLevel
	}
	logrus.SetLevel(level)

	logTTY := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:   logTTY,
		FullTimestamp: true,
	})

	// Colored command output only makes sense on a terminal.
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}
}
