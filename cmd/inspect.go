package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/autotab-dev/autotab/pkg/dataset"
)

// NewInspectCmd builds the `autotab inspect` command: a quick look at the
// input files and the inferred target.
func NewInspectCmd() *cobra.Command {
	var inputDir string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the input dataset shapes and the inferred target column",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flagConfig)
			if err != nil {
				return err
			}
			if inputDir != "" {
				cfg.Input.Dir = inputDir
			}

			importer := dataset.NewImporter(dataset.ImporterConfig{
				InputDir:             cfg.Input.Dir,
				TrainFile:            cfg.Input.TrainFile,
				TestFile:             cfg.Input.TestFile,
				SampleSubmissionFile: cfg.Input.SampleSubmissionFile,
				IndexColumn:          cfg.Input.IndexColumn,
			})
			bundle, err := importer.Read()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			bold := color.New(color.Bold)
			bold.Fprintln(w, "Dataset")
			fmt.Fprintf(w, "  train:             %d records, %d features\n", bundle.Train.NumRows(), bundle.Train.NumColumns())
			fmt.Fprintf(w, "  test:              %d records, %d features\n", bundle.Test.NumRows(), bundle.Test.NumColumns())
			fmt.Fprintf(w, "  sample submission: %d records, %d features\n", bundle.SampleSubmission.NumRows(), bundle.SampleSubmission.NumColumns())

			target := cfg.Modeling.Target
			if target == "" {
				target, err = dataset.InferTarget(bundle.Train, bundle.Test)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "  target (inferred): %s\n", color.GreenString(target))
			} else {
				fmt.Fprintf(w, "  target (config):   %s\n", color.GreenString(target))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputDir, "input-dir", "i", "", "Directory containing the competition CSV files")
	return cmd
}
