package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/autotab-dev/autotab/pkg/dataset"
	"github.com/autotab-dev/autotab/pkg/engine"
	"github.com/autotab-dev/autotab/pkg/metricslog"
	"github.com/autotab-dev/autotab/pkg/pipeline"
	"github.com/autotab-dev/autotab/pkg/render"
)

// NewRunCmd builds the `autotab run` command: the full baseline flow from
// CSV import to submission file and comparison chart.
func NewRunCmd() *cobra.Command {
	var (
		inputDir   string
		outputDir  string
		metric     string
		target     string
		task       string
		maxColumns int
		noChart    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the baseline pipeline and write a submission and comparison chart",
		Long: `Run imports the competition CSV files, compares the engine's candidate
models by cross-validation, tunes and finalizes the best one, then writes the
submission CSV and a bar-chart comparison of every model's metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flagConfig)
			if err != nil {
				return err
			}
			if inputDir != "" {
				cfg.Input.Dir = inputDir
			}
			if outputDir != "" {
				cfg.Output.Dir = outputDir
			}
			if metric != "" {
				cfg.Modeling.Metric = metric
			}
			if target != "" {
				cfg.Modeling.Target = target
			}
			if task != "" {
				cfg.Modeling.Task = task
			}
			if maxColumns > 0 {
				cfg.Chart.MaxColumns = maxColumns
			}
			return runBaseline(cmd.Context(), cmd, cfg, noChart)
		},
	}

	cmd.Flags().StringVarP(&inputDir, "input-dir", "i", "", "Directory containing the competition CSV files")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for the submission and chart")
	cmd.Flags().StringVarP(&metric, "metric", "m", "", "Metric to compare and tune by (default rmse or accuracy)")
	cmd.Flags().StringVar(&target, "target", "", "Target column (default: inferred from the column sets)")
	cmd.Flags().StringVar(&task, "task", "", "Task type: auto, regression, or classification")
	cmd.Flags().IntVar(&maxColumns, "max-columns", 0, "Maximum chart panels per row")
	cmd.Flags().BoolVar(&noChart, "no-chart", false, "Skip rendering the comparison chart")
	return cmd
}

func runBaseline(ctx context.Context, cmd *cobra.Command, cfg *Config, noChart bool) error {
	log := logrus.WithField("component", "cli")

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

	eng := engine.NewBaselineEngine(engine.Config{
		Task:            engine.TaskType(cfg.Modeling.Task),
		LabelColumn:     cfg.Modeling.LabelColumn,
		IndexColumn:     bundle.IndexColumn,
		Folds:           cfg.Modeling.Folds,
		HoldoutFraction: cfg.Modeling.HoldoutFraction,
		Seed:            cfg.Modeling.Seed,
	})

	est, err := pipeline.New(ctx, bundle, eng, pipeline.Config{
		Target:      cfg.Modeling.Target,
		LabelColumn: cfg.Modeling.LabelColumn,
	})
	if err != nil {
		return err
	}

	metric := cfg.Modeling.Metric
	if metric == "" {
		metric = defaultMetric(eng)
		log.WithField("metric", metric).Debug("No metric configured, using the task default")
	}

	result, err := est.CheckBaseline(ctx, metric)
	if err != nil {
		return err
	}

	mlog := metricslog.New()
	if err := result.LogMetrics(mlog); err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	submissionPath := filepath.Join(cfg.Output.Dir, cfg.Output.SubmissionFile)
	if err := result.Submission.WriteFile(submissionPath); err != nil {
		return fmt.Errorf("writing submission: %w", err)
	}
	log.WithField("path", submissionPath).Info("Submission written")

	if !noChart {
		chartPath := filepath.Join(cfg.Output.Dir, cfg.Output.ChartFile)
		err := render.WriteComparisonPNG(ctx, chartPath, mlog, render.Options{
			MaxColumns:  cfg.Chart.MaxColumns,
			PanelWidth:  cfg.Chart.PanelWidth,
			PanelHeight: cfg.Chart.PanelHeight,
		})
		if err != nil {
			return fmt.Errorf("rendering comparison chart: %w", err)
		}
		log.WithField("path", chartPath).Info("Comparison chart written")
	}

	printRunSummary(cmd.OutOrStdout(), result, mlog)
	return nil
}

// defaultMetric picks the conventional optimization metric for the engine's
// resolved task: rmse when available, accuracy otherwise.
func defaultMetric(eng engine.Engine) string {
	specs := eng.Metrics()
	for _, spec := range specs {
		if spec.Name == "rmse" {
			return spec.Name
		}
	}
	for _, spec := range specs {
		if spec.Name == "accuracy" {
			return spec.Name
		}
	}
	return specs[0].Name
}
