package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:generate sh -c "cd .. && go run ./tools/schema-generator/"

// DefaultConfigFile is looked up in the working directory when --config is
// not given.
const DefaultConfigFile = "autotab.yml"

// Config defines the structure of autotab.yml. Flags override file values.
type Config struct {
	Input    InputConfig    `yaml:"input"`
	Modeling ModelingConfig `yaml:"modeling"`
	Output   OutputConfig   `yaml:"output"`
	Chart    ChartConfig    `yaml:"chart"`
}

// InputConfig locates the competition CSV files.
type InputConfig struct {
	Dir                  string `yaml:"dir"`
	TrainFile            string `yaml:"train_file"`
	TestFile             string `yaml:"test_file"`
	SampleSubmissionFile string `yaml:"sample_submission_file"`
	// IndexColumn, when set, must exist in every input file.
	IndexColumn string `yaml:"index_column"`
}

// ModelingConfig tunes the engine and the pipeline.
type ModelingConfig struct {
	// Task is auto, regression, or classification.
	Task string `yaml:"task"`
	// Target overrides target inference.
	Target string `yaml:"target"`
	// LabelColumn names the engine's predictions column.
	LabelColumn string `yaml:"label_column"`
	// Metric selects the comparison/tuning metric. Empty picks rmse for
	// regression and accuracy for classification.
	Metric string `yaml:"metric"`
	// Folds is the cross-validation fold count.
	Folds int `yaml:"folds"`
	// HoldoutFraction is the share of training rows held out during setup.
	HoldoutFraction float64 `yaml:"holdout_fraction"`
	// Seed makes the train/hold-out split reproducible.
	Seed int64 `yaml:"seed"`
}

// OutputConfig names the run artifacts.
type OutputConfig struct {
	Dir            string `yaml:"dir"`
	SubmissionFile string `yaml:"submission_file"`
	ChartFile      string `yaml:"chart_file"`
}

// ChartConfig controls the comparison figure geometry.
type ChartConfig struct {
	MaxColumns  int `yaml:"max_columns"`
	PanelWidth  int `yaml:"panel_width"`
	PanelHeight int `yaml:"panel_height"`
}

func defaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			Dir: "./input",
		},
		Output: OutputConfig{
			Dir:            "./output",
			SubmissionFile: "submission.csv",
			ChartFile:      "comparison.png",
		},
		Chart: ChartConfig{
			MaxColumns: 3,
		},
		Modeling: ModelingConfig{
			Task: "auto",
		},
	}
}

// loadConfig reads the config file and fills in defaults. A missing default
// file is fine; a missing explicit --config path is an error.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if path == "" {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	// Re-apply defaults the file may have blanked out.
	if cfg.Input.Dir == "" {
		cfg.Input.Dir = "./input"
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "./output"
	}
	if cfg.Output.SubmissionFile == "" {
		cfg.Output.SubmissionFile = "submission.csv"
	}
	if cfg.Output.ChartFile == "" {
		cfg.Output.ChartFile = "comparison.png"
	}
	if cfg.Chart.MaxColumns <= 0 {
		cfg.Chart.MaxColumns = 3
	}
	if cfg.Modeling.Task == "" {
		cfg.Modeling.Task = "auto"
	}
	return cfg, nil
}
