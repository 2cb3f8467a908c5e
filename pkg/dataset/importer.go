// Package dataset imports the three CSV files of a tabular competition
// (training data, unseen test data, and a sample submission) into in-memory
// tables, and infers the prediction target from the column sets.
package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Sentinel errors for target inference.
var (
	// ErrNoTarget indicates the training and test tables have identical columns.
	ErrNoTarget = errors.New("dataset: no column is present in train but absent in test")
	// ErrAmbiguousTarget indicates more than one candidate target column.
	ErrAmbiguousTarget = errors.New("dataset: multiple columns are present in train but absent in test")
)

// Default file names, matching the layout of competition downloads.
const (
	DefaultTrainFile            = "train.csv"
	DefaultTestFile             = "test.csv"
	DefaultSampleSubmissionFile = "sample_submission.csv"
)

// Paths holds the resolved locations of the three input files.
type Paths struct {
	Train            string
	Test             string
	SampleSubmission string
}

// Bundle holds the three parsed input tables.
type Bundle struct {
	Train            *Table
	Test             *Table
	SampleSubmission *Table
	// IndexColumn is the configured row-identifier column, empty when none
	// was configured. It stays in the tables so submissions keep their row
	// index, but modeling must not treat it as a feature.
	IndexColumn string
}

// ImporterConfig configures an Importer. Zero-value file names fall back to
// the competition defaults.
type ImporterConfig struct {
	InputDir             string
	TrainFile            string
	TestFile             string
	SampleSubmissionFile string
	// IndexColumn, when set, must exist in every input file. It is recorded
	// on the Bundle so modeling can exclude it, and kept in the tables so
	// submissions keep their row index.
	IndexColumn string
}

// Importer reads the competition CSV files.
type Importer struct {
	paths       Paths
	indexColumn string
	log         *logrus.Entry
}

// NewImporter creates an importer for the given input directory and file names.
func NewImporter(cfg ImporterConfig) *Importer {
	if cfg.InputDir == "" {
		cfg.InputDir = "./input"
	}
	if cfg.TrainFile == "" {
		cfg.TrainFile = DefaultTrainFile
	}
	if cfg.TestFile == "" {
		cfg.TestFile = DefaultTestFile
	}
	if cfg.SampleSubmissionFile == "" {
		cfg.SampleSubmissionFile = DefaultSampleSubmissionFile
	}

	return &Importer{
		paths: Paths{
			Train:            filepath.Join(cfg.InputDir, cfg.TrainFile),
			Test:             filepath.Join(cfg.InputDir, cfg.TestFile),
			SampleSubmission: filepath.Join(cfg.InputDir, cfg.SampleSubmissionFile),
		},
		indexColumn: cfg.IndexColumn,
		log:         logrus.WithField("component", "dataset"),
	}
}

// Paths returns the resolved input file locations.
func (im *Importer) Paths() Paths {
	return im.paths
}

// Read parses all three CSV files.
func (im *Importer) Read() (*Bundle, error) {
	train, err := im.readFile(im.paths.Train)
	if err != nil {
		return nil, err
	}
	im.log.WithFields(logrus.Fields{
		"records":  train.NumRows(),
		"features": train.NumColumns(),
	}).Info("Data for modeling loaded")

	test, err := im.readFile(im.paths.Test)
	if err != nil {
		return nil, err
	}
	im.log.WithFields(logrus.Fields{
		"records":  test.NumRows(),
		"features": test.NumColumns(),
	}).Info("Unseen data for predictions loaded")

	sample, err := im.readFile(im.paths.SampleSubmission)
	if err != nil {
		return nil, err
	}

	bundle := &Bundle{Train: train, Test: test, SampleSubmission: sample, IndexColumn: im.indexColumn}
	if im.indexColumn != "" {
		for name, table := range map[string]*Table{
			"train":             train,
			"test":              test,
			"sample submission": sample,
		} {
			if !table.HasColumn(im.indexColumn) {
				return nil, fmt.Errorf("index column %q not found in %s data", im.indexColumn, name)
			}
		}
	}
	return bundle, nil
}

func (im *Importer) readFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	table, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return table, nil
}

// InferTarget returns the prediction target: the one column present in the
// training table but absent from the test table.
func InferTarget(train, test *Table) (string, error) {
	var candidates []string
	for _, col := range train.Columns() {
		if !test.HasColumn(col) {
			candidates = append(candidates, col)
		}
	}

	switch len(candidates) {
	case 0:
		return "", ErrNoTarget
	case 1:
		return candidates[0], nil
	default:
		return "", fmt.Errorf("%w: %v", ErrAmbiguousTarget, candidates)
	}
}
