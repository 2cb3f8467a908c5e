// Package engine defines the modeling boundary of autotab and ships a small
// built-in engine so the pipeline runs without an external AutoML service.
//
// The Engine interface mirrors the surface of the external library the
// pipeline delegates to: set up on a training table, compare candidate models
// by a metric, tune the chosen one, finalize it, and predict. Implementations
// own model search and metric computation; the pipeline only passes
// parameters through and reads back scores and a predictions column.
package engine

import (
	"context"
	"errors"

	"github.com/autotab-dev/autotab/pkg/dataset"
)

// Sentinel errors shared by engine implementations.
var (
	// ErrNotSetup indicates an operation before Setup.
	ErrNotSetup = errors.New("engine: Setup must be called first")
	// ErrUnknownMetric indicates a metric name the engine does not compute.
	ErrUnknownMetric = errors.New("engine: unknown metric")
)

// DefaultLabelColumn is the name of the predictions column appended by
// Predict, following the external library's convention.
const DefaultLabelColumn = "Label"

// TaskType selects between regression and classification.
type TaskType string

const (
	// TaskAuto infers the task from the target column: numeric values mean
	// regression, anything else classification.
	TaskAuto TaskType = "auto"
	// TaskRegression predicts a continuous target.
	TaskRegression TaskType = "regression"
	// TaskClassification predicts a categorical target.
	TaskClassification TaskType = "classification"
)

// MetricSpec describes one metric an engine computes.
type MetricSpec struct {
	// Name is the short identifier used to select the metric, e.g. "rmse".
	Name string
	// DisplayName titles report columns and chart panels, e.g. "RMSE".
	DisplayName string
	// LowerIsBetter orders candidates when sorting by this metric.
	LowerIsBetter bool
}

// Model is an opaque handle to a candidate produced by an Engine.
type Model interface {
	// Name identifies the model in logs and comparison tables.
	Name() string
}

// Candidate pairs a model with its cross-validated scores, keyed by the
// metric display names.
type Candidate struct {
	Model  Model
	Scores map[string]float64
}

// Engine is the modeling collaborator the pipeline delegates to.
type Engine interface {
	// Setup binds the engine to a training table and target column and
	// prepares an internal train/hold-out split.
	Setup(ctx context.Context, train *dataset.Table, target string) error

	// Compare cross-validates every candidate model and returns the best one
	// by sortMetric, along with all candidates ordered best first.
	Compare(ctx context.Context, sortMetric string) (Model, []Candidate, error)

	// Tune searches the model's hyperparameters optimizing the given metric.
	// Models without hyperparameters are returned unchanged.
	Tune(ctx context.Context, m Model, optimizeMetric string) (Model, error)

	// Finalize refits the model on the complete training table, including the
	// hold-out split.
	Finalize(ctx context.Context, m Model) (Model, error)

	// Predict appends the label column with m's predictions for data.
	// A nil data predicts on the hold-out split from Setup.
	Predict(ctx context.Context, m Model, data *dataset.Table) (*dataset.Table, error)

	// Metrics lists the metrics this engine computes for the configured task.
	Metrics() []MetricSpec

	// CheckMetric scores predictions against ground truth by metric name or
	// display name. Values are the raw string cells; numeric metrics parse
	// them, categorical metrics compare them as labels.
	CheckMetric(yTrue, yPred []string, metric string) (float64, error)
}
