// Package pipeline drives the end-to-end baseline flow: compare candidate
// models through an engine, tune and finalize the best one, collect its
// metrics, and shape a submission table from the sample submission.
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/autotab-dev/autotab/pkg/dataset"
	"github.com/autotab-dev/autotab/pkg/engine"
	"github.com/autotab-dev/autotab/pkg/metricslog"
)

// Config adjusts an Estimator. Zero values use the documented defaults.
type Config struct {
	// Target overrides target inference. When empty, the target is the column
	// present in the training table but absent from the test table.
	Target string
	// LabelColumn is the predictions column the engine appends.
	// Default engine.DefaultLabelColumn.
	LabelColumn string
}

// Estimator owns one competition bundle and delegates modeling to an Engine.
type Estimator struct {
	bundle      *dataset.Bundle
	eng         engine.Engine
	target      string
	labelColumn string
	log         *logrus.Entry
}

// Result is the outcome of one baseline run.
type Result struct {
	// RunID is a short unique identifier for logs and output naming.
	RunID string
	// ModelName is the finalized model.
	ModelName string
	// Metrics maps metric display names to the finalized model's hold-out
	// scores.
	Metrics map[string]float64
	// Candidates are all compared models with their cross-validated scores,
	// ordered best first.
	Candidates []engine.Candidate
	// Submission is the sample submission with the target column replaced by
	// the finalized model's predictions on the test data.
	Submission *dataset.Table
}

// New creates an estimator for the bundle, infers the prediction target
// (unless overridden), and runs the engine's Setup.
func New(ctx context.Context, bundle *dataset.Bundle, eng engine.Engine, cfg Config) (*Estimator, error) {
	if bundle == nil || bundle.Train == nil || bundle.Test == nil || bundle.SampleSubmission == nil {
		return nil, fmt.Errorf("pipeline: bundle must contain train, test, and sample submission tables")
	}

	target := cfg.Target
	if target == "" {
		var err error
		target, err = dataset.InferTarget(bundle.Train, bundle.Test)
		if err != nil {
			return nil, fmt.Errorf("inferring target: %w", err)
		}
	} else if !bundle.Train.HasColumn(target) {
		return nil, fmt.Errorf("pipeline: target column %q not in training data", target)
	}

	labelColumn := cfg.LabelColumn
	if labelColumn == "" {
		labelColumn = engine.DefaultLabelColumn
	}

	e := &Estimator{
		bundle:      bundle,
		eng:         eng,
		target:      target,
		labelColumn: labelColumn,
		log:         logrus.WithField("component", "pipeline"),
	}

	e.log.WithField("target", target).Info("Setting up modeling engine")
	if err := eng.Setup(ctx, bundle.Train, target); err != nil {
		return nil, fmt.Errorf("engine setup: %w", err)
	}
	return e, nil
}

// Target returns the resolved prediction target.
func (e *Estimator) Target() string {
	return e.target
}

// CheckBaseline runs the full baseline flow optimizing the given metric:
// compare, tune the best candidate, finalize, score the finalized model on
// the hold-out split, predict the test data, and assemble the submission.
func (e *Estimator) CheckBaseline(ctx context.Context, metric string) (*Result, error) {
	runID := "run-" + uuid.New().String()[:8]
	log := e.log.WithField("run_id", runID)

	best, candidates, err := e.eng.Compare(ctx, metric)
	if err != nil {
		return nil, fmt.Errorf("comparing models: %w", err)
	}
	log.WithField("model", best.Name()).Info("Best candidate selected")

	tuned, err := e.eng.Tune(ctx, best, metric)
	if err != nil {
		return nil, fmt.Errorf("tuning %s: %w", best.Name(), err)
	}

	final, err := e.eng.Finalize(ctx, tuned)
	if err != nil {
		return nil, fmt.Errorf("finalizing %s: %w", tuned.Name(), err)
	}

	metrics, err := e.holdoutMetrics(ctx, final)
	if err != nil {
		return nil, err
	}

	submission, err := e.buildSubmission(ctx, final)
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"model":   final.Name(),
		"metrics": metrics,
	}).Info("Baseline run complete")

	return &Result{
		RunID:      runID,
		ModelName:  final.Name(),
		Metrics:    metrics,
		Candidates: candidates,
		Submission: submission,
	}, nil
}

// holdoutMetrics computes every engine metric for the model's hold-out
// predictions, keyed by display name.
func (e *Estimator) holdoutMetrics(ctx context.Context, m engine.Model) (map[string]float64, error) {
	valid, err := e.eng.Predict(ctx, m, nil)
	if err != nil {
		return nil, fmt.Errorf("predicting hold-out split: %w", err)
	}
	yTrue, err := valid.Column(e.target)
	if err != nil {
		return nil, err
	}
	yPred, err := valid.Column(e.labelColumn)
	if err != nil {
		return nil, err
	}

	metrics := make(map[string]float64)
	for _, spec := range e.eng.Metrics() {
		v, err := e.eng.CheckMetric(yTrue, yPred, spec.Name)
		if err != nil {
			return nil, fmt.Errorf("computing %s: %w", spec.DisplayName, err)
		}
		metrics[spec.DisplayName] = v
	}
	return metrics, nil
}

// buildSubmission clones the sample submission and replaces its target column
// with the model's predictions on the test data.
func (e *Estimator) buildSubmission(ctx context.Context, m engine.Model) (*dataset.Table, error) {
	predicted, err := e.eng.Predict(ctx, m, e.bundle.Test)
	if err != nil {
		return nil, fmt.Errorf("predicting test data: %w", err)
	}
	labels, err := predicted.Column(e.labelColumn)
	if err != nil {
		return nil, err
	}

	submission := e.bundle.SampleSubmission.Clone()
	if err := submission.SetColumn(e.target, labels); err != nil {
		return nil, fmt.Errorf("shaping submission: %w", err)
	}
	return submission, nil
}

// LogMetrics appends every compared candidate's cross-validated scores plus
// the finalized model's hold-out metrics to a comparison log. The finalized
// row is suffixed so it never overwrites its candidate's row.
func (r *Result) LogMetrics(mlog *metricslog.Log) error {
	for _, c := range r.Candidates {
		if err := mlog.Add(c.Scores, c.Model.Name()); err != nil {
			return fmt.Errorf("logging %s: %w", c.Model.Name(), err)
		}
	}
	if err := mlog.Add(r.Metrics, r.ModelName+" (finalized)"); err != nil {
		return fmt.Errorf("logging finalized model: %w", err)
	}
	return nil
}
