package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/autotab-dev/autotab/pkg/dataset"
)

// Config tunes the built-in baseline engine. Zero values fall back to the
// defaults noted per field.
type Config struct {
	// Task selects regression or classification; TaskAuto (the default)
	// infers it from the target column values.
	Task TaskType
	// LabelColumn names the predictions column. Default "Label".
	LabelColumn string
	// IndexColumn names a row-identifier column to exclude from the model
	// features. Empty means no index column.
	IndexColumn string
	// Folds is the cross-validation fold count used by Compare and Tune.
	// Default 5, capped at the number of training rows.
	Folds int
	// HoldoutFraction is the share of training rows reserved as the hold-out
	// split during Setup. Default 0.2.
	HoldoutFraction float64
	// Seed drives the train/hold-out shuffle so runs are reproducible.
	Seed int64
}

func (c Config) withDefaults() Config {
	if c.Task == "" {
		c.Task = TaskAuto
	}
	if c.LabelColumn == "" {
		c.LabelColumn = DefaultLabelColumn
	}
	if c.Folds <= 0 {
		c.Folds = 5
	}
	if c.HoldoutFraction <= 0 || c.HoldoutFraction >= 1 {
		c.HoldoutFraction = 0.2
	}
	return c
}

// BaselineEngine is a self-contained Engine over a handful of simple models:
// mean/median predictors, ordinary least squares and ridge regression for
// regression targets; majority-class and nearest-centroid for classification.
// It exists so the pipeline runs end to end without an external AutoML
// service, and as the reference implementation of the Engine contract.
//
// Only numeric feature columns are used; non-numeric columns and the
// configured index column are ignored. A BaselineEngine is not safe for
// concurrent use.
type BaselineEngine struct {
	cfg Config
	log *logrus.Entry

	train     *dataset.Table
	target    string
	task      TaskType
	features  []string
	featVals  map[string][]float64
	targetRaw []string
	fitIdx    []int
	holdIdx   []int
	ready     bool
}

// NewBaselineEngine creates an engine with the given configuration.
func NewBaselineEngine(cfg Config) *BaselineEngine {
	return &BaselineEngine{
		cfg: cfg.withDefaults(),
		log: logrus.WithField("component", "engine"),
	}
}

// Setup binds the engine to the training table, resolves the task type,
// collects the numeric feature columns, and reserves a hold-out split.
func (e *BaselineEngine) Setup(_ context.Context, train *dataset.Table, target string) error {
	if train == nil || train.NumRows() < 2 {
		return fmt.Errorf("engine: training data needs at least 2 rows")
	}
	if !train.HasColumn(target) {
		return fmt.Errorf("engine: target column %q not in training data", target)
	}

	targetRaw, err := train.Column(target)
	if err != nil {
		return err
	}

	task := e.cfg.Task
	switch task {
	case TaskAuto:
		if _, err := train.FloatColumn(target); err == nil {
			task = TaskRegression
		} else {
			task = TaskClassification
		}
	case TaskRegression, TaskClassification:
	default:
		return fmt.Errorf("engine: unknown task type %q", task)
	}
	if task == TaskRegression {
		if _, err := train.FloatColumn(target); err != nil {
			return fmt.Errorf("engine: regression target must be numeric: %w", err)
		}
	}

	featVals := make(map[string][]float64)
	var features []string
	for _, col := range train.Columns() {
		if col == target || (e.cfg.IndexColumn != "" && col == e.cfg.IndexColumn) {
			continue
		}
		vals, err := train.FloatColumn(col)
		if err != nil {
			continue // non-numeric column, skipped
		}
		features = append(features, col)
		featVals[col] = vals
	}
	if len(features) == 0 {
		return fmt.Errorf("engine: training data has no numeric feature columns")
	}

	// Seeded shuffle, then reserve the tail as the hold-out split.
	n := train.NumRows()
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	rng := rand.New(rand.NewSource(e.cfg.Seed))
	rng.Shuffle(n, func(i, j int) { indices[i], indices[j] = indices[j], indices[i] })

	holdCount := int(float64(n)*e.cfg.HoldoutFraction + 0.5)
	if holdCount < 1 {
		holdCount = 1
	}
	if holdCount > n-1 {
		holdCount = n - 1
	}

	e.train = train
	e.target = target
	e.task = task
	e.features = features
	e.featVals = featVals
	e.targetRaw = targetRaw
	e.fitIdx = indices[:n-holdCount]
	e.holdIdx = indices[n-holdCount:]
	e.ready = true

	e.log.WithFields(logrus.Fields{
		"task":     task,
		"target":   target,
		"features": len(features),
		"fit_rows": len(e.fitIdx),
		"holdout":  len(e.holdIdx),
	}).Info("Engine setup complete")
	return nil
}

// Metrics lists the metric set for the resolved task. Before Setup it
// reflects the configured task, with TaskAuto defaulting to regression.
func (e *BaselineEngine) Metrics() []MetricSpec {
	if e.ready {
		return metricsForTask(e.task)
	}
	return metricsForTask(e.cfg.Task)
}

// CheckMetric scores predictions against ground truth by metric name.
func (e *BaselineEngine) CheckMetric(yTrue, yPred []string, metric string) (float64, error) {
	spec, err := resolveMetric(e.Metrics(), metric)
	if err != nil {
		return 0, err
	}
	return checkMetric(yTrue, yPred, spec)
}

// candidates returns unfitted prototypes for the resolved task.
func (e *BaselineEngine) candidates() []baselineModel {
	if e.task == TaskClassification {
		return []baselineModel{&majorityModel{}, &centroidModel{}}
	}
	return []baselineModel{&meanModel{}, &medianModel{}, &olsModel{}, &ridgeModel{lambda: 1}}
}

// Compare cross-validates every candidate and returns the best by sortMetric
// fitted on the fit split, plus all candidates ordered best first.
func (e *BaselineEngine) Compare(ctx context.Context, sortMetric string) (Model, []Candidate, error) {
	if !e.ready {
		return nil, nil, ErrNotSetup
	}
	spec, err := resolveMetric(e.Metrics(), sortMetric)
	if err != nil {
		return nil, nil, err
	}

	var scored []Candidate
	var prototypes []baselineModel
	for _, proto := range e.candidates() {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		scores, err := e.crossValidate(proto, e.fitIdx)
		if err != nil {
			e.log.WithError(err).WithField("model", proto.Name()).Warn("Skipping candidate that failed cross-validation")
			continue
		}
		scored = append(scored, Candidate{Model: proto, Scores: scores})
		prototypes = append(prototypes, proto)
	}
	if len(scored) == 0 {
		return nil, nil, fmt.Errorf("engine: every candidate failed cross-validation")
	}

	order := make([]int, len(scored))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		sa := scored[order[a]].Scores[spec.DisplayName]
		sb := scored[order[b]].Scores[spec.DisplayName]
		if sa == sb {
			return scored[order[a]].Model.Name() < scored[order[b]].Model.Name()
		}
		if spec.LowerIsBetter {
			return sa < sb
		}
		return sa > sb
	})

	ranked := make([]Candidate, len(order))
	for i, idx := range order {
		ranked[i] = scored[idx]
	}

	best := prototypes[order[0]].clone()
	if err := e.fitRows(best, e.fitIdx); err != nil {
		return nil, nil, fmt.Errorf("fitting best model: %w", err)
	}

	e.log.WithFields(logrus.Fields{
		"model":  best.Name(),
		"metric": spec.DisplayName,
		"score":  ranked[0].Scores[spec.DisplayName],
	}).Info("Model comparison complete")
	return best, ranked, nil
}

// Tune grid-searches the model's hyperparameters by cross-validation on the
// fit split. Models without hyperparameters are returned unchanged.
func (e *BaselineEngine) Tune(ctx context.Context, m Model, optimizeMetric string) (Model, error) {
	if !e.ready {
		return nil, ErrNotSetup
	}
	spec, err := resolveMetric(e.Metrics(), optimizeMetric)
	if err != nil {
		return nil, err
	}

	ridge, ok := m.(*ridgeModel)
	if !ok {
		e.log.WithField("model", m.Name()).Debug("Model has no tunable hyperparameters")
		return m, nil
	}

	lambdas := []float64{0.001, 0.01, 0.1, 1, 10, 100}
	bestLambda := ridge.lambda
	bestScore := 0.0
	haveBest := false
	for _, lambda := range lambdas {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		scores, err := e.crossValidate(&ridgeModel{lambda: lambda}, e.fitIdx)
		if err != nil {
			continue
		}
		score := scores[spec.DisplayName]
		better := !haveBest ||
			(spec.LowerIsBetter && score < bestScore) ||
			(!spec.LowerIsBetter && score > bestScore)
		if better {
			bestLambda, bestScore, haveBest = lambda, score, true
		}
	}
	if !haveBest {
		return nil, fmt.Errorf("engine: tuning failed for every candidate value")
	}

	tuned := &ridgeModel{lambda: bestLambda}
	if err := e.fitRows(tuned, e.fitIdx); err != nil {
		return nil, fmt.Errorf("fitting tuned model: %w", err)
	}
	e.log.WithFields(logrus.Fields{
		"model":  tuned.Name(),
		"metric": spec.DisplayName,
		"score":  bestScore,
	}).Info("Tuning complete")
	return tuned, nil
}

// Finalize refits the model on the complete training table, hold-out included.
func (e *BaselineEngine) Finalize(_ context.Context, m Model) (Model, error) {
	if !e.ready {
		return nil, ErrNotSetup
	}
	bm, err := e.ownModel(m)
	if err != nil {
		return nil, err
	}

	all := make([]int, 0, len(e.fitIdx)+len(e.holdIdx))
	all = append(all, e.fitIdx...)
	all = append(all, e.holdIdx...)

	final := bm.clone()
	if err := e.fitRows(final, all); err != nil {
		return nil, fmt.Errorf("finalizing model: %w", err)
	}
	return final, nil
}

// Predict appends the label column with m's predictions. A nil data predicts
// on the hold-out split, returning those training rows with the label added.
func (e *BaselineEngine) Predict(_ context.Context, m Model, data *dataset.Table) (*dataset.Table, error) {
	if !e.ready {
		return nil, ErrNotSetup
	}
	bm, err := e.ownModel(m)
	if err != nil {
		return nil, err
	}

	var result *dataset.Table
	var x *mat.Dense
	if data == nil {
		result, err = e.rowsTable(e.holdIdx)
		if err != nil {
			return nil, err
		}
		x = e.matrixFor(e.holdIdx)
	} else {
		result = data.Clone()
		x, err = e.matrixFromTable(data)
		if err != nil {
			return nil, err
		}
	}

	if err := result.SetColumn(e.cfg.LabelColumn, bm.predict(x)); err != nil {
		return nil, err
	}
	return result, nil
}

func (e *BaselineEngine) ownModel(m Model) (baselineModel, error) {
	bm, ok := m.(baselineModel)
	if !ok {
		return nil, fmt.Errorf("engine: model %q was not produced by this engine", m.Name())
	}
	return bm, nil
}

// crossValidate fits a clone of proto per fold and averages every metric over
// the folds. With fewer than two usable folds it falls back to scoring on the
// training rows themselves.
func (e *BaselineEngine) crossValidate(proto baselineModel, rows []int) (map[string]float64, error) {
	folds := e.cfg.Folds
	if folds > len(rows) {
		folds = len(rows)
	}
	if folds < 2 {
		m := proto.clone()
		if err := e.fitRows(m, rows); err != nil {
			return nil, err
		}
		return e.scoreRows(m, rows)
	}

	totals := make(map[string]float64)
	for fold := 0; fold < folds; fold++ {
		var trainRows, valRows []int
		for i, r := range rows {
			if i%folds == fold {
				valRows = append(valRows, r)
			} else {
				trainRows = append(trainRows, r)
			}
		}

		m := proto.clone()
		if err := e.fitRows(m, trainRows); err != nil {
			return nil, fmt.Errorf("fold %d: %w", fold, err)
		}
		scores, err := e.scoreRows(m, valRows)
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", fold, err)
		}
		for name, v := range scores {
			totals[name] += v
		}
	}

	for name := range totals {
		totals[name] /= float64(folds)
	}
	return totals, nil
}

func (e *BaselineEngine) scoreRows(m baselineModel, rows []int) (map[string]float64, error) {
	preds := m.predict(e.matrixFor(rows))
	truth := make([]string, len(rows))
	for i, r := range rows {
		truth[i] = e.targetRaw[r]
	}

	scores := make(map[string]float64)
	for _, spec := range e.Metrics() {
		v, err := checkMetric(truth, preds, spec)
		if err != nil {
			return nil, err
		}
		scores[spec.DisplayName] = v
	}
	return scores, nil
}

func (e *BaselineEngine) fitRows(m baselineModel, rows []int) error {
	yRaw := make([]string, len(rows))
	for i, r := range rows {
		yRaw[i] = e.targetRaw[r]
	}

	var yNum []float64
	if e.task == TaskRegression {
		yNum = make([]float64, len(rows))
		for i, s := range yRaw {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return fmt.Errorf("engine: non-numeric target value %q", s)
			}
			yNum[i] = v
		}
	}
	return m.fit(e.matrixFor(rows), yNum, yRaw)
}

// matrixFor builds the feature matrix for a subset of training rows.
func (e *BaselineEngine) matrixFor(rows []int) *mat.Dense {
	x := mat.NewDense(len(rows), len(e.features), nil)
	for i, r := range rows {
		for j, col := range e.features {
			x.Set(i, j, e.featVals[col][r])
		}
	}
	return x
}

// matrixFromTable builds the feature matrix from an external table, which
// must carry every numeric feature column seen at Setup.
func (e *BaselineEngine) matrixFromTable(data *dataset.Table) (*mat.Dense, error) {
	if data.NumRows() == 0 {
		return nil, fmt.Errorf("engine: prediction data has no rows")
	}
	x := mat.NewDense(data.NumRows(), len(e.features), nil)
	for j, col := range e.features {
		vals, err := data.FloatColumn(col)
		if err != nil {
			return nil, fmt.Errorf("engine: feature column %q: %w", col, err)
		}
		for i, v := range vals {
			x.Set(i, j, v)
		}
	}
	return x, nil
}

// rowsTable copies a subset of training rows into a new table.
func (e *BaselineEngine) rowsTable(rows []int) (*dataset.Table, error) {
	out, err := dataset.NewTable(e.train.Columns())
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		record, err := e.train.Row(r)
		if err != nil {
			return nil, err
		}
		if err := out.AppendRow(record); err != nil {
			return nil, err
		}
	}
	return out, nil
}
