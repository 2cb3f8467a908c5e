package engine

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// Metric sets per task type. Display names title report columns and chart
// panels; short names select metrics on the command line.
var (
	regressionMetrics = []MetricSpec{
		{Name: "mae", DisplayName: "MAE", LowerIsBetter: true},
		{Name: "mse", DisplayName: "MSE", LowerIsBetter: true},
		{Name: "rmse", DisplayName: "RMSE", LowerIsBetter: true},
		{Name: "r2", DisplayName: "R2"},
	}
	classificationMetrics = []MetricSpec{
		{Name: "accuracy", DisplayName: "Accuracy"},
		{Name: "precision", DisplayName: "Precision"},
		{Name: "recall", DisplayName: "Recall"},
		{Name: "f1", DisplayName: "F1"},
	}
)

// metricsForTask returns the metric set for a resolved task type.
func metricsForTask(task TaskType) []MetricSpec {
	if task == TaskClassification {
		return append([]MetricSpec(nil), classificationMetrics...)
	}
	return append([]MetricSpec(nil), regressionMetrics...)
}

// resolveMetric matches name against a metric set by short name or display
// name, case-insensitively.
func resolveMetric(specs []MetricSpec, name string) (MetricSpec, error) {
	for _, spec := range specs {
		if strings.EqualFold(spec.Name, name) || strings.EqualFold(spec.DisplayName, name) {
			return spec, nil
		}
	}
	return MetricSpec{}, fmt.Errorf("%w: %q", ErrUnknownMetric, name)
}

// checkMetric scores predictions against ground truth for one metric spec.
func checkMetric(yTrue, yPred []string, spec MetricSpec) (float64, error) {
	if len(yTrue) != len(yPred) {
		return 0, fmt.Errorf("engine: %d truth values vs %d predictions", len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return 0, fmt.Errorf("engine: no values to score")
	}

	switch spec.Name {
	case "mae", "mse", "rmse", "r2":
		truth, err := parseFloats(yTrue)
		if err != nil {
			return 0, err
		}
		pred, err := parseFloats(yPred)
		if err != nil {
			return 0, err
		}
		switch spec.Name {
		case "mae":
			return meanAbsoluteError(truth, pred), nil
		case "mse":
			return meanSquaredError(truth, pred), nil
		case "rmse":
			return math.Sqrt(meanSquaredError(truth, pred)), nil
		default:
			return rSquared(truth, pred), nil
		}
	case "accuracy":
		return accuracy(yTrue, yPred), nil
	case "precision":
		p, _, _ := macroPRF(yTrue, yPred)
		return p, nil
	case "recall":
		_, r, _ := macroPRF(yTrue, yPred)
		return r, nil
	case "f1":
		_, _, f := macroPRF(yTrue, yPred)
		return f, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMetric, spec.Name)
	}
}

func parseFloats(values []string) ([]float64, error) {
	out := make([]float64, len(values))
	for i, s := range values {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("engine: non-numeric value %q in a numeric metric", s)
		}
		out[i] = f
	}
	return out, nil
}

func meanAbsoluteError(truth, pred []float64) float64 {
	sum := 0.0
	for i := range truth {
		sum += math.Abs(truth[i] - pred[i])
	}
	return sum / float64(len(truth))
}

func meanSquaredError(truth, pred []float64) float64 {
	sum := 0.0
	for i := range truth {
		d := truth[i] - pred[i]
		sum += d * d
	}
	return sum / float64(len(truth))
}

// rSquared is 1 - SS_res/SS_tot. A constant truth vector has zero total
// variance; by convention that yields 0 unless the predictions are exact.
func rSquared(truth, pred []float64) float64 {
	mean := stat.Mean(truth, nil)
	ssTot := 0.0
	ssRes := 0.0
	for i := range truth {
		dt := truth[i] - mean
		ssTot += dt * dt
		dr := truth[i] - pred[i]
		ssRes += dr * dr
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}

func accuracy(yTrue, yPred []string) float64 {
	hits := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(yTrue))
}

// macroPRF computes macro-averaged precision, recall and F1 over the classes
// present in the ground truth.
func macroPRF(yTrue, yPred []string) (precision, recall, f1 float64) {
	classes := make(map[string]bool)
	for _, c := range yTrue {
		classes[c] = true
	}
	ordered := make([]string, 0, len(classes))
	for c := range classes {
		ordered = append(ordered, c)
	}
	sort.Strings(ordered)

	for _, class := range ordered {
		var tp, fp, fn float64
		for i := range yTrue {
			switch {
			case yPred[i] == class && yTrue[i] == class:
				tp++
			case yPred[i] == class:
				fp++
			case yTrue[i] == class:
				fn++
			}
		}
		var p, r float64
		if tp+fp > 0 {
			p = tp / (tp + fp)
		}
		if tp+fn > 0 {
			r = tp / (tp + fn)
		}
		precision += p
		recall += r
		if p+r > 0 {
			f1 += 2 * p * r / (p + r)
		}
	}

	n := float64(len(ordered))
	return precision / n, recall / n, f1 / n
}
