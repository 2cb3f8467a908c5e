package engine

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// baselineModel is the internal contract of the built-in models. fit receives
// the numeric feature matrix plus the target, as floats for regression and as
// raw label strings for classification; predict returns raw string cells so
// both task types flow through the same scoring path.
type baselineModel interface {
	Model
	clone() baselineModel
	fit(x *mat.Dense, yNum []float64, yRaw []string) error
	predict(x *mat.Dense) []string
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// meanModel predicts the training mean of the target.
type meanModel struct {
	value float64
}

func (m *meanModel) Name() string         { return "Mean Predictor" }
func (m *meanModel) clone() baselineModel { return &meanModel{} }

func (m *meanModel) fit(_ *mat.Dense, yNum []float64, _ []string) error {
	m.value = stat.Mean(yNum, nil)
	return nil
}

func (m *meanModel) predict(x *mat.Dense) []string {
	rows, _ := x.Dims()
	out := make([]string, rows)
	for i := range out {
		out[i] = formatFloat(m.value)
	}
	return out
}

// medianModel predicts the training median of the target.
type medianModel struct {
	value float64
}

func (m *medianModel) Name() string         { return "Median Predictor" }
func (m *medianModel) clone() baselineModel { return &medianModel{} }

func (m *medianModel) fit(_ *mat.Dense, yNum []float64, _ []string) error {
	sorted := append([]float64(nil), yNum...)
	sort.Float64s(sorted)
	m.value = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	return nil
}

func (m *medianModel) predict(x *mat.Dense) []string {
	rows, _ := x.Dims()
	out := make([]string, rows)
	for i := range out {
		out[i] = formatFloat(m.value)
	}
	return out
}

// olsModel is ordinary least squares linear regression with an intercept.
type olsModel struct {
	coef []float64 // intercept first
}

func (m *olsModel) Name() string         { return "Linear Regression" }
func (m *olsModel) clone() baselineModel { return &olsModel{} }

func (m *olsModel) fit(x *mat.Dense, yNum []float64, _ []string) error {
	aug := withIntercept(x)
	rows, cols := aug.Dims()
	if rows < cols {
		return fmt.Errorf("linear regression needs at least %d rows, got %d", cols, rows)
	}

	// gonum flags an ill-conditioned system (e.g. collinear feature columns)
	// with a Condition error but still computes the least squares solution.
	var beta mat.Dense
	if err := beta.Solve(aug, mat.NewDense(len(yNum), 1, yNum)); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return fmt.Errorf("least squares solve: %w", err)
		}
	}

	m.coef = make([]float64, cols)
	for i := range m.coef {
		m.coef[i] = beta.At(i, 0)
	}
	return nil
}

func (m *olsModel) predict(x *mat.Dense) []string {
	return predictLinear(x, m.coef)
}

// ridgeModel is L2-regularized linear regression. The intercept is not
// penalized. Lambda is the hyperparameter Tune searches over.
type ridgeModel struct {
	lambda float64
	coef   []float64 // intercept first
}

func (m *ridgeModel) Name() string {
	return fmt.Sprintf("Ridge Regression (lambda=%g)", m.lambda)
}

func (m *ridgeModel) clone() baselineModel { return &ridgeModel{lambda: m.lambda} }

func (m *ridgeModel) fit(x *mat.Dense, yNum []float64, _ []string) error {
	aug := withIntercept(x)
	_, cols := aug.Dims()

	// Normal equations: (XᵀX + λI)β = Xᵀy, with no penalty on the intercept.
	var xtx mat.Dense
	xtx.Mul(aug.T(), aug)
	for i := 1; i < cols; i++ {
		xtx.Set(i, i, xtx.At(i, i)+m.lambda)
	}

	var xty mat.Dense
	xty.Mul(aug.T(), mat.NewDense(len(yNum), 1, yNum))

	var beta mat.Dense
	if err := beta.Solve(&xtx, &xty); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return fmt.Errorf("ridge solve (lambda=%g): %w", m.lambda, err)
		}
	}

	m.coef = make([]float64, cols)
	for i := range m.coef {
		m.coef[i] = beta.At(i, 0)
	}
	return nil
}

func (m *ridgeModel) predict(x *mat.Dense) []string {
	return predictLinear(x, m.coef)
}

// majorityModel predicts the most frequent training class. Ties break to the
// lexicographically smallest class so runs are deterministic.
type majorityModel struct {
	class string
}

func (m *majorityModel) Name() string         { return "Majority Class" }
func (m *majorityModel) clone() baselineModel { return &majorityModel{} }

func (m *majorityModel) fit(_ *mat.Dense, _ []float64, yRaw []string) error {
	counts := make(map[string]int)
	for _, c := range yRaw {
		counts[c]++
	}
	best := ""
	bestCount := -1
	for class, n := range counts {
		if n > bestCount || (n == bestCount && class < best) {
			best, bestCount = class, n
		}
	}
	m.class = best
	return nil
}

func (m *majorityModel) predict(x *mat.Dense) []string {
	rows, _ := x.Dims()
	out := make([]string, rows)
	for i := range out {
		out[i] = m.class
	}
	return out
}

// centroidModel is a nearest-centroid classifier over the numeric features.
type centroidModel struct {
	classes   []string
	centroids *mat.Dense // one row per class
}

func (m *centroidModel) Name() string         { return "Nearest Centroid" }
func (m *centroidModel) clone() baselineModel { return &centroidModel{} }

func (m *centroidModel) fit(x *mat.Dense, _ []float64, yRaw []string) error {
	rows, cols := x.Dims()
	if cols == 0 {
		return fmt.Errorf("nearest centroid needs at least one numeric feature")
	}

	sums := make(map[string][]float64)
	counts := make(map[string]int)
	for i := 0; i < rows; i++ {
		class := yRaw[i]
		if sums[class] == nil {
			sums[class] = make([]float64, cols)
		}
		counts[class]++
		for j := 0; j < cols; j++ {
			sums[class][j] += x.At(i, j)
		}
	}

	m.classes = make([]string, 0, len(sums))
	for class := range sums {
		m.classes = append(m.classes, class)
	}
	sort.Strings(m.classes)

	m.centroids = mat.NewDense(len(m.classes), cols, nil)
	for i, class := range m.classes {
		for j := 0; j < cols; j++ {
			m.centroids.Set(i, j, sums[class][j]/float64(counts[class]))
		}
	}
	return nil
}

func (m *centroidModel) predict(x *mat.Dense) []string {
	rows, cols := x.Dims()
	out := make([]string, rows)
	for i := 0; i < rows; i++ {
		bestClass := m.classes[0]
		bestDist := math.Inf(1)
		for c := range m.classes {
			dist := 0.0
			for j := 0; j < cols; j++ {
				d := x.At(i, j) - m.centroids.At(c, j)
				dist += d * d
			}
			if dist < bestDist {
				bestDist = dist
				bestClass = m.classes[c]
			}
		}
		out[i] = bestClass
	}
	return out
}

// withIntercept prepends a column of ones.
func withIntercept(x *mat.Dense) *mat.Dense {
	rows, cols := x.Dims()
	aug := mat.NewDense(rows, cols+1, nil)
	for i := 0; i < rows; i++ {
		aug.Set(i, 0, 1)
		for j := 0; j < cols; j++ {
			aug.Set(i, j+1, x.At(i, j))
		}
	}
	return aug
}

func predictLinear(x *mat.Dense, coef []float64) []string {
	rows, cols := x.Dims()
	out := make([]string, rows)
	for i := 0; i < rows; i++ {
		y := coef[0]
		for j := 0; j < cols; j++ {
			y += coef[j+1] * x.At(i, j)
		}
		out[i] = formatFloat(y)
	}
	return out
}
