package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func score(t *testing.T, yTrue, yPred []string, name string) float64 {
	t.Helper()
	spec, err := resolveMetric(append(metricsForTask(TaskRegression), metricsForTask(TaskClassification)...), name)
	require.NoError(t, err)
	v, err := checkMetric(yTrue, yPred, spec)
	require.NoError(t, err)
	return v
}

func TestRegressionMetrics(t *testing.T) {
	yTrue := []string{"1", "2", "3", "4"}
	yPred := []string{"1.5", "2", "2", "5"}
	// abs errors: 0.5, 0, 1, 1 -> MAE 0.625
	// sq errors: 0.25, 0, 1, 1 -> MSE 0.5625, RMSE 0.75
	assert.InDelta(t, 0.625, score(t, yTrue, yPred, "mae"), 1e-12)
	assert.InDelta(t, 0.5625, score(t, yTrue, yPred, "mse"), 1e-12)
	assert.InDelta(t, 0.75, score(t, yTrue, yPred, "rmse"), 1e-12)
	// SS_tot = 5 (mean 2.5), SS_res = 2.25 -> R2 = 0.55
	assert.InDelta(t, 0.55, score(t, yTrue, yPred, "r2"), 1e-12)
}

func TestRSquared_ConstantTruth(t *testing.T) {
	assert.Equal(t, 1.0, rSquared([]float64{2, 2, 2}, []float64{2, 2, 2}))
	assert.Equal(t, 0.0, rSquared([]float64{2, 2, 2}, []float64{1, 2, 3}))
}

func TestClassificationMetrics(t *testing.T) {
	yTrue := []string{"cat", "cat", "dog", "dog"}
	yPred := []string{"cat", "dog", "dog", "dog"}

	assert.InDelta(t, 0.75, score(t, yTrue, yPred, "accuracy"), 1e-12)
	// cat: tp=1 fp=0 fn=1 -> p=1, r=0.5, f1=2/3
	// dog: tp=2 fp=1 fn=0 -> p=2/3, r=1, f1=0.8
	assert.InDelta(t, (1+2.0/3)/2, score(t, yTrue, yPred, "precision"), 1e-12)
	assert.InDelta(t, (0.5+1)/2, score(t, yTrue, yPred, "recall"), 1e-12)
	assert.InDelta(t, (2.0/3+0.8)/2, score(t, yTrue, yPred, "f1"), 1e-12)
}

func TestClassificationMetrics_Perfect(t *testing.T) {
	yTrue := []string{"a", "b", "a"}
	for _, m := range []string{"accuracy", "precision", "recall", "f1"} {
		assert.Equal(t, 1.0, score(t, yTrue, yTrue, m), m)
	}
}

func TestCheckMetric_Errors(t *testing.T) {
	spec := MetricSpec{Name: "rmse", DisplayName: "RMSE", LowerIsBetter: true}

	_, err := checkMetric([]string{"1"}, []string{"1", "2"}, spec)
	assert.Error(t, err)

	_, err = checkMetric(nil, nil, spec)
	assert.Error(t, err)

	_, err = checkMetric([]string{"cat"}, []string{"1"}, spec)
	assert.Error(t, err)
}

func TestResolveMetric(t *testing.T) {
	specs := metricsForTask(TaskRegression)

	byName, err := resolveMetric(specs, "rmse")
	require.NoError(t, err)
	assert.Equal(t, "RMSE", byName.DisplayName)
	assert.True(t, byName.LowerIsBetter)

	byDisplay, err := resolveMetric(specs, "R2")
	require.NoError(t, err)
	assert.Equal(t, "r2", byDisplay.Name)
	assert.False(t, byDisplay.LowerIsBetter)

	_, err = resolveMetric(specs, "auc")
	assert.True(t, errors.Is(err, ErrUnknownMetric))
}

func TestRMSEMatchesSqrtMSE(t *testing.T) {
	yTrue := []string{"10", "20", "30"}
	yPred := []string{"12", "18", "33"}
	assert.InDelta(t, math.Sqrt(score(t, yTrue, yPred, "mse")), score(t, yTrue, yPred, "rmse"), 1e-12)
}
