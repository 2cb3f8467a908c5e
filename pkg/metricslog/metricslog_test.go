package metricslog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog_AddAndRows(t *testing.T) {
	log := New()

	err := log.Add(map[string]float64{"Accuracy": 0.9, "F1": 0.8}, "modelA")
	require.NoError(t, err)
	err = log.Add(map[string]float64{"Accuracy": 0.95, "F1": 0.85}, "modelB")
	require.NoError(t, err)

	rows := log.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "modelA", rows[0].Name)
	assert.Equal(t, "modelB", rows[1].Name)
	assert.Equal(t, 0.9, rows[0].Metrics["Accuracy"])
	assert.Equal(t, 0.85, rows[1].Metrics["F1"])

	assert.Equal(t, []string{"Accuracy", "F1"}, log.Columns())
	assert.Equal(t, []string{"modelA", "modelB"}, log.ModelNames())
}

func TestLog_OverwriteKeepsPosition(t *testing.T) {
	log := New()
	require.NoError(t, log.Add(map[string]float64{"Accuracy": 0.9, "F1": 0.8}, "modelA"))
	require.NoError(t, log.Add(map[string]float64{"Accuracy": 0.95, "F1": 0.85}, "modelB"))

	// Re-adding modelA updates values without appending a duplicate row.
	require.NoError(t, log.Add(map[string]float64{"Accuracy": 0.99, "F1": 0.97}, "modelA"))

	rows := log.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "modelA", rows[0].Name)
	assert.Equal(t, 0.99, rows[0].Metrics["Accuracy"])
	assert.Equal(t, 0.97, rows[0].Metrics["F1"])
	assert.Equal(t, "modelB", rows[1].Name)
}

func TestLog_SchemaMismatch(t *testing.T) {
	log := New()
	require.NoError(t, log.Add(map[string]float64{"Accuracy": 0.9, "F1": 0.8}, "modelA"))

	tests := []struct {
		name    string
		metrics map[string]float64
	}{
		{name: "missing column", metrics: map[string]float64{"Accuracy": 0.5}},
		{name: "extra column", metrics: map[string]float64{"Accuracy": 0.5, "F1": 0.4, "AUC": 0.6}},
		{name: "renamed column", metrics: map[string]float64{"Accuracy": 0.5, "Recall": 0.4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := log.Add(tt.metrics, "modelB")
			assert.True(t, errors.Is(err, ErrSchemaMismatch), "got %v", err)
		})
	}

	// A failed insertion must leave the table untouched.
	assert.Equal(t, 1, log.Len())
	assert.Equal(t, []string{"modelA"}, log.ModelNames())
}

func TestLog_AddEmptyMetrics(t *testing.T) {
	// An empty metric map is an invalid argument, not a schema mismatch: on a
	// fresh log there is no schema to mismatch yet.
	fresh := New()
	err := fresh.Add(map[string]float64{}, "modelA")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrSchemaMismatch))
	assert.Equal(t, 0, fresh.Len())
	assert.Nil(t, fresh.Columns())

	established := New()
	require.NoError(t, established.Add(map[string]float64{"Accuracy": 0.9}, "modelA"))
	err = established.Add(map[string]float64{}, "modelB")
	require.Error(t, err)
	assert.Equal(t, 1, established.Len())
}

func TestLog_Column(t *testing.T) {
	log := New()
	require.NoError(t, log.Add(map[string]float64{"RMSE": 1.5, "MAE": 1.1}, "mean"))
	require.NoError(t, log.Add(map[string]float64{"RMSE": 0.7, "MAE": 0.5}, "ols"))

	vals, err := log.Column("RMSE")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 0.7}, vals)

	_, err = log.Column("AUC")
	assert.True(t, errors.Is(err, ErrSchemaMismatch))
}

func TestLog_Empty(t *testing.T) {
	log := New()
	assert.Equal(t, 0, log.Len())
	assert.Nil(t, log.Columns())
	assert.Empty(t, log.Rows())

	_, err := log.Column("Accuracy")
	assert.True(t, errors.Is(err, ErrEmptyLog))
}

func TestLog_RowsReturnsCopies(t *testing.T) {
	log := New()
	require.NoError(t, log.Add(map[string]float64{"Accuracy": 0.9}, "modelA"))

	rows := log.Rows()
	rows[0].Metrics["Accuracy"] = 0.1

	again := log.Rows()
	assert.Equal(t, 0.9, again[0].Metrics["Accuracy"])
}

func TestLog_IndependentInstances(t *testing.T) {
	// Two logs must not share state: different column sets may coexist.
	a := New()
	b := New()
	require.NoError(t, a.Add(map[string]float64{"Accuracy": 0.9}, "clf"))
	require.NoError(t, b.Add(map[string]float64{"RMSE": 1.2}, "reg"))

	assert.Equal(t, []string{"Accuracy"}, a.Columns())
	assert.Equal(t, []string{"RMSE"}, b.Columns())
}
