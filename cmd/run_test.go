package cmd

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autotab-dev/autotab/pkg/dataset"
)

// writeCompetitionDir writes a small noise-free regression competition.
func writeCompetitionDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	var train strings.Builder
	train.WriteString("Id,x,SalePrice\n")
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&train, "%d,%d,%d\n", i, i, 3*i+7)
	}

	var test, sample strings.Builder
	test.WriteString("Id,x\n")
	sample.WriteString("Id,SalePrice\n")
	for i := 40; i < 45; i++ {
		fmt.Fprintf(&test, "%d,%d\n", i, i)
		fmt.Fprintf(&sample, "%d,0\n", i)
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "train.csv"), []byte(train.String()), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.csv"), []byte(test.String()), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sample_submission.csv"), []byte(sample.String()), 0644))
	return dir
}

func executeCommand(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	require.NoError(t, root.Execute(), "command output:\n%s", out.String())
	return out.String()
}

func TestRunCommand(t *testing.T) {
	inputDir := writeCompetitionDir(t)
	outputDir := filepath.Join(t.TempDir(), "out")

	output := executeCommand(t,
		"run",
		"--input-dir", inputDir,
		"--output-dir", outputDir,
		"--metric", "rmse",
		"--max-columns", "2",
	)

	assert.Contains(t, output, "Finalized model")
	assert.Contains(t, output, "Linear Regression")
	assert.Contains(t, output, "RMSE")

	// The submission keeps the sample's header and row count, with
	// predictions in the target column.
	f, err := os.Open(filepath.Join(outputDir, "submission.csv"))
	require.NoError(t, err)
	defer f.Close()
	submission, err := dataset.ReadCSV(f)
	require.NoError(t, err)
	assert.Equal(t, []string{"Id", "SalePrice"}, submission.Columns())
	assert.Equal(t, 5, submission.NumRows())

	preds, err := submission.FloatColumn("SalePrice")
	require.NoError(t, err)
	for i, p := range preds {
		x := float64(40 + i)
		assert.InDelta(t, 3*x+7, p, 1e-6, "row %d", i)
	}

	// The chart is a valid PNG shaped by the grid plan: four metric panels
	// at two columns make a 2x2 grid.
	cf, err := os.Open(filepath.Join(outputDir, "comparison.png"))
	require.NoError(t, err)
	defer cf.Close()
	img, err := png.Decode(cf)
	require.NoError(t, err)
	assert.Equal(t, 2*600, img.Bounds().Dx())
	assert.Equal(t, 2*450, img.Bounds().Dy())
}

func TestRunCommand_IndexColumnConfig(t *testing.T) {
	inputDir := writeCompetitionDir(t)
	outputDir := filepath.Join(t.TempDir(), "out")

	// With input.index_column configured, the Id column is kept for the
	// submission but excluded from the model features.
	configPath := filepath.Join(t.TempDir(), "autotab.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("input:\n  index_column: Id\n"), 0644))

	output := executeCommand(t,
		"run",
		"--config", configPath,
		"--input-dir", inputDir,
		"--output-dir", outputDir,
		"--metric", "rmse",
		"--no-chart",
	)
	assert.Contains(t, output, "Linear Regression")

	f, err := os.Open(filepath.Join(outputDir, "submission.csv"))
	require.NoError(t, err)
	defer f.Close()
	submission, err := dataset.ReadCSV(f)
	require.NoError(t, err)

	preds, err := submission.FloatColumn("SalePrice")
	require.NoError(t, err)
	for i, p := range preds {
		x := float64(40 + i)
		assert.InDelta(t, 3*x+7, p, 1e-6, "row %d", i)
	}
}

func TestRunCommand_NoChart(t *testing.T) {
	inputDir := writeCompetitionDir(t)
	outputDir := filepath.Join(t.TempDir(), "out")

	executeCommand(t,
		"run",
		"--input-dir", inputDir,
		"--output-dir", outputDir,
		"--no-chart",
	)

	_, err := os.Stat(filepath.Join(outputDir, "submission.csv"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(outputDir, "comparison.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunCommand_MissingInput(t *testing.T) {
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"run", "--input-dir", filepath.Join(t.TempDir(), "nope")})
	assert.Error(t, root.Execute())
}

func TestInspectCommand(t *testing.T) {
	inputDir := writeCompetitionDir(t)

	output := executeCommand(t, "inspect", "--input-dir", inputDir)
	assert.Contains(t, output, "40 records, 3 features")
	assert.Contains(t, output, "5 records, 2 features")
	assert.Contains(t, output, "SalePrice")
}

func TestVersionCommand(t *testing.T) {
	output := executeCommand(t, "version")
	assert.Contains(t, output, "autotab")

	jsonOut := executeCommand(t, "version", "--json")
	assert.Contains(t, jsonOut, `"version"`)
}

func TestConfigShowCommand(t *testing.T) {
	output := executeCommand(t, "config", "show")
	assert.Contains(t, output, "input:")
	assert.Contains(t, output, "submission_file: submission.csv")
}

func TestConfigSchemaCommand(t *testing.T) {
	output := executeCommand(t, "config", "schema")
	assert.Contains(t, output, `"autotab configuration"`)
}
