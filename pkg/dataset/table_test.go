package dataset

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	input := "id,feature,price\n1,a,10.5\n2,b,20\n3,c,30.25\n"
	table, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "feature", "price"}, table.Columns())
	assert.Equal(t, 3, table.NumRows())
	assert.Equal(t, 3, table.NumColumns())

	col, err := table.Column("feature")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, col)

	prices, err := table.FloatColumn("price")
	require.NoError(t, err)
	assert.Equal(t, []float64{10.5, 20, 30.25}, prices)
}

func TestReadCSV_Errors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.Error(t, err)

	// Ragged rows are rejected by the csv reader.
	_, err = ReadCSV(strings.NewReader("a,b\n1\n"))
	assert.Error(t, err)
}

func TestTable_FloatColumnParseError(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("x\n1.5\noops\n"))
	require.NoError(t, err)

	_, err = table.FloatColumn("x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 1")
}

func TestTable_SetColumn(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("id,y\n1,0\n2,0\n"))
	require.NoError(t, err)

	// Replacing an existing column keeps the column order.
	require.NoError(t, table.SetColumn("y", []string{"3", "4"}))
	assert.Equal(t, []string{"id", "y"}, table.Columns())
	col, err := table.Column("y")
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "4"}, col)

	// A new column is appended.
	require.NoError(t, table.SetFloatColumn("pred", []float64{0.5, 1}))
	assert.Equal(t, []string{"id", "y", "pred"}, table.Columns())

	// Mismatched length is rejected.
	assert.Error(t, table.SetColumn("y", []string{"1"}))
}

func TestTable_CloneIsIndependent(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("id,y\n1,10\n2,20\n"))
	require.NoError(t, err)

	clone := table.Clone()
	require.NoError(t, clone.SetColumn("y", []string{"0", "0"}))

	orig, err := table.Column("y")
	require.NoError(t, err)
	assert.Equal(t, []string{"10", "20"}, orig)
}

func TestTable_WriteCSVRoundTrip(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("id,label\n1,cat\n2,dog\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, table.WriteCSV(&buf))
	assert.Equal(t, "id,label\n1,cat\n2,dog\n", buf.String())
}

func TestNewTable_DuplicateColumn(t *testing.T) {
	_, err := NewTable([]string{"a", "b", "a"})
	assert.Error(t, err)
}
