package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"

	"github.com/autotab-dev/autotab/pkg/metricslog"
	"github.com/autotab-dev/autotab/pkg/pipeline"
)

// printRunSummary writes the human-facing result of a baseline run: the
// finalized model plus the full comparison table.
func printRunSummary(w io.Writer, result *pipeline.Result, mlog *metricslog.Log) {
	title := color.New(color.FgCyan, color.Bold)
	title.Fprintf(w, "\nBaseline run %s\n", result.RunID)
	fmt.Fprintf(w, "Finalized model: %s\n\n", color.GreenString(result.ModelName))
	printMetricsTable(w, mlog)
}

// printMetricsTable renders the metrics log as an aligned text table, one row
// per model, one column per metric.
func printMetricsTable(w io.Writer, mlog *metricslog.Log) {
	columns := mlog.Columns()
	rows := mlog.Rows()
	if len(rows) == 0 {
		return
	}

	nameWidth := len("Model")
	for _, row := range rows {
		if len(row.Name) > nameWidth {
			nameWidth = len(row.Name)
		}
	}
	colWidth := 12
	for _, c := range columns {
		if len(c)+2 > colWidth {
			colWidth = len(c) + 2
		}
	}

	header := color.New(color.Bold)
	header.Fprintf(w, "%-*s", nameWidth, "Model")
	for _, c := range columns {
		header.Fprintf(w, "%*s", colWidth, c)
	}
	fmt.Fprintln(w)

	for _, row := range rows {
		fmt.Fprintf(w, "%-*s", nameWidth, row.Name)
		for _, c := range columns {
			fmt.Fprintf(w, "%*s", colWidth, formatMetric(row.Metrics[c]))
		}
		fmt.Fprintln(w)
	}
}

func formatMetric(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
