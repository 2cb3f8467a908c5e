// Package render draws model-comparison figures: one bar chart per metric,
// laid out on a grid planned by the layout package and composed into a single
// PNG. Chart drawing is delegated to go-chart; this package only owns panel
// placement and the mapping from the metrics log to chart values.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/wcharczuk/go-chart/v2"
	"golang.org/x/sync/errgroup"

	"github.com/autotab-dev/autotab/pkg/layout"
	"github.com/autotab-dev/autotab/pkg/metricslog"
)

// Options controls figure geometry. Zero values use the documented defaults.
type Options struct {
	// MaxColumns caps the grid width. Default 3.
	MaxColumns int
	// PanelWidth and PanelHeight size each chart in pixels.
	// Defaults 600x450.
	PanelWidth  int
	PanelHeight int
}

func (o Options) withDefaults() Options {
	if o.MaxColumns <= 0 {
		o.MaxColumns = 3
	}
	if o.PanelWidth <= 0 {
		o.PanelWidth = 600
	}
	if o.PanelHeight <= 0 {
		o.PanelHeight = 450
	}
	return o
}

// ComparisonImage renders one bar chart per metric column of the log, with
// one bar per model, and composes the panels row-major onto a single canvas.
// Trailing grid cells beyond the last metric stay blank.
func ComparisonImage(ctx context.Context, mlog *metricslog.Log, opts Options) (image.Image, error) {
	if mlog == nil || mlog.Len() == 0 {
		return nil, metricslog.ErrEmptyLog
	}
	opts = opts.withDefaults()

	columns := mlog.Columns()
	models := mlog.ModelNames()

	plan, err := layout.Plan(len(columns), opts.MaxColumns)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"component": "render",
		"panels":    len(columns),
		"rows":      plan.Rows,
		"columns":   plan.Columns,
	}).Debug("Planned comparison grid")

	// Panels are independent: render them concurrently, then compose.
	panels := make([]image.Image, len(columns))
	g, ctx := errgroup.WithContext(ctx)
	for i, metric := range columns {
		i, metric := i, metric
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			values, err := mlog.Column(metric)
			if err != nil {
				return err
			}
			img, err := renderPanel(metric, models, values, opts.PanelWidth, opts.PanelHeight)
			if err != nil {
				return fmt.Errorf("rendering %q panel: %w", metric, err)
			}
			panels[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	canvas := image.NewRGBA(image.Rect(0, 0, plan.Columns*opts.PanelWidth, plan.Rows*opts.PanelHeight))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	for i, panel := range panels {
		cell, err := plan.CellForIndex(i)
		if err != nil {
			return nil, err
		}
		origin := image.Pt(cell.Col*opts.PanelWidth, cell.Row*opts.PanelHeight)
		draw.Draw(canvas, image.Rectangle{Min: origin, Max: origin.Add(image.Pt(opts.PanelWidth, opts.PanelHeight))}, panel, panel.Bounds().Min, draw.Src)
	}
	return canvas, nil
}

// WriteComparisonPNG renders the comparison figure to a PNG file.
func WriteComparisonPNG(ctx context.Context, path string, mlog *metricslog.Log, opts Options) error {
	img, err := ComparisonImage(ctx, mlog, opts)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}

// renderPanel draws a single metric's bar chart: one bar per model, labeled
// with the model name, titled with the metric's display name.
func renderPanel(title string, models []string, values []float64, width, height int) (image.Image, error) {
	bars := make([]chart.Value, len(models))
	for i, model := range models {
		bars[i] = chart.Value{Label: model, Value: values[i]}
	}

	graph := chart.BarChart{
		Title:  title,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 15, Right: 15, Bottom: 10},
		},
		YAxis: chart.YAxis{
			Range: barRange(values),
		},
		BarWidth: barWidth(width, len(models)),
		Bars:     bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decoding rendered panel: %w", err)
	}
	return img, nil
}

// barRange pads the value range so go-chart never sees a zero-span axis,
// which it rejects. Bars are anchored at zero when all values are positive.
func barRange(values []float64) *chart.ContinuousRange {
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if min > 0 {
		min = 0
	}
	span := max - min
	if span == 0 {
		span = 1
	}
	return &chart.ContinuousRange{Min: min, Max: max + 0.05*span}
}

// barWidth spreads the bars across roughly the full panel width.
func barWidth(panelWidth, bars int) int {
	if bars == 0 {
		return 0
	}
	w := panelWidth / (2 * bars)
	if w < 10 {
		w = 10
	}
	return w
}
