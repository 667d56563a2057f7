// Package visualize renders exploration and model-inspection charts with
// gonum/plot. Constructors return the assembled *plot.Plot so callers decide
// whether to save it to disk or write it to an arbitrary io.Writer.
package visualize

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	credigoErrors "github.com/credigo/credigo/pkg/errors"
)

var (
	barFill = color.RGBA{R: 68, G: 114, B: 196, A: 255}
)

// ImportanceBar builds a bar chart of feature importance scores. Names and
// scores must align index for index, as produced by ensemble.ImportanceTable.
func ImportanceBar(title string, names []string, scores []float64) (*plot.Plot, error) {
	if len(names) != len(scores) {
		return nil, credigoErrors.NewDimensionError("visualize.ImportanceBar", len(names), len(scores), 0)
	}
	if len(names) == 0 {
		return nil, credigoErrors.Wrap(credigoErrors.ErrEmptyData, "visualize.ImportanceBar")
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "importance"

	bars, err := plotter.NewBarChart(plotter.Values(scores), vg.Points(12))
	if err != nil {
		return nil, credigoErrors.Wrap(err, "visualize.ImportanceBar")
	}
	bars.LineStyle.Width = vg.Length(0)
	bars.Color = barFill

	p.Add(bars)
	p.NominalX(names...)
	rotateTicks(p)

	return p, nil
}

// BoxPlot builds one box per series, labeled by groupNames. The workflow uses
// it for the amount-by-outcome view; any grouped numeric column works.
func BoxPlot(title string, groupNames []string, series [][]float64) (*plot.Plot, error) {
	if len(groupNames) != len(series) {
		return nil, credigoErrors.NewDimensionError("visualize.BoxPlot", len(groupNames), len(series), 0)
	}
	if len(series) == 0 {
		return nil, credigoErrors.Wrap(credigoErrors.ErrEmptyData, "visualize.BoxPlot")
	}

	p := plot.New()
	p.Title.Text = title

	for i, values := range series {
		box, err := plotter.NewBoxPlot(vg.Points(24), float64(i), plotter.Values(values))
		if err != nil {
			return nil, credigoErrors.Wrapf(err, "visualize.BoxPlot: group %q", groupNames[i])
		}
		p.Add(box)
	}
	p.NominalX(groupNames...)

	return p, nil
}

// SavePNG writes the plot as a PNG at a fixed report size.
func SavePNG(p *plot.Plot, path string) error {
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return credigoErrors.Wrapf(err, "visualize.SavePNG: %s", path)
	}
	return nil
}

// rotateTicks turns the nominal labels vertical; twenty feature names do not
// fit horizontally.
func rotateTicks(p *plot.Plot) {
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
}
