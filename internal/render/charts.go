package render

import (
	"image/color"
	"io"
	"math"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"fuelbreak/internal/dataprocessing"
	"fuelbreak/internal/errors"
	"fuelbreak/pkg/contracts/domain"
)

const (
	cutoffLabel    = "Mudança de Política (Mai/23)"
	dateAxisLabel  = "Data"
	dateTickFormat = "2006-01"
)

var (
	colorBlue   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	colorOrange = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	colorGreen  = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	colorRed    = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	colorBlack  = color.RGBA{A: 255}
)

var seriesColors = map[string]color.Color{
	domain.ColumnDiesel:       colorBlue,
	domain.ColumnGasoline:     colorOrange,
	domain.ColumnBrentBRL:     colorGreen,
	domain.ColumnExchangeRate: colorRed,
}

var boxAxisLabels = map[domain.Fuel]string{
	domain.FuelDiesel:   "Preço do Diesel (R$/litro)",
	domain.FuelGasoline: "Preço da Gasolina (R$/litro)",
}

// LevelsChart draws diesel, gasoline and the exchange rate over time, with
// Brent in BRL on a second panel that shares the date axis. Both panels mark
// the cutoff.
func LevelsChart(w io.Writer, table *domain.ObservationTable, style Style) error {
	if err := requireRows(table); err != nil {
		return err
	}

	top := style.newPlot()
	top.Y.Label.Text = "R$/L ou R$/US$"
	top.Legend.Top = true
	top.Legend.Left = true
	if err := addSeries(top, table, []string{domain.ColumnDiesel, domain.ColumnGasoline, domain.ColumnExchangeRate}, false); err != nil {
		return err
	}

	bottom := style.newPlot()
	bottom.X.Label.Text = dateAxisLabel
	bottom.Y.Label.Text = domain.ColumnLabel(domain.ColumnBrentBRL)
	bottom.Legend.Top = true
	bottom.Legend.Left = true
	if err := addSeries(bottom, table, []string{domain.ColumnBrentBRL}, false); err != nil {
		return err
	}

	for _, p := range []*plot.Plot{top, bottom} {
		if err := addCutoff(p, table.Cutoff, colorBlack); err != nil {
			return err
		}
	}
	shareDateAxis(top, bottom)

	c, err := draw.NewFormattedCanvas(style.ChartWidth, style.ChartHeight, style.Format)
	if err != nil {
		return errors.NewRenderError("failed to create canvas", err)
	}
	tiles := draw.Tiles{
		Rows:      2,
		Cols:      1,
		PadY:      vg.Points(6),
		PadTop:    vg.Points(4),
		PadBottom: vg.Points(4),
		PadLeft:   vg.Points(4),
		PadRight:  vg.Points(8),
	}
	canvases := plot.Align([][]*plot.Plot{{top}, {bottom}}, tiles, draw.New(c))
	top.Draw(canvases[0][0])
	bottom.Draw(canvases[1][0])

	if _, err := c.WriteTo(w); err != nil {
		return errors.NewStorageError("failed to write image", err)
	}
	return nil
}

// NormalizedChart draws the analysis series min-max scaled to [0, 1].
func NormalizedChart(w io.Writer, table *domain.ObservationTable, style Style) error {
	if err := requireRows(table); err != nil {
		return err
	}

	p := style.newPlot()
	p.X.Label.Text = dateAxisLabel
	p.Y.Label.Text = "Valor normalizado (0–1)"
	p.Legend.Top = true
	p.Legend.Left = true

	if err := addSeries(p, table, domain.AnalysisColumns, true); err != nil {
		return err
	}
	if err := addCutoff(p, table.Cutoff, colorRed); err != nil {
		return err
	}
	shareDateAxis(p)

	return style.writePlot(w, p, style.ChartWidth, style.ChartHeight)
}

// BoxPlotChart compares a fuel's price distribution before and after the cutoff.
func BoxPlotChart(w io.Writer, table *domain.ObservationTable, fuel domain.Fuel, style Style) error {
	if err := requireRows(table); err != nil {
		return err
	}

	p := style.newPlot()
	p.X.Label.Text = "Período"
	p.Y.Label.Text = boxAxisLabels[fuel]

	periods := []domain.Period{domain.PeriodBefore, domain.PeriodAfter}
	names := make([]string, len(periods))
	boxWidth := style.BoxWidth / 5

	for i, period := range periods {
		names[i] = period.Label()

		rows := table.Subset(period)
		if len(rows) == 0 {
			continue
		}
		values := make(plotter.Values, len(rows))
		for j, row := range rows {
			values[j] = row.Price(fuel)
		}
		box, err := plotter.NewBoxPlot(boxWidth, float64(i), values)
		if err != nil {
			return errors.NewRenderError("failed to build box plot", err).WithContext("period", period.Label())
		}
		box.FillColor = []color.Color{colorBlue, colorOrange}[i]
		p.Add(box)
	}
	p.NominalX(names...)

	return style.writePlot(w, p, style.BoxWidth, style.BoxHeight)
}

// addSeries adds one line per column, optionally min-max normalized.
func addSeries(p *plot.Plot, table *domain.ObservationTable, columns []string, normalize bool) error {
	p.Add(plotter.NewGrid())

	dates := dataprocessing.Dates(table.Rows)
	for _, col := range columns {
		values, err := dataprocessing.Series(table.Rows, col)
		if err != nil {
			return err
		}
		if normalize {
			values = dataprocessing.Normalize(values)
		}

		line, err := plotter.NewLine(timeXYs(dates, values))
		if err != nil {
			return errors.NewRenderError("failed to build line", err).WithContext("column", col)
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = seriesColors[col]
		p.Add(line)
		p.Legend.Add(domain.ColumnLabel(col), line)
	}
	return nil
}

// addCutoff draws a dashed vertical line across the plot's current y range.
func addCutoff(p *plot.Plot, cutoff time.Time, c color.Color) error {
	x := unixSeconds(cutoff)
	ymin, ymax := p.Y.Min, p.Y.Max
	if ymin == ymax || math.IsInf(ymin, 0) || math.IsInf(ymax, 0) {
		ymin, ymax = ymin-1, ymax+1
	}

	line, err := plotter.NewLine(plotter.XYs{{X: x, Y: ymin}, {X: x, Y: ymax}})
	if err != nil {
		return errors.NewRenderError("failed to build cutoff marker", err)
	}
	line.LineStyle.Color = c
	line.LineStyle.Width = vg.Points(1.2)
	line.LineStyle.Dashes = []vg.Length{vg.Points(5), vg.Points(4)}
	p.Add(line)
	p.Legend.Add(cutoffLabel, line)
	return nil
}

// shareDateAxis gives the plots the same x range and date ticks.
func shareDateAxis(plots ...*plot.Plot) {
	xmin, xmax := math.Inf(1), math.Inf(-1)
	for _, p := range plots {
		xmin = math.Min(xmin, p.X.Min)
		xmax = math.Max(xmax, p.X.Max)
	}
	for _, p := range plots {
		p.X.Min, p.X.Max = xmin, xmax
		p.X.Tick.Marker = plot.TimeTicks{Format: dateTickFormat}
	}
}

func timeXYs(dates []time.Time, values []float64) plotter.XYs {
	pts := make(plotter.XYs, len(values))
	for i := range values {
		pts[i].X = unixSeconds(dates[i])
		pts[i].Y = values[i]
	}
	return pts
}

func unixSeconds(t time.Time) float64 {
	return float64(t.Unix())
}

func requireRows(table *domain.ObservationTable) error {
	if table == nil || !table.Derived {
		return errors.NewRenderError("charts need a derived observation table", nil)
	}
	if table.Len() == 0 {
		return errors.NewRenderError("no observations to plot", nil)
	}
	return nil
}
