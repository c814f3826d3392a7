package render

import (
	"image/color"
	"io"

	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"fuelbreak/internal/errors"
	"fuelbreak/pkg/contracts/domain"
)

const (
	tableMargin    = vg.Inch / 10
	cellPadding    = vg.Inch / 10
	rowScale       = 1.5
	baseHeight     = 0.6 * vg.Inch
	heightPerRow   = 0.4 * vg.Inch
	headerGrayness = 235
)

var (
	headerFill = color.Gray{Y: headerGrayness}
	gridStyle  = draw.LineStyle{Color: color.Gray{Y: 120}, Width: vg.Points(0.5)}
)

// TableImage draws a report table as a grid of centred cells: a header row
// with the column labels and one row per body row, labelled on the left.
// The figure is the style's table width wide, grown if the text needs more,
// and 0.6 + 0.4·rows inches tall.
func TableImage(w io.Writer, tbl *domain.Table, style Style) error {
	if err := tbl.Validate(); err != nil {
		return errors.NewRenderError("invalid table", err)
	}

	cellStyle := style.textStyle(1)
	noteStyle := style.textStyle(0.85)
	noteStyle.XAlign = text.XLeft

	// column 0 holds the row labels
	ncols := len(tbl.Columns) + 1
	widths := make([]vg.Length, ncols)
	widths[0] = measure(cellStyle, append([]string{tbl.IndexLabel}, tbl.RowLabels...)) + 2*cellPadding
	for j, label := range tbl.Columns {
		col := []string{label}
		for _, row := range tbl.Cells {
			col = append(col, row[j])
		}
		widths[j+1] = measure(cellStyle, col) + 2*cellPadding
	}

	var natural vg.Length
	for _, cw := range widths {
		natural += cw
	}
	width := style.TableWidth
	if natural+2*tableMargin > width {
		width = natural + 2*tableMargin
	} else {
		extra := (width - 2*tableMargin - natural) / vg.Length(ncols)
		for j := range widths {
			widths[j] += extra
		}
	}

	nrows := tbl.NumRows() + 1
	height := baseHeight + heightPerRow*vg.Length(tbl.NumRows())
	rowHeight := cellStyle.Height("0") * rowScale
	if avail := (height - 2*tableMargin) / vg.Length(nrows); avail > rowHeight {
		rowHeight = avail
	}
	noteHeight := vg.Length(0)
	if tbl.Note != "" {
		noteHeight = noteStyle.Height(tbl.Note) * 2
	}
	if need := rowHeight*vg.Length(nrows) + noteHeight + 2*tableMargin; need > height {
		height = need
	}

	c, err := draw.NewFormattedCanvas(width, height, style.Format)
	if err != nil {
		return errors.NewRenderError("failed to create canvas", err)
	}
	dc := draw.New(c)

	gridWidth := natural
	if width > natural+2*tableMargin {
		gridWidth = width - 2*tableMargin
	}
	gridHeight := rowHeight * vg.Length(nrows)
	left := dc.Min.X + tableMargin
	top := dc.Max.Y - tableMargin - (height-2*tableMargin-noteHeight-gridHeight)/2

	// header background, row label column excluded
	headerLeft := left + widths[0]
	dc.FillPolygon(headerFill, []vg.Point{
		{X: headerLeft, Y: top},
		{X: left + gridWidth, Y: top},
		{X: left + gridWidth, Y: top - rowHeight},
		{X: headerLeft, Y: top - rowHeight},
	})

	drawRow := func(r int, label string, cells []string, sty text.Style) {
		y := top - rowHeight*vg.Length(r) - rowHeight/2
		x := left
		for j := 0; j < ncols; j++ {
			txt := label
			if j > 0 {
				txt = cells[j-1]
			}
			if txt != "" {
				dc.FillText(sty, vg.Point{X: x + widths[j]/2, Y: y}, txt)
			}
			x += widths[j]
		}
	}

	drawRow(0, tbl.IndexLabel, tbl.Columns, cellStyle)
	for i, row := range tbl.Cells {
		drawRow(i+1, tbl.RowLabels[i], row, cellStyle)
	}

	// horizontal rules
	for r := 0; r <= nrows; r++ {
		y := top - rowHeight*vg.Length(r)
		dc.StrokeLine2(gridStyle, left, y, left+gridWidth, y)
	}
	// vertical rules
	x := left
	for j := 0; j <= ncols; j++ {
		dc.StrokeLine2(gridStyle, x, top, x, top-gridHeight)
		if j < ncols {
			x += widths[j]
		}
	}

	if tbl.Note != "" {
		dc.FillText(noteStyle, vg.Point{X: left, Y: top - gridHeight - noteHeight/2}, tbl.Note)
	}

	if _, err := c.WriteTo(w); err != nil {
		return errors.NewStorageError("failed to write image", err)
	}
	return nil
}

func measure(sty text.Style, values []string) vg.Length {
	var widest vg.Length
	for _, v := range values {
		if wd := sty.Width(v); wd > widest {
			widest = wd
		}
	}
	return widest
}
