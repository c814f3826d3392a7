package render

import (
	"fmt"
	"image/color"
	"io"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"

	"fuelbreak/internal/config"
	"fuelbreak/internal/errors"
)

// Style carries the typography and figure sizes for one run. It is passed
// to every drawing call; nothing here touches gonum/plot package defaults.
type Style struct {
	Font        font.Font
	ChartWidth  vg.Length
	ChartHeight vg.Length
	BoxWidth    vg.Length
	BoxHeight   vg.Length
	TableWidth  vg.Length
	Format      string
}

// NewStyle builds a Style from the render configuration. Sizes are in inches
// and the font size in points.
func NewStyle(cfg config.RenderConfig) (Style, error) {
	format := strings.ToLower(strings.TrimSpace(cfg.Format))
	switch format {
	case config.FormatSVG, config.FormatPNG, config.FormatPDF:
	default:
		return Style{}, errors.NewRenderError(fmt.Sprintf("unsupported image format %q", cfg.Format), nil)
	}

	if cfg.FontSize <= 0 {
		return Style{}, errors.NewRenderError("font size must be positive", nil)
	}
	for name, v := range map[string]float64{
		"chart_width":  cfg.ChartWidth,
		"chart_height": cfg.ChartHeight,
		"box_width":    cfg.BoxWidth,
		"box_height":   cfg.BoxHeight,
		"table_width":  cfg.TableWidth,
	} {
		if v <= 0 {
			return Style{}, errors.NewRenderError(name+" must be positive", nil).WithContext("field", name)
		}
	}

	return Style{
		Font: font.Font{
			Typeface: font.Typeface(cfg.Typeface),
			Variant:  font.Variant(cfg.Variant),
			Size:     vg.Points(cfg.FontSize),
		},
		ChartWidth:  vg.Length(cfg.ChartWidth) * vg.Inch,
		ChartHeight: vg.Length(cfg.ChartHeight) * vg.Inch,
		BoxWidth:    vg.Length(cfg.BoxWidth) * vg.Inch,
		BoxHeight:   vg.Length(cfg.BoxHeight) * vg.Inch,
		TableWidth:  vg.Length(cfg.TableWidth) * vg.Inch,
		Format:      format,
	}, nil
}

// Ext returns the file extension for the style's format, without the dot.
func (s Style) Ext() string {
	return s.Format
}

// scaled returns the base font resized by factor.
func (s Style) scaled(factor float64) font.Font {
	f := s.Font
	f.Size = vg.Length(float64(s.Font.Size) * factor)
	return f
}

func (s Style) textStyle(factor float64) text.Style {
	return text.Style{
		Color:   color.Black,
		Font:    s.scaled(factor),
		XAlign:  text.XCenter,
		YAlign:  text.YCenter,
		Handler: plot.DefaultTextHandler,
	}
}

// newPlot creates a plot with every text element using the style's font.
func (s Style) newPlot() *plot.Plot {
	p := plot.New()
	p.Title.TextStyle.Font = s.scaled(1.15)
	p.X.Label.TextStyle.Font = s.Font
	p.Y.Label.TextStyle.Font = s.Font
	p.X.Tick.Label.Font = s.scaled(0.9)
	p.Y.Tick.Label.Font = s.scaled(0.9)
	p.Legend.TextStyle.Font = s.scaled(0.9)
	return p
}

func (s Style) writePlot(w io.Writer, p *plot.Plot, width, height vg.Length) error {
	wt, err := p.WriterTo(width, height, s.Format)
	if err != nil {
		return errors.NewRenderError("failed to create canvas", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return errors.NewStorageError("failed to write image", err)
	}
	return nil
}
