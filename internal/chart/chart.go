package chart

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	_ "gonum.org/v1/plot/vg/vgeps"
	_ "gonum.org/v1/plot/vg/vgimg"
	_ "gonum.org/v1/plot/vg/vgpdf"
	_ "gonum.org/v1/plot/vg/vgsvg"

	"StockScreener/internal/calculator"
	"StockScreener/internal/model"
)

// SymbolPlaceholder in an output path is replaced by the series symbol.
const SymbolPlaceholder = "{symbol}"

// ErrEmptySeries is returned when there is nothing to draw.
var ErrEmptySeries = errors.New("chart: series has no rows")

// Options selects the optional moving-average overlays.
type Options struct {
	ShowMA50  bool
	ShowMA200 bool
}

// Windows lists the enabled average lengths in drawing order.
func (o Options) Windows() []int {
	var w []int
	if o.ShowMA50 {
		w = append(w, 50)
	}
	if o.ShowMA200 {
		w = append(w, 200)
	}
	return w
}

// Renderer draws the price/volume figure to an image file.
type Renderer struct {
	Output string
	Width  vg.Length
	Height vg.Length
	Logger *zap.Logger
}

// NewRenderer creates a renderer with the default 15x5 inch figure size.
func NewRenderer(output string, logger *zap.Logger) *Renderer {
	return &Renderer{
		Output: output,
		Width:  15 * vg.Inch,
		Height: 5 * vg.Inch,
		Logger: logger,
	}
}

// OutputPath resolves the output file for symbol. Templates without an
// extension get ".png"; dots inside the symbol never count as one.
func (r *Renderer) OutputPath(symbol string) string {
	path := strings.ReplaceAll(r.Output, SymbolPlaceholder, symbol)
	if filepath.Ext(strings.ReplaceAll(r.Output, SymbolPlaceholder, "")) == "" {
		path += ".png"
	}
	return path
}

type series struct {
	Name string
	XYs  plotter.XYs
}

// priceLines returns the close line followed by one line per enabled average.
// Averages missing from s are derived here; those with no defined value are left out.
func priceLines(s *model.Series, opts Options, logger *zap.Logger) ([]series, error) {
	dates := s.Dates()
	closes := s.Closes()

	lines := []series{{Name: "Close", XYs: make(plotter.XYs, len(closes))}}
	for i, c := range closes {
		lines[0].XYs[i] = plotter.XY{X: float64(dates[i].Unix()), Y: c}
	}

	for _, w := range opts.Windows() {
		ma, ok := s.Average(fmt.Sprintf("MA%d", w))
		if !ok {
			derived, err := calculator.Derive(s, w)
			if err != nil {
				return nil, fmt.Errorf("derive MA%d: %w", w, err)
			}
			s = derived
			ma, _ = s.Average(fmt.Sprintf("MA%d", w))
		}
		xys := make(plotter.XYs, 0, ma.Defined())
		for i, ok := range ma.Valid {
			if ok {
				xys = append(xys, plotter.XY{X: float64(dates[i].Unix()), Y: ma.Values[i]})
			}
		}
		if len(xys) == 0 {
			logger.Debug("moving average has no defined points, not drawn",
				zap.String("symbol", s.Symbol),
				zap.Int("window", w),
				zap.Int("rows", s.Len()),
			)
			continue
		}
		lines = append(lines, series{Name: ma.Name(), XYs: xys})
	}
	return lines, nil
}

func volumeLine(s *model.Series) series {
	dates := s.Dates()
	vols := s.Volumes()
	xys := make(plotter.XYs, len(vols))
	for i, v := range vols {
		xys[i] = plotter.XY{X: float64(dates[i].Unix()), Y: v}
	}
	return series{Name: "Volume", XYs: xys}
}

func newPanel(ylabel string, lines []series, legendLeft bool) (*plot.Plot, error) {
	p := plot.New()
	p.Y.Label.Text = ylabel
	p.X.Tick.Marker = plot.TimeTicks{Format: model.DateLayout}
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	p.Legend.Left = legendLeft

	for i, ln := range lines {
		l, err := plotter.NewLine(ln.XYs)
		if err != nil {
			return nil, fmt.Errorf("%s line: %w", ln.Name, err)
		}
		l.LineStyle.Color = plotutil.Color(i)
		l.LineStyle.Width = vg.Points(1)
		p.Add(l)
		p.Legend.Add(ln.Name, l)
	}
	return p, nil
}

// Render draws closing price (plus the enabled averages) above volume and
// writes the figure in the format given by the output extension.
func (r *Renderer) Render(s *model.Series, opts Options) (string, error) {
	if s == nil || s.Len() == 0 {
		return "", ErrEmptySeries
	}

	lines, err := priceLines(s, opts, r.Logger)
	if err != nil {
		return "", err
	}
	top, err := newPanel("Price", lines, false)
	if err != nil {
		return "", err
	}
	top.Title.Text = fmt.Sprintf("%s (%s)", s.Symbol, s.Interval)
	bottom, err := newPanel("Volume", []series{volumeLine(s)}, true)
	if err != nil {
		return "", err
	}

	path := r.OutputPath(s.Symbol)
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	c, err := draw.NewFormattedCanvas(r.Width, r.Height, format)
	if err != nil {
		return "", fmt.Errorf("chart format %q: %w", format, err)
	}

	plots := [][]*plot.Plot{{top}, {bottom}}
	tiles := draw.Tiles{
		Rows:      2,
		Cols:      1,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 4,
		PadY:      vg.Millimeter * 2,
	}
	canvases := plot.Align(plots, tiles, draw.New(c))
	top.Draw(canvases[0][0])
	bottom.Draw(canvases[1][0])

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create chart dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create chart file: %w", err)
	}
	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		return "", fmt.Errorf("write chart: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close chart file: %w", err)
	}

	r.Logger.Info("chart written", zap.String("path", path), zap.Int("lines", len(lines)))
	return path, nil
}
