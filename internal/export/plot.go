package export

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/banshee-data/irdump/internal/irdecode"
	"github.com/banshee-data/irdump/internal/irdump"
)

// PNG canvas size in pixels.
const (
	ImageWidth  = 1512 * 2
	ImageHeight = 800 * 2
)

var (
	backgroundColor = color.NRGBA{R: 0x26, G: 0x32, B: 0x38, A: 0xff} // blue grey 900
	pulseColor      = color.NRGBA{R: 0x1b, G: 0x5e, B: 0x20, A: 0xcc} // green 900
	pauseColor      = color.NRGBA{R: 0xb7, G: 0x1c, B: 0x1c, A: 0xcc} // red 900
	foregroundColor = color.White
)

// timelinePlotter draws a timeline as filled bars from y=0.
type timelinePlotter struct {
	spans []Span
}

// Plot implements plot.Plotter.
func (t timelinePlotter) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	y0 := trY(0)
	for _, s := range t.spans {
		if s.End == s.Start {
			continue
		}
		clr := pauseColor
		if s.Component == irdecode.Pulse {
			clr = pulseColor
		}
		x0, x1 := trX(float64(s.Start)), trX(float64(s.End))
		y1 := trY(s.Height())
		bar := []vg.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
		c.FillPolygon(clr, c.ClipPolygonXY(bar))
	}
}

// DataRange implements plot.DataRanger.
func (t timelinePlotter) DataRange() (xmin, xmax, ymin, ymax float64) {
	return 0, float64(XLimit(t.spans)), 0, TimelineYMax
}

// NewSignalPlot builds the timeline plot of one raw signal.
func NewSignalPlot(sig irdump.RawSignal) *plot.Plot {
	spans := Timeline(sig.Data)

	p := plot.New()
	p.Title.Text = sig.Name
	p.Title.TextStyle.Color = foregroundColor
	p.BackgroundColor = backgroundColor
	p.X.Label.Text = "Time (µs)"
	p.Y.Label.Text = ""
	for _, ax := range []*plot.Axis{&p.X, &p.Y} {
		ax.Color = foregroundColor
		ax.Label.TextStyle.Color = foregroundColor
		ax.Tick.Label.Color = foregroundColor
		ax.Tick.Color = foregroundColor
	}

	p.Add(timelinePlotter{spans: spans})
	p.X.Min, p.X.Max = 0, float64(XLimit(spans))
	p.Y.Min, p.Y.Max = 0, TimelineYMax
	return p
}

// PlotSignal renders the timeline of sig as a PNG of ImageWidth by
// ImageHeight pixels.
func PlotSignal(w io.Writer, sig irdump.RawSignal) error {
	img := image.NewRGBA(image.Rect(0, 0, ImageWidth, ImageHeight))
	c := vgimg.NewWith(vgimg.UseImage(img))
	NewSignalPlot(sig).Draw(draw.New(c))

	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(w); err != nil {
		return fmt.Errorf("encode png for %q: %w", sig.Name, err)
	}
	return nil
}
