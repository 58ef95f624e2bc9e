package chart

import (
	"fmt"
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"fintrack/internal/core"
)

// Pie chart geometry.
const (
	pieCX      = 200
	pieCY      = 250
	pieRadius  = 160
	legendX    = 400
	legendTop  = 90
	legendStep = 20
	swatchSize = 12
)

// Palette holds the wedge colours, assigned by position.
var Palette = []color.RGBA{
	{31, 119, 180, 255},
	{255, 127, 14, 255},
	{44, 160, 44, 255},
	{214, 39, 40, 255},
	{148, 103, 189, 255},
	{140, 86, 75, 255},
	{227, 119, 194, 255},
	{127, 127, 127, 255},
	{188, 189, 34, 255},
	{23, 190, 207, 255},
}

// Wedge is the angular extent of one category, in degrees clockwise from
// the positive x axis.
type Wedge struct {
	Name    string
	Start   float64
	Sweep   float64
	Percent float64
}

// Wedges lays out categories contiguously from angle 0. Each sweep is
// value/total*360 with the total guarded against zero; negative values
// count as zero.
func Wedges(totals []core.CategoryTotal) []Wedge {
	values := make([]float64, len(totals))
	total := 0.0
	for i, t := range totals {
		values[i] = math.Max(t.Amount.InexactFloat64(), 0)
		total += values[i]
	}
	total = math.Max(total, epsilon)

	out := make([]Wedge, 0, len(totals))
	angle := 0.0
	for i, t := range totals {
		frac := values[i] / total
		w := Wedge{Name: t.Name, Start: angle, Sweep: frac * 360, Percent: frac * 100}
		angle += w.Sweep
		out = append(out, w)
	}
	return out
}

// LegendLabel renders "name: percentage" with one fraction digit.
func LegendLabel(w Wedge) string {
	return fmt.Sprintf("%s: %.1f%%", w.Name, w.Percent)
}

// RenderPieChart draws one wedge per category with a legend. Empty or
// all-zero input renders an empty disc.
func RenderPieChart(totals []core.CategoryTotal, title string) ([]byte, error) {
	dc := newCanvas()
	text, titleFace := faces()
	defer text.Close()
	defer titleFace.Close()

	wedges := Wedges(totals)
	drawDisc(dc, wedges)

	maxRows := (Height - legendTop) / legendStep
	for i, w := range wedges {
		y := float64(legendTop + i*legendStep)
		if i == maxRows-1 && len(wedges) > maxRows {
			drawText(dc, text, legendX, y+swatchSize-1, fmt.Sprintf("+%d more", len(wedges)-i), textGray)
			break
		}
		fillRect(dc, legendX, y, swatchSize, swatchSize, Palette[i%len(Palette)])
		drawText(dc, text, legendX+swatchSize+6, y+swatchSize-1, LegendLabel(w), black)
	}
	if len(wedges) == 0 {
		drawText(dc, text, legendX, legendTop+swatchSize-1, "No data", textGray)
	}

	if title != "" {
		drawTextCentered(dc, titleFace, Width/2, 40, title, black)
	}

	return encode(dc)
}

// drawDisc fills one sector per non-empty wedge, or a grey disc when no
// wedge has a sweep. Angles grow clockwise on screen since y points down.
func drawDisc(dc *gg.Context, wedges []Wedge) {
	filled := false
	for i, w := range wedges {
		if w.Sweep <= 0 {
			continue
		}
		filled = true
		dc.MoveTo(pieCX, pieCY)
		dc.DrawArc(pieCX, pieCY, pieRadius, gg.Radians(w.Start), gg.Radians(w.Start+w.Sweep))
		dc.ClosePath()
		dc.SetColor(Palette[i%len(Palette)])
		dc.Fill()
	}
	if !filled {
		dc.DrawCircle(pieCX, pieCY, pieRadius)
		dc.SetColor(gridGray)
		dc.Fill()
	}
}
