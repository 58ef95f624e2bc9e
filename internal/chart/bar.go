package chart

import (
	"image/color"
	"math"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// Bar chart geometry.
const (
	GridStep    = 500.0
	maxGridRows = 10

	plotLeft   = 50
	plotRight  = 550
	baseline   = 400
	plotHeight = 300
	barWidth   = 100
	incomeX    = 100
	expenseX   = 300
)

// ScaleMax is the top of the bar chart's value axis: the larger total
// rounded up to a multiple of GridStep, or one GridStep when both totals
// are zero.
func ScaleMax(income, expense float64) float64 {
	m := math.Max(math.Max(income, expense), 0)
	if m <= epsilon {
		return GridStep
	}
	return math.Ceil(m/GridStep) * GridStep
}

// gridInterval widens the step so that at most maxGridRows lines are drawn.
func gridInterval(scaleMax float64) float64 {
	rows := scaleMax / GridStep
	if rows <= maxGridRows {
		return GridStep
	}
	return GridStep * math.Ceil(rows/maxGridRows)
}

// BarHeight is the pixel height of a bar for value on an axis topping out
// at scaleMax.
func BarHeight(value, scaleMax float64) int {
	if value <= 0 {
		return 0
	}
	h := value / math.Max(scaleMax, epsilon) * plotHeight
	return int(math.Round(math.Min(h, plotHeight)))
}

// RenderBarChart draws income and expense totals as two vertical bars with
// value labels, horizontal gridlines and an optional caption.
func RenderBarChart(income, expense decimal.Decimal, caption string) ([]byte, error) {
	dc := newCanvas()
	text, title := faces()
	defer text.Close()
	defer title.Close()

	inc := income.InexactFloat64()
	exp := expense.InexactFloat64()
	scaleMax := ScaleMax(inc, exp)
	step := gridInterval(scaleMax)

	for v := 0.0; v <= scaleMax+epsilon; v += step {
		y := float64(baseline) - math.Round(v/scaleMax*plotHeight) + 0.5
		line(dc, plotLeft, y, plotRight, y, gridGray)
		drawText(dc, text, 10, y+4, formatAxis(v), textGray)
	}
	line(dc, plotLeft, baseline+0.5, plotRight, baseline+0.5, black)
	line(dc, plotLeft+0.5, baseline-plotHeight, plotLeft+0.5, baseline, black)

	bars := []struct {
		x     float64
		value decimal.Decimal
		label string
		col   color.RGBA
	}{
		{incomeX, income, "Income", incomeCol},
		{expenseX, expense, "Expense", expenseCol},
	}
	for _, b := range bars {
		h := float64(BarHeight(b.value.InexactFloat64(), scaleMax))
		top := baseline - h
		fillRect(dc, b.x, top, barWidth, h, b.col)
		drawTextCentered(dc, text, b.x+barWidth/2, top-6, core.FormatAmount(b.value), black)
		drawTextCentered(dc, text, b.x+barWidth/2, baseline+20, b.label, black)
	}

	if caption != "" {
		drawTextCentered(dc, title, Width/2, 40, caption, black)
	}

	return encode(dc)
}

func formatAxis(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(0)
}
