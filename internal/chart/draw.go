// Package chart renders report totals as PNG images. Rendering is a pure
// function of its inputs.
package chart

import (
	"bytes"
	"fmt"
	"image/color"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Width and Height are the fixed canvas dimensions of every chart.
const (
	Width  = 600
	Height = 460
)

// epsilon guards divisions when all inputs are zero.
const epsilon = 1e-9

var (
	white      = color.RGBA{255, 255, 255, 255}
	black      = color.RGBA{0, 0, 0, 255}
	gridGray   = color.RGBA{220, 220, 220, 255}
	textGray   = color.RGBA{90, 90, 90, 255}
	incomeCol  = color.RGBA{46, 160, 67, 255}
	expenseCol = color.RGBA{207, 34, 46, 255}
)

var (
	fontOnce sync.Once
	goFont   *opentype.Font
)

// faces returns fresh text and title faces for one render. opentype faces
// are not safe for concurrent use, so they are never shared. The fixed
// bitmap face is the fallback.
func faces() (text, title font.Face) {
	fontOnce.Do(func() {
		if f, err := opentype.Parse(goregular.TTF); err == nil {
			goFont = f
		}
	})
	text, title = basicfont.Face7x13, basicfont.Face7x13
	if goFont == nil {
		return text, title
	}
	if face, err := opentype.NewFace(goFont, &opentype.FaceOptions{Size: 12, DPI: 72, Hinting: font.HintingFull}); err == nil {
		text = face
	}
	if face, err := opentype.NewFace(goFont, &opentype.FaceOptions{Size: 16, DPI: 72, Hinting: font.HintingFull}); err == nil {
		title = face
	}
	return text, title
}

// newCanvas returns a white context of the fixed chart size.
func newCanvas() *gg.Context {
	dc := gg.NewContext(Width, Height)
	dc.SetColor(white)
	dc.Clear()
	return dc
}

func fillRect(dc *gg.Context, x, y, w, h float64, c color.Color) {
	dc.SetColor(c)
	dc.DrawRectangle(x, y, w, h)
	dc.Fill()
}

func line(dc *gg.Context, x0, y0, x1, y1 float64, c color.Color) {
	dc.SetColor(c)
	dc.SetLineWidth(1)
	dc.DrawLine(x0, y0, x1, y1)
	dc.Stroke()
}

// drawText draws s with its baseline at y, starting at x.
func drawText(dc *gg.Context, face font.Face, x, y float64, s string, c color.Color) {
	dc.SetFontFace(face)
	dc.SetColor(c)
	dc.DrawString(s, x, y)
}

// drawTextCentered draws s horizontally centred on cx.
func drawTextCentered(dc *gg.Context, face font.Face, cx, y float64, s string, c color.Color) {
	dc.SetFontFace(face)
	dc.SetColor(c)
	dc.DrawStringAnchored(s, cx, y, 0.5, 0)
}

func encode(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
