package hittest

import (
	"fmt"
	"unicode/utf8"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// DefaultFontSize is the point size connection labels are drawn at.
const DefaultFontSize = 13

// TextMeasurer reports the rendered width of a label in world units.
type TextMeasurer interface {
	Measure(text string) float64
}

// FontMeasurer measures with a real font face so hit boxes match what the
// PNG renderer draws.
type FontMeasurer struct {
	face font.Face
}

func NewFontMeasurer(size float64) (*FontMeasurer, error) {
	if size <= 0 {
		size = DefaultFontSize
	}
	ttf, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return &FontMeasurer{face: NewFace(ttf, size)}, nil
}

// NewFace builds a 72 DPI face so one point equals one world unit.
func NewFace(ttf *truetype.Font, size float64) font.Face {
	return truetype.NewFace(ttf, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

func (m *FontMeasurer) Measure(text string) float64 {
	return fixedToFloat(font.MeasureString(m.face, text))
}

func (m *FontMeasurer) Face() font.Face {
	return m.face
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

// FixedWidthMeasurer gives every rune the same advance. Terminal rendering
// and tests use it.
type FixedWidthMeasurer struct {
	Advance float64
}

func (m FixedWidthMeasurer) Measure(text string) float64 {
	return float64(utf8.RuneCountInString(text)) * m.Advance
}
