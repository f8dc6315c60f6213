package render

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"archcanvas/internal/geom"
	"archcanvas/internal/hittest"
	"archcanvas/internal/scene"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
)

type PNGOptions struct {
	// Scale multiplies world units into pixels.
	Scale    float64
	Padding  float64
	FontSize float64
}

func DefaultPNGOptions() PNGOptions {
	return PNGOptions{Scale: 1, Padding: 40, FontSize: hittest.DefaultFontSize}
}

// Fill colors per category.
var categoryFills = map[string]string{
	"database":       "#dbeafe",
	"application":    "#dcfce7",
	"infrastructure": "#fef3c7",
	"service":        "#f3e8ff",
	"default":        "#f1f5f9",
}

// DrawImage draws the whole scene, cropped to its bounds plus padding.
func DrawImage(s *scene.Scene, picker *hittest.Picker, opts PNGOptions) (image.Image, error) {
	bounds, ok := s.Bounds()
	if !ok {
		return nil, fmt.Errorf("nothing to export")
	}
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	if opts.FontSize <= 0 {
		opts.FontSize = hittest.DefaultFontSize
	}
	for _, c := range s.Connections {
		if r, ok := picker.LabelRect(s, c); ok {
			bounds = bounds.Union(r)
		}
	}
	bounds = bounds.Grow(opts.Padding)

	imageWidth := int(math.Ceil(bounds.W * opts.Scale))
	imageHeight := int(math.Ceil(bounds.H * opts.Scale))

	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(color.White)
	dc.Clear()
	dc.Scale(opts.Scale, opts.Scale)
	dc.Translate(-bounds.X, -bounds.Y)

	ttfFont, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	dc.SetFontFace(hittest.NewFace(ttfFont, opts.FontSize))

	for _, c := range s.Connections {
		drawConnectionPNG(dc, s, c)
	}
	for _, c := range s.Components {
		drawComponentPNG(dc, c)
	}
	for _, c := range s.Connections {
		drawLabelPNG(dc, s, picker, c)
	}
	return dc.Image(), nil
}

// ExportPNG writes the scene to filename.
func ExportPNG(filename string, s *scene.Scene, picker *hittest.Picker, opts PNGOptions) error {
	img, err := DrawImage(s, picker, opts)
	if err != nil {
		return err
	}
	return gg.SavePNG(filename, img)
}

func drawConnectionPNG(dc *gg.Context, s *scene.Scene, conn scene.Connection) {
	from, to := conn.From.Point, conn.To.Point
	c1, c2 := geom.BezierControlPoints(from, to)

	dc.SetLineWidth(2)
	if conn.From.ComponentID == "" || conn.To.ComponentID == "" {
		dc.SetDash(6, 4)
		dc.SetHexColor("#94a3b8")
	} else {
		dc.SetHexColor("#475569")
	}
	dc.MoveTo(from.X, from.Y)
	dc.CubicTo(c1.X, c1.Y, c2.X, c2.Y, to.X, to.Y)
	dc.Stroke()
	dc.SetDash()

	// The arrow sits where the curve leaves the target box.
	tip, t := to, 1.0
	if target, ok := s.Component(conn.To.ComponentID); ok && conn.To.ComponentID != "" {
		box := target.Bounds()
		for t > 0 && box.Contains(tip) {
			t -= 0.01
			tip = geom.CubicBezier(from, c1, c2, to, t)
		}
	}
	back := geom.CubicBezier(from, c1, c2, to, math.Max(t-0.05, 0))
	drawArrowPNG(dc, back, tip)
}

func drawArrowPNG(dc *gg.Context, from, to geom.Point) {
	dx := to.X - from.X
	dy := to.Y - from.Y
	length := math.Hypot(dx, dy)
	if length < 0.1 {
		return
	}
	dx /= length
	dy /= length

	arrowSize := 10.0
	arrowAngle := 0.5

	dc.MoveTo(to.X, to.Y)
	dc.LineTo(to.X-arrowSize*dx+arrowSize*dy*arrowAngle, to.Y-arrowSize*dy-arrowSize*dx*arrowAngle)
	dc.LineTo(to.X-arrowSize*dx-arrowSize*dy*arrowAngle, to.Y-arrowSize*dy+arrowSize*dx*arrowAngle)
	dc.ClosePath()
	dc.Fill()
}

func drawComponentPNG(dc *gg.Context, c scene.Component) {
	fill, ok := categoryFills[c.Category]
	if !ok {
		fill = categoryFills[scene.DefaultCategory]
	}
	if strings.HasPrefix(c.Color, "#") {
		fill = c.Color
	}

	dc.DrawRoundedRectangle(c.X, c.Y, c.Width, c.Height, 8)
	dc.SetHexColor(fill)
	dc.FillPreserve()
	dc.SetLineWidth(1.5)
	dc.SetHexColor("#334155")
	dc.Stroke()

	center := c.Center()
	dc.SetHexColor("#0f172a")
	dc.DrawStringWrapped(c.Label, center.X, center.Y-8, 0.5, 0.5, c.Width-16, 1.2, gg.AlignCenter)
	if c.Kind != "" {
		dc.SetHexColor("#64748b")
		dc.DrawStringAnchored(c.Kind, center.X, c.Y+c.Height-14, 0.5, 0.5)
	}
}

func drawLabelPNG(dc *gg.Context, s *scene.Scene, picker *hittest.Picker, conn scene.Connection) {
	r, ok := picker.LabelRect(s, conn)
	if !ok {
		return
	}
	dc.DrawRoundedRectangle(r.X, r.Y, r.W, r.H, 6)
	dc.SetRGBA(248/255.0, 250/255.0, 252/255.0, 0.95)
	dc.FillPreserve()
	dc.SetLineWidth(1)
	dc.SetRGBA(71/255.0, 85/255.0, 105/255.0, 0.3)
	dc.Stroke()

	center := r.Center()
	dc.SetHexColor("#1e293b")
	dc.DrawStringAnchored(conn.Label, center.X, center.Y, 0.5, 0.5)
}
