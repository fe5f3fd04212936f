// Package preview is the optional render collaborator of spec.md §6: per
// particle it derives a render position, a color, and a radius, then
// rasterizes a frame. Offscreen rasterization uses fogleman/gg (a plain
// image.RGBA canvas, no GPU context needed for a batch preview run); the
// pressure-to-color gradient is adapted from the teacher's
// viz.initColorCache/getColor blue-cyan-white ramp
// (_examples/zzstoatzz-fluids/viz/render.go), generalized from a single
// scalar to the two show_mode variants of spec.md §6 (composition,
// pressure). A HUD label is drawn with golang/freetype + x/image/font,
// the same combination the teacher's go.mod already pulls in for text.
package preview

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"

	"mixfluid/vec3"
)

// ShowMode selects what per-particle color encodes, per spec.md §6.
type ShowMode int

const (
	Composition ShowMode = iota
	Pressure
)

const (
	fluidRadius = 0.4
	wallRadius  = 0.15
)

// Vertex is one particle's render-ready state: position in simulation
// units, color, and radius, matching spec.md §6's preview interface.
type Vertex struct {
	Pos    vec3.V
	Color  color.RGBA
	Radius float64
}

// phaseColors gives each phase a base hue; composition mode blends them
// by volume fraction. Phase 0 is blue-leaning, phase 1 amber, further
// phases cycle through a short fixed palette since P is rarely above 3
// in practice.
var phaseColors = []color.RGBA{
	{R: 40, G: 90, B: 220, A: 255},
	{R: 230, G: 160, B: 40, A: 255},
	{R: 60, G: 200, B: 90, A: 255},
	{R: 200, G: 60, B: 160, A: 255},
}

// pressureColor reproduces the teacher's blue-to-cyan-to-white ramp for a
// pressure value normalized to [0,1].
func pressureColor(t float64) color.RGBA {
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	var r, g, b float64
	if t < 0.5 {
		u := t * 2
		r = 10 + 70*u
		g = 120 * u
		b = 180 + 50*u
	} else {
		u := (t - 0.5) * 2
		r = 80 + 175*u
		g = 120 + 135*u
		b = 230 + 25*u
	}
	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}
}

// BuildVertices derives the render-ready Vertex list for one frame.
// alpha is row-major [nFluid, phases]; pressure is length nFluid;
// pressureRange is (min, max) used to normalize the pressure show_mode.
func BuildVertices(pos []vec3.V, nFluid int, alpha []float64, phases int, pressure []float64, pressureRange [2]float64, mode ShowMode) []Vertex {
	verts := make([]Vertex, len(pos))
	for i, p := range pos {
		if i >= nFluid {
			verts[i] = Vertex{Pos: p, Color: color.RGBA{R: 140, G: 140, B: 140, A: 255}, Radius: wallRadius}
			continue
		}
		var c color.RGBA
		switch mode {
		case Pressure:
			span := pressureRange[1] - pressureRange[0]
			t := 0.0
			if span > 1e-9 {
				t = (pressure[i] - pressureRange[0]) / span
			}
			c = pressureColor(t)
		default:
			c = blendComposition(alpha[i*phases : i*phases+phases])
		}
		verts[i] = Vertex{Pos: p, Color: c, Radius: fluidRadius}
	}
	return verts
}

func blendComposition(row []float64) color.RGBA {
	var r, g, b float64
	for k, a := range row {
		pc := phaseColors[k%len(phaseColors)]
		r += a * float64(pc.R)
		g += a * float64(pc.G)
		b += a * float64(pc.B)
	}
	return color.RGBA{R: clamp8(r), G: clamp8(g), B: clamp8(b), A: 255}
}

func clamp8(x float64) uint8 {
	if x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return uint8(x)
}

// Canvas rasterizes a top-down (x,y) projection of a frame's vertices
// onto an offscreen image, with pixelsPerUnit controlling zoom and a
// status label drawn in the corner via freetype.
type Canvas struct {
	Width, Height int
	PixelsPerUnit float64
}

// Render draws verts onto a fresh RGBA image and returns it.
func (c Canvas) Render(verts []Vertex, label string) (*image.RGBA, error) {
	dc := gg.NewContext(c.Width, c.Height)
	dc.SetRGB(0.05, 0.05, 0.08)
	dc.Clear()

	for _, v := range verts {
		px := v.Pos.X * c.PixelsPerUnit
		py := float64(c.Height) - v.Pos.Y*c.PixelsPerUnit
		r := v.Radius * c.PixelsPerUnit
		dc.SetRGBA255(int(v.Color.R), int(v.Color.G), int(v.Color.B), int(v.Color.A))
		dc.DrawCircle(px, py, r)
		dc.Fill()
	}

	if label != "" {
		if err := drawLabel(dc.Image().(*image.RGBA), label); err != nil {
			return nil, fmt.Errorf("drawing hud label: %w", err)
		}
	}
	return dc.Image().(*image.RGBA), nil
}

// drawLabel renders a small HUD string in the top-left corner using
// golang/freetype over the embedded Go regular typeface.
func drawLabel(img *image.RGBA, text string) error {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return err
	}
	c := freetype.NewContext()
	c.SetDPI(72)
	c.SetFont(f)
	c.SetFontSize(14)
	c.SetClip(img.Bounds())
	c.SetDst(img)
	c.SetSrc(image.NewUniform(color.RGBA{R: 230, G: 230, B: 230, A: 255}))

	pt := freetype.Pt(10, 10+int(c.PointToFixed(14)>>6))
	_, err = c.DrawString(text, pt)
	return err
}
