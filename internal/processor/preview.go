package processor

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"

	"github.com/woozymasta/geoxyz/internal/geo"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
)

// Default preview colors.
var (
	DefaultStroke     = color.RGBA{R: 0x1f, G: 0x6f, B: 0xeb, A: 0xff}
	DefaultBackground = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// Shapes is what a preview draws. Points are only drawn when there are no
// lines, so a line document does not get every vertex dotted.
type Shapes struct {
	Lines  []geo.Line
	Points []geo.Position
	Unit   geo.Unit
}

// CollectShapes gathers lines and positions of obj.
func CollectShapes(obj geo.Object, unit geo.Unit) (*Shapes, error) {
	if !unit.Valid() {
		return nil, fmt.Errorf("%w: %s", geo.ErrInvalidUnit, unit)
	}

	lines, err := geo.CollectLines(obj)
	if err != nil {
		return nil, err
	}

	s := &Shapes{Lines: lines, Unit: unit}
	if _, topo := obj.(*geo.Topology); topo || len(lines) > 0 {
		return s, nil
	}

	if s.Points, err = geo.CollectCoordinates(obj); err != nil {
		return nil, err
	}

	return s, nil
}

// PreviewOptions controls RenderPreview.
type PreviewOptions struct {
	Stroke      color.Color
	Background  color.Color
	Width       int
	Height      int
	Supersample int // 0 means 2
}

// RenderPreview draws shapes onto an equirectangular raster: longitude
// -180..180 maps to x, latitude 90..-90 maps to y.
func RenderPreview(s *Shapes, opts PreviewOptions) (*image.RGBA, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid preview size %dx%d", opts.Width, opts.Height)
	}

	v := viewport{
		levelW: float64(opts.Width),
		levelH: float64(opts.Height),
		width:  opts.Width,
		height: opts.Height,
	}

	return render(s, v, opts)
}

// EncodeWebP writes img as lossy WebP. A quality of 0 means 85.
func EncodeWebP(w io.Writer, img image.Image, quality float32) error {
	if quality <= 0 {
		quality = 85
	}
	return webp.Encode(w, img, &webp.Options{Lossless: false, Quality: quality})
}

// viewport is a window of width x height pixels at offset (offX, offY)
// into a whole-world raster of levelW x levelH pixels.
type viewport struct {
	levelW, levelH float64
	offX, offY     float64
	width, height  int
}

func render(s *Shapes, v viewport, opts PreviewOptions) (*image.RGBA, error) {
	if !s.Unit.Valid() {
		return nil, fmt.Errorf("%w: %s", geo.ErrInvalidUnit, s.Unit)
	}

	ss := opts.Supersample
	if ss <= 0 {
		ss = 2
	}
	stroke := opts.Stroke
	if stroke == nil {
		stroke = DefaultStroke
	}
	bg := opts.Background
	if bg == nil {
		bg = DefaultBackground
	}

	c := canvas{
		img:   image.NewRGBA(image.Rect(0, 0, v.width*ss, v.height*ss)),
		view:  v,
		scale: float64(ss),
		unit:  s.Unit,
		color: color.RGBAModel.Convert(stroke).(color.RGBA),
	}
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	for _, line := range s.Lines {
		c.polyline(line)
	}
	if len(s.Lines) == 0 {
		for _, p := range s.Points {
			c.dot(p, ss)
		}
	}

	if ss == 1 {
		return c.img, nil
	}

	// CatmullRom gives smooth anti-aliased strokes when shrinking the
	// supersampled canvas.
	dst := image.NewRGBA(image.Rect(0, 0, v.width, v.height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), c.img, c.img.Bounds(), draw.Src, nil)

	return dst, nil
}

type canvas struct {
	img   *image.RGBA
	view  viewport
	scale float64
	unit  geo.Unit
	color color.RGBA
}

// project maps a position to canvas pixel coordinates.
func (c *canvas) project(p geo.Position) (x, y, lonDeg float64) {
	lon, lat := p.Lon(), p.Lat()
	if c.unit == geo.Radians {
		lon *= 180 / math.Pi
		lat *= 180 / math.Pi
	}

	x = ((lon+180)/360*c.view.levelW - c.view.offX) * c.scale
	y = ((90-lat)/180*c.view.levelH - c.view.offY) * c.scale
	return x, y, lon
}

func (c *canvas) polyline(line geo.Line) {
	if len(line) == 1 {
		c.dot(line[0], int(c.scale))
		return
	}

	for i := 1; i < len(line); i++ {
		x0, y0, lon0 := c.project(line[i-1])
		x1, y1, lon1 := c.project(line[i])

		// segments jumping across the antimeridian would streak the map
		if math.Abs(lon1-lon0) > 180 {
			continue
		}

		c.segment(x0, y0, x1, y1)
	}
}

func (c *canvas) dot(p geo.Position, size int) {
	x, y, _ := c.project(p)
	px, py := int(math.Floor(x)), int(math.Floor(y))
	for dy := 0; dy < size; dy++ {
		for dx := 0; dx < size; dx++ {
			c.set(px+dx, py+dy)
		}
	}
}

func (c *canvas) set(x, y int) {
	if image.Pt(x, y).In(c.img.Rect) {
		c.img.SetRGBA(x, y, c.color)
	}
}

// segment clips to the canvas and rasterizes with Bresenham.
func (c *canvas) segment(x0, y0, x1, y1 float64) {
	b := c.img.Rect
	x0, y0, x1, y1, ok := clip(x0, y0, x1, y1,
		float64(b.Min.X), float64(b.Min.Y), float64(b.Max.X)-1e-9, float64(b.Max.Y)-1e-9)
	if !ok {
		return
	}

	ix0, iy0 := int(math.Floor(x0)), int(math.Floor(y0))
	ix1, iy1 := int(math.Floor(x1)), int(math.Floor(y1))

	dx := abs(ix1 - ix0)
	dy := -abs(iy1 - iy0)
	sx, sy := 1, 1
	if ix0 > ix1 {
		sx = -1
	}
	if iy0 > iy1 {
		sy = -1
	}

	e := dx + dy
	for {
		c.set(ix0, iy0)
		if ix0 == ix1 && iy0 == iy1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			ix0 += sx
		}
		if e2 <= dx {
			e += dx
			iy0 += sy
		}
	}
}

// clip is the Liang-Barsky line clipping against [minX,maxX]x[minY,maxY].
func clip(x0, y0, x1, y1, minX, minY, maxX, maxY float64) (float64, float64, float64, float64, bool) {
	t0, t1 := 0.0, 1.0
	dx, dy := x1-x0, y1-y0

	edges := [4][2]float64{
		{-dx, x0 - minX},
		{dx, maxX - x0},
		{-dy, y0 - minY},
		{dy, maxY - y0},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return 0, 0, 0, 0, false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return 0, 0, 0, 0, false
			}
			if r < t1 {
				t1 = r
			}
		}
	}

	return x0 + t0*dx, y0 + t0*dy, x0 + t1*dx, y0 + t1*dy, true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
