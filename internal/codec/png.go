package codec

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"threatforge/internal/domain"
	"threatforge/internal/geometry"
)

// PNG rendering defaults
const (
	pngPadding   = 40.0
	pngFontSize  = 12.0
	pngArrowSize = 8.0
	pngMinWidth  = 200
	pngMinHeight = 100

	// pngMaxSide caps either image side; larger diagrams are scaled down to fit
	pngMaxSide = 4096
	// pngMinScale is the smallest fit scale still worth rendering
	pngMinScale = 0.1
)

// ErrImageTooLarge is returned when a diagram cannot be fit into a PNG of
// bounded size, usually because a node sits far from the others
var ErrImageTooLarge = errors.New("diagram too large to render")

var (
	boundaryStroke = color.RGBA{R: 0xc6, G: 0x28, B: 0x28, A: 0xff}
	processFill    = color.RGBA{R: 0xe3, G: 0xf2, B: 0xfd, A: 0xff}
	storeFill      = color.RGBA{R: 0xe8, G: 0xf5, B: 0xe9, A: 0xff}
	externalFill   = color.RGBA{R: 0xff, G: 0xf3, B: 0xe0, A: 0xff}
	badgeFill      = color.RGBA{R: 0xd3, G: 0x2f, B: 0x2f, A: 0xff}
)

// PNGExporter rasterizes the visual graph
type PNGExporter struct {
	Scale float64
}

// NewPNGExporter creates a PNG exporter at 1:1 canvas scale
func NewPNGExporter() *PNGExporter {
	return &PNGExporter{Scale: 1}
}

// Format returns the codec format identifier
func (e *PNGExporter) Format() string {
	return "png"
}

// ContentType returns the MIME type of exported documents
func (e *PNGExporter) ContentType() string {
	return "image/png"
}

// Export draws boundaries, then edges, then element nodes with their threat
// badges, and encodes the image as PNG
func (e *PNGExporter) Export(m *domain.ThreatModel, g *domain.Graph, w io.Writer) error {
	if g == nil {
		g = domain.NewGraph()
	}
	scale := e.Scale
	if scale <= 0 {
		scale = 1
	}

	bounds, ok := geometry.Bounds(g)
	if !ok {
		bounds = geometry.Rect{Width: pngMinWidth, Height: pngMinHeight}
	}
	scale, err := fitScale(bounds, scale)
	if err != nil {
		return err
	}
	width := min(int(math.Ceil((bounds.Width+2*pngPadding)*scale)), pngMaxSide)
	height := min(int(math.Ceil((bounds.Height+2*pngPadding)*scale)), pngMaxSide)

	dc := gg.NewContext(width, height)
	dc.SetColor(color.White)
	dc.Clear()
	dc.Scale(scale, scale)
	dc.Translate(pngPadding-bounds.X, pngPadding-bounds.Y)

	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return fmt.Errorf("failed to parse font: %w", err)
	}
	face := truetype.NewFace(ttfFont, &truetype.Options{
		Size:    pngFontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	dc.SetFontFace(face)

	for _, n := range g.Nodes {
		if n.IsBoundary() {
			drawBoundary(dc, geometry.AbsoluteRect(g, n), nodeLabel(n))
		}
	}
	for _, edge := range g.Edges {
		drawEdge(dc, g, edge)
	}
	counts := domain.ThreatCounts(m)
	for _, n := range g.Nodes {
		if !n.IsBoundary() {
			drawElement(dc, geometry.AbsoluteRect(g, n), n, counts[n.ID])
		}
	}

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

// fitScale shrinks scale so the padded bounds fit within pngMaxSide
func fitScale(bounds geometry.Rect, scale float64) (float64, error) {
	w := (bounds.Width + 2*pngPadding) * scale
	h := (bounds.Height + 2*pngPadding) * scale
	for _, v := range []float64{bounds.X, bounds.Y, w, h} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: non-finite bounds", ErrImageTooLarge)
		}
	}

	longest := math.Max(w, h)
	if longest <= pngMaxSide {
		return scale, nil
	}
	fit := pngMaxSide / longest
	if fit*scale < pngMinScale {
		return 0, fmt.Errorf("%w: %.0fx%.0f px", ErrImageTooLarge, w, h)
	}
	return scale * fit, nil
}

func drawBoundary(dc *gg.Context, r geometry.Rect, label string) {
	dc.SetLineWidth(2)
	dc.SetDash(8, 4)
	dc.SetColor(boundaryStroke)
	dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
	dc.Stroke()
	dc.SetDash()
	dc.DrawString(label, r.X+8, r.Y+pngFontSize+6)
}

func drawElement(dc *gg.Context, r geometry.Rect, n domain.GraphNode, threats int) {
	dc.SetLineWidth(1.5)
	switch n.Kind {
	case domain.NodeProcess:
		dc.DrawRoundedRectangle(r.X, r.Y, r.Width, r.Height, math.Min(r.Width, r.Height)/2)
		dc.SetColor(processFill)
	case domain.NodeDataStore:
		dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
		dc.SetColor(storeFill)
	default:
		dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
		dc.SetColor(externalFill)
	}
	dc.FillPreserve()
	dc.SetColor(color.Black)
	dc.Stroke()

	if n.Kind == domain.NodeDataStore {
		// open-ended store: double rule on top and bottom
		dc.DrawLine(r.X, r.Y+4, r.X+r.Width, r.Y+4)
		dc.DrawLine(r.X, r.Y+r.Height-4, r.X+r.Width, r.Y+r.Height-4)
		dc.Stroke()
	}

	c := r.Center()
	dc.DrawStringAnchored(nodeLabel(n), c.X, c.Y, 0.5, 0.5)

	if threats > 0 {
		dc.SetColor(badgeFill)
		dc.DrawCircle(r.X+r.Width, r.Y, 9)
		dc.Fill()
		dc.SetColor(color.White)
		dc.DrawStringAnchored(fmt.Sprint(threats), r.X+r.Width, r.Y, 0.5, 0.5)
	}
}

func nodeLabel(n domain.GraphNode) string {
	if n.Data == nil {
		return n.ID
	}
	return n.Data.Label()
}

func drawEdge(dc *gg.Context, g *domain.Graph, edge domain.GraphEdge) {
	source := g.Node(edge.Source)
	target := g.Node(edge.Target)
	if source == nil || target == nil {
		return
	}
	sr := geometry.AbsoluteRect(g, *source)
	tr := geometry.AbsoluteRect(g, *target)

	sh, th := edge.SourceHandle, edge.TargetHandle
	if sh == "" || th == "" {
		sh, th = geometry.HandlePair(sr, tr)
	}
	from := geometry.Anchor(sr, sh.Side())
	to := geometry.Anchor(tr, th.Side())

	// bend parallel flows apart along the normal of the straight segment
	dx, dy := to.X-from.X, to.Y-from.Y
	length := math.Hypot(dx, dy)
	if length < 0.1 {
		return
	}
	offset := geometry.Offsets(g.Edges, edge.Source, edge.Target)[edge.ID]
	if edge.Source > edge.Target {
		offset = -offset
	}
	nx, ny := -dy/length, dx/length
	cx := (from.X+to.X)/2 + nx*offset*2
	cy := (from.Y+to.Y)/2 + ny*offset*2

	dc.SetLineWidth(1.5)
	dc.SetColor(color.Black)
	dc.MoveTo(from.X, from.Y)
	dc.QuadraticTo(cx, cy, to.X, to.Y)
	dc.Stroke()
	drawArrow(dc, cx, cy, to.X, to.Y)

	if label := flowLabel(domain.DataFlow{Name: edge.Label.Name, Protocol: edge.Label.Protocol}); label != "" {
		lx := 0.25*from.X + 0.5*cx + 0.25*to.X
		ly := 0.25*from.Y + 0.5*cy + 0.25*to.Y
		dc.DrawStringAnchored(label, lx, ly-6, 0.5, 0.5)
	}
}

func drawArrow(dc *gg.Context, fromX, fromY, toX, toY float64) {
	dx, dy := toX-fromX, toY-fromY
	length := math.Hypot(dx, dy)
	if length < 0.1 {
		return
	}
	dx /= length
	dy /= length

	const spread = 0.5
	dc.MoveTo(toX, toY)
	dc.LineTo(toX-pngArrowSize*dx+pngArrowSize*dy*spread, toY-pngArrowSize*dy-pngArrowSize*dx*spread)
	dc.LineTo(toX-pngArrowSize*dx-pngArrowSize*dy*spread, toY-pngArrowSize*dy+pngArrowSize*dx*spread)
	dc.ClosePath()
	dc.Fill()
}
