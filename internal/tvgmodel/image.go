// Package tvgmodel is the in-memory intermediate representation a TinyVG
// parse produces: a header, a color table, a sequence of drawing commands,
// and whatever bytes followed the end-of-stream sentinel. It has no parsing
// logic of its own; internal/tvgparse fills it in.
package tvgmodel

// ColorEncoding selects how the color table's entries are packed on the
// wire.
type ColorEncoding int

const (
	RGBA8888 ColorEncoding = iota
	RGB565
	RGBAF32
)

func (e ColorEncoding) String() string {
	switch e {
	case RGBA8888:
		return "RGBA8888"
	case RGB565:
		return "RGB565"
	case RGBAF32:
		return "RGBAF32"
	default:
		return "unknown"
	}
}

// CoordinateRange selects the bit width used for every coordinate-sized
// integer in the file (width, height, and every Unit).
type CoordinateRange int

const (
	// Default is 16-bit.
	Default CoordinateRange = iota
	// Reduced is 8-bit.
	Reduced
	// Enhanced is 32-bit.
	Enhanced
)

func (r CoordinateRange) String() string {
	switch r {
	case Default:
		return "Default(16-bit)"
	case Reduced:
		return "Reduced(8-bit)"
	case Enhanced:
		return "Enhanced(32-bit)"
	default:
		return "unknown"
	}
}

// Header is the fixed-layout preamble of a TinyVG file.
type Header struct {
	Version         uint8
	Scale           uint8 // 0..=15; unit divisor is 2^Scale
	ColorEncoding   ColorEncoding
	CoordinateRange CoordinateRange
	Width           uint32
	Height          uint32
	ColorCount      uint32
}

// Color is a normalized RGBA color, every channel in [0,1] for the two
// indexed encodings; RGBAF32 is passed through unclamped (spec section 9).
type Color struct {
	R, G, B, A float64
}

// Point is a pair of fixed-point "unit" coordinates.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle given as origin + size.
type Rect struct {
	X, Y, Width, Height float64
}

// Line is a pair of endpoints.
type Line struct {
	P0, P1 Point
}

// StyleKind tags which of the three Style shapes is populated.
type StyleKind int

const (
	FlatColor StyleKind = iota
	LinearGradient
	RadialGradient
)

// Style is a tagged union over the three paint styles TinyVG supports. Only
// the fields relevant to Kind are meaningful: ColorIndex for FlatColor,
// Point0/Point1 and ColorIndex0/ColorIndex1 for the two gradients.
type Style struct {
	Kind                     StyleKind
	ColorIndex               int // valid for FlatColor
	Point0, Point1           Point
	ColorIndex0, ColorIndex1 int // valid for Linear/RadialGradient
}

// OutlineStyle decorates a fill command with a stroke.
type OutlineStyle struct {
	LineWidth float64
	LineStyle Style
}

// CommandKind tags which of the six IR command shapes is populated. The ten
// wire opcodes collapse into six IR shapes: the three outline/no-outline
// opcode pairs merge via Outline being nil or non-nil, and
// DrawLineLoop/DrawLineStrip merge via ClosePath.
type CommandKind int

const (
	CmdFillPolygon CommandKind = iota
	CmdFillRectangles
	CmdFillPath
	CmdDrawLines
	CmdDrawLineLoop
	CmdDrawLinePath
)

func (k CommandKind) String() string {
	switch k {
	case CmdFillPolygon:
		return "FillPolygon"
	case CmdFillRectangles:
		return "FillRectangles"
	case CmdFillPath:
		return "FillPath"
	case CmdDrawLines:
		return "DrawLines"
	case CmdDrawLineLoop:
		return "DrawLineLoop"
	case CmdDrawLinePath:
		return "DrawLinePath"
	default:
		return "unknown"
	}
}

// Command is a single drawing instruction. Only the fields matching Kind
// are populated; this is a tagged union in struct-of-all-fields form, the
// common Go idiom for small closed sets of wire shapes.
type Command struct {
	Kind CommandKind

	FillStyle Style         // FillPolygon, FillRectangles, FillPath
	Outline   *OutlineStyle // non-nil for the Outline* wire opcodes

	Polygon    []Point // FillPolygon
	Rectangles []Rect  // FillRectangles
	Path       []Segment
	Lines      []Line // DrawLines

	LineStyle Style   // DrawLines, DrawLineLoop, DrawLinePath
	LineWidth float64 // DrawLines, DrawLineLoop, DrawLinePath
	Points    []Point // DrawLineLoop
	ClosePath bool    // DrawLineLoop: true if the wire opcode was LineLoop
}

// Segment is a sub-path: a starting point and a declared-length run of
// segment commands.
type Segment struct {
	Start    Point
	Commands []SegmentCommand
}

// SegmentCommand is one instruction within a path Segment, with an optional
// per-command line-width override.
type SegmentCommand struct {
	Kind      SegmentCommandKind
	LineWidth *float64

	End                        Point   // Line
	X                          float64 // HorizontalLine
	Y                          float64 // VerticalLine
	Control0, Control1         Point   // CubicBezier
	Control                    Point   // QuadraticBezier
	Point1                     Point   // CubicBezier, QuadraticBezier: the segment's end point
	Target                     Point   // ArcCircle, ArcEllipse
	Large                      bool    // ArcCircle, ArcEllipse
	Sweep                      Sweep   // ArcCircle, ArcEllipse
	Radius                     float64 // ArcCircle
	RadiusX, RadiusY, Rotation float64 // ArcEllipse
}

// SegmentCommandKind tags which fields of a SegmentCommand are meaningful.
type SegmentCommandKind int

const (
	SegLine SegmentCommandKind = iota
	SegHorizontalLine
	SegVerticalLine
	SegCubicBezier
	SegArcCircle
	SegArcEllipse
	SegClosePath
	SegQuadraticBezier
)

func (k SegmentCommandKind) String() string {
	switch k {
	case SegLine:
		return "Line"
	case SegHorizontalLine:
		return "HorizontalLine"
	case SegVerticalLine:
		return "VerticalLine"
	case SegCubicBezier:
		return "CubicBezier"
	case SegArcCircle:
		return "ArcCircle"
	case SegArcEllipse:
		return "ArcEllipse"
	case SegClosePath:
		return "ClosePath"
	case SegQuadraticBezier:
		return "QuadraticBezier"
	default:
		return "unknown"
	}
}

// Sweep is an arc's sweep direction.
type Sweep int

const (
	SweepRight Sweep = iota
	SweepLeft
)

func (s Sweep) String() string {
	if s == SweepLeft {
		return "Left"
	}
	return "Right"
}

// Image is the root of the parsed representation: a Header, an ordered
// color table (indices into it are positions), an ordered command stream,
// and whatever bytes trailed the end-of-stream sentinel.
//
// Warnings collects non-fatal observations made during parsing (currently
// just a non-1 Header.Version); a successful parse with warnings is still a
// successful parse.
type Image struct {
	Header     Header
	ColorTable []Color
	Commands   []Command
	Trailer    []byte
	Warnings   []string
}

// NewImage returns an empty Image ready to be filled in by a parse.
func NewImage() *Image {
	return &Image{
		ColorTable: make([]Color, 0),
		Commands:   make([]Command, 0),
	}
}
