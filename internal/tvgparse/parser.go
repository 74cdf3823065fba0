// Package tvgparse decodes the TinyVG wire grammar — header, color table,
// styles, geometry, paths and the ten-opcode command stream — into the
// tvgmodel IR. It is strictly sequential: every reader consumes a prefix of
// the underlying tvgio.Source and the parser never backtracks.
package tvgparse

import (
	"fmt"
	"io"

	"github.com/dyuri/tinyvg/internal/tvgio"
	"github.com/dyuri/tinyvg/internal/tvgmodel"
)

const (
	magic0 = 0x72
	magic1 = 0x56

	minItemSize = 1 // smallest possible wire size of a single repeated element
)

// Parser holds the streaming TinyVG decoder state. Body readers below close
// over coordinateRange, colorEncoding, scale and colorCount, all of which
// only become known once the header has been read — the same "context
// carried as plain fields on the receiver" shape the teacher's
// binary.Reader uses for its section layout.
type Parser struct {
	src *tvgio.Source

	coordinateRange tvgmodel.CoordinateRange
	colorEncoding   tvgmodel.ColorEncoding
	scale           uint8
	colorCount      uint32
}

// New wraps r as a TinyVG byte source. size is the total number of bytes
// expected to be readable from r, used to bound allocations driven by
// untrusted length prefixes; pass -1 if unknown.
func New(r io.Reader, size int64) *Parser {
	return &Parser{src: tvgio.NewSource(r, size)}
}

// ParseHeader consumes the byte source up to and including the color table
// and returns an Image with an empty command stream, leaving the parser
// positioned at the first command byte.
func (p *Parser) ParseHeader() (*tvgmodel.Image, error) {
	header, err := p.readHeader()
	if err != nil {
		return nil, fmt.Errorf("error parsing header: %w", err)
	}

	img := tvgmodel.NewImage()
	img.Header = header
	if header.Version != 1 {
		img.Warnings = append(img.Warnings, fmt.Sprintf("unrecognized version %d, expected 1; continuing", header.Version))
	}

	colors, err := p.readColorTable(header.ColorCount)
	if err != nil {
		return nil, fmt.Errorf("error parsing color table: %w", err)
	}
	img.ColorTable = colors

	return img, nil
}

// ParseCommands drains the command stream and trailer into img, which must
// have been produced by ParseHeader on this same Parser. On failure any
// commands already accumulated remain on img.
func (p *Parser) ParseCommands(img *tvgmodel.Image) error {
	if err := p.parseCommandsInner(img); err != nil {
		return fmt.Errorf("parsing failed after reading %d bytes: %w", p.src.BytesRead(), err)
	}
	return nil
}

func (p *Parser) parseCommandsInner(img *tvgmodel.Image) error {
	for {
		cmd, done, err := p.readCommand()
		if err != nil {
			return fmt.Errorf("error parsing command: %w", err)
		}
		if done {
			break
		}
		img.Commands = append(img.Commands, *cmd)
	}

	trailer, err := p.src.ReadAll()
	if err != nil {
		return fmt.Errorf("error reading trailing bytes: %w", err)
	}
	img.Trailer = trailer

	return nil
}

// Parse runs ParseHeader followed by ParseCommands.
func (p *Parser) Parse() (*tvgmodel.Image, error) {
	img, err := p.ParseHeader()
	if err != nil {
		return nil, err
	}
	if err := p.ParseCommands(img); err != nil {
		return nil, err
	}
	return img, nil
}

func (p *Parser) readHeader() (tvgmodel.Header, error) {
	b0, err := p.src.ReadU8()
	if err != nil {
		return tvgmodel.Header{}, err
	}
	b1, err := p.src.ReadU8()
	if err != nil {
		return tvgmodel.Header{}, err
	}
	if b0 != magic0 || b1 != magic1 {
		return tvgmodel.Header{}, &tvgio.Error{
			Kind:    tvgio.BadMagic,
			Offset:  p.src.BytesRead(),
			Message: fmt.Sprintf("bad magic number: found %#x %#x, want %#x %#x", b0, b1, magic0, magic1),
		}
	}

	version, err := p.src.ReadU8()
	if err != nil {
		return tvgmodel.Header{}, err
	}

	scale, colorEncodingBits, coordinateRangeBits, err := p.src.ReadNibbleSplit()
	if err != nil {
		return tvgmodel.Header{}, err
	}

	coordinateRange, err := decodeCoordinateRange(coordinateRangeBits, p.src.BytesRead())
	if err != nil {
		return tvgmodel.Header{}, err
	}
	colorEncoding, err := decodeColorEncoding(colorEncodingBits, p.src.BytesRead())
	if err != nil {
		return tvgmodel.Header{}, err
	}

	p.coordinateRange = coordinateRange
	p.colorEncoding = colorEncoding
	p.scale = scale

	width, err := p.readCoordinateRangeUint()
	if err != nil {
		return tvgmodel.Header{}, err
	}
	height, err := p.readCoordinateRangeUint()
	if err != nil {
		return tvgmodel.Header{}, err
	}
	colorCount, err := p.src.ReadVarUint()
	if err != nil {
		return tvgmodel.Header{}, err
	}
	p.colorCount = colorCount

	return tvgmodel.Header{
		Version:         version,
		Scale:           scale,
		ColorEncoding:   colorEncoding,
		CoordinateRange: coordinateRange,
		Width:           width,
		Height:          height,
		ColorCount:      colorCount,
	}, nil
}

func decodeCoordinateRange(bits uint8, offset int64) (tvgmodel.CoordinateRange, error) {
	switch bits {
	case 0:
		return tvgmodel.Default, nil
	case 1:
		return tvgmodel.Reduced, nil
	case 2:
		return tvgmodel.Enhanced, nil
	default:
		return 0, &tvgio.Error{Kind: tvgio.UnsupportedEncoding, Offset: offset, Message: fmt.Sprintf("unrecognized coordinate range %d", bits)}
	}
}

func decodeColorEncoding(bits uint8, offset int64) (tvgmodel.ColorEncoding, error) {
	switch bits {
	case 0:
		return tvgmodel.RGBA8888, nil
	case 1:
		return tvgmodel.RGB565, nil
	case 2:
		return tvgmodel.RGBAF32, nil
	case 3:
		return 0, &tvgio.Error{Kind: tvgio.UnsupportedEncoding, Offset: offset, Message: "custom color encodings are not supported"}
	default:
		return 0, &tvgio.Error{Kind: tvgio.UnsupportedEncoding, Offset: offset, Message: fmt.Sprintf("unrecognized color encoding %d", bits)}
	}
}

// readCoordinateRangeUint reads a nonnegative integer whose wire width is
// fixed by the header's coordinate range.
func (p *Parser) readCoordinateRangeUint() (uint32, error) {
	switch p.coordinateRange {
	case tvgmodel.Reduced:
		v, err := p.src.ReadU8()
		return uint32(v), err
	case tvgmodel.Enhanced:
		return p.src.ReadU32LE()
	default:
		v, err := p.src.ReadU16LE()
		return uint32(v), err
	}
}

// readUnit reads a coordinate-range-sized raw integer and divides it by
// 2^scale. The reference implementation never sign-extends the raw value
// (see SPEC_FULL.md section 2), so neither do we.
func (p *Parser) readUnit() (float64, error) {
	raw, err := p.readCoordinateRangeUint()
	if err != nil {
		return 0, err
	}
	return float64(raw) / float64(uint32(1)<<p.scale), nil
}

func (p *Parser) readColorTable(count uint32) ([]tvgmodel.Color, error) {
	minSize := 2 // RGB565 is the smallest encoding, 2 bytes/color
	if err := p.src.CheckAlloc(int(count), minSize); err != nil {
		return nil, err
	}

	colors := make([]tvgmodel.Color, 0, count)
	for i := uint32(0); i < count; i++ {
		var (
			c   tvgmodel.Color
			err error
		)
		switch p.colorEncoding {
		case tvgmodel.RGBA8888:
			c, err = p.readColor8888()
		case tvgmodel.RGBAF32:
			c, err = p.readColorF32()
		default:
			c, err = p.readColor565()
		}
		if err != nil {
			return nil, fmt.Errorf("color %d: %w", i, err)
		}
		colors = append(colors, c)
	}
	return colors, nil
}

func (p *Parser) readColor8888() (tvgmodel.Color, error) {
	r, err := p.src.ReadU8()
	if err != nil {
		return tvgmodel.Color{}, err
	}
	g, err := p.src.ReadU8()
	if err != nil {
		return tvgmodel.Color{}, err
	}
	b, err := p.src.ReadU8()
	if err != nil {
		return tvgmodel.Color{}, err
	}
	a, err := p.src.ReadU8()
	if err != nil {
		return tvgmodel.Color{}, err
	}
	return tvgmodel.Color{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
		A: float64(a) / 255.0,
	}, nil
}

func (p *Parser) readColorF32() (tvgmodel.Color, error) {
	r, err := p.src.ReadF32LE()
	if err != nil {
		return tvgmodel.Color{}, err
	}
	g, err := p.src.ReadF32LE()
	if err != nil {
		return tvgmodel.Color{}, err
	}
	b, err := p.src.ReadF32LE()
	if err != nil {
		return tvgmodel.Color{}, err
	}
	a, err := p.src.ReadF32LE()
	if err != nil {
		return tvgmodel.Color{}, err
	}
	return tvgmodel.Color{R: float64(r), G: float64(g), B: float64(b), A: float64(a)}, nil
}

func (p *Parser) readColor565() (tvgmodel.Color, error) {
	v, err := p.src.ReadU16LE()
	if err != nil {
		return tvgmodel.Color{}, err
	}
	return tvgmodel.Color{
		R: float64(v&0x001F) / 31.0,
		G: float64((v>>5)&0x3F) / 63.0,
		B: float64((v>>11)&0x1F) / 31.0,
		A: 1.0,
	}, nil
}

func (p *Parser) readPoint() (tvgmodel.Point, error) {
	x, err := p.readUnit()
	if err != nil {
		return tvgmodel.Point{}, err
	}
	y, err := p.readUnit()
	if err != nil {
		return tvgmodel.Point{}, err
	}
	return tvgmodel.Point{X: x, Y: y}, nil
}

func (p *Parser) readRect() (tvgmodel.Rect, error) {
	x, err := p.readUnit()
	if err != nil {
		return tvgmodel.Rect{}, err
	}
	y, err := p.readUnit()
	if err != nil {
		return tvgmodel.Rect{}, err
	}
	w, err := p.readUnit()
	if err != nil {
		return tvgmodel.Rect{}, err
	}
	h, err := p.readUnit()
	if err != nil {
		return tvgmodel.Rect{}, err
	}
	return tvgmodel.Rect{X: x, Y: y, Width: w, Height: h}, nil
}

func (p *Parser) readLine() (tvgmodel.Line, error) {
	p0, err := p.readPoint()
	if err != nil {
		return tvgmodel.Line{}, err
	}
	p1, err := p.readPoint()
	if err != nil {
		return tvgmodel.Line{}, err
	}
	return tvgmodel.Line{P0: p0, P1: p1}, nil
}

// styleKind maps a two-bit style tag to its StyleKind, rejecting the
// reserved value 3.
func (p *Parser) styleKind(tag uint8) (tvgmodel.StyleKind, error) {
	switch tag {
	case 0:
		return tvgmodel.FlatColor, nil
	case 1:
		return tvgmodel.LinearGradient, nil
	case 2:
		return tvgmodel.RadialGradient, nil
	default:
		return 0, &tvgio.Error{Kind: tvgio.UnsupportedEncoding, Offset: p.src.BytesRead(), Message: "unsupported primary style"}
	}
}

func (p *Parser) colorIndex() (int, error) {
	raw, err := p.src.ReadVarUint()
	if err != nil {
		return 0, err
	}
	if raw >= p.colorCount {
		return 0, &tvgio.Error{
			Kind:    tvgio.IndexOutOfRange,
			Offset:  p.src.BytesRead(),
			Message: fmt.Sprintf("color index %d is out of range for a %d-entry color table", raw, p.colorCount),
		}
	}
	return int(raw), nil
}

func (p *Parser) readStyle(kind tvgmodel.StyleKind) (tvgmodel.Style, error) {
	switch kind {
	case tvgmodel.FlatColor:
		idx, err := p.colorIndex()
		if err != nil {
			return tvgmodel.Style{}, err
		}
		return tvgmodel.Style{Kind: tvgmodel.FlatColor, ColorIndex: idx}, nil

	case tvgmodel.LinearGradient, tvgmodel.RadialGradient:
		p0, err := p.readPoint()
		if err != nil {
			return tvgmodel.Style{}, err
		}
		p1, err := p.readPoint()
		if err != nil {
			return tvgmodel.Style{}, err
		}
		idx0, err := p.colorIndex()
		if err != nil {
			return tvgmodel.Style{}, err
		}
		idx1, err := p.colorIndex()
		if err != nil {
			return tvgmodel.Style{}, err
		}
		return tvgmodel.Style{
			Kind:        kind,
			Point0:      p0,
			Point1:      p1,
			ColorIndex0: idx0,
			ColorIndex1: idx1,
		}, nil

	default:
		return tvgmodel.Style{}, &tvgio.Error{Kind: tvgio.UnsupportedEncoding, Offset: p.src.BytesRead(), Message: "unsupported primary style"}
	}
}

func (p *Parser) readArcHeader() (large bool, sweep tvgmodel.Sweep, err error) {
	raw, err := p.src.ReadU8()
	if err != nil {
		return false, 0, err
	}
	large = raw&0x80 != 0
	if raw&0x40 != 0 {
		sweep = tvgmodel.SweepLeft
	} else {
		sweep = tvgmodel.SweepRight
	}
	return large, sweep, nil
}

func (p *Parser) readSegmentCommand() (tvgmodel.SegmentCommand, error) {
	raw, err := p.src.ReadU8()
	if err != nil {
		return tvgmodel.SegmentCommand{}, err
	}
	instruction := raw & 0x07
	hasLineWidth := raw&0x08 != 0

	var lineWidth *float64
	if hasLineWidth {
		w, err := p.readUnit()
		if err != nil {
			return tvgmodel.SegmentCommand{}, err
		}
		lineWidth = &w
	}

	sc := tvgmodel.SegmentCommand{LineWidth: lineWidth}

	switch instruction {
	case 0: // Line
		end, err := p.readPoint()
		if err != nil {
			return tvgmodel.SegmentCommand{}, err
		}
		sc.Kind = tvgmodel.SegLine
		sc.End = end

	case 1: // HorizontalLine
		x, err := p.readUnit()
		if err != nil {
			return tvgmodel.SegmentCommand{}, err
		}
		sc.Kind = tvgmodel.SegHorizontalLine
		sc.X = x

	case 2: // VerticalLine
		y, err := p.readUnit()
		if err != nil {
			return tvgmodel.SegmentCommand{}, err
		}
		sc.Kind = tvgmodel.SegVerticalLine
		sc.Y = y

	case 3: // CubicBezier
		c0, err := p.readPoint()
		if err != nil {
			return tvgmodel.SegmentCommand{}, err
		}
		c1, err := p.readPoint()
		if err != nil {
			return tvgmodel.SegmentCommand{}, err
		}
		p1, err := p.readPoint()
		if err != nil {
			return tvgmodel.SegmentCommand{}, err
		}
		sc.Kind = tvgmodel.SegCubicBezier
		sc.Control0, sc.Control1, sc.Point1 = c0, c1, p1

	case 4: // ArcCircle
		large, sweep, err := p.readArcHeader()
		if err != nil {
			return tvgmodel.SegmentCommand{}, err
		}
		radius, err := p.readUnit()
		if err != nil {
			return tvgmodel.SegmentCommand{}, err
		}
		target, err := p.readPoint()
		if err != nil {
			return tvgmodel.SegmentCommand{}, err
		}
		sc.Kind = tvgmodel.SegArcCircle
		sc.Large, sc.Sweep, sc.Radius, sc.Target = large, sweep, radius, target

	case 5: // ArcEllipse
		large, sweep, err := p.readArcHeader()
		if err != nil {
			return tvgmodel.SegmentCommand{}, err
		}
		rx, err := p.readUnit()
		if err != nil {
			return tvgmodel.SegmentCommand{}, err
		}
		ry, err := p.readUnit()
		if err != nil {
			return tvgmodel.SegmentCommand{}, err
		}
		rotation, err := p.readUnit()
		if err != nil {
			return tvgmodel.SegmentCommand{}, err
		}
		target, err := p.readPoint()
		if err != nil {
			return tvgmodel.SegmentCommand{}, err
		}
		sc.Kind = tvgmodel.SegArcEllipse
		sc.Large, sc.Sweep = large, sweep
		sc.RadiusX, sc.RadiusY, sc.Rotation, sc.Target = rx, ry, rotation, target

	case 6: // ClosePath
		sc.Kind = tvgmodel.SegClosePath

	case 7: // QuadraticBezier
		control, err := p.readPoint()
		if err != nil {
			return tvgmodel.SegmentCommand{}, err
		}
		p1, err := p.readPoint()
		if err != nil {
			return tvgmodel.SegmentCommand{}, err
		}
		sc.Kind = tvgmodel.SegQuadraticBezier
		sc.Control, sc.Point1 = control, p1

	default:
		return tvgmodel.SegmentCommand{}, &tvgio.Error{
			Kind:    tvgio.BadInstruction,
			Offset:  p.src.BytesRead(),
			Message: fmt.Sprintf("illegal path segment instruction %d", instruction),
		}
	}

	return sc, nil
}

func (p *Parser) readSegment(length uint32) (tvgmodel.Segment, error) {
	start, err := p.readPoint()
	if err != nil {
		return tvgmodel.Segment{}, err
	}

	if err := p.src.CheckAlloc(int(length), minItemSize); err != nil {
		return tvgmodel.Segment{}, err
	}
	commands := make([]tvgmodel.SegmentCommand, 0, length)
	for i := uint32(0); i < length; i++ {
		sc, err := p.readSegmentCommand()
		if err != nil {
			return tvgmodel.Segment{}, fmt.Errorf("segment command %d: %w", i, err)
		}
		commands = append(commands, sc)
	}

	return tvgmodel.Segment{Start: start, Commands: commands}, nil
}

// readPath decodes a path of count segments: count varint-encoded
// "length minus one" prefixes followed by that many segments, each of its
// declared length. Per spec section 4.8, the segment lengths are all read
// up front so no segment buffer is allocated before its size is known.
func (p *Parser) readPath(count uint32) ([]tvgmodel.Segment, error) {
	if err := p.src.CheckAlloc(int(count), minItemSize); err != nil {
		return nil, err
	}

	lengths := make([]uint32, count)
	for i := uint32(0); i < count; i++ {
		n, err := p.src.ReadVarUint()
		if err != nil {
			return nil, fmt.Errorf("segment length %d: %w", i, err)
		}
		lengths[i] = n + 1
	}

	segments := make([]tvgmodel.Segment, count)
	for i := uint32(0); i < count; i++ {
		seg, err := p.readSegment(lengths[i])
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		segments[i] = seg
	}

	return segments, nil
}

// countPlusOne reads a varint count prefix and adds one, the "N+1" encoding
// used throughout the command grammar.
func (p *Parser) countPlusOne() (uint32, error) {
	n, err := p.src.ReadVarUint()
	if err != nil {
		return 0, err
	}
	return n + 1, nil
}

func (p *Parser) fillPolygon(style tvgmodel.StyleKind) (tvgmodel.Command, error) {
	count, err := p.countPlusOne()
	if err != nil {
		return tvgmodel.Command{}, err
	}
	fillStyle, err := p.readStyle(style)
	if err != nil {
		return tvgmodel.Command{}, err
	}
	if err := p.src.CheckAlloc(int(count), minItemSize); err != nil {
		return tvgmodel.Command{}, err
	}
	points := make([]tvgmodel.Point, count)
	for i := range points {
		if points[i], err = p.readPoint(); err != nil {
			return tvgmodel.Command{}, err
		}
	}
	return tvgmodel.Command{Kind: tvgmodel.CmdFillPolygon, FillStyle: fillStyle, Polygon: points}, nil
}

func (p *Parser) fillRectangles(style tvgmodel.StyleKind) (tvgmodel.Command, error) {
	count, err := p.countPlusOne()
	if err != nil {
		return tvgmodel.Command{}, err
	}
	fillStyle, err := p.readStyle(style)
	if err != nil {
		return tvgmodel.Command{}, err
	}
	if err := p.src.CheckAlloc(int(count), minItemSize); err != nil {
		return tvgmodel.Command{}, err
	}
	rects := make([]tvgmodel.Rect, count)
	for i := range rects {
		if rects[i], err = p.readRect(); err != nil {
			return tvgmodel.Command{}, err
		}
	}
	return tvgmodel.Command{Kind: tvgmodel.CmdFillRectangles, FillStyle: fillStyle, Rectangles: rects}, nil
}

func (p *Parser) fillPath(style tvgmodel.StyleKind) (tvgmodel.Command, error) {
	count, err := p.countPlusOne()
	if err != nil {
		return tvgmodel.Command{}, err
	}
	fillStyle, err := p.readStyle(style)
	if err != nil {
		return tvgmodel.Command{}, err
	}
	path, err := p.readPath(count)
	if err != nil {
		return tvgmodel.Command{}, err
	}
	return tvgmodel.Command{Kind: tvgmodel.CmdFillPath, FillStyle: fillStyle, Path: path}, nil
}

func (p *Parser) drawLines(style tvgmodel.StyleKind) (tvgmodel.Command, error) {
	count, err := p.countPlusOne()
	if err != nil {
		return tvgmodel.Command{}, err
	}
	lineStyle, err := p.readStyle(style)
	if err != nil {
		return tvgmodel.Command{}, err
	}
	lineWidth, err := p.readUnit()
	if err != nil {
		return tvgmodel.Command{}, err
	}
	if err := p.src.CheckAlloc(int(count), minItemSize); err != nil {
		return tvgmodel.Command{}, err
	}
	lines := make([]tvgmodel.Line, count)
	for i := range lines {
		if lines[i], err = p.readLine(); err != nil {
			return tvgmodel.Command{}, err
		}
	}
	return tvgmodel.Command{Kind: tvgmodel.CmdDrawLines, LineStyle: lineStyle, LineWidth: lineWidth, Lines: lines}, nil
}

func (p *Parser) drawLineLoopOrStrip(style tvgmodel.StyleKind, closePath bool) (tvgmodel.Command, error) {
	count, err := p.countPlusOne()
	if err != nil {
		return tvgmodel.Command{}, err
	}
	lineStyle, err := p.readStyle(style)
	if err != nil {
		return tvgmodel.Command{}, err
	}
	lineWidth, err := p.readUnit()
	if err != nil {
		return tvgmodel.Command{}, err
	}
	if err := p.src.CheckAlloc(int(count), minItemSize); err != nil {
		return tvgmodel.Command{}, err
	}
	points := make([]tvgmodel.Point, count)
	for i := range points {
		if points[i], err = p.readPoint(); err != nil {
			return tvgmodel.Command{}, err
		}
	}
	return tvgmodel.Command{
		Kind:      tvgmodel.CmdDrawLineLoop,
		LineStyle: lineStyle,
		LineWidth: lineWidth,
		Points:    points,
		ClosePath: closePath,
	}, nil
}

func (p *Parser) drawLinePath(style tvgmodel.StyleKind) (tvgmodel.Command, error) {
	count, err := p.countPlusOne()
	if err != nil {
		return tvgmodel.Command{}, err
	}
	lineStyle, err := p.readStyle(style)
	if err != nil {
		return tvgmodel.Command{}, err
	}
	lineWidth, err := p.readUnit()
	if err != nil {
		return tvgmodel.Command{}, err
	}
	path, err := p.readPath(count)
	if err != nil {
		return tvgmodel.Command{}, err
	}
	return tvgmodel.Command{Kind: tvgmodel.CmdDrawLinePath, LineStyle: lineStyle, LineWidth: lineWidth, Path: path}, nil
}

// outlineSegmentCountAndStyle reads the segment-count/secondary-style byte
// shared by all three Outline* opcodes.
func (p *Parser) outlineSegmentCountAndStyle() (segmentCount uint32, secondaryStyle tvgmodel.StyleKind, err error) {
	low6, high2, err := p.src.ReadU6U2()
	if err != nil {
		return 0, 0, err
	}
	secondaryStyle, err = p.styleKind(high2)
	if err != nil {
		return 0, 0, err
	}
	return uint32(low6), secondaryStyle, nil
}

func (p *Parser) outlineFillPolygon(primaryStyle tvgmodel.StyleKind) (tvgmodel.Command, error) {
	segmentCount, secondaryStyle, err := p.outlineSegmentCountAndStyle()
	if err != nil {
		return tvgmodel.Command{}, err
	}
	fillStyle, err := p.readStyle(primaryStyle)
	if err != nil {
		return tvgmodel.Command{}, err
	}
	lineStyle, err := p.readStyle(secondaryStyle)
	if err != nil {
		return tvgmodel.Command{}, err
	}
	lineWidth, err := p.readUnit()
	if err != nil {
		return tvgmodel.Command{}, err
	}

	// Unlike the path variant below, the polygon/rectangle outline forms
	// DO apply "+1" to the segment count (confirmed against the reference
	// parser's outline_fill_cmd).
	count := segmentCount + 1
	if err := p.src.CheckAlloc(int(count), minItemSize); err != nil {
		return tvgmodel.Command{}, err
	}
	points := make([]tvgmodel.Point, count)
	for i := range points {
		if points[i], err = p.readPoint(); err != nil {
			return tvgmodel.Command{}, err
		}
	}

	return tvgmodel.Command{
		Kind:      tvgmodel.CmdFillPolygon,
		FillStyle: fillStyle,
		Polygon:   points,
		Outline:   &tvgmodel.OutlineStyle{LineWidth: lineWidth, LineStyle: lineStyle},
	}, nil
}

func (p *Parser) outlineFillRectangles(primaryStyle tvgmodel.StyleKind) (tvgmodel.Command, error) {
	segmentCount, secondaryStyle, err := p.outlineSegmentCountAndStyle()
	if err != nil {
		return tvgmodel.Command{}, err
	}
	fillStyle, err := p.readStyle(primaryStyle)
	if err != nil {
		return tvgmodel.Command{}, err
	}
	lineStyle, err := p.readStyle(secondaryStyle)
	if err != nil {
		return tvgmodel.Command{}, err
	}
	lineWidth, err := p.readUnit()
	if err != nil {
		return tvgmodel.Command{}, err
	}

	count := segmentCount + 1
	if err := p.src.CheckAlloc(int(count), minItemSize); err != nil {
		return tvgmodel.Command{}, err
	}
	rects := make([]tvgmodel.Rect, count)
	for i := range rects {
		if rects[i], err = p.readRect(); err != nil {
			return tvgmodel.Command{}, err
		}
	}

	return tvgmodel.Command{
		Kind:       tvgmodel.CmdFillRectangles,
		FillStyle:  fillStyle,
		Rectangles: rects,
		Outline:    &tvgmodel.OutlineStyle{LineWidth: lineWidth, LineStyle: lineStyle},
	}, nil
}

func (p *Parser) outlineFillPath(primaryStyle tvgmodel.StyleKind) (tvgmodel.Command, error) {
	segmentCount, secondaryStyle, err := p.outlineSegmentCountAndStyle()
	if err != nil {
		return tvgmodel.Command{}, err
	}
	fillStyle, err := p.readStyle(primaryStyle)
	if err != nil {
		return tvgmodel.Command{}, err
	}
	lineStyle, err := p.readStyle(secondaryStyle)
	if err != nil {
		return tvgmodel.Command{}, err
	}
	lineWidth, err := p.readUnit()
	if err != nil {
		return tvgmodel.Command{}, err
	}

	// OutlineFillPath is the one wire shape where the "+1" applied to every
	// other length prefix is NOT applied: the u6 value already is the
	// segment count (confirmed against the reference's outline_fill_path,
	// which calls read_path(segment_count) with no adjustment).
	path, err := p.readPath(segmentCount)
	if err != nil {
		return tvgmodel.Command{}, err
	}

	return tvgmodel.Command{
		Kind:      tvgmodel.CmdFillPath,
		FillStyle: fillStyle,
		Path:      path,
		Outline:   &tvgmodel.OutlineStyle{LineWidth: lineWidth, LineStyle: lineStyle},
	}, nil
}

// readCommand decodes the next command. done is true once the end-of-stream
// sentinel (command index 0) has been consumed, in which case cmd is nil.
func (p *Parser) readCommand() (cmd *tvgmodel.Command, done bool, err error) {
	commandIndex, primaryStyleTag, err := p.src.ReadU6U2()
	if err != nil {
		return nil, false, err
	}
	if commandIndex == 0 {
		return nil, true, nil
	}
	if commandIndex > 10 {
		return nil, false, &tvgio.Error{
			Kind:    tvgio.BadInstruction,
			Offset:  p.src.BytesRead(),
			Message: fmt.Sprintf("unsupported command type %d", commandIndex),
		}
	}

	primaryStyle, err := p.styleKind(primaryStyleTag)
	if err != nil {
		return nil, false, err
	}

	var c tvgmodel.Command
	switch commandIndex {
	case 1:
		c, err = p.fillPolygon(primaryStyle)
	case 2:
		c, err = p.fillRectangles(primaryStyle)
	case 3:
		c, err = p.fillPath(primaryStyle)
	case 4:
		c, err = p.drawLines(primaryStyle)
	case 5:
		c, err = p.drawLineLoopOrStrip(primaryStyle, true)
	case 6:
		c, err = p.drawLineLoopOrStrip(primaryStyle, false)
	case 7:
		c, err = p.drawLinePath(primaryStyle)
	case 8:
		c, err = p.outlineFillPolygon(primaryStyle)
	case 9:
		c, err = p.outlineFillRectangles(primaryStyle)
	case 10:
		c, err = p.outlineFillPath(primaryStyle)
	}
	if err != nil {
		return nil, false, err
	}
	return &c, false, nil
}
