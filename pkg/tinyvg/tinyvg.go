// Package tinyvg provides functions for decoding TinyVG binary vector
// graphics files.
//
// This package can be used as a library to parse and validate TinyVG files
// programmatically.
//
// Example usage:
//
//	f, _ := os.Open("icon.tvg")
//	defer f.Close()
//	stat, _ := f.Stat()
//
//	img, err := tinyvg.Parse(f, stat.Size())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, issue := range tinyvg.Validate(img) {
//	    fmt.Println(issue)
//	}
package tinyvg

import (
	"fmt"
	"io"

	"github.com/dyuri/tinyvg/internal/tvgmodel"
	"github.com/dyuri/tinyvg/internal/tvgparse"
)

// Image is the decoded form of a TinyVG file: a header, a color table, an
// ordered command stream, and any bytes that trailed the end-of-document
// sentinel.
type Image = tvgmodel.Image

// ParseHeader reads only the header and color table from r, leaving the
// returned Image's Commands empty. size is the total number of bytes
// available from r, used to bound allocations driven by untrusted length
// prefixes; pass -1 if unknown.
//
// Callers that only need header metadata (dimensions, color count) can stop
// here without paying for the full command stream.
func ParseHeader(r io.Reader, size int64) (*Image, error) {
	p := tvgparse.New(r, size)
	img, err := p.ParseHeader()
	if err != nil {
		return nil, err
	}
	return img, nil
}

// Parse reads a complete TinyVG document: header, color table, command
// stream and trailer.
func Parse(r io.Reader, size int64) (*Image, error) {
	p := tvgparse.New(r, size)
	img, err := p.Parse()
	if err != nil {
		return nil, err
	}
	return img, nil
}

// ValidationError represents a structural or semantic issue found in a
// parsed Image.
type ValidationError struct {
	Field   string // which part of the Image the issue concerns
	Message string
	Level   string // "error" or "warning"
}

func (v ValidationError) String() string {
	return fmt.Sprintf("%s: %s: %s", v.Level, v.Field, v.Message)
}

// Validate re-checks img against the color table and its paths: every color
// index used by a command's fill style (fill commands), line style (line
// commands) or outline style must lie inside the color table, and no path
// segment may be empty. A Header.Version other than 1 is reported as a
// warning. Coordinate values are not checked for finiteness, and segment
// lengths are not compared with the lengths declared on the wire. An empty
// result means none of these checks found a problem.
//
// Validate never mutates img and never fails outright: every problem it
// finds is reported as a ValidationError rather than returned as an error,
// so a caller can collect every issue in one pass instead of stopping at
// the first one.
func Validate(img *Image) []ValidationError {
	var errs []ValidationError

	if img.Header.Version != 1 {
		errs = append(errs, ValidationError{
			Field:   "header.version",
			Message: fmt.Sprintf("unrecognized version %d", img.Header.Version),
			Level:   "warning",
		})
	}

	colorCount := len(img.ColorTable)
	checkIndex := func(field string, idx int) {
		if idx < 0 || idx >= colorCount {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("color index %d out of range for a %d-entry color table", idx, colorCount),
				Level:   "error",
			})
		}
	}
	checkStyle := func(field string, s tvgmodel.Style) {
		switch s.Kind {
		case tvgmodel.FlatColor:
			checkIndex(field+".colorIndex", s.ColorIndex)
		case tvgmodel.LinearGradient, tvgmodel.RadialGradient:
			checkIndex(field+".colorIndex0", s.ColorIndex0)
			checkIndex(field+".colorIndex1", s.ColorIndex1)
		}
	}

	for i, cmd := range img.Commands {
		field := fmt.Sprintf("commands[%d]", i)
		switch cmd.Kind {
		case tvgmodel.CmdFillPolygon, tvgmodel.CmdFillRectangles, tvgmodel.CmdFillPath:
			checkStyle(field+".fillStyle", cmd.FillStyle)
		default:
			checkStyle(field+".lineStyle", cmd.LineStyle)
		}
		if cmd.Outline != nil {
			checkStyle(field+".outline.lineStyle", cmd.Outline.LineStyle)
		}
		for j, seg := range cmd.Path {
			if len(seg.Commands) == 0 {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.path[%d]", field, j),
					Message: "path segment declares zero commands",
					Level:   "error",
				})
			}
		}
	}

	return errs
}

// Encode writes img to w in TinyVG binary form.
//
// Currently not implemented: this package is a decoder only.
func Encode(w io.Writer, img *Image) error {
	return ErrNotImplemented
}

// Common errors.
var (
	ErrNotImplemented = &Error{Code: "not_implemented", Message: "encoding is not supported by this package"}
)

// Error represents a tinyvg facade-level error not already carrying its own
// richer tvgio.Error classification (offset, Kind).
type Error struct {
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}
