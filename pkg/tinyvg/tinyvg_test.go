package tinyvg_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dyuri/tinyvg/internal/tvgmodel"
	"github.com/dyuri/tinyvg/pkg/tinyvg"
)

func u16le(v uint16) []byte { return []byte{byte(v), byte(v >> 8)} }

func TestParseRoundTripHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0x72, 0x56, 0x01, 0x00})
	buf.Write(u16le(32))
	buf.Write(u16le(64))
	buf.WriteByte(0x00)
	buf.WriteByte(0x00) // end-of-document sentinel

	img, err := tinyvg.Parse(&buf, int64(buf.Len()))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	want := &tvgmodel.Image{
		Header: tvgmodel.Header{
			Version:         1,
			ColorEncoding:   tvgmodel.RGBA8888,
			CoordinateRange: tvgmodel.Default,
			Width:           32,
			Height:          64,
		},
		ColorTable: []tvgmodel.Color{},
		Commands:   []tvgmodel.Command{},
		Trailer:    []byte{},
	}
	if diff := cmp.Diff(want, img); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseHeaderStopsBeforeCommands(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0x72, 0x56, 0x01, 0x00})
	buf.Write(u16le(1))
	buf.Write(u16le(1))
	buf.WriteByte(0x00)
	// deliberately malformed command stream: ParseHeader must not read it.
	buf.WriteByte(0xFF)

	img, err := tinyvg.ParseHeader(&buf, int64(buf.Len()))
	if err != nil {
		t.Fatalf("ParseHeader failed: %v", err)
	}
	if len(img.Commands) != 0 {
		t.Errorf("ParseHeader should leave Commands empty, got %d", len(img.Commands))
	}
}

func TestValidateFlagsOutOfRangeColorIndex(t *testing.T) {
	img := tvgmodel.NewImage()
	img.Header.Version = 1
	img.Commands = append(img.Commands, tvgmodel.Command{
		Kind:      tvgmodel.CmdFillRectangles,
		FillStyle: tvgmodel.Style{Kind: tvgmodel.FlatColor, ColorIndex: 5},
	})

	issues := tinyvg.Validate(img)
	if len(issues) != 1 {
		t.Fatalf("Validate() = %d issues, want 1: %v", len(issues), issues)
	}
	if issues[0].Level != "error" {
		t.Errorf("Level = %q, want error", issues[0].Level)
	}
}

func TestValidateCleanImage(t *testing.T) {
	img := tvgmodel.NewImage()
	img.Header.Version = 1
	img.ColorTable = []tvgmodel.Color{{R: 1, G: 1, B: 1, A: 1}}
	img.Commands = append(img.Commands, tvgmodel.Command{
		Kind:      tvgmodel.CmdFillRectangles,
		FillStyle: tvgmodel.Style{Kind: tvgmodel.FlatColor, ColorIndex: 0},
		Rectangles: []tvgmodel.Rect{{Width: 1, Height: 1}},
	})

	if issues := tinyvg.Validate(img); len(issues) != 0 {
		t.Errorf("Validate() = %v, want no issues", issues)
	}
}

func TestEncodeNotImplemented(t *testing.T) {
	var buf bytes.Buffer
	err := tinyvg.Encode(&buf, tvgmodel.NewImage())
	if err != tinyvg.ErrNotImplemented {
		t.Errorf("Encode() = %v, want ErrNotImplemented", err)
	}
}
