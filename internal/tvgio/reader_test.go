package tvgio

import (
	"bytes"
	"testing"
)

func TestReadU16LE(t *testing.T) {
	src := NewSource(bytes.NewReader([]byte{0x34, 0x12}), 2)
	v, err := src.ReadU16LE()
	if err != nil {
		t.Fatalf("ReadU16LE failed: %v", err)
	}
	if v != 0x1234 {
		t.Errorf("ReadU16LE = 0x%x, want 0x1234", v)
	}
}

func TestReadU32LE(t *testing.T) {
	src := NewSource(bytes.NewReader([]byte{0x78, 0x56, 0x34, 0x12}), 4)
	v, err := src.ReadU32LE()
	if err != nil {
		t.Fatalf("ReadU32LE failed: %v", err)
	}
	if v != 0x12345678 {
		t.Errorf("ReadU32LE = 0x%x, want 0x12345678", v)
	}
}

func TestReadVarUint(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want uint32
	}{
		{"zero", []byte{0x00}, 0},
		{"single byte", []byte{0x7F}, 127},
		{"300", []byte{0xAC, 0x02}, 300},
		{"large", []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}, 0xFFFFFFFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewSource(bytes.NewReader(tt.in), int64(len(tt.in)))
			got, err := src.ReadVarUint()
			if err != nil {
				t.Fatalf("ReadVarUint failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("ReadVarUint = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestReadVarUintOverflow(t *testing.T) {
	// six bytes, the first five with the continuation bit set: cannot fit
	// in 32 bits.
	in := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01}
	src := NewSource(bytes.NewReader(in), int64(len(in)))
	_, err := src.ReadVarUint()
	if err == nil {
		t.Fatal("ReadVarUint should have failed on overflow")
	}
	perr, ok := err.(*Error)
	if !ok || perr.Kind != VarintOverflow {
		t.Errorf("expected VarintOverflow, got %v", err)
	}
}

func TestReadVarUintOverflowOnFifthByte(t *testing.T) {
	// five bytes whose true value is exactly 2^32: the 5th byte's payload
	// (0x10) sets bit 4, which maps to result bit 32 and cannot fit.
	in := []byte{0x80, 0x80, 0x80, 0x80, 0x10}
	src := NewSource(bytes.NewReader(in), int64(len(in)))
	_, err := src.ReadVarUint()
	if err == nil {
		t.Fatal("ReadVarUint should have failed on overflow")
	}
	perr, ok := err.(*Error)
	if !ok || perr.Kind != VarintOverflow {
		t.Errorf("expected VarintOverflow, got %v", err)
	}
}

func TestReadVarUintFifthByteMaxAllowed(t *testing.T) {
	// the largest legal 5-byte varint: 5th byte payload 0x0F, giving
	// 0xFFFFFFFF.
	in := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}
	src := NewSource(bytes.NewReader(in), int64(len(in)))
	got, err := src.ReadVarUint()
	if err != nil {
		t.Fatalf("ReadVarUint failed: %v", err)
	}
	if got != 0xFFFFFFFF {
		t.Errorf("ReadVarUint = 0x%x, want 0xFFFFFFFF", got)
	}
}

func TestReadVarUintCanonical(t *testing.T) {
	// A varint decoder, fed the bytes it would emit for value v, returns v.
	for _, v := range []uint32{0, 1, 127, 128, 300, 16384, 1 << 20, 1 << 31, 0xFFFFFFFF} {
		encoded := encodeVarUint(v)
		src := NewSource(bytes.NewReader(encoded), int64(len(encoded)))
		got, err := src.ReadVarUint()
		if err != nil {
			t.Fatalf("ReadVarUint(%d) failed: %v", v, err)
		}
		if got != v {
			t.Errorf("ReadVarUint round-trip: got %d, want %d", got, v)
		}
	}
}

func encodeVarUint(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			break
		}
	}
	return out
}

func TestReadNibbleSplit(t *testing.T) {
	src := NewSource(bytes.NewReader([]byte{0x40}), 1)
	scale, colorEncoding, coordinateRange, err := src.ReadNibbleSplit()
	if err != nil {
		t.Fatalf("ReadNibbleSplit failed: %v", err)
	}
	if scale != 4 || colorEncoding != 0 || coordinateRange != 0 {
		t.Errorf("ReadNibbleSplit = (%d,%d,%d), want (4,0,0)", scale, colorEncoding, coordinateRange)
	}
}

func TestReadU6U2(t *testing.T) {
	src := NewSource(bytes.NewReader([]byte{0x8A}), 1)
	low6, high2, err := src.ReadU6U2()
	if err != nil {
		t.Fatalf("ReadU6U2 failed: %v", err)
	}
	if low6 != 0x0A || high2 != 0x02 {
		t.Errorf("ReadU6U2 = (0x%x, 0x%x), want (0x0A, 0x02)", low6, high2)
	}
}

func TestCheckAllocRejectsOversizedCount(t *testing.T) {
	src := NewSource(bytes.NewReader([]byte{0x00}), 1)
	if err := src.CheckAlloc(1<<31, 1); err == nil {
		t.Fatal("CheckAlloc should reject a count the stream cannot supply")
	}
}

func TestCheckAllocUnknownSizeAlwaysPasses(t *testing.T) {
	src := NewSource(bytes.NewReader([]byte{0x00}), -1)
	if err := src.CheckAlloc(1<<31, 1); err != nil {
		t.Errorf("CheckAlloc with unknown size should not reject: %v", err)
	}
}

func TestReadAllDrainsTrailer(t *testing.T) {
	src := NewSource(bytes.NewReader([]byte{0x01, 0x02, 0x03}), 3)
	if _, err := src.ReadByte(); err != nil {
		t.Fatalf("ReadByte failed: %v", err)
	}
	rest, err := src.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if !bytes.Equal(rest, []byte{0x02, 0x03}) {
		t.Errorf("ReadAll = %v, want [2 3]", rest)
	}
}
