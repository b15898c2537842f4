package grid

import (
	"math/rand"
	"testing"
)

func TestOffset(t *testing.T) {
	if got := Offset(0, 0, TileX); got != 0 {
		t.Errorf("expected offset 0 for origin, got %d", got)
	}
	if got := Offset(5, 10, TileX); got != (5+10*TileX)*4 {
		t.Errorf("expected offset %d, got %d", (5+10*TileX)*4, got)
	}
	if got := Offset(TileX-1, TileX-1, TileX); got != (TileX*TileX-1)*4 {
		t.Errorf("expected offset %d, got %d", (TileX*TileX-1)*4, got)
	}
}

func TestOffsetInjective(t *testing.T) {
	// Random coordinate pairs must never collide.
	rng := rand.New(rand.NewSource(42))
	for range 1000 {
		x1, y1 := rng.Intn(TileX), rng.Intn(TileX)
		x2, y2 := rng.Intn(TileX), rng.Intn(TileX)
		if x1 == x2 && y1 == y2 {
			continue
		}
		o1 := Offset(x1, y1, TileX)
		o2 := Offset(x2, y2, TileX)
		if o1 == o2 {
			t.Fatalf("offset collision: (%d,%d) and (%d,%d) both map to %d", x1, y1, x2, y2, o1)
		}
	}
}

func TestColorRoundTrip(t *testing.T) {
	colors := []uint32{0, 1, 255, 256, 10000, 0xDEADBEEF, 0xFFFFFFFF}
	for _, c := range colors {
		b := EncodeColor(c)
		if got := DecodeColor(b[:]); got != c {
			t.Errorf("round trip failed for %#x: got %#x", c, got)
		}
	}
}

func TestEncodeColorLittleEndian(t *testing.T) {
	b := EncodeColor(255)
	want := [ColorSize]byte{255, 0, 0, 0}
	if b != want {
		t.Errorf("expected %v, got %v", want, b)
	}
}
