package x11overlay

import "testing"

func TestBitmapStridePadsToScanline(t *testing.T) {
	b := newBitmap(97, 3)
	if b.stride != 16 {
		t.Fatalf("stride = %d, want 16 (97 bits padded to 32-bit units)", b.stride)
	}
	if len(b.data) != 48 {
		t.Fatalf("data length = %d, want 48", len(b.data))
	}
}

func TestBitmapSetGetClampsToBounds(t *testing.T) {
	b := newBitmap(8, 8)
	b.set(3, 5, true)
	if !b.get(3, 5) {
		t.Fatalf("bit (3,5) not set")
	}
	b.set(3, 5, false)
	if b.get(3, 5) {
		t.Fatalf("bit (3,5) not cleared")
	}

	// Out-of-bounds writes are ignored, reads report clear.
	b.set(-1, 0, true)
	b.set(8, 0, true)
	b.set(0, 8, true)
	if b.get(-1, 0) || b.get(8, 0) || b.get(0, 8) {
		t.Fatalf("out-of-bounds reads must be clear")
	}
}

func TestTitleOnlyMaskHasNoCrosshair(t *testing.T) {
	g := DefaultGeometry()
	width, height := g.WindowSize()
	b := titleOnlyMask(g, width, height)

	if !b.get(0, 0) || !b.get(int(width)-1, g.TitleHeight-1) {
		t.Fatalf("title strip must be solid")
	}
	for y := g.TitleHeight; y < int(height); y++ {
		for x := 0; x < int(width); x++ {
			if b.get(x, y) {
				t.Fatalf("unexpected set bit at (%d,%d) below the title strip", x, y)
			}
		}
	}
}

func TestCrosshairMaskShape(t *testing.T) {
	g := DefaultGeometry()
	width, height := g.WindowSize()
	b := crosshairMask(g, width, height)

	cx := int(width) / 2
	cy := g.TitleHeight + g.OuterRadius

	if !b.get(0, 0) || !b.get(int(width)-1, g.TitleHeight-1) {
		t.Fatalf("title strip must be solid")
	}

	// The ring between inner and outer radius is opaque.
	ringR := (g.InnerRadius + g.OuterRadius) / 2
	if !b.get(cx+ringR, cy) || !b.get(cx, cy+ringR) {
		t.Fatalf("ring at radius %d must be set", ringR)
	}

	// The very center stays clear so the click target is visible.
	if b.get(cx+1, cy+1) {
		t.Fatalf("center must be clear")
	}

	// The crosshair bars bridge the gap between the cleared center disk
	// and the ring; off-axis points at the same radius stay clear.
	barR := g.InnerRadius - g.CrossGap/2
	if !b.get(cx, cy-barR) || !b.get(cx, cy+barR) {
		t.Fatalf("vertical bar at radius %d must be set", barR)
	}
	if !b.get(cx-barR, cy) || !b.get(cx+barR, cy) {
		t.Fatalf("horizontal bar at radius %d must be set", barR)
	}
	if b.get(cx+barR, cy-barR) {
		t.Fatalf("off-axis point inside the gap must be clear")
	}
}

func TestCrosshairMaskCornersOutsideDisk(t *testing.T) {
	g := DefaultGeometry()
	width, height := g.WindowSize()
	b := crosshairMask(g, width, height)

	if b.get(0, int(height)-1) || b.get(int(width)-1, int(height)-1) {
		t.Fatalf("bottom corners lie outside the disk and must be clear")
	}
}

func TestWindowSizeContainsCrosshair(t *testing.T) {
	g := DefaultGeometry()
	width, height := g.WindowSize()
	if int(width) < 2*g.OuterRadius+1 {
		t.Fatalf("width %d cannot contain the outer disk", width)
	}
	if int(height) != int(width)+g.TitleHeight {
		t.Fatalf("height %d must add the title strip to the square side", height)
	}
}
