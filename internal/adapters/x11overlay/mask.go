package x11overlay

// Geometry describes the crosshair shape. All values are pixels; the
// title height reserves a strip at the top of the window for the window
// manager's drag decoration, outside the visible crosshair.
type Geometry struct {
	OuterRadius int
	InnerRadius int
	CrossGap    int
	BarWidth    int
	TitleHeight int
}

func DefaultGeometry() Geometry {
	return Geometry{
		OuterRadius: 48,
		InnerRadius: 42,
		CrossGap:    10,
		BarWidth:    2,
		TitleHeight: 16,
	}
}

// WindowSize is the natural window size: the crosshair's bounding square
// plus the reserved title strip.
func (g Geometry) WindowSize() (uint16, uint16) {
	side := 2*g.OuterRadius + 1
	return uint16(side), uint16(side + g.TitleHeight)
}

// bitmap is a 1-bit-per-pixel shape mask in X XYBitmap layout: LSB-first
// bit order, scanlines padded to 32 bits. Xorg reports this format in
// its connection setup; big-endian servers are not supported.
type bitmap struct {
	width  uint16
	height uint16
	stride int
	data   []byte
}

func newBitmap(width, height uint16) *bitmap {
	stride := (int(width) + 31) / 32 * 4
	return &bitmap{
		width:  width,
		height: height,
		stride: stride,
		data:   make([]byte, stride*int(height)),
	}
}

func (b *bitmap) set(x, y int, v bool) {
	if x < 0 || y < 0 || x >= int(b.width) || y >= int(b.height) {
		return
	}
	idx := y*b.stride + x/8
	bit := byte(1) << (x % 8)
	if v {
		b.data[idx] |= bit
	} else {
		b.data[idx] &^= bit
	}
}

func (b *bitmap) get(x, y int) bool {
	if x < 0 || y < 0 || x >= int(b.width) || y >= int(b.height) {
		return false
	}
	return b.data[y*b.stride+x/8]&(1<<(x%8)) != 0
}

func (b *bitmap) fillRect(x0, y0, w, h int, v bool) {
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			b.set(x, y, v)
		}
	}
}

func (b *bitmap) fillDisk(cx, cy, r int, v bool) {
	if r < 0 {
		return
	}
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				b.set(cx+dx, cy+dy, v)
			}
		}
	}
}

// titleOnlyMask is the initial shape before the window manager assigns
// real geometry: the title strip and nothing else.
func titleOnlyMask(g Geometry, width, height uint16) *bitmap {
	b := newBitmap(width, height)
	b.fillRect(0, 0, int(width), g.TitleHeight, true)
	return b
}

// crosshairMask renders the full shape: the solid title strip on top and
// a ring with crosshair bars below it. The bars reach from just inside
// the inner ring boundary out to the ring edge; the innermost disk stays
// clear so only the crosshair crosses the gap.
func crosshairMask(g Geometry, width, height uint16) *bitmap {
	b := newBitmap(width, height)
	b.fillRect(0, 0, int(width), g.TitleHeight, true)

	cx := int(width) / 2
	cy := g.TitleHeight + g.OuterRadius

	b.fillDisk(cx, cy, g.OuterRadius, true)
	b.fillDisk(cx, cy, g.InnerRadius, false)

	half := g.BarWidth / 2
	span := 2*g.OuterRadius + 1
	b.fillRect(cx-half, cy-g.OuterRadius, g.BarWidth, span, true)
	b.fillRect(cx-g.OuterRadius, cy-half, span, g.BarWidth, true)

	b.fillDisk(cx, cy, g.InnerRadius-g.CrossGap, false)
	return b
}
