package geo

import (
	"fmt"
	"math"
)

type Box struct {
	TopLeft *Point
	Width   float64
	Height  float64
}

func NewBox(tl *Point, width, height float64) *Box {
	return &Box{
		TopLeft: tl,
		Width:   width,
		Height:  height,
	}
}

func (b *Box) Center() *Point {
	return NewPoint(b.CenterX(), b.CenterY())
}

func (b *Box) CenterX() float64 {
	return b.TopLeft.X + b.Width/2
}

func (b *Box) CenterY() float64 {
	return b.TopLeft.Y + b.Height/2
}

func (b *Box) Left() float64 {
	return b.TopLeft.X
}

func (b *Box) Top() float64 {
	return b.TopLeft.Y
}

func (b *Box) Right() float64 {
	return b.TopLeft.X + b.Width
}

func (b *Box) Bottom() float64 {
	return b.TopLeft.Y + b.Height
}

// SetCenter moves the box so that its center is at (x, y).
func (b *Box) SetCenter(x, y float64) {
	b.TopLeft.X = x - b.Width/2
	b.TopLeft.Y = y - b.Height/2
}

func (b *Box) MoveBy(dx, dy float64) {
	b.TopLeft.X += dx
	b.TopLeft.Y += dy
}

// Diagonal is the length of the box's diagonal.
func (b *Box) Diagonal() float64 {
	return math.Sqrt(b.Width*b.Width + b.Height*b.Height)
}

// Intersects reports whether the two boxes share any point. Touching edges count.
func (b *Box) Intersects(o *Box) bool {
	if b.Right() < o.Left() || o.Right() < b.Left() {
		return false
	}
	if b.Bottom() < o.Top() || o.Bottom() < b.Top() {
		return false
	}
	return true
}

// ClipPoint returns where the ray from the center of b towards (x, y) leaves b.
// If (x, y) is the center itself, the center is returned.
func (b *Box) ClipPoint(x, y float64) (float64, float64) {
	cx, cy := b.CenterX(), b.CenterY()
	dx, dy := x-cx, y-cy
	if dx == 0 && dy == 0 {
		return cx, cy
	}
	t := math.Inf(1)
	if dx != 0 {
		t = (b.Width / 2) / math.Abs(dx)
	}
	if dy != 0 {
		t = math.Min(t, (b.Height/2)/math.Abs(dy))
	}
	return cx + t*dx, cy + t*dy
}

// ClipPoints returns the clip points of the line between the centers of b and o on each box:
// (bx, by) on b and (ox, oy) on o. overlap is true when the boxes intersect, in which case the
// clip points are meaningless and the centers are returned.
func (b *Box) ClipPoints(o *Box) (bx, by, ox, oy float64, overlap bool) {
	if b.Intersects(o) {
		return b.CenterX(), b.CenterY(), o.CenterX(), o.CenterY(), true
	}
	bx, by = b.ClipPoint(o.CenterX(), o.CenterY())
	ox, oy = o.ClipPoint(b.CenterX(), b.CenterY())
	return bx, by, ox, oy, false
}

// SeparationAmount returns how far o must move, and b in the opposite direction, to resolve
// their overlap along the single axis with the smaller overlap, plus buffer.
// Boxes that do not intersect need no separation.
// When one box contains the other on an axis, the overlap on that axis is extended by the
// shorter distance the inner box would have to travel to escape.
// Coincident centers push o towards negative coordinates.
func (b *Box) SeparationAmount(o *Box, buffer float64) (float64, float64) {
	if !b.Intersects(o) {
		return 0, 0
	}
	overlapX := math.Min(b.Right(), o.Right()) - math.Max(b.Left(), o.Left())
	overlapY := math.Min(b.Bottom(), o.Bottom()) - math.Max(b.Top(), o.Top())

	if b.Left() <= o.Left() && b.Right() >= o.Right() {
		overlapX += math.Min(o.Left()-b.Left(), b.Right()-o.Right())
	} else if o.Left() <= b.Left() && o.Right() >= b.Right() {
		overlapX += math.Min(b.Left()-o.Left(), o.Right()-b.Right())
	}
	if b.Top() <= o.Top() && b.Bottom() >= o.Bottom() {
		overlapY += math.Min(o.Top()-b.Top(), b.Bottom()-o.Bottom())
	} else if o.Top() <= b.Top() && o.Bottom() >= b.Bottom() {
		overlapY += math.Min(b.Top()-o.Top(), o.Bottom()-b.Bottom())
	}

	dirX := 1.
	if b.CenterX() >= o.CenterX() {
		dirX = -1
	}
	dirY := 1.
	if b.CenterY() >= o.CenterY() {
		dirY = -1
	}

	if overlapX <= overlapY {
		return dirX * (overlapX/2 + buffer), 0
	}
	return 0, dirY * (overlapY/2 + buffer)
}

// Union returns the smallest box containing every box in boxes, or nil if there are none.
func Union(boxes ...*Box) *Box {
	if len(boxes) == 0 {
		return nil
	}
	left, top := math.Inf(1), math.Inf(1)
	right, bottom := math.Inf(-1), math.Inf(-1)
	for _, b := range boxes {
		left = math.Min(left, b.Left())
		top = math.Min(top, b.Top())
		right = math.Max(right, b.Right())
		bottom = math.Max(bottom, b.Bottom())
	}
	return NewBox(NewPoint(left, top), right-left, bottom-top)
}

func (b *Box) ToString() string {
	if b == nil {
		return ""
	}
	return fmt.Sprintf("{TopLeft: %s, Width: %.0f, Height: %.0f}", b.TopLeft.ToString(), b.Width, b.Height)
}
