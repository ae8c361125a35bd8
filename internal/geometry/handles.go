package geometry

import (
	"math"

	"threatforge/internal/domain"
)

// HandlePair determines the handle pair that minimizes path length between two
// rectangles and keeps the edge out of the node interiors.
func HandlePair(source, target Rect) (domain.Handle, domain.Handle) {
	sc := source.Center()
	tc := target.Center()
	dx := tc.X - sc.X
	dy := tc.Y - sc.Y

	var sourceSide, targetSide domain.HandleSide
	if math.Abs(dx) > math.Abs(dy) {
		if dx > 0 {
			sourceSide, targetSide = domain.SideRight, domain.SideLeft
		} else {
			sourceSide, targetSide = domain.SideLeft, domain.SideRight
		}
	} else {
		if dy > 0 {
			sourceSide, targetSide = domain.SideBottom, domain.SideTop
		} else {
			sourceSide, targetSide = domain.SideTop, domain.SideBottom
		}
	}

	return domain.NewHandle(sourceSide, domain.RoleSource), domain.NewHandle(targetSide, domain.RoleTarget)
}

// Anchor returns the point on r's perimeter where a handle on the given side attaches
func Anchor(r Rect, side domain.HandleSide) domain.Point {
	c := r.Center()
	switch side {
	case domain.SideTop:
		return domain.Point{X: c.X, Y: r.Y}
	case domain.SideBottom:
		return domain.Point{X: c.X, Y: r.Y + r.Height}
	case domain.SideLeft:
		return domain.Point{X: r.X, Y: c.Y}
	case domain.SideRight:
		return domain.Point{X: r.X + r.Width, Y: c.Y}
	}
	return c
}
