package diagram

import "math"

// axisEpsilon is the smallest direction component treated as non-zero when
// clipping against a rectangle.
const axisEpsilon = 0.01

// Intersect returns the point where a ray from the node's center in
// direction (dx, dy) leaves the node's shape. A zero direction returns the
// center.
func Intersect(n Node, dx, dy float64) Point {
	c := n.Center()
	length := math.Hypot(dx, dy)
	if length == 0 {
		return c
	}
	if n.Kind == KindOval {
		return ellipseIntersection(c, n.Width/2, n.Height/2, dx, dy)
	}
	return rectIntersection(c, n.Width/2, n.Height/2, dx/length, dy/length)
}

func rectIntersection(c Point, hw, hh, dirX, dirY float64) Point {
	tx, ty := math.Inf(1), math.Inf(1)
	if math.Abs(dirX) >= axisEpsilon {
		tx = hw / math.Abs(dirX)
	}
	if math.Abs(dirY) >= axisEpsilon {
		ty = hh / math.Abs(dirY)
	}
	t := math.Min(tx, ty)
	return Point{c.X + dirX*t, c.Y + dirY*t}
}

func ellipseIntersection(c Point, a, b, dx, dy float64) Point {
	theta := math.Atan2(dy, dx)
	cos, sin := math.Cos(theta), math.Sin(theta)
	t := 1 / math.Sqrt((cos/a)*(cos/a)+(sin/b)*(sin/b))
	return Point{c.X + cos*t, c.Y + sin*t}
}

// Connect computes the connector path between two nodes.
func Connect(from, to Node, c Connector) Path {
	fc, tc := from.Center(), to.Center()
	dx, dy := tc.X-fc.X, tc.Y-fc.Y

	if c == ConnectorCurved {
		return Path{
			Kind:  PathCurved,
			Start: fc,
			End:   tc,
			C1:    Point{fc.X + dx*0.5, fc.Y},
			C2:    Point{tc.X - dx*0.5, tc.Y},
		}
	}
	return Path{
		Kind:  PathStraight,
		Start: Intersect(from, dx, dy),
		End:   Intersect(to, -dx, -dy),
	}
}
