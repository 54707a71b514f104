package query

// Kind discriminates the Geometry tagged union.
type Kind int

const (
	// Bbox is an axis-aligned world-coordinate rectangle.
	Bbox Kind = iota
	// Circle is a world-coordinate center point plus radius.
	Circle
	// Polygon is an arbitrary WKT polygon.
	Polygon
	// Nn is nearest-neighbor search, out of scope for this engine; kept as
	// a recognized, unimplemented kind so callers get a clear
	// "not developed" rather than an unknown-geometry error.
	Nn
)

// Geometry is the query shape passed to Execute: exactly one of its fields
// is meaningful, selected by Kind.
type Geometry struct {
	Kind Kind

	// Bbox fields (world coordinates).
	XMin, XMax, YMin, YMax float64

	// Circle fields (world coordinates).
	CenterX, CenterY, Radius float64

	// Polygon field: WKT "POLYGON(...)" text.
	WKT string
}

// NewBbox builds a Bbox geometry.
func NewBbox(xMin, xMax, yMin, yMax float64) Geometry {
	return Geometry{Kind: Bbox, XMin: xMin, XMax: xMax, YMin: yMin, YMax: yMax}
}

// NewCircle builds a Circle geometry.
func NewCircle(centerX, centerY, radius float64) Geometry {
	return Geometry{Kind: Circle, CenterX: centerX, CenterY: centerY, Radius: radius}
}

// NewPolygon builds a Polygon geometry from WKT text.
func NewPolygon(wkt string) Geometry {
	return Geometry{Kind: Polygon, WKT: wkt}
}

// envelope returns the axis-aligned world-coordinate bounding box the
// range planner is run against. Every geometry kind first narrows to its
// envelope, then (for circle/polygon) refines with an exact PostGIS test.
func (g Geometry) envelope() (xMin, xMax, yMin, yMax float64, err error) {
	switch g.Kind {
	case Bbox:
		return g.XMin, g.XMax, g.YMin, g.YMax, nil
	case Circle:
		return g.CenterX - g.Radius, g.CenterX + g.Radius, g.CenterY - g.Radius, g.CenterY + g.Radius, nil
	case Polygon:
		ring, err := parseWKTPolygon(g.WKT)
		if err != nil {
			return 0, 0, 0, 0, err
		}
		bound := ring.Bound()
		return bound.Min[0], bound.Max[0], bound.Min[1], bound.Max[1], nil
	default:
		return 0, 0, 0, 0, errUnsupportedGeometry
	}
}
