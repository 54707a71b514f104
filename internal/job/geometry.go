package job

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cynthiacai56/splitSFC-1m/internal/query"
)

// ParseGeometry decodes q's raw geometry JSON per its Mode: `[x0,x1,y0,y1]`
// for bbox, `[[cx,cy], r]` for circle, and a bare WKT string for polygon.
func ParseGeometry(q Query) (query.Geometry, error) {
	switch q.Mode {
	case "bbox":
		var bounds [4]float64
		if err := json.Unmarshal(q.Geometry, &bounds); err != nil {
			return query.Geometry{}, errors.Join(ErrBadInputFile, err)
		}
		return query.NewBbox(bounds[0], bounds[1], bounds[2], bounds[3]), nil

	case "circle":
		var raw [2]json.RawMessage
		if err := json.Unmarshal(q.Geometry, &raw); err != nil {
			return query.Geometry{}, errors.Join(ErrBadInputFile, err)
		}
		var center [2]float64
		var radius float64
		if err := json.Unmarshal(raw[0], &center); err != nil {
			return query.Geometry{}, errors.Join(ErrBadInputFile, err)
		}
		if err := json.Unmarshal(raw[1], &radius); err != nil {
			return query.Geometry{}, errors.Join(ErrBadInputFile, err)
		}
		return query.NewCircle(center[0], center[1], radius), nil

	case "polygon":
		var wkt string
		if err := json.Unmarshal(q.Geometry, &wkt); err != nil {
			return query.Geometry{}, errors.Join(ErrBadInputFile, err)
		}
		return query.NewPolygon(wkt), nil

	case "nn":
		return query.Geometry{Kind: query.Nn}, nil

	default:
		return query.Geometry{}, fmt.Errorf("%w: unknown query mode %q", ErrBadInputFile, q.Mode)
	}
}
