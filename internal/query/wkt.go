package query

import (
	"errors"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

// parseWKTPolygon decodes wkt text into its exterior ring, used only to
// compute the query envelope; the exact point-in-polygon refinement itself
// is delegated to PostGIS's ST_Within (internal/store.RefinePolygon).
func parseWKTPolygon(wktText string) (orb.Ring, error) {
	geom, err := wkt.Unmarshal(wktText)
	if err != nil {
		return nil, errors.Join(ErrBadQueryExtent, err)
	}

	poly, ok := geom.(orb.Polygon)
	if !ok || len(poly) == 0 {
		return nil, errors.Join(ErrBadQueryExtent, errors.New("wkt: not a polygon"))
	}

	return poly[0], nil
}
