package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ResultPoint is one row of a transient query result relation.
type ResultPoint struct {
	X, Y, Z float64
}

// CreateResultRelation creates the transient `<queryName>` relation a query
// writes its candidate points into, as a PostGIS 3D point geometry column.
func (s *Store) CreateResultRelation(ctx context.Context, queryName string) error {
	sql := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (point geometry(PointZ))`, queryName)
	if _, err := s.pool.Exec(ctx, sql); err != nil {
		return errors.Join(ErrStoreError, err)
	}
	return nil
}

// InsertResultPoints bulk-inserts decoded candidate points into queryName.
func (s *Store) InsertResultPoints(ctx context.Context, queryName string, points []ResultPoint) error {
	if len(points) == 0 {
		return nil
	}

	sql := fmt.Sprintf(`INSERT INTO %s (point) VALUES (ST_MakePoint($1, $2, $3))`, queryName)
	batch := &pgx.Batch{}
	for _, p := range points {
		batch.Queue(sql, p.X, p.Y, p.Z)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range points {
		if _, err := br.Exec(); err != nil {
			return errors.Join(ErrStoreError, err)
		}
	}
	return nil
}

// RefineCircle deletes every point in queryName outside the circle
// (center, radius), the ST_DWithin refinement step circle_query performs
// after the coarse range-planner filter.
func (s *Store) RefineCircle(ctx context.Context, queryName string, centerX, centerY, radius float64) error {
	sql := fmt.Sprintf(`DELETE FROM %s WHERE NOT ST_DWithin(point, ST_MakePoint($1, $2), $3)`, queryName)
	if _, err := s.pool.Exec(ctx, sql, centerX, centerY, radius); err != nil {
		return errors.Join(ErrStoreError, err)
	}
	return nil
}

// RefinePolygon deletes every point in queryName outside the polygon given
// as WKT, the ST_Within refinement step polygon_query performs.
func (s *Store) RefinePolygon(ctx context.Context, queryName, wkt string) error {
	sql := fmt.Sprintf(`DELETE FROM %s WHERE NOT ST_Within(point, ST_GeomFromText($1))`, queryName)
	if _, err := s.pool.Exec(ctx, sql, wkt); err != nil {
		return errors.Join(ErrStoreError, err)
	}
	return nil
}

// RefineMaxZ deletes every point in queryName whose Z exceeds maxZ.
func (s *Store) RefineMaxZ(ctx context.Context, queryName string, maxZ float64) error {
	sql := fmt.Sprintf(`DELETE FROM %s WHERE ST_Z(point) > $1`, queryName)
	if _, err := s.pool.Exec(ctx, sql, maxZ); err != nil {
		return errors.Join(ErrStoreError, err)
	}
	return nil
}

// RefineMinZ deletes every point in queryName whose Z is below minZ.
func (s *Store) RefineMinZ(ctx context.Context, queryName string, minZ float64) error {
	sql := fmt.Sprintf(`DELETE FROM %s WHERE ST_Z(point) < $1`, queryName)
	if _, err := s.pool.Exec(ctx, sql, minZ); err != nil {
		return errors.Join(ErrStoreError, err)
	}
	return nil
}

// FetchResultPoints reads back every surviving point in queryName.
func (s *Store) FetchResultPoints(ctx context.Context, queryName string) ([]ResultPoint, error) {
	sql := fmt.Sprintf(`SELECT ST_X(point), ST_Y(point), ST_Z(point) FROM %s`, queryName)
	rows, err := s.pool.Query(ctx, sql)
	if err != nil {
		return nil, errors.Join(ErrStoreError, err)
	}
	defer rows.Close()

	var points []ResultPoint
	for rows.Next() {
		var p ResultPoint
		if err := rows.Scan(&p.X, &p.Y, &p.Z); err != nil {
			return nil, errors.Join(ErrStoreError, err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrStoreError, err)
	}
	return points, nil
}

// DropResultRelation removes the transient result relation. The executor
// calls it to discard a partially-built result after an aborted query; a
// completed result is left in place for a later export to read.
func (s *Store) DropResultRelation(ctx context.Context, queryName string) error {
	sql := fmt.Sprintf(`DROP TABLE IF EXISTS %s`, queryName)
	if _, err := s.pool.Exec(ctx, sql); err != nil {
		return errors.Join(ErrStoreError, err)
	}
	return nil
}
