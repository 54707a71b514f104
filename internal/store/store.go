// Package store is the relational block-store contract: create the
// metadata/point tables, bulk-load blocks, index them, and answer both the
// coarse range-table join and the exact set-membership queries the range
// planner's two outputs need. The concrete implementation is Postgres +
// PostGIS.
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cynthiacai56/splitSFC-1m/internal/block"
	"github.com/cynthiacai56/splitSFC-1m/internal/metadata"
	"github.com/cynthiacai56/splitSFC-1m/internal/morton"
)

// Store is a dataset-scoped handle onto a Postgres/PostGIS connection pool:
// every table it creates and queries is namespaced by the dataset name,
// following the "metadata_<name>" / "point_<name>" / "btree_idx_<name>"
// convention.
type Store struct {
	pool *pgxpool.Pool

	metaTable  string
	pointTable string
	btreeIndex string
}

// Open establishes a connection pool against dsn and names this store's
// tables after name.
func Open(ctx context.Context, dsn, name string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Join(ErrStoreError, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Join(ErrStoreError, err)
	}

	return &Store{
		pool:       pool,
		metaTable:  "metadata_" + name,
		pointTable: "point_" + name,
		btreeIndex: "btree_idx_" + name,
	}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// CreateTables creates the dataset's metadata and point tables (and the
// PostGIS extension) if they do not already exist.
func (s *Store) CreateTables(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS postgis"); err != nil {
		return errors.Join(ErrStoreError, err)
	}

	metaSQL, err := createTableSQL(s.metaTable, &metaRow{})
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, metaSQL); err != nil {
		return errors.Join(ErrStoreError, err)
	}

	pointSQL, err := createTableSQL(s.pointTable, &pointRow{})
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, pointSQL); err != nil {
		return errors.Join(ErrStoreError, err)
	}

	return nil
}

// LoadDataset inserts d's descriptor row, bulk-loads blocks, and builds the
// B-tree index on sfc_head as a single transaction: it commits exactly once
// after all three steps succeed, and rolls back entirely if any of them
// fails, leaving the store exactly as it was before the call. This is the
// atomic unit a single-file ingest commits as.
func (s *Store) LoadDataset(ctx context.Context, d metadata.Descriptor, blocks []block.Block) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return errors.Join(ErrStoreError, err)
	}
	defer tx.Rollback(ctx)

	metaSQL := fmt.Sprintf(`INSERT INTO %s VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`, s.metaTable)
	if _, err := tx.Exec(ctx, metaSQL,
		d.Name, d.SRID, d.PointCount, d.HeadLen, d.TailLen,
		d.Scales[:], d.Offsets[:], d.BBox[:]); err != nil {
		return errors.Join(ErrStoreError, err)
	}

	var buf bytes.Buffer
	if err := block.WriteCSV(&buf, blocks); err != nil {
		return errors.Join(ErrStoreError, err)
	}
	if _, err := tx.Conn().PgConn().CopyFrom(ctx, &buf, s.copyPointsSQL()); err != nil {
		return errors.Join(ErrStoreError, err)
	}

	idxSQL := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s USING btree (sfc_head)`, s.btreeIndex, s.pointTable)
	if _, err := tx.Exec(ctx, idxSQL); err != nil {
		return errors.Join(ErrStoreError, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Join(ErrStoreError, err)
	}
	return nil
}

// InsertMetadata writes d's single descriptor row. Used by directory-mode
// ingest, where the metadata insert, per-file bulk loads, and index build
// are necessarily split across the coordinator and worker sessions that
// partition the files between them; LoadDataset is the single-file
// equivalent that can hold all three in one transaction.
func (s *Store) InsertMetadata(ctx context.Context, d metadata.Descriptor) error {
	sql := fmt.Sprintf(`INSERT INTO %s VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`, s.metaTable)
	_, err := s.pool.Exec(ctx, sql,
		d.Name, d.SRID, d.PointCount, d.HeadLen, d.TailLen,
		d.Scales[:], d.Offsets[:], d.BBox[:])
	if err != nil {
		return errors.Join(ErrStoreError, err)
	}
	return nil
}

// LoadMetadata reads back the dataset's descriptor row, validating its
// invariants before returning it.
func (s *Store) LoadMetadata(ctx context.Context) (metadata.Descriptor, error) {
	sql := fmt.Sprintf(`SELECT name, srid, point_count, head_length, tail_length, scales, offsets, bbox FROM %s`, s.metaTable)

	var d metadata.Descriptor
	var scales, offsets, bbox []float64

	row := s.pool.QueryRow(ctx, sql)
	if err := row.Scan(&d.Name, &d.SRID, &d.PointCount, &d.HeadLen, &d.TailLen, &scales, &offsets, &bbox); err != nil {
		return metadata.Descriptor{}, errors.Join(ErrStoreError, err)
	}

	if len(scales) != 3 || len(offsets) != 3 || len(bbox) != 6 {
		return metadata.Descriptor{}, fmt.Errorf("%w: scales/offsets/bbox have %d/%d/%d values, want 3/3/6",
			metadata.ErrCorruptDescriptor, len(scales), len(offsets), len(bbox))
	}

	copy(d.Scales[:], scales)
	copy(d.Offsets[:], offsets)
	copy(d.BBox[:], bbox)

	if err := d.Validate(); err != nil {
		return metadata.Descriptor{}, err
	}

	return d, nil
}

// CopyPoints bulk-loads blocks into the point table by serializing them as
// CSV (curly-brace array literals) and streaming that through COPY FROM
// STDIN.
func (s *Store) CopyPoints(ctx context.Context, blocks []block.Block) error {
	var buf bytes.Buffer
	if err := block.WriteCSV(&buf, blocks); err != nil {
		return errors.Join(ErrStoreError, err)
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return errors.Join(ErrStoreError, err)
	}
	defer conn.Release()

	if _, err := conn.Conn().PgConn().CopyFrom(ctx, &buf, s.copyPointsSQL()); err != nil {
		return errors.Join(ErrStoreError, err)
	}
	return nil
}

func (s *Store) copyPointsSQL() string {
	return fmt.Sprintf(`COPY %s (sfc_head, sfc_tail, z) FROM STDIN WITH (FORMAT csv, HEADER true)`, s.pointTable)
}

// CreateBTreeIndex builds the B-tree index on sfc_head that every query
// path (range-table join and set-membership) relies on.
func (s *Store) CreateBTreeIndex(ctx context.Context) error {
	sql := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s USING btree (sfc_head)`, s.btreeIndex, s.pointTable)
	if _, err := s.pool.Exec(ctx, sql); err != nil {
		return errors.Join(ErrStoreError, err)
	}
	return nil
}

// BlocksInRanges fetches every block whose head falls in any of ranges,
// via a temporary RangeTable BETWEEN-joined against the point table.
func (s *Store) BlocksInRanges(ctx context.Context, ranges []morton.Range) ([]block.Block, error) {
	if len(ranges) == 0 {
		return nil, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, errors.Join(ErrStoreError, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `CREATE TEMP TABLE RangeTable (lo BIGINT, hi BIGINT) ON COMMIT DROP`); err != nil {
		return nil, errors.Join(ErrStoreError, err)
	}

	rows := make([][]any, len(ranges))
	for i, r := range ranges {
		rows[i] = []any{r.Lo, r.Hi}
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"rangetable"}, []string{"lo", "hi"}, pgx.CopyFromRows(rows)); err != nil {
		return nil, errors.Join(ErrStoreError, err)
	}

	sql := fmt.Sprintf(`SELECT p.sfc_head, p.sfc_tail, p.z FROM %s p JOIN RangeTable r ON p.sfc_head BETWEEN r.lo AND r.hi`, s.pointTable)
	blocks, err := s.scanBlocks(ctx, tx, sql)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Join(ErrStoreError, err)
	}
	return blocks, nil
}

// BlocksWithHeads fetches every block whose head is a member of heads, the
// set-membership query the planner's overlap output needs.
func (s *Store) BlocksWithHeads(ctx context.Context, heads []int64) ([]block.Block, error) {
	if len(heads) == 0 {
		return nil, nil
	}

	sql := fmt.Sprintf(`SELECT sfc_head, sfc_tail, z FROM %s WHERE sfc_head = ANY($1)`, s.pointTable)
	rows, err := s.pool.Query(ctx, sql, heads)
	if err != nil {
		return nil, errors.Join(ErrStoreError, err)
	}
	defer rows.Close()

	return collectBlocks(rows)
}

func (s *Store) scanBlocks(ctx context.Context, tx pgx.Tx, sql string) ([]block.Block, error) {
	rows, err := tx.Query(ctx, sql)
	if err != nil {
		return nil, errors.Join(ErrStoreError, err)
	}
	defer rows.Close()

	return collectBlocks(rows)
}

func collectBlocks(rows pgx.Rows) ([]block.Block, error) {
	var blocks []block.Block
	for rows.Next() {
		var b block.Block
		if err := rows.Scan(&b.Head, &b.Tails, &b.Zs); err != nil {
			return nil, errors.Join(ErrStoreError, err)
		}
		blocks = append(blocks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrStoreError, err)
	}
	return blocks, nil
}
