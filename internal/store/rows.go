package store

// metaRow is the metadata table shape: one row per dataset naming its SRID,
// split, quantization constants, and bbox.
type metaRow struct {
	Name       string     `db:"col=name,type='TEXT'"`
	SRID       int        `db:"col=srid,type='INT'"`
	PointCount int64      `db:"col=point_count,type='BIGINT'"`
	HeadLen    int        `db:"col=head_length,type='INT'"`
	TailLen    int        `db:"col=tail_length,type='INT'"`
	Scales     [3]float64 `db:"col=scales,type='DOUBLE PRECISION[]'"`
	Offsets    [3]float64 `db:"col=offsets,type='DOUBLE PRECISION[]'"`
	BBox       [6]float64 `db:"col=bbox,type='DOUBLE PRECISION[]'"`
}

// pointRow is the point table shape: one row per distinct Morton-key head.
type pointRow struct {
	Head  int64     `db:"col=sfc_head,type='BIGINT',primary"`
	Tails []int64   `db:"col=sfc_tail,type='BIGINT[]'"`
	Zs    []float64 `db:"col=z,type='DOUBLE PRECISION[]'"`
}
