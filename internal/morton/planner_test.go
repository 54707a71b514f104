package morton

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanFullGrid(t *testing.T) {
	// 4x4 grid, H=4, T=0, start=0, Q = whole grid.
	q := Box{XMin: 0, XMax: 3, YMin: 0, YMax: 3}
	res := Plan(q, 0, 4, 0)

	assert.Equal(t, []Range{{Lo: 0, Hi: 15}}, res.Ranges)
	assert.Empty(t, res.Overlaps)
}

func TestPlanPartialGrid(t *testing.T) {
	// Same grid, Q=[1,2]x[1,2]; expect coverage of exactly the 4 cells
	// (1,1),(1,2),(2,1),(2,2) and no others, with no overlaps.
	q := Box{XMin: 1, XMax: 2, YMin: 1, YMax: 2}
	res := Plan(q, 0, 4, 0)
	assert.Empty(t, res.Overlaps)

	want := map[[2]int64]bool{
		{1, 1}: true, {1, 2}: true, {2, 1}: true, {2, 2}: true,
	}

	covered := map[[2]int64]bool{}
	for _, r := range res.Ranges {
		for k := r.Lo; k <= r.Hi; k++ {
			x, y := Decode(k)
			covered[[2]int64{x, y}] = true
		}
	}
	assert.Equal(t, want, covered)
}

func TestPlanOutsideExtent(t *testing.T) {
	q := Box{XMin: 100, XMax: 200, YMin: 100, YMax: 200}
	res := Plan(q, 0, 4, 0)
	assert.Empty(t, res.Ranges)
	assert.Empty(t, res.Overlaps)
}

// TestPlanSoundness checks property 4: every point whose key falls in an
// emitted range lies inside Q, and every point inside Q is covered by some
// range or some overlap's later per-tail refinement (here T=0 so overlaps
// would themselves be exact singletons too).
func TestPlanSoundness(t *testing.T) {
	const grid = 16 // 16x16 grid -> H=8 (two 4-bit axes), T=0
	q := Box{XMin: 3, YMin: 2, XMax: 11, YMax: 9}
	res := Plan(q, 0, 8, 0)

	covered := map[[2]int64]bool{}
	for _, r := range res.Ranges {
		for k := r.Lo; k <= r.Hi; k++ {
			x, y := Decode(k)
			requireInRange(t, x, y, q)
			covered[[2]int64{x, y}] = true
		}
	}
	for _, k := range res.Overlaps {
		x, y := Decode(k)
		if inBox(x, y, q) {
			covered[[2]int64{x, y}] = true
		}
	}

	for x := int64(0); x < grid; x++ {
		for y := int64(0); y < grid; y++ {
			if inBox(x, y, q) {
				assert.True(t, covered[[2]int64{x, y}], "point (%d,%d) should be covered", x, y)
			}
		}
	}
}

func inBox(x, y int64, q Box) bool {
	return x >= q.XMin && x <= q.XMax && y >= q.YMin && y <= q.YMax
}

func requireInRange(t *testing.T, x, y int64, q Box) {
	t.Helper()
	assert.True(t, inBox(x, y, q), "decoded point (%d,%d) from a contained range must lie in Q", x, y)
}
