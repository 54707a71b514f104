package morton

// Box is an axis-aligned query rectangle in quantized (X, Y) space.
type Box struct {
	XMin, XMax int64
	YMin, YMax int64
}

// contains reports whether the quadtree cell spanning (xmin,ymin)-(xmax,ymax)
// is fully inside the box.
func (b Box) contains(xmin, ymin, xmax, ymax int64) bool {
	return xmin >= b.XMin && xmax <= b.XMax && ymin >= b.YMin && ymax <= b.YMax
}

// disjoint reports whether the cell spanning (xmin,ymin)-(xmax,ymax) shares
// no area with the box.
func (b Box) disjoint(xmin, ymin, xmax, ymax int64) bool {
	return xmax < b.XMin || xmin > b.XMax || ymax < b.YMin || ymin > b.YMax
}

// Range is an inclusive, half-open-free integer interval of head (or tail)
// values, fully contained within the queried box.
type Range struct {
	Lo, Hi int64
}

// Result is the output of Plan: a set of fully-contained ranges and a set of
// overlap singletons that need refinement one level down (per-point for head
// ranges, per-tail-value within a block for a refined head).
type Result struct {
	Ranges   []Range
	Overlaps []int64
}

// Plan walks the quadtree cell labeled by the bit-prefix start (p bits, 0
// for dataset-root queries), descending 2 bits (one quadtree level) at a
// time across the body of length bodyLen, with a further remLen bits below
// the body retained as an ignored suffix. It classifies every surviving node
// against q as fully contained, disjoint, or partially overlapping, pruning
// the first two and descending into the third, until no bits remain.
//
// For full-dataset head planning: start=0, bodyLen=H, remLen=T.
// For refining a single overlap head: start=head, bodyLen=T, remLen=0.
func Plan(q Box, start int64, bodyLen, remLen int) Result {
	var res Result

	frontier := []int64{0}
	fixed := 0
	base := start << uint(bodyLen+remLen)
	originOffset := start << uint(bodyLen)

	for {
		remaining := bodyLen - fixed
		quantum := remaining + remLen
		next := make([]int64, 0, len(frontier)*4)

		for _, s := range frontier {
			sMin := base | (s << uint(quantum))
			sMax := sMin + (int64(1)<<uint(quantum) - 1)

			xMin, yMin := Decode(sMin)
			xMax, yMax := Decode(sMax)

			switch {
			case q.contains(xMin, yMin, xMax, yMax):
				res.Ranges = append(res.Ranges, Range{
					Lo: (sMin >> uint(remLen)) - originOffset,
					Hi: (sMax >> uint(remLen)) - originOffset,
				})
			case q.disjoint(xMin, yMin, xMax, yMax):
				// pruned
			case remaining >= 2:
				next = append(next, s<<2, s<<2|1, s<<2|2, s<<2|3)
			case remaining == 1:
				res.Overlaps = append(res.Overlaps, s<<1, s<<1|1)
			default:
				res.Overlaps = append(res.Overlaps, s)
			}
		}

		if remaining <= 1 || len(next) == 0 {
			break
		}
		frontier = next
		fixed += 2
	}

	return res
}
