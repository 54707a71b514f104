package morton

// Split is the (head, tail) bit-length pair derived from a dataset's
// quantized extent: a key's head selects the storage block, its tail is the
// in-block offset.
type Split struct {
	Head int
	Tail int
}

// ComputeSplit derives the head/tail lengths for a dataset whose quantized
// extent is (xMax, yMax), using ratio to decide how much of the key goes to
// the head. H is always rounded down to an even number so that head values
// stay aligned on whole quadtree-quadrant boundaries (see Planner).
func ComputeSplit(xMax, yMax int64, ratio float64) (Split, error) {
	key, err := Encode(xMax, yMax)
	if err != nil {
		return Split{}, err
	}

	length := BitLength(key)
	if length == 0 {
		return Split{}, ErrBadSplit
	}

	head := int(float64(length) * ratio)
	if head%2 != 0 {
		head--
	}
	tail := length - head

	if head < 0 || tail <= 0 || head+tail > 62 {
		return Split{}, ErrBadSplit
	}

	return Split{Head: head, Tail: tail}, nil
}

// HeadOf extracts the head portion of a key under this split.
func (s Split) HeadOf(key int64) int64 {
	return key >> s.Tail
}

// TailOf extracts the tail portion of a key under this split.
func (s Split) TailOf(key int64) int64 {
	return key & (1<<s.Tail - 1)
}

// Join reassembles a key from a head and a tail under this split.
func (s Split) Join(head, tail int64) int64 {
	return (head << s.Tail) | tail
}
