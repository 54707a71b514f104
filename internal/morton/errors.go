package morton

import "errors"

// ErrBadCoordinate is raised when a quantized coordinate falls outside the
// 31-bit non-negative domain the codec requires.
var ErrBadCoordinate = errors.New("morton: coordinate out of 31-bit domain")

// ErrBadSplit is raised when a dataset's extent cannot be split into a valid
// (head, tail) pair, for example a zero-extent dataset.
var ErrBadSplit = errors.New("morton: cannot derive a valid head/tail split")
