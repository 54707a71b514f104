package query

import "errors"

// ErrBadQueryExtent is raised when a query geometry quantizes outside the
// dataset's 31-bit coordinate domain.
var ErrBadQueryExtent = errors.New("query: extent outside 31-bit domain")

var errUnsupportedGeometry = errors.New("query: unsupported or not-yet-developed geometry kind")
