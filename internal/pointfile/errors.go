package pointfile

import "errors"

// ErrBadInputFile is raised for a missing, unreadable, or malformed source
// file.
var ErrBadInputFile = errors.New("pointfile: bad input file")

var errShortHeader = errors.New("pointfile: header shorter than expected")
var errBadSignature = errors.New("pointfile: not a LAS file (bad signature)")
