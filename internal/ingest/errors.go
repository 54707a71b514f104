package ingest

import "errors"

// ErrUnknownMode is raised when an import job names a mode other than
// "file" or "dir".
var ErrUnknownMode = errors.New("ingest: unknown import mode")
