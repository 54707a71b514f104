package store

import "errors"

// ErrStoreError wraps every downstream block-store failure: connection,
// SQL, or constraint violations.
var ErrStoreError = errors.New("store: block store error")
