package metadata

import "errors"

// ErrCorruptDescriptor is raised when a loaded descriptor violates its
// structural invariants (array lengths, or a head/tail split that no longer
// matches the stored bounding box).
var ErrCorruptDescriptor = errors.New("metadata: corrupt descriptor")
