package tpg

import (
	"errors"
	"fmt"
)

// ErrStructural reports a graph invariant violation: an illegal edge, a
// missing endpoint, an action with outgoing edges. Structural errors are
// fatal to the operation that raised them; the store never recovers them
// silently.
var ErrStructural = errors.New("graph structure violation")

func structuralf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrStructural)...)
}
