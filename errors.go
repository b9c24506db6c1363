package phasebus

import (
	"errors"
	"fmt"
)

// InvalidConstraintError reports a rejected ordering constraint.
//
// The only rejected shape is a self-referential constraint
// (Before == After); every other constraint is accepted, including ones
// that close a cycle. A rejected constraint changes no state.
type InvalidConstraintError struct {
	Before ID
	After  ID
}

func (e *InvalidConstraintError) Error() string {
	return fmt.Sprintf("invalid phase ordering: %q cannot run before itself", e.Before)
}

// IsInvalidConstraint reports whether err is an InvalidConstraintError.
func IsInvalidConstraint(err error) bool {
	var ice *InvalidConstraintError
	return errors.As(err, &ice)
}
