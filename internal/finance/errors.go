package finance

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is matched by every InvalidArgumentError via errors.Is
var ErrInvalidArgument = errors.New("invalid argument")

// InvalidArgumentError reports an input that violates a calculator contract
type InvalidArgumentError struct {
	Field  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s: %s", e.Field, e.Reason)
}

// Is lets callers test against ErrInvalidArgument
func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

func invalidArgument(field, format string, args ...interface{}) error {
	return &InvalidArgumentError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
