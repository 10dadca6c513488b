package types

import (
	"errors"
	"fmt"
)

// ErrValidation is wrapped by every validation failure in this package.
var ErrValidation = errors.New("validation failed")

func errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
