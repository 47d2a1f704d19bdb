// file: internals/helpers/errors.go
package helper

import (
	"errors"
	"fmt"
)

/* =========================
   Error taxonomy
========================= */

// The core raises exactly two classes of programmer/input error. Every other
// boundary condition (archived client, expired template, fully-covered
// session) is a legitimate no-op and returns an empty or zero result instead.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

func InvalidArgumentf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidArgument)...)
}
