package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for jsoncond operations.
var (
	// ErrMalformedRule indicates a structural misconfiguration of a condition
	// tree. It aborts evaluation or compilation and is never reported as a
	// validation failure.
	ErrMalformedRule = errors.New("malformed rule")

	// ErrUnsupportedInSQL indicates a condition the SQL compiler cannot express
	// as a single predicate. Callers should filter in memory instead.
	ErrUnsupportedInSQL = errors.New("unsupported in SQL")

	// ErrConditionNotFound indicates no stored condition matches the lookup key.
	ErrConditionNotFound = errors.New("condition not found")

	// ErrInvalidConditionName indicates an empty or over-long condition name.
	ErrInvalidConditionName = errors.New("invalid condition name")

	// ErrUnsupportedDriver indicates an operation the connected database
	// driver cannot perform.
	ErrUnsupportedDriver = errors.New("unsupported database driver")
)

// Malformed returns an ErrMalformedRule wrapping the formatted detail.
func Malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedRule, fmt.Sprintf(format, args...))
}

// Unsupported returns an ErrUnsupportedInSQL wrapping the formatted detail.
func Unsupported(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedInSQL, fmt.Sprintf(format, args...))
}

// Detail strips the sentinel prefix from a wrapped error so callers can show
// the configuration message on its own.
func Detail(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, sentinel := range []error{ErrMalformedRule, ErrUnsupportedInSQL} {
		prefix := sentinel.Error() + ": "
		if errors.Is(err, sentinel) && len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
			return msg[len(prefix):]
		}
	}
	return msg
}
