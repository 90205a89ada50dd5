package x

import (
	"errors"
	"fmt"
)

// ErrAssertion is wrapped by every panic raised from AssertTrue / AssertTruef.
var ErrAssertion = errors.New("assertion failed")

// AssertTrue panics if b is false. Contract violations in this module are
// never returned as errors.
func AssertTrue(b bool) {
	if !b {
		panic(ErrAssertion)
	}
}

// AssertTruef is AssertTrue with a formatted message.
func AssertTruef(b bool, format string, args ...any) {
	if !b {
		Panicf(format, args...)
	}
}

// Panicf panics with a formatted error wrapping ErrAssertion. Hot paths test
// their condition inline and call it only on failure.
func Panicf(format string, args ...any) {
	panic(fmt.Errorf("%w: %s", ErrAssertion, fmt.Sprintf(format, args...)))
}
