package openiddict

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrEmptyArgument reports caller misuse: a required string parameter was
	// empty. The wrapped message names the offending parameter.
	ErrEmptyArgument = errors.New("openiddict: required argument is empty")

	// ErrNilAuthorization reports caller misuse: the authorization argument
	// was nil.
	ErrNilAuthorization = errors.New("openiddict: authorization must not be nil")

	// ErrUnresolvedIdentifier reports a broken invariant: the store returned
	// no identifier for an authorization, so no signal can be bound to it.
	ErrUnresolvedIdentifier = errors.New("openiddict: authorization identifier cannot be resolved")

	// ErrSignalUnavailable reports a broken invariant: an invalidation signal
	// could not be created, so cache consistency cannot be guaranteed.
	ErrSignalUnavailable = errors.New("openiddict: invalidation signal cannot be created")
)

func emptyArgument(name string) error {
	return fmt.Errorf("%w: %s", ErrEmptyArgument, name)
}

// isNil reports whether a generic value is a nil pointer, interface, map,
// slice, channel or function. Value types are never nil.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}
