package api

import (
	"errors"
	"fmt"
)

var (
	// ErrStatus is the cause of a TransportError for a non-2xx response.
	ErrStatus = errors.New("unexpected status")
	// ErrNotFound is the cause of a TransportError for a key with no document.
	ErrNotFound = errors.New("not found")
	// ErrEmptyKey is returned for an empty resource identifier.
	ErrEmptyKey = errors.New("empty key")
)

// Op names the stage of a fetch that failed.
type Op string

const (
	OpRequest Op = "request"
	OpStatus  Op = "status"
	OpDecode  Op = "decode"
	OpRedis   Op = "redis"
)

// TransportError reports a failed retrieval. It carries the key that was
// requested and unwraps to the underlying cause.
type TransportError struct {
	Key        string
	Op         Op
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %q: %s %d: %v", e.Key, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %q: %s: %v", e.Key, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
