// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure so callers can react without string matching.
type ErrorKind string

const (
	// KindTransport covers network failures, timeouts and non-success HTTP status.
	KindTransport ErrorKind = "transport"

	// KindMalformed means the remote payload could not be parsed.
	KindMalformed ErrorKind = "malformed"

	// KindUpstream means the remote service reported an error in its body.
	KindUpstream ErrorKind = "upstream"

	// KindNotFound covers invalid display numbers, unknown commands and
	// unknown option values.
	KindNotFound ErrorKind = "not-found"

	// KindResourceMissing means a previously downloaded file is gone.
	KindResourceMissing ErrorKind = "resource-missing"

	// KindConsistency flags index responses that contradict their own metadata.
	KindConsistency ErrorKind = "consistency"
)

var (
	// ErrEndOfResults is returned when paging past the reported total.
	ErrEndOfResults = errors.New("end of results")

	// ErrNoResults is returned when a search succeeded but matched nothing.
	ErrNoResults = errors.New("no results")
)

// Error is a classified failure. Op names the operation that failed.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

// NewError builds an *Error.
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err's chain contains an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
