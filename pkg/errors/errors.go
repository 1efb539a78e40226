// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

// Package errors defines the five-member error taxonomy the mempool and its
// validators classify failures into: NotValid, NotCurrentlyValid,
// NotYetEnabled, StorageFailure and Fatal. Call sites wrap the underlying
// cause with github.com/pkg/errors so a stack trace survives the
// classification.
package errors

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Kind classifies a validation or processing failure.
type Kind int

const (
	// KindNotValid is permanent: the peer that supplied this data must be
	// blacklisted.
	KindNotValid Kind = iota
	// KindNotCurrentlyValid is transient: it may become valid after a
	// rollback, activation height, or name/code expiry. Silently ignored on
	// the peer-gossip path.
	KindNotCurrentlyValid
	// KindNotYetEnabled gates a feature by height or explicit disable (e.g.
	// SHUFFLEABLE). Treated as NotCurrentlyValid by the peer path.
	KindNotYetEnabled
	// KindStorageFailure wraps an underlying storage-layer error. Always
	// rolls back its transaction; not propagated past the worker boundary
	// except as a fatal marker.
	KindStorageFailure
	// KindFatal signals a broken internal invariant; the process should
	// exit after logging.
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindNotValid:
		return "not_valid"
	case KindNotCurrentlyValid:
		return "not_currently_valid"
	case KindNotYetEnabled:
		return "not_yet_enabled"
	case KindStorageFailure:
		return "storage_failure"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error is a classified, message-carrying failure.
type Error struct {
	Kind Kind
	msg  string
	// cause, if set, is the wrapped underlying error (e.g. a sql error).
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

// Unwrap allows errors.Is/errors.As (stdlib) to reach the wrapped cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// NotValid builds a permanent validation failure.
func NotValid(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotValid, msg: fmt.Sprintf(format, args...)}
}

// NotCurrentlyValid builds a transient validation failure.
func NotCurrentlyValid(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotCurrentlyValid, msg: fmt.Sprintf(format, args...)}
}

// NotYetEnabled builds a feature-gate failure.
func NotYetEnabled(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotYetEnabled, msg: fmt.Sprintf(format, args...)}
}

// StorageFailure wraps a storage-layer cause with github.com/pkg/errors so
// the original stack is preserved, and classifies it.
func StorageFailure(cause error, context string) *Error {
	return &Error{Kind: KindStorageFailure, msg: context, cause: pkgerrors.Wrap(cause, context)}
}

// Fatal builds an unrecoverable internal-invariant failure.
func Fatal(format string, args ...interface{}) *Error {
	return &Error{Kind: KindFatal, msg: fmt.Sprintf(format, args...)}
}

// Is reports whether err is a classified Error of the given Kind.
func Is(err error, k Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == k
}

// IsPermanent reports whether err must cause the supplying peer to be
// blacklisted (spec: NotValid only — NotYetEnabled is treated as transient
// on the peer path).
func IsPermanent(err error) bool {
	return Is(err, KindNotValid)
}

// Cause unwraps to the deepest pkg/errors cause, if any.
func Cause(err error) error {
	return pkgerrors.Cause(err)
}
