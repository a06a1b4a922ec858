//
// errors.go
//
// Copyright (c) 2019-2025 Markku Rossi
//
// All rights reserved.
//

// Package psierr defines the closed set of error kinds the PSI
// protocol can terminate with. Every error surfaces to the party's
// top level and terminates that party; nothing is retried.
package psierr

import "errors"

// Kind identifies one of the error kinds the protocol can fail with.
type Kind int

const (
	// ConfigError signals malformed CLI input, an unparseable set, or
	// a missing circuit file.
	ConfigError Kind = iota

	// ProtocolHandshake signals an unrecognized handshake token.
	ProtocolHandshake

	// ProtocolIntegrity signals a garbled-table decryption failure, an
	// unexpected message shape, or an OT participant deviating from
	// the expected exchange.
	ProtocolIntegrity

	// TransportError signals socket I/O failure.
	TransportError

	// Canceled signals user interruption.
	Canceled
)

func (k Kind) String() string {
	switch k {
	case ConfigError:
		return "ConfigError"
	case ProtocolHandshake:
		return "ProtocolHandshake"
	case ProtocolIntegrity:
		return "ProtocolIntegrity"
	case TransportError:
		return "TransportError"
	case Canceled:
		return "Canceled"
	default:
		return "UnknownError"
	}
}

// Error is a typed protocol error carrying one of the Kind values
// above, wrapping the underlying cause where there is one.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Msg + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Msg
}

// Unwrap returns the wrapped cause, if any, so errors.Is/As work.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error of the given kind.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap creates a new Error of the given kind, wrapping err.
func Wrap(kind Kind, msg string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
