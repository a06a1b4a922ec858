//
// config.go
//
// Copyright (c) 2019-2025 Markku Rossi
//
// All rights reserved.
//

// Package psi implements the PSI protocol's driver: Alice's and Bob's
// roles, the per-pair fresh-garble loop with the matched/exclude
// pruning optimization, and the handshake that ties a session
// together.
package psi

import (
	"io"

	"github.com/markkurossi/psi/internal/plog"
)

// DefaultEndpoint is the TCP address a party listens on or dials when
// none is given explicitly.
const DefaultEndpoint = "localhost:4080"

// DefaultCircuitFile is where the 32 bit equality circuit lives by
// default.
const DefaultCircuitFile = "circuits/eq32.json"

// DefaultCircuitID names the circuit this protocol version always
// uses: one fresh garbling of the same 32 bit equality circuit per
// candidate pair.
const DefaultCircuitID = "eq32"

// DefaultOTPrimeBits is the bit length of the prime the OT
// subprotocol samples once per session. A 64 bit prime would suffice
// for toy demonstrations but is far too small for real security, so
// the default is considerably larger; the safe-prime search this
// size costs is paid once, not per wire.
const DefaultOTPrimeBits = 1024

// Config collects the knobs a party run needs: the entropy source,
// the circuit to load, the OT group size, and the logger. It is
// passed explicitly so nothing depends on package-level state.
type Config struct {
	// Rand is the party's entropy source. Defaults to
	// crypto/rand.Reader when nil.
	Rand io.Reader

	// CircuitFile and CircuitID select which circuit to load.
	CircuitFile string
	CircuitID   string

	// OTPrimeBits sizes the OT subprotocol's prime group.
	OTPrimeBits int

	// Logger receives progress and transcript output.
	Logger *plog.Logger

	// Progress observes Alice's candidate-pair loop. Nil disables
	// progress reporting.
	Progress ProgressReporter
}

func (c Config) circuitFile() string {
	if c.CircuitFile == "" {
		return DefaultCircuitFile
	}
	return c.CircuitFile
}

func (c Config) circuitID() string {
	if c.CircuitID == "" {
		return DefaultCircuitID
	}
	return c.CircuitID
}

func (c Config) logger() *plog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return plog.New("", plog.Minimal, io.Discard, nil, nil)
}

func (c Config) progress() ProgressReporter {
	if c.Progress != nil {
		return c.Progress
	}
	return nopProgress{}
}

func (c Config) otPrimeBits() int {
	if c.OTPrimeBits <= 0 {
		return DefaultOTPrimeBits
	}
	return c.OTPrimeBits
}
