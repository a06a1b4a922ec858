//
// bob.go
//
// Copyright (c) 2019-2025 Markku Rossi
//
// All rights reserved.
//

package psi

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/markkurossi/psi/circuit"
	"github.com/markkurossi/psi/floatbits"
	"github.com/markkurossi/psi/internal/plog"
	"github.com/markkurossi/psi/internal/psierr"
	"github.com/markkurossi/psi/p2p"
	"github.com/markkurossi/psi/psiwire"
)

// RunBob runs the evaluator's side of one PSI session over conn: the
// handshake, then one circuit evaluation per round Alice drives,
// until Alice signals she has no more pairs to compare.
func RunBob(conn *p2p.Conn, vals []float32, cfg Config) ([]float32, error) {
	rnd := cfg.Rand
	if rnd == nil {
		rnd = rand.Reader
	}
	log := cfg.logger()

	if err := psiwire.ReceiveHandshake(conn); err != nil {
		return nil, psierr.Wrap(psierr.ProtocolHandshake, "receiving handshake", err)
	}
	if err := psiwire.SendSize(conn, len(vals)); err != nil {
		return nil, psierr.Wrap(psierr.TransportError, "sending set size", err)
	}
	if err := conn.Flush(); err != nil {
		return nil, psierr.Wrap(psierr.TransportError, "flushing set size", err)
	}
	log.Info(fmt.Sprintf("Bob has %d values", len(vals)))
	log.Info("Starting PSI computation")

	circ, err := circuit.Parse(cfg.circuitFile(), cfg.circuitID())
	if err != nil {
		return nil, psierr.Wrap(psierr.ConfigError, "loading circuit", err)
	}

	var result []float32
	for {
		more, err := psiwire.ReceiveRoundOrDone(conn)
		if err != nil {
			return nil, psierr.Wrap(psierr.TransportError, "receiving round marker", err)
		}
		if !more {
			break
		}

		match, value, err := bobPair(rnd, conn, circ, vals, log)
		if err != nil {
			return nil, err
		}
		if match {
			result = append(result, value)
		}
	}

	log.Info("PSI computation ended")
	log.Minimal(floatbits.FormatSet(result))
	return result, nil
}

// bobPair receives one round's garbled circuit and Alice's input
// labels, serves the oblivious transfers for its own input wires
// keyed to vals[j]'s bits, evaluates the circuit, and reports the
// outcome back to Alice.
func bobPair(rnd io.Reader, conn *p2p.Conn, circ *circuit.Circuit, vals []float32,
	log *plog.Logger) (bool, float32, error) {

	j, err := conn.ReceiveUint32()
	if err != nil {
		return false, 0, psierr.Wrap(psierr.TransportError, "receiving index j", err)
	}
	if j < 0 || j >= len(vals) {
		return false, 0, psierr.New(psierr.ProtocolIntegrity,
			fmt.Sprintf("index j=%d out of range", j))
	}

	tables, err := psiwire.ReceiveGarbledTables(conn)
	if err != nil {
		return false, 0, psierr.Wrap(psierr.TransportError, "receiving garbled tables", err)
	}
	outputs, err := psiwire.ReceiveOutputDecode(conn)
	if err != nil {
		return false, 0, psierr.Wrap(psierr.TransportError, "receiving output decode", err)
	}
	aliceLabels, err := psiwire.ReceiveAliceInputs(conn)
	if err != nil {
		return false, 0, psierr.Wrap(psierr.TransportError, "receiving Alice's inputs", err)
	}

	bits := floatbits.ToBits(vals[j])
	held := make(map[int]circuit.Label, circ.NumWires())
	for w, l := range aliceLabels {
		held[w] = l
	}
	for i, w := range circ.Bob {
		l, err := bobOTReceive(rnd, conn, w, bits[i], log)
		if err != nil {
			return false, 0, err
		}
		held[w] = l
	}

	out, err := circuit.Evaluate(circ, tables, outputs, held)
	if err != nil {
		return false, 0, psierr.Wrap(psierr.ProtocolIntegrity, "evaluating circuit", err)
	}
	if len(out) == 0 {
		return false, 0, psierr.New(psierr.ProtocolIntegrity, "circuit produced no output")
	}
	match := out[0]

	if err := psiwire.SendResult(conn, out); err != nil {
		return false, 0, psierr.Wrap(psierr.TransportError, "sending result", err)
	}
	if err := conn.Flush(); err != nil {
		return false, 0, psierr.Wrap(psierr.TransportError, "flushing result", err)
	}

	return match, vals[j], nil
}
