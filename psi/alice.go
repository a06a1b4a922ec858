//
// alice.go
//
// Copyright (c) 2019-2025 Markku Rossi
//
// All rights reserved.
//

package psi

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/markkurossi/psi/circuit"
	"github.com/markkurossi/psi/floatbits"
	"github.com/markkurossi/psi/group"
	"github.com/markkurossi/psi/internal/plog"
	"github.com/markkurossi/psi/internal/psierr"
	"github.com/markkurossi/psi/p2p"
	"github.com/markkurossi/psi/psiwire"
)

// RunAlice runs the garbler's side of one PSI session over conn: the
// handshake, then one freshly garbled circuit per candidate pair,
// pruning pairs that can no longer change the result.
func RunAlice(conn *p2p.Conn, vals []float32, cfg Config) ([]float32, error) {
	rnd := cfg.Rand
	if rnd == nil {
		rnd = rand.Reader
	}
	log := cfg.logger()

	vals = sortedCopy(vals)

	log.Info("Waiting for Bob")
	if err := psiwire.SendHandshake(conn); err != nil {
		return nil, psierr.Wrap(psierr.TransportError, "sending handshake", err)
	}
	if err := conn.Flush(); err != nil {
		return nil, psierr.Wrap(psierr.TransportError, "flushing handshake", err)
	}
	m, err := psiwire.ReceiveSize(conn)
	if err != nil {
		return nil, psierr.Wrap(psierr.TransportError, "receiving Bob's set size", err)
	}
	log.Info(fmt.Sprintf("Alice has %d values, Bob has %d values", len(vals), m))
	log.Info("Starting PSI computation")

	circ, err := circuit.Parse(cfg.circuitFile(), cfg.circuitID())
	if err != nil {
		return nil, psierr.Wrap(psierr.ConfigError, "loading circuit", err)
	}
	var tab bytes.Buffer
	circuit.Tabulate(&tab, circ)
	log.Circuit("%s", tab.String())

	// One group serves every transfer of the session: the group may
	// be reused across per-wire OTs as long as the sender and
	// receiver randomness (c, k, x) is fresh per transfer, and
	// sampling a safe prime of real size is far too expensive to
	// repeat per wire.
	otGroup, err := group.New(rnd, cfg.otPrimeBits())
	if err != nil {
		return nil, psierr.Wrap(psierr.ProtocolIntegrity, "sampling OT group", err)
	}

	// matched is keyed by binary32 bit pattern, not float32 value:
	// Go's float equality treats +0 and -0 as the same key, but the
	// protocol compares bit-exact encodings, so the signed zeros
	// (and distinct NaN payloads) must stay separate entries.
	matched := make(map[uint32]bool)
	exclude := make(map[int]bool)
	var result []float32

	progress := cfg.progress()
	progress.Start(len(vals))

	for i := 0; i < len(vals); i++ {
		key := math.Float32bits(vals[i])
		if matched[key] {
			progress.Step()
			continue
		}
		for j := 0; j < m; j++ {
			if exclude[j] {
				continue
			}

			match, err := alicePair(rnd, conn, circ, otGroup, vals[i], j, log)
			if err != nil {
				return nil, err
			}
			if match {
				matched[key] = true
				exclude[j] = true
				result = append(result, vals[i])
				break
			}
		}
		progress.Step()
	}
	progress.Done()

	log.Info("PSI computation ended")
	log.Minimal(floatbits.FormatSet(result))

	if err := psiwire.SendDone(conn); err != nil {
		return nil, psierr.Wrap(psierr.TransportError, "sending session end", err)
	}
	if err := conn.Flush(); err != nil {
		return nil, psierr.Wrap(psierr.TransportError, "flushing session end", err)
	}

	return result, nil
}

// alicePair garbles circ fresh, sends it along with j (the index Bob
// should evaluate against) and Alice's own input labels for x, runs
// the oblivious transfers for Bob's input wires, and returns whether
// the evaluated circuit reports a match.
func alicePair(rnd io.Reader, conn *p2p.Conn, circ *circuit.Circuit, g *group.Group,
	x float32, j int, log *plog.Logger) (bool, error) {

	garbled, err := circuit.Garble(rnd, circ)
	if err != nil {
		return false, psierr.Wrap(psierr.ProtocolIntegrity, "garbling circuit", err)
	}
	log.Circuit("%s", circuit.DumpGarbled(circ, garbled))

	if err := psiwire.SendRound(conn); err != nil {
		return false, psierr.Wrap(psierr.TransportError, "sending round marker", err)
	}
	if err := conn.SendUint32(j); err != nil {
		return false, psierr.Wrap(psierr.TransportError, "sending index j", err)
	}
	if err := psiwire.SendGarbledTables(conn, garbled.Tables); err != nil {
		return false, psierr.Wrap(psierr.TransportError, "sending garbled tables", err)
	}
	if err := psiwire.SendOutputDecode(conn, garbled.Outputs); err != nil {
		return false, psierr.Wrap(psierr.TransportError, "sending output decode", err)
	}

	aliceLabels := make(map[int]circuit.Label, len(circ.Alice))
	bits := floatbits.ToBits(x)
	for i, w := range circ.Alice {
		aliceLabels[w] = garbled.Wires[w].Label(bits[i])
	}
	if err := psiwire.SendAliceInputs(conn, aliceLabels); err != nil {
		return false, psierr.Wrap(psierr.TransportError, "sending Alice's inputs", err)
	}
	if err := conn.Flush(); err != nil {
		return false, psierr.Wrap(psierr.TransportError, "flushing round", err)
	}

	for _, w := range circ.Bob {
		if err := aliceOTSend(rnd, conn, garbled.Wires[w], g, log); err != nil {
			return false, err
		}
	}

	result, err := psiwire.ReceiveResult(conn)
	if err != nil {
		return false, psierr.Wrap(psierr.TransportError, "receiving result", err)
	}
	if len(result) == 0 {
		return false, psierr.New(psierr.ProtocolIntegrity, "empty result")
	}
	return result[0], nil
}

func sortedCopy(vals []float32) []float32 {
	out := make([]float32, len(vals))
	copy(out, vals)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
