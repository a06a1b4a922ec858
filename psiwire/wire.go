//
// wire.go
//
// Copyright (c) 2019-2025 Markku Rossi
//
// All rights reserved.
//

// Package psiwire implements the PSI party's wire protocol: the
// sequence of typed, length-prefixed messages Alice and Bob exchange
// over a p2p.Conn. Every message kind has its own explicit
// encode/decode pair, so each exchange's shape is visible at the
// call site instead of hidden inside a generic serialized blob.
package psiwire

import (
	"encoding/json"
	"fmt"

	"github.com/markkurossi/psi/circuit"
	"github.com/markkurossi/psi/group"
	"github.com/markkurossi/psi/internal/psierr"
	"github.com/markkurossi/psi/p2p"
)

// Handshake is the fixed literal Alice sends before anything else and
// Bob checks, to catch a misconfigured peer (wrong port, wrong
// protocol) as early as possible. Bob answers it with his set size.
const Handshake = "PSI"

// OK is the fixed literal Alice sends in place of RoundMarker to end
// the session (see SendDone).
const OK = "OK"

// SendHandshake writes the handshake literal.
func SendHandshake(conn *p2p.Conn) error {
	return conn.SendString(Handshake)
}

// ReceiveHandshake reads and checks the handshake literal.
func ReceiveHandshake(conn *p2p.Conn) error {
	s, err := conn.ReceiveString()
	if err != nil {
		return err
	}
	if s != Handshake {
		return psierr.New(psierr.ProtocolHandshake,
			fmt.Sprintf("unexpected handshake %q", s))
	}
	return nil
}

// SendOK writes the OK literal.
func SendOK(conn *p2p.Conn) error {
	return conn.SendString(OK)
}

// ReceiveOK reads and checks the OK literal.
func ReceiveOK(conn *p2p.Conn) error {
	s, err := conn.ReceiveString()
	if err != nil {
		return err
	}
	if s != OK {
		return psierr.New(psierr.ProtocolHandshake,
			fmt.Sprintf("expected OK, got %q", s))
	}
	return nil
}

// RoundMarker precedes every per-pair comparison round; Alice sends
// OK instead once she has no more pairs to compare, telling Bob the
// session is over.
const RoundMarker = "ROUND"

// SendRound announces the start of one comparison round.
func SendRound(conn *p2p.Conn) error {
	return conn.SendString(RoundMarker)
}

// SendDone announces the end of the session in place of a round.
func SendDone(conn *p2p.Conn) error {
	return conn.SendString(OK)
}

// ReceiveRoundOrDone reads the tag preceding each round and reports
// whether another round follows.
func ReceiveRoundOrDone(conn *p2p.Conn) (bool, error) {
	s, err := conn.ReceiveString()
	if err != nil {
		return false, err
	}
	switch s {
	case RoundMarker:
		return true, nil
	case OK:
		return false, nil
	default:
		return false, psierr.New(psierr.ProtocolHandshake,
			fmt.Sprintf("expected %q or %q, got %q", RoundMarker, OK, s))
	}
}

// SendSize sends a set's cardinality. Bob sends his right after the
// handshake so Alice knows how many indices j to compare against.
func SendSize(conn *p2p.Conn, n int) error {
	return conn.SendUint32(n)
}

// ReceiveSize reads a set's cardinality.
func ReceiveSize(conn *p2p.Conn) (int, error) {
	return conn.ReceiveUint32()
}

// SendCircuit sends a circuit definition as JSON, the same encoding
// circuit files use on disk.
func SendCircuit(conn *p2p.Conn, circ *circuit.Circuit) error {
	data, err := json.Marshal(circ)
	if err != nil {
		return err
	}
	return conn.SendData(data)
}

// ReceiveCircuit reads a circuit definition sent by SendCircuit.
func ReceiveCircuit(conn *p2p.Conn) (*circuit.Circuit, error) {
	data, err := conn.ReceiveData()
	if err != nil {
		return nil, err
	}
	var circ circuit.Circuit
	if err := json.Unmarshal(data, &circ); err != nil {
		return nil, psierr.Wrap(psierr.ProtocolIntegrity,
			"malformed circuit payload", err)
	}
	return &circ, nil
}

// SendLabel sends one wire label.
func SendLabel(conn *p2p.Conn, l circuit.Label) error {
	buf := make([]byte, circuit.LabelSize+1)
	copy(buf, l.Key[:])
	if l.P {
		buf[circuit.LabelSize] = 1
	}
	return conn.SendData(buf)
}

// ReceiveLabel reads one wire label sent by SendLabel.
func ReceiveLabel(conn *p2p.Conn) (circuit.Label, error) {
	buf, err := conn.ReceiveData()
	if err != nil {
		return circuit.Label{}, err
	}
	if len(buf) != circuit.LabelSize+1 {
		return circuit.Label{}, psierr.New(psierr.ProtocolIntegrity,
			"malformed label payload")
	}
	var l circuit.Label
	copy(l.Key[:], buf[:circuit.LabelSize])
	l.P = buf[circuit.LabelSize] == 1
	return l, nil
}

// SendGarbledTables sends a circuit's full garbled truth tables, one
// row count followed by that many length-prefixed ciphertexts, per
// gate, in gate order.
func SendGarbledTables(conn *p2p.Conn, tables circuit.GarbledTables) error {
	if err := conn.SendUint32(len(tables.Gates)); err != nil {
		return err
	}
	for _, gate := range tables.Gates {
		if err := conn.SendUint32(len(gate.Table)); err != nil {
			return err
		}
		for _, row := range gate.Table {
			if err := conn.SendData(row); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReceiveGarbledTables reads garbled tables sent by SendGarbledTables.
func ReceiveGarbledTables(conn *p2p.Conn) (circuit.GarbledTables, error) {
	numGates, err := conn.ReceiveUint32()
	if err != nil {
		return circuit.GarbledTables{}, err
	}
	tables := circuit.GarbledTables{Gates: make([]circuit.GarbledGate, numGates)}
	for i := 0; i < numGates; i++ {
		rows, err := conn.ReceiveUint32()
		if err != nil {
			return circuit.GarbledTables{}, err
		}
		table := make([][]byte, rows)
		for r := 0; r < rows; r++ {
			row, err := conn.ReceiveData()
			if err != nil {
				return circuit.GarbledTables{}, err
			}
			if len(row) > 0 {
				table[r] = row
			}
		}
		tables.Gates[i] = circuit.GarbledGate{Table: table}
	}
	return tables, nil
}

// SendOutputDecode sends the output wires' external-bit-to-clear-bit
// decoding table.
func SendOutputDecode(conn *p2p.Conn, outputs circuit.OutputDecode) error {
	if err := conn.SendUint32(len(outputs)); err != nil {
		return err
	}
	for wire, decode := range outputs {
		if err := conn.SendUint32(wire); err != nil {
			return err
		}
		var b byte
		if decode[0] {
			b |= 1
		}
		if decode[1] {
			b |= 2
		}
		if err := conn.SendData([]byte{b}); err != nil {
			return err
		}
	}
	return nil
}

// ReceiveOutputDecode reads a decoding table sent by
// SendOutputDecode.
func ReceiveOutputDecode(conn *p2p.Conn) (circuit.OutputDecode, error) {
	n, err := conn.ReceiveUint32()
	if err != nil {
		return nil, err
	}
	outputs := make(circuit.OutputDecode, n)
	for i := 0; i < n; i++ {
		wire, err := conn.ReceiveUint32()
		if err != nil {
			return nil, err
		}
		data, err := conn.ReceiveData()
		if err != nil {
			return nil, err
		}
		if len(data) != 1 {
			return nil, psierr.New(psierr.ProtocolIntegrity,
				"malformed output decode entry")
		}
		outputs[wire] = [2]bool{data[0]&1 != 0, data[0]&2 != 0}
	}
	return outputs, nil
}

// SendWireID sends the wire id Bob wants an oblivious transfer for.
func SendWireID(conn *p2p.Conn, wire int) error {
	return conn.SendUint32(wire)
}

// ReceiveWireID reads a wire id sent by SendWireID.
func ReceiveWireID(conn *p2p.Conn) (int, error) {
	return conn.ReceiveUint32()
}

// SendGroup sends the OT sender's group, prime and generator both, so the receiver can reconstruct it
// without repeating the generator search.
func SendGroup(conn *p2p.Conn, g *group.Group) error {
	if err := conn.SendBigInt(g.P); err != nil {
		return err
	}
	return conn.SendBigInt(g.G)
}

// ReceiveGroup reads a group sent by SendGroup.
func ReceiveGroup(conn *p2p.Conn) (*group.Group, error) {
	p, err := conn.ReceiveBigInt()
	if err != nil {
		return nil, err
	}
	g, err := conn.ReceiveBigInt()
	if err != nil {
		return nil, err
	}
	return group.FromPG(p, g), nil
}

// SendOTReply sends the sender's OT response: its fresh commitment
// c1 and the two encrypted messages.
func SendOTReply(conn *p2p.Conn, c1 []byte, e0, e1 []byte) error {
	if err := conn.SendData(c1); err != nil {
		return err
	}
	if err := conn.SendData(e0); err != nil {
		return err
	}
	return conn.SendData(e1)
}

// ReceiveOTReply reads an OT reply sent by SendOTReply.
func ReceiveOTReply(conn *p2p.Conn) (c1, e0, e1 []byte, err error) {
	c1, err = conn.ReceiveData()
	if err != nil {
		return nil, nil, nil, err
	}
	e0, err = conn.ReceiveData()
	if err != nil {
		return nil, nil, nil, err
	}
	e1, err = conn.ReceiveData()
	if err != nil {
		return nil, nil, nil, err
	}
	return c1, e0, e1, nil
}

// SendAliceInputs sends Alice's own input wire labels directly (they
// need no oblivious transfer since Bob never needs to hide which
// value Alice chose from Alice herself).
func SendAliceInputs(conn *p2p.Conn, labels map[int]circuit.Label) error {
	if err := conn.SendUint32(len(labels)); err != nil {
		return err
	}
	for wire, l := range labels {
		if err := conn.SendUint32(wire); err != nil {
			return err
		}
		if err := SendLabel(conn, l); err != nil {
			return err
		}
	}
	return nil
}

// ReceiveAliceInputs reads Alice's input labels sent by
// SendAliceInputs.
func ReceiveAliceInputs(conn *p2p.Conn) (map[int]circuit.Label, error) {
	n, err := conn.ReceiveUint32()
	if err != nil {
		return nil, err
	}
	labels := make(map[int]circuit.Label, n)
	for i := 0; i < n; i++ {
		wire, err := conn.ReceiveUint32()
		if err != nil {
			return nil, err
		}
		l, err := ReceiveLabel(conn)
		if err != nil {
			return nil, err
		}
		labels[wire] = l
	}
	return labels, nil
}

// SendResult sends the evaluator's final clear output bits.
func SendResult(conn *p2p.Conn, bits []bool) error {
	if err := conn.SendUint32(len(bits)); err != nil {
		return err
	}
	buf := make([]byte, len(bits))
	for i, b := range bits {
		if b {
			buf[i] = 1
		}
	}
	return conn.SendData(buf)
}

// ReceiveResult reads output bits sent by SendResult.
func ReceiveResult(conn *p2p.Conn) ([]bool, error) {
	n, err := conn.ReceiveUint32()
	if err != nil {
		return nil, err
	}
	data, err := conn.ReceiveData()
	if err != nil {
		return nil, err
	}
	if len(data) != n {
		return nil, psierr.New(psierr.ProtocolIntegrity,
			"malformed result payload")
	}
	bits := make([]bool, n)
	for i, b := range data {
		bits[i] = b != 0
	}
	return bits, nil
}
