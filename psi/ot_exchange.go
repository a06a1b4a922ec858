//
// ot_exchange.go
//
// Copyright (c) 2019-2025 Markku Rossi
//
// All rights reserved.
//

package psi

import (
	"io"
	"math/big"

	"github.com/markkurossi/text/superscript"

	"github.com/markkurossi/psi/circuit"
	"github.com/markkurossi/psi/group"
	"github.com/markkurossi/psi/internal/plog"
	"github.com/markkurossi/psi/internal/psierr"
	"github.com/markkurossi/psi/ot"
	"github.com/markkurossi/psi/p2p"
	"github.com/markkurossi/psi/psiwire"
)

// wireLabel renders a wire id with a superscript tag for OT
// transcript lines.
func wireLabel(w int) string {
	return "w" + superscript.Itoa(w)
}

// encodeOTLabel and decodeOTLabel give the two Bob-input wire labels
// the same 17 byte wire shape psiwire uses elsewhere, so the OT
// subprotocol's plaintext messages carry no more and no less than a
// label.
func encodeOTLabel(l circuit.Label) []byte {
	buf := make([]byte, circuit.LabelSize+1)
	copy(buf, l.Key[:])
	if l.P {
		buf[circuit.LabelSize] = 1
	}
	return buf
}

func decodeOTLabel(buf []byte) (circuit.Label, error) {
	if len(buf) != circuit.LabelSize+1 {
		return circuit.Label{}, psierr.New(psierr.ProtocolIntegrity,
			"malformed OT label payload")
	}
	var l circuit.Label
	copy(l.Key[:], buf[:circuit.LabelSize])
	l.P = buf[circuit.LabelSize] == 1
	return l, nil
}

// aliceOTSend runs one oblivious transfer as the sender, offering
// both of wire's labels. It waits for Bob to name the wire he wants,
// then drives Smart's OT to completion. The group is shared across
// the session's transfers but still transmitted per instance, and
// the sender's randomness (the commitment and the encryption
// exponent) is fresh per transfer.
func aliceOTSend(rnd io.Reader, conn *p2p.Conn, wire circuit.WireLabels, g *group.Group, log *plog.Logger) error {
	w, err := psiwire.ReceiveWireID(conn)
	if err != nil {
		return psierr.Wrap(psierr.TransportError, "receiving wire id", err)
	}
	log.OT("OT protocol started for %s", wireLabel(w))

	sender, err := ot.NewSender(rnd, g)
	if err != nil {
		return psierr.Wrap(psierr.ProtocolIntegrity, "creating OT sender", err)
	}

	if err := psiwire.SendGroup(conn, g); err != nil {
		return psierr.Wrap(psierr.TransportError, "sending OT group", err)
	}
	if err := conn.SendBigInt(sender.C()); err != nil {
		return psierr.Wrap(psierr.TransportError, "sending OT commitment", err)
	}
	if err := conn.Flush(); err != nil {
		return psierr.Wrap(psierr.TransportError, "flushing OT commitment", err)
	}

	h, err := conn.ReceiveBigInt()
	if err != nil {
		return psierr.Wrap(psierr.TransportError, "receiving OT choice", err)
	}

	m0 := encodeOTLabel(wire.Zero)
	m1 := encodeOTLabel(wire.One)
	c1, e0, e1, err := sender.Encrypt(rnd, h, m0, m1)
	if err != nil {
		return psierr.Wrap(psierr.ProtocolIntegrity, "encrypting OT reply", err)
	}
	log.OT("e_0 = %x", e0)
	log.OT("e_1 = %x", e1)

	if err := psiwire.SendOTReply(conn, c1.Bytes(), e0, e1); err != nil {
		return psierr.Wrap(psierr.TransportError, "sending OT reply", err)
	}
	if err := conn.Flush(); err != nil {
		return psierr.Wrap(psierr.TransportError, "flushing OT reply", err)
	}
	log.OT("OT protocol ended for %s", wireLabel(w))
	return nil
}

// bobOTReceive runs one oblivious transfer as the receiver for wire
// w, asking for the label matching choice, and returns that label.
func bobOTReceive(rnd io.Reader, conn *p2p.Conn, w int, choice bool, log *plog.Logger) (circuit.Label, error) {
	if err := psiwire.SendWireID(conn, w); err != nil {
		return circuit.Label{}, psierr.Wrap(psierr.TransportError, "sending wire id", err)
	}
	if err := conn.Flush(); err != nil {
		return circuit.Label{}, psierr.Wrap(psierr.TransportError, "flushing wire id", err)
	}

	g, err := psiwire.ReceiveGroup(conn)
	if err != nil {
		return circuit.Label{}, psierr.Wrap(psierr.TransportError, "receiving OT group", err)
	}
	c, err := conn.ReceiveBigInt()
	if err != nil {
		return circuit.Label{}, psierr.Wrap(psierr.TransportError, "receiving OT commitment", err)
	}

	receiver, err := ot.NewReceiver(rnd, g, choice)
	if err != nil {
		return circuit.Label{}, psierr.Wrap(psierr.ProtocolIntegrity, "creating OT receiver", err)
	}
	h := receiver.H(c)
	if err := conn.SendBigInt(h); err != nil {
		return circuit.Label{}, psierr.Wrap(psierr.TransportError, "sending OT choice", err)
	}
	if err := conn.Flush(); err != nil {
		return circuit.Label{}, psierr.Wrap(psierr.TransportError, "flushing OT choice", err)
	}

	c1Bytes, e0, e1, err := psiwire.ReceiveOTReply(conn)
	if err != nil {
		return circuit.Label{}, psierr.Wrap(psierr.TransportError, "receiving OT reply", err)
	}
	c1 := new(big.Int).SetBytes(c1Bytes)
	m, err := decodeOTLabel(receiver.Decrypt(c1, e0, e1))
	if err != nil {
		return circuit.Label{}, err
	}
	log.OT("OT protocol ended for %s", wireLabel(w))
	return m, nil
}
