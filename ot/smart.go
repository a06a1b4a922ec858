//
// smart.go
//
// Copyright (c) 2019-2025 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"io"
	"math/big"

	"github.com/markkurossi/psi/group"
)

// Sender is the garbler's side of one oblivious transfer: it commits
// to a random group element c before it learns anything about the
// receiver's choice, so the two messages it later encrypts are
// indistinguishable to anyone but the party who can invert exactly
// one of them.
type Sender struct {
	g *group.Group
	c *big.Int
}

// NewSender samples a fresh commitment c = g^r for a new transfer.
func NewSender(rnd io.Reader, g *group.Group) (*Sender, error) {
	r, err := g.RandInt(rnd)
	if err != nil {
		return nil, err
	}
	return &Sender{g: g, c: g.GenPow(r)}, nil
}

// C returns the commitment to send the receiver.
func (s *Sender) C() *big.Int {
	return s.c
}

// Encrypt takes the value h the receiver sent back, which always fills
// the h_0 slot whatever the receiver's choice b, derives h_1 as
// c*h_0^-1, and encrypts the two candidate messages under h_0 and h_1.
// It returns the pair of ciphertexts (e0, e1) plus the sender's own
// fresh commitment c1. Only a receiver who produced h honestly --
// i.e. as g^x for b=0, or as c*(g^x)^-1 for b=1 -- can recover the
// matching message.
func (s *Sender) Encrypt(rnd io.Reader, h *big.Int, m0, m1 []byte) (c1 *big.Int, e0, e1 []byte, err error) {
	h0 := h
	h1 := s.g.Mul(s.c, s.g.Inv(h0))

	k, err := s.g.RandInt(rnd)
	if err != nil {
		return nil, nil, nil, err
	}
	c1 = s.g.GenPow(k)

	e0 = xorBytes(m0, otHash(s.g.Pow(h0, k), len(m0)))
	e1 = xorBytes(m1, otHash(s.g.Pow(h1, k), len(m1)))
	return c1, e0, e1, nil
}

// Receiver is the evaluator's side of one oblivious transfer: it
// picks a choice bit B up front and derives whichever of h_0/h_1 the
// protocol needs from a single secret exponent x, so the message it
// sends the sender looks identical regardless of B.
type Receiver struct {
	g *group.Group
	x *big.Int
	B bool
}

// NewReceiver samples the receiver's secret exponent for a transfer
// in which it will ask for message b.
func NewReceiver(rnd io.Reader, g *group.Group, b bool) (*Receiver, error) {
	x, err := g.RandInt(rnd)
	if err != nil {
		return nil, err
	}
	return &Receiver{g: g, x: x, B: b}, nil
}

// H computes the h_0 value to send the sender in response to its
// commitment c: g^x when B is false, or c*(g^x)^-1 when B is true (so
// that the sender's derived h_1 is g^x). Either way h_B is g^x.
func (r *Receiver) H(c *big.Int) *big.Int {
	xPow := r.g.GenPow(r.x)
	if r.B {
		return r.g.Mul(c, r.g.Inv(xPow))
	}
	return xPow
}

// Decrypt recovers the receiver's chosen message from the sender's
// (c1, e0, e1) reply.
func (r *Receiver) Decrypt(c1 *big.Int, e0, e1 []byte) []byte {
	e := e0
	if r.B {
		e = e1
	}
	return xorBytes(e, otHash(r.g.Pow(c1, r.x), len(e)))
}
