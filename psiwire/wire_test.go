//
// wire_test.go
//
// Copyright (c) 2019-2025 Markku Rossi
//
// All rights reserved.
//

package psiwire

import (
	"crypto/rand"
	"testing"

	"github.com/markkurossi/psi/circuit"
	"github.com/markkurossi/psi/group"
	"github.com/markkurossi/psi/p2p"
)

func TestHandshakeRoundTrip(t *testing.T) {
	c0, c1 := p2p.Loopback()
	go func() {
		if err := SendHandshake(c0); err != nil {
			t.Error(err)
		}
		c0.Flush()
	}()
	if err := ReceiveHandshake(c1); err != nil {
		t.Fatal(err)
	}
}

func TestBadHandshakeRejected(t *testing.T) {
	c0, c1 := p2p.Loopback()
	go func() {
		c0.SendString("NOPE")
		c0.Flush()
	}()
	if err := ReceiveHandshake(c1); err == nil {
		t.Fatal("expected handshake error")
	}
}

func TestCircuitRoundTrip(t *testing.T) {
	circ := &circuit.Circuit{
		ID:    "x",
		Alice: []int{0},
		Bob:   []int{1},
		Out:   []int{2},
		Gates: []circuit.Gate{{ID: 2, Op: circuit.AND, In: []int{0, 1}}},
	}

	c0, c1 := p2p.Loopback()
	go func() {
		if err := SendCircuit(c0, circ); err != nil {
			t.Error(err)
		}
		c0.Flush()
	}()
	got, err := ReceiveCircuit(c1)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != circ.ID || len(got.Gates) != 1 || got.Gates[0].Op != circuit.AND {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestGarbledTablesAndResultRoundTrip(t *testing.T) {
	circ := &circuit.Circuit{
		ID:    "x",
		Alice: []int{0},
		Bob:   []int{1},
		Out:   []int{2},
		Gates: []circuit.Gate{{ID: 2, Op: circuit.XOR, In: []int{0, 1}}},
	}
	g, err := circuit.Garble(rand.Reader, circ)
	if err != nil {
		t.Fatal(err)
	}

	c0, c1 := p2p.Loopback()
	go func() {
		if err := SendGarbledTables(c0, g.Tables); err != nil {
			t.Error(err)
		}
		if err := SendOutputDecode(c0, g.Outputs); err != nil {
			t.Error(err)
		}
		if err := SendResult(c0, []bool{true, false}); err != nil {
			t.Error(err)
		}
		c0.Flush()
	}()

	tables, err := ReceiveGarbledTables(c1)
	if err != nil {
		t.Fatal(err)
	}
	if len(tables.Gates) != 1 || len(tables.Gates[0].Table) != 4 {
		t.Fatalf("unexpected tables: %+v", tables)
	}

	outputs, err := ReceiveOutputDecode(c1)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := outputs[2]; !ok {
		t.Fatalf("missing output decode for wire 2: %+v", outputs)
	}

	result, err := ReceiveResult(c1)
	if err != nil {
		t.Fatal(err)
	}
	if len(result) != 2 || !result[0] || result[1] {
		t.Fatalf("unexpected result: %v", result)
	}
}

func TestGroupRoundTrip(t *testing.T) {
	grp, err := group.New(rand.Reader, 128)
	if err != nil {
		t.Fatal(err)
	}

	c0, c1 := p2p.Loopback()
	go func() {
		if err := SendGroup(c0, grp); err != nil {
			t.Error(err)
		}
		c0.Flush()
	}()

	got, err := ReceiveGroup(c1)
	if err != nil {
		t.Fatal(err)
	}
	if got.P.Cmp(grp.P) != 0 || got.G.Cmp(grp.G) != 0 {
		t.Fatalf("group round trip mismatch")
	}
}
