//
// dump_test.go
//
// Copyright (c) 2019-2025 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"bytes"
	"crypto/rand"
	"strings"
	"testing"
)

func dumpTestCircuit() *Circuit {
	return &Circuit{
		ID:    "t",
		Alice: []int{0},
		Bob:   []int{1},
		Out:   []int{3},
		Gates: []Gate{
			{ID: 2, Op: XNOR, In: []int{0, 1}},
			{ID: 3, Op: NOT, In: []int{2}},
		},
	}
}

func TestTabulateCountsGates(t *testing.T) {
	var buf bytes.Buffer
	Tabulate(&buf, dumpTestCircuit())

	out := buf.String()
	for _, want := range []string{"XNOR", "NOT", "Gates", "Wires"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in table:\n%s", want, out)
		}
	}
}

func TestDumpGarbledListsEveryRow(t *testing.T) {
	circ := dumpTestCircuit()
	g, err := Garble(rand.Reader, circ)
	if err != nil {
		t.Fatal(err)
	}

	out := DumpGarbled(circ, g)
	// One indented "  [i]" line per table row: four for the XNOR, two
	// for the NOT. Gate header lines ("w2 = XNOR[0 1]") also contain
	// '[' but are not indented.
	if got := strings.Count(out, "  ["); got != 6 {
		t.Fatalf("got %d rows, want 6:\n%s", got, out)
	}
}

func TestDumpListsGates(t *testing.T) {
	out := dumpTestCircuit().Dump()
	if !strings.Contains(out, "w2 = XNOR[0 1]") {
		t.Fatalf("missing gate line:\n%s", out)
	}
}
