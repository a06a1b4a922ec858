//
// dump.go
//
// Copyright (c) 2019-2025 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/markkurossi/tabulate"
)

// Stats counts how many gates of each operator a circuit contains.
func (c *Circuit) Stats() map[Operation]int {
	stats := make(map[Operation]int)
	for _, g := range c.Gates {
		stats[g.Op]++
	}
	return stats
}

var opOrder = []Operation{AND, OR, XOR, NOT, NAND, NOR, XNOR}

// Tabulate writes a gate-count breakdown of circ to out, in the style
// of the full output mode's circuit dump.
func Tabulate(out io.Writer, circ *Circuit) {
	stats := circ.Stats()

	tab := tabulate.New(tabulate.Github)
	tab.Header("Circuit")
	for _, op := range opOrder {
		tab.Header(op.String()).SetAlign(tabulate.MR)
	}
	tab.Header("Gates").SetAlign(tabulate.MR)
	tab.Header("Wires").SetAlign(tabulate.MR)

	row := tab.Row()
	row.Column(circ.ID)
	for _, op := range opOrder {
		row.Column(strconv.Itoa(stats[op]))
	}
	row.Column(strconv.Itoa(len(circ.Gates)))
	row.Column(strconv.Itoa(circ.NumWires()))

	tab.Print(out)
}

// DumpGarbled renders one garbling's encrypted truth tables, one hex
// row per table entry, for the full output mode's tables file. The
// ciphertexts are safe to print: without the input labels selecting
// a row they are indistinguishable from random bytes.
func DumpGarbled(circ *Circuit, g *Garbled) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", circ)
	for gi, gate := range circ.Gates {
		fmt.Fprintf(&b, "%s\n", gate)
		for ri, row := range g.Tables.Gates[gi].Table {
			fmt.Fprintf(&b, "  [%d] %x\n", ri, row)
		}
	}
	return b.String()
}
