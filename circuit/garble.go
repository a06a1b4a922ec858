//
// garble.go
//
// Copyright (c) 2019-2025 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/markkurossi/psi/internal/psierr"
)

// GarbledGate is a single gate's garbled truth table: one ciphertext
// per row, indexed by the external (point-and-permute) bits of the
// inputs the evaluator is holding. NOT gates have two rows; every
// other operator has four.
type GarbledGate struct {
	Table [][]byte
}

// rowIndex maps a gate's held external bits to its table row. For a
// unary gate extB is ignored.
func rowIndex(unary bool, extA, extB bool) int {
	if unary {
		if extA {
			return 1
		}
		return 0
	}
	idx := 0
	if extA {
		idx |= 2
	}
	if extB {
		idx |= 1
	}
	return idx
}

// GarbledTables is the full set of a circuit's garbled gates, keyed
// by gate index (the position in Circuit.Gates, which matches
// gate ID order since every gate's output wire id is unique and
// produced in sequence).
type GarbledTables struct {
	Gates []GarbledGate
}

// OutputDecode maps, for each output wire id, the clear bit that
// corresponds to the external bit false and the one for true. The
// garbler builds it only for the circuit's designated output wires
// and sends it along with the garbled tables, so intermediate wire
// values never leak.
type OutputDecode map[int][2]bool

// Garbled is everything the garbler sends the evaluator up front: the
// gate tables, the input wire labels the evaluator needs (Bob's, to
// be fetched via OT, and Alice's own, sent directly), and the output
// decoding table.
type Garbled struct {
	Tables  GarbledTables
	Wires   map[int]WireLabels
	Outputs OutputDecode
}

// Garble produces a fresh garbling of circ using rnd as the entropy
// source. Each call yields independent labels and tables; the PSI
// driver garbles a new circuit per candidate pair, so no label or key
// material is ever reused across gates or runs.
func Garble(rnd io.Reader, circ *Circuit) (*Garbled, error) {
	wires := make(map[int]WireLabels, circ.NumWires())

	for _, w := range circ.Alice {
		wl, err := newWireLabels(rnd)
		if err != nil {
			return nil, err
		}
		wires[w] = wl
	}
	for _, w := range circ.Bob {
		wl, err := newWireLabels(rnd)
		if err != nil {
			return nil, err
		}
		wires[w] = wl
	}

	tables := GarbledTables{Gates: make([]GarbledGate, len(circ.Gates))}

	for gi, g := range circ.Gates {
		out, err := newWireLabels(rnd)
		if err != nil {
			return nil, err
		}
		wires[g.ID] = out

		gate, err := garbleGate(g, wires, out)
		if err != nil {
			return nil, err
		}
		tables.Gates[gi] = gate
	}

	// The decode entry for wire w maps the external bit an evaluator
	// ends up holding back to the clear value: since Zero.P and
	// One.P always differ, decode[false] is the clear bit whose
	// label has P == false.
	outputs := make(OutputDecode, len(circ.Out))
	for _, w := range circ.Out {
		wl := wires[w]
		var decode [2]bool
		if wl.Zero.P {
			decode[1] = false
			decode[0] = true
		} else {
			decode[0] = false
			decode[1] = true
		}
		outputs[w] = decode
	}

	return &Garbled{Tables: tables, Wires: wires, Outputs: outputs}, nil
}

func garbleGate(g Gate, wires map[int]WireLabels, out WireLabels) (GarbledGate, error) {
	a := wires[g.In[0]]
	unary := g.Op.IsUnary()

	var b WireLabels
	if !unary {
		b = wires[g.In[1]]
	}

	rows := 4
	if unary {
		rows = 2
	}
	table := make([][]byte, rows)

	for bitA := 0; bitA < 2; bitA++ {
		bBits := []int{0}
		if !unary {
			bBits = []int{0, 1}
		}
		for _, bitB := range bBits {
			clearA := bitA == 1
			clearB := bitB == 1

			labelA := a.Label(clearA)
			var labelB Label
			if !unary {
				labelB = b.Label(clearB)
			}

			outBit := g.Op.Eval(clearA, clearB)
			outLabel := out.Label(outBit)

			idx := rowIndex(unary, labelA.P, labelB.P)
			ct, err := encryptRow(labelA, labelB, g.ID, unary, outLabel)
			if err != nil {
				return GarbledGate{}, err
			}
			table[idx] = ct
		}
	}

	return GarbledGate{Table: table}, nil
}

func encodeLabel(l Label) []byte {
	buf := make([]byte, LabelSize+1)
	copy(buf, l.Key[:])
	if l.P {
		buf[LabelSize] = 1
	}
	return buf
}

func decodeLabel(buf []byte) (Label, error) {
	if len(buf) != LabelSize+1 {
		return Label{}, fmt.Errorf("circuit: malformed label payload")
	}
	var l Label
	copy(l.Key[:], buf[:LabelSize])
	l.P = buf[LabelSize] == 1
	return l, nil
}

// encryptRow seals outLabel under a key derived from the two input
// labels that select this table row and the gate's id, so the row
// can only be opened by a party holding exactly those input labels.
func encryptRow(labelA, labelB Label, gateID int, unary bool, outLabel Label) ([]byte, error) {
	key, nonce := rowCrypto(labelA, labelB, gateID)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	aad := rowAAD(gateID, unary, labelA.P, labelB.P)
	return aead.Seal(nil, nonce, encodeLabel(outLabel), aad), nil
}

// decryptRow is the evaluator's counterpart to encryptRow.
func decryptRow(labelA, labelB Label, gateID int, unary bool, ct []byte) (Label, error) {
	key, nonce := rowCrypto(labelA, labelB, gateID)
	block, err := aes.NewCipher(key)
	if err != nil {
		return Label{}, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return Label{}, err
	}
	aad := rowAAD(gateID, unary, labelA.P, labelB.P)
	pt, err := aead.Open(nil, nonce, ct, aad)
	if err != nil {
		return Label{}, psierr.New(psierr.ProtocolIntegrity,
			"garbled table entry failed to authenticate")
	}
	return decodeLabel(pt)
}

// rowCrypto derives a fresh AES-128-GCM key and nonce from the pair
// of input labels selecting this row and the gate's id, using
// domain-separated SHA-256 so the key and nonce are independent even
// though they come from the same input material.
func rowCrypto(labelA, labelB Label, gateID int) (key, nonce []byte) {
	var idBuf [8]byte
	binary.BigEndian.PutUint64(idBuf[:], uint64(gateID))

	kh := sha256.New()
	kh.Write([]byte("psi-garble-key"))
	kh.Write(labelA.Key[:])
	kh.Write(labelB.Key[:])
	kh.Write(idBuf[:])
	key = kh.Sum(nil)[:16]

	nh := sha256.New()
	nh.Write([]byte("psi-garble-nonce"))
	nh.Write(labelA.Key[:])
	nh.Write(labelB.Key[:])
	nh.Write(idBuf[:])
	nonce = nh.Sum(nil)[:12]
	return key, nonce
}

func rowAAD(gateID int, unary, extA, extB bool) []byte {
	var buf [10]byte
	binary.BigEndian.PutUint64(buf[:8], uint64(gateID))
	if unary {
		buf[8] = 1
	}
	if extA {
		buf[9] |= 1
	}
	if extB {
		buf[9] |= 2
	}
	return buf[:]
}
