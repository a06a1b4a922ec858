//
// psi_test.go
//
// Copyright (c) 2019-2025 Markku Rossi
//
// All rights reserved.
//

package psi

import (
	"crypto/rand"
	"io"
	"math"
	"sort"
	"testing"

	"github.com/markkurossi/psi/internal/plog"
	"github.com/markkurossi/psi/p2p"
)

func testCfg() Config {
	return Config{
		Rand:        rand.Reader,
		CircuitFile: "../circuits/eq32.json",
		OTPrimeBits: 64,
		Logger:      plog.New("test", plog.Minimal, io.Discard, nil, nil),
	}
}

func runSession(t *testing.T, a, b []float32) ([]float32, []float32) {
	t.Helper()
	aliceConn, bobConn := p2p.Loopback()

	bobResult := make(chan []float32, 1)
	bobErr := make(chan error, 1)
	go func() {
		r, err := RunBob(bobConn, b, testCfg())
		bobResult <- r
		bobErr <- err
	}()

	aliceResult, err := RunAlice(aliceConn, a, testCfg())
	if err != nil {
		t.Fatalf("RunAlice: %s", err)
	}
	if err := <-bobErr; err != nil {
		t.Fatalf("RunBob: %s", err)
	}
	return aliceResult, <-bobResult
}

func sortedFloats(vals []float32) []float32 {
	out := append([]float32(nil), vals...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func assertSetEqual(t *testing.T, got, want []float32) {
	t.Helper()
	g := sortedFloats(got)
	w := sortedFloats(want)
	if len(g) != len(w) {
		t.Fatalf("got %v, want %v", g, w)
	}
	for i := range g {
		if math.Float32bits(g[i]) != math.Float32bits(w[i]) {
			t.Fatalf("got %v, want %v", g, w)
		}
	}
}

func TestEndToEndScenario1(t *testing.T) {
	a, b := runSession(t, []float32{1.2, 2.5}, []float32{1.2, 4.3})
	assertSetEqual(t, a, []float32{1.2})
	assertSetEqual(t, b, []float32{1.2})
}

func TestEndToEndScenario2EmptyAlice(t *testing.T) {
	a, b := runSession(t, []float32{}, []float32{1.0})
	assertSetEqual(t, a, []float32{})
	assertSetEqual(t, b, []float32{})
}

func TestEndToEndScenario3AllMatch(t *testing.T) {
	a, b := runSession(t, []float32{1.0, 2.0, 3.0}, []float32{3.0, 2.0, 1.0})
	assertSetEqual(t, a, []float32{1.0, 2.0, 3.0})
	assertSetEqual(t, b, []float32{1.0, 2.0, 3.0})
}

func TestEndToEndScenario4DistinctSigns(t *testing.T) {
	a, b := runSession(t, []float32{1.0}, []float32{-1.0})
	assertSetEqual(t, a, []float32{})
	assertSetEqual(t, b, []float32{})
}

func TestEndToEndScenario5SignedZero(t *testing.T) {
	negZero := float32(math.Copysign(0, -1))
	a, b := runSession(t, []float32{0.0}, []float32{negZero})
	assertSetEqual(t, a, []float32{})
	assertSetEqual(t, b, []float32{})
}

func TestEndToEndBothSignedZerosMatchIndependently(t *testing.T) {
	// +0 and -0 compare equal as float32 values but have distinct
	// binary32 encodings, so each must match its own counterpart;
	// a value-keyed skip set would alias them and drop one.
	negZero := float32(math.Copysign(0, -1))
	a, b := runSession(t, []float32{negZero, 0}, []float32{0, negZero})
	for _, got := range [][]float32{a, b} {
		bits := make(map[uint32]bool, len(got))
		for _, v := range got {
			bits[math.Float32bits(v)] = true
		}
		if len(got) != 2 || !bits[math.Float32bits(0)] ||
			!bits[math.Float32bits(negZero)] {
			t.Fatalf("got %v, want both signed zeros", got)
		}
	}
}

func TestEndToEndScenario6PartialOverlap(t *testing.T) {
	a, b := runSession(t, []float32{3.14, 2.71}, []float32{2.71, 1.41})
	assertSetEqual(t, a, []float32{2.71})
	assertSetEqual(t, b, []float32{2.71})
}

func TestEndToEndEmptyBothSides(t *testing.T) {
	a, b := runSession(t, []float32{}, []float32{})
	assertSetEqual(t, a, []float32{})
	assertSetEqual(t, b, []float32{})
}

func TestEndToEndIdenticalSingleton(t *testing.T) {
	a, b := runSession(t, []float32{7.5}, []float32{7.5})
	assertSetEqual(t, a, []float32{7.5})
	assertSetEqual(t, b, []float32{7.5})
}

func TestEndToEndDuplicatesCollapseToOne(t *testing.T) {
	// RunAlice/RunBob take already-deduplicated sets (deduplication is
	// floatbits.ParseSet's job); a duplicate-valued slice is still
	// expected to behave as its deduplicated equivalent: once Alice's
	// first 5.0 matches, the matched set skips her second 5.0, and the
	// Bob-side exclude map keeps Bob's single 5.0 from being consumed
	// twice.
	a, b := runSession(t, []float32{5.0, 5.0}, []float32{5.0})
	assertSetEqual(t, a, []float32{5.0})
	assertSetEqual(t, b, []float32{5.0})
}

func TestEndToEndNaNPayloadsDistinct(t *testing.T) {
	n1 := math.Float32frombits(0x7fc00001)
	n2 := math.Float32frombits(0x7fc00002)
	a, b := runSession(t, []float32{n1}, []float32{n2})
	assertSetEqual(t, a, []float32{})
	assertSetEqual(t, b, []float32{})
}

func TestEndToEndNaNIdenticalPayloadMatches(t *testing.T) {
	n := math.Float32frombits(0x7fc00001)
	a, b := runSession(t, []float32{n}, []float32{n})
	if len(a) != 1 || math.Float32bits(a[0]) != math.Float32bits(n) {
		t.Fatalf("alice result = %v, want {%v}", a, n)
	}
	if len(b) != 1 || math.Float32bits(b[0]) != math.Float32bits(n) {
		t.Fatalf("bob result = %v, want {%v}", b, n)
	}
}

func TestSortedCopyDoesNotMutateInput(t *testing.T) {
	in := []float32{3, 1, 2}
	out := sortedCopy(in)
	if in[0] != 3 || in[1] != 1 || in[2] != 2 {
		t.Fatalf("sortedCopy mutated its input: %v", in)
	}
	if out[0] != 1 || out[1] != 2 || out[2] != 3 {
		t.Fatalf("sortedCopy did not sort: %v", out)
	}
}
