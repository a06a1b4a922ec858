//
// group_test.go
//
// Copyright (c) 2019-2025 Markku Rossi
//
// All rights reserved.
//

package group

import (
	"crypto/rand"
	"math/big"
	"testing"
)

func TestGeneratorSatisfiesOrder(t *testing.T) {
	g, err := New(rand.Reader, DefaultBits)
	if err != nil {
		t.Fatal(err)
	}
	factors := primeFactors(g.pMinus1)
	for _, q := range factors {
		e := new(big.Int).Div(g.pMinus1, q)
		if g.Pow(g.G, e).Cmp(big.NewInt(1)) == 0 {
			t.Fatalf("generator fails for factor %s", q)
		}
	}
}

func TestMulPowInv(t *testing.T) {
	g, err := New(rand.Reader, DefaultBits)
	if err != nil {
		t.Fatal(err)
	}
	a, err := g.RandInt(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	inv := g.Inv(a)
	one := g.Mul(a, inv)
	if one.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("a * a^-1 = %s, want 1", one)
	}

	e := big.NewInt(5)
	pow := g.Pow(a, e)
	want := g.Mul(g.Mul(g.Mul(g.Mul(a, a), a), a), a)
	if pow.Cmp(want) != 0 {
		t.Fatalf("Pow(a, 5) = %s, want %s", pow, want)
	}
}

func TestRandIntRange(t *testing.T) {
	g, err := New(rand.Reader, DefaultBits)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 50; i++ {
		n, err := g.RandInt(rand.Reader)
		if err != nil {
			t.Fatal(err)
		}
		if n.Sign() <= 0 || n.Cmp(g.pMinus1) > 0 {
			t.Fatalf("RandInt() = %s, want in [1, p-1]", n)
		}
	}
}

func TestNewWithPrimeKeepsPrime(t *testing.T) {
	g, err := New(rand.Reader, DefaultBits)
	if err != nil {
		t.Fatal(err)
	}
	g2, err := NewWithPrime(rand.Reader, g.P)
	if err != nil {
		t.Fatal(err)
	}
	if g2.P.Cmp(g.P) != 0 {
		t.Fatalf("prime mismatch")
	}
}
