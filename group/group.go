//
// group.go
//
// Copyright (c) 2019-2025 Markku Rossi
//
// All rights reserved.
//

// Package group implements a cyclic multiplicative group modulo a
// prime, used by the OT subprotocol (Smart's Diffie-Hellman
// construction). The prime bit-length is configurable; a 64 bit
// prime is far below any credible security margin, so callers
// outside test code should ask for 2048 bits or more.
package group

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

// DefaultBits is the prime bit-length used when none is requested.
// It is only suitable for tests and worked examples, not for any
// deployment that needs real security.
const DefaultBits = 64

// Group is a cyclic group <g> of order p-1 in (Z/pZ)*.
type Group struct {
	P *big.Int
	G *big.Int

	pMinus1 *big.Int
	pMinus2 *big.Int
}

// New samples a fresh random group with a prime of the given
// bit-length and a generator for it. bits <= 0 selects DefaultBits.
//
// The prime is constructed as a safe prime (p = 2q+1 for a prime q),
// so p-1's factorization is known for free as soon as p is accepted:
// a generic factoring step would otherwise have to trial-divide a
// cofactor of roughly half p's bit-length, which is only tractable
// at toy 64 bit sizes and becomes hopeless at the 1024+ bit sizes
// real OT use calls for.
func New(rnd io.Reader, bits int) (*Group, error) {
	if bits <= 0 {
		bits = DefaultBits
	}
	p, q, err := randSafePrime(rnd, bits)
	if err != nil {
		return nil, err
	}
	g := &Group{
		P:       p,
		pMinus1: new(big.Int).Sub(p, big.NewInt(1)),
		pMinus2: new(big.Int).Sub(p, big.NewInt(2)),
	}
	gen, err := g.findGeneratorForFactors(rnd, []*big.Int{big.NewInt(2), q})
	if err != nil {
		return nil, err
	}
	g.G = gen
	return g, nil
}

// NewWithPrime builds a group for a known prime p, searching for a
// generator of its own. Used by callers that need a fresh generator
// for an already-agreed prime, rather than a group handed to them
// whole.
func NewWithPrime(rnd io.Reader, p *big.Int) (*Group, error) {
	return newWithPrime(rnd, p)
}

// FromPG reconstructs a group from a prime and generator received
// whole from a peer, without searching for a generator itself. This
// is how the OT receiver rebuilds the sender's group: the sender
// already did the generator search and sends both p and g across the
// wire, so redoing the search would waste the exchange and risk
// landing on a different generator than the one the sender's
// commitment was computed against.
func FromPG(p, g *big.Int) *Group {
	return &Group{
		P:       new(big.Int).Set(p),
		G:       new(big.Int).Set(g),
		pMinus1: new(big.Int).Sub(p, big.NewInt(1)),
		pMinus2: new(big.Int).Sub(p, big.NewInt(2)),
	}
}

func newWithPrime(rnd io.Reader, p *big.Int) (*Group, error) {
	g := &Group{
		P:       new(big.Int).Set(p),
		pMinus1: new(big.Int).Sub(p, big.NewInt(1)),
		pMinus2: new(big.Int).Sub(p, big.NewInt(2)),
	}
	gen, err := g.findGenerator(rnd)
	if err != nil {
		return nil, err
	}
	g.G = gen
	return g, nil
}

// Mul multiplies two elements: a*b mod p.
func (g *Group) Mul(a, b *big.Int) *big.Int {
	return new(big.Int).Mod(new(big.Int).Mul(a, b), g.P)
}

// Pow computes the e-th power of a: a^e mod p.
func (g *Group) Pow(a, e *big.Int) *big.Int {
	return new(big.Int).Exp(a, e, g.P)
}

// GenPow computes the e-th power of the generator: g^e mod p.
func (g *Group) GenPow(e *big.Int) *big.Int {
	return g.Pow(g.G, e)
}

// Inv returns the multiplicative inverse of a, by Fermat's little
// theorem: a^(p-2) mod p.
func (g *Group) Inv(a *big.Int) *big.Int {
	return new(big.Int).Exp(a, g.pMinus2, g.P)
}

// RandInt returns a uniformly random integer in [1, p-1].
func (g *Group) RandInt(rnd io.Reader) (*big.Int, error) {
	// rand.Int returns a value in [0, max); shift the range to
	// [1, p-1] by sampling from [0, p-2] and adding 1.
	n, err := rand.Int(rnd, g.pMinus1)
	if err != nil {
		return nil, err
	}
	return n.Add(n, big.NewInt(1)), nil
}

// String renders the group as "Group(p=..., g=...)", with p and g in
// decimal.
func (g *Group) String() string {
	return fmt.Sprintf("Group(p=%s, g=%s)", g.P, g.G)
}

// findGenerator samples candidates until one satisfies
// c^((p-1)/q) != 1 for every prime factor q of p-1, factoring p-1
// itself by trial division. Used only by NewWithPrime, for primes
// handed in from outside (tests, mostly) whose factorization isn't
// already known the way randSafePrime's is.
func (g *Group) findGenerator(rnd io.Reader) (*big.Int, error) {
	return g.findGeneratorForFactors(rnd, primeFactors(g.pMinus1))
}

// findGeneratorForFactors samples candidates until one satisfies
// c^((p-1)/q) != 1 for every q in factors, the distinct prime factors
// of p-1.
func (g *Group) findGeneratorForFactors(rnd io.Reader, factors []*big.Int) (*big.Int, error) {
	for {
		c, err := g.RandInt(rnd)
		if err != nil {
			return nil, err
		}
		if g.isGenerator(c, factors) {
			return c, nil
		}
	}
}

func (g *Group) isGenerator(c *big.Int, factors []*big.Int) bool {
	for _, q := range factors {
		e := new(big.Int).Div(g.pMinus1, q)
		if g.Pow(c, e).Cmp(big.NewInt(1)) == 0 {
			return false
		}
	}
	return true
}

// randSafePrime samples a random safe prime p = 2q+1 of the given
// bit-length, where q is itself prime, and returns both. p-1's only
// prime factors are then 2 and q, known without any factoring step.
func randSafePrime(rnd io.Reader, bits int) (p, q *big.Int, err error) {
	if bits < 3 {
		bits = 3
	}
	for {
		q, err = rand.Prime(rnd, bits-1)
		if err != nil {
			return nil, nil, err
		}
		p = new(big.Int).Lsh(q, 1)
		p.Add(p, big.NewInt(1))
		if p.ProbablyPrime(20) {
			return p, q, nil
		}
	}
}

// trialDivisionBound caps the cost of primeFactors: trial division
// runs for at most this many odd candidates regardless of n's size,
// so factoring a several-thousand-bit n stays fast as long as any
// cofactor left over after the bound is itself prime -- true for the
// safe primes this package generates, where the only factors of p-1
// are 2 and one large prime q.
const trialDivisionBound = 1 << 20

// primeFactors returns the distinct prime factors of n, trial-dividing
// small candidates up to trialDivisionBound and then reporting any
// remaining cofactor greater than 1 as a prime factor, without testing
// it. This is exact whenever that cofactor is prime, as for n = p-1 of
// a safe prime; for an arbitrary n with two large prime factors it
// reports their product as a single "prime" factor.
func primeFactors(n *big.Int) []*big.Int {
	var factors []*big.Int
	rem := new(big.Int).Set(n)

	two := big.NewInt(2)
	if rem.Bit(0) == 0 {
		factors = append(factors, new(big.Int).Set(two))
	}
	for rem.Bit(0) == 0 {
		rem.Rsh(rem, 1)
	}

	bound := big.NewInt(trialDivisionBound)
	d := big.NewInt(3)
	dSq := new(big.Int)
	mod := new(big.Int)
	for d.Cmp(bound) <= 0 {
		dSq.Mul(d, d)
		if dSq.Cmp(rem) > 0 {
			break
		}
		found := false
		for {
			new(big.Int).DivMod(rem, d, mod)
			if mod.Sign() != 0 {
				break
			}
			found = true
			rem.Div(rem, d)
		}
		if found {
			factors = append(factors, new(big.Int).Set(d))
		}
		d.Add(d, two)
	}
	if rem.Cmp(big.NewInt(1)) > 0 {
		factors = append(factors, rem)
	}
	return factors
}
