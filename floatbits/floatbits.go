//
// floatbits.go
//
// Copyright (c) 2019-2025 Markku Rossi
//
// All rights reserved.
//

// Package floatbits converts between IEEE-754 binary32 floats and
// ordered bit vectors, and parses the brace-enclosed set syntax the
// PSI CLI accepts.
package floatbits

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// NumBits is the width of the binary32 bit encoding this package
// produces.
const NumBits = 32

var reSet = regexp.MustCompilePOSIX(`^[[:space:]]*\{(.*)\}[[:space:]]*$`)

// ToBits packs x as IEEE-754 binary32, big-endian, most-significant
// bit first. Two floats produce the same bits iff their binary32
// encodings are bitwise identical -- in particular +0 and -0 differ,
// and distinct NaN payloads differ.
func ToBits(x float32) [NumBits]bool {
	u := math.Float32bits(x)
	var bits [NumBits]bool
	for i := 0; i < NumBits; i++ {
		shift := uint(NumBits - 1 - i)
		bits[i] = (u>>shift)&1 == 1
	}
	return bits
}

// FromBits reconstructs the float32 whose binary32 encoding matches
// bits.
func FromBits(bits [NumBits]bool) float32 {
	var u uint32
	for i := 0; i < NumBits; i++ {
		if bits[i] {
			u |= 1 << uint(NumBits-1-i)
		}
	}
	return math.Float32frombits(u)
}

// ParseSet parses a string of the form "{v1, v2, ...}" into a
// deduplicated slice of float32 values. An empty interior ("{}", or
// only whitespace) yields an empty, non-nil slice. Duplicates are
// removed by comparing the trimmed textual representation before
// parsing, so "1.0" and "1.00" count as distinct entries even though
// they parse to the same float.
func ParseSet(s string) ([]float32, error) {
	m := reSet.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("floatbits: invalid set syntax %q", s)
	}
	inner := strings.TrimSpace(m[1])
	if inner == "" {
		return []float32{}, nil
	}

	parts := strings.Split(inner, ",")
	seen := make(map[string]bool, len(parts))
	var out []float32

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if seen[p] {
			continue
		}
		seen[p] = true

		v, err := strconv.ParseFloat(p, 32)
		if err != nil {
			return nil, fmt.Errorf("floatbits: invalid value %q: %w", p, err)
		}
		out = append(out, float32(v))
	}
	if out == nil {
		out = []float32{}
	}
	return out, nil
}

// FormatSet renders vals as a brace-enclosed comma-separated list,
// the CLI's result-printing format.
func FormatSet(vals []float32) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, v := range vals {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	}
	b.WriteByte('}')
	return b.String()
}
