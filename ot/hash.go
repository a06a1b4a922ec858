//
// hash.go
//
// Copyright (c) 2019-2025 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"math/big"

	"golang.org/x/crypto/sha3"
)

// otHash derives msgLen bytes of key material from pubKey using
// SHAKE-256. An extendable-output hash fits here better than a
// fixed-size one: the two messages a Sender protects are rarely the
// same length as a SHA-256 digest, and padding/truncating a fixed
// hash invites subtle bias.
func otHash(pubKey *big.Int, msgLen int) []byte {
	h := sha3.NewShake256()
	h.Write(pubKey.Bytes())
	digest := make([]byte, msgLen)
	h.Read(digest)
	return digest
}
