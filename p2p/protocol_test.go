//
// protocol_test.go
//
// Copyright (c) 2023-2025 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"math/big"
	"testing"
)

func TestProtocolRoundTrip(t *testing.T) {
	p0, p1 := Loopback()

	go func() {
		if err := p0.SendUint32(44); err != nil {
			t.Error(err)
		}
		if err := p0.SendString("Hello, world!"); err != nil {
			t.Error(err)
		}
		if err := p0.SendData([]byte{1, 2, 3}); err != nil {
			t.Error(err)
		}
		if err := p0.SendBigInt(big.NewInt(123456789)); err != nil {
			t.Error(err)
		}
		if err := p0.SendBool(true); err != nil {
			t.Error(err)
		}
		if err := p0.Close(); err != nil {
			t.Error(err)
		}
	}()

	n, err := p1.ReceiveUint32()
	if err != nil || n != 44 {
		t.Fatalf("ReceiveUint32: got %d, %v", n, err)
	}
	s, err := p1.ReceiveString()
	if err != nil || s != "Hello, world!" {
		t.Fatalf("ReceiveString: got %q, %v", s, err)
	}
	data, err := p1.ReceiveData()
	if err != nil || len(data) != 3 {
		t.Fatalf("ReceiveData: got %v, %v", data, err)
	}
	v, err := p1.ReceiveBigInt()
	if err != nil || v.Int64() != 123456789 {
		t.Fatalf("ReceiveBigInt: got %v, %v", v, err)
	}
	b, err := p1.ReceiveBool()
	if err != nil || !b {
		t.Fatalf("ReceiveBool: got %v, %v", b, err)
	}
}
