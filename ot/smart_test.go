//
// smart_test.go
//
// Copyright (c) 2019-2025 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/markkurossi/psi/group"
)

func TestTransferRecoversChosenMessage(t *testing.T) {
	g, err := group.New(rand.Reader, 256)
	if err != nil {
		t.Fatal(err)
	}

	m0 := []byte("message number zero.......")
	m1 := []byte("message number one........")

	for _, choice := range []bool{false, true} {
		sender, err := NewSender(rand.Reader, g)
		if err != nil {
			t.Fatal(err)
		}
		receiver, err := NewReceiver(rand.Reader, g, choice)
		if err != nil {
			t.Fatal(err)
		}

		h := receiver.H(sender.C())
		c1, e0, e1, err := sender.Encrypt(rand.Reader, h, m0, m1)
		if err != nil {
			t.Fatal(err)
		}

		got := receiver.Decrypt(c1, e0, e1)
		want := m0
		if choice {
			want = m1
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("choice=%v: got %q, want %q", choice, got, want)
		}
	}
}

func TestTransferRecoversMessageOne(t *testing.T) {
	g, err := group.New(rand.Reader, 256)
	if err != nil {
		t.Fatal(err)
	}
	m0 := []byte("0000000000000000")
	m1 := []byte("1111111111111111")

	sender, err := NewSender(rand.Reader, g)
	if err != nil {
		t.Fatal(err)
	}
	receiver, err := NewReceiver(rand.Reader, g, true)
	if err != nil {
		t.Fatal(err)
	}
	h := receiver.H(sender.C())
	c1, e0, e1, err := sender.Encrypt(rand.Reader, h, m0, m1)
	if err != nil {
		t.Fatal(err)
	}
	got := receiver.Decrypt(c1, e0, e1)
	if !bytes.Equal(got, m1) {
		t.Fatalf("got %q, want %q", got, m1)
	}
}
