//
// progress_test.go
//
// Copyright (c) 2019-2025 Markku Rossi
//
// All rights reserved.
//

package psi

import (
	"bytes"
	"strings"
	"testing"

	"github.com/markkurossi/psi/p2p"
)

func TestTextProgressCountsSteps(t *testing.T) {
	var buf bytes.Buffer
	p := NewTextProgress(&buf)

	p.Start(3)
	p.Step()
	p.Step()
	p.Step()
	p.Done()

	out := buf.String()
	if !strings.Contains(out, "3/3") {
		t.Fatalf("missing final counter in %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Fatalf("Done should end the line: %q", out)
	}
}

func TestTextProgressEmptyTotal(t *testing.T) {
	var buf bytes.Buffer
	p := NewTextProgress(&buf)

	p.Start(0)
	p.Done()

	if buf.Len() != 0 {
		t.Fatalf("empty loop should print nothing, got %q", buf.String())
	}
}

func TestProgressThreadedThroughSession(t *testing.T) {
	var buf bytes.Buffer
	aliceConn, bobConn := p2p.Loopback()

	bobErr := make(chan error, 1)
	go func() {
		_, err := RunBob(bobConn, []float32{2.0}, testCfg())
		bobErr <- err
	}()

	cfg := testCfg()
	cfg.Progress = NewTextProgress(&buf)
	if _, err := RunAlice(aliceConn, []float32{1.0, 2.0}, cfg); err != nil {
		t.Fatalf("RunAlice: %s", err)
	}
	if err := <-bobErr; err != nil {
		t.Fatalf("RunBob: %s", err)
	}
	if !strings.Contains(buf.String(), "2/2") {
		t.Fatalf("progress never reached 2/2: %q", buf.String())
	}
}
