//
// main.go
//
// Copyright (c) 2019-2025 Markku Rossi
//
// All rights reserved.
//

// Command psi runs one party of the two-party private set
// intersection protocol: Alice (the garbler), Bob (the evaluator), or
// both at once in-process for trying the protocol without a second
// terminal.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"net"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"

	"github.com/markkurossi/psi/floatbits"
	"github.com/markkurossi/psi/internal/plog"
	"github.com/markkurossi/psi/internal/psierr"
	"github.com/markkurossi/psi/p2p"
	"github.com/markkurossi/psi/psi"
)

func main() {
	endpoint := flag.String("e", psi.DefaultEndpoint, "Network endpoint")
	circuitFile := flag.String("c", psi.DefaultCircuitFile, "Circuit file")
	circuitID := flag.String("circuit", psi.DefaultCircuitID, "Circuit id")
	mode := flag.String("o", "info", "Output mode: minimal, info, or full")
	otBits := flag.Int("ot-bits", psi.DefaultOTPrimeBits, "OT prime group bit length")
	flag.Parse()

	// Positional arguments: party, then one set (alice/bob) or two
	// sets (test, which runs both parties in-process and needs each
	// side's own input).
	party := flag.Arg(0)
	if party != "alice" && party != "bob" && party != "test" {
		usage()
	}
	wantArgs := 2
	if party == "test" {
		wantArgs = 3
	}
	if flag.NArg() != wantArgs {
		usage()
	}

	logMode, err := plog.ParseMode(*mode)
	if err != nil {
		log.Fatal(err)
	}

	cfg := psi.Config{
		CircuitFile: *circuitFile,
		CircuitID:   *circuitID,
		OTPrimeBits: *otBits,
	}

	switch party {
	case "alice":
		vals, err := parseSetArg(flag.Arg(1))
		if err != nil {
			log.Fatal(err)
		}
		logger, closeLog, err := newPartyLogger("alice", logMode)
		if err != nil {
			log.Fatal(err)
		}
		defer closeLog()
		cfg.Logger = logger
		if logMode != plog.Minimal {
			cfg.Progress = psi.NewTextProgress(os.Stdout)
		}
		if err := runAlice(*endpoint, vals, cfg); err != nil {
			log.Fatal(err)
		}

	case "bob":
		vals, err := parseSetArg(flag.Arg(1))
		if err != nil {
			log.Fatal(err)
		}
		logger, closeLog, err := newPartyLogger("bob", logMode)
		if err != nil {
			log.Fatal(err)
		}
		defer closeLog()
		cfg.Logger = logger
		if err := runBob(*endpoint, vals, cfg); err != nil {
			log.Fatal(err)
		}

	case "test":
		a, err := parseSetArg(flag.Arg(1))
		if err != nil {
			log.Fatal(err)
		}
		b, err := parseSetArg(flag.Arg(2))
		if err != nil {
			log.Fatal(err)
		}
		if err := runTest(a, b, logMode, cfg); err != nil {
			log.Fatal(err)
		}
	}
}

// newPartyLogger builds party's logger. In full mode it opens
// output/ot_<Party>.txt and, for alice (the garbler, the only party
// who produces garbled-table dumps), output/tables.txt; in
// minimal/info mode no files are created. The returned closer must
// be deferred by the caller to close whichever files were opened.
func newPartyLogger(party string, mode plog.Mode) (*plog.Logger, func(), error) {
	if mode != plog.Full {
		return plog.New(party, mode, os.Stdout, nil, nil), func() {}, nil
	}

	if err := os.MkdirAll("output", 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating output directory: %w", err)
	}

	title := strings.ToUpper(party[:1]) + party[1:]
	otFile, err := os.Create(fmt.Sprintf("output/ot_%s.txt", title))
	if err != nil {
		return nil, nil, fmt.Errorf("opening OT transcript file: %w", err)
	}

	var tablesFile *os.File
	var tables io.Writer
	if party == "alice" {
		tablesFile, err = os.Create("output/tables.txt")
		if err != nil {
			otFile.Close()
			return nil, nil, fmt.Errorf("opening garbled-table dump file: %w", err)
		}
		tables = tablesFile
	}

	logger := plog.New(party, mode, os.Stdout, otFile, tables)
	closer := func() {
		otFile.Close()
		if tablesFile != nil {
			tablesFile.Close()
		}
	}
	return logger, closer, nil
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: psi [flags] alice {set}\n")
	fmt.Fprintf(os.Stderr, "       psi [flags] bob {set}\n")
	fmt.Fprintf(os.Stderr, "       psi [flags] test {aliceSet} {bobSet}\n")
	flag.PrintDefaults()
	os.Exit(1)
}

func parseSetArg(s string) ([]float32, error) {
	vals, err := floatbits.ParseSet(s)
	if err != nil {
		return nil, fmt.Errorf("invalid set %q: %w", s, err)
	}
	return vals, nil
}

// runAlice dials bob's listener and drives the garbler's side of the
// protocol. Alice's input set is named on the command line here
// since Alice, not Bob, initiates the connection.
func runAlice(endpoint string, vals []float32, cfg psi.Config) error {
	nc, err := net.Dial("tcp", endpoint)
	if err != nil {
		return err
	}
	defer nc.Close()

	conn := p2p.NewConn(nc)
	_, err = psi.RunAlice(conn, vals, cfg)
	return err
}

// runBob listens for a single connection and drives the evaluator's
// side of the protocol. A SIGINT during the session closes the
// connection out from under the blocked read/write Bob is waiting on,
// which is this protocol's only suspension point, and is reported
// back as a Canceled error rather than a raw transport failure.
func runBob(endpoint string, vals []float32, cfg psi.Config) error {
	ln, err := net.Listen("tcp", endpoint)
	if err != nil {
		return err
	}
	defer ln.Close()

	cfg.Logger.Info(fmt.Sprintf("Listening for Alice at %s", endpoint))
	nc, err := ln.Accept()
	if err != nil {
		return err
	}
	defer nc.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	var interrupted atomic.Bool
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-sigCh:
			interrupted.Store(true)
			cfg.Logger.Info("Interrupted, closing connection")
			nc.Close()
		case <-done:
		}
	}()

	conn := p2p.NewConn(nc)
	_, err = psi.RunBob(conn, vals, cfg)
	if err != nil {
		if interrupted.Load() {
			return psierr.New(psierr.Canceled, "interrupted")
		}
		return err
	}
	return nil
}

// runTest runs Alice and Bob in-process over a pipe, for trying the
// protocol without a second terminal or a real network endpoint. Bob
// runs in his own goroutine and the two sides only ever communicate
// over the same opaque Conn either side would use talking over a
// real socket.
//
// alice and bob are each party's own input set; the trailing line
// reports whether Alice's PSI result matches the plaintext
// intersection of the two sets.
func runTest(alice, bob []float32, mode plog.Mode, cfg psi.Config) error {
	aliceConn, bobConn := p2p.Loopback()

	aliceCfg, bobCfg := cfg, cfg
	aliceCfg.Logger = plog.New("alice", mode, os.Stdout, os.Stderr, os.Stderr)
	bobCfg.Logger = plog.New("bob", mode, os.Stdout, os.Stderr, os.Stderr)
	if mode != plog.Minimal {
		aliceCfg.Progress = psi.NewTextProgress(os.Stdout)
	}

	bobErr := make(chan error, 1)
	go func() {
		_, err := psi.RunBob(bobConn, bob, bobCfg)
		bobErr <- err
	}()

	result, err := psi.RunAlice(aliceConn, alice, aliceCfg)
	if err != nil {
		return err
	}
	if err := <-bobErr; err != nil {
		return err
	}

	fmt.Println("match:", setsEqual(result, plaintextIntersection(alice, bob)))
	return nil
}

// plaintextIntersection computes { x in a : x in b } directly, by
// binary32 bit-pattern equality (so signed zeros and distinct NaN
// payloads compare unequal), for test mode's self-check against the
// PSI result.
func plaintextIntersection(a, b []float32) []float32 {
	inB := make(map[uint32]bool, len(b))
	for _, v := range b {
		inB[math.Float32bits(v)] = true
	}
	var out []float32
	seen := make(map[uint32]bool)
	for _, v := range a {
		bits := math.Float32bits(v)
		if inB[bits] && !seen[bits] {
			seen[bits] = true
			out = append(out, v)
		}
	}
	return out
}

// setsEqual compares two float32 sets for membership equality,
// ignoring order, by binary32 bit pattern.
func setsEqual(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	bBits := make(map[uint32]bool, len(b))
	for _, v := range b {
		bBits[math.Float32bits(v)] = true
	}
	for _, v := range a {
		if !bBits[math.Float32bits(v)] {
			return false
		}
	}
	return true
}
