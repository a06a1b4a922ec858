//
// protocol.go
//
// Copyright (c) 2019-2025 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"bufio"
	"encoding/binary"
	"io"
	"math/big"
)

// Conn wraps a byte stream (a TCP connection or an in-process
// loopback) with the PSI wire protocol's length-prefixed framing
// primitives.
type Conn struct {
	closer io.Closer
	io     *bufio.ReadWriter
	Stats  IOStats
}

// IOStats tracks how many bytes a Conn has sent and received.
type IOStats struct {
	Sent  uint64
	Recvd uint64
}

// Sub returns the per-field difference stats-o, for reporting the
// traffic a single request/reply round added.
func (stats IOStats) Sub(o IOStats) IOStats {
	return IOStats{
		Sent:  stats.Sent - o.Sent,
		Recvd: stats.Recvd - o.Recvd,
	}
}

// Sum returns the combined sent+received byte count.
func (stats IOStats) Sum() uint64 {
	return stats.Sent + stats.Recvd
}

// NewConn wraps conn with buffered framing. If conn also implements
// io.Closer, Close propagates to it.
func NewConn(conn io.ReadWriter) *Conn {
	closer, _ := conn.(io.Closer)

	return &Conn{
		closer: closer,
		io: bufio.NewReadWriter(bufio.NewReader(conn),
			bufio.NewWriter(conn)),
	}
}

// Flush pushes any buffered writes out to the underlying stream.
func (c *Conn) Flush() error {
	return c.io.Flush()
}

// Close flushes and closes the connection.
func (c *Conn) Close() error {
	if err := c.Flush(); err != nil {
		return err
	}
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}

// SendUint32 writes val as a 4 byte big-endian integer.
func (c *Conn) SendUint32(val int) error {
	err := binary.Write(c.io, binary.BigEndian, uint32(val))
	if err != nil {
		return err
	}
	c.Stats.Sent += 4
	return nil
}

// SendData writes val as a length-prefixed byte string.
func (c *Conn) SendData(val []byte) error {
	err := c.SendUint32(len(val))
	if err != nil {
		return err
	}
	_, err = c.io.Write(val)
	if err != nil {
		return err
	}
	c.Stats.Sent += uint64(len(val))
	return nil
}

// SendString writes val as a length-prefixed UTF-8 string.
func (c *Conn) SendString(val string) error {
	return c.SendData([]byte(val))
}

// SendBigInt writes val as a length-prefixed big-endian integer,
// matching the encoding the OT subprotocol's group elements need.
func (c *Conn) SendBigInt(val *big.Int) error {
	return c.SendData(val.Bytes())
}

// ReceiveUint32 reads a 4 byte big-endian integer.
func (c *Conn) ReceiveUint32() (int, error) {
	var buf [4]byte

	_, err := io.ReadFull(c.io, buf[:])
	if err != nil {
		return 0, err
	}
	c.Stats.Recvd += 4

	return int(binary.BigEndian.Uint32(buf[:])), nil
}

// ReceiveData reads a length-prefixed byte string.
func (c *Conn) ReceiveData() ([]byte, error) {
	len, err := c.ReceiveUint32()
	if err != nil {
		return nil, err
	}

	result := make([]byte, len)
	_, err = io.ReadFull(c.io, result)
	if err != nil {
		return nil, err
	}
	c.Stats.Recvd += uint64(len)

	return result, nil
}

// ReceiveString reads a length-prefixed UTF-8 string.
func (c *Conn) ReceiveString() (string, error) {
	data, err := c.ReceiveData()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReceiveBigInt reads a length-prefixed big-endian integer.
func (c *Conn) ReceiveBigInt() (*big.Int, error) {
	data, err := c.ReceiveData()
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(data), nil
}

// SendBool writes a single boolean byte.
func (c *Conn) SendBool(val bool) error {
	var b byte
	if val {
		b = 1
	}
	_, err := c.io.Write([]byte{b})
	if err != nil {
		return err
	}
	c.Stats.Sent++
	return nil
}

// ReceiveBool reads a single boolean byte.
func (c *Conn) ReceiveBool() (bool, error) {
	var buf [1]byte
	_, err := io.ReadFull(c.io, buf[:])
	if err != nil {
		return false, err
	}
	c.Stats.Recvd++
	return buf[0] != 0, nil
}
