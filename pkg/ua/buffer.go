// Package ua implements the OPC UA binary codec: little-endian readers
// and writers for the primitive and composite wire types described in
// the OPC UA Binary transport and service protocol (Part 6).
//
// The package generalizes the reader/writer shape of a position-
// tracked input buffer and a growable output buffer, the same split
// backkem/matter's pkg/tlv uses for Matter's TLV codec — but every
// composite type here follows OPC UA's fixed positional encoding
// (length-prefixed strings/arrays, tagged NodeId unions, a
// self-describing Variant byte) rather than TLV's tag/control-octet
// scheme.
package ua

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/foundry-iiot/opcua/pkg/uaerr"
)

// Encoder accumulates an encoded OPC UA message body in a growable
// buffer. The zero value is not usable; use NewEncoder.
type Encoder struct {
	buf bytes.Buffer
}

// NewEncoder returns an Encoder with an empty buffer.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Bytes returns the accumulated encoding.
func (e *Encoder) Bytes() []byte { return e.buf.Bytes() }

// Len returns the number of bytes written so far.
func (e *Encoder) Len() int { return e.buf.Len() }

func (e *Encoder) WriteRaw(b []byte) { e.buf.Write(b) }

func (e *Encoder) WriteByte(b byte) { e.buf.WriteByte(b) }

func (e *Encoder) WriteUint16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	e.buf.Write(b[:])
}

func (e *Encoder) WriteUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	e.buf.Write(b[:])
}

func (e *Encoder) WriteUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.buf.Write(b[:])
}

func (e *Encoder) WriteInt16(v int16) { e.WriteUint16(uint16(v)) }
func (e *Encoder) WriteInt32(v int32) { e.WriteUint32(uint32(v)) }
func (e *Encoder) WriteInt64(v int64) { e.WriteUint64(uint64(v)) }

func (e *Encoder) WriteFloat32(v float32) { e.WriteUint32(math.Float32bits(v)) }
func (e *Encoder) WriteFloat64(v float64) { e.WriteUint64(math.Float64bits(v)) }

// Decoder reads an OPC UA message body from a fixed byte slice,
// tracking the current read position. All decode methods return a
// uaerr.Framing error when the buffer is truncated.
type Decoder struct {
	b   []byte
	pos int
}

// NewDecoder wraps b for sequential decoding.
func NewDecoder(b []byte) *Decoder {
	return &Decoder{b: b}
}

// Pos returns the current read offset.
func (d *Decoder) Pos() int { return d.pos }

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int { return len(d.b) - d.pos }

// Rest returns the unread tail of the buffer without advancing.
func (d *Decoder) Rest() []byte { return d.b[d.pos:] }

func (d *Decoder) need(n int) error {
	if n < 0 || d.Remaining() < n {
		return uaerr.FramingErr("truncated buffer: need %d bytes, have %d", n, d.Remaining())
	}
	return nil
}

func (d *Decoder) ReadByte() (byte, error) {
	if err := d.need(1); err != nil {
		return 0, err
	}
	v := d.b[d.pos]
	d.pos++
	return v, nil
}

func (d *Decoder) ReadRaw(n int) ([]byte, error) {
	if err := d.need(n); err != nil {
		return nil, err
	}
	v := d.b[d.pos : d.pos+n]
	d.pos += n
	return v, nil
}

func (d *Decoder) ReadUint16() (uint16, error) {
	b, err := d.ReadRaw(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (d *Decoder) ReadUint32() (uint32, error) {
	b, err := d.ReadRaw(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (d *Decoder) ReadUint64() (uint64, error) {
	b, err := d.ReadRaw(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (d *Decoder) ReadInt16() (int16, error) {
	v, err := d.ReadUint16()
	return int16(v), err
}

func (d *Decoder) ReadInt32() (int32, error) {
	v, err := d.ReadUint32()
	return int32(v), err
}

func (d *Decoder) ReadInt64() (int64, error) {
	v, err := d.ReadUint64()
	return int64(v), err
}

func (d *Decoder) ReadFloat32() (float32, error) {
	v, err := d.ReadUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (d *Decoder) ReadFloat64() (float64, error) {
	v, err := d.ReadUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}
