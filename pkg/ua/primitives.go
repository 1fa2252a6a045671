package ua

import "github.com/foundry-iiot/opcua/pkg/uaerr"

// WriteBoolean encodes a Boolean as a single byte (0 or 1).
func (e *Encoder) WriteBoolean(v bool) {
	if v {
		e.WriteByte(1)
	} else {
		e.WriteByte(0)
	}
}

func (d *Decoder) ReadBoolean() (bool, error) {
	b, err := d.ReadByte()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

func (e *Encoder) WriteSByte(v int8) { e.WriteByte(byte(v)) }

func (d *Decoder) ReadSByte() (int8, error) {
	b, err := d.ReadByte()
	return int8(b), err
}

// WriteArrayLength writes an Int32 array/string length prefix.
// -1 denotes a null array, 0 an empty one; values < -1 are a usage
// error at the encode call site, never produced by this codec.
func (e *Encoder) WriteArrayLength(n int) {
	e.WriteInt32(int32(n))
}

// ReadArrayLength reads the Int32 length prefix shared by arrays,
// strings, and byte strings. Returns -1 for null, >=0 otherwise;
// values < -1 on the wire are a Framing error (spec §4.1, §8).
func (d *Decoder) ReadArrayLength() (int, error) {
	n, err := d.ReadInt32()
	if err != nil {
		return 0, err
	}
	if n < -1 {
		return 0, uaerr.FramingErr("negative array length %d is invalid (only -1 is permitted)", n)
	}
	return int(n), nil
}

// WriteString encodes a String: Int32 length prefix (-1 for a nil
// string, via WriteNilString) followed by raw UTF-8 bytes.
func (e *Encoder) WriteString(s string) {
	e.WriteArrayLength(len(s))
	e.WriteRaw([]byte(s))
}

// WriteNilString encodes the null-string sentinel (length -1).
func (e *Encoder) WriteNilString() {
	e.WriteInt32(-1)
}

// ReadString decodes a String. It returns ok=false for a null string
// (length -1), distinguishing null from empty per spec §8.
func (d *Decoder) ReadString() (s string, ok bool, err error) {
	n, err := d.ReadArrayLength()
	if err != nil {
		return "", false, err
	}
	if n == -1 {
		return "", false, nil
	}
	b, err := d.ReadRaw(n)
	if err != nil {
		return "", false, err
	}
	return string(b), true, nil
}

// WriteByteString encodes a ByteString: Int32 length prefix followed
// by raw bytes. A nil slice encodes as length -1.
func (e *Encoder) WriteByteString(b []byte) {
	if b == nil {
		e.WriteInt32(-1)
		return
	}
	e.WriteArrayLength(len(b))
	e.WriteRaw(b)
}

// ReadByteString decodes a ByteString. Returns a nil slice for the
// null sentinel, and a non-nil (possibly zero-length) slice otherwise.
func (d *Decoder) ReadByteString() ([]byte, error) {
	n, err := d.ReadArrayLength()
	if err != nil {
		return nil, err
	}
	if n == -1 {
		return nil, nil
	}
	b, err := d.ReadRaw(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}
