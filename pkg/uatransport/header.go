// Package uatransport implements the OPC UA Binary transport: a
// byte-oriented connection over TCP or a UNIX domain socket, framed
// with an 8-byte chunk header per message chunk.
//
// It generalizes backkem/matter's pkg/transport (net.Conn-per-peer
// bookkeeping, a pluggable logging.LeveledLogger) from Matter's
// length-prefixed framing to OPC UA's typed chunk header
// (message-type + chunk-type + total size), and drops UDP (OPC UA
// Binary is TCP/UDS-only per spec §1/§6).
package uatransport

import (
	"github.com/foundry-iiot/opcua/pkg/uaerr"
)

// MessageType is the 3-byte ASCII tag identifying a chunk's protocol
// message.
type MessageType [3]byte

var (
	MessageTypeHEL = MessageType{'H', 'E', 'L'}
	MessageTypeACK = MessageType{'A', 'C', 'K'}
	MessageTypeOPN = MessageType{'O', 'P', 'N'}
	MessageTypeMSG = MessageType{'M', 'S', 'G'}
	MessageTypeCLO = MessageType{'C', 'L', 'O'}
	MessageTypeERR = MessageType{'E', 'R', 'R'}
)

func (m MessageType) String() string { return string(m[:]) }

// IsKnown reports whether m is one of the six protocol message types.
func (m MessageType) IsKnown() bool {
	switch m {
	case MessageTypeHEL, MessageTypeACK, MessageTypeOPN, MessageTypeMSG, MessageTypeCLO, MessageTypeERR:
		return true
	default:
		return false
	}
}

// ChunkType is the 1-byte chunk-continuation flag.
type ChunkType byte

const (
	ChunkFinal        ChunkType = 'F'
	ChunkContinuation ChunkType = 'C'
	ChunkAbort        ChunkType = 'A'
)

func (c ChunkType) valid() bool {
	return c == ChunkFinal || c == ChunkContinuation || c == ChunkAbort
}

// HeaderSize is the fixed size in bytes of every chunk header.
const HeaderSize = 8

// ChunkHeader is the 8-byte header prefixing every chunk: 3-byte
// ASCII message type, 1-byte chunk type, 4-byte little-endian total
// message size (including this header).
type ChunkHeader struct {
	MessageType MessageType
	ChunkType   ChunkType
	MessageSize uint32
}

// BodySize returns the number of bytes remaining after the header.
func (h ChunkHeader) BodySize() uint32 { return h.MessageSize - HeaderSize }

// Encode returns the 8-byte wire encoding of h.
func (h ChunkHeader) Encode() []byte {
	b := make([]byte, HeaderSize)
	copy(b[0:3], h.MessageType[:])
	b[3] = byte(h.ChunkType)
	b[4] = byte(h.MessageSize)
	b[5] = byte(h.MessageSize >> 8)
	b[6] = byte(h.MessageSize >> 16)
	b[7] = byte(h.MessageSize >> 24)
	return b
}

// DecodeChunkHeader parses an 8-byte header. It validates the chunk
// type flag and the total-size lower bound but does not validate the
// message type against the known set — callers that require a known
// type check h.MessageType.IsKnown() themselves so an ERR chunk with
// an unrecognized companion type can still be reported.
func DecodeChunkHeader(b []byte) (ChunkHeader, error) {
	if len(b) != HeaderSize {
		return ChunkHeader{}, uaerr.FramingErr("chunk header must be %d bytes, got %d", HeaderSize, len(b))
	}
	var h ChunkHeader
	copy(h.MessageType[:], b[0:3])
	h.ChunkType = ChunkType(b[3])
	h.MessageSize = uint32(b[4]) | uint32(b[5])<<8 | uint32(b[6])<<16 | uint32(b[7])<<24

	if !h.ChunkType.valid() {
		return ChunkHeader{}, uaerr.FramingErr("invalid chunk type flag %q", b[3])
	}
	if h.MessageSize < HeaderSize {
		return ChunkHeader{}, uaerr.FramingErr("message size %d smaller than header size", h.MessageSize)
	}
	return h, nil
}
