package uatransport

import "github.com/foundry-iiot/opcua/pkg/ua"

// MinBufferSize is the minimum receive/send buffer size either side
// may negotiate (spec §4.2).
const MinBufferSize = 8192

// HelloMessage is the HEL body: protocolVersion, the four buffer/
// size limits, and the endpoint URL the client intends to connect to.
type HelloMessage struct {
	ProtocolVersion   uint32
	ReceiveBufferSize uint32
	SendBufferSize    uint32
	MaxMessageSize    uint32 // 0 = unlimited
	MaxChunkCount     uint32 // 0 = unlimited
	EndpointURL       string
}

func (h HelloMessage) Encode() []byte {
	e := ua.NewEncoder()
	e.WriteUint32(h.ProtocolVersion)
	e.WriteUint32(h.ReceiveBufferSize)
	e.WriteUint32(h.SendBufferSize)
	e.WriteUint32(h.MaxMessageSize)
	e.WriteUint32(h.MaxChunkCount)
	e.WriteString(h.EndpointURL)
	return e.Bytes()
}

func DecodeHelloMessage(body []byte) (HelloMessage, error) {
	d := ua.NewDecoder(body)
	var h HelloMessage
	var err error
	if h.ProtocolVersion, err = d.ReadUint32(); err != nil {
		return h, err
	}
	if h.ReceiveBufferSize, err = d.ReadUint32(); err != nil {
		return h, err
	}
	if h.SendBufferSize, err = d.ReadUint32(); err != nil {
		return h, err
	}
	if h.MaxMessageSize, err = d.ReadUint32(); err != nil {
		return h, err
	}
	if h.MaxChunkCount, err = d.ReadUint32(); err != nil {
		return h, err
	}
	url, _, err := d.ReadString()
	if err != nil {
		return h, err
	}
	h.EndpointURL = url
	return h, nil
}

// AckMessage is the ACK body: the same shape as HelloMessage minus
// the endpoint URL, carrying the server's revised limits.
type AckMessage struct {
	ProtocolVersion   uint32
	ReceiveBufferSize uint32
	SendBufferSize    uint32
	MaxMessageSize    uint32
	MaxChunkCount     uint32
}

func (a AckMessage) Encode() []byte {
	e := ua.NewEncoder()
	e.WriteUint32(a.ProtocolVersion)
	e.WriteUint32(a.ReceiveBufferSize)
	e.WriteUint32(a.SendBufferSize)
	e.WriteUint32(a.MaxMessageSize)
	e.WriteUint32(a.MaxChunkCount)
	return e.Bytes()
}

func DecodeAckMessage(body []byte) (AckMessage, error) {
	d := ua.NewDecoder(body)
	var a AckMessage
	var err error
	if a.ProtocolVersion, err = d.ReadUint32(); err != nil {
		return a, err
	}
	if a.ReceiveBufferSize, err = d.ReadUint32(); err != nil {
		return a, err
	}
	if a.SendBufferSize, err = d.ReadUint32(); err != nil {
		return a, err
	}
	if a.MaxMessageSize, err = d.ReadUint32(); err != nil {
		return a, err
	}
	if a.MaxChunkCount, err = d.ReadUint32(); err != nil {
		return a, err
	}
	return a, nil
}

// ErrorMessage is the ERR body: a StatusCode and a human-readable
// reason. Receiving one terminates the channel (spec §4.2).
type ErrorMessage struct {
	Status ua.StatusCode
	Reason string
}

func (m ErrorMessage) Encode() []byte {
	e := ua.NewEncoder()
	e.WriteStatusCode(m.Status)
	e.WriteString(m.Reason)
	return e.Bytes()
}

func DecodeErrorMessage(body []byte) (ErrorMessage, error) {
	d := ua.NewDecoder(body)
	var m ErrorMessage
	var err error
	if m.Status, err = d.ReadStatusCode(); err != nil {
		return m, err
	}
	reason, _, err := d.ReadString()
	if err != nil {
		return m, err
	}
	m.Reason = reason
	return m, nil
}

// BuildHelloChunk frames a HelloMessage as a complete HEL chunk.
func BuildHelloChunk(h HelloMessage) []byte {
	return buildChunk(MessageTypeHEL, h.Encode())
}

// BuildAckChunk frames an AckMessage as a complete ACK chunk.
func BuildAckChunk(a AckMessage) []byte {
	return buildChunk(MessageTypeACK, a.Encode())
}

// BuildErrorChunk frames an ErrorMessage as a complete ERR chunk.
func BuildErrorChunk(m ErrorMessage) []byte {
	return buildChunk(MessageTypeERR, m.Encode())
}

func buildChunk(mt MessageType, body []byte) []byte {
	h := ChunkHeader{MessageType: mt, ChunkType: ChunkFinal, MessageSize: uint32(HeaderSize + len(body))}
	out := make([]byte, 0, h.MessageSize)
	out = append(out, h.Encode()...)
	out = append(out, body...)
	return out
}
