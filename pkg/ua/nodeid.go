package ua

import (
	"fmt"

	"github.com/foundry-iiot/opcua/pkg/uaerr"
)

// IdType discriminates the four NodeId identifier variants.
type IdType uint8

const (
	IdTypeNumeric IdType = iota
	IdTypeString
	IdTypeGuid
	IdTypeOpaque
)

// nodeId encoding-byte values (spec §3/§4.1, Part 6 §5.2.2.9).
const (
	nidTwoByte   = 0x00
	nidFourByte  = 0x01
	nidNumeric   = 0x02
	nidString    = 0x03
	nidGuid      = 0x04
	nidOpaque    = 0x05
	nsUriFlag    = 0x80
	serverIdFlag = 0x40
)

// NodeId identifies a node in the server's address space. It is a
// tagged union over four identifier kinds; the zero value is the
// well-known null NodeId (ns=0, numeric id=0).
type NodeId struct {
	idType    IdType
	ns        uint16
	numeric   uint32
	str       string
	guid      Guid
	opaque    []byte
}

// NewNumericNodeId builds a Numeric NodeId.
func NewNumericNodeId(ns uint16, id uint32) NodeId {
	return NodeId{idType: IdTypeNumeric, ns: ns, numeric: id}
}

// NewStringNodeId builds a String NodeId.
func NewStringNodeId(ns uint16, id string) NodeId {
	return NodeId{idType: IdTypeString, ns: ns, str: id}
}

// NewGuidNodeId builds a Guid NodeId.
func NewGuidNodeId(ns uint16, id Guid) NodeId {
	return NodeId{idType: IdTypeGuid, ns: ns, guid: id}
}

// NewOpaqueNodeId builds an Opaque (raw ByteString) NodeId.
func NewOpaqueNodeId(ns uint16, id []byte) NodeId {
	return NodeId{idType: IdTypeOpaque, ns: ns, opaque: id}
}

func (n NodeId) Type() IdType      { return n.idType }
func (n NodeId) Namespace() uint16 { return n.ns }

// Numeric returns the numeric identifier; only meaningful when
// Type() == IdTypeNumeric.
func (n NodeId) Numeric() uint32 { return n.numeric }

// StringID returns the string identifier; only meaningful when
// Type() == IdTypeString.
func (n NodeId) StringID() string { return n.str }

// GuidID returns the Guid identifier; only meaningful when
// Type() == IdTypeGuid.
func (n NodeId) GuidID() Guid { return n.guid }

// OpaqueID returns the opaque identifier; only meaningful when
// Type() == IdTypeOpaque.
func (n NodeId) OpaqueID() []byte { return n.opaque }

// IsNull reports whether n is the well-known null NodeId.
func (n NodeId) IsNull() bool {
	return n.idType == IdTypeNumeric && n.ns == 0 && n.numeric == 0
}

func (n NodeId) String() string {
	switch n.idType {
	case IdTypeNumeric:
		return fmt.Sprintf("ns=%d;i=%d", n.ns, n.numeric)
	case IdTypeString:
		return fmt.Sprintf("ns=%d;s=%s", n.ns, n.str)
	case IdTypeGuid:
		return fmt.Sprintf("ns=%d;g=%s", n.ns, n.guid)
	case IdTypeOpaque:
		return fmt.Sprintf("ns=%d;b=%x", n.ns, n.opaque)
	default:
		return "ns=0;i=0"
	}
}

// Equal reports structural equality between two NodeIds.
func (n NodeId) Equal(o NodeId) bool {
	if n.idType != o.idType || n.ns != o.ns {
		return false
	}
	switch n.idType {
	case IdTypeNumeric:
		return n.numeric == o.numeric
	case IdTypeString:
		return n.str == o.str
	case IdTypeGuid:
		return n.guid == o.guid
	case IdTypeOpaque:
		return string(n.opaque) == string(o.opaque)
	}
	return true
}

// WriteNodeId encodes n using the smallest of the three numeric forms
// that represents it (two-byte, four-byte, or full numeric), per
// invariant 2 in spec §8: the write path always picks the most
// compact representation, while the read path (ReadNodeId) accepts
// any of the three.
func (e *Encoder) WriteNodeId(n NodeId) {
	switch n.idType {
	case IdTypeNumeric:
		switch {
		case n.ns == 0 && n.numeric <= 255:
			e.WriteByte(nidTwoByte)
			e.WriteByte(byte(n.numeric))
		case n.ns <= 255 && n.numeric <= 65535:
			e.WriteByte(nidFourByte)
			e.WriteByte(byte(n.ns))
			e.WriteUint16(uint16(n.numeric))
		default:
			e.WriteByte(nidNumeric)
			e.WriteUint16(n.ns)
			e.WriteUint32(n.numeric)
		}
	case IdTypeString:
		e.WriteByte(nidString)
		e.WriteUint16(n.ns)
		e.WriteString(n.str)
	case IdTypeGuid:
		e.WriteByte(nidGuid)
		e.WriteUint16(n.ns)
		e.WriteGuid(n.guid)
	case IdTypeOpaque:
		e.WriteByte(nidOpaque)
		e.WriteUint16(n.ns)
		e.WriteByteString(n.opaque)
	}
}

// ReadNodeId decodes a NodeId, accepting any of the three numeric
// encodings (two-byte, four-byte, or full).
func (d *Decoder) ReadNodeId() (NodeId, error) {
	tag, err := d.ReadByte()
	if err != nil {
		return NodeId{}, err
	}
	switch tag {
	case nidTwoByte:
		id, err := d.ReadByte()
		if err != nil {
			return NodeId{}, err
		}
		return NewNumericNodeId(0, uint32(id)), nil
	case nidFourByte:
		ns, err := d.ReadByte()
		if err != nil {
			return NodeId{}, err
		}
		id, err := d.ReadUint16()
		if err != nil {
			return NodeId{}, err
		}
		return NewNumericNodeId(uint16(ns), uint32(id)), nil
	case nidNumeric:
		ns, err := d.ReadUint16()
		if err != nil {
			return NodeId{}, err
		}
		id, err := d.ReadUint32()
		if err != nil {
			return NodeId{}, err
		}
		return NewNumericNodeId(ns, id), nil
	case nidString:
		ns, err := d.ReadUint16()
		if err != nil {
			return NodeId{}, err
		}
		s, _, err := d.ReadString()
		if err != nil {
			return NodeId{}, err
		}
		return NewStringNodeId(ns, s), nil
	case nidGuid:
		ns, err := d.ReadUint16()
		if err != nil {
			return NodeId{}, err
		}
		g, err := d.ReadGuid()
		if err != nil {
			return NodeId{}, err
		}
		return NewGuidNodeId(ns, g), nil
	case nidOpaque:
		ns, err := d.ReadUint16()
		if err != nil {
			return NodeId{}, err
		}
		b, err := d.ReadByteString()
		if err != nil {
			return NodeId{}, err
		}
		return NewOpaqueNodeId(ns, b), nil
	default:
		return NodeId{}, uaerr.FramingErr("unknown NodeId encoding byte 0x%02x", tag)
	}
}

// ExpandedNodeId adds an optional namespace URI and server index to a
// NodeId, used when a reference crosses server/namespace boundaries.
type ExpandedNodeId struct {
	NodeId      NodeId
	NamespaceURI string // empty means absent
	ServerIndex  uint32
}

// WriteExpandedNodeId encodes an ExpandedNodeId: the NodeId encoding
// byte gains the namespace-URI and server-index flag bits when those
// fields are present.
func (e *Encoder) WriteExpandedNodeId(en ExpandedNodeId) {
	hasURI := en.NamespaceURI != ""
	hasServer := en.ServerIndex != 0

	// Encode the NodeId body into a scratch encoder so we can patch
	// its leading encoding byte with the extra flag bits.
	scratch := NewEncoder()
	scratch.WriteNodeId(en.NodeId)
	body := scratch.Bytes()
	tag := body[0]
	if hasURI {
		tag |= nsUriFlag
	}
	if hasServer {
		tag |= serverIdFlag
	}
	e.WriteByte(tag)
	e.WriteRaw(body[1:])
	if hasURI {
		e.WriteString(en.NamespaceURI)
	}
	if hasServer {
		e.WriteUint32(en.ServerIndex)
	}
}

func (d *Decoder) ReadExpandedNodeId() (ExpandedNodeId, error) {
	if err := d.need(1); err != nil {
		return ExpandedNodeId{}, err
	}
	tag := d.b[d.pos]
	hasURI := tag&nsUriFlag != 0
	hasServer := tag&serverIdFlag != 0

	// Temporarily mask the flag bits off so ReadNodeId sees a plain
	// encoding byte.
	masked := make([]byte, len(d.b))
	copy(masked, d.b)
	masked[d.pos] = tag &^ (nsUriFlag | serverIdFlag)
	sub := &Decoder{b: masked, pos: d.pos}

	id, err := sub.ReadNodeId()
	if err != nil {
		return ExpandedNodeId{}, err
	}
	d.pos = sub.pos

	en := ExpandedNodeId{NodeId: id}
	if hasURI {
		s, _, err := d.ReadString()
		if err != nil {
			return ExpandedNodeId{}, err
		}
		en.NamespaceURI = s
	}
	if hasServer {
		idx, err := d.ReadUint32()
		if err != nil {
			return ExpandedNodeId{}, err
		}
		en.ServerIndex = idx
	}
	return en, nil
}
