package ua

import "github.com/foundry-iiot/opcua/pkg/uaerr"

// ExtensionObjectEncoding discriminates the body encoding of an
// ExtensionObject.
type ExtensionObjectEncoding byte

const (
	ExtensionEncodingNone   ExtensionObjectEncoding = 0
	ExtensionEncodingBinary ExtensionObjectEncoding = 1
	ExtensionEncodingXML    ExtensionObjectEncoding = 2
)

// ExtensionObject is a polymorphic payload: a NodeId naming the binary
// (or XML) encoding of a service type, plus the encoded body.
//
// Re-architecture note (spec §9): rather than runtime type reflection,
// decoding and encoding of the body go through the package-level
// TypeRegistry, keyed by the encoding NodeId. A TypeId the registry
// does not recognize decodes to an UnknownExtensionObject preserving
// the raw body bytes, so round-trip fidelity holds without an open
// set of subtypes.
type ExtensionObject struct {
	TypeID   NodeId
	Encoding ExtensionObjectEncoding
	Body     []byte // raw encoded body (binary or XML), empty for None
}

// BinaryCodec is implemented by every typed OPC UA message body
// (service requests, responses, identity tokens, filters, ...). Both
// capability sets named in spec §9 ("ServiceRequest" and
// "ServiceResponse") are the same shape, so a single interface serves
// both directions; the dispatcher in pkg/uaservices is generic over
// any type satisfying it.
type BinaryCodec interface {
	// EncodingTypeID returns the NodeId of this type's
	// DefaultBinary encoding, used to tag the ExtensionObject / MSG
	// body TypeId on the wire.
	EncodingTypeID() NodeId
	// Encode writes the type's binary body (not including the
	// TypeId) to e.
	Encode(e *Encoder) error
}

// BinaryDecodeFunc decodes a type's binary body from d.
type BinaryDecodeFunc func(d *Decoder) (BinaryCodec, error)

// TypeRegistry maps encoding NodeIds to decode functions. A single
// process-wide DefaultRegistry is populated by the message-defining
// packages at init time; callers needing isolation can construct their
// own.
type TypeRegistry struct {
	decoders map[string]BinaryDecodeFunc
}

// NewTypeRegistry returns an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{decoders: make(map[string]BinaryDecodeFunc)}
}

// Register associates a binary encoding NodeId with its decode
// function. Re-registering the same NodeId overwrites the previous
// entry.
func (r *TypeRegistry) Register(typeID NodeId, fn BinaryDecodeFunc) {
	r.decoders[typeID.String()] = fn
}

// Lookup returns the decode function for typeID, or ok=false if none
// is registered.
func (r *TypeRegistry) Lookup(typeID NodeId) (BinaryDecodeFunc, bool) {
	fn, ok := r.decoders[typeID.String()]
	return fn, ok
}

// DefaultRegistry is the registry consulted by DecodeBody and by
// ExtensionObject decoding when no explicit registry is supplied.
// This package (ServiceFault), pkg/uasc, and pkg/uaservices register
// their message types into it via their init() functions.
var DefaultRegistry = NewTypeRegistry()

// UnknownExtensionObject preserves a TypeId and its raw body when no
// decoder is registered for it, so encode(decode(x)) == x still holds
// for payloads this client does not model.
type UnknownExtensionObject struct {
	TypeID NodeId
	Raw    []byte
}

func (u UnknownExtensionObject) EncodingTypeID() NodeId { return u.TypeID }
func (u UnknownExtensionObject) Encode(e *Encoder) error {
	e.WriteRaw(u.Raw)
	return nil
}

func (e *Encoder) WriteExtensionObject(o ExtensionObject) error {
	e.WriteNodeId(o.TypeID)
	e.WriteByte(byte(o.Encoding))
	switch o.Encoding {
	case ExtensionEncodingNone:
		// no body
	case ExtensionEncodingBinary, ExtensionEncodingXML:
		e.WriteByteString(o.Body)
	default:
		return uaerr.UsageErr("unknown extension object encoding %d", o.Encoding)
	}
	return nil
}

func (d *Decoder) ReadExtensionObject() (ExtensionObject, error) {
	typeID, err := d.ReadNodeId()
	if err != nil {
		return ExtensionObject{}, err
	}
	encByte, err := d.ReadByte()
	if err != nil {
		return ExtensionObject{}, err
	}
	enc := ExtensionObjectEncoding(encByte)
	var body []byte
	switch enc {
	case ExtensionEncodingNone:
	case ExtensionEncodingBinary, ExtensionEncodingXML:
		body, err = d.ReadByteString()
		if err != nil {
			return ExtensionObject{}, err
		}
	default:
		return ExtensionObject{}, uaerr.FramingErr("unknown extension object encoding byte 0x%02x", encByte)
	}
	return ExtensionObject{TypeID: typeID, Encoding: enc, Body: body}, nil
}

// DecodeBody decodes a MSG-frame body (a bare TypeId followed by the
// type's encoded bytes, not a full ExtensionObject envelope) via
// registry, falling back to UnknownExtensionObject when typeID has no
// registered decoder.
func DecodeBody(registry *TypeRegistry, typeID NodeId, body []byte) (BinaryCodec, error) {
	if registry == nil {
		registry = DefaultRegistry
	}
	fn, ok := registry.Lookup(typeID)
	if !ok {
		return UnknownExtensionObject{TypeID: typeID, Raw: body}, nil
	}
	return fn(NewDecoder(body))
}

// EncodeTyped wraps a BinaryCodec value into a binary-encoded
// ExtensionObject.
func EncodeTyped(v BinaryCodec) (ExtensionObject, error) {
	e := NewEncoder()
	if err := v.Encode(e); err != nil {
		return ExtensionObject{}, err
	}
	return ExtensionObject{TypeID: v.EncodingTypeID(), Encoding: ExtensionEncodingBinary, Body: e.Bytes()}, nil
}

// DecodeTyped decodes o's body via registry, or returns an
// UnknownExtensionObject when o.TypeID has no registered decoder.
func DecodeTyped(registry *TypeRegistry, o ExtensionObject) (BinaryCodec, error) {
	if registry == nil {
		registry = DefaultRegistry
	}
	if o.Encoding != ExtensionEncodingBinary {
		return UnknownExtensionObject{TypeID: o.TypeID, Raw: o.Body}, nil
	}
	fn, ok := registry.Lookup(o.TypeID)
	if !ok {
		return UnknownExtensionObject{TypeID: o.TypeID, Raw: o.Body}, nil
	}
	return fn(NewDecoder(o.Body))
}
