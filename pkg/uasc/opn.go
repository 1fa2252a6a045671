package uasc

import "github.com/foundry-iiot/opcua/pkg/ua"

// OpenSecureChannelRequestTypeID, OpenSecureChannelResponseTypeID,
// CloseSecureChannelRequestTypeID and CloseSecureChannelResponseTypeID
// are the well-known TypeIds for the channel-lifecycle service bodies
// (spec §4.4 step 3).
var (
	OpenSecureChannelRequestTypeID   = ua.NewNumericNodeId(0, 446)
	OpenSecureChannelResponseTypeID  = ua.NewNumericNodeId(0, 449)
	CloseSecureChannelRequestTypeID  = ua.NewNumericNodeId(0, 452)
	CloseSecureChannelResponseTypeID = ua.NewNumericNodeId(0, 455)
)

// RequestType discriminates an Issue from a Renew OPN exchange.
type RequestType uint32

const (
	RequestTypeIssue RequestType = 0
	RequestTypeRenew RequestType = 1
)

// wireSecurityMode values per the MessageSecurityMode enumeration
// (0=Invalid is never sent by this client).
const (
	wireModeNone           uint32 = 1
	wireModeSign           uint32 = 2
	wireModeSignAndEncrypt uint32 = 3
)

func encodeSecurityMode(e *ua.Encoder, mode uint32) { e.WriteUint32(mode) }

// OpenSecureChannelRequest is the body of an OPN chunk (spec §4.4
// step 3 / §6).
type OpenSecureChannelRequest struct {
	ClientProtocolVersion uint32
	RequestType           RequestType
	SecurityMode          uint32 // wireMode* constant
	ClientNonce           []byte
	RequestedLifetime     uint32 // milliseconds
}

func (r OpenSecureChannelRequest) EncodingTypeID() ua.NodeId { return OpenSecureChannelRequestTypeID }

func (r OpenSecureChannelRequest) Encode(e *ua.Encoder) error {
	e.WriteUint32(r.ClientProtocolVersion)
	e.WriteUint32(uint32(r.RequestType))
	encodeSecurityMode(e, r.SecurityMode)
	e.WriteByteString(r.ClientNonce)
	e.WriteUint32(r.RequestedLifetime)
	return nil
}

func DecodeOpenSecureChannelRequest(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r OpenSecureChannelRequest
	var err error
	if r.ClientProtocolVersion, err = d.ReadUint32(); err != nil {
		return nil, err
	}
	rt, err := d.ReadUint32()
	if err != nil {
		return nil, err
	}
	r.RequestType = RequestType(rt)
	if r.SecurityMode, err = d.ReadUint32(); err != nil {
		return nil, err
	}
	if r.ClientNonce, err = d.ReadByteString(); err != nil {
		return nil, err
	}
	if r.RequestedLifetime, err = d.ReadUint32(); err != nil {
		return nil, err
	}
	return r, nil
}

// SecurityToken identifies the keys currently in force for a channel
// (spec §3 "Channel invariants" / §4.4).
type SecurityToken struct {
	ChannelID       uint32
	TokenID         uint32
	CreatedAt       ua.DateTime
	RevisedLifetime uint32 // milliseconds
}

func (t SecurityToken) Encode(e *ua.Encoder) {
	e.WriteUint32(t.ChannelID)
	e.WriteUint32(t.TokenID)
	e.WriteDateTime(t.CreatedAt)
	e.WriteUint32(t.RevisedLifetime)
}

func DecodeSecurityToken(d *ua.Decoder) (SecurityToken, error) {
	var t SecurityToken
	var err error
	if t.ChannelID, err = d.ReadUint32(); err != nil {
		return t, err
	}
	if t.TokenID, err = d.ReadUint32(); err != nil {
		return t, err
	}
	if t.CreatedAt, err = d.ReadDateTime(); err != nil {
		return t, err
	}
	if t.RevisedLifetime, err = d.ReadUint32(); err != nil {
		return t, err
	}
	return t, nil
}

// OpenSecureChannelResponse is the body of the server's OPN reply
// (spec §4.4 step 4).
type OpenSecureChannelResponse struct {
	ServerProtocolVersion uint32
	SecurityToken         SecurityToken
	ServerNonce           []byte
}

func (r OpenSecureChannelResponse) EncodingTypeID() ua.NodeId { return OpenSecureChannelResponseTypeID }

func (r OpenSecureChannelResponse) Encode(e *ua.Encoder) error {
	e.WriteUint32(r.ServerProtocolVersion)
	r.SecurityToken.Encode(e)
	e.WriteByteString(r.ServerNonce)
	return nil
}

func DecodeOpenSecureChannelResponse(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r OpenSecureChannelResponse
	var err error
	if r.ServerProtocolVersion, err = d.ReadUint32(); err != nil {
		return nil, err
	}
	if r.SecurityToken, err = DecodeSecurityToken(d); err != nil {
		return nil, err
	}
	if r.ServerNonce, err = d.ReadByteString(); err != nil {
		return nil, err
	}
	return r, nil
}

// CloseSecureChannelRequest is the (empty) body sent with a CLO
// chunk.
type CloseSecureChannelRequest struct{}

func (CloseSecureChannelRequest) EncodingTypeID() ua.NodeId { return CloseSecureChannelRequestTypeID }
func (CloseSecureChannelRequest) Encode(*ua.Encoder) error  { return nil }

func DecodeCloseSecureChannelRequest(*ua.Decoder) (ua.BinaryCodec, error) {
	return CloseSecureChannelRequest{}, nil
}

func init() {
	ua.DefaultRegistry.Register(OpenSecureChannelRequestTypeID, DecodeOpenSecureChannelRequest)
	ua.DefaultRegistry.Register(OpenSecureChannelResponseTypeID, DecodeOpenSecureChannelResponse)
	ua.DefaultRegistry.Register(CloseSecureChannelRequestTypeID, DecodeCloseSecureChannelRequest)
}
