package uaservices

import "github.com/foundry-iiot/opcua/pkg/ua"

var (
	CreateSessionRequestTypeID    = ua.NewNumericNodeId(0, 461)
	CreateSessionResponseTypeID   = ua.NewNumericNodeId(0, 464)
	ActivateSessionRequestTypeID  = ua.NewNumericNodeId(0, 467)
	ActivateSessionResponseTypeID = ua.NewNumericNodeId(0, 470)
	CloseSessionRequestTypeID     = ua.NewNumericNodeId(0, 473)
	CloseSessionResponseTypeID    = ua.NewNumericNodeId(0, 476)
)

// SignatureData carries an algorithm URI and a signature over
// (serverCertificate || serverNonce) or (clientCertificate ||
// clientNonce), used by CreateSession/ActivateSession to prove key
// possession (spec §4.6).
type SignatureData struct {
	Algorithm    string
	HasAlgorithm bool
	Signature    []byte
}

func (s SignatureData) Encode(e *ua.Encoder) {
	writeOptionalString(e, s.Algorithm, s.HasAlgorithm)
	e.WriteByteString(s.Signature)
}

func decodeSignatureData(d *ua.Decoder) (SignatureData, error) {
	var s SignatureData
	var err error
	if s.Algorithm, s.HasAlgorithm, err = d.ReadString(); err != nil {
		return s, err
	}
	if s.Signature, err = d.ReadByteString(); err != nil {
		return s, err
	}
	return s, nil
}

// SignedSoftwareCertificate is an optional client/server software
// attestation; this client neither issues nor requires them, so it is
// always sent/received as an empty array.
type SignedSoftwareCertificate struct {
	CertificateData []byte
	Signature       []byte
}

func (c SignedSoftwareCertificate) Encode(e *ua.Encoder) {
	e.WriteByteString(c.CertificateData)
	e.WriteByteString(c.Signature)
}

func decodeSignedSoftwareCertificate(d *ua.Decoder) (SignedSoftwareCertificate, error) {
	var c SignedSoftwareCertificate
	var err error
	if c.CertificateData, err = d.ReadByteString(); err != nil {
		return c, err
	}
	if c.Signature, err = d.ReadByteString(); err != nil {
		return c, err
	}
	return c, nil
}

// CreateSessionRequest opens a session on an already-open secure
// channel (spec §4.6).
type CreateSessionRequest struct {
	Header                  RequestHeader
	ClientDescription       ApplicationDescription
	ServerURI               string
	HasServerURI            bool
	EndpointURL             string
	SessionName             string
	ClientNonce             []byte
	ClientCertificate       []byte
	RequestedSessionTimeout float64
	MaxResponseMessageSize  uint32
}

func (r CreateSessionRequest) EncodingTypeID() ua.NodeId { return CreateSessionRequestTypeID }

func (r CreateSessionRequest) Encode(e *ua.Encoder) error {
	r.Header.Encode(e)
	r.ClientDescription.Encode(e)
	writeOptionalString(e, r.ServerURI, r.HasServerURI)
	e.WriteString(r.EndpointURL)
	e.WriteString(r.SessionName)
	e.WriteByteString(r.ClientNonce)
	e.WriteByteString(r.ClientCertificate)
	e.WriteFloat64(r.RequestedSessionTimeout)
	e.WriteUint32(r.MaxResponseMessageSize)
	return nil
}

func DecodeCreateSessionRequest(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r CreateSessionRequest
	var err error
	if r.Header, err = DecodeRequestHeader(d); err != nil {
		return nil, err
	}
	if r.ClientDescription, err = decodeApplicationDescription(d); err != nil {
		return nil, err
	}
	if r.ServerURI, r.HasServerURI, err = d.ReadString(); err != nil {
		return nil, err
	}
	if r.EndpointURL, _, err = d.ReadString(); err != nil {
		return nil, err
	}
	if r.SessionName, _, err = d.ReadString(); err != nil {
		return nil, err
	}
	if r.ClientNonce, err = d.ReadByteString(); err != nil {
		return nil, err
	}
	if r.ClientCertificate, err = d.ReadByteString(); err != nil {
		return nil, err
	}
	if r.RequestedSessionTimeout, err = d.ReadFloat64(); err != nil {
		return nil, err
	}
	if r.MaxResponseMessageSize, err = d.ReadUint32(); err != nil {
		return nil, err
	}
	return r, nil
}

type CreateSessionResponse struct {
	Header                     ResponseHeader
	SessionID                  ua.NodeId
	AuthenticationToken        ua.NodeId
	RevisedSessionTimeout      float64
	ServerNonce                []byte
	ServerCertificate          []byte
	ServerEndpoints            []EndpointDescription
	ServerSoftwareCertificates []SignedSoftwareCertificate
	ServerSignature            SignatureData
	MaxRequestMessageSize      uint32
}

func (r CreateSessionResponse) EncodingTypeID() ua.NodeId { return CreateSessionResponseTypeID }

func (r CreateSessionResponse) Encode(e *ua.Encoder) error {
	if err := r.Header.Encode(e); err != nil {
		return err
	}
	e.WriteNodeId(r.SessionID)
	e.WriteNodeId(r.AuthenticationToken)
	e.WriteFloat64(r.RevisedSessionTimeout)
	e.WriteByteString(r.ServerNonce)
	e.WriteByteString(r.ServerCertificate)
	ua.WriteArray(e, r.ServerEndpoints, func(e *ua.Encoder, ep EndpointDescription) { ep.Encode(e) })
	ua.WriteArray(e, r.ServerSoftwareCertificates, func(e *ua.Encoder, c SignedSoftwareCertificate) { c.Encode(e) })
	r.ServerSignature.Encode(e)
	e.WriteUint32(r.MaxRequestMessageSize)
	return nil
}

func DecodeCreateSessionResponse(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r CreateSessionResponse
	var err error
	if r.Header, err = DecodeResponseHeader(d); err != nil {
		return nil, err
	}
	if r.SessionID, err = d.ReadNodeId(); err != nil {
		return nil, err
	}
	if r.AuthenticationToken, err = d.ReadNodeId(); err != nil {
		return nil, err
	}
	if r.RevisedSessionTimeout, err = d.ReadFloat64(); err != nil {
		return nil, err
	}
	if r.ServerNonce, err = d.ReadByteString(); err != nil {
		return nil, err
	}
	if r.ServerCertificate, err = d.ReadByteString(); err != nil {
		return nil, err
	}
	if r.ServerEndpoints, err = ua.ReadArray(d, decodeEndpointDescription); err != nil {
		return nil, err
	}
	if r.ServerSoftwareCertificates, err = ua.ReadArray(d, decodeSignedSoftwareCertificate); err != nil {
		return nil, err
	}
	if r.ServerSignature, err = decodeSignatureData(d); err != nil {
		return nil, err
	}
	if r.MaxRequestMessageSize, err = d.ReadUint32(); err != nil {
		return nil, err
	}
	return r, nil
}

// ActivateSessionRequest binds an identity to a created session (spec
// §4.6). UserIdentityToken is an ExtensionObject whose TypeId
// disambiguates Anonymous/UserName/X509 (pkg/uasession builds it).
type ActivateSessionRequest struct {
	Header                  RequestHeader
	ClientSignature         SignatureData
	ClientSoftwareCertificates []SignedSoftwareCertificate
	LocaleIDs               []string
	UserIdentityToken       ua.ExtensionObject
	UserTokenSignature      SignatureData
}

func (r ActivateSessionRequest) EncodingTypeID() ua.NodeId { return ActivateSessionRequestTypeID }

func (r ActivateSessionRequest) Encode(e *ua.Encoder) error {
	r.Header.Encode(e)
	r.ClientSignature.Encode(e)
	ua.WriteArray(e, r.ClientSoftwareCertificates, func(e *ua.Encoder, c SignedSoftwareCertificate) { c.Encode(e) })
	ua.WriteArray(e, r.LocaleIDs, func(e *ua.Encoder, s string) { e.WriteString(s) })
	if err := e.WriteExtensionObject(r.UserIdentityToken); err != nil {
		return err
	}
	r.UserTokenSignature.Encode(e)
	return nil
}

func DecodeActivateSessionRequest(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r ActivateSessionRequest
	var err error
	if r.Header, err = DecodeRequestHeader(d); err != nil {
		return nil, err
	}
	if r.ClientSignature, err = decodeSignatureData(d); err != nil {
		return nil, err
	}
	if r.ClientSoftwareCertificates, err = ua.ReadArray(d, decodeSignedSoftwareCertificate); err != nil {
		return nil, err
	}
	if r.LocaleIDs, err = ua.ReadArray(d, func(d *ua.Decoder) (string, error) {
		s, _, err := d.ReadString()
		return s, err
	}); err != nil {
		return nil, err
	}
	if r.UserIdentityToken, err = d.ReadExtensionObject(); err != nil {
		return nil, err
	}
	if r.UserTokenSignature, err = decodeSignatureData(d); err != nil {
		return nil, err
	}
	return r, nil
}

type ActivateSessionResponse struct {
	Header          ResponseHeader
	ServerNonce     []byte
	Results         []ua.StatusCode
	DiagnosticInfos []ua.DiagnosticInfo
}

func (r ActivateSessionResponse) EncodingTypeID() ua.NodeId { return ActivateSessionResponseTypeID }

func (r ActivateSessionResponse) Encode(e *ua.Encoder) error {
	if err := r.Header.Encode(e); err != nil {
		return err
	}
	e.WriteByteString(r.ServerNonce)
	ua.WriteArray(e, r.Results, func(e *ua.Encoder, s ua.StatusCode) { e.WriteStatusCode(s) })
	if err := writeDiagnosticInfoArray(e, r.DiagnosticInfos); err != nil {
		return err
	}
	return nil
}

func DecodeActivateSessionResponse(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r ActivateSessionResponse
	var err error
	if r.Header, err = DecodeResponseHeader(d); err != nil {
		return nil, err
	}
	if r.ServerNonce, err = d.ReadByteString(); err != nil {
		return nil, err
	}
	if r.Results, err = ua.ReadArray(d, func(d *ua.Decoder) (ua.StatusCode, error) { return d.ReadStatusCode() }); err != nil {
		return nil, err
	}
	if r.DiagnosticInfos, err = readDiagnosticInfoArray(d); err != nil {
		return nil, err
	}
	return r, nil
}

// CloseSessionRequest terminates a session; the channel itself stays
// open until CLO is sent separately (spec §4.6).
type CloseSessionRequest struct {
	Header              RequestHeader
	DeleteSubscriptions bool
}

func (r CloseSessionRequest) EncodingTypeID() ua.NodeId { return CloseSessionRequestTypeID }

func (r CloseSessionRequest) Encode(e *ua.Encoder) error {
	r.Header.Encode(e)
	e.WriteBoolean(r.DeleteSubscriptions)
	return nil
}

func DecodeCloseSessionRequest(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r CloseSessionRequest
	var err error
	if r.Header, err = DecodeRequestHeader(d); err != nil {
		return nil, err
	}
	if r.DeleteSubscriptions, err = d.ReadBoolean(); err != nil {
		return nil, err
	}
	return r, nil
}

type CloseSessionResponse struct {
	Header ResponseHeader
}

func (r CloseSessionResponse) EncodingTypeID() ua.NodeId { return CloseSessionResponseTypeID }

func (r CloseSessionResponse) Encode(e *ua.Encoder) error { return r.Header.Encode(e) }

func DecodeCloseSessionResponse(d *ua.Decoder) (ua.BinaryCodec, error) {
	h, err := DecodeResponseHeader(d)
	if err != nil {
		return nil, err
	}
	return CloseSessionResponse{Header: h}, nil
}

// writeDiagnosticInfoArray/readDiagnosticInfoArray exist because
// DiagnosticInfo's Encode returns an error, which ua.WriteArray's
// element encoder signature (func(*Encoder, T), no error) can't carry.
func writeDiagnosticInfoArray(e *ua.Encoder, items []ua.DiagnosticInfo) error {
	if items == nil {
		e.WriteArrayLength(-1)
		return nil
	}
	e.WriteArrayLength(len(items))
	for _, it := range items {
		if err := e.WriteDiagnosticInfo(it); err != nil {
			return err
		}
	}
	return nil
}

func readDiagnosticInfoArray(d *ua.Decoder) ([]ua.DiagnosticInfo, error) {
	return ua.ReadArray(d, func(d *ua.Decoder) (ua.DiagnosticInfo, error) { return d.ReadDiagnosticInfo() })
}

func init() {
	ua.DefaultRegistry.Register(CreateSessionRequestTypeID, DecodeCreateSessionRequest)
	ua.DefaultRegistry.Register(CreateSessionResponseTypeID, DecodeCreateSessionResponse)
	ua.DefaultRegistry.Register(ActivateSessionRequestTypeID, DecodeActivateSessionRequest)
	ua.DefaultRegistry.Register(ActivateSessionResponseTypeID, DecodeActivateSessionResponse)
	ua.DefaultRegistry.Register(CloseSessionRequestTypeID, DecodeCloseSessionRequest)
	ua.DefaultRegistry.Register(CloseSessionResponseTypeID, DecodeCloseSessionResponse)
}
