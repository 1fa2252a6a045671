package uaservices

import "github.com/foundry-iiot/opcua/pkg/ua"

var (
	GetEndpointsRequestTypeID  = ua.NewNumericNodeId(0, 428)
	GetEndpointsResponseTypeID = ua.NewNumericNodeId(0, 431)
)

// UserTokenType enumerates the identity-token kinds an endpoint may
// advertise in its UserIdentityTokens (spec §4.6).
type UserTokenType int32

const (
	UserTokenTypeAnonymous UserTokenType = iota
	UserTokenTypeUserName
	UserTokenTypeCertificate
	UserTokenTypeIssuedToken
)

// UserTokenPolicy describes one identity mechanism an endpoint
// accepts.
type UserTokenPolicy struct {
	PolicyID          string
	TokenType         UserTokenType
	IssuedTokenType   string
	HasIssuedTokenType bool
	IssuerEndpointURL string
	HasIssuerEndpointURL bool
	SecurityPolicyURI string
	HasSecurityPolicyURI bool
}

func (p UserTokenPolicy) Encode(e *ua.Encoder) {
	e.WriteString(p.PolicyID)
	e.WriteInt32(int32(p.TokenType))
	writeOptionalString(e, p.IssuedTokenType, p.HasIssuedTokenType)
	writeOptionalString(e, p.IssuerEndpointURL, p.HasIssuerEndpointURL)
	writeOptionalString(e, p.SecurityPolicyURI, p.HasSecurityPolicyURI)
}

func decodeUserTokenPolicy(d *ua.Decoder) (UserTokenPolicy, error) {
	var p UserTokenPolicy
	var err error
	if p.PolicyID, _, err = d.ReadString(); err != nil {
		return p, err
	}
	tt, err := d.ReadInt32()
	if err != nil {
		return p, err
	}
	p.TokenType = UserTokenType(tt)
	if p.IssuedTokenType, p.HasIssuedTokenType, err = d.ReadString(); err != nil {
		return p, err
	}
	if p.IssuerEndpointURL, p.HasIssuerEndpointURL, err = d.ReadString(); err != nil {
		return p, err
	}
	if p.SecurityPolicyURI, p.HasSecurityPolicyURI, err = d.ReadString(); err != nil {
		return p, err
	}
	return p, nil
}

func writeOptionalString(e *ua.Encoder, s string, has bool) {
	if has {
		e.WriteString(s)
	} else {
		e.WriteNilString()
	}
}

// ApplicationType enumerates the ApplicationDescription Server/Client
// distinction (Part 4 §7.1).
type ApplicationType int32

const (
	ApplicationTypeServer ApplicationType = iota
	ApplicationTypeClient
	ApplicationTypeClientAndServer
	ApplicationTypeDiscoveryServer
)

// ApplicationDescription identifies one OPC UA application instance.
type ApplicationDescription struct {
	ApplicationURI      string
	ProductURI          string
	ApplicationName     ua.LocalizedText
	ApplicationType     ApplicationType
	GatewayServerURI    string
	HasGatewayServerURI bool
	DiscoveryProfileURI string
	HasDiscoveryProfileURI bool
	DiscoveryURLs       []string
}

func (a ApplicationDescription) Encode(e *ua.Encoder) {
	e.WriteString(a.ApplicationURI)
	e.WriteString(a.ProductURI)
	e.WriteLocalizedText(a.ApplicationName)
	e.WriteInt32(int32(a.ApplicationType))
	writeOptionalString(e, a.GatewayServerURI, a.HasGatewayServerURI)
	writeOptionalString(e, a.DiscoveryProfileURI, a.HasDiscoveryProfileURI)
	ua.WriteArray(e, a.DiscoveryURLs, func(e *ua.Encoder, s string) { e.WriteString(s) })
}

func decodeApplicationDescription(d *ua.Decoder) (ApplicationDescription, error) {
	var a ApplicationDescription
	var err error
	if a.ApplicationURI, _, err = d.ReadString(); err != nil {
		return a, err
	}
	if a.ProductURI, _, err = d.ReadString(); err != nil {
		return a, err
	}
	if a.ApplicationName, err = d.ReadLocalizedText(); err != nil {
		return a, err
	}
	at, err := d.ReadInt32()
	if err != nil {
		return a, err
	}
	a.ApplicationType = ApplicationType(at)
	if a.GatewayServerURI, a.HasGatewayServerURI, err = d.ReadString(); err != nil {
		return a, err
	}
	if a.DiscoveryProfileURI, a.HasDiscoveryProfileURI, err = d.ReadString(); err != nil {
		return a, err
	}
	if a.DiscoveryURLs, err = ua.ReadArray(d, func(d *ua.Decoder) (string, error) {
		s, _, err := d.ReadString()
		return s, err
	}); err != nil {
		return a, err
	}
	return a, nil
}

// EndpointDescription describes one way to connect to a server:
// security policy/mode, the accepted identity tokens, and the server's
// certificate (spec §4.4 step 6 endpoint selection).
type EndpointDescription struct {
	EndpointURL         string
	Server              ApplicationDescription
	ServerCertificate   []byte
	SecurityMode        uint32 // MessageSecurityMode (matches uasc's wireMode* values)
	SecurityPolicyURI   string
	UserIdentityTokens  []UserTokenPolicy
	TransportProfileURI string
	SecurityLevel       byte
}

func (ep EndpointDescription) Encode(e *ua.Encoder) {
	e.WriteString(ep.EndpointURL)
	ep.Server.Encode(e)
	e.WriteByteString(ep.ServerCertificate)
	e.WriteUint32(ep.SecurityMode)
	e.WriteString(ep.SecurityPolicyURI)
	ua.WriteArray(e, ep.UserIdentityTokens, func(e *ua.Encoder, p UserTokenPolicy) { p.Encode(e) })
	e.WriteString(ep.TransportProfileURI)
	e.WriteByte(ep.SecurityLevel)
}

func decodeEndpointDescription(d *ua.Decoder) (EndpointDescription, error) {
	var ep EndpointDescription
	var err error
	if ep.EndpointURL, _, err = d.ReadString(); err != nil {
		return ep, err
	}
	if ep.Server, err = decodeApplicationDescription(d); err != nil {
		return ep, err
	}
	if ep.ServerCertificate, err = d.ReadByteString(); err != nil {
		return ep, err
	}
	if ep.SecurityMode, err = d.ReadUint32(); err != nil {
		return ep, err
	}
	if ep.SecurityPolicyURI, _, err = d.ReadString(); err != nil {
		return ep, err
	}
	if ep.UserIdentityTokens, err = ua.ReadArray(d, decodeUserTokenPolicy); err != nil {
		return ep, err
	}
	if ep.TransportProfileURI, _, err = d.ReadString(); err != nil {
		return ep, err
	}
	if ep.SecurityLevel, err = d.ReadByte(); err != nil {
		return ep, err
	}
	return ep, nil
}

// GetEndpointsRequest asks the server for its available endpoints,
// issued once the channel is open and before CreateSession (spec §4.4
// step 6).
type GetEndpointsRequest struct {
	Header        RequestHeader
	EndpointURL   string
	LocaleIDs     []string
	ProfileURIs   []string
}

func (r GetEndpointsRequest) EncodingTypeID() ua.NodeId { return GetEndpointsRequestTypeID }

func (r GetEndpointsRequest) Encode(e *ua.Encoder) error {
	r.Header.Encode(e)
	e.WriteString(r.EndpointURL)
	ua.WriteArray(e, r.LocaleIDs, func(e *ua.Encoder, s string) { e.WriteString(s) })
	ua.WriteArray(e, r.ProfileURIs, func(e *ua.Encoder, s string) { e.WriteString(s) })
	return nil
}

func DecodeGetEndpointsRequest(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r GetEndpointsRequest
	var err error
	if r.Header, err = DecodeRequestHeader(d); err != nil {
		return nil, err
	}
	if r.EndpointURL, _, err = d.ReadString(); err != nil {
		return nil, err
	}
	if r.LocaleIDs, err = ua.ReadArray(d, func(d *ua.Decoder) (string, error) {
		s, _, err := d.ReadString()
		return s, err
	}); err != nil {
		return nil, err
	}
	if r.ProfileURIs, err = ua.ReadArray(d, func(d *ua.Decoder) (string, error) {
		s, _, err := d.ReadString()
		return s, err
	}); err != nil {
		return nil, err
	}
	return r, nil
}

type GetEndpointsResponse struct {
	Header    ResponseHeader
	Endpoints []EndpointDescription
}

func (r GetEndpointsResponse) EncodingTypeID() ua.NodeId { return GetEndpointsResponseTypeID }

func (r GetEndpointsResponse) Encode(e *ua.Encoder) error {
	if err := r.Header.Encode(e); err != nil {
		return err
	}
	ua.WriteArray(e, r.Endpoints, func(e *ua.Encoder, ep EndpointDescription) { ep.Encode(e) })
	return nil
}

func DecodeGetEndpointsResponse(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r GetEndpointsResponse
	var err error
	if r.Header, err = DecodeResponseHeader(d); err != nil {
		return nil, err
	}
	if r.Endpoints, err = ua.ReadArray(d, decodeEndpointDescription); err != nil {
		return nil, err
	}
	return r, nil
}

func init() {
	ua.DefaultRegistry.Register(GetEndpointsRequestTypeID, DecodeGetEndpointsRequest)
	ua.DefaultRegistry.Register(GetEndpointsResponseTypeID, DecodeGetEndpointsResponse)
}
