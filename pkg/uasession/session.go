// Package uasession implements CreateSession/ActivateSession/CloseSession
// orchestration over a pkg/uaservices.Dispatcher (spec §4.6). It plays
// the role backkem/matter's pkg/session.Manager plays for the Matter
// stack: tracking the identifiers (sessionId, authenticationToken) a
// single logical session needs stamped into every subsequent request,
// generalized here from Matter's local/peer 16-bit session-ID pair to
// OPC UA's NodeId-typed authenticationToken.
package uasession

import (
	"crypto/rand"
	"crypto/x509"
	"sync"
	"time"

	"github.com/foundry-iiot/opcua/pkg/ua"
	"github.com/foundry-iiot/opcua/pkg/uaerr"
	"github.com/foundry-iiot/opcua/pkg/uaidentity"
	"github.com/foundry-iiot/opcua/pkg/uaservices"
)

// clientNonceSize matches the Basic256Sha256 symmetric key length this
// client derives keys for; servers that ignore security accept any
// length.
const clientNonceSize = 32

// DefaultRequestedTimeout is the session timeout requested when Config
// does not specify one.
const DefaultRequestedTimeout = 60 * time.Second

// Config configures Create.
type Config struct {
	ClientDescription uaservices.ApplicationDescription
	EndpointURL       string
	SessionName       string
	RequestedTimeout  time.Duration

	// Endpoint is the EndpointDescription the caller selected from
	// GetEndpoints, used to auto-select the identity-token policyId and
	// to learn whether the server requires password encryption.
	Endpoint uaservices.EndpointDescription

	// ServerCertificate is the certificate presented during OPN,
	// reused here to encrypt UserName tokens when required.
	ServerCertificate *x509.Certificate
}

func (c Config) requestedTimeoutOrDefault() time.Duration {
	if c.RequestedTimeout <= 0 {
		return DefaultRequestedTimeout
	}
	return c.RequestedTimeout
}

// Session is a created and activated session bound to one Dispatcher.
// Every RequestHeader AddressSpaceOps/SubscriptionEngine builds must
// be stamped with AuthenticationToken (spec §4.6).
type Session struct {
	disp *uaservices.Dispatcher

	mu                  sync.Mutex
	sessionID           ua.NodeId
	authenticationToken ua.NodeId
	nextHandle          uint32
	closed              bool
}

// Create issues CreateSession then ActivateSession(identity) in
// sequence, returning a Session whose authenticationToken is stamped
// into every subsequent request header.
func Create(disp *uaservices.Dispatcher, cfg Config, identity uaidentity.Identity) (*Session, error) {
	clientNonce := make([]byte, clientNonceSize)
	if _, err := rand.Read(clientNonce); err != nil {
		return nil, err
	}

	createReq := uaservices.CreateSessionRequest{
		Header:                  uaservices.NewRequestHeader(ua.NodeId{}, 0, 0),
		ClientDescription:       cfg.ClientDescription,
		EndpointURL:             cfg.EndpointURL,
		SessionName:             cfg.SessionName,
		ClientNonce:             clientNonce,
		RequestedSessionTimeout: cfg.requestedTimeoutOrDefault().Seconds() * 1000,
		MaxResponseMessageSize:  0,
	}

	createResp, err := uaservices.Call[uaservices.CreateSessionResponse](disp, createReq, 0)
	if err != nil {
		return nil, err
	}

	s := &Session{
		disp:                disp,
		sessionID:           createResp.SessionID,
		authenticationToken: createResp.AuthenticationToken,
	}

	policyID, securityPolicyURI, err := selectUserTokenPolicy(cfg.Endpoint, identity)
	if err != nil {
		return nil, err
	}

	token, err := identity.BuildToken(policyID, cfg.ServerCertificate, createResp.ServerNonce, securityPolicyURI)
	if err != nil {
		return nil, err
	}

	activateReq := uaservices.ActivateSessionRequest{
		Header:            uaservices.NewRequestHeader(s.authenticationToken, s.nextRequestHandle(), 0),
		UserIdentityToken: token,
	}
	if _, err := uaservices.Call[uaservices.ActivateSessionResponse](disp, activateReq, 0); err != nil {
		return nil, err
	}

	return s, nil
}

// selectUserTokenPolicy scans endpoint.UserIdentityTokens for the
// first policy whose TokenType matches identity, preferring the
// strongest (non-empty) SecurityPolicyURI (spec §4.6).
func selectUserTokenPolicy(endpoint uaservices.EndpointDescription, identity uaidentity.Identity) (policyID string, securityPolicyURI string, err error) {
	wantType := uaservices.UserTokenType(identity.TokenType())

	var best *uaservices.UserTokenPolicy
	for i := range endpoint.UserIdentityTokens {
		p := endpoint.UserIdentityTokens[i]
		if p.TokenType != wantType {
			continue
		}
		if best == nil {
			best = &endpoint.UserIdentityTokens[i]
			continue
		}
		if best.SecurityPolicyURI == "" && p.SecurityPolicyURI != "" {
			best = &endpoint.UserIdentityTokens[i]
		}
	}
	if best == nil {
		return "", "", uaerr.UsageErr("endpoint advertises no UserIdentityTokens for token type %d", wantType)
	}
	return best.PolicyID, best.SecurityPolicyURI, nil
}

func (s *Session) nextRequestHandle() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextHandle++
	return s.nextHandle
}

// SessionID is the server-assigned NodeId identifying this session.
func (s *Session) SessionID() ua.NodeId { return s.sessionID }

// AuthenticationToken is stamped into every RequestHeader sent on this
// session.
func (s *Session) AuthenticationToken() ua.NodeId { return s.authenticationToken }

// Dispatcher returns the underlying service dispatcher, for
// pkg/uaspace and pkg/uasub to build requests on.
func (s *Session) Dispatcher() *uaservices.Dispatcher { return s.disp }

// NewRequestHeader builds a RequestHeader stamped with this session's
// authenticationToken and a freshly allocated RequestHandle.
func (s *Session) NewRequestHeader(timeoutHint time.Duration) uaservices.RequestHeader {
	hint := uint32(timeoutHint / time.Millisecond)
	return uaservices.NewRequestHeader(s.authenticationToken, s.nextRequestHandle(), hint)
}

// Close terminates the session via CloseSession; the channel itself is
// left open for the caller to close separately (spec §4.6).
func (s *Session) Close(deleteSubscriptions bool) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	req := uaservices.CloseSessionRequest{
		Header:              uaservices.NewRequestHeader(s.authenticationToken, s.nextRequestHandle(), 0),
		DeleteSubscriptions: deleteSubscriptions,
	}
	_, err := uaservices.Call[uaservices.CloseSessionResponse](s.disp, req, 0)
	return err
}
