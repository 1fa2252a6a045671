// Package uaclient wires Transport → SecureChannel → Session →
// (AddressSpaceOps, SubscriptionEngine) into one non-fluent
// orchestration type, generalizing backkem/matter's pkg/matter.Node
// (Transport → Exchange → SecureChannel → Interaction Model/Clusters)
// to the OPC UA stack this module implements. Like Node, Client does
// staged connect with rollback on failure and exposes its layers'
// accessors for advanced callers and tests, instead of hiding them
// behind a fluent builder (that convenience layer is out of scope,
// per SPEC_FULL.md's Non-goals).
package uaclient

import (
	"crypto/x509"
	"time"

	"github.com/foundry-iiot/opcua/pkg/ua"
	"github.com/foundry-iiot/opcua/pkg/uacrypto"
	"github.com/foundry-iiot/opcua/pkg/uaerr"
	"github.com/foundry-iiot/opcua/pkg/uaidentity"
	"github.com/foundry-iiot/opcua/pkg/uasc"
	"github.com/foundry-iiot/opcua/pkg/uasession"
	"github.com/foundry-iiot/opcua/pkg/uaspace"
	"github.com/foundry-iiot/opcua/pkg/uasub"
	"github.com/foundry-iiot/opcua/pkg/uaservices"
	"github.com/pion/logging"
)

// Config configures Connect end to end: the channel's transport and
// security parameters, the session's identity and naming, and the
// subsystems layered on top.
type Config struct {
	// EndpointURL is the opc.tcp:// URL dialed for both the initial
	// GetEndpoints round trip and the session itself.
	EndpointURL string

	// SecurityMode/SecurityPolicyURI/LocalKeyPair/RemoteCertificate/
	// Validator/RequestedLifetime/DialTimeout configure the
	// SecureChannel exactly as pkg/uasc.Config does; Client forwards
	// them unchanged.
	SecurityMode      uacrypto.SecurityMode
	SecurityPolicyURI string
	LocalKeyPair      *uacrypto.KeyPair
	RemoteCertificate *x509.Certificate
	Validator         uacrypto.CertValidator
	RequestedLifetime time.Duration
	DialTimeout       time.Duration

	// ClientDescription identifies this application in CreateSession.
	ClientDescription uaservices.ApplicationDescription
	SessionName       string
	RequestedTimeout  time.Duration

	// Identity authenticates ActivateSession. Defaults to
	// uaidentity.Anonymous{} when nil.
	Identity uaidentity.Identity

	// PublishTimeout bounds the subscription engine's Publish calls.
	PublishTimeout time.Duration

	LoggerFactory logging.LoggerFactory
}

func (c Config) identityOrDefault() uaidentity.Identity {
	if c.Identity == nil {
		return uaidentity.Anonymous{}
	}
	return c.Identity
}

// Client is a connected OPC UA client: one SecureChannel, one
// ServiceDispatcher, one Session, and the AddressSpaceOps/
// SubscriptionEngine layered on it.
type Client struct {
	cfg  Config
	log  logging.LeveledLogger
	ch   *uasc.Channel
	disp *uaservices.Dispatcher
	sess *uasession.Session
	spc  *uaspace.Space
	sub  *uasub.Engine

	endpoint uaservices.EndpointDescription
}

// Connect runs the full staged handshake: Open the SecureChannel,
// GetEndpoints, pick the best matching EndpointDescription, then
// CreateSession/ActivateSession against it. Each stage is rolled back
// on the next stage's failure, mirroring backkem/matter's Node.Start.
func Connect(cfg Config) (*Client, error) {
	var log logging.LeveledLogger
	if cfg.LoggerFactory != nil {
		log = cfg.LoggerFactory.NewLogger("uaclient")
	}

	ch, err := uasc.NewChannel(uasc.Config{
		EndpointURL:       cfg.EndpointURL,
		SecurityMode:      cfg.SecurityMode,
		SecurityPolicyURI: cfg.SecurityPolicyURI,
		LocalKeyPair:      cfg.LocalKeyPair,
		RemoteCertificate: cfg.RemoteCertificate,
		Validator:         cfg.Validator,
		RequestedLifetime: cfg.RequestedLifetime,
		DialTimeout:       cfg.DialTimeout,
		LoggerFactory:     cfg.LoggerFactory,
	})
	if err != nil {
		return nil, err
	}
	if err := ch.Open(); err != nil {
		return nil, err
	}

	disp := uaservices.NewDispatcher(ch, cfg.LoggerFactory)

	endpoints, err := fetchEndpoints(disp, cfg.EndpointURL)
	if err != nil {
		ch.Close()
		return nil, err
	}

	endpoint, err := SelectEndpoint(endpoints, cfg.SecurityMode, cfg.SecurityPolicyURI)
	if err != nil {
		ch.Close()
		return nil, err
	}
	endpoint.EndpointURL = rewriteEndpointURL(cfg.EndpointURL, endpoint.EndpointURL)

	serverCert, err := parseServerCertificate(endpoint.ServerCertificate)
	if err != nil {
		ch.Close()
		return nil, err
	}

	sess, err := uasession.Create(disp, uasession.Config{
		ClientDescription: cfg.ClientDescription,
		EndpointURL:       endpoint.EndpointURL,
		SessionName:       cfg.SessionName,
		RequestedTimeout:  cfg.RequestedTimeout,
		Endpoint:          endpoint,
		ServerCertificate: serverCert,
	}, cfg.identityOrDefault())
	if err != nil {
		ch.Close()
		return nil, err
	}

	c := &Client{
		cfg:      cfg,
		log:      log,
		ch:       ch,
		disp:     disp,
		sess:     sess,
		spc:      uaspace.New(sess),
		sub:      uasub.NewEngine(sess, uasub.Config{PublishTimeout: cfg.PublishTimeout, LoggerFactory: cfg.LoggerFactory}),
		endpoint: endpoint,
	}
	return c, nil
}

// fetchEndpoints issues one GetEndpoints call ahead of CreateSession
// (spec §4.4 step 6); it needs no session and so is not routed through
// pkg/uaspace.
func fetchEndpoints(disp *uaservices.Dispatcher, endpointURL string) ([]uaservices.EndpointDescription, error) {
	req := uaservices.GetEndpointsRequest{
		Header:      uaservices.NewRequestHeader(ua.NodeId{}, 0, 0),
		EndpointURL: endpointURL,
	}
	resp, err := uaservices.Call[uaservices.GetEndpointsResponse](disp, req, 0)
	if err != nil {
		return nil, err
	}
	return resp.Endpoints, nil
}

// SelectEndpoint implements the exact-match → mode-match →
// policy-match → first fallback chain (spec §4.4 step 6).
func SelectEndpoint(endpoints []uaservices.EndpointDescription, mode uacrypto.SecurityMode, policyURI string) (uaservices.EndpointDescription, error) {
	if len(endpoints) == 0 {
		return uaservices.EndpointDescription{}, uaerr.New(uaerr.Service, "server advertised no endpoints")
	}

	wantMode := wireSecurityMode(mode)
	for _, ep := range endpoints {
		if ep.SecurityMode == wantMode && ep.SecurityPolicyURI == policyURI {
			return ep, nil
		}
	}
	for _, ep := range endpoints {
		if ep.SecurityMode == wantMode {
			return ep, nil
		}
	}
	for _, ep := range endpoints {
		if ep.SecurityPolicyURI == policyURI {
			return ep, nil
		}
	}
	return endpoints[0], nil
}

// wireSecurityMode mirrors pkg/uasc's unexported MessageSecurityMode
// encoding (None=1, Sign=2, SignAndEncrypt=3 per Part 6 §7.15) so
// EndpointDescription.SecurityMode (decoded off the wire as a bare
// uint32) can be compared against a uacrypto.SecurityMode.
func wireSecurityMode(m uacrypto.SecurityMode) uint32 {
	switch m {
	case uacrypto.ModeSign:
		return 2
	case uacrypto.ModeSignAndEncrypt:
		return 3
	default:
		return 1
	}
}

// rewriteEndpointURL keeps the caller-supplied host/port but takes the
// server-advertised path/query, since many servers advertise an
// internal hostname unreachable from outside (spec §4.4 step 6).
func rewriteEndpointURL(dialed, advertised string) string {
	dialedHost, ok := hostPart(dialed)
	if !ok {
		return advertised
	}
	_, advertisedOK := hostPart(advertised)
	if !advertisedOK {
		return advertised
	}
	advertisedPath := pathPart(advertised)
	return dialedHost + advertisedPath
}

func hostPart(url string) (string, bool) {
	const scheme = "opc.tcp://"
	if len(url) < len(scheme) || url[:len(scheme)] != scheme {
		return "", false
	}
	rest := url[len(scheme):]
	for i := 0; i < len(rest); i++ {
		if rest[i] == '/' {
			return scheme + rest[:i], true
		}
	}
	return url, true
}

func pathPart(url string) string {
	const scheme = "opc.tcp://"
	if len(url) < len(scheme) || url[:len(scheme)] != scheme {
		return ""
	}
	rest := url[len(scheme):]
	for i := 0; i < len(rest); i++ {
		if rest[i] == '/' {
			return rest[i:]
		}
	}
	return ""
}

func parseServerCertificate(der []byte) (*x509.Certificate, error) {
	if len(der) == 0 {
		return nil, nil
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, uaerr.CryptoErr("parse server certificate: %v", err)
	}
	return cert, nil
}

// Dispatcher returns the underlying ServiceDispatcher.
func (c *Client) Dispatcher() *uaservices.Dispatcher { return c.disp }

// Session returns the active Session.
func (c *Client) Session() *uasession.Session { return c.sess }

// Space returns the AddressSpaceOps layer bound to this client's
// session.
func (c *Client) Space() *uaspace.Space { return c.spc }

// Subscriptions returns the SubscriptionEngine bound to this client's
// session.
func (c *Client) Subscriptions() *uasub.Engine { return c.sub }

// Endpoint returns the EndpointDescription selected during Connect.
func (c *Client) Endpoint() uaservices.EndpointDescription { return c.endpoint }

// Close tears down the client in reverse build order: stop the
// publish loop, close the session, close the channel.
func (c *Client) Close() error {
	c.sub.Close()

	var firstErr error
	if err := c.sess.Close(true); err != nil {
		firstErr = err
		if c.log != nil {
			c.log.Warnf("close session: %v", err)
		}
	}
	if err := c.ch.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
