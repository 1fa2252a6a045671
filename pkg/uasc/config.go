package uasc

import (
	"crypto/x509"
	"time"

	"github.com/foundry-iiot/opcua/pkg/uacrypto"
	"github.com/foundry-iiot/opcua/pkg/uaerr"
	"github.com/pion/logging"
)

// DefaultRequestedLifetime is the channel lifetime a client requests
// when none is specified, matching common OPC UA server defaults.
const DefaultRequestedLifetime = 60 * time.Minute

// DefaultTimeoutHint bounds a single service round trip (spec §5).
const DefaultTimeoutHint = 15 * time.Second

// Config configures a Channel before Open is called.
type Config struct {
	// EndpointURL is the opc.tcp:// (or opc.tcp://unix:) URL the
	// channel connects to.
	EndpointURL string

	// SecurityMode and SecurityPolicyURI select the CryptoSuite used
	// for this channel; PolicyNone requires ModeNone.
	SecurityMode      uacrypto.SecurityMode
	SecurityPolicyURI string

	// LocalKeyPair is the client's own certificate/key, required for
	// any policy other than None.
	LocalKeyPair *uacrypto.KeyPair

	// RemoteCertificate is the server's certificate, used to encrypt
	// the OPN request and verify the OPN response signature. Required
	// for any policy other than None.
	RemoteCertificate *x509.Certificate

	// Validator, if non-nil, validates RemoteCertificate before the
	// handshake completes (spec §4.4 step 7).
	Validator uacrypto.CertValidator

	// RequestedLifetime is the channel lifetime requested in OPN.
	// Zero means DefaultRequestedLifetime.
	RequestedLifetime time.Duration

	// DialTimeout bounds the initial TCP/UDS connect.
	DialTimeout time.Duration

	// LoggerFactory creates this channel's logger; nil disables
	// logging.
	LoggerFactory logging.LoggerFactory
}

// Validate checks the config for internal consistency before Open.
func (c Config) Validate() error {
	if c.EndpointURL == "" {
		return uaerr.UsageErr("EndpointURL must not be empty")
	}
	if c.SecurityPolicyURI == "" {
		return uaerr.UsageErr("SecurityPolicyURI must not be empty")
	}
	if c.SecurityPolicyURI != uacrypto.PolicyNone {
		if c.LocalKeyPair == nil || c.LocalKeyPair.PrivateKey == nil {
			return uaerr.UsageErr("SecurityPolicyURI %q requires a LocalKeyPair", c.SecurityPolicyURI)
		}
		if c.RemoteCertificate == nil {
			return uaerr.UsageErr("SecurityPolicyURI %q requires RemoteCertificate", c.SecurityPolicyURI)
		}
	}
	if c.SecurityPolicyURI == uacrypto.PolicyNone && c.SecurityMode != uacrypto.ModeNone {
		return uaerr.UsageErr("SecurityMode must be None when SecurityPolicyURI is None")
	}
	if c.RequestedLifetime < 0 {
		return uaerr.UsageErr("RequestedLifetime must not be negative")
	}
	return nil
}

func (c Config) requestedLifetimeOrDefault() time.Duration {
	if c.RequestedLifetime <= 0 {
		return DefaultRequestedLifetime
	}
	return c.RequestedLifetime
}
