// Package uaidentity models the ActivateSession identity tagged union
// (spec §4.6, §9 design notes): Anonymous, UserName, and X509, each
// producing the ExtensionObject ActivateSession carries as
// UserIdentityToken. This mirrors backkem/matter's tagged-union
// treatment of identity-token variants in pkg/securechannel's PASE/CASE
// selection, generalized from a two-way PASE/CASE choice to OPC UA's
// three identity-token kinds.
package uaidentity

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/binary"

	"github.com/foundry-iiot/opcua/pkg/ua"
	"github.com/foundry-iiot/opcua/pkg/uacrypto"
	"github.com/foundry-iiot/opcua/pkg/uaerr"
)

var (
	AnonymousIdentityTokenTypeID = ua.NewNumericNodeId(0, 321)
	UserNameIdentityTokenTypeID  = ua.NewNumericNodeId(0, 324)
	X509IdentityTokenTypeID      = ua.NewNumericNodeId(0, 327)
)

// Identity builds the ExtensionObject ActivateSession sends as
// UserIdentityToken, given the policyId the caller selected from the
// endpoint's UserIdentityTokens.
type Identity interface {
	// TokenType reports which UserTokenType this identity satisfies, so
	// callers can filter UserIdentityTokens to matching policies.
	TokenType() int32
	BuildToken(policyID string, serverCert *x509.Certificate, serverNonce []byte, securityPolicyURI string) (ua.ExtensionObject, error)
}

// Anonymous carries no credentials.
type Anonymous struct{}

func (Anonymous) TokenType() int32 { return 0 }

func (Anonymous) BuildToken(policyID string, _ *x509.Certificate, _ []byte, _ string) (ua.ExtensionObject, error) {
	e := ua.NewEncoder()
	e.WriteString(policyID)
	return ua.ExtensionObject{TypeID: AnonymousIdentityTokenTypeID, Encoding: ua.ExtensionEncodingBinary, Body: e.Bytes()}, nil
}

// UserName carries a username/password pair. When securityPolicyURI is
// non-empty (the server's UserTokenPolicy requires encryption), the
// password is wrapped and RSA-OAEP-encrypted under serverCert; when
// securityPolicyURI is empty the password travels in plaintext (spec
// §4.6).
type UserName struct {
	User     string
	Password string
}

func (UserName) TokenType() int32 { return 1 }

func (u UserName) BuildToken(policyID string, serverCert *x509.Certificate, serverNonce []byte, securityPolicyURI string) (ua.ExtensionObject, error) {
	passwordBytes := []byte(u.Password)
	algorithm := ""

	if securityPolicyURI != "" {
		if serverCert == nil {
			return ua.ExtensionObject{}, uaerr.UsageErr("encrypted UserName token requires the server certificate")
		}
		suite, err := uacrypto.Lookup(securityPolicyURI)
		if err != nil {
			return ua.ExtensionObject{}, err
		}
		plain := make([]byte, 4+len(passwordBytes)+len(serverNonce))
		binary.LittleEndian.PutUint32(plain, uint32(len(passwordBytes)+len(serverNonce)))
		copy(plain[4:], passwordBytes)
		copy(plain[4+len(passwordBytes):], serverNonce)

		ciphertext, err := suite.EncryptAsym(plain, serverCert)
		if err != nil {
			return ua.ExtensionObject{}, err
		}
		passwordBytes = ciphertext
		algorithm = rsaOAEPAlgorithmURI(securityPolicyURI)
	}

	e := ua.NewEncoder()
	e.WriteString(policyID)
	e.WriteString(u.User)
	e.WriteByteString(passwordBytes)
	e.WriteString(algorithm)
	return ua.ExtensionObject{TypeID: UserNameIdentityTokenTypeID, Encoding: ua.ExtensionEncodingBinary, Body: e.Bytes()}, nil
}

func rsaOAEPAlgorithmURI(securityPolicyURI string) string {
	switch securityPolicyURI {
	case uacrypto.PolicyBasic256Sha256:
		return "http://www.w3.org/2001/04/xmlenc#rsa-oaep"
	default:
		return ""
	}
}

// X509 authenticates with a client certificate, proven by signing the
// server nonce with PrivateKey (the signature itself is carried in
// ActivateSessionRequest.UserTokenSignature, not in the token body).
type X509 struct {
	Certificate *x509.Certificate
	PrivateKey  *rsa.PrivateKey
}

func (X509) TokenType() int32 { return 2 }

func (x X509) BuildToken(policyID string, _ *x509.Certificate, _ []byte, _ string) (ua.ExtensionObject, error) {
	if x.Certificate == nil {
		return ua.ExtensionObject{}, uaerr.UsageErr("X509 identity requires a Certificate")
	}
	e := ua.NewEncoder()
	e.WriteString(policyID)
	e.WriteByteString(x.Certificate.Raw)
	return ua.ExtensionObject{TypeID: X509IdentityTokenTypeID, Encoding: ua.ExtensionEncodingBinary, Body: e.Bytes()}, nil
}
