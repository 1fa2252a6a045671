package uacrypto

import (
	"crypto/x509"
	"time"

	"github.com/foundry-iiot/opcua/pkg/uaerr"
)

// CertValidator checks a peer certificate presented during OPN against
// a trust policy. Persistence of the trust store (loading/saving trust
// lists, CRLs) is explicitly out of scope (spec §9 Non-goals); only
// this interface, and an in-memory implementation usable in tests and
// small deployments, are provided.
type CertValidator interface {
	Validate(cert *x509.Certificate) error
}

// TrustListValidator validates against an in-memory set of trusted
// certificates and issuers, with an option to accept any self-signed
// certificate (useful during first-connection trust bootstrapping,
// never for production use).
type TrustListValidator struct {
	Trusted          *x509.CertPool
	Intermediates    *x509.CertPool
	AllowSelfSigned  bool
	now              func() time.Time
}

// NewTrustListValidator builds a TrustListValidator from explicit
// trusted and intermediate certificate pools.
func NewTrustListValidator(trusted, intermediates *x509.CertPool, allowSelfSigned bool) *TrustListValidator {
	return &TrustListValidator{
		Trusted:         trusted,
		Intermediates:   intermediates,
		AllowSelfSigned: allowSelfSigned,
		now:             time.Now,
	}
}

func (v *TrustListValidator) Validate(cert *x509.Certificate) error {
	if cert == nil {
		return uaerr.CryptoErr("nil certificate")
	}

	now := time.Now
	if v.now != nil {
		now = v.now
	}
	at := now()
	if at.Before(cert.NotBefore) || at.After(cert.NotAfter) {
		return uaerr.CryptoErr("certificate %s is not valid at %s (window %s - %s)", cert.Subject, at, cert.NotBefore, cert.NotAfter)
	}

	if v.AllowSelfSigned && isSelfSigned(cert) {
		return nil
	}

	opts := x509.VerifyOptions{
		Roots:         v.Trusted,
		Intermediates: v.Intermediates,
		CurrentTime:   at,
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	}
	if _, err := cert.Verify(opts); err != nil {
		return uaerr.CryptoErr("certificate chain verification failed: %v", err)
	}
	return nil
}

func isSelfSigned(cert *x509.Certificate) bool {
	return cert.CheckSignatureFrom(cert) == nil
}
