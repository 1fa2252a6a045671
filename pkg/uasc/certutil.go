package uasc

import (
	"crypto/sha1"
	"crypto/x509"
)

// certThumbprint returns the SHA1 thumbprint of a DER-encoded
// certificate, used to populate AsymmetricSecurityHeader's
// ReceiverCertificateThumbprint (spec §4.4 step 3).
func certThumbprint(der []byte) []byte {
	sum := sha1.Sum(der)
	return sum[:]
}

func parseCertificate(der []byte) (*x509.Certificate, error) {
	return x509.ParseCertificate(der)
}
