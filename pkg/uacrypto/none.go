package uacrypto

import (
	"crypto/x509"
)

// noneSuite implements the None security policy: every operation is
// either an identity transform or a no-op, per spec §4.3.
type noneSuite struct{}

// NewNoneSuite returns the Suite for PolicyNone.
func NewNoneSuite() Suite { return noneSuite{} }

func (noneSuite) PolicyURI() string { return PolicyNone }

func (noneSuite) EncryptAsym(plaintext []byte, _ *x509.Certificate) ([]byte, error) {
	return plaintext, nil
}

func (noneSuite) DecryptAsym(ciphertext []byte, _ *KeyPair) ([]byte, error) {
	return ciphertext, nil
}

func (noneSuite) SignAsym([]byte, *KeyPair) ([]byte, error) { return nil, nil }

func (noneSuite) VerifyAsym([]byte, []byte, *x509.Certificate) error { return nil }

func (noneSuite) EncryptSym(plaintext, _, _ []byte) ([]byte, error) { return plaintext, nil }

func (noneSuite) DecryptSym(ciphertext, _, _ []byte) ([]byte, error) { return ciphertext, nil }

func (noneSuite) SignSym([]byte, []byte) ([]byte, error) { return nil, nil }

func (noneSuite) VerifySym([]byte, []byte, []byte) error { return nil }

func (noneSuite) DeriveKeys(clientNonce, serverNonce []byte) (ChannelKeys, error) {
	// PolicyNone exchanges no cryptographic keys, but DeriveKeys still
	// returns deterministic (possibly empty) material so callers don't
	// need a None-specific branch in the secure channel handshake.
	return ChannelKeys{}, nil
}

func (noneSuite) AsymPlaintextBlockSize(*x509.Certificate) int { return 0 }
func (noneSuite) AsymCiphertextBlockSize(*x509.Certificate) int { return 0 }
func (noneSuite) AsymSignatureSize(*KeyPair) int                { return 0 }
func (noneSuite) SymBlockSize() int                             { return 1 }
func (noneSuite) SymSignatureSize() int                         { return 0 }
func (noneSuite) SymKeySize() int                               { return 0 }
func (noneSuite) SymIVSize() int                                { return 0 }
