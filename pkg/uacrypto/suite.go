// Package uacrypto implements the OPC UA CryptoSuite: per-policy
// asymmetric and symmetric encrypt/sign operations, the Part 6 §6.7.5
// P-SHA key derivation function, and OPC UA padding.
//
// It generalizes backkem/matter's pkg/crypto package shape (small,
// named, stdlib-crypto-backed functions grouped by primitive —
// aesccm.go, hmac.go, kdf.go, p256.go) to the RSA/AES-CBC/HMAC-SHA
// primitive set Basic256Sha256 requires, in place of Matter's
// AES-CCM/ECDH/SPAKE2+ primitive set. Where the teacher reaches
// directly for stdlib crypto/* packages instead of hand-rolling a
// cipher, so does this package — RSA, AES-CBC, and HMAC are all
// implemented with crypto/rsa, crypto/aes, crypto/cipher, and
// crypto/hmac.
package uacrypto

import (
	"crypto/rsa"
	"crypto/x509"
	"sync"

	"github.com/foundry-iiot/opcua/pkg/uaerr"
)

// Policy URIs recognized by this package (spec §4.3).
const (
	PolicyNone           = "http://opcfoundation.org/UA/SecurityPolicies/None"
	PolicyBasic256Sha256 = "http://opcfoundation.org/UA/SecurityPolicies/Basic256Sha256"
)

// SecurityMode selects which of signing/encryption are applied to
// symmetric messages.
type SecurityMode int

const (
	ModeNone SecurityMode = iota
	ModeSign
	ModeSignAndEncrypt
)

func (m SecurityMode) String() string {
	switch m {
	case ModeSign:
		return "Sign"
	case ModeSignAndEncrypt:
		return "SignAndEncrypt"
	default:
		return "None"
	}
}

// KeyPair bundles the client's own certificate and private key, used
// for asymmetric signing and for decrypting the server's asymmetric
// payloads addressed to the client's public key.
type KeyPair struct {
	Certificate *x509.Certificate
	PrivateKey  *rsa.PrivateKey
}

// Suite is a pluggable per-policy crypto handler. None and
// Basic256Sha256 are registered by this package at init time;
// additional policies can be added via Register without touching
// pkg/uasc (SPEC_FULL.md Domain Stack / Component Design 4.3).
type Suite interface {
	PolicyURI() string

	// Asymmetric operations use the remote party's certificate (for
	// encrypt/verify) or the local KeyPair (for decrypt/sign).
	EncryptAsym(plaintext []byte, remoteCert *x509.Certificate) ([]byte, error)
	DecryptAsym(ciphertext []byte, local *KeyPair) ([]byte, error)
	SignAsym(data []byte, local *KeyPair) ([]byte, error)
	VerifyAsym(data, signature []byte, remoteCert *x509.Certificate) error

	// Symmetric operations use keys derived by DeriveKeys.
	EncryptSym(plaintext, key, iv []byte) ([]byte, error)
	DecryptSym(ciphertext, key, iv []byte) ([]byte, error)
	SignSym(data, key []byte) ([]byte, error)
	VerifySym(data, signature, key []byte) error

	// DeriveKeys derives the six directional keys from the client and
	// server nonces exchanged during OPN (spec §4.3/§4.4).
	DeriveKeys(clientNonce, serverNonce []byte) (ChannelKeys, error)

	// Size queries.
	AsymPlaintextBlockSize(remoteCert *x509.Certificate) int
	AsymCiphertextBlockSize(remoteCert *x509.Certificate) int
	AsymSignatureSize(local *KeyPair) int
	SymBlockSize() int
	SymSignatureSize() int
	SymKeySize() int
	SymIVSize() int
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Suite{}
)

func init() {
	Register(NewNoneSuite())
	Register(NewBasic256Sha256Suite())
}

// Register adds or replaces a Suite in the package-level registry,
// keyed by its PolicyURI().
func Register(s Suite) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[s.PolicyURI()] = s
}

// Lookup returns the Suite registered for policyURI.
func Lookup(policyURI string) (Suite, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	s, ok := registry[policyURI]
	if !ok {
		return nil, uaerr.CryptoErr("unknown security policy %q", policyURI)
	}
	return s, nil
}
