package uacrypto

import (
	"crypto"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/x509"

	"github.com/foundry-iiot/opcua/pkg/uaerr"
)

const (
	basic256Sha256SigningKeyLen = 32 // HMAC-SHA256
	basic256Sha256EncKeyLen     = 32 // AES-256
	basic256Sha256IVLen         = 16 // AES block size
)

// basic256Sha256Suite implements the Basic256Sha256 security policy
// (spec §4.3): RSA-OAEP-SHA1 asymmetric encryption, RSA-PKCS1v15-SHA256
// asymmetric signatures, AES-256-CBC symmetric encryption, HMAC-SHA256
// symmetric signatures, and P-SHA256 key derivation.
type basic256Sha256Suite struct{}

// NewBasic256Sha256Suite returns the Suite for PolicyBasic256Sha256.
func NewBasic256Sha256Suite() Suite { return basic256Sha256Suite{} }

func (basic256Sha256Suite) PolicyURI() string { return PolicyBasic256Sha256 }

func (basic256Sha256Suite) EncryptAsym(plaintext []byte, remoteCert *x509.Certificate) ([]byte, error) {
	pub, ok := remoteCert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, uaerr.CryptoErr("remote certificate does not carry an RSA public key")
	}
	blockSize := oaepPlaintextBlockSize(pub)
	out := make([]byte, 0, len(plaintext)+blockSize)
	for i := 0; i < len(plaintext); i += blockSize {
		end := i + blockSize
		if end > len(plaintext) {
			end = len(plaintext)
		}
		block, err := rsa.EncryptOAEP(sha1.New(), rand.Reader, pub, plaintext[i:end], nil)
		if err != nil {
			return nil, uaerr.CryptoErr("RSA-OAEP encrypt: %v", err)
		}
		out = append(out, block...)
	}
	return out, nil
}

func (basic256Sha256Suite) DecryptAsym(ciphertext []byte, local *KeyPair) ([]byte, error) {
	if local == nil || local.PrivateKey == nil {
		return nil, uaerr.CryptoErr("no local private key available for asymmetric decrypt")
	}
	blockSize := local.PrivateKey.Size()
	if blockSize == 0 || len(ciphertext)%blockSize != 0 {
		return nil, uaerr.CryptoErr("ciphertext length %d is not a multiple of key size %d", len(ciphertext), blockSize)
	}
	out := make([]byte, 0, len(ciphertext))
	for i := 0; i < len(ciphertext); i += blockSize {
		block, err := rsa.DecryptOAEP(sha1.New(), rand.Reader, local.PrivateKey, ciphertext[i:i+blockSize], nil)
		if err != nil {
			return nil, uaerr.CryptoErr("RSA-OAEP decrypt: %v", err)
		}
		out = append(out, block...)
	}
	return out, nil
}

func (basic256Sha256Suite) SignAsym(data []byte, local *KeyPair) ([]byte, error) {
	if local == nil || local.PrivateKey == nil {
		return nil, uaerr.CryptoErr("no local private key available for asymmetric sign")
	}
	digest := sha256.Sum256(data)
	sig, err := rsa.SignPKCS1v15(rand.Reader, local.PrivateKey, crypto.SHA256, digest[:])
	if err != nil {
		return nil, uaerr.CryptoErr("RSA-PKCS1v15-SHA256 sign: %v", err)
	}
	return sig, nil
}

func (basic256Sha256Suite) VerifyAsym(data, signature []byte, remoteCert *x509.Certificate) error {
	pub, ok := remoteCert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return uaerr.CryptoErr("remote certificate does not carry an RSA public key")
	}
	digest := sha256.Sum256(data)
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest[:], signature); err != nil {
		return uaerr.CryptoErr("RSA-PKCS1v15-SHA256 signature verification failed: %v", err)
	}
	return nil
}

func (basic256Sha256Suite) EncryptSym(plaintext, key, iv []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, uaerr.CryptoErr("AES-256 key setup: %v", err)
	}
	if len(plaintext)%block.BlockSize() != 0 {
		return nil, uaerr.CryptoErr("plaintext length %d is not a multiple of the AES block size", len(plaintext))
	}
	out := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, plaintext)
	return out, nil
}

func (basic256Sha256Suite) DecryptSym(ciphertext, key, iv []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, uaerr.CryptoErr("AES-256 key setup: %v", err)
	}
	if len(ciphertext)%block.BlockSize() != 0 {
		return nil, uaerr.CryptoErr("ciphertext length %d is not a multiple of the AES block size", len(ciphertext))
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ciphertext)
	return out, nil
}

func (basic256Sha256Suite) SignSym(data, key []byte) ([]byte, error) {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil), nil
}

func (basic256Sha256Suite) VerifySym(data, signature, key []byte) error {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	expected := mac.Sum(nil)
	if !hmac.Equal(expected, signature) {
		return uaerr.CryptoErr("HMAC-SHA256 signature verification failed")
	}
	return nil
}

func (basic256Sha256Suite) DeriveKeys(clientNonce, serverNonce []byte) (ChannelKeys, error) {
	if len(clientNonce) == 0 || len(serverNonce) == 0 {
		return ChannelKeys{}, uaerr.CryptoErr("DeriveKeys requires non-empty client and server nonces")
	}
	// Client keys are derived with the server's nonce as the P_HASH
	// secret and the client's nonce as the seed (and vice versa for
	// server keys), per Part 6 §6.7.5: each side's outgoing keys are
	// keyed by the nonce contributed by the other side.
	cSign, cEnc, cIV := deriveDirectionalKeys(sha256.New, serverNonce, clientNonce, basic256Sha256SigningKeyLen, basic256Sha256EncKeyLen, basic256Sha256IVLen)
	sSign, sEnc, sIV := deriveDirectionalKeys(sha256.New, clientNonce, serverNonce, basic256Sha256SigningKeyLen, basic256Sha256EncKeyLen, basic256Sha256IVLen)
	return ChannelKeys{
		ClientSigningKey:    cSign,
		ClientEncryptingKey: cEnc,
		ClientIV:            cIV,
		ServerSigningKey:    sSign,
		ServerEncryptingKey: sEnc,
		ServerIV:            sIV,
	}, nil
}

func (basic256Sha256Suite) AsymPlaintextBlockSize(remoteCert *x509.Certificate) int {
	pub, ok := remoteCert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return 0
	}
	return oaepPlaintextBlockSize(pub)
}

func (basic256Sha256Suite) AsymCiphertextBlockSize(remoteCert *x509.Certificate) int {
	pub, ok := remoteCert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return 0
	}
	return pub.Size()
}

func (basic256Sha256Suite) AsymSignatureSize(local *KeyPair) int {
	if local == nil || local.PrivateKey == nil {
		return 0
	}
	return local.PrivateKey.Size()
}

func (basic256Sha256Suite) SymBlockSize() int     { return aes.BlockSize }
func (basic256Sha256Suite) SymSignatureSize() int { return sha256.Size }
func (basic256Sha256Suite) SymKeySize() int        { return basic256Sha256EncKeyLen }
func (basic256Sha256Suite) SymIVSize() int         { return basic256Sha256IVLen }

// oaepPlaintextBlockSize returns the maximum plaintext size RSA-OAEP-SHA1
// can encrypt in a single block for the given key: keySize - 2*hashSize - 2.
func oaepPlaintextBlockSize(pub *rsa.PublicKey) int {
	hashSize := sha1.Size
	size := pub.Size() - 2*hashSize - 2
	if size < 0 {
		return 0
	}
	return size
}
