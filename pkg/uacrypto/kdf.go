package uacrypto

import (
	"crypto/hmac"
	"hash"
)

// PHash implements P_HASH(secret, seed, n) from OPC UA Part 6 §6.7.5
// (the same construction as the TLS 1.0/1.1 PRF): A(0) = seed,
// A(i) = HMAC(secret, A(i-1)), output = the concatenation of
// HMAC(secret, A(i) || seed), truncated to n bytes.
//
// This plays the same "named key-derivation primitive built from
// stdlib crypto/hmac" role that backkem/matter's pkg/crypto/kdf.go
// fills with golang.org/x/crypto/hkdf — P-SHA is not HKDF, so the
// teacher's HKDF import is not reused (SPEC_FULL.md Domain Stack),
// but the function-per-construction shape is.
func PHash(newHash func() hash.Hash, secret, seed []byte, n int) []byte {
	out := make([]byte, 0, n)
	a := seed

	for len(out) < n {
		a = hmacSum(newHash, secret, a)
		out = append(out, hmacSum(newHash, secret, append(append([]byte{}, a...), seed...))...)
	}
	return out[:n]
}

func hmacSum(newHash func() hash.Hash, key, data []byte) []byte {
	mac := hmac.New(newHash, key)
	mac.Write(data)
	return mac.Sum(nil)
}

// deriveDirectionalKeys partitions P_HASH output, in order, into
// (signingKey, encryptingKey, iv) for one direction, per spec §4.3.
func deriveDirectionalKeys(newHash func() hash.Hash, secret, seed []byte, signingKeyLen, encKeyLen, ivLen int) (signingKey, encKey, iv []byte) {
	total := signingKeyLen + encKeyLen + ivLen
	material := PHash(newHash, secret, seed, total)
	signingKey = material[0:signingKeyLen]
	encKey = material[signingKeyLen : signingKeyLen+encKeyLen]
	iv = material[signingKeyLen+encKeyLen : total]
	return
}
