package uacrypto

import (
	"crypto/subtle"

	"github.com/foundry-iiot/opcua/pkg/uaerr"
)

// PadSymmetric applies OPC UA padding (spec §4.3): the padding byte
// value and the trailing size byte both equal padCount, chosen so
// that (len(data) + padCount + 1) is a multiple of blockSize.
// padCount is always in [0, blockSize-1].
func PadSymmetric(data []byte, blockSize int) []byte {
	padCount := blockSize - 1 - (len(data) % blockSize)
	if padCount < 0 {
		padCount += blockSize
	}
	out := make([]byte, len(data)+padCount+1)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(padCount)
	}
	return out
}

// UnpadSymmetric verifies and strips OPC UA padding using a
// constant-time comparison of the padding bytes, returning a Crypto
// error if the padding is malformed.
func UnpadSymmetric(padded []byte, blockSize int) ([]byte, error) {
	if len(padded) == 0 {
		return nil, uaerr.CryptoErr("padded buffer is empty")
	}
	padCount := int(padded[len(padded)-1])
	if padCount > blockSize-1 || padCount+1 > len(padded) {
		return nil, uaerr.CryptoErr("invalid padding count %d", padCount)
	}

	expected := make([]byte, padCount+1)
	for i := range expected {
		expected[i] = byte(padCount)
	}
	actual := padded[len(padded)-padCount-1:]
	if subtle.ConstantTimeCompare(expected, actual) != 1 {
		return nil, uaerr.CryptoErr("padding verification failed")
	}
	return padded[:len(padded)-padCount-1], nil
}

// PadAsymmetric applies OPC UA asymmetric padding: padding bytes take
// the low byte of padCount, and the trailing footer is the low byte
// of padCount followed by, when the RSA key exceeds 2048 bits
// (keyBytes > 256), an extra byte holding padCount's high byte (spec
// §4.3) — asymmetric plaintext blocks are large enough that padCount
// can exceed a single byte's range, unlike symmetric's 0-15 range.
func PadAsymmetric(data []byte, blockSize int, keyBytes int) []byte {
	footerSize := 1
	if keyBytes > 256 {
		footerSize = 2
	}
	padCount := blockSize - footerSize - (len(data) % blockSize)
	if padCount < 0 {
		padCount += blockSize
	}

	out := make([]byte, len(data)+padCount+footerSize)
	copy(out, data)
	fill := byte(padCount)
	for i := len(data); i < len(data)+padCount; i++ {
		out[i] = fill
	}
	out[len(data)+padCount] = byte(padCount)
	if footerSize == 2 {
		out[len(out)-1] = byte(padCount >> 8)
	}
	return out
}

// UnpadAsymmetric is the inverse of PadAsymmetric.
func UnpadAsymmetric(padded []byte, keyBytes int) ([]byte, error) {
	footerSize := 1
	if keyBytes > 256 {
		footerSize = 2
	}
	if len(padded) < footerSize {
		return nil, uaerr.CryptoErr("padded buffer too short for asymmetric footer")
	}
	padCount := int(padded[len(padded)-footerSize])
	if footerSize == 2 {
		padCount |= int(padded[len(padded)-1]) << 8
	}
	total := padCount + footerSize
	if total > len(padded) {
		return nil, uaerr.CryptoErr("invalid asymmetric padding count %d", padCount)
	}
	return padded[:len(padded)-total], nil
}
