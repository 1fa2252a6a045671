package uacrypto

import (
	"bytes"
	"testing"
)

func TestPadSymmetricRoundTrip(t *testing.T) {
	cases := [][]byte{
		{},
		[]byte("a"),
		[]byte("exactly16bytes!!"),
		bytes.Repeat([]byte{0xAB}, 255),
	}
	for _, data := range cases {
		padded := PadSymmetric(data, 16)
		if len(padded)%16 != 0 {
			t.Fatalf("padded length %d is not a multiple of block size", len(padded))
		}
		unpadded, err := UnpadSymmetric(padded, 16)
		if err != nil {
			t.Fatalf("unpad: %v", err)
		}
		if !bytes.Equal(unpadded, data) {
			t.Fatalf("round trip mismatch: got %x want %x", unpadded, data)
		}
	}
}

func TestUnpadSymmetricRejectsCorruptPadding(t *testing.T) {
	padded := PadSymmetric([]byte("hello"), 16)
	padded[len(padded)-1] ^= 0xFF
	if _, err := UnpadSymmetric(padded, 16); err == nil {
		t.Fatal("expected error for corrupted padding count")
	}

	padded2 := PadSymmetric([]byte("hello"), 16)
	padded2[len(padded2)-2] ^= 0x01
	if _, err := UnpadSymmetric(padded2, 16); err == nil {
		t.Fatal("expected error for corrupted padding byte")
	}
}

func TestPadAsymmetricSingleByteFooter(t *testing.T) {
	data := []byte("some plaintext that needs padding")
	padded := PadAsymmetric(data, 214, 256) // 2048-bit key, OAEP-SHA1 block size
	unpadded, err := UnpadAsymmetric(padded, 256)
	if err != nil {
		t.Fatalf("unpad: %v", err)
	}
	if !bytes.Equal(unpadded, data) {
		t.Fatalf("round trip mismatch: got %x want %x", unpadded, data)
	}
}

func TestPadAsymmetricExtraFooterByteForLargeKeys(t *testing.T) {
	data := bytes.Repeat([]byte{0x42}, 300)
	padded := PadAsymmetric(data, 470, 512) // 4096-bit key
	unpadded, err := UnpadAsymmetric(padded, 512)
	if err != nil {
		t.Fatalf("unpad: %v", err)
	}
	if !bytes.Equal(unpadded, data) {
		t.Fatalf("round trip mismatch: got %x want %x", unpadded, data)
	}
}
