package uasc

import (
	"bytes"
	"testing"

	"github.com/foundry-iiot/opcua/pkg/ua"
)

func TestAsymmetricSecurityHeaderRoundTrip(t *testing.T) {
	cases := []AsymmetricSecurityHeader{
		{SecurityPolicyURI: "http://opcfoundation.org/UA/SecurityPolicies/None"},
		{
			SecurityPolicyURI:             "http://opcfoundation.org/UA/SecurityPolicies/Basic256Sha256",
			SenderCertificate:             []byte{1, 2, 3, 4},
			ReceiverCertificateThumbprint: []byte{5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24},
		},
	}
	for _, h := range cases {
		e := ua.NewEncoder()
		h.Encode(e)
		got, err := DecodeAsymmetricSecurityHeader(ua.NewDecoder(e.Bytes()))
		if err != nil {
			t.Fatal(err)
		}
		if got.SecurityPolicyURI != h.SecurityPolicyURI {
			t.Fatalf("policy mismatch: got %q want %q", got.SecurityPolicyURI, h.SecurityPolicyURI)
		}
		if !bytes.Equal(got.SenderCertificate, h.SenderCertificate) {
			t.Fatalf("sender cert mismatch")
		}
		if !bytes.Equal(got.ReceiverCertificateThumbprint, h.ReceiverCertificateThumbprint) {
			t.Fatalf("thumbprint mismatch")
		}
	}
}

func TestSymmetricSecurityHeaderRoundTrip(t *testing.T) {
	h := SymmetricSecurityHeader{ChannelID: 42, TokenID: 7}
	e := ua.NewEncoder()
	h.Encode(e)
	got, err := DecodeSymmetricSecurityHeader(ua.NewDecoder(e.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if got != h {
		t.Fatalf("got %+v want %+v", got, h)
	}
}

func TestSequenceHeaderRoundTrip(t *testing.T) {
	h := SequenceHeader{SequenceNumber: 1000, RequestID: 55}
	e := ua.NewEncoder()
	h.Encode(e)
	got, err := DecodeSequenceHeader(ua.NewDecoder(e.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if got != h {
		t.Fatalf("got %+v want %+v", got, h)
	}
}
