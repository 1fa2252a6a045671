package uasc

import (
	"bytes"
	"testing"

	"github.com/foundry-iiot/opcua/pkg/ua"
)

func TestOpenSecureChannelRequestRoundTrip(t *testing.T) {
	req := OpenSecureChannelRequest{
		ClientProtocolVersion: 0,
		RequestType:           RequestTypeIssue,
		SecurityMode:          wireModeSignAndEncrypt,
		ClientNonce:           []byte{1, 2, 3},
		RequestedLifetime:     3600000,
	}
	e := ua.NewEncoder()
	if err := req.Encode(e); err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeOpenSecureChannelRequest(ua.NewDecoder(e.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	got := decoded.(OpenSecureChannelRequest)
	if got.RequestType != req.RequestType || got.SecurityMode != req.SecurityMode || got.RequestedLifetime != req.RequestedLifetime {
		t.Fatalf("got %+v want %+v", got, req)
	}
	if !bytes.Equal(got.ClientNonce, req.ClientNonce) {
		t.Fatalf("nonce mismatch")
	}
}

func TestOpenSecureChannelResponseRoundTrip(t *testing.T) {
	resp := OpenSecureChannelResponse{
		ServerProtocolVersion: 0,
		SecurityToken: SecurityToken{
			ChannelID:       99,
			TokenID:         1,
			CreatedAt:       ua.NewDateTime(ua.DateTime(0).Time()),
			RevisedLifetime: 3600000,
		},
		ServerNonce: []byte{9, 9, 9},
	}
	e := ua.NewEncoder()
	if err := resp.Encode(e); err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeOpenSecureChannelResponse(ua.NewDecoder(e.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	got := decoded.(OpenSecureChannelResponse)
	if got.SecurityToken != resp.SecurityToken {
		t.Fatalf("got %+v want %+v", got.SecurityToken, resp.SecurityToken)
	}
	if !bytes.Equal(got.ServerNonce, resp.ServerNonce) {
		t.Fatalf("nonce mismatch")
	}
}
