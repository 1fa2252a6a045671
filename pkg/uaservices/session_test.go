package uaservices

import (
	"testing"

	"github.com/foundry-iiot/opcua/pkg/ua"
)

func TestCreateSessionRoundTrip(t *testing.T) {
	req := CreateSessionRequest{
		Header:                  NewRequestHeader(ua.NodeId{}, 1, 0),
		ClientDescription:       ApplicationDescription{ApplicationURI: "urn:client", ApplicationType: ApplicationTypeClient},
		EndpointURL:             "opc.tcp://localhost:4840",
		SessionName:             "test-session",
		ClientNonce:             []byte{1, 2, 3, 4},
		RequestedSessionTimeout: 600000,
	}
	e := ua.NewEncoder()
	if err := req.Encode(e); err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeCreateSessionRequest(ua.NewDecoder(e.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	got := decoded.(CreateSessionRequest)
	if got.SessionName != req.SessionName || len(got.ClientNonce) != 4 {
		t.Fatalf("create session request round trip mismatch: %+v", got)
	}

	resp := CreateSessionResponse{
		SessionID:             ua.NewNumericNodeId(1, 1),
		AuthenticationToken:   ua.NewNumericNodeId(1, 2),
		RevisedSessionTimeout: 600000,
		ServerNonce:           []byte{5, 6, 7, 8},
		ServerEndpoints:       []EndpointDescription{{EndpointURL: "opc.tcp://localhost:4840"}},
		ServerSignature:       SignatureData{Algorithm: "rsa", HasAlgorithm: true, Signature: []byte{9}},
	}
	e2 := ua.NewEncoder()
	if err := resp.Encode(e2); err != nil {
		t.Fatal(err)
	}
	decodedResp, err := DecodeCreateSessionResponse(ua.NewDecoder(e2.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	gotResp := decodedResp.(CreateSessionResponse)
	if !gotResp.SessionID.Equal(resp.SessionID) || !gotResp.AuthenticationToken.Equal(resp.AuthenticationToken) {
		t.Fatalf("create session response round trip mismatch: %+v", gotResp)
	}
	if len(gotResp.ServerEndpoints) != 1 || !gotResp.ServerSignature.HasAlgorithm {
		t.Fatalf("create session response fields lost: %+v", gotResp)
	}
}

func TestActivateSessionRoundTrip(t *testing.T) {
	token, err := ua.EncodeTyped(anonymousTokenForTest("anonymous"))
	if err != nil {
		t.Fatal(err)
	}
	req := ActivateSessionRequest{
		Header:            NewRequestHeader(ua.NewNumericNodeId(1, 2), 1, 0),
		UserIdentityToken: token,
	}
	e := ua.NewEncoder()
	if err := req.Encode(e); err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeActivateSessionRequest(ua.NewDecoder(e.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	got := decoded.(ActivateSessionRequest)
	if !got.UserIdentityToken.TypeID.Equal(token.TypeID) {
		t.Fatalf("activate session request round trip mismatch: %+v", got)
	}

	resp := ActivateSessionResponse{Results: []ua.StatusCode{ua.StatusGood}}
	e2 := ua.NewEncoder()
	if err := resp.Encode(e2); err != nil {
		t.Fatal(err)
	}
	decodedResp, err := DecodeActivateSessionResponse(ua.NewDecoder(e2.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if len(decodedResp.(ActivateSessionResponse).Results) != 1 {
		t.Fatalf("activate session response round trip mismatch: %+v", decodedResp)
	}
}

func TestCloseSessionRoundTrip(t *testing.T) {
	req := CloseSessionRequest{Header: NewRequestHeader(ua.NewNumericNodeId(1, 2), 1, 0), DeleteSubscriptions: true}
	e := ua.NewEncoder()
	if err := req.Encode(e); err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeCloseSessionRequest(ua.NewDecoder(e.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if !decoded.(CloseSessionRequest).DeleteSubscriptions {
		t.Fatal("DeleteSubscriptions should round trip true")
	}
}

// anonymousTokenForTest avoids importing pkg/uaidentity, so these tests
// take no dependency on the identity package; it builds the same wire
// shape pkg/uaidentity.Anonymous.BuildToken does.
type anonymousTokenForTest string

func (a anonymousTokenForTest) EncodingTypeID() ua.NodeId { return ua.NewNumericNodeId(0, 321) }
func (a anonymousTokenForTest) Encode(e *ua.Encoder) error {
	e.WriteString(string(a))
	return nil
}
