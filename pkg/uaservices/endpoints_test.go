package uaservices

import (
	"testing"

	"github.com/foundry-iiot/opcua/pkg/ua"
)

func TestGetEndpointsRequestResponseRoundTrip(t *testing.T) {
	req := GetEndpointsRequest{
		Header:      NewRequestHeader(ua.NodeId{}, 1, 0),
		EndpointURL: "opc.tcp://localhost:4840",
	}
	e := ua.NewEncoder()
	if err := req.Encode(e); err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeGetEndpointsRequest(ua.NewDecoder(e.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if decoded.(GetEndpointsRequest).EndpointURL != req.EndpointURL {
		t.Fatalf("get endpoints request round trip mismatch: %+v", decoded)
	}

	resp := GetEndpointsResponse{
		Endpoints: []EndpointDescription{
			{
				EndpointURL:       "opc.tcp://localhost:4840",
				SecurityMode:      1,
				SecurityPolicyURI: "http://opcfoundation.org/UA/SecurityPolicy#None",
				UserIdentityTokens: []UserTokenPolicy{
					{PolicyID: "anonymous", TokenType: UserTokenTypeAnonymous},
					{PolicyID: "username", TokenType: UserTokenTypeUserName, SecurityPolicyURI: "http://opcfoundation.org/UA/SecurityPolicy#Basic256Sha256", HasSecurityPolicyURI: true},
				},
			},
		},
	}
	e2 := ua.NewEncoder()
	if err := resp.Encode(e2); err != nil {
		t.Fatal(err)
	}
	decodedResp, err := DecodeGetEndpointsResponse(ua.NewDecoder(e2.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	gotResp := decodedResp.(GetEndpointsResponse)
	if len(gotResp.Endpoints) != 1 || len(gotResp.Endpoints[0].UserIdentityTokens) != 2 {
		t.Fatalf("get endpoints response round trip mismatch: %+v", gotResp)
	}
	if !gotResp.Endpoints[0].UserIdentityTokens[1].HasSecurityPolicyURI {
		t.Fatalf("security policy presence lost: %+v", gotResp.Endpoints[0].UserIdentityTokens[1])
	}
}
