package uaclient

import (
	"testing"

	"github.com/foundry-iiot/opcua/pkg/uacrypto"
	"github.com/foundry-iiot/opcua/pkg/uaservices"
)

func TestSelectEndpointExactMatch(t *testing.T) {
	endpoints := []uaservices.EndpointDescription{
		{SecurityMode: 1, SecurityPolicyURI: uacrypto.PolicyNone},
		{SecurityMode: 3, SecurityPolicyURI: uacrypto.PolicyBasic256Sha256},
	}
	got, err := SelectEndpoint(endpoints, uacrypto.ModeSignAndEncrypt, uacrypto.PolicyBasic256Sha256)
	if err != nil {
		t.Fatal(err)
	}
	if got.SecurityPolicyURI != uacrypto.PolicyBasic256Sha256 {
		t.Fatalf("expected exact match, got %+v", got)
	}
}

func TestSelectEndpointModeFallback(t *testing.T) {
	endpoints := []uaservices.EndpointDescription{
		{SecurityMode: 3, SecurityPolicyURI: "http://example.com/OtherPolicy"},
		{SecurityMode: 1, SecurityPolicyURI: uacrypto.PolicyNone},
	}
	got, err := SelectEndpoint(endpoints, uacrypto.ModeSignAndEncrypt, uacrypto.PolicyBasic256Sha256)
	if err != nil {
		t.Fatal(err)
	}
	if got.SecurityMode != 3 {
		t.Fatalf("expected mode-matched fallback, got %+v", got)
	}
}

func TestSelectEndpointPolicyFallback(t *testing.T) {
	endpoints := []uaservices.EndpointDescription{
		{SecurityMode: 1, SecurityPolicyURI: uacrypto.PolicyBasic256Sha256},
		{SecurityMode: 1, SecurityPolicyURI: uacrypto.PolicyNone},
	}
	got, err := SelectEndpoint(endpoints, uacrypto.ModeSignAndEncrypt, uacrypto.PolicyBasic256Sha256)
	if err != nil {
		t.Fatal(err)
	}
	if got.SecurityPolicyURI != uacrypto.PolicyBasic256Sha256 {
		t.Fatalf("expected policy-matched fallback, got %+v", got)
	}
}

func TestSelectEndpointFirstFallback(t *testing.T) {
	endpoints := []uaservices.EndpointDescription{
		{SecurityMode: 1, SecurityPolicyURI: "http://example.com/A"},
		{SecurityMode: 1, SecurityPolicyURI: "http://example.com/B"},
	}
	got, err := SelectEndpoint(endpoints, uacrypto.ModeSignAndEncrypt, uacrypto.PolicyBasic256Sha256)
	if err != nil {
		t.Fatal(err)
	}
	if got.SecurityPolicyURI != "http://example.com/A" {
		t.Fatalf("expected first endpoint as last-resort fallback, got %+v", got)
	}
}

func TestSelectEndpointNoEndpoints(t *testing.T) {
	if _, err := SelectEndpoint(nil, uacrypto.ModeNone, uacrypto.PolicyNone); err == nil {
		t.Fatal("expected error for empty endpoint list")
	}
}

func TestWireSecurityMode(t *testing.T) {
	cases := []struct {
		mode uacrypto.SecurityMode
		want uint32
	}{
		{uacrypto.ModeNone, 1},
		{uacrypto.ModeSign, 2},
		{uacrypto.ModeSignAndEncrypt, 3},
	}
	for _, c := range cases {
		if got := wireSecurityMode(c.mode); got != c.want {
			t.Errorf("wireSecurityMode(%v) = %d, want %d", c.mode, got, c.want)
		}
	}
}

func TestRewriteEndpointURLKeepsDialedHost(t *testing.T) {
	got := rewriteEndpointURL("opc.tcp://192.168.1.5:4840", "opc.tcp://internal-host:4840/UA/Server")
	want := "opc.tcp://192.168.1.5:4840/UA/Server"
	if got != want {
		t.Fatalf("rewriteEndpointURL = %q, want %q", got, want)
	}
}

func TestRewriteEndpointURLNoPath(t *testing.T) {
	got := rewriteEndpointURL("opc.tcp://192.168.1.5:4840", "opc.tcp://internal-host:4840")
	want := "opc.tcp://192.168.1.5:4840"
	if got != want {
		t.Fatalf("rewriteEndpointURL = %q, want %q", got, want)
	}
}

func TestRewriteEndpointURLMalformedDialedFallsBackToAdvertised(t *testing.T) {
	advertised := "opc.tcp://internal-host:4840/UA/Server"
	got := rewriteEndpointURL("not-a-url", advertised)
	if got != advertised {
		t.Fatalf("rewriteEndpointURL = %q, want advertised %q", got, advertised)
	}
}

func TestHostPart(t *testing.T) {
	host, ok := hostPart("opc.tcp://example.com:4840/UA/Server")
	if !ok || host != "opc.tcp://example.com:4840" {
		t.Fatalf("hostPart = %q, %v", host, ok)
	}
	if _, ok := hostPart("http://example.com"); ok {
		t.Fatal("expected hostPart to reject a non opc.tcp URL")
	}
}

func TestPathPart(t *testing.T) {
	if got := pathPart("opc.tcp://example.com:4840/UA/Server"); got != "/UA/Server" {
		t.Fatalf("pathPart = %q", got)
	}
	if got := pathPart("opc.tcp://example.com:4840"); got != "" {
		t.Fatalf("pathPart = %q, want empty", got)
	}
}
