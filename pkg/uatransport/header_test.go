package uatransport

import "testing"

func TestChunkHeaderRoundTrip(t *testing.T) {
	h := ChunkHeader{MessageType: MessageTypeMSG, ChunkType: ChunkFinal, MessageSize: 128}
	got, err := DecodeChunkHeader(h.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if got != h {
		t.Fatalf("round trip mismatch: %+v != %+v", got, h)
	}
	if got.BodySize() != 120 {
		t.Fatalf("body size: %d", got.BodySize())
	}
}

func TestChunkHeaderRejectsBadChunkType(t *testing.T) {
	h := ChunkHeader{MessageType: MessageTypeMSG, ChunkType: ChunkFinal, MessageSize: 128}
	b := h.Encode()
	b[3] = 'X'
	if _, err := DecodeChunkHeader(b); err == nil {
		t.Fatal("expected error for invalid chunk type")
	}
}

func TestChunkHeaderRejectsUndersizedMessage(t *testing.T) {
	h := ChunkHeader{MessageType: MessageTypeMSG, ChunkType: ChunkFinal, MessageSize: 4}
	if _, err := DecodeChunkHeader(h.Encode()); err == nil {
		t.Fatal("expected error for message size smaller than header")
	}
}

func TestParseEndpointURL(t *testing.T) {
	cases := []struct {
		url     string
		network string
		address string
	}{
		{"opc.tcp://10.0.0.5:4840", "tcp", "10.0.0.5:4840"},
		{"opc.tcp://10.0.0.5:4840/path", "tcp", "10.0.0.5:4840"},
		{"opc.tcp://unix:/var/run/opcua.sock", "unix", "/var/run/opcua.sock"},
	}
	for _, c := range cases {
		ep, err := ParseEndpointURL(c.url)
		if err != nil {
			t.Fatalf("%s: %v", c.url, err)
		}
		if ep.Network != c.network || ep.Address != c.address {
			t.Fatalf("%s: got %+v", c.url, ep)
		}
	}
}

func TestParseEndpointURLRejectsNonOpcTcp(t *testing.T) {
	if _, err := ParseEndpointURL("http://example.com"); err == nil {
		t.Fatal("expected error for non opc.tcp:// scheme")
	}
}

func TestHelloAckRoundTrip(t *testing.T) {
	h := HelloMessage{
		ProtocolVersion: 0, ReceiveBufferSize: MinBufferSize, SendBufferSize: MinBufferSize,
		MaxMessageSize: 0, MaxChunkCount: 0, EndpointURL: "opc.tcp://localhost:4840",
	}
	got, err := DecodeHelloMessage(h.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if got != h {
		t.Fatalf("round trip mismatch: %+v != %+v", got, h)
	}

	a := AckMessage{ProtocolVersion: 0, ReceiveBufferSize: 16384, SendBufferSize: 16384, MaxMessageSize: 0, MaxChunkCount: 0}
	gotAck, err := DecodeAckMessage(a.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if gotAck != a {
		t.Fatalf("round trip mismatch: %+v != %+v", gotAck, a)
	}
}

func TestErrorMessageRoundTrip(t *testing.T) {
	m := ErrorMessage{Status: 0x80010000, Reason: "bad request"}
	got, err := DecodeErrorMessage(m.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != m.Status || got.Reason != m.Reason {
		t.Fatalf("round trip mismatch: %+v != %+v", got, m)
	}
}
