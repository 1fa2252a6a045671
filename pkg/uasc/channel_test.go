package uasc

import (
	"net"
	"testing"
	"time"

	"github.com/foundry-iiot/opcua/pkg/ua"
	"github.com/foundry-iiot/opcua/pkg/uacrypto"
	"github.com/foundry-iiot/opcua/pkg/uatransport"
)

// fakeNoneServer speaks just enough of the HEL/ACK/OPN/MSG handshake
// (PolicyNone, ModeNone — no crypto) to exercise Channel end to end
// over a real loopback TCP connection, generalizing the paired-peer
// integration style of backkem/matter's
// pkg/securechannel/manager_integration_test.go to this protocol's
// handshake instead of PASE/CASE.
func fakeNoneServer(t *testing.T, ln net.Listener) {
	t.Helper()
	conn, err := ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	// HEL -> ACK.
	helHeader := make([]byte, uatransport.HeaderSize)
	if _, err := readFullTest(conn, helHeader); err != nil {
		t.Errorf("server: read HEL header: %v", err)
		return
	}
	h, err := uatransport.DecodeChunkHeader(helHeader)
	if err != nil {
		t.Errorf("server: decode HEL header: %v", err)
		return
	}
	helBody := make([]byte, h.BodySize())
	if _, err := readFullTest(conn, helBody); err != nil {
		t.Errorf("server: read HEL body: %v", err)
		return
	}
	ack := uatransport.BuildAckChunk(uatransport.AckMessage{
		ProtocolVersion:   0,
		ReceiveBufferSize: uatransport.MinBufferSize,
		SendBufferSize:    uatransport.MinBufferSize,
	})
	if _, err := conn.Write(ack); err != nil {
		t.Errorf("server: write ACK: %v", err)
		return
	}

	// OPN Issue -> OPN response.
	opnHeader := make([]byte, uatransport.HeaderSize)
	if _, err := readFullTest(conn, opnHeader); err != nil {
		t.Errorf("server: read OPN header: %v", err)
		return
	}
	oh, err := uatransport.DecodeChunkHeader(opnHeader)
	if err != nil {
		t.Errorf("server: decode OPN header: %v", err)
		return
	}
	opnBody := make([]byte, oh.BodySize())
	if _, err := readFullTest(conn, opnBody); err != nil {
		t.Errorf("server: read OPN body: %v", err)
		return
	}

	respBody := ua.NewEncoder()
	respBody.WriteUint32(1234) // channelId
	AsymmetricSecurityHeader{SecurityPolicyURI: uacrypto.PolicyNone}.Encode(respBody)
	SequenceHeader{SequenceNumber: 1, RequestID: 1}.Encode(respBody)
	respBody.WriteNodeId(OpenSecureChannelResponseTypeID)
	_ = OpenSecureChannelResponse{
		ServerProtocolVersion: 0,
		SecurityToken:         SecurityToken{ChannelID: 1234, TokenID: 1, RevisedLifetime: 3600000},
	}.Encode(respBody)

	hh := uatransport.ChunkHeader{MessageType: uatransport.MessageTypeOPN, ChunkType: uatransport.ChunkFinal, MessageSize: uint32(uatransport.HeaderSize + respBody.Len())}
	if _, err := conn.Write(append(hh.Encode(), respBody.Bytes()...)); err != nil {
		t.Errorf("server: write OPN response: %v", err)
		return
	}

	// One MSG request -> MSG echo response.
	msgHeader := make([]byte, uatransport.HeaderSize)
	if _, err := readFullTest(conn, msgHeader); err != nil {
		t.Errorf("server: read MSG header: %v", err)
		return
	}
	mh, err := uatransport.DecodeChunkHeader(msgHeader)
	if err != nil {
		t.Errorf("server: decode MSG header: %v", err)
		return
	}
	msgBody := make([]byte, mh.BodySize())
	if _, err := readFullTest(conn, msgBody); err != nil {
		t.Errorf("server: read MSG body: %v", err)
		return
	}
	d := ua.NewDecoder(msgBody)
	if _, err := DecodeSymmetricSecurityHeader(d); err != nil {
		t.Errorf("server: decode symmetric header: %v", err)
		return
	}
	seqHeader, err := DecodeSequenceHeader(d)
	if err != nil {
		t.Errorf("server: decode sequence header: %v", err)
		return
	}
	typeID, err := d.ReadNodeId()
	if err != nil {
		t.Errorf("server: decode type id: %v", err)
		return
	}
	_ = typeID

	respMsg := ua.NewEncoder()
	SymmetricSecurityHeader{ChannelID: 1234, TokenID: 1}.Encode(respMsg)
	SequenceHeader{SequenceNumber: 1, RequestID: seqHeader.RequestID}.Encode(respMsg)
	respMsg.WriteNodeId(ua.NewNumericNodeId(0, 12345))
	respMsg.WriteString("echo")
	mhh := uatransport.ChunkHeader{MessageType: uatransport.MessageTypeMSG, ChunkType: uatransport.ChunkFinal, MessageSize: uint32(uatransport.HeaderSize + respMsg.Len())}
	if _, err := conn.Write(append(mhh.Encode(), respMsg.Bytes()...)); err != nil {
		t.Errorf("server: write MSG response: %v", err)
		return
	}

	// Drain until the client closes.
	buf := make([]byte, 64)
	for {
		if _, err := conn.Read(buf); err != nil {
			return
		}
	}
}

func readFullTest(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func TestChannelOpenSendReceiveClose(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		fakeNoneServer(t, ln)
	}()

	ch, err := NewChannel(Config{
		EndpointURL:       "opc.tcp://" + ln.Addr().String(),
		SecurityMode:      uacrypto.ModeNone,
		SecurityPolicyURI: uacrypto.PolicyNone,
		DialTimeout:       2 * time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := ch.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if ch.State() != StateOpen {
		t.Fatalf("expected StateOpen, got %s", ch.State())
	}

	if err := ch.SendMessage(ch.NextRequestID(), ua.NewNumericNodeId(0, 999), []byte("request")); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	select {
	case msg := <-ch.Messages():
		if msg.TypeID.Numeric() != 12345 {
			t.Fatalf("unexpected TypeID %s", msg.TypeID)
		}
	case err := <-ch.Errors():
		t.Fatalf("channel failed: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for echoed message")
	}

	if err := ch.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	<-done
}

func TestChannelSendMessageFailsWhenNotOpen(t *testing.T) {
	ch, err := NewChannel(Config{
		EndpointURL:       "opc.tcp://127.0.0.1:0",
		SecurityMode:      uacrypto.ModeNone,
		SecurityPolicyURI: uacrypto.PolicyNone,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := ch.SendMessage(ch.NextRequestID(), ua.NewNumericNodeId(0, 1), nil); err == nil {
		t.Fatal("expected error sending on an unopened channel")
	}
}
