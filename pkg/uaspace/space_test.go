package uaspace

import (
	"net"
	"testing"
	"time"

	"github.com/foundry-iiot/opcua/pkg/ua"
	"github.com/foundry-iiot/opcua/pkg/uacrypto"
	"github.com/foundry-iiot/opcua/pkg/uaidentity"
	"github.com/foundry-iiot/opcua/pkg/uasc"
	"github.com/foundry-iiot/opcua/pkg/uaservices"
	"github.com/foundry-iiot/opcua/pkg/uasession"
	"github.com/foundry-iiot/opcua/pkg/uatransport"
)

// scriptedResponse is one queued reply fakeScriptedServer sends back
// for the next MSG request it reads, in order.
type scriptedResponse struct {
	Body ua.BinaryCodec
}

// fakeScriptedServer speaks the HEL/ACK/OPN handshake (PolicyNone) and
// then answers each incoming MSG request with the next entry of
// responses in order, echoing back the client's requestId. This
// generalizes pkg/uaservices/dispatcher_test.go's single-response fake
// server into a multi-round-trip one, so a CreateSession/
// ActivateSession handshake can be followed by the AddressSpaceOps
// call under test.
func fakeScriptedServer(t *testing.T, ln net.Listener, responses []scriptedResponse) {
	t.Helper()
	conn, err := ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	if !readChunk(t, conn, uatransport.MessageTypeHEL) {
		return
	}
	ack := uatransport.BuildAckChunk(uatransport.AckMessage{
		ProtocolVersion:   0,
		ReceiveBufferSize: uatransport.MinBufferSize,
		SendBufferSize:    uatransport.MinBufferSize,
	})
	if _, err := conn.Write(ack); err != nil {
		return
	}

	if !readChunk(t, conn, uatransport.MessageTypeOPN) {
		return
	}
	respBody := ua.NewEncoder()
	respBody.WriteUint32(1234)
	uasc.AsymmetricSecurityHeader{SecurityPolicyURI: uacrypto.PolicyNone}.Encode(respBody)
	uasc.SequenceHeader{SequenceNumber: 1, RequestID: 1}.Encode(respBody)
	respBody.WriteNodeId(uasc.OpenSecureChannelResponseTypeID)
	_ = uasc.OpenSecureChannelResponse{
		ServerProtocolVersion: 0,
		SecurityToken:         uasc.SecurityToken{ChannelID: 1234, TokenID: 1, RevisedLifetime: 3600000},
	}.Encode(respBody)
	hh := uatransport.ChunkHeader{MessageType: uatransport.MessageTypeOPN, ChunkType: uatransport.ChunkFinal, MessageSize: uint32(uatransport.HeaderSize + respBody.Len())}
	if _, err := conn.Write(append(hh.Encode(), respBody.Bytes()...)); err != nil {
		return
	}

	seqNum := uint32(2)
	for _, resp := range responses {
		msgHeader := make([]byte, uatransport.HeaderSize)
		if _, err := readFullSpaceTest(conn, msgHeader); err != nil {
			return
		}
		mh, err := uatransport.DecodeChunkHeader(msgHeader)
		if err != nil {
			return
		}
		msgBody := make([]byte, mh.BodySize())
		if _, err := readFullSpaceTest(conn, msgBody); err != nil {
			return
		}
		d := ua.NewDecoder(msgBody)
		if _, err := uasc.DecodeSymmetricSecurityHeader(d); err != nil {
			return
		}
		seqHeader, err := uasc.DecodeSequenceHeader(d)
		if err != nil {
			return
		}

		respMsgBody := ua.NewEncoder()
		if err := resp.Body.Encode(respMsgBody); err != nil {
			return
		}

		respMsg := ua.NewEncoder()
		uasc.SymmetricSecurityHeader{ChannelID: 1234, TokenID: 1}.Encode(respMsg)
		uasc.SequenceHeader{SequenceNumber: seqNum, RequestID: seqHeader.RequestID}.Encode(respMsg)
		respMsg.WriteNodeId(resp.Body.EncodingTypeID())
		respMsg.WriteRaw(respMsgBody.Bytes())
		mhh := uatransport.ChunkHeader{MessageType: uatransport.MessageTypeMSG, ChunkType: uatransport.ChunkFinal, MessageSize: uint32(uatransport.HeaderSize + respMsg.Len())}
		if _, err := conn.Write(append(mhh.Encode(), respMsg.Bytes()...)); err != nil {
			return
		}
		seqNum++
	}

	buf := make([]byte, 64)
	for {
		if _, err := conn.Read(buf); err != nil {
			return
		}
	}
}

func readChunk(t *testing.T, conn net.Conn, want uatransport.MessageType) bool {
	t.Helper()
	header := make([]byte, uatransport.HeaderSize)
	if _, err := readFullSpaceTest(conn, header); err != nil {
		return false
	}
	h, err := uatransport.DecodeChunkHeader(header)
	if err != nil || h.MessageType != want {
		return false
	}
	body := make([]byte, h.BodySize())
	_, err = readFullSpaceTest(conn, body)
	return err == nil
}

func readFullSpaceTest(conn net.Conn, buf []byte) (int, error) {
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

// newTestSession dials a fake server scripted to answer CreateSession
// then ActivateSession, returning a real *uasession.Session ready for
// Space to issue further calls against.
func newTestSession(t *testing.T, ln net.Listener, extra []scriptedResponse) *uasession.Session {
	t.Helper()

	responses := append([]scriptedResponse{
		{Body: uaservices.CreateSessionResponse{
			SessionID:             ua.NewNumericNodeId(1, 1),
			AuthenticationToken:   ua.NewNumericNodeId(1, 2),
			RevisedSessionTimeout: 600000,
		}},
		{Body: uaservices.ActivateSessionResponse{Results: []ua.StatusCode{ua.StatusGood}}},
	}, extra...)

	go fakeScriptedServer(t, ln, responses)

	ch, err := uasc.NewChannel(uasc.Config{
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

	disp := uaservices.NewDispatcher(ch, nil)
	sess, err := uasession.Create(disp, uasession.Config{
		ClientDescription: uaservices.ApplicationDescription{ApplicationURI: "urn:test-client", ApplicationType: uaservices.ApplicationTypeClient},
		EndpointURL:       "opc.tcp://" + ln.Addr().String(),
		SessionName:       "space-test",
		Endpoint: uaservices.EndpointDescription{
			UserIdentityTokens: []uaservices.UserTokenPolicy{
				{PolicyID: "anonymous", TokenType: uaservices.UserTokenTypeAnonymous},
			},
		},
	}, uaidentity.Anonymous{})
	if err != nil {
		t.Fatalf("uasession.Create: %v", err)
	}
	return sess
}

func TestSpaceReadReturnsValues(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	sess := newTestSession(t, ln, []scriptedResponse{
		{Body: uaservices.ReadResponse{Results: []ua.DataValue{
			{Value: ua.NewScalarVariant(ua.VariantTypeDouble, 42.5), HasValue: true},
		}}},
	})

	space := New(sess)
	results, err := space.Read(0, uaservices.TimestampsBoth, []uaservices.ReadValueId{
		{NodeID: ua.NewNumericNodeId(2, 100), AttributeID: 13},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Value.Scalar.(float64) != 42.5 {
		t.Fatalf("unexpected read results: %+v", results)
	}
}

func TestSpaceManagedBrowseMergesAcrossContinuationPoints(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	sess := newTestSession(t, ln, []scriptedResponse{
		{Body: uaservices.BrowseResponse{Results: []uaservices.BrowseResult{
			{StatusCode: ua.StatusGood, ContinuationPoint: []byte{1}, References: []uaservices.ReferenceDescription{
				{DisplayName: ua.LocalizedText{Text: "first", HasText: true}},
			}},
		}}},
		{Body: uaservices.BrowseNextResponse{Results: []uaservices.BrowseResult{
			{StatusCode: ua.StatusGood, References: []uaservices.ReferenceDescription{
				{DisplayName: ua.LocalizedText{Text: "second", HasText: true}},
			}},
		}}},
	})

	space := New(sess)
	merged, err := space.ManagedBrowse(uaservices.ViewDescription{}, 0, []uaservices.BrowseDescription{
		{NodeID: ua.NewNumericNodeId(0, 85)},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(merged) != 1 || len(merged[0]) != 2 {
		t.Fatalf("expected two merged references across the continuation point, got %+v", merged)
	}
	if merged[0][0].DisplayName.Text != "first" || merged[0][1].DisplayName.Text != "second" {
		t.Fatalf("unexpected merge order: %+v", merged[0])
	}
}
