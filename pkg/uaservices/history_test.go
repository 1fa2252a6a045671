package uaservices

import (
	"testing"

	"github.com/foundry-iiot/opcua/pkg/ua"
)

func TestHistoryReadRoundTrip(t *testing.T) {
	req := HistoryReadRequest{
		Header:             NewRequestHeader(ua.NodeId{}, 1, 0),
		TimestampsToReturn: TimestampsSource,
		NodesToRead: []HistoryReadValueId{
			{NodeID: ua.NewNumericNodeId(2, 100), ContinuationPoint: []byte{1}},
		},
	}
	e := ua.NewEncoder()
	if err := req.Encode(e); err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeHistoryReadRequest(ua.NewDecoder(e.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	got := decoded.(HistoryReadRequest)
	if len(got.NodesToRead) != 1 || len(got.NodesToRead[0].ContinuationPoint) != 1 {
		t.Fatalf("history read request round trip mismatch: %+v", got)
	}

	resp := HistoryReadResponse{
		Results: []HistoryReadResult{
			{StatusCode: ua.StatusGood, ContinuationPoint: []byte{2, 3}},
			{StatusCode: ua.StatusBadNodeIdUnknown},
		},
	}
	e2 := ua.NewEncoder()
	if err := resp.Encode(e2); err != nil {
		t.Fatal(err)
	}
	decodedResp, err := DecodeHistoryReadResponse(ua.NewDecoder(e2.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	gotResp := decodedResp.(HistoryReadResponse)
	if len(gotResp.Results) != 2 || len(gotResp.Results[0].ContinuationPoint) != 2 {
		t.Fatalf("history read response round trip mismatch: %+v", gotResp)
	}
}
