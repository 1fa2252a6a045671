package uaservices

import (
	"testing"

	"github.com/foundry-iiot/opcua/pkg/ua"
)

func TestBrowseRequestResponseRoundTrip(t *testing.T) {
	req := BrowseRequest{
		Header:                        NewRequestHeader(ua.NodeId{}, 1, 0),
		RequestedMaxReferencesPerNode: 10,
		NodesToBrowse: []BrowseDescription{
			{NodeID: ua.NewNumericNodeId(0, 85), Direction: BrowseDirectionForward, ResultMask: 0x3f},
		},
	}
	e := ua.NewEncoder()
	if err := req.Encode(e); err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeBrowseRequest(ua.NewDecoder(e.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	got := decoded.(BrowseRequest)
	if got.RequestedMaxReferencesPerNode != 10 || len(got.NodesToBrowse) != 1 {
		t.Fatalf("browse request round trip mismatch: %+v", got)
	}

	resp := BrowseResponse{
		Results: []BrowseResult{
			{
				StatusCode: ua.StatusGood,
				References: []ReferenceDescription{
					{
						ReferenceTypeID: ua.NewNumericNodeId(0, 47),
						IsForward:       true,
						TargetID:        ua.ExpandedNodeId{NodeId: ua.NewNumericNodeId(0, 2253)},
						BrowseName:      ua.QualifiedName{NamespaceIndex: 0, Name: "Server"},
					},
				},
			},
			{StatusCode: ua.StatusBadNodeIdUnknown, ContinuationPoint: []byte{1, 2}},
		},
	}
	e2 := ua.NewEncoder()
	if err := resp.Encode(e2); err != nil {
		t.Fatal(err)
	}
	decodedResp, err := DecodeBrowseResponse(ua.NewDecoder(e2.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	gotResp := decodedResp.(BrowseResponse)
	if len(gotResp.Results) != 2 || gotResp.Results[0].References[0].BrowseName.Name != "Server" {
		t.Fatalf("browse response round trip mismatch: %+v", gotResp)
	}
	if len(gotResp.Results[1].ContinuationPoint) != 2 {
		t.Fatalf("continuation point lost: %+v", gotResp.Results[1])
	}
}

func TestBrowsePathRoundTrip(t *testing.T) {
	path := BrowsePath{
		StartingNode: ua.NewNumericNodeId(0, 85),
		Path: RelativePath{Elements: []RelativePathElement{
			{ReferenceTypeID: ua.NewNumericNodeId(0, 47), TargetName: ua.QualifiedName{Name: "MyObject"}},
		}},
	}
	e := ua.NewEncoder()
	path.Encode(e)
	got, err := decodeBrowsePath(ua.NewDecoder(e.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if !got.StartingNode.Equal(path.StartingNode) || len(got.Path.Elements) != 1 || got.Path.Elements[0].TargetName.Name != "MyObject" {
		t.Fatalf("browse path round trip mismatch: %+v", got)
	}
}
