package uaservices

import "github.com/foundry-iiot/opcua/pkg/ua"

var (
	BrowseRequestTypeID                          = ua.NewNumericNodeId(0, 527)
	BrowseResponseTypeID                         = ua.NewNumericNodeId(0, 530)
	BrowseNextRequestTypeID                       = ua.NewNumericNodeId(0, 533)
	BrowseNextResponseTypeID                      = ua.NewNumericNodeId(0, 536)
	TranslateBrowsePathsToNodeIdsRequestTypeID    = ua.NewNumericNodeId(0, 554)
	TranslateBrowsePathsToNodeIdsResponseTypeID   = ua.NewNumericNodeId(0, 557)
	RegisterNodesRequestTypeID                    = ua.NewNumericNodeId(0, 560)
	RegisterNodesResponseTypeID                   = ua.NewNumericNodeId(0, 563)
	UnregisterNodesRequestTypeID                  = ua.NewNumericNodeId(0, 566)
	UnregisterNodesResponseTypeID                 = ua.NewNumericNodeId(0, 569)
)

// BrowseDirection selects which end of a reference to follow.
type BrowseDirection int32

const (
	BrowseDirectionForward BrowseDirection = iota
	BrowseDirectionInverse
	BrowseDirectionBoth
)

// ViewDescription restricts a Browse to a named view; the zero value
// browses the full address space.
type ViewDescription struct {
	ViewID      ua.NodeId
	Timestamp   ua.DateTime
	ViewVersion uint32
}

func (v ViewDescription) Encode(e *ua.Encoder) {
	e.WriteNodeId(v.ViewID)
	e.WriteDateTime(v.Timestamp)
	e.WriteUint32(v.ViewVersion)
}

func decodeViewDescription(d *ua.Decoder) (ViewDescription, error) {
	var v ViewDescription
	var err error
	if v.ViewID, err = d.ReadNodeId(); err != nil {
		return v, err
	}
	if v.Timestamp, err = d.ReadDateTime(); err != nil {
		return v, err
	}
	if v.ViewVersion, err = d.ReadUint32(); err != nil {
		return v, err
	}
	return v, nil
}

// BrowseDescription names one node to browse from and how (spec
// §4.8).
type BrowseDescription struct {
	NodeID          ua.NodeId
	Direction       BrowseDirection
	ReferenceTypeID ua.NodeId
	IncludeSubtypes bool
	NodeClassMask   uint32
	ResultMask      uint32
}

func (b BrowseDescription) Encode(e *ua.Encoder) {
	e.WriteNodeId(b.NodeID)
	e.WriteInt32(int32(b.Direction))
	e.WriteNodeId(b.ReferenceTypeID)
	e.WriteBoolean(b.IncludeSubtypes)
	e.WriteUint32(b.NodeClassMask)
	e.WriteUint32(b.ResultMask)
}

func decodeBrowseDescription(d *ua.Decoder) (BrowseDescription, error) {
	var b BrowseDescription
	var err error
	if b.NodeID, err = d.ReadNodeId(); err != nil {
		return b, err
	}
	dir, err := d.ReadInt32()
	if err != nil {
		return b, err
	}
	b.Direction = BrowseDirection(dir)
	if b.ReferenceTypeID, err = d.ReadNodeId(); err != nil {
		return b, err
	}
	if b.IncludeSubtypes, err = d.ReadBoolean(); err != nil {
		return b, err
	}
	if b.NodeClassMask, err = d.ReadUint32(); err != nil {
		return b, err
	}
	if b.ResultMask, err = d.ReadUint32(); err != nil {
		return b, err
	}
	return b, nil
}

// ReferenceDescription is one edge discovered by Browse/BrowseNext.
type ReferenceDescription struct {
	ReferenceTypeID ua.NodeId
	IsForward       bool
	TargetID        ua.ExpandedNodeId
	BrowseName      ua.QualifiedName
	DisplayName     ua.LocalizedText
	NodeClass       int32
	TypeDefinition  ua.ExpandedNodeId
}

func (r ReferenceDescription) Encode(e *ua.Encoder) {
	e.WriteNodeId(r.ReferenceTypeID)
	e.WriteBoolean(r.IsForward)
	e.WriteExpandedNodeId(r.TargetID)
	e.WriteQualifiedName(r.BrowseName)
	e.WriteLocalizedText(r.DisplayName)
	e.WriteInt32(r.NodeClass)
	e.WriteExpandedNodeId(r.TypeDefinition)
}

func decodeReferenceDescription(d *ua.Decoder) (ReferenceDescription, error) {
	var r ReferenceDescription
	var err error
	if r.ReferenceTypeID, err = d.ReadNodeId(); err != nil {
		return r, err
	}
	if r.IsForward, err = d.ReadBoolean(); err != nil {
		return r, err
	}
	if r.TargetID, err = d.ReadExpandedNodeId(); err != nil {
		return r, err
	}
	if r.BrowseName, err = d.ReadQualifiedName(); err != nil {
		return r, err
	}
	if r.DisplayName, err = d.ReadLocalizedText(); err != nil {
		return r, err
	}
	if r.NodeClass, err = d.ReadInt32(); err != nil {
		return r, err
	}
	if r.TypeDefinition, err = d.ReadExpandedNodeId(); err != nil {
		return r, err
	}
	return r, nil
}

// BrowseResult is the per-input outcome of one BrowseDescription: a
// StatusCode, an optional continuation point when more references
// remain, and the references found so far (spec §4.8).
type BrowseResult struct {
	StatusCode        ua.StatusCode
	ContinuationPoint []byte
	References        []ReferenceDescription
}

func (r BrowseResult) Encode(e *ua.Encoder) {
	e.WriteStatusCode(r.StatusCode)
	e.WriteByteString(r.ContinuationPoint)
	ua.WriteArray(e, r.References, func(e *ua.Encoder, rd ReferenceDescription) { rd.Encode(e) })
}

func decodeBrowseResult(d *ua.Decoder) (BrowseResult, error) {
	var r BrowseResult
	var err error
	if r.StatusCode, err = d.ReadStatusCode(); err != nil {
		return r, err
	}
	if r.ContinuationPoint, err = d.ReadByteString(); err != nil {
		return r, err
	}
	if r.References, err = ua.ReadArray(d, decodeReferenceDescription); err != nil {
		return r, err
	}
	return r, nil
}

type BrowseRequest struct {
	Header                       RequestHeader
	View                         ViewDescription
	RequestedMaxReferencesPerNode uint32
	NodesToBrowse                []BrowseDescription
}

func (r BrowseRequest) EncodingTypeID() ua.NodeId { return BrowseRequestTypeID }

func (r BrowseRequest) Encode(e *ua.Encoder) error {
	r.Header.Encode(e)
	r.View.Encode(e)
	e.WriteUint32(r.RequestedMaxReferencesPerNode)
	ua.WriteArray(e, r.NodesToBrowse, func(e *ua.Encoder, b BrowseDescription) { b.Encode(e) })
	return nil
}

func DecodeBrowseRequest(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r BrowseRequest
	var err error
	if r.Header, err = DecodeRequestHeader(d); err != nil {
		return nil, err
	}
	if r.View, err = decodeViewDescription(d); err != nil {
		return nil, err
	}
	if r.RequestedMaxReferencesPerNode, err = d.ReadUint32(); err != nil {
		return nil, err
	}
	if r.NodesToBrowse, err = ua.ReadArray(d, decodeBrowseDescription); err != nil {
		return nil, err
	}
	return r, nil
}

type BrowseResponse struct {
	Header          ResponseHeader
	Results         []BrowseResult
	DiagnosticInfos []ua.DiagnosticInfo
}

func (r BrowseResponse) EncodingTypeID() ua.NodeId { return BrowseResponseTypeID }

func (r BrowseResponse) Encode(e *ua.Encoder) error {
	if err := r.Header.Encode(e); err != nil {
		return err
	}
	ua.WriteArray(e, r.Results, func(e *ua.Encoder, b BrowseResult) { b.Encode(e) })
	return writeDiagnosticInfoArray(e, r.DiagnosticInfos)
}

func DecodeBrowseResponse(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r BrowseResponse
	var err error
	if r.Header, err = DecodeResponseHeader(d); err != nil {
		return nil, err
	}
	if r.Results, err = ua.ReadArray(d, decodeBrowseResult); err != nil {
		return nil, err
	}
	if r.DiagnosticInfos, err = readDiagnosticInfoArray(d); err != nil {
		return nil, err
	}
	return r, nil
}

// BrowseNextRequest continues a previous Browse past its continuation
// points, or releases them when ReleaseContinuationPoints is true
// (spec §4.8).
type BrowseNextRequest struct {
	Header                    RequestHeader
	ReleaseContinuationPoints bool
	ContinuationPoints        [][]byte
}

func (r BrowseNextRequest) EncodingTypeID() ua.NodeId { return BrowseNextRequestTypeID }

func (r BrowseNextRequest) Encode(e *ua.Encoder) error {
	r.Header.Encode(e)
	e.WriteBoolean(r.ReleaseContinuationPoints)
	ua.WriteArray(e, r.ContinuationPoints, func(e *ua.Encoder, b []byte) { e.WriteByteString(b) })
	return nil
}

func DecodeBrowseNextRequest(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r BrowseNextRequest
	var err error
	if r.Header, err = DecodeRequestHeader(d); err != nil {
		return nil, err
	}
	if r.ReleaseContinuationPoints, err = d.ReadBoolean(); err != nil {
		return nil, err
	}
	if r.ContinuationPoints, err = ua.ReadArray(d, func(d *ua.Decoder) ([]byte, error) { return d.ReadByteString() }); err != nil {
		return nil, err
	}
	return r, nil
}

type BrowseNextResponse struct {
	Header          ResponseHeader
	Results         []BrowseResult
	DiagnosticInfos []ua.DiagnosticInfo
}

func (r BrowseNextResponse) EncodingTypeID() ua.NodeId { return BrowseNextResponseTypeID }

func (r BrowseNextResponse) Encode(e *ua.Encoder) error {
	if err := r.Header.Encode(e); err != nil {
		return err
	}
	ua.WriteArray(e, r.Results, func(e *ua.Encoder, b BrowseResult) { b.Encode(e) })
	return writeDiagnosticInfoArray(e, r.DiagnosticInfos)
}

func DecodeBrowseNextResponse(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r BrowseNextResponse
	var err error
	if r.Header, err = DecodeResponseHeader(d); err != nil {
		return nil, err
	}
	if r.Results, err = ua.ReadArray(d, decodeBrowseResult); err != nil {
		return nil, err
	}
	if r.DiagnosticInfos, err = readDiagnosticInfoArray(d); err != nil {
		return nil, err
	}
	return r, nil
}

// RelativePathElement steps one reference hop by type and target
// BrowseName.
type RelativePathElement struct {
	ReferenceTypeID ua.NodeId
	IsInverse       bool
	IncludeSubtypes bool
	TargetName      ua.QualifiedName
}

func (p RelativePathElement) Encode(e *ua.Encoder) {
	e.WriteNodeId(p.ReferenceTypeID)
	e.WriteBoolean(p.IsInverse)
	e.WriteBoolean(p.IncludeSubtypes)
	e.WriteQualifiedName(p.TargetName)
}

func decodeRelativePathElement(d *ua.Decoder) (RelativePathElement, error) {
	var p RelativePathElement
	var err error
	if p.ReferenceTypeID, err = d.ReadNodeId(); err != nil {
		return p, err
	}
	if p.IsInverse, err = d.ReadBoolean(); err != nil {
		return p, err
	}
	if p.IncludeSubtypes, err = d.ReadBoolean(); err != nil {
		return p, err
	}
	if p.TargetName, err = d.ReadQualifiedName(); err != nil {
		return p, err
	}
	return p, nil
}

// RelativePath is a sequence of reference hops from a starting node.
type RelativePath struct {
	Elements []RelativePathElement
}

func (p RelativePath) Encode(e *ua.Encoder) {
	ua.WriteArray(e, p.Elements, func(e *ua.Encoder, el RelativePathElement) { el.Encode(e) })
}

func decodeRelativePath(d *ua.Decoder) (RelativePath, error) {
	els, err := ua.ReadArray(d, decodeRelativePathElement)
	if err != nil {
		return RelativePath{}, err
	}
	return RelativePath{Elements: els}, nil
}

// BrowsePath names a node reachable from StartingNode by RelativePath.
type BrowsePath struct {
	StartingNode ua.NodeId
	Path         RelativePath
}

func (p BrowsePath) Encode(e *ua.Encoder) {
	e.WriteNodeId(p.StartingNode)
	p.Path.Encode(e)
}

func decodeBrowsePath(d *ua.Decoder) (BrowsePath, error) {
	var p BrowsePath
	var err error
	if p.StartingNode, err = d.ReadNodeId(); err != nil {
		return p, err
	}
	if p.Path, err = decodeRelativePath(d); err != nil {
		return p, err
	}
	return p, nil
}

// BrowsePathTarget is one node matching a BrowsePath.
type BrowsePathTarget struct {
	TargetID           ua.ExpandedNodeId
	RemainingPathIndex uint32
}

func (t BrowsePathTarget) Encode(e *ua.Encoder) {
	e.WriteExpandedNodeId(t.TargetID)
	e.WriteUint32(t.RemainingPathIndex)
}

func decodeBrowsePathTarget(d *ua.Decoder) (BrowsePathTarget, error) {
	var t BrowsePathTarget
	var err error
	if t.TargetID, err = d.ReadExpandedNodeId(); err != nil {
		return t, err
	}
	if t.RemainingPathIndex, err = d.ReadUint32(); err != nil {
		return t, err
	}
	return t, nil
}

type BrowsePathResult struct {
	StatusCode ua.StatusCode
	Targets    []BrowsePathTarget
}

func (r BrowsePathResult) Encode(e *ua.Encoder) {
	e.WriteStatusCode(r.StatusCode)
	ua.WriteArray(e, r.Targets, func(e *ua.Encoder, t BrowsePathTarget) { t.Encode(e) })
}

func decodeBrowsePathResult(d *ua.Decoder) (BrowsePathResult, error) {
	var r BrowsePathResult
	var err error
	if r.StatusCode, err = d.ReadStatusCode(); err != nil {
		return r, err
	}
	if r.Targets, err = ua.ReadArray(d, decodeBrowsePathTarget); err != nil {
		return r, err
	}
	return r, nil
}

type TranslateBrowsePathsToNodeIdsRequest struct {
	Header      RequestHeader
	BrowsePaths []BrowsePath
}

func (r TranslateBrowsePathsToNodeIdsRequest) EncodingTypeID() ua.NodeId {
	return TranslateBrowsePathsToNodeIdsRequestTypeID
}

func (r TranslateBrowsePathsToNodeIdsRequest) Encode(e *ua.Encoder) error {
	r.Header.Encode(e)
	ua.WriteArray(e, r.BrowsePaths, func(e *ua.Encoder, p BrowsePath) { p.Encode(e) })
	return nil
}

func DecodeTranslateBrowsePathsToNodeIdsRequest(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r TranslateBrowsePathsToNodeIdsRequest
	var err error
	if r.Header, err = DecodeRequestHeader(d); err != nil {
		return nil, err
	}
	if r.BrowsePaths, err = ua.ReadArray(d, decodeBrowsePath); err != nil {
		return nil, err
	}
	return r, nil
}

type TranslateBrowsePathsToNodeIdsResponse struct {
	Header          ResponseHeader
	Results         []BrowsePathResult
	DiagnosticInfos []ua.DiagnosticInfo
}

func (r TranslateBrowsePathsToNodeIdsResponse) EncodingTypeID() ua.NodeId {
	return TranslateBrowsePathsToNodeIdsResponseTypeID
}

func (r TranslateBrowsePathsToNodeIdsResponse) Encode(e *ua.Encoder) error {
	if err := r.Header.Encode(e); err != nil {
		return err
	}
	ua.WriteArray(e, r.Results, func(e *ua.Encoder, b BrowsePathResult) { b.Encode(e) })
	return writeDiagnosticInfoArray(e, r.DiagnosticInfos)
}

func DecodeTranslateBrowsePathsToNodeIdsResponse(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r TranslateBrowsePathsToNodeIdsResponse
	var err error
	if r.Header, err = DecodeResponseHeader(d); err != nil {
		return nil, err
	}
	if r.Results, err = ua.ReadArray(d, decodeBrowsePathResult); err != nil {
		return nil, err
	}
	if r.DiagnosticInfos, err = readDiagnosticInfoArray(d); err != nil {
		return nil, err
	}
	return r, nil
}

// RegisterNodesRequest/Response let a server hand out cheaper aliases
// for hot nodes (spec §4.8).
type RegisterNodesRequest struct {
	Header          RequestHeader
	NodesToRegister []ua.NodeId
}

func (r RegisterNodesRequest) EncodingTypeID() ua.NodeId { return RegisterNodesRequestTypeID }

func (r RegisterNodesRequest) Encode(e *ua.Encoder) error {
	r.Header.Encode(e)
	ua.WriteArray(e, r.NodesToRegister, func(e *ua.Encoder, n ua.NodeId) { e.WriteNodeId(n) })
	return nil
}

func DecodeRegisterNodesRequest(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r RegisterNodesRequest
	var err error
	if r.Header, err = DecodeRequestHeader(d); err != nil {
		return nil, err
	}
	if r.NodesToRegister, err = ua.ReadArray(d, func(d *ua.Decoder) (ua.NodeId, error) { return d.ReadNodeId() }); err != nil {
		return nil, err
	}
	return r, nil
}

type RegisterNodesResponse struct {
	Header            ResponseHeader
	RegisteredNodeIds []ua.NodeId
}

func (r RegisterNodesResponse) EncodingTypeID() ua.NodeId { return RegisterNodesResponseTypeID }

func (r RegisterNodesResponse) Encode(e *ua.Encoder) error {
	if err := r.Header.Encode(e); err != nil {
		return err
	}
	ua.WriteArray(e, r.RegisteredNodeIds, func(e *ua.Encoder, n ua.NodeId) { e.WriteNodeId(n) })
	return nil
}

func DecodeRegisterNodesResponse(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r RegisterNodesResponse
	var err error
	if r.Header, err = DecodeResponseHeader(d); err != nil {
		return nil, err
	}
	if r.RegisteredNodeIds, err = ua.ReadArray(d, func(d *ua.Decoder) (ua.NodeId, error) { return d.ReadNodeId() }); err != nil {
		return nil, err
	}
	return r, nil
}

type UnregisterNodesRequest struct {
	Header            RequestHeader
	NodesToUnregister []ua.NodeId
}

func (r UnregisterNodesRequest) EncodingTypeID() ua.NodeId { return UnregisterNodesRequestTypeID }

func (r UnregisterNodesRequest) Encode(e *ua.Encoder) error {
	r.Header.Encode(e)
	ua.WriteArray(e, r.NodesToUnregister, func(e *ua.Encoder, n ua.NodeId) { e.WriteNodeId(n) })
	return nil
}

func DecodeUnregisterNodesRequest(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r UnregisterNodesRequest
	var err error
	if r.Header, err = DecodeRequestHeader(d); err != nil {
		return nil, err
	}
	if r.NodesToUnregister, err = ua.ReadArray(d, func(d *ua.Decoder) (ua.NodeId, error) { return d.ReadNodeId() }); err != nil {
		return nil, err
	}
	return r, nil
}

type UnregisterNodesResponse struct {
	Header ResponseHeader
}

func (r UnregisterNodesResponse) EncodingTypeID() ua.NodeId { return UnregisterNodesResponseTypeID }
func (r UnregisterNodesResponse) Encode(e *ua.Encoder) error { return r.Header.Encode(e) }

func DecodeUnregisterNodesResponse(d *ua.Decoder) (ua.BinaryCodec, error) {
	h, err := DecodeResponseHeader(d)
	if err != nil {
		return nil, err
	}
	return UnregisterNodesResponse{Header: h}, nil
}

func init() {
	ua.DefaultRegistry.Register(BrowseRequestTypeID, DecodeBrowseRequest)
	ua.DefaultRegistry.Register(BrowseResponseTypeID, DecodeBrowseResponse)
	ua.DefaultRegistry.Register(BrowseNextRequestTypeID, DecodeBrowseNextRequest)
	ua.DefaultRegistry.Register(BrowseNextResponseTypeID, DecodeBrowseNextResponse)
	ua.DefaultRegistry.Register(TranslateBrowsePathsToNodeIdsRequestTypeID, DecodeTranslateBrowsePathsToNodeIdsRequest)
	ua.DefaultRegistry.Register(TranslateBrowsePathsToNodeIdsResponseTypeID, DecodeTranslateBrowsePathsToNodeIdsResponse)
	ua.DefaultRegistry.Register(RegisterNodesRequestTypeID, DecodeRegisterNodesRequest)
	ua.DefaultRegistry.Register(RegisterNodesResponseTypeID, DecodeRegisterNodesResponse)
	ua.DefaultRegistry.Register(UnregisterNodesRequestTypeID, DecodeUnregisterNodesRequest)
	ua.DefaultRegistry.Register(UnregisterNodesResponseTypeID, DecodeUnregisterNodesResponse)
}
