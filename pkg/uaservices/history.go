package uaservices

import "github.com/foundry-iiot/opcua/pkg/ua"

var (
	HistoryReadRequestTypeID  = ua.NewNumericNodeId(0, 664)
	HistoryReadResponseTypeID = ua.NewNumericNodeId(0, 667)
)

// HistoryReadValueId names one node to read history for; IndexRange
// and DataEncoding mirror ReadValueId, plus a continuation point for
// paging through a prior HistoryRead.
type HistoryReadValueId struct {
	NodeID            ua.NodeId
	IndexRange        string
	HasIndexRange     bool
	DataEncoding      ua.QualifiedName
	ContinuationPoint []byte
}

func (v HistoryReadValueId) Encode(e *ua.Encoder) {
	e.WriteNodeId(v.NodeID)
	writeOptionalString(e, v.IndexRange, v.HasIndexRange)
	e.WriteQualifiedName(v.DataEncoding)
	e.WriteByteString(v.ContinuationPoint)
}

func decodeHistoryReadValueId(d *ua.Decoder) (HistoryReadValueId, error) {
	var v HistoryReadValueId
	var err error
	if v.NodeID, err = d.ReadNodeId(); err != nil {
		return v, err
	}
	if v.IndexRange, v.HasIndexRange, err = d.ReadString(); err != nil {
		return v, err
	}
	if v.DataEncoding, err = d.ReadQualifiedName(); err != nil {
		return v, err
	}
	if v.ContinuationPoint, err = d.ReadByteString(); err != nil {
		return v, err
	}
	return v, nil
}

// HistoryReadResult carries one node's history values plus a
// continuation point when more remain (spec §4.8). HistoryData /
// HistoryEvent details arrive inside the ExtensionObject per Part 11;
// this client exposes them undecoded as raw history details rather
// than modeling every history data kind.
type HistoryReadResult struct {
	StatusCode        ua.StatusCode
	ContinuationPoint []byte
	HistoryData       ua.ExtensionObject
}

func (r HistoryReadResult) Encode(e *ua.Encoder) error {
	e.WriteStatusCode(r.StatusCode)
	e.WriteByteString(r.ContinuationPoint)
	return e.WriteExtensionObject(r.HistoryData)
}

func decodeHistoryReadResult(d *ua.Decoder) (HistoryReadResult, error) {
	var r HistoryReadResult
	var err error
	if r.StatusCode, err = d.ReadStatusCode(); err != nil {
		return r, err
	}
	if r.ContinuationPoint, err = d.ReadByteString(); err != nil {
		return r, err
	}
	if r.HistoryData, err = d.ReadExtensionObject(); err != nil {
		return r, err
	}
	return r, nil
}

// HistoryReadRequest reads raw or processed history for one or more
// nodes. HistoryReadDetails is left as a raw ExtensionObject (one of
// ReadRawModifiedDetails / ReadProcessedDetails / ReadAtTimeDetails /
// ReadEventDetails per Part 11 §6.4); callers build it with
// ua.DefaultRegistry-registered types of their own when they need a
// kind this package does not model.
type HistoryReadRequest struct {
	Header                   RequestHeader
	HistoryReadDetails       ua.ExtensionObject
	TimestampsToReturn       TimestampsToReturn
	ReleaseContinuationPoints bool
	NodesToRead              []HistoryReadValueId
}

func (r HistoryReadRequest) EncodingTypeID() ua.NodeId { return HistoryReadRequestTypeID }

func (r HistoryReadRequest) Encode(e *ua.Encoder) error {
	r.Header.Encode(e)
	if err := e.WriteExtensionObject(r.HistoryReadDetails); err != nil {
		return err
	}
	e.WriteInt32(int32(r.TimestampsToReturn))
	e.WriteBoolean(r.ReleaseContinuationPoints)
	ua.WriteArray(e, r.NodesToRead, func(e *ua.Encoder, v HistoryReadValueId) { v.Encode(e) })
	return nil
}

func DecodeHistoryReadRequest(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r HistoryReadRequest
	var err error
	if r.Header, err = DecodeRequestHeader(d); err != nil {
		return nil, err
	}
	if r.HistoryReadDetails, err = d.ReadExtensionObject(); err != nil {
		return nil, err
	}
	ttr, err := d.ReadInt32()
	if err != nil {
		return nil, err
	}
	r.TimestampsToReturn = TimestampsToReturn(ttr)
	if r.ReleaseContinuationPoints, err = d.ReadBoolean(); err != nil {
		return nil, err
	}
	if r.NodesToRead, err = ua.ReadArray(d, decodeHistoryReadValueId); err != nil {
		return nil, err
	}
	return r, nil
}

type HistoryReadResponse struct {
	Header          ResponseHeader
	Results         []HistoryReadResult
	DiagnosticInfos []ua.DiagnosticInfo
}

func (r HistoryReadResponse) EncodingTypeID() ua.NodeId { return HistoryReadResponseTypeID }

func (r HistoryReadResponse) Encode(e *ua.Encoder) error {
	if err := r.Header.Encode(e); err != nil {
		return err
	}
	if r.Results == nil {
		e.WriteArrayLength(-1)
	} else {
		e.WriteArrayLength(len(r.Results))
		for _, res := range r.Results {
			if err := res.Encode(e); err != nil {
				return err
			}
		}
	}
	return writeDiagnosticInfoArray(e, r.DiagnosticInfos)
}

func DecodeHistoryReadResponse(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r HistoryReadResponse
	var err error
	if r.Header, err = DecodeResponseHeader(d); err != nil {
		return nil, err
	}
	if r.Results, err = ua.ReadArray(d, decodeHistoryReadResult); err != nil {
		return nil, err
	}
	if r.DiagnosticInfos, err = readDiagnosticInfoArray(d); err != nil {
		return nil, err
	}
	return r, nil
}

func init() {
	ua.DefaultRegistry.Register(HistoryReadRequestTypeID, DecodeHistoryReadRequest)
	ua.DefaultRegistry.Register(HistoryReadResponseTypeID, DecodeHistoryReadResponse)
}
