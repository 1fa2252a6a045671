package uaservices

import "github.com/foundry-iiot/opcua/pkg/ua"

var (
	ReadRequestTypeID   = ua.NewNumericNodeId(0, 631)
	ReadResponseTypeID  = ua.NewNumericNodeId(0, 634)
	WriteRequestTypeID  = ua.NewNumericNodeId(0, 673)
	WriteResponseTypeID = ua.NewNumericNodeId(0, 676)
)

// TimestampsToReturn selects which timestamps a Read/HistoryRead
// response includes (spec §4.8).
type TimestampsToReturn int32

const (
	TimestampsSource TimestampsToReturn = iota
	TimestampsServer
	TimestampsBoth
	TimestampsNeither
	TimestampsInvalid
)

// ReadValueId names one attribute to read.
type ReadValueId struct {
	NodeID         ua.NodeId
	AttributeID    uint32
	IndexRange     string
	HasIndexRange  bool
	DataEncoding   ua.QualifiedName
}

func (v ReadValueId) Encode(e *ua.Encoder) {
	e.WriteNodeId(v.NodeID)
	e.WriteUint32(v.AttributeID)
	writeOptionalString(e, v.IndexRange, v.HasIndexRange)
	e.WriteQualifiedName(v.DataEncoding)
}

func decodeReadValueId(d *ua.Decoder) (ReadValueId, error) {
	var v ReadValueId
	var err error
	if v.NodeID, err = d.ReadNodeId(); err != nil {
		return v, err
	}
	if v.AttributeID, err = d.ReadUint32(); err != nil {
		return v, err
	}
	if v.IndexRange, v.HasIndexRange, err = d.ReadString(); err != nil {
		return v, err
	}
	if v.DataEncoding, err = d.ReadQualifiedName(); err != nil {
		return v, err
	}
	return v, nil
}

// ReadRequest reads one or more attributes in a single round trip
// (spec §4.8).
type ReadRequest struct {
	Header             RequestHeader
	MaxAge             float64
	TimestampsToReturn TimestampsToReturn
	NodesToRead        []ReadValueId
}

func (r ReadRequest) EncodingTypeID() ua.NodeId { return ReadRequestTypeID }

func (r ReadRequest) Encode(e *ua.Encoder) error {
	r.Header.Encode(e)
	e.WriteFloat64(r.MaxAge)
	e.WriteInt32(int32(r.TimestampsToReturn))
	ua.WriteArray(e, r.NodesToRead, func(e *ua.Encoder, v ReadValueId) { v.Encode(e) })
	return nil
}

func DecodeReadRequest(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r ReadRequest
	var err error
	if r.Header, err = DecodeRequestHeader(d); err != nil {
		return nil, err
	}
	if r.MaxAge, err = d.ReadFloat64(); err != nil {
		return nil, err
	}
	ttr, err := d.ReadInt32()
	if err != nil {
		return nil, err
	}
	r.TimestampsToReturn = TimestampsToReturn(ttr)
	if r.NodesToRead, err = ua.ReadArray(d, decodeReadValueId); err != nil {
		return nil, err
	}
	return r, nil
}

type ReadResponse struct {
	Header          ResponseHeader
	Results         []ua.DataValue
	DiagnosticInfos []ua.DiagnosticInfo
}

func (r ReadResponse) EncodingTypeID() ua.NodeId { return ReadResponseTypeID }

func (r ReadResponse) Encode(e *ua.Encoder) error {
	if err := r.Header.Encode(e); err != nil {
		return err
	}
	if err := writeDataValueArray(e, r.Results); err != nil {
		return err
	}
	return writeDiagnosticInfoArray(e, r.DiagnosticInfos)
}

func DecodeReadResponse(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r ReadResponse
	var err error
	if r.Header, err = DecodeResponseHeader(d); err != nil {
		return nil, err
	}
	if r.Results, err = readDataValueArray(d); err != nil {
		return nil, err
	}
	if r.DiagnosticInfos, err = readDiagnosticInfoArray(d); err != nil {
		return nil, err
	}
	return r, nil
}

// WriteValue pairs an attribute target with the value to write.
type WriteValue struct {
	NodeID        ua.NodeId
	AttributeID   uint32
	IndexRange    string
	HasIndexRange bool
	Value         ua.DataValue
}

func (v WriteValue) Encode(e *ua.Encoder) error {
	e.WriteNodeId(v.NodeID)
	e.WriteUint32(v.AttributeID)
	writeOptionalString(e, v.IndexRange, v.HasIndexRange)
	return e.WriteDataValue(v.Value)
}

func decodeWriteValue(d *ua.Decoder) (WriteValue, error) {
	var v WriteValue
	var err error
	if v.NodeID, err = d.ReadNodeId(); err != nil {
		return v, err
	}
	if v.AttributeID, err = d.ReadUint32(); err != nil {
		return v, err
	}
	if v.IndexRange, v.HasIndexRange, err = d.ReadString(); err != nil {
		return v, err
	}
	if v.Value, err = d.ReadDataValue(); err != nil {
		return v, err
	}
	return v, nil
}

// WriteRequest writes one or more attributes in a single round trip
// (spec §4.8). Per-item StatusCodes live in the response; only the
// envelope serviceResult raises.
type WriteRequest struct {
	Header       RequestHeader
	NodesToWrite []WriteValue
}

func (r WriteRequest) EncodingTypeID() ua.NodeId { return WriteRequestTypeID }

func (r WriteRequest) Encode(e *ua.Encoder) error {
	r.Header.Encode(e)
	if r.NodesToWrite == nil {
		e.WriteArrayLength(-1)
		return nil
	}
	e.WriteArrayLength(len(r.NodesToWrite))
	for _, v := range r.NodesToWrite {
		if err := v.Encode(e); err != nil {
			return err
		}
	}
	return nil
}

func DecodeWriteRequest(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r WriteRequest
	var err error
	if r.Header, err = DecodeRequestHeader(d); err != nil {
		return nil, err
	}
	if r.NodesToWrite, err = ua.ReadArray(d, decodeWriteValue); err != nil {
		return nil, err
	}
	return r, nil
}

type WriteResponse struct {
	Header          ResponseHeader
	Results         []ua.StatusCode
	DiagnosticInfos []ua.DiagnosticInfo
}

func (r WriteResponse) EncodingTypeID() ua.NodeId { return WriteResponseTypeID }

func (r WriteResponse) Encode(e *ua.Encoder) error {
	if err := r.Header.Encode(e); err != nil {
		return err
	}
	ua.WriteArray(e, r.Results, func(e *ua.Encoder, s ua.StatusCode) { e.WriteStatusCode(s) })
	return writeDiagnosticInfoArray(e, r.DiagnosticInfos)
}

func DecodeWriteResponse(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r WriteResponse
	var err error
	if r.Header, err = DecodeResponseHeader(d); err != nil {
		return nil, err
	}
	if r.Results, err = ua.ReadArray(d, func(d *ua.Decoder) (ua.StatusCode, error) { return d.ReadStatusCode() }); err != nil {
		return nil, err
	}
	if r.DiagnosticInfos, err = readDiagnosticInfoArray(d); err != nil {
		return nil, err
	}
	return r, nil
}

func writeDataValueArray(e *ua.Encoder, items []ua.DataValue) error {
	if items == nil {
		e.WriteArrayLength(-1)
		return nil
	}
	e.WriteArrayLength(len(items))
	for _, it := range items {
		if err := e.WriteDataValue(it); err != nil {
			return err
		}
	}
	return nil
}

func readDataValueArray(d *ua.Decoder) ([]ua.DataValue, error) {
	return ua.ReadArray(d, func(d *ua.Decoder) (ua.DataValue, error) { return d.ReadDataValue() })
}

func init() {
	ua.DefaultRegistry.Register(ReadRequestTypeID, DecodeReadRequest)
	ua.DefaultRegistry.Register(ReadResponseTypeID, DecodeReadResponse)
	ua.DefaultRegistry.Register(WriteRequestTypeID, DecodeWriteRequest)
	ua.DefaultRegistry.Register(WriteResponseTypeID, DecodeWriteResponse)
}
