package uaservices

import "github.com/foundry-iiot/opcua/pkg/ua"

var (
	CallRequestTypeID  = ua.NewNumericNodeId(0, 712)
	CallResponseTypeID = ua.NewNumericNodeId(0, 715)
)

// CallMethodRequest invokes one method node with positional input
// arguments (spec §4.8).
type CallMethodRequest struct {
	ObjectID       ua.NodeId
	MethodID       ua.NodeId
	InputArguments []ua.Variant
}

func (c CallMethodRequest) Encode(e *ua.Encoder) error {
	e.WriteNodeId(c.ObjectID)
	e.WriteNodeId(c.MethodID)
	return writeVariantArray(e, c.InputArguments)
}

func decodeCallMethodRequest(d *ua.Decoder) (CallMethodRequest, error) {
	var c CallMethodRequest
	var err error
	if c.ObjectID, err = d.ReadNodeId(); err != nil {
		return c, err
	}
	if c.MethodID, err = d.ReadNodeId(); err != nil {
		return c, err
	}
	if c.InputArguments, err = readVariantArray(d); err != nil {
		return c, err
	}
	return c, nil
}

// CallMethodResult carries the method's StatusCode, per-argument
// StatusCodes, and output arguments.
type CallMethodResult struct {
	StatusCode          ua.StatusCode
	InputArgumentResults []ua.StatusCode
	InputArgumentDiagnosticInfos []ua.DiagnosticInfo
	OutputArguments     []ua.Variant
}

func (c CallMethodResult) Encode(e *ua.Encoder) error {
	e.WriteStatusCode(c.StatusCode)
	ua.WriteArray(e, c.InputArgumentResults, func(e *ua.Encoder, s ua.StatusCode) { e.WriteStatusCode(s) })
	if err := writeDiagnosticInfoArray(e, c.InputArgumentDiagnosticInfos); err != nil {
		return err
	}
	return writeVariantArray(e, c.OutputArguments)
}

func decodeCallMethodResult(d *ua.Decoder) (CallMethodResult, error) {
	var c CallMethodResult
	var err error
	if c.StatusCode, err = d.ReadStatusCode(); err != nil {
		return c, err
	}
	if c.InputArgumentResults, err = ua.ReadArray(d, func(d *ua.Decoder) (ua.StatusCode, error) { return d.ReadStatusCode() }); err != nil {
		return c, err
	}
	if c.InputArgumentDiagnosticInfos, err = readDiagnosticInfoArray(d); err != nil {
		return c, err
	}
	if c.OutputArguments, err = readVariantArray(d); err != nil {
		return c, err
	}
	return c, nil
}

type CallRequest struct {
	Header        RequestHeader
	MethodsToCall []CallMethodRequest
}

func (r CallRequest) EncodingTypeID() ua.NodeId { return CallRequestTypeID }

func (r CallRequest) Encode(e *ua.Encoder) error {
	r.Header.Encode(e)
	if r.MethodsToCall == nil {
		e.WriteArrayLength(-1)
		return nil
	}
	e.WriteArrayLength(len(r.MethodsToCall))
	for _, m := range r.MethodsToCall {
		if err := m.Encode(e); err != nil {
			return err
		}
	}
	return nil
}

func DecodeCallRequest(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r CallRequest
	var err error
	if r.Header, err = DecodeRequestHeader(d); err != nil {
		return nil, err
	}
	if r.MethodsToCall, err = ua.ReadArray(d, decodeCallMethodRequest); err != nil {
		return nil, err
	}
	return r, nil
}

type CallResponse struct {
	Header          ResponseHeader
	Results         []CallMethodResult
	DiagnosticInfos []ua.DiagnosticInfo
}

func (r CallResponse) EncodingTypeID() ua.NodeId { return CallResponseTypeID }

func (r CallResponse) Encode(e *ua.Encoder) error {
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

func DecodeCallResponse(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r CallResponse
	var err error
	if r.Header, err = DecodeResponseHeader(d); err != nil {
		return nil, err
	}
	if r.Results, err = ua.ReadArray(d, decodeCallMethodResult); err != nil {
		return nil, err
	}
	if r.DiagnosticInfos, err = readDiagnosticInfoArray(d); err != nil {
		return nil, err
	}
	return r, nil
}

func writeVariantArray(e *ua.Encoder, items []ua.Variant) error {
	if items == nil {
		e.WriteArrayLength(-1)
		return nil
	}
	e.WriteArrayLength(len(items))
	for _, v := range items {
		if err := e.WriteVariant(v); err != nil {
			return err
		}
	}
	return nil
}

func readVariantArray(d *ua.Decoder) ([]ua.Variant, error) {
	return ua.ReadArray(d, func(d *ua.Decoder) (ua.Variant, error) { return d.ReadVariant() })
}

func init() {
	ua.DefaultRegistry.Register(CallRequestTypeID, DecodeCallRequest)
	ua.DefaultRegistry.Register(CallResponseTypeID, DecodeCallResponse)
}
