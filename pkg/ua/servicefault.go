package ua

import "github.com/foundry-iiot/opcua/pkg/uaerr"

// ServiceFaultTypeID is the well-known TypeId a server uses in place
// of the expected response type when a service call fails at the
// envelope level (spec §4.5/§7).
var ServiceFaultTypeID = NewNumericNodeId(0, 397)

// ServiceFault is the minimal envelope-level fault body: just the
// StatusCode the caller should raise. Real servers send a full
// ResponseHeader ahead of this field; only ServiceResult is modeled
// since it is the only field this client's error handling consumes.
type ServiceFault struct {
	ServiceResult StatusCode
}

func (f ServiceFault) EncodingTypeID() NodeId { return ServiceFaultTypeID }

func (f ServiceFault) Encode(e *Encoder) error {
	e.WriteStatusCode(f.ServiceResult)
	return nil
}

func DecodeServiceFault(d *Decoder) (BinaryCodec, error) {
	status, err := d.ReadStatusCode()
	if err != nil {
		return nil, err
	}
	return ServiceFault{ServiceResult: status}, nil
}

// AsServiceError converts a ServiceFault to the uaerr.Error the
// caller sees, carrying the wire StatusCode (spec §7).
func (f ServiceFault) AsServiceError() error {
	return uaerr.WithStatus(uaerr.StatusCode(f.ServiceResult), "service fault")
}

func init() {
	DefaultRegistry.Register(ServiceFaultTypeID, DecodeServiceFault)
}
