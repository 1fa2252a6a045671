package uasc

import "github.com/foundry-iiot/opcua/pkg/ua"

// SequenceHeader carries the per-chunk sequence number and the
// request id it correlates to (spec §4.4/§6).
type SequenceHeader struct {
	SequenceNumber uint32
	RequestID      uint32
}

func (h SequenceHeader) Encode(e *ua.Encoder) {
	e.WriteUint32(h.SequenceNumber)
	e.WriteUint32(h.RequestID)
}

func DecodeSequenceHeader(d *ua.Decoder) (SequenceHeader, error) {
	var h SequenceHeader
	var err error
	if h.SequenceNumber, err = d.ReadUint32(); err != nil {
		return h, err
	}
	if h.RequestID, err = d.ReadUint32(); err != nil {
		return h, err
	}
	return h, nil
}
