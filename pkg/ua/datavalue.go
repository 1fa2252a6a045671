package ua

// DataValue presence-mask bits (spec §3).
const (
	dvValueBit             = 0x01
	dvStatusBit            = 0x02
	dvSourceTimestampBit   = 0x04
	dvServerTimestampBit   = 0x08
	dvSourcePicosecondsBit = 0x10
	dvServerPicosecondsBit = 0x20
)

// DataValue wraps a Variant with optional quality and timing metadata.
// Every field is independently optional, gated by a presence-mask byte
// on the wire.
type DataValue struct {
	Value  Variant
	HasValue bool

	Status    StatusCode
	HasStatus bool

	SourceTimestamp    DateTime
	HasSourceTimestamp bool

	ServerTimestamp    DateTime
	HasServerTimestamp bool

	// SourcePicoseconds and ServerPicoseconds are in [0, 9999] and
	// refine the corresponding timestamp's sub-100ns precision.
	SourcePicoseconds    uint16
	HasSourcePicoseconds bool

	ServerPicoseconds    uint16
	HasServerPicoseconds bool
}

func (e *Encoder) WriteDataValue(dv DataValue) error {
	var mask byte
	if dv.HasValue {
		mask |= dvValueBit
	}
	if dv.HasStatus {
		mask |= dvStatusBit
	}
	if dv.HasSourceTimestamp {
		mask |= dvSourceTimestampBit
	}
	if dv.HasServerTimestamp {
		mask |= dvServerTimestampBit
	}
	if dv.HasSourcePicoseconds {
		mask |= dvSourcePicosecondsBit
	}
	if dv.HasServerPicoseconds {
		mask |= dvServerPicosecondsBit
	}
	e.WriteByte(mask)

	if dv.HasValue {
		if err := e.WriteVariant(dv.Value); err != nil {
			return err
		}
	}
	if dv.HasStatus {
		e.WriteStatusCode(dv.Status)
	}
	if dv.HasSourceTimestamp {
		e.WriteDateTime(dv.SourceTimestamp)
	}
	if dv.HasServerTimestamp {
		e.WriteDateTime(dv.ServerTimestamp)
	}
	if dv.HasSourcePicoseconds {
		e.WriteUint16(dv.SourcePicoseconds)
	}
	if dv.HasServerPicoseconds {
		e.WriteUint16(dv.ServerPicoseconds)
	}
	return nil
}

func (d *Decoder) ReadDataValue() (DataValue, error) {
	mask, err := d.ReadByte()
	if err != nil {
		return DataValue{}, err
	}
	var dv DataValue
	if mask&dvValueBit != 0 {
		v, err := d.ReadVariant()
		if err != nil {
			return DataValue{}, err
		}
		dv.Value, dv.HasValue = v, true
	}
	if mask&dvStatusBit != 0 {
		s, err := d.ReadStatusCode()
		if err != nil {
			return DataValue{}, err
		}
		dv.Status, dv.HasStatus = s, true
	}
	if mask&dvSourceTimestampBit != 0 {
		t, err := d.ReadDateTime()
		if err != nil {
			return DataValue{}, err
		}
		dv.SourceTimestamp, dv.HasSourceTimestamp = t, true
	}
	if mask&dvServerTimestampBit != 0 {
		t, err := d.ReadDateTime()
		if err != nil {
			return DataValue{}, err
		}
		dv.ServerTimestamp, dv.HasServerTimestamp = t, true
	}
	if mask&dvSourcePicosecondsBit != 0 {
		p, err := d.ReadUint16()
		if err != nil {
			return DataValue{}, err
		}
		dv.SourcePicoseconds, dv.HasSourcePicoseconds = p, true
	}
	if mask&dvServerPicosecondsBit != 0 {
		p, err := d.ReadUint16()
		if err != nil {
			return DataValue{}, err
		}
		dv.ServerPicoseconds, dv.HasServerPicoseconds = p, true
	}
	return dv, nil
}
