package ua

import "time"

// uaEpoch is the OPC UA DateTime epoch: 1601-01-01 00:00:00 UTC.
var uaEpoch = time.Date(1601, 1, 1, 0, 0, 0, 0, time.UTC)

// DateTime is a signed Int64 count of 100-nanosecond intervals since
// the OPC UA epoch. Zero is the null DateTime (spec §6/§8); leap
// seconds are not modeled (DESIGN.md Open Questions).
type DateTime int64

// NewDateTime converts a wall-clock time.Time to a DateTime.
func NewDateTime(t time.Time) DateTime {
	if t.IsZero() {
		return 0
	}
	return DateTime(t.Sub(uaEpoch) / 100)
}

// Time converts a DateTime back to a time.Time. The null DateTime (0)
// maps to the zero time.Time.
func (dt DateTime) Time() time.Time {
	if dt == 0 {
		return time.Time{}
	}
	return uaEpoch.Add(time.Duration(dt) * 100)
}

// IsNull reports whether dt is the null DateTime.
func (dt DateTime) IsNull() bool { return dt == 0 }

// ToUnixTimestamp returns the Unix seconds for dt, mirroring the
// scenario S1 assertion in spec §8.
func (dt DateTime) ToUnixTimestamp() int64 { return dt.Time().Unix() }

func (e *Encoder) WriteDateTime(dt DateTime) { e.WriteInt64(int64(dt)) }

func (d *Decoder) ReadDateTime() (DateTime, error) {
	v, err := d.ReadInt64()
	return DateTime(v), err
}
