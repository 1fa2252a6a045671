package ua

// StatusCode is a 32-bit result code whose top two bits carry the
// severity class (Good/Uncertain/Bad). Well-known codes used by this
// package are named below; the full registry (hundreds of specific
// Bad_* / Uncertain_* codes) is out of scope for the core and is
// treated as opaque numeric data by callers.
type StatusCode uint32

const (
	severityMask     = 0xC0000000
	severityGood     = 0x00000000
	severityUncertain = 0x40000000
)

// Well-known status codes referenced directly by the protocol engine.
const (
	StatusGood                  StatusCode = 0x00000000
	StatusBadNodeIdUnknown      StatusCode = 0x80340000
	StatusBadSessionClosed      StatusCode = 0x80550000
	StatusBadSessionIdInvalid   StatusCode = 0x80250000
	StatusBadTooManyPublishRequests StatusCode = 0x80060000
	StatusBadTimeout            StatusCode = 0x800A0000
	StatusBadSecurityChecksFailed StatusCode = 0x80130000
	StatusBadCertificateInvalid StatusCode = 0x80120000
)

// IsGood reports whether the severity bits are Good (00).
func (s StatusCode) IsGood() bool { return uint32(s)&severityMask == severityGood }

// IsUncertain reports whether the severity bits are Uncertain (01).
func (s StatusCode) IsUncertain() bool { return uint32(s)&severityMask == severityUncertain }

// IsBad reports whether the severity bits are Bad (10 or 11).
func (s StatusCode) IsBad() bool { return uint32(s)&severityMask == 0x80000000 || uint32(s)&severityMask == 0xC0000000 }

func (e *Encoder) WriteStatusCode(s StatusCode) { e.WriteUint32(uint32(s)) }

func (d *Decoder) ReadStatusCode() (StatusCode, error) {
	v, err := d.ReadUint32()
	return StatusCode(v), err
}
