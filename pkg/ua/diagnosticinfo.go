package ua

// DiagnosticInfo presence-mask bits (Part 6 §5.2.2.12).
const (
	diSymbolicIDBit         = 0x01
	diNamespaceURIBit       = 0x02
	diLocalizedTextBit      = 0x04
	diLocaleBit             = 0x08
	diAdditionalInfoBit     = 0x10
	diInnerStatusCodeBit    = 0x20
	diInnerDiagnosticInfoBit = 0x40
)

// DiagnosticInfo carries extended diagnostic detail for a StatusCode.
// All fields are optional; most client code only inspects StatusCode
// directly and leaves this as the zero value.
type DiagnosticInfo struct {
	SymbolicID    int32
	HasSymbolicID bool

	NamespaceURI    int32
	HasNamespaceURI bool

	LocalizedText    int32
	HasLocalizedText bool

	Locale    int32
	HasLocale bool

	AdditionalInfo    string
	HasAdditionalInfo bool

	InnerStatusCode    StatusCode
	HasInnerStatusCode bool

	InnerDiagnosticInfo *DiagnosticInfo
}

func (e *Encoder) WriteDiagnosticInfo(di DiagnosticInfo) error {
	var mask byte
	if di.HasSymbolicID {
		mask |= diSymbolicIDBit
	}
	if di.HasNamespaceURI {
		mask |= diNamespaceURIBit
	}
	if di.HasLocalizedText {
		mask |= diLocalizedTextBit
	}
	if di.HasLocale {
		mask |= diLocaleBit
	}
	if di.HasAdditionalInfo {
		mask |= diAdditionalInfoBit
	}
	if di.HasInnerStatusCode {
		mask |= diInnerStatusCodeBit
	}
	if di.InnerDiagnosticInfo != nil {
		mask |= diInnerDiagnosticInfoBit
	}
	e.WriteByte(mask)

	if di.HasSymbolicID {
		e.WriteInt32(di.SymbolicID)
	}
	if di.HasNamespaceURI {
		e.WriteInt32(di.NamespaceURI)
	}
	if di.HasLocalizedText {
		e.WriteInt32(di.LocalizedText)
	}
	if di.HasLocale {
		e.WriteInt32(di.Locale)
	}
	if di.HasAdditionalInfo {
		e.WriteString(di.AdditionalInfo)
	}
	if di.HasInnerStatusCode {
		e.WriteStatusCode(di.InnerStatusCode)
	}
	if di.InnerDiagnosticInfo != nil {
		return e.WriteDiagnosticInfo(*di.InnerDiagnosticInfo)
	}
	return nil
}

func (d *Decoder) ReadDiagnosticInfo() (DiagnosticInfo, error) {
	mask, err := d.ReadByte()
	if err != nil {
		return DiagnosticInfo{}, err
	}
	var di DiagnosticInfo
	if mask&diSymbolicIDBit != 0 {
		if di.SymbolicID, err = d.ReadInt32(); err != nil {
			return DiagnosticInfo{}, err
		}
		di.HasSymbolicID = true
	}
	if mask&diNamespaceURIBit != 0 {
		if di.NamespaceURI, err = d.ReadInt32(); err != nil {
			return DiagnosticInfo{}, err
		}
		di.HasNamespaceURI = true
	}
	if mask&diLocalizedTextBit != 0 {
		if di.LocalizedText, err = d.ReadInt32(); err != nil {
			return DiagnosticInfo{}, err
		}
		di.HasLocalizedText = true
	}
	if mask&diLocaleBit != 0 {
		if di.Locale, err = d.ReadInt32(); err != nil {
			return DiagnosticInfo{}, err
		}
		di.HasLocale = true
	}
	if mask&diAdditionalInfoBit != 0 {
		s, _, err := d.ReadString()
		if err != nil {
			return DiagnosticInfo{}, err
		}
		di.AdditionalInfo, di.HasAdditionalInfo = s, true
	}
	if mask&diInnerStatusCodeBit != 0 {
		if di.InnerStatusCode, err = d.ReadStatusCode(); err != nil {
			return DiagnosticInfo{}, err
		}
		di.HasInnerStatusCode = true
	}
	if mask&diInnerDiagnosticInfoBit != 0 {
		inner, err := d.ReadDiagnosticInfo()
		if err != nil {
			return DiagnosticInfo{}, err
		}
		di.InnerDiagnosticInfo = &inner
	}
	return di, nil
}
