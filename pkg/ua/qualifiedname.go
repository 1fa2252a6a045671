package ua

// QualifiedName pairs a namespace index with a name, used for
// BrowseNames and similar identifiers that are namespace-scoped but
// not full NodeIds.
type QualifiedName struct {
	NamespaceIndex uint16
	Name           string
}

func (e *Encoder) WriteQualifiedName(q QualifiedName) {
	e.WriteUint16(q.NamespaceIndex)
	e.WriteString(q.Name)
}

func (d *Decoder) ReadQualifiedName() (QualifiedName, error) {
	ns, err := d.ReadUint16()
	if err != nil {
		return QualifiedName{}, err
	}
	name, _, err := d.ReadString()
	if err != nil {
		return QualifiedName{}, err
	}
	return QualifiedName{NamespaceIndex: ns, Name: name}, nil
}

// localizedTextLocaleBit and localizedTextTextBit are the two
// presence-mask bits that precede a LocalizedText's optional fields.
const (
	localizedTextLocaleBit = 0x01
	localizedTextTextBit   = 0x02
)

// LocalizedText is a human-readable string with an optional locale
// tag (e.g. "en-US"); either field may be absent independently,
// signalled by a two-bit mask byte.
type LocalizedText struct {
	Locale    string
	HasLocale bool
	Text      string
	HasText   bool
}

func (e *Encoder) WriteLocalizedText(lt LocalizedText) {
	var mask byte
	if lt.HasLocale {
		mask |= localizedTextLocaleBit
	}
	if lt.HasText {
		mask |= localizedTextTextBit
	}
	e.WriteByte(mask)
	if lt.HasLocale {
		e.WriteString(lt.Locale)
	}
	if lt.HasText {
		e.WriteString(lt.Text)
	}
}

func (d *Decoder) ReadLocalizedText() (LocalizedText, error) {
	mask, err := d.ReadByte()
	if err != nil {
		return LocalizedText{}, err
	}
	var lt LocalizedText
	if mask&localizedTextLocaleBit != 0 {
		s, _, err := d.ReadString()
		if err != nil {
			return LocalizedText{}, err
		}
		lt.Locale, lt.HasLocale = s, true
	}
	if mask&localizedTextTextBit != 0 {
		s, _, err := d.ReadString()
		if err != nil {
			return LocalizedText{}, err
		}
		lt.Text, lt.HasText = s, true
	}
	return lt, nil
}
