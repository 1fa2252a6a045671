package ua

import (
	"encoding/binary"

	"github.com/foundry-iiot/opcua/pkg/uaerr"
	"github.com/google/uuid"
)

// Guid is a 128-bit identifier encoded on the wire per RFC 4122 with
// mixed endianness: the first three fields (time-low UInt32,
// time-mid UInt16, time-high-and-version UInt16) are little-endian,
// the remaining 8 bytes (clock-seq + node) are encoded in wire order.
type Guid [16]byte

// NewGuid generates a random Guid via the google/uuid generator, the
// same dependency backkem/matter pulls in (indirectly, through
// zeroconf) for identifier generation; here it is promoted to a direct
// dependency because NodeId's Guid variant and client-nonce-adjacent
// test fixtures need it directly (SPEC_FULL.md Domain Stack).
func NewGuid() Guid {
	id := uuid.New()
	return guidFromRFC4122(id)
}

// ParseGuid parses the canonical "xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx"
// string form into a Guid, returning a Usage error on malformed input.
func ParseGuid(s string) (Guid, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return Guid{}, uaerr.Wrap(uaerr.Usage, err, "malformed guid %q", s)
	}
	return guidFromRFC4122(id), nil
}

func guidFromRFC4122(id uuid.UUID) Guid {
	var g Guid
	copy(g[:], id[:])
	return g
}

// String renders the canonical RFC 4122 form.
func (g Guid) String() string {
	return uuid.UUID(g).String()
}

// WriteGuid encodes a Guid with the mixed-endian layout required by
// the wire format: the RFC 4122 byte order stores the first three
// fields big-endian, so they are byte-swapped to little-endian here.
func (e *Encoder) WriteGuid(g Guid) {
	var b [16]byte
	binary.LittleEndian.PutUint32(b[0:4], binary.BigEndian.Uint32(g[0:4]))
	binary.LittleEndian.PutUint16(b[4:6], binary.BigEndian.Uint16(g[4:6]))
	binary.LittleEndian.PutUint16(b[6:8], binary.BigEndian.Uint16(g[6:8]))
	copy(b[8:16], g[8:16])
	e.WriteRaw(b[:])
}

func (d *Decoder) ReadGuid() (Guid, error) {
	b, err := d.ReadRaw(16)
	if err != nil {
		return Guid{}, err
	}
	var g Guid
	binary.BigEndian.PutUint32(g[0:4], binary.LittleEndian.Uint32(b[0:4]))
	binary.BigEndian.PutUint16(g[4:6], binary.LittleEndian.Uint16(b[4:6]))
	binary.BigEndian.PutUint16(g[6:8], binary.LittleEndian.Uint16(b[6:8]))
	copy(g[8:16], b[8:16])
	return g, nil
}
