package ua

import (
	"testing"
	"time"
)

// Table-driven round-trip tests for primitive and composite types,
// generalizing the value/expected-bytes table style of
// backkem/matter's pkg/tlv/roundtrip_test.go to OPC UA's positional
// encoding (no expected-bytes column needed here since there is a
// single canonical encoding per value, unlike TLV's tag variability).

func TestRoundTripPrimitives(t *testing.T) {
	e := NewEncoder()
	e.WriteBoolean(true)
	e.WriteSByte(-5)
	e.WriteByte(200)
	e.WriteInt16(-1000)
	e.WriteUint16(40000)
	e.WriteInt32(-100000)
	e.WriteUint32(4000000000)
	e.WriteInt64(-123456789012)
	e.WriteUint64(18000000000000000000)
	e.WriteFloat32(3.5)
	e.WriteFloat64(2.71828)
	e.WriteString("hello")
	e.WriteNilString()

	d := NewDecoder(e.Bytes())
	if b, err := d.ReadBoolean(); err != nil || b != true {
		t.Fatalf("bool: %v %v", b, err)
	}
	if v, err := d.ReadSByte(); err != nil || v != -5 {
		t.Fatalf("sbyte: %v %v", v, err)
	}
	if v, err := d.ReadByte(); err != nil || v != 200 {
		t.Fatalf("byte: %v %v", v, err)
	}
	if v, err := d.ReadInt16(); err != nil || v != -1000 {
		t.Fatalf("int16: %v %v", v, err)
	}
	if v, err := d.ReadUint16(); err != nil || v != 40000 {
		t.Fatalf("uint16: %v %v", v, err)
	}
	if v, err := d.ReadInt32(); err != nil || v != -100000 {
		t.Fatalf("int32: %v %v", v, err)
	}
	if v, err := d.ReadUint32(); err != nil || v != 4000000000 {
		t.Fatalf("uint32: %v %v", v, err)
	}
	if v, err := d.ReadInt64(); err != nil || v != -123456789012 {
		t.Fatalf("int64: %v %v", v, err)
	}
	if v, err := d.ReadUint64(); err != nil || v != 18000000000000000000 {
		t.Fatalf("uint64: %v %v", v, err)
	}
	if v, err := d.ReadFloat32(); err != nil || v != 3.5 {
		t.Fatalf("float32: %v %v", v, err)
	}
	if v, err := d.ReadFloat64(); err != nil || v != 2.71828 {
		t.Fatalf("float64: %v %v", v, err)
	}
	if s, ok, err := d.ReadString(); err != nil || !ok || s != "hello" {
		t.Fatalf("string: %v %v %v", s, ok, err)
	}
	if s, ok, err := d.ReadString(); err != nil || ok || s != "" {
		t.Fatalf("nil string: %v %v %v", s, ok, err)
	}
}

func TestStringBoundaries(t *testing.T) {
	e := NewEncoder()
	e.WriteString("")
	d := NewDecoder(e.Bytes())
	s, ok, err := d.ReadString()
	if err != nil || !ok || s != "" {
		t.Fatalf("empty string should round-trip as present+empty, got %q ok=%v err=%v", s, ok, err)
	}

	// length < -1 is a framing error.
	bad := NewDecoder([]byte{0xFE, 0xFF, 0xFF, 0xFF}) // -2 as little-endian int32
	if _, _, err := bad.ReadString(); err == nil {
		t.Fatal("expected error for length < -1")
	}
}

func TestNodeIdSmallestForm(t *testing.T) {
	cases := []struct {
		name string
		id   NodeId
		tag  byte
	}{
		{"two-byte", NewNumericNodeId(0, 100), nidTwoByte},
		{"four-byte", NewNumericNodeId(5, 5000), nidFourByte},
		{"full-numeric-big-id", NewNumericNodeId(0, 100000), nidNumeric},
		{"full-numeric-big-ns", NewNumericNodeId(1000, 1), nidNumeric},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e := NewEncoder()
			e.WriteNodeId(c.id)
			if e.Bytes()[0] != c.tag {
				t.Fatalf("expected tag 0x%02x, got 0x%02x", c.tag, e.Bytes()[0])
			}
			d := NewDecoder(e.Bytes())
			got, err := d.ReadNodeId()
			if err != nil {
				t.Fatal(err)
			}
			if !got.Equal(c.id) {
				t.Fatalf("round trip mismatch: %v != %v", got, c.id)
			}
		})
	}
}

func TestNodeIdVariants(t *testing.T) {
	g := NewGuid()
	ids := []NodeId{
		NewStringNodeId(2, "Temperature.Sensor1"),
		NewGuidNodeId(3, g),
		NewOpaqueNodeId(4, []byte{1, 2, 3, 4}),
	}
	for _, id := range ids {
		e := NewEncoder()
		e.WriteNodeId(id)
		d := NewDecoder(e.Bytes())
		got, err := d.ReadNodeId()
		if err != nil {
			t.Fatal(err)
		}
		if !got.Equal(id) {
			t.Fatalf("round trip mismatch: %v != %v", got, id)
		}
	}
}

func TestExpandedNodeId(t *testing.T) {
	en := ExpandedNodeId{
		NodeId:       NewNumericNodeId(0, 2258),
		NamespaceURI: "http://example.org/UA",
		ServerIndex:  7,
	}
	e := NewEncoder()
	e.WriteExpandedNodeId(en)
	d := NewDecoder(e.Bytes())
	got, err := d.ReadExpandedNodeId()
	if err != nil {
		t.Fatal(err)
	}
	if !got.NodeId.Equal(en.NodeId) || got.NamespaceURI != en.NamespaceURI || got.ServerIndex != en.ServerIndex {
		t.Fatalf("round trip mismatch: %+v != %+v", got, en)
	}
}

func TestDateTimeNullAndUnix(t *testing.T) {
	if !DateTime(0).IsNull() {
		t.Fatal("0 should be null")
	}
	now := time.Now().UTC()
	dt := NewDateTime(now)
	if dt.IsNull() {
		t.Fatal("now should not be null")
	}
	diff := dt.ToUnixTimestamp() - now.Unix()
	if diff < -1 || diff > 1 {
		t.Fatalf("unix timestamp drifted: %d", diff)
	}
}

func TestStatusCodeSeverity(t *testing.T) {
	if !StatusGood.IsGood() {
		t.Fatal("Good should be good")
	}
	if !StatusBadNodeIdUnknown.IsBad() {
		t.Fatal("BadNodeIdUnknown should be bad")
	}
}

func TestLocalizedTextOptionalFields(t *testing.T) {
	cases := []LocalizedText{
		{},
		{Locale: "en-US", HasLocale: true},
		{Text: "hi", HasText: true},
		{Locale: "en-US", HasLocale: true, Text: "hi", HasText: true},
	}
	for _, lt := range cases {
		e := NewEncoder()
		e.WriteLocalizedText(lt)
		d := NewDecoder(e.Bytes())
		got, err := d.ReadLocalizedText()
		if err != nil {
			t.Fatal(err)
		}
		if got != lt {
			t.Fatalf("round trip mismatch: %+v != %+v", got, lt)
		}
	}
}

func TestVariantScalarAndArray(t *testing.T) {
	scalar := NewScalarVariant(VariantTypeInt32, int32(42))
	e := NewEncoder()
	if err := e.WriteVariant(scalar); err != nil {
		t.Fatal(err)
	}
	d := NewDecoder(e.Bytes())
	got, err := d.ReadVariant()
	if err != nil {
		t.Fatal(err)
	}
	if got.Scalar.(int32) != 42 {
		t.Fatalf("scalar mismatch: %v", got.Scalar)
	}

	arr := NewArrayVariant(VariantTypeString, []any{"a", "b", "c"})
	e2 := NewEncoder()
	if err := e2.WriteVariant(arr); err != nil {
		t.Fatal(err)
	}
	d2 := NewDecoder(e2.Bytes())
	got2, err := d2.ReadVariant()
	if err != nil {
		t.Fatal(err)
	}
	if len(got2.Array) != 3 || got2.Array[1].(string) != "b" {
		t.Fatalf("array mismatch: %v", got2.Array)
	}
}

func TestVariantWithDimensions(t *testing.T) {
	v := Variant{
		Type:       VariantTypeInt32,
		IsArray:    true,
		Array:      []any{int32(1), int32(2), int32(3), int32(4)},
		Dimensions: []int32{2, 2},
	}
	e := NewEncoder()
	if err := e.WriteVariant(v); err != nil {
		t.Fatal(err)
	}
	d := NewDecoder(e.Bytes())
	got, err := d.ReadVariant()
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Dimensions) != 2 || got.Dimensions[0] != 2 {
		t.Fatalf("dimensions mismatch: %v", got.Dimensions)
	}
}

func TestDataValueOptionalFieldSubsets(t *testing.T) {
	base := DataValue{
		Value: NewScalarVariant(VariantTypeInt32, int32(7)), HasValue: true,
		Status: StatusGood, HasStatus: true,
		SourceTimestamp: NewDateTime(time.Now()), HasSourceTimestamp: true,
		SourcePicoseconds: 1234, HasSourcePicoseconds: true,
	}
	e := NewEncoder()
	if err := e.WriteDataValue(base); err != nil {
		t.Fatal(err)
	}
	d := NewDecoder(e.Bytes())
	got, err := d.ReadDataValue()
	if err != nil {
		t.Fatal(err)
	}
	if !got.HasValue || got.Value.Scalar.(int32) != 7 {
		t.Fatalf("value mismatch: %+v", got)
	}
	if got.HasServerTimestamp || got.HasServerPicoseconds {
		t.Fatalf("unset optional fields should stay absent: %+v", got)
	}
}

func TestExtensionObjectEmptyBinaryXML(t *testing.T) {
	cases := []ExtensionObject{
		{TypeID: NewNumericNodeId(0, 0), Encoding: ExtensionEncodingNone},
		{TypeID: NewNumericNodeId(0, 446), Encoding: ExtensionEncodingBinary, Body: []byte{1, 2, 3}},
		{TypeID: NewNumericNodeId(0, 1), Encoding: ExtensionEncodingXML, Body: []byte("<a/>")},
	}
	for _, o := range cases {
		e := NewEncoder()
		if err := e.WriteExtensionObject(o); err != nil {
			t.Fatal(err)
		}
		d := NewDecoder(e.Bytes())
		got, err := d.ReadExtensionObject()
		if err != nil {
			t.Fatal(err)
		}
		if !got.TypeID.Equal(o.TypeID) || got.Encoding != o.Encoding || string(got.Body) != string(o.Body) {
			t.Fatalf("round trip mismatch: %+v != %+v", got, o)
		}
	}
}

func TestUnknownExtensionObjectPreservesBytes(t *testing.T) {
	unknownType := NewNumericNodeId(1, 99999)
	o := ExtensionObject{TypeID: unknownType, Encoding: ExtensionEncodingBinary, Body: []byte{0xAA, 0xBB}}
	decoded, err := DecodeTyped(nil, o)
	if err != nil {
		t.Fatal(err)
	}
	unk, ok := decoded.(UnknownExtensionObject)
	if !ok {
		t.Fatalf("expected UnknownExtensionObject, got %T", decoded)
	}
	reEncoded, err := EncodeTyped(unk)
	if err != nil {
		t.Fatal(err)
	}
	if string(reEncoded.Body) != string(o.Body) || !reEncoded.TypeID.Equal(o.TypeID) {
		t.Fatalf("round trip through unknown type lost data: %+v", reEncoded)
	}
}
