package ua

import "github.com/foundry-iiot/opcua/pkg/uaerr"

// VariantType is the low 6 bits of a Variant's type byte, identifying
// one of the 25 OPC UA built-in types.
type VariantType byte

const (
	VariantTypeNull VariantType = iota
	VariantTypeBoolean
	VariantTypeSByte
	VariantTypeByte
	VariantTypeInt16
	VariantTypeUInt16
	VariantTypeInt32
	VariantTypeUInt32
	VariantTypeInt64
	VariantTypeUInt64
	VariantTypeFloat
	VariantTypeDouble
	VariantTypeString
	VariantTypeDateTime
	VariantTypeGuid
	VariantTypeByteString
	VariantTypeXmlElement
	VariantTypeNodeId
	VariantTypeExpandedNodeId
	VariantTypeStatusCode
	VariantTypeQualifiedName
	VariantTypeLocalizedText
	VariantTypeExtensionObject
	VariantTypeDataValue
	VariantTypeVariant
	VariantTypeDiagnosticInfo
)

const (
	variantArrayBit = 0x80
	variantDimsBit  = 0x40
	variantTypeMask = 0x3F
)

// Variant is a self-describing value: a scalar or array of one of the
// 25 built-in types, with optional array dimensions. The zero Variant
// is the Null variant.
type Variant struct {
	Type       VariantType
	IsArray    bool
	Scalar     any
	Array      []any
	Dimensions []int32 // present only when IsArray and len(Dimensions) > 0
}

// NewScalarVariant wraps a single value of the given type.
func NewScalarVariant(t VariantType, v any) Variant {
	return Variant{Type: t, Scalar: v}
}

// NewArrayVariant wraps a slice of values of the given type.
func NewArrayVariant(t VariantType, v []any) Variant {
	return Variant{Type: t, IsArray: true, Array: v}
}

// IsNull reports whether v is the Null variant (no value present).
func (v Variant) IsNull() bool { return v.Type == VariantTypeNull }

func (e *Encoder) WriteVariant(v Variant) error {
	if v.Type == VariantTypeNull {
		e.WriteByte(0)
		return nil
	}

	tag := byte(v.Type) & variantTypeMask
	if v.IsArray {
		tag |= variantArrayBit
		if len(v.Dimensions) > 0 {
			tag |= variantDimsBit
		}
	}
	e.WriteByte(tag)

	if !v.IsArray {
		return writeVariantValue(e, v.Type, v.Scalar)
	}

	e.WriteArrayLength(len(v.Array))
	for _, item := range v.Array {
		if err := writeVariantValue(e, v.Type, item); err != nil {
			return err
		}
	}
	if len(v.Dimensions) > 0 {
		e.WriteArrayLength(len(v.Dimensions))
		for _, dim := range v.Dimensions {
			e.WriteInt32(dim)
		}
	}
	return nil
}

func (d *Decoder) ReadVariant() (Variant, error) {
	tag, err := d.ReadByte()
	if err != nil {
		return Variant{}, err
	}
	if tag == 0 {
		return Variant{}, nil
	}

	t := VariantType(tag & variantTypeMask)
	isArray := tag&variantArrayBit != 0
	hasDims := tag&variantDimsBit != 0

	if !isArray {
		val, err := readVariantValue(d, t)
		if err != nil {
			return Variant{}, err
		}
		return Variant{Type: t, Scalar: val}, nil
	}

	n, err := d.ReadArrayLength()
	if err != nil {
		return Variant{}, err
	}
	var arr []any
	if n >= 0 {
		arr = make([]any, n)
		for i := range arr {
			val, err := readVariantValue(d, t)
			if err != nil {
				return Variant{}, err
			}
			arr[i] = val
		}
	}

	var dims []int32
	if hasDims {
		dn, err := d.ReadArrayLength()
		if err != nil {
			return Variant{}, err
		}
		dims = make([]int32, dn)
		for i := range dims {
			dv, err := d.ReadInt32()
			if err != nil {
				return Variant{}, err
			}
			dims[i] = dv
		}
	}

	return Variant{Type: t, IsArray: true, Array: arr, Dimensions: dims}, nil
}

func writeVariantValue(e *Encoder, t VariantType, v any) error {
	switch t {
	case VariantTypeBoolean:
		e.WriteBoolean(v.(bool))
	case VariantTypeSByte:
		e.WriteSByte(v.(int8))
	case VariantTypeByte:
		e.WriteByte(v.(byte))
	case VariantTypeInt16:
		e.WriteInt16(v.(int16))
	case VariantTypeUInt16:
		e.WriteUint16(v.(uint16))
	case VariantTypeInt32:
		e.WriteInt32(v.(int32))
	case VariantTypeUInt32:
		e.WriteUint32(v.(uint32))
	case VariantTypeInt64:
		e.WriteInt64(v.(int64))
	case VariantTypeUInt64:
		e.WriteUint64(v.(uint64))
	case VariantTypeFloat:
		e.WriteFloat32(v.(float32))
	case VariantTypeDouble:
		e.WriteFloat64(v.(float64))
	case VariantTypeString:
		if v == nil {
			e.WriteNilString()
		} else {
			e.WriteString(v.(string))
		}
	case VariantTypeDateTime:
		e.WriteDateTime(v.(DateTime))
	case VariantTypeGuid:
		e.WriteGuid(v.(Guid))
	case VariantTypeByteString, VariantTypeXmlElement:
		e.WriteByteString(v.([]byte))
	case VariantTypeNodeId:
		e.WriteNodeId(v.(NodeId))
	case VariantTypeExpandedNodeId:
		e.WriteExpandedNodeId(v.(ExpandedNodeId))
	case VariantTypeStatusCode:
		e.WriteStatusCode(v.(StatusCode))
	case VariantTypeQualifiedName:
		e.WriteQualifiedName(v.(QualifiedName))
	case VariantTypeLocalizedText:
		e.WriteLocalizedText(v.(LocalizedText))
	case VariantTypeExtensionObject:
		return e.WriteExtensionObject(v.(ExtensionObject))
	case VariantTypeDataValue:
		return e.WriteDataValue(v.(DataValue))
	case VariantTypeVariant:
		return e.WriteVariant(v.(Variant))
	case VariantTypeDiagnosticInfo:
		return e.WriteDiagnosticInfo(v.(DiagnosticInfo))
	default:
		return uaerr.UsageErr("unsupported variant built-in type %d", t)
	}
	return nil
}

func readVariantValue(d *Decoder, t VariantType) (any, error) {
	switch t {
	case VariantTypeBoolean:
		return d.ReadBoolean()
	case VariantTypeSByte:
		return d.ReadSByte()
	case VariantTypeByte:
		return d.ReadByte()
	case VariantTypeInt16:
		return d.ReadInt16()
	case VariantTypeUInt16:
		return d.ReadUint16()
	case VariantTypeInt32:
		return d.ReadInt32()
	case VariantTypeUInt32:
		return d.ReadUint32()
	case VariantTypeInt64:
		return d.ReadInt64()
	case VariantTypeUInt64:
		return d.ReadUint64()
	case VariantTypeFloat:
		return d.ReadFloat32()
	case VariantTypeDouble:
		return d.ReadFloat64()
	case VariantTypeString:
		s, ok, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		return s, nil
	case VariantTypeDateTime:
		return d.ReadDateTime()
	case VariantTypeGuid:
		return d.ReadGuid()
	case VariantTypeByteString, VariantTypeXmlElement:
		return d.ReadByteString()
	case VariantTypeNodeId:
		return d.ReadNodeId()
	case VariantTypeExpandedNodeId:
		return d.ReadExpandedNodeId()
	case VariantTypeStatusCode:
		return d.ReadStatusCode()
	case VariantTypeQualifiedName:
		return d.ReadQualifiedName()
	case VariantTypeLocalizedText:
		return d.ReadLocalizedText()
	case VariantTypeExtensionObject:
		return d.ReadExtensionObject()
	case VariantTypeDataValue:
		return d.ReadDataValue()
	case VariantTypeVariant:
		return d.ReadVariant()
	case VariantTypeDiagnosticInfo:
		return d.ReadDiagnosticInfo()
	default:
		return nil, uaerr.FramingErr("unsupported variant built-in type %d", t)
	}
}
