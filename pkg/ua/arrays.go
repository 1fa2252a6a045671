package ua

// WriteArray encodes a generic array: an Int32 length prefix followed
// by each element via enc. Pass a nil items to encode the null array
// sentinel.
func WriteArray[T any](e *Encoder, items []T, enc func(*Encoder, T)) {
	if items == nil {
		e.WriteInt32(-1)
		return
	}
	e.WriteArrayLength(len(items))
	for _, it := range items {
		enc(e, it)
	}
}

// ReadArray decodes a generic array via dec. Returns a nil slice for
// the null-array sentinel.
func ReadArray[T any](d *Decoder, dec func(*Decoder) (T, error)) ([]T, error) {
	n, err := d.ReadArrayLength()
	if err != nil {
		return nil, err
	}
	if n == -1 {
		return nil, nil
	}
	out := make([]T, n)
	for i := range out {
		v, err := dec(d)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Ptr returns a pointer to a copy of v, generalizing the small
// generic helper backkem/matter's pkg/im/message/types.go uses for
// optional-field construction.
func Ptr[T any](v T) *T { return &v }
