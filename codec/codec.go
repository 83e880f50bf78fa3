// Package codec provides the deterministic protobuf wire encoding used for every
// value this module commits to state. The layouts follow the ibc-go protobuf
// definitions field by field so that proofs produced by one chain can be checked
// by another.
package codec

import (
	"fmt"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

const codespace = "codec"

var ErrDecode = sdkerrors.Register(codespace, 2, "failed to decode")

// Encoder appends fields in the order they are written. Callers must write fields
// in increasing field number order; zero scalars are omitted like proto3 does.
type Encoder struct {
	buf []byte
}

func NewEncoder() *Encoder {
	return &Encoder{}
}

func (e *Encoder) String(num protowire.Number, s string) *Encoder {
	if s == "" {
		return e
	}
	e.buf = protowire.AppendTag(e.buf, num, protowire.BytesType)
	e.buf = protowire.AppendString(e.buf, s)
	return e
}

func (e *Encoder) Strings(num protowire.Number, ss []string) *Encoder {
	for _, s := range ss {
		e.buf = protowire.AppendTag(e.buf, num, protowire.BytesType)
		e.buf = protowire.AppendString(e.buf, s)
	}
	return e
}

func (e *Encoder) Bytes(num protowire.Number, bz []byte) *Encoder {
	if len(bz) == 0 {
		return e
	}
	e.buf = protowire.AppendTag(e.buf, num, protowire.BytesType)
	e.buf = protowire.AppendBytes(e.buf, bz)
	return e
}

func (e *Encoder) RepeatedBytes(num protowire.Number, bzs [][]byte) *Encoder {
	for _, bz := range bzs {
		e.buf = protowire.AppendTag(e.buf, num, protowire.BytesType)
		e.buf = protowire.AppendBytes(e.buf, bz)
	}
	return e
}

// Message always writes the field, even when the embedded message is empty,
// matching gogoproto non-nullable fields.
func (e *Encoder) Message(num protowire.Number, bz []byte) *Encoder {
	e.buf = protowire.AppendTag(e.buf, num, protowire.BytesType)
	e.buf = protowire.AppendBytes(e.buf, bz)
	return e
}

func (e *Encoder) Uint64(num protowire.Number, v uint64) *Encoder {
	if v == 0 {
		return e
	}
	e.buf = protowire.AppendTag(e.buf, num, protowire.VarintType)
	e.buf = protowire.AppendVarint(e.buf, v)
	return e
}

func (e *Encoder) Int64(num protowire.Number, v int64) *Encoder {
	return e.Uint64(num, uint64(v))
}

func (e *Encoder) Enum(num protowire.Number, v int32) *Encoder {
	return e.Uint64(num, uint64(v))
}

func (e *Encoder) Bool(num protowire.Number, v bool) *Encoder {
	if !v {
		return e
	}
	return e.Uint64(num, 1)
}

func (e *Encoder) Encode() []byte {
	return e.buf
}

// Field is a single decoded field. Varint holds the value of varint fields and
// Bytes the payload of length-delimited ones.
type Field struct {
	Num    protowire.Number
	Type   protowire.Type
	Varint uint64
	Bytes  []byte
}

func (f Field) String() string {
	return string(f.Bytes)
}

// DecodeFields walks every field of bz in wire order. Fixed-width and group
// fields are skipped.
func DecodeFields(bz []byte, visit func(f Field) error) error {
	for len(bz) > 0 {
		num, typ, n := protowire.ConsumeTag(bz)
		if n < 0 {
			return sdkerrors.Wrap(ErrDecode, protowire.ParseError(n).Error())
		}
		bz = bz[n:]

		f := Field{Num: num, Type: typ}
		switch typ {
		case protowire.VarintType:
			v, m := protowire.ConsumeVarint(bz)
			if m < 0 {
				return sdkerrors.Wrap(ErrDecode, protowire.ParseError(m).Error())
			}
			f.Varint = v
			bz = bz[m:]
		case protowire.BytesType:
			v, m := protowire.ConsumeBytes(bz)
			if m < 0 {
				return sdkerrors.Wrap(ErrDecode, protowire.ParseError(m).Error())
			}
			f.Bytes = v
			bz = bz[m:]
		default:
			m := protowire.ConsumeFieldValue(num, typ, bz)
			if m < 0 {
				return sdkerrors.Wrap(ErrDecode, protowire.ParseError(m).Error())
			}
			bz = bz[m:]
			continue
		}
		if err := visit(f); err != nil {
			return err
		}
	}
	return nil
}

// EncodeAny wraps value in a google.protobuf.Any envelope.
func EncodeAny(typeURL string, value []byte) []byte {
	return NewEncoder().String(1, typeURL).Bytes(2, value).Encode()
}

// DecodeAny unwraps a google.protobuf.Any envelope.
func DecodeAny(bz []byte) (typeURL string, value []byte, err error) {
	err = DecodeFields(bz, func(f Field) error {
		switch f.Num {
		case 1:
			typeURL = f.String()
		case 2:
			value = f.Bytes
		}
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	if typeURL == "" {
		return "", nil, sdkerrors.Wrap(ErrDecode, "any: empty type url")
	}
	return typeURL, value, nil
}

// ExpectType returns an error unless f has wire type typ.
func ExpectType(f Field, typ protowire.Type) error {
	if f.Type != typ {
		return sdkerrors.Wrap(ErrDecode, fmt.Sprintf("field %d: unexpected wire type %d", f.Num, f.Type))
	}
	return nil
}
