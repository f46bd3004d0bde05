package trace

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Op is one recorded range assignment.
type Op struct {
	Begin, End int64
	Value      byte

	// Assign returned an error for this op.
	Failed bool
}

func (o Op) String() string {
	s := fmt.Sprintf("assign( %d, %d, %c )", o.Begin, o.End, o.Value)
	if o.Failed {
		s += " failed"
	}
	return s
}

func (o Op) appendPayload(b []byte) []byte {
	b = protowire.AppendTag(b, fieldBegin, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(o.Begin))
	b = protowire.AppendTag(b, fieldEnd, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(o.End))
	b = protowire.AppendTag(b, fieldValue, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(o.Value))
	if o.Failed {
		b = protowire.AppendTag(b, fieldFailed, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeBool(true))
	}
	return b
}

func parsePayload(b []byte) (Op, error) {
	var o Op
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return o, protowire.ParseError(n)
		}
		b = b[n:]

		if typ != protowire.VarintType {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return o, protowire.ParseError(n)
			}
			b = b[n:]
			continue
		}

		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return o, protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case fieldBegin:
			o.Begin = protowire.DecodeZigZag(v)
		case fieldEnd:
			o.End = protowire.DecodeZigZag(v)
		case fieldValue:
			if v > 0xFF {
				return o, fmt.Errorf("value %d out of range", v)
			}
			o.Value = byte(v)
		case fieldFailed:
			o.Failed = protowire.DecodeBool(v)
		}
	}
	return o, nil
}
