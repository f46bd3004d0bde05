package trace

const (
	HeaderMagic = "ivtrace\x01"

	// Upper bound on an encoded entry: crc + 3 varints + bool.
	maxEntrySize = 4 + 4*(1+10)

	crcSize = 4
)

// Field numbers of the entry payload.
const (
	fieldBegin  = 1
	fieldEnd    = 2
	fieldValue  = 3
	fieldFailed = 4
)

func init() {
	if len(HeaderMagic) != 8 {
		panic("len(HeaderMagic) != 8")
	}
}
