package trace

import (
	"bufio"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"
	"sync"

	iou "github.com/akmistry/go-util/io"
)

var (
	ErrWriterClosed = errors.New("trace: writer closed")
)

// Writer appends ops to a trace. The file format is:
//
//	[0-7] HeaderMagic
//	entries, each:
//	  uvarint  size of the rest of the entry
//	  [0-3]    crc32 (IEEE table) of payload, little-endian
//	  payload  protobuf wire format fields (begin, end, value, failed)
type Writer struct {
	bw *bufio.Writer

	headerErr  error
	headerOnce sync.Once

	count int
	buf   []byte
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{
		bw:  bufio.NewWriter(w),
		buf: make([]byte, 0, maxEntrySize),
	}
}

func (w *Writer) writeHeader() error {
	w.headerOnce.Do(func() {
		if w.bw == nil {
			w.headerErr = ErrWriterClosed
			return
		}
		_, w.headerErr = w.bw.WriteString(HeaderMagic)
	})
	return w.headerErr
}

func (w *Writer) Append(op Op) error {
	if w.bw == nil {
		return ErrWriterClosed
	}
	if err := w.writeHeader(); err != nil {
		return err
	}

	payload := op.appendPayload(w.buf[:0])
	var crcBuf [crcSize]byte
	binary.LittleEndian.PutUint32(crcBuf[:], crc32.ChecksumIEEE(payload))
	var sizeBuf [binary.MaxVarintLen64]byte
	sizeLen := binary.PutUvarint(sizeBuf[:], uint64(crcSize+len(payload)))

	if _, err := iou.WriteMany(w.bw, sizeBuf[:sizeLen], crcBuf[:], payload); err != nil {
		return err
	}
	w.buf = payload
	w.count++
	return nil
}

// Count returns the number of ops appended.
func (w *Writer) Count() int {
	return w.count
}

func (w *Writer) Flush() error {
	if w.bw == nil {
		return ErrWriterClosed
	}
	if err := w.writeHeader(); err != nil {
		return err
	}
	return w.bw.Flush()
}

// Close flushes buffered entries. It does not close the underlying writer.
func (w *Writer) Close() error {
	err := w.Flush()
	w.bw = nil
	return err
}
