package trace

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"log/slog"
)

var (
	ErrInvalidMagic   = errors.New("trace: invalid file magic")
	ErrCorruptedTrace = errors.New("trace: corrupted entry")
)

type Reader struct {
	br *bufio.Reader

	headerRead bool
	entries    int
	buf        []byte
}

func NewReader(r io.Reader) *Reader {
	return &Reader{
		br:  bufio.NewReader(r),
		buf: make([]byte, maxEntrySize),
	}
}

func (r *Reader) readHeader() error {
	magicBuf, err := r.br.Peek(len(HeaderMagic))
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return ErrInvalidMagic
	} else if err != nil {
		return err
	}
	if !bytes.Equal(magicBuf, []byte(HeaderMagic)) {
		return ErrInvalidMagic
	}
	r.br.Discard(len(HeaderMagic))
	r.headerRead = true
	return nil
}

// Next returns the next op, or io.EOF once the trace is exhausted.
func (r *Reader) Next() (Op, error) {
	if !r.headerRead {
		if err := r.readHeader(); err != nil {
			return Op{}, err
		}
	}

	entrySize, err := binary.ReadUvarint(r.br)
	if err == io.EOF {
		return Op{}, io.EOF
	} else if err != nil {
		slog.Warn("trace/Reader: size read error", "entry", r.entries, "error", err)
		return Op{}, fmt.Errorf("%w: entry %d: %w", ErrCorruptedTrace, r.entries, err)
	}
	if entrySize < crcSize || entrySize > maxEntrySize {
		slog.Warn("trace/Reader: invalid entry size", "entry", r.entries, "size", entrySize)
		return Op{}, fmt.Errorf("%w: entry %d: size %d", ErrCorruptedTrace, r.entries, entrySize)
	}

	entryBuf := r.buf[:entrySize]
	if _, err := io.ReadFull(r.br, entryBuf); err != nil {
		return Op{}, fmt.Errorf("%w: entry %d: %w", ErrCorruptedTrace, r.entries, err)
	}
	crc := binary.LittleEndian.Uint32(entryBuf[:crcSize])
	payload := entryBuf[crcSize:]
	if actual := crc32.ChecksumIEEE(payload); actual != crc {
		slog.Error("trace/Reader: invalid CRC", "entry", r.entries, "expected", crc, "actual", actual)
		return Op{}, fmt.Errorf("%w: entry %d: checksum mismatch", ErrCorruptedTrace, r.entries)
	}

	op, err := parsePayload(payload)
	if err != nil {
		return Op{}, fmt.Errorf("%w: entry %d: %w", ErrCorruptedTrace, r.entries, err)
	}
	r.entries++
	return op, nil
}

// ReadAll reads every remaining op.
func (r *Reader) ReadAll() ([]Op, error) {
	var ops []Op
	for {
		op, err := r.Next()
		if err == io.EOF {
			return ops, nil
		} else if err != nil {
			return ops, err
		}
		ops = append(ops, op)
	}
}
