package ext2

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// wireReader sequentially decodes little-endian fixed-width integers out of
// a fixed-layout on-disk record, mirroring the cursor-based decoding idiom
// the layouts in this package were ported from, but expressed with the
// standard binary encoding package instead of manual byte slicing.
type wireReader struct {
	r *bytes.Reader
}

func newWireReader(data []byte) *wireReader {
	return &wireReader{r: bytes.NewReader(data)}
}

func (w *wireReader) u8() uint8 {
	var v uint8
	if err := binary.Read(w.r, binary.LittleEndian, &v); err != nil {
		panic(fmt.Sprintf("ext2: truncated record: %v", err))
	}
	return v
}

func (w *wireReader) u16() uint16 {
	var v uint16
	if err := binary.Read(w.r, binary.LittleEndian, &v); err != nil {
		panic(fmt.Sprintf("ext2: truncated record: %v", err))
	}
	return v
}

func (w *wireReader) u32() uint32 {
	var v uint32
	if err := binary.Read(w.r, binary.LittleEndian, &v); err != nil {
		panic(fmt.Sprintf("ext2: truncated record: %v", err))
	}
	return v
}

func (w *wireReader) skip(n int) {
	buf := make([]byte, n)
	if _, err := w.r.Read(buf); err != nil {
		panic(fmt.Sprintf("ext2: truncated record: %v", err))
	}
}

func (w *wireReader) bytes(n int) []byte {
	buf := make([]byte, n)
	if _, err := w.r.Read(buf); err != nil {
		panic(fmt.Sprintf("ext2: truncated record: %v", err))
	}
	return buf
}

func (w *wireReader) position() int64 {
	return w.r.Size() - int64(w.r.Len())
}

type wireWriter struct {
	buf *bytes.Buffer
}

func newWireWriter(size int) *wireWriter {
	buf := bytes.NewBuffer(make([]byte, 0, size))
	return &wireWriter{buf: buf}
}

func (w *wireWriter) u8(v uint8) {
	_ = binary.Write(w.buf, binary.LittleEndian, v)
}

func (w *wireWriter) u16(v uint16) {
	_ = binary.Write(w.buf, binary.LittleEndian, v)
}

func (w *wireWriter) u32(v uint32) {
	_ = binary.Write(w.buf, binary.LittleEndian, v)
}

func (w *wireWriter) write(b []byte) {
	w.buf.Write(b)
}

func (w *wireWriter) bytes() []byte {
	return w.buf.Bytes()
}
