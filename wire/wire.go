// Package wire implements the big-endian framed primitives shared by the
// client protocol and the snapshot codec: fixed-width integers and
// length-prefixed UTF-8 strings, plus small gzip helpers. All multi-byte
// integers are big-endian two's complement.
package wire

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"io"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// MaxStringLen is the largest string payload the u16 length prefix can carry.
const MaxStringLen = 65535

var (
	// ErrStringTooLong is returned by WriteString when the payload exceeds MaxStringLen.
	ErrStringTooLong = errors.New("wire: string exceeds 65535 bytes")
	// ErrInvalidUTF8 is returned by ReadString when the payload is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("wire: invalid utf8 in string payload")
)

// Reader wraps an io.Reader with the fixed-width decoders the protocol needs.
// A short read at any point is fatal and is returned unwrapped so callers can
// distinguish io.EOF from a mid-frame disconnect.
type Reader struct {
	r io.Reader
}

// NewReader returns a Reader reading from r.
func NewReader(r io.Reader) *Reader { return &Reader{r: r} }

func (rd *Reader) readFull(buf []byte) error {
	_, err := io.ReadFull(rd.r, buf)
	return err
}

// ReadI8 reads a signed 8-bit integer.
func (rd *Reader) ReadI8() (int8, error) {
	var buf [1]byte
	if err := rd.readFull(buf[:]); err != nil {
		return 0, err
	}
	return int8(buf[0]), nil
}

// ReadU16 reads an unsigned 16-bit integer.
func (rd *Reader) ReadU16() (uint16, error) {
	var buf [2]byte
	if err := rd.readFull(buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

// ReadI16 reads a signed 16-bit integer.
func (rd *Reader) ReadI16() (int16, error) {
	var buf [2]byte
	if err := rd.readFull(buf[:]); err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(buf[:])), nil
}

// ReadI32 reads a signed 32-bit integer.
func (rd *Reader) ReadI32() (int32, error) {
	var buf [4]byte
	if err := rd.readFull(buf[:]); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(buf[:])), nil
}

// ReadI64 reads a signed 64-bit integer.
func (rd *Reader) ReadI64() (int64, error) {
	var buf [8]byte
	if err := rd.readFull(buf[:]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(buf[:])), nil
}

// ReadBytes reads exactly n raw bytes.
func (rd *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, errors.Errorf("wire: negative length %d", n)
	}
	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}
	if err := rd.readFull(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadString reads a u16-length-prefixed UTF-8 string.
func (rd *Reader) ReadString() (string, error) {
	n, err := rd.ReadU16()
	if err != nil {
		return "", err
	}
	buf, err := rd.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(buf) {
		return "", ErrInvalidUTF8
	}
	return string(buf), nil
}

// Writer wraps an io.Writer with the fixed-width encoders the protocol needs.
type Writer struct {
	w io.Writer
}

// NewWriter returns a Writer writing to w.
func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

// WriteI8 writes a signed 8-bit integer.
func (wr *Writer) WriteI8(v int8) error {
	_, err := wr.w.Write([]byte{byte(v)})
	return err
}

// WriteU16 writes an unsigned 16-bit integer.
func (wr *Writer) WriteU16(v uint16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	_, err := wr.w.Write(buf[:])
	return err
}

// WriteI16 writes a signed 16-bit integer.
func (wr *Writer) WriteI16(v int16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], uint16(v))
	_, err := wr.w.Write(buf[:])
	return err
}

// WriteI32 writes a signed 32-bit integer.
func (wr *Writer) WriteI32(v int32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	_, err := wr.w.Write(buf[:])
	return err
}

// WriteI64 writes a signed 64-bit integer.
func (wr *Writer) WriteI64(v int64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	_, err := wr.w.Write(buf[:])
	return err
}

// WriteBytes writes raw bytes verbatim.
func (wr *Writer) WriteBytes(b []byte) error {
	_, err := wr.w.Write(b)
	return err
}

// WriteString writes a u16-length-prefixed UTF-8 string.
func (wr *Writer) WriteString(s string) error {
	if len(s) > MaxStringLen {
		return ErrStringTooLong
	}
	if err := wr.WriteU16(uint16(len(s))); err != nil {
		return err
	}
	return wr.WriteBytes([]byte(s))
}

// GzipBytes compresses b into a gzip stream.
func GzipBytes(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(b); err != nil {
		gw.Close()
		return nil, errors.Wrap(err, "wire: gzip write")
	}
	if err := gw.Close(); err != nil {
		return nil, errors.Wrap(err, "wire: gzip close")
	}
	return buf.Bytes(), nil
}

// GunzipBytes decompresses a gzip stream fully into memory.
func GunzipBytes(b []byte) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, errors.Wrap(err, "wire: gzip reader")
	}
	defer gr.Close()
	out, err := io.ReadAll(gr)
	if err != nil {
		return nil, errors.Wrap(err, "wire: gzip read")
	}
	return out, nil
}
