package wire

import (
	"bytes"
	"strings"
	"testing"
)

func TestStringRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteString("lava"); err != nil {
		t.Fatalf("write: %v", err)
	}
	r := NewReader(&buf)
	s, err := r.ReadString()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if s != "lava" {
		t.Fatalf("got %q", s)
	}
}

func TestWriteStringTooLong(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	long := strings.Repeat("a", MaxStringLen+1)
	if err := w.WriteString(long); err != ErrStringTooLong {
		t.Fatalf("expected ErrStringTooLong, got %v", err)
	}
}

func TestReadStringInvalidUTF8(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	bad := []byte{0xff, 0xfe}
	if err := w.WriteU16(uint16(len(bad))); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteBytes(bad); err != nil {
		t.Fatal(err)
	}
	r := NewReader(&buf)
	if _, err := r.ReadString(); err != ErrInvalidUTF8 {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
}

func TestIntegerRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.WriteI8(-5)
	w.WriteI32(-123456)
	w.WriteI64(9_000_000_000)

	r := NewReader(&buf)
	if v, _ := r.ReadI8(); v != -5 {
		t.Fatalf("i8 got %d", v)
	}
	if v, _ := r.ReadI32(); v != -123456 {
		t.Fatalf("i32 got %d", v)
	}
	if v, _ := r.ReadI64(); v != 9_000_000_000 {
		t.Fatalf("i64 got %d", v)
	}
}

func TestGzipRoundTrip(t *testing.T) {
	payload := []byte("hello frequency hub")
	gz, err := GzipBytes(payload)
	if err != nil {
		t.Fatal(err)
	}
	out, err := GunzipBytes(gz)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != string(payload) {
		t.Fatalf("got %q", out)
	}
}

func TestReadShort(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x00}))
	if _, err := r.ReadI32(); err == nil {
		t.Fatal("expected short-read error")
	}
}
