package javaio

import (
	"bytes"
	"testing"
)

func TestReadPrimitives(t *testing.T) {
	buf := []byte{
		0x01,                   // i8 = 1
		0x00, 0x2a,             // u16 = 42
		0xff, 0xff, 0xff, 0xff, // i32 = -1
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x05, // i64 = 5
	}
	r := NewReader(bytes.NewReader(buf))

	i8, err := r.ReadI8()
	if err != nil || i8 != 1 {
		t.Fatalf("ReadI8 = %d, %v", i8, err)
	}
	u16, err := r.ReadU16BE()
	if err != nil || u16 != 42 {
		t.Fatalf("ReadU16BE = %d, %v", u16, err)
	}
	i32, err := r.ReadI32BE()
	if err != nil || i32 != -1 {
		t.Fatalf("ReadI32BE = %d, %v", i32, err)
	}
	i64, err := r.ReadI64BE()
	if err != nil || i64 != 5 {
		t.Fatalf("ReadI64BE = %d, %v", i64, err)
	}
}

func TestReadUTF8Strict(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte("yom|yom|1.0")))
	s, err := r.ReadUTF8(11)
	if err != nil {
		t.Fatal(err)
	}
	if s != "yom|yom|1.0" {
		t.Fatalf("got %q", s)
	}
}

func TestReadUTF8Empty(t *testing.T) {
	r := NewReader(bytes.NewReader(nil))
	s, err := r.ReadUTF8(0)
	if err != nil || s != "" {
		t.Fatalf("got %q, %v", s, err)
	}
}

func TestReadUTF8ModifiedNUL(t *testing.T) {
	// Java encodes an embedded NUL as the two-byte sequence C0 80.
	buf := []byte{'a', 0xC0, 0x80, 'b'}
	r := NewReader(bytes.NewReader(buf))
	s, err := r.ReadUTF8(len(buf))
	if err != nil {
		t.Fatal(err)
	}
	want := "a\x00b"
	if s != want {
		t.Fatalf("got %q want %q", s, want)
	}
}

func TestReadUTF8SupplementaryCESU8(t *testing.T) {
	// U+1D11E (musical G clef) as a CESU-8 surrogate pair: D834 DD1E
	// encoded as two 3-byte sequences: ED A0 B4 ED B4 9E
	buf := []byte{0xED, 0xA0, 0xB4, 0xED, 0xB4, 0x9E}
	r := NewReader(bytes.NewReader(buf))
	s, err := r.ReadUTF8(len(buf))
	if err != nil {
		t.Fatal(err)
	}
	want := "\U0001D11E"
	if s != want {
		t.Fatalf("got %q want %q", s, want)
	}
}

func TestReadUTF8BadSequence(t *testing.T) {
	buf := []byte{0xC0} // truncated 2-byte sequence
	r := NewReader(bytes.NewReader(buf))
	if _, err := r.ReadUTF8(len(buf)); err == nil {
		t.Fatal("expected error for truncated sequence")
	}
}

func TestReadUTF8ShortRead(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte("ab")))
	if _, err := r.ReadUTF8(5); err == nil {
		t.Fatal("expected short read error")
	}
}

func TestAtEOF(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{1}))
	eof, err := r.AtEOF()
	if err != nil || eof {
		t.Fatalf("expected not-eof, got eof=%v err=%v", eof, err)
	}
	if _, err := r.ReadI8(); err != nil {
		t.Fatal(err)
	}
	eof, err = r.AtEOF()
	if err != nil || !eof {
		t.Fatalf("expected eof, got eof=%v err=%v", eof, err)
	}
}
