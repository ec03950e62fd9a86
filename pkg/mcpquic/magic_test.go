package mcpquic

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestMagicRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMagic(&buf); err != nil {
		t.Fatal(err)
	}
	buf.WriteString(`{"jsonrpc":"2.0"}`)
	if err := ReadMagic(&buf); err != nil {
		t.Fatalf("ReadMagic: %v", err)
	}
	if rest := buf.String(); rest != `{"jsonrpc":"2.0"}` {
		t.Errorf("preamble consumed too much: %q", rest)
	}
}

func TestReadMagic_Rejects(t *testing.T) {
	if err := ReadMagic(strings.NewReader("GET / HTTP/1.1")); !errors.Is(err, ErrBadMagic) {
		t.Errorf("wrong preamble: err = %v", err)
	}
	if err := ReadMagic(strings.NewReader("PM")); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("short preamble: err = %v", err)
	}
}

func TestConnectionError(t *testing.T) {
	err := error(&ConnectionError{Remote: "127.0.0.1:1", Code: ConnErrorUnsupportedALPN, Err: ErrUnsupportedALPN})
	if !errors.Is(err, ErrUnsupportedALPN) {
		t.Error("ConnectionError should unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "code 0x01") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestServerTLSConfig(t *testing.T) {
	base := ClientTLSConfig(false)
	base.NextProtos = []string{"h3", ALPN}
	got := ServerTLSConfig(base)
	if len(got.NextProtos) != 1 || got.NextProtos[0] != ALPN {
		t.Errorf("NextProtos = %v", got.NextProtos)
	}
	if len(base.NextProtos) != 2 {
		t.Error("base config modified")
	}
}
