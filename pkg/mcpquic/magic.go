package mcpquic

import (
	"fmt"
	"io"
)

// ReadMagic consumes the stream preamble and checks it.
func ReadMagic(r io.Reader) error {
	var buf [len(Magic)]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return fmt.Errorf("read magic: %w", err)
	}
	if string(buf[:]) != Magic {
		return fmt.Errorf("%w: %q", ErrBadMagic, buf[:])
	}
	return nil
}

// WriteMagic sends the stream preamble. Clients write it before any message.
func WriteMagic(w io.Writer) error {
	if _, err := io.WriteString(w, Magic); err != nil {
		return fmt.Errorf("write magic: %w", err)
	}
	return nil
}
