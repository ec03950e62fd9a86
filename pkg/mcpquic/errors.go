package mcpquic

import (
	"errors"
	"fmt"

	"github.com/quic-go/quic-go"
)

// Stream error codes.
const (
	StreamErrorBadMagic        quic.StreamErrorCode = 0x01
	StreamErrorMessageTooLarge quic.StreamErrorCode = 0x02
)

// Connection error codes.
const (
	ConnErrorNone              quic.ApplicationErrorCode = 0x00
	ConnErrorUnsupportedALPN   quic.ApplicationErrorCode = 0x01
	ConnErrorProtocolViolation quic.ApplicationErrorCode = 0x02
	ConnErrorMCPDisabled       quic.ApplicationErrorCode = 0x03
)

var (
	ErrBadMagic        = errors.New("mcpquic: bad magic bytes")
	ErrUnsupportedALPN = errors.New("mcpquic: " + ALPN + " not negotiated")
	ErrNotConnected    = errors.New("mcpquic: client not connected")
)

// ConnectionError reports a connection the client gave up on.
type ConnectionError struct {
	Remote string
	Code   quic.ApplicationErrorCode
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("mcpquic: %s: code 0x%02x: %v", e.Remote, uint64(e.Code), e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }
