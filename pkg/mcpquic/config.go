// Package mcpquic carries the partmatch MCP tools over a QUIC stream.
//
// A client opens one bidirectional stream per connection, writes the four
// magic bytes, then exchanges newline-delimited JSON-RPC messages with the
// server. The connection must negotiate ALPN "partmatch-mcp-v1", which lets a
// single UDP socket serve both HTTP/3 and MCP.
package mcpquic

import (
	"crypto/tls"
	"time"

	"github.com/quic-go/quic-go"
)

const (
	ALPN               = "partmatch-mcp-v1"
	Magic              = "PMCP"
	MaxMessageSize     = 4 << 20
	DefaultIdleTimeout = 5 * time.Minute
	DefaultKeepAlive   = 30 * time.Second
)

// QUICConfig returns the transport settings shared by listeners and clients.
func QUICConfig() *quic.Config {
	return &quic.Config{
		MaxStreamReceiveWindow:     MaxMessageSize,
		MaxConnectionReceiveWindow: 4 * MaxMessageSize,
		MaxIdleTimeout:             DefaultIdleTimeout,
		KeepAlivePeriod:            DefaultKeepAlive,
	}
}

// ServerTLSConfig restricts base to the MCP protocol. base must carry a
// certificate; it is not modified.
func ServerTLSConfig(base *tls.Config) *tls.Config {
	cfg := base.Clone()
	cfg.NextProtos = []string{ALPN}
	cfg.MinVersion = tls.VersionTLS13
	return cfg
}

// ClientTLSConfig is the dialer side. insecure skips certificate checks,
// which the self-signed development certificate needs.
func ClientTLSConfig(insecure bool) *tls.Config {
	return &tls.Config{
		NextProtos:         []string{ALPN},
		MinVersion:         tls.VersionTLS13,
		InsecureSkipVerify: insecure,
	}
}
