package mcpquic

import (
	"crypto/tls"
	"time"

	"github.com/quic-go/quic-go"
)

const (
	// ALPNProtocolMCP selects the MCP handler on a shared QUIC socket.
	ALPNProtocolMCP = "prenoms-mcp-v1"
	// MagicBytesMCP opens every MCP stream.
	MagicBytesMCP = "PRN1"

	MaxMessageSize          = 4 * 1024 * 1024
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultIdleTimeout      = 5 * time.Minute
	DefaultKeepAlive        = 30 * time.Second
)

// QUICConfig is shared by the server listener and the client dialer.
func QUICConfig() *quic.Config {
	return &quic.Config{
		HandshakeIdleTimeout:       DefaultHandshakeTimeout,
		MaxStreamReceiveWindow:     MaxMessageSize * 2,
		MaxConnectionReceiveWindow: MaxMessageSize * 8,
		MaxIdleTimeout:             DefaultIdleTimeout,
		KeepAlivePeriod:            DefaultKeepAlive,
	}
}

// ClientTLSConfig offers only the MCP ALPN. insecure skips certificate
// verification for self-signed development servers.
func ClientTLSConfig(insecure bool) *tls.Config {
	return &tls.Config{
		NextProtos:         []string{ALPNProtocolMCP},
		MinVersion:         tls.VersionTLS13,
		InsecureSkipVerify: insecure,
	}
}
