package mcpquic

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// ValidateMagicBytes reads the stream preamble and checks it.
func ValidateMagicBytes(r io.Reader) error {
	magic := make([]byte, len(MagicBytesMCP))
	if _, err := io.ReadFull(r, magic); err != nil {
		return fmt.Errorf("read magic bytes: %w", err)
	}
	if !bytes.Equal(magic, []byte(MagicBytesMCP)) {
		return fmt.Errorf("%w: got %q", ErrInvalidMagicBytes, magic)
	}
	return nil
}

// SendMagicBytes writes the preamble. Clients send it first on a new stream.
func SendMagicBytes(w io.Writer) error {
	if _, err := io.WriteString(w, MagicBytesMCP); err != nil {
		return fmt.Errorf("write magic bytes: %w", err)
	}
	return nil
}

// readMessage reads one newline-delimited JSON-RPC message of at most max
// bytes, without the trailing newline.
func readMessage(r *bufio.Reader, max int) ([]byte, error) {
	var msg []byte
	for {
		chunk, err := r.ReadSlice('\n')
		if len(msg)+len(chunk) > max+1 {
			return nil, ErrMessageTooLarge
		}
		msg = append(msg, chunk...)
		switch err {
		case nil:
			return bytes.TrimRight(msg, "\r\n"), nil
		case bufio.ErrBufferFull:
			continue
		default:
			return nil, err
		}
	}
}
