package mcpquic

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestMagicBytesRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := SendMagicBytes(&buf); err != nil {
		t.Fatalf("SendMagicBytes: %v", err)
	}
	buf.WriteString(`{"jsonrpc":"2.0"}`)

	if err := ValidateMagicBytes(&buf); err != nil {
		t.Fatalf("ValidateMagicBytes: %v", err)
	}
	if rest := buf.String(); rest != `{"jsonrpc":"2.0"}` {
		t.Errorf("validation consumed too much: %q", rest)
	}
}

func TestValidateMagicBytes_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"wrong protocol", "MCP1{}"},
		{"http", "GET / HTTP/1.1"},
		{"short", "PR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMagicBytes(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.name != "short" && !errors.Is(err, ErrInvalidMagicBytes) {
				t.Errorf("err = %v, want ErrInvalidMagicBytes", err)
			}
		})
	}
}

func TestReadMessage(t *testing.T) {
	r := bufio.NewReaderSize(strings.NewReader("{\"a\":1}\r\n\n{\"b\":2}\n"), 16)

	first, err := readMessage(r, 64)
	if err != nil || string(first) != `{"a":1}` {
		t.Fatalf("first = %q, %v", first, err)
	}
	empty, err := readMessage(r, 64)
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty line = %q, %v", empty, err)
	}
	second, err := readMessage(r, 64)
	if err != nil || string(second) != `{"b":2}` {
		t.Fatalf("second = %q, %v", second, err)
	}
}

func TestReadMessage_TooLarge(t *testing.T) {
	long := strings.Repeat("x", 100) + "\n"
	r := bufio.NewReaderSize(strings.NewReader(long), 16)
	if _, err := readMessage(r, 50); !errors.Is(err, ErrMessageTooLarge) {
		t.Errorf("err = %v, want ErrMessageTooLarge", err)
	}
}

func TestReadMessage_SpansBuffer(t *testing.T) {
	msg := strings.Repeat("y", 40)
	r := bufio.NewReaderSize(strings.NewReader(msg+"\n"), 16)
	got, err := readMessage(r, 64)
	if err != nil || string(got) != msg {
		t.Errorf("got %q, %v", got, err)
	}
}
