package mcpquic

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/hazyhaar/prenoms-registry/pkg/kit"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/quic-go/quic-go"
)

// Handler serves MCP sessions on QUIC connections it is handed. It owns no
// listener; the chassis demuxes connections by ALPN and passes them in.
type Handler struct {
	mcpServer *server.MCPServer
	logger    *slog.Logger
	maxMsg    int
}

func NewHandler(mcpSrv *server.MCPServer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{mcpServer: mcpSrv, logger: logger, maxMsg: MaxMessageSize}
}

// ServeConn runs one MCP session on the first stream the client opens.
func (h *Handler) ServeConn(ctx context.Context, conn *quic.Conn) {
	remote := conn.RemoteAddr().String()

	stream, err := conn.AcceptStream(ctx)
	if err != nil {
		h.logger.Error("MCP accept stream failed", "remote", remote, "error", err)
		conn.CloseWithError(ConnErrorProtocolViolation, "stream accept failed")
		return
	}

	if err := ValidateMagicBytes(stream); err != nil {
		h.logger.Warn("MCP magic bytes invalid", "remote", remote, "error", err)
		stream.CancelWrite(StreamErrorProtocolConfusion)
		stream.CancelRead(StreamErrorProtocolConfusion)
		conn.CloseWithError(ConnErrorProtocolViolation, "invalid magic bytes")
		return
	}

	err = h.serveStream(ctx, stream, remote)
	if errors.Is(err, ErrMessageTooLarge) {
		stream.CancelRead(StreamErrorMessageTooLarge)
		conn.CloseWithError(ConnErrorProtocolViolation, "message too large")
		return
	}
	stream.Close()
}

// serveStream runs the session loop over any byte stream.
func (h *Handler) serveStream(ctx context.Context, rw io.ReadWriter, remote string) error {
	sess := newSession("quic_"+uuid.NewString(), rw)
	if err := h.mcpServer.RegisterSession(ctx, sess); err != nil {
		h.logger.Error("MCP session register failed", "session", sess.id, "error", err)
		return err
	}
	defer h.mcpServer.UnregisterSession(ctx, sess.id)
	h.logger.Info("MCP session started", "session", sess.id, "remote", remote)

	ctx, cancel := context.WithCancel(kit.WithTransport(ctx, "mcp_quic"))
	defer cancel()
	ctx = h.mcpServer.WithContext(ctx, sess)
	go sess.forwardNotifications(ctx)

	reader := bufio.NewReader(rw)
	var loopErr error
	for {
		line, err := readMessage(reader, h.maxMsg)
		if err != nil {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				h.logger.Warn("MCP read failed", "session", sess.id, "error", err)
				loopErr = err
			}
			break
		}
		if len(line) == 0 {
			continue
		}

		response := h.mcpServer.HandleMessage(ctx, json.RawMessage(line))
		if response == nil {
			continue
		}
		if err := sess.send(response); err != nil {
			h.logger.Warn("MCP write failed", "session", sess.id, "error", err)
			loopErr = err
			break
		}
	}

	h.logger.Info("MCP session ended", "session", sess.id, "remote", remote)
	return loopErr
}

// session implements server.ClientSession. Responses and notifications
// share one writer, serialised by mu.
type session struct {
	id            string
	notifications chan mcp.JSONRPCNotification
	initialized   atomic.Bool

	mu sync.Mutex
	w  io.Writer
}

func newSession(id string, w io.Writer) *session {
	return &session{
		id:            id,
		notifications: make(chan mcp.JSONRPCNotification, 100),
		w:             w,
	}
}

func (s *session) SessionID() string                                   { return s.id }
func (s *session) NotificationChannel() chan<- mcp.JSONRPCNotification { return s.notifications }
func (s *session) Initialize()                                         { s.initialized.Store(true) }
func (s *session) Initialized() bool                                   { return s.initialized.Load() }

// send writes v as one JSON line.
func (s *session) send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.w.Write(data)
	return err
}

func (s *session) forwardNotifications(ctx context.Context) {
	for {
		select {
		case n := <-s.notifications:
			_ = s.send(n)
		case <-ctx.Done():
			return
		}
	}
}
