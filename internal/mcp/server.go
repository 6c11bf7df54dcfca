package mcp

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"weather-mcp/internal/apperr"
)

const keepaliveInterval = 15 * time.Second

// Server bridges the SSE transport and the tool registry. One Session is
// created per /sse connection; tool-call requests arrive on /messages and
// their responses are pushed back over the originating session's stream,
// correlated by the JSON-RPC id.
type Server struct {
	registry *Registry
	sessions *SessionStore
	logger   *slog.Logger
	info     ServerInfo
}

// NewServer wires an immutable registry and a session store into a
// dispatchable server. The registry must be fully populated before the
// first request arrives.
func NewServer(registry *Registry, sessions *SessionStore, logger *slog.Logger) *Server {
	return &Server{
		registry: registry,
		sessions: sessions,
		logger:   logger.With("component", "mcp.server"),
		info:     ServerInfo{Name: "weather-mcp", Version: "1.0.0"},
	}
}

// RegisterRoutes wires the transport endpoints into the Fiber app.
func (s *Server) RegisterRoutes(app *fiber.App) {
	app.Get("/sse", s.handleSSE)
	app.Post("/messages", s.handleMessage)
}

// handleSSE opens a session and streams its events until the client goes
// away. The first event tells the client where to POST its requests.
func (s *Server) handleSSE(c *fiber.Ctx) error {
	sess := s.sessions.Create()
	s.logger.Info("session connected", "session_id", sess.ID)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer func() {
			s.sessions.Remove(sess.ID)
			s.logger.Info("session disconnected", "session_id", sess.ID)
		}()

		endpoint := fmt.Sprintf("/messages?session_id=%s", sess.ID)
		if err := writeEvent(w, "endpoint", []byte(endpoint)); err != nil {
			return
		}

		keepalive := time.NewTicker(keepaliveInterval)
		defer keepalive.Stop()

		for {
			select {
			case ev := <-sess.Events():
				if err := writeEvent(w, ev.Name, ev.Data); err != nil {
					return
				}
			case <-keepalive.C:
				// A failed flush here is how we notice a silent disconnect.
				if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			case <-sess.Context().Done():
				return
			}
		}
	}))
	return nil
}

// handleMessage accepts one JSON-RPC message for an existing session and
// dispatches it asynchronously. The HTTP response only acknowledges
// receipt; the real answer travels over the SSE stream.
func (s *Server) handleMessage(c *fiber.Ctx) error {
	sessionID := c.Query("session_id")
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "unknown or expired session")
	}
	sess.Touch()

	var req Request
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(NewErrorResponse(nil, CodeParseError, "parse error", nil))
	}

	go s.dispatch(sess, req)
	return c.SendStatus(fiber.StatusAccepted)
}

// dispatch routes one message. Every request (anything with an id) gets
// exactly one terminal response on the session stream; notifications get
// none. A dead session silently swallows whatever was outstanding.
func (s *Server) dispatch(sess *Session, req Request) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("dispatch panic", "session_id", sess.ID, "method", req.Method, "panic", rec)
			if !req.IsNotification() {
				sess.SendResponse(NewErrorResponse(req.ID, CodeInternalError, "internal error", nil))
			}
		}
	}()

	switch req.Method {
	case "initialize":
		s.respond(sess, NewResultResponse(req.ID, InitializeResult{
			ProtocolVersion: ProtocolVersion,
			Capabilities:    map[string]any{"tools": map[string]any{}},
			ServerInfo:      s.info,
		}))
	case "ping":
		s.respond(sess, NewResultResponse(req.ID, struct{}{}))
	case "tools/list":
		s.respond(sess, NewResultResponse(req.ID, ListToolsResult{Tools: s.registry.Tools()}))
	case "tools/call":
		s.callTool(sess, req)
	case "notifications/initialized", "notifications/cancelled":
		// Lifecycle notifications need no reply.
	default:
		if !req.IsNotification() {
			s.respond(sess, NewErrorResponse(req.ID, CodeMethodNotFound,
				fmt.Sprintf("method %q not found", req.Method), nil))
		}
	}
}

func (s *Server) callTool(sess *Session, req Request) {
	var params CallToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		s.respond(sess, NewErrorResponse(req.ID, CodeInvalidParams, "malformed tools/call params", nil))
		return
	}

	s.logger.Info("tool call", "session_id", sess.ID, "tool", params.Name, "request_id", req.ID)

	result, err := s.registry.Call(sess.Context(), params.Name, params.Arguments)
	if err != nil {
		s.respond(sess, s.toolErrorResponse(req.ID, params.Name, err))
		return
	}

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		s.respond(sess, NewErrorResponse(req.ID, CodeInternalError, "failed to encode tool result", nil))
		return
	}
	s.respond(sess, NewResultResponse(req.ID, NewTextResult(string(payload))))
}

// toolErrorResponse splits failures the way MCP clients expect: schema and
// addressing problems become protocol errors, while provider and handler
// failures become tool results flagged IsError so the model can read them.
func (s *Server) toolErrorResponse(id any, tool string, err error) Response {
	code := apperr.CodeOf(err)
	switch code {
	case apperr.CodeUnknownTool, apperr.CodeMissingParameter, apperr.CodeInvalidParameter:
		return NewErrorResponse(id, CodeInvalidParams, err.Error(), code)
	default:
		s.logger.Warn("tool call failed", "tool", tool, "code", code, "error", err)
		return NewResultResponse(id, NewErrorResult(fmt.Sprintf("%s: %s", code, err.Error())))
	}
}

func (s *Server) respond(sess *Session, resp Response) {
	if !sess.SendResponse(resp) {
		s.logger.Debug("response dropped, session closed", "session_id", sess.ID, "request_id", resp.ID)
	}
}

func writeEvent(w *bufio.Writer, name string, data []byte) error {
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data); err != nil {
		return err
	}
	return w.Flush()
}
