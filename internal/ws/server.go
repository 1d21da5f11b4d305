package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	authWait     = 5 * time.Second
	maxBodyBytes = 64 << 10
)

// Engine is the monitoring backend the server exposes.
type Engine interface {
	Start() (sessionID string, err error)
	Stop() error
	VoiceCommand(command string) (response string, err error)
	// Frame returns the current camera frame as a data URL. ok is false
	// while no session is running.
	Frame() (data string, ok bool)
}

// StatusError is implemented by engine errors that map to an HTTP status.
type StatusError interface {
	error
	StatusCode() int
}

type Server struct {
	engine         Engine
	broadcaster    *Broadcaster
	allowedOrigins map[string]bool
	allowedHosts   map[string]bool
	authToken      string
}

func NewServer(engine Engine, broadcaster *Broadcaster, allowedOrigins []string, authToken string) *Server {
	s := &Server{
		engine:         engine,
		broadcaster:    broadcaster,
		allowedOrigins: make(map[string]bool),
		allowedHosts:   make(map[string]bool),
		authToken:      authToken,
	}

	for _, origin := range allowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		s.allowedOrigins[trimmed] = true
		if parsed, err := url.Parse(trimmed); err == nil && parsed.Host != "" {
			s.allowedHosts[parsed.Host] = true
		}
	}

	return s
}

func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("POST /api/session/start", s.handleStart)
	mux.HandleFunc("POST /api/session/stop", s.handleStop)
	mux.HandleFunc("POST /api/voice/command", s.handleVoiceCommand)
}

// Handler returns the routed server wrapped in the standard headers.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	return securityHeaders(mux)
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-XSS-Protection", "1; mode=block")
		h.Set("Content-Security-Policy", "default-src 'self'")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: s.checkOrigin,
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade error", "err", err)
		return
	}
	conn.SetReadLimit(maxBodyBytes)

	// Clients that did not authenticate on the upgrade request must send an
	// auth message first.
	if !s.authorize(r) && !s.awaitAuth(conn) {
		slog.Warn("ws client failed auth", "remote", r.RemoteAddr)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unauthorized"),
			time.Now().Add(time.Second))
		conn.Close()
		return
	}

	c, err := s.broadcaster.AddClient(conn)
	if err != nil {
		slog.Warn("ws client rejected", "remote", r.RemoteAddr, "err", err)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()),
			time.Now().Add(time.Second))
		conn.Close()
		return
	}
	slog.Info("ws client connected", "remote", r.RemoteAddr)

	go func() {
		defer func() {
			s.broadcaster.RemoveClient(c)
			slog.Info("ws client disconnected", "remote", r.RemoteAddr)
		}()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var msg inboundMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				slog.Debug("ws bad request", "remote", r.RemoteAddr, "err", err)
				continue
			}
			s.handleRequest(c, msg)
		}
	}()
}

func (s *Server) awaitAuth(conn *websocket.Conn) bool {
	conn.SetReadDeadline(time.Now().Add(authWait))
	defer conn.SetReadDeadline(time.Time{})

	var msg inboundMessage
	if err := conn.ReadJSON(&msg); err != nil {
		return false
	}
	return msg.Type == MsgAuth && msg.Token == s.authToken
}

func (s *Server) handleRequest(c *client, msg inboundMessage) {
	switch msg.Type {
	case MsgGetFrame:
		if data, ok := s.engine.Frame(); ok {
			s.broadcaster.SendTo(c, MsgFrame, FramePayload{Data: data})
		}
	case MsgAuth:
	default:
		slog.Debug("ws unknown request", "type", string(msg.Type))
	}
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(r) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := s.engine.Start()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{Success: true, SessionID: id})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(r) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := s.engine.Stop(); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{Success: true})
}

func (s *Server) handleVoiceCommand(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(r) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req VoiceCommandRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := s.engine.VoiceCommand(strings.ToLower(req.Command))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, VoiceCommandResponse{Success: true, Response: resp})
}

func writeEngineError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var se StatusError
	if errors.As(err, &se) {
		status = se.StatusCode()
	}
	writeError(w, status, err.Error())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("write response failed", "err", err)
	}
}

func (s *Server) authorize(r *http.Request) bool {
	if s.authToken == "" {
		return true
	}

	if r.URL.Query().Get("token") == s.authToken {
		return true
	}

	if r.Header.Get("X-Sightline-Token") == s.authToken {
		return true
	}

	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.authToken {
		return true
	}

	return false
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	if len(s.allowedOrigins) > 0 {
		if s.allowedOrigins[origin] {
			return true
		}
		if parsed, err := url.Parse(origin); err == nil && parsed.Host != "" {
			return s.allowedHosts[parsed.Host]
		}
		return false
	}

	parsed, err := url.Parse(origin)
	if err != nil {
		return false
	}

	host := parsed.Host
	if host == "" {
		return false
	}

	if host == r.Host {
		return true
	}

	switch parsed.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

// NewHTTPServer binds h to host:port.
func NewHTTPServer(host string, port int, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", host, port),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
