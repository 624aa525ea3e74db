package httpadmin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/halcyonlabs/concierge/internal/audit"
	"github.com/halcyonlabs/concierge/internal/config"
	"github.com/halcyonlabs/concierge/internal/observability"
	"github.com/halcyonlabs/concierge/internal/ticket"
)

// Status exposes the bot's connection state to the admin surface.
type Status interface {
	Connected() bool
	OpenTickets(guildID string) ([]ticket.Ticket, error)
}

// Server is the read-only operator API: health, metrics, open tickets,
// audit history and a websocket live tail of audit events.
type Server struct {
	cfg      config.Config
	status   Status
	archive  audit.Archive
	stream   *audit.Broadcaster
	upgrader websocket.Upgrader
}

func New(cfg config.Config, status Status, archive audit.Archive, stream *audit.Broadcaster) *Server {
	return &Server{
		cfg:     cfg,
		status:  status,
		archive: archive,
		stream:  stream,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Only same-origin browser connections unless explicitly
				// opened up; non-browser clients omit Origin and pass.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Get("/v1/tickets", s.handleListTickets)
	r.Get("/v1/audit/events", s.handleListAuditEvents)
	r.Get("/v1/audit/ws", s.handleAuditWS)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"connected": s.status != nil && s.status.Connected(),
	})
}

func (s *Server) handleListTickets(w http.ResponseWriter, r *http.Request) {
	guildID := strings.TrimSpace(r.URL.Query().Get("guild_id"))
	if guildID == "" {
		respondError(w, http.StatusBadRequest, "missing_guild_id", "query parameter guild_id is required")
		return
	}
	if s.status == nil {
		respondError(w, http.StatusServiceUnavailable, "unavailable", "bot not running")
		return
	}

	tickets, err := s.status.OpenTickets(guildID)
	if err != nil {
		respondError(w, http.StatusBadGateway, "gateway_error", err.Error())
		return
	}
	if tickets == nil {
		tickets = []ticket.Ticket{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"tickets": tickets})
}

func (s *Server) handleListAuditEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = n
	}

	events, err := s.archive.Recent(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "archive_error", err.Error())
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (s *Server) handleAuditWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	sub, cancel := s.stream.Subscribe()
	defer cancel()

	ctx, ctxCancel := context.WithCancel(r.Context())
	defer ctxCancel()

	// Drain reads so we notice the client going away.
	go func() {
		defer ctxCancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-sub:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(e); err != nil {
				return
			}
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
