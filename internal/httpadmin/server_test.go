package httpadmin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/halcyonlabs/concierge/internal/audit"
	"github.com/halcyonlabs/concierge/internal/config"
	"github.com/halcyonlabs/concierge/internal/ticket"
)

type fakeStatus struct {
	connected bool
	tickets   []ticket.Ticket
	err       error
}

func (f *fakeStatus) Connected() bool { return f.connected }

func (f *fakeStatus) OpenTickets(string) ([]ticket.Ticket, error) {
	return f.tickets, f.err
}

func testServer(status *fakeStatus, archive audit.Archive) *Server {
	return New(config.Config{}, status, archive, audit.NewBroadcaster())
}

func TestHealthReportsConnection(t *testing.T) {
	srv := testServer(&fakeStatus{connected: true}, audit.NewInMemoryArchive())

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["connected"] != true {
		t.Fatalf("connected = %v, want true", body["connected"])
	}
}

func TestListTicketsRequiresGuildID(t *testing.T) {
	srv := testServer(&fakeStatus{}, audit.NewInMemoryArchive())

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/tickets", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestListTickets(t *testing.T) {
	status := &fakeStatus{tickets: []ticket.Ticket{
		{ChannelID: "c1", Name: "ticket-alice", OwnerID: "42"},
	}}
	srv := testServer(status, audit.NewInMemoryArchive())

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/tickets?guild_id=g1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Tickets []ticket.Ticket `json:"tickets"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Tickets) != 1 || body.Tickets[0].OwnerID != "42" {
		t.Fatalf("tickets = %+v, want one ticket owned by 42", body.Tickets)
	}
}

func TestListTicketsGatewayError(t *testing.T) {
	srv := testServer(&fakeStatus{err: errors.New("rate limited")}, audit.NewInMemoryArchive())

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/tickets?guild_id=g1", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestListAuditEvents(t *testing.T) {
	archive := audit.NewInMemoryArchive()
	_ = archive.Record(context.Background(), audit.Event{ID: "e1", Kind: audit.KindTicketCreated})
	srv := testServer(&fakeStatus{}, archive)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/audit/events?limit=10", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Events []audit.Event `json:"events"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Events) != 1 || body.Events[0].ID != "e1" {
		t.Fatalf("events = %+v, want [e1]", body.Events)
	}
}

func TestListAuditEventsRejectsBadLimit(t *testing.T) {
	srv := testServer(&fakeStatus{}, audit.NewInMemoryArchive())

	for _, q := range []string{"limit=0", "limit=-3", "limit=abc"} {
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/audit/events?"+q, nil))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status for %q = %d, want 400", q, rec.Code)
		}
	}
}
