package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"i4e-backend/internal/pipeline"
	"i4e-backend/internal/pkg/jwt"
	"i4e-backend/internal/pkg/logger"

	"github.com/gofiber/fiber/v3"
)

func waitForClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", n, h.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNotifier_DeliversToUploaderOnly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(logger.Nop())
	go hub.Run(ctx)

	mine := &Client{hub: hub, send: make(chan []byte, 1), userID: 7}
	other := &Client{hub: hub, send: make(chan []byte, 1), userID: 8}
	hub.Register(mine)
	hub.Register(other)
	waitForClients(t, hub, 2)

	n := NewNotifier(hub)
	n.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	n.Notify(pipeline.ProgressEvent{Type: pipeline.EventCareerIngested, UploadID: "u-1", UserID: 7, Row: 2, CareerID: 11, CareerName: "Pilot"})

	select {
	case raw := <-mine.send:
		var got map[string]any
		if err := json.Unmarshal(raw, &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got["type"] != "career_ingested" || got["careerName"] != "Pilot" || got["timestamp"] != "2026-01-02T03:04:05Z" {
			t.Fatalf("unexpected event %v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("event not delivered")
	}

	select {
	case raw := <-other.send:
		t.Fatalf("other user received %s", raw)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_ClosesClientsOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(logger.Nop())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	c := &Client{hub: hub, send: make(chan []byte, 1), userID: 1}
	hub.Register(c)
	waitForClients(t, hub, 1)

	cancel()
	<-done
	if _, ok := <-c.send; ok {
		t.Fatalf("send channel should be closed")
	}
	if hub.ClientCount() != 0 {
		t.Fatalf("expected no clients after shutdown")
	}
}

func TestHandleIngestWS_RequiresAccessToken(t *testing.T) {
	tokens := jwt.NewHMACService("a", "r", time.Minute, time.Hour)
	h := NewHandler(NewHub(logger.Nop()), tokens, logger.Nop())

	app := fiber.New()
	app.Get("/ws/ingest", h.HandleIngestWS)

	refresh, err := tokens.GenerateRefreshToken(5)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	for _, target := range []string{"/ws/ingest", "/ws/ingest?token=garbage", "/ws/ingest?token=" + refresh} {
		resp, err := app.Test(httptest.NewRequest("GET", target, nil))
		if err != nil {
			t.Fatalf("request %s: %v", target, err)
		}
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", target, resp.StatusCode)
		}
	}
}
