package ws

import (
	"encoding/json"
	"time"

	"i4e-backend/internal/pipeline"
)

type ingestEvent struct {
	pipeline.ProgressEvent
	Timestamp string `json:"timestamp"`
}

// Notifier pushes ingestion progress to the uploading user's connections.
type Notifier struct {
	hub *Hub
	now func() time.Time
}

func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub, now: time.Now}
}

func (n *Notifier) Notify(ev pipeline.ProgressEvent) {
	if n == nil || n.hub == nil || ev.UserID <= 0 {
		return
	}
	b, err := json.Marshal(ingestEvent{ProgressEvent: ev, Timestamp: n.now().UTC().Format(time.RFC3339)})
	if err != nil {
		return
	}
	n.hub.Send(ev.UserID, b)
}
