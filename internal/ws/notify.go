package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"jobhunter/internal/domain/submission"
)

// StatusEvent is pushed to every connected client whenever a
// submission changes state.
type StatusEvent struct {
	Type         string `json:"type"`
	SubmissionID string `json:"submissionId"`
	Status       string `json:"status"`
	Error        string `json:"error,omitempty"`
	Timestamp    string `json:"timestamp"`
}

// Notifier broadcasts submission transitions over the hub. A nil
// Notifier is a no-op so callers need no wiring in batch mode.
type Notifier struct {
	hub *Hub
}

func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub}
}

func (n *Notifier) SubmissionStatusChanged(id uuid.UUID, status submission.Status, errMsg string) {
	if n == nil || n.hub == nil {
		return
	}
	evt := StatusEvent{
		Type:         "submission_status",
		SubmissionID: id.String(),
		Status:       string(status),
		Error:        errMsg,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}
	n.hub.Broadcast(b)
}
