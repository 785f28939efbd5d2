package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/rferrer/steady/internal/metrics"
	"github.com/rferrer/steady/internal/models"
	"github.com/rferrer/steady/internal/storage"
)

// EventRecorder appends best-effort audit events. Failures are logged and
// swallowed: observability must never gate or corrupt a core state change, so
// the asymmetry with ledger writes (which fail loudly) is deliberate.
type EventRecorder struct {
	store storage.Store
}

// NewEventRecorder creates an EventRecorder over the given store.
func NewEventRecorder(store storage.Store) *EventRecorder {
	return &EventRecorder{store: store}
}

// Record appends one audit event. It never returns an error and never
// retries; a failed append increments a counter and logs at WARN.
func (r *EventRecorder) Record(ctx context.Context, eventType, roomCode, userID string, payload map[string]any) {
	if r == nil || r.store == nil {
		return
	}

	encoded := "{}"
	if len(payload) > 0 {
		b, err := json.Marshal(payload)
		if err != nil {
			slog.Warn("Audit payload not encodable", "type", eventType, "error", err)
		} else {
			encoded = string(b)
		}
	}

	event := &models.Event{
		Type:      eventType,
		RoomCode:  roomCode,
		UserID:    userID,
		Payload:   encoded,
		CreatedAt: time.Now().Unix(),
	}
	if err := r.store.AppendEvent(ctx, event); err != nil {
		metrics.AuditDropsTotal.Inc()
		slog.Warn("Audit event dropped", "type", eventType, "room", roomCode, "error", err)
	}
}
