package audit

import (
	"context"
	"encoding/json"

	"github.com/BruksfildServices01/petcare-scheduler/internal/models"
)

// Sink persists audit rows (gorm table or in-memory store).
type Sink interface {
	WriteAudit(ctx context.Context, entry models.AuditLog) error
}

type Logger struct {
	sink Sink
}

func New(sink Sink) *Logger {
	return &Logger{sink: sink}
}

func (l *Logger) Log(ctx context.Context, ev Event) error {
	var metaJSON string
	if ev.Metadata != nil {
		if b, err := json.Marshal(ev.Metadata); err == nil {
			metaJSON = string(b)
		}
	}

	entry := models.AuditLog{
		ActorID:   ev.ActorID,
		RequestID: ev.RequestID,
		Action:    ev.Action,
		Entity:    ev.Entity,
		EntityID:  ev.EntityID,
		Metadata:  metaJSON,
	}

	return l.sink.WriteAudit(ctx, entry)
}
