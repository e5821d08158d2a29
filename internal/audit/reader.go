package audit

import (
	"context"
	"time"

	"github.com/BruksfildServices01/petcare-scheduler/internal/models"
)

type Filter struct {
	Action string
	Entity string
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// Reader pages through the audit trail, newest first.
type Reader interface {
	ListAudit(ctx context.Context, f Filter) ([]models.AuditLog, int64, error)
}
