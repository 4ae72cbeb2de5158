// Package sheets defines the outbound port for the analysis audit log.
package sheets

import (
	"context"
	"time"
)

// AuditEntry is one completed-analysis record appended to the log.
type AuditEntry struct {
	When          time.Time
	SessionID     string
	Name          string
	Matricula     string
	ItemCount     int
	SelectedCount int
	Threshold     int
	Indebito      string
}

// AuditWriter appends completed-analysis records to a log.
type AuditWriter interface {
	AppendAudit(ctx context.Context, e AuditEntry) (rowRef string, err error)
}
