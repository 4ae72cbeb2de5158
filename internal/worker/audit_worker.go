// Package worker turns analysis-completed events into audit log rows.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"contracheques/internal/amqp"
	"contracheques/internal/sheets"
)

// AuditWorker consumes AnalysisCompleted messages and appends them to
// the configured audit log.
type AuditWorker struct {
	log sheets.AuditWriter
}

func NewAuditWorker(log sheets.AuditWriter) *AuditWorker {
	return &AuditWorker{log: log}
}

// HandleAnalysisCompleted records a single completed analysis.
// Returning an error requeues the message.
func (w *AuditWorker) HandleAnalysisCompleted(ctx context.Context, msg *amqp.AnalysisCompletedMessage) error {
	slog.InfoContext(ctx, "Recording completed analysis",
		"session_id", msg.SessionID,
		"matricula", msg.Matricula)

	ref, err := w.log.AppendAudit(ctx, sheets.AuditEntry{
		When:          msg.Timestamp,
		SessionID:     msg.SessionID,
		Name:          msg.Name,
		Matricula:     msg.Matricula,
		ItemCount:     msg.ItemCount,
		SelectedCount: msg.SelectedCount,
		Threshold:     msg.Threshold,
		Indebito:      msg.Indebito,
	})
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}

	slog.InfoContext(ctx, "Audit entry recorded",
		"session_id", msg.SessionID,
		"sheets_ref", ref)
	return nil
}
