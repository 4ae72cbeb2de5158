package memory

import (
	"context"
	"testing"
	"time"

	ports "contracheques/internal/sheets"
)

func TestAppendAudit(t *testing.T) {
	s := New()
	ctx := context.Background()

	ref, err := s.AppendAudit(ctx, ports.AuditEntry{
		When:      time.Now(),
		SessionID: "sess_1",
		Matricula: "014.642-0 C",
		Indebito:  "100,00",
	})
	if err != nil {
		t.Fatalf("AppendAudit: %v", err)
	}
	if ref != "row-1" {
		t.Fatalf("ref = %q", ref)
	}

	if _, err := s.AppendAudit(ctx, ports.AuditEntry{SessionID: "sess_2"}); err != nil {
		t.Fatalf("AppendAudit: %v", err)
	}

	entries := s.Entries()
	if len(entries) != 2 || entries[1].SessionID != "sess_2" {
		t.Fatalf("entries = %+v", entries)
	}
}
