package amqp

import (
	"testing"
	"time"
)

func TestNewAnalysisCompletedMessage(t *testing.T) {
	msg := NewAnalysisCompletedMessage("sess_1", "FULANO", "014.642-0 C", 42, 7, 85, "1.234,56")

	if msg.SessionID != "sess_1" || msg.Matricula != "014.642-0 C" {
		t.Fatalf("identity fields wrong: %+v", msg)
	}
	if msg.ItemCount != 42 || msg.SelectedCount != 7 || msg.Threshold != 85 {
		t.Fatalf("count fields wrong: %+v", msg)
	}
	if msg.Timestamp.IsZero() || time.Since(msg.Timestamp) > time.Second {
		t.Fatalf("timestamp not recent: %v", msg.Timestamp)
	}
}

func TestAnalysisCompletedMessageJSONRoundTrip(t *testing.T) {
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	msg := &AnalysisCompletedMessage{
		SessionID: "sess_2",
		Name:      "FULANO DE TAL",
		Matricula: "014.642-0 C",
		ItemCount: 3,
		Indebito:  "-70,00",
		Timestamp: ts,
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	parsed, err := AnalysisCompletedMessageFromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if parsed.SessionID != msg.SessionID || parsed.Indebito != msg.Indebito {
		t.Fatalf("round trip mismatch: %+v", parsed)
	}
	if !parsed.Timestamp.Equal(ts) {
		t.Fatalf("timestamp mismatch: %v", parsed.Timestamp)
	}
}

func TestAnalysisCompletedMessageInvalidJSON(t *testing.T) {
	if _, err := AnalysisCompletedMessageFromJSON([]byte(`{"item_count": "x"}`)); err == nil {
		t.Fatal("invalid JSON must fail")
	}
}
