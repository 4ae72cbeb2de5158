package amqp

import (
	"encoding/json"
	"time"
)

// AnalysisCompletedMessage is published after a final report is
// generated. It carries only the audit summary, never the line items:
// the audit log records that an analysis happened and its outcome.
type AnalysisCompletedMessage struct {
	SessionID     string    `json:"session_id"`
	Name          string    `json:"name"`
	Matricula     string    `json:"matricula"`
	ItemCount     int       `json:"item_count"`
	SelectedCount int       `json:"selected_count"`
	Threshold     int       `json:"threshold"`
	Indebito      string    `json:"indebito"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewAnalysisCompletedMessage(sessionID, name, matricula string, itemCount, selectedCount, threshold int, indebito string) *AnalysisCompletedMessage {
	return &AnalysisCompletedMessage{
		SessionID:     sessionID,
		Name:          name,
		Matricula:     matricula,
		ItemCount:     itemCount,
		SelectedCount: selectedCount,
		Threshold:     threshold,
		Indebito:      indebito,
		Timestamp:     time.Now(),
	}
}

func (m *AnalysisCompletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func AnalysisCompletedMessageFromJSON(data []byte) (*AnalysisCompletedMessage, error) {
	var msg AnalysisCompletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
