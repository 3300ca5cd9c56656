package amqp

import (
	"encoding/json"
	"time"
)

// ExportMessage asks the export worker to push one date range of
// transactions to the spreadsheet. The worker fetches the transactions
// itself, so the message stays small.
type ExportMessage struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	AccountID string    `json:"accountId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExportMessage(from, to, accountID string) *ExportMessage {
	return &ExportMessage{
		From:      from,
		To:        to,
		AccountID: accountID,
		Timestamp: time.Now(),
	}
}

func (m *ExportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExportMessageFromJSON(data []byte) (*ExportMessage, error) {
	var msg ExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
