package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ExportRequestMessage asks the export worker to aggregate a report and
// write it to the spreadsheet. The range is already resolved: Start and
// End are exact inclusive instants.
type ExportRequestMessage struct {
	RequestID  string    `json:"request_id"`
	OwnerID    string    `json:"owner_id"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	ReportType string    `json:"report_type"`
	CategoryID *int64    `json:"category_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewExportRequestMessage creates a message stamped with the current time.
func NewExportRequestMessage(requestID, ownerID string, start, end time.Time, reportType string, categoryID *int64) *ExportRequestMessage {
	return &ExportRequestMessage{
		RequestID:  requestID,
		OwnerID:    ownerID,
		Start:      start,
		End:        end,
		ReportType: reportType,
		CategoryID: categoryID,
		Timestamp:  time.Now(),
	}
}

// Validate rejects messages the worker could never process.
func (m *ExportRequestMessage) Validate() error {
	if m.OwnerID == "" {
		return errors.New("missing owner_id")
	}
	if m.Start.IsZero() || m.End.IsZero() {
		return errors.New("missing range")
	}
	if m.Start.After(m.End) {
		return fmt.Errorf("start %s after end %s", m.Start.Format(time.RFC3339), m.End.Format(time.RFC3339))
	}
	switch m.ReportType {
	case "incomes", "expenses", "all":
	default:
		return fmt.Errorf("invalid report_type %q", m.ReportType)
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *ExportRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExportRequestMessageFromJSON decodes and validates a message.
func ExportRequestMessageFromJSON(data []byte) (*ExportRequestMessage, error) {
	var msg ExportRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid export request: %w", err)
	}
	return &msg, nil
}
