package amqp

import (
	"testing"
)

func TestExportMessageRoundTrip(t *testing.T) {
	msg := NewExportMessage("2025-08-01", "2025-08-31", "acc1")

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	got, err := ExportMessageFromJSON(data)
	if err != nil {
		t.Fatalf("ExportMessageFromJSON() error = %v", err)
	}
	if got.From != msg.From || got.To != msg.To || got.AccountID != msg.AccountID {
		t.Errorf("round trip = %+v, want %+v", got, msg)
	}
	if got.Timestamp.IsZero() {
		t.Error("timestamp lost in round trip")
	}
}

func TestExportMessageFromJSONRejectsGarbage(t *testing.T) {
	if _, err := ExportMessageFromJSON([]byte("not json")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
