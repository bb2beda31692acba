package mq

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDecodeMessage_RoundTrip(t *testing.T) {
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	msg := newMessage(MessageTypeOutcomeRecorded, OutcomeRecordedPayload{
		TaskGroupID: "group-1",
		ItemID:      "item-1",
		Status:      "success",
		Input:       json.RawMessage(`{"order_id":"abc"}`),
		Transformed: json.RawMessage(`{}`),
	}, at)

	body, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	decoded, err := DecodeMessage(body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.ID != msg.ID || decoded.Type != MessageTypeOutcomeRecorded {
		t.Errorf("envelope mismatch: %+v", decoded)
	}
	if !decoded.Timestamp.Equal(at) {
		t.Errorf("expected %v, got %v", at, decoded.Timestamp)
	}

	payload, err := ParsePayload[OutcomeRecordedPayload](decoded)
	if err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	if payload.TaskGroupID != "group-1" || payload.Status != "success" {
		t.Errorf("payload mismatch: %+v", payload)
	}
	if string(payload.Input) != `{"order_id":"abc"}` {
		t.Errorf("input should be kept verbatim, got %s", payload.Input)
	}
}

func TestDecodeMessage_Invalid(t *testing.T) {
	if _, err := DecodeMessage([]byte("not json")); err == nil {
		t.Error("expected error for invalid body")
	}
}

func TestParsePayload_FromValue(t *testing.T) {
	msg := newMessage(MessageTypeRunCompleted, RunCompletedPayload{TaskGroupID: "g", Items: 3}, time.Now())

	payload, err := ParsePayload[RunCompletedPayload](msg)
	if err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	if payload.Items != 3 {
		t.Errorf("expected 3 items, got %d", payload.Items)
	}
}

func TestQueueFor(t *testing.T) {
	tests := []struct {
		msgType MessageType
		want    Queue
		ok      bool
	}{
		{MessageTypeOutcomeRecorded, QueueOutcomesRecorded, true},
		{MessageTypeRunCompleted, QueueRunsCompleted, true},
		{"unknown", "", false},
	}

	for _, tt := range tests {
		got, ok := QueueFor(tt.msgType)
		if got != tt.want || ok != tt.ok {
			t.Errorf("QueueFor(%q) = %q, %v; want %q, %v", tt.msgType, got, ok, tt.want, tt.ok)
		}
	}
}

func TestTopology_EveryQueueBound(t *testing.T) {
	seen := make(map[Queue]bool)
	for _, q := range topology() {
		if q.exchange == "" || q.routingKey == "" {
			t.Errorf("queue %s has no binding", q.name)
		}
		seen[q.name] = true
	}

	for _, q := range []Queue{QueueOutcomesRecorded, QueueRunsCompleted, QueueDLQOutcomes} {
		if !seen[q] {
			t.Errorf("queue %s is not declared", q)
		}
	}
}
