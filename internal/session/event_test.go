package session

import (
	"encoding/json"
	"testing"
)

func TestDecode_MouseInteraction(t *testing.T) {
	raw := json.RawMessage(`[
		{"type":3,"timestamp":100,"data":{"source":2,"type":0}},
		{"type":3,"timestamp":101,"data":{"source":2,"type":2}}
	]`)

	events, err := Decode(raw)
	if err != nil {
		t.Fatalf("Failed to decode events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}

	if events[0].Kind != KindMouseInteraction {
		t.Errorf("Expected mouse interaction, got kind %d", events[0].Kind)
	}
	if events[0].Mouse != MouseUp {
		t.Errorf("Expected MouseUp, got %d", events[0].Mouse)
	}
	if events[0].Timestamp != 100 {
		t.Errorf("Expected timestamp 100, got %d", events[0].Timestamp)
	}
	if events[1].Mouse != Click {
		t.Errorf("Expected Click, got %d", events[1].Mouse)
	}
}

func TestDecode_CustomSignal(t *testing.T) {
	raw := json.RawMessage(`[
		{"type":5,"timestamp":200,"data":{"tag":"media-load-error","payload":{"url":"x.png","componentStack":["A","B"]}}}
	]`)

	events, err := Decode(raw)
	if err != nil {
		t.Fatalf("Failed to decode events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}

	ev := events[0]
	if ev.Kind != KindCustomSignal {
		t.Fatalf("Expected custom signal, got kind %d", ev.Kind)
	}
	if ev.Tag != "media-load-error" {
		t.Errorf("Expected tag media-load-error, got %q", ev.Tag)
	}
	if ev.Payload.URL != "x.png" {
		t.Errorf("Expected url x.png, got %q", ev.Payload.URL)
	}
	if len(ev.Payload.ComponentStack) != 2 || ev.Payload.ComponentStack[0] != "A" {
		t.Errorf("Unexpected component stack: %v", ev.Payload.ComponentStack)
	}
}

func TestDecode_NullComponentStackEntry(t *testing.T) {
	raw := json.RawMessage(`[
		{"type":5,"timestamp":1,"data":{"tag":"rage-click","payload":{"componentStack":["App",null,"Button"]}}}
	]`)

	events, err := Decode(raw)
	if err != nil {
		t.Fatalf("Failed to decode events: %v", err)
	}
	stack := events[0].Payload.ComponentStack
	if len(stack) != 3 {
		t.Fatalf("Expected 3 stack entries, got %d", len(stack))
	}
	if stack[1] != "" {
		t.Errorf("Expected null entry to decode empty, got %q", stack[1])
	}
}

func TestDecode_UnknownEventsBecomeOther(t *testing.T) {
	raw := json.RawMessage(`[
		{"type":2,"timestamp":1,"data":{"node":{}}},
		{"type":3,"timestamp":2,"data":{"source":1,"positions":[]}},
		{"type":4,"timestamp":3,"data":{"href":"http://x"}},
		{"type":3,"timestamp":4,"data":"not an object"}
	]`)

	events, err := Decode(raw)
	if err != nil {
		t.Fatalf("Unknown events must never fail decoding: %v", err)
	}
	for i, ev := range events {
		if ev.Kind != KindOther {
			t.Errorf("Event %d: expected KindOther, got %d", i, ev.Kind)
		}
	}
}

func TestDecode_MalformedBody(t *testing.T) {
	cases := []string{
		`{"not":"an array"}`,
		`[1,2,3]`,
		`not json at all`,
	}
	for _, c := range cases {
		if _, err := Decode(json.RawMessage(c)); err == nil {
			t.Errorf("Expected error for body %s", c)
		}
	}
}
