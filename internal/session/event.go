package session

import (
	"encoding/json"
	"fmt"
)

// Kind классифицирует событие записи для диагностики.
type Kind int

const (
	// KindOther covers every event the narrator does not care about
	// (snapshots, scrolls, metadata and so on).
	KindOther Kind = iota
	KindMouseInteraction
	KindCustomSignal
)

// MouseInteraction mirrors the rrweb mouse interaction subtypes.
type MouseInteraction int

const (
	MouseUp MouseInteraction = iota
	MouseDown
	Click
	ContextMenu
	DblClick
	Focus
	Blur
	TouchStart
	TouchMoveDeparted
	TouchEnd
)

// rrweb wire constants
const (
	wireTypeIncrementalSnapshot = 3
	wireTypeCustom              = 5
	wireSourceMouseInteraction  = 2
)

// Payload carries the instrumentation data attached to a custom signal.
// Entries of ComponentStack may be empty when the recorder could not
// resolve a component name.
type Payload struct {
	URL            string   `json:"url,omitempty"`
	ComponentStack []string `json:"componentStack,omitempty"`
}

// Event is one recorded session event, reduced to what diagnosis needs.
// Events are immutable after decoding; order is significant.
type Event struct {
	Kind      Kind
	Timestamp int64

	// Mouse is valid only when Kind == KindMouseInteraction.
	Mouse MouseInteraction

	// Tag and Payload are valid only when Kind == KindCustomSignal.
	Tag     string
	Payload Payload
}

type wireEvent struct {
	Type      int             `json:"type"`
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

type wireIncrementalData struct {
	Source int `json:"source"`
	Type   int `json:"type"`
}

type wireCustomData struct {
	Tag     string  `json:"tag"`
	Payload Payload `json:"payload"`
}

// UnmarshalJSON decodes one rrweb-shaped event. Events whose shape is not
// recognized become KindOther instead of failing: the recorder vocabulary
// grows over time and unknown events must never break ingestion.
func (e *Event) UnmarshalJSON(data []byte) error {
	var we wireEvent
	if err := json.Unmarshal(data, &we); err != nil {
		return err
	}

	e.Kind = KindOther
	e.Timestamp = we.Timestamp

	switch we.Type {
	case wireTypeIncrementalSnapshot:
		var inc wireIncrementalData
		if err := json.Unmarshal(we.Data, &inc); err != nil {
			return nil
		}
		if inc.Source != wireSourceMouseInteraction {
			return nil
		}
		e.Kind = KindMouseInteraction
		e.Mouse = MouseInteraction(inc.Type)
	case wireTypeCustom:
		var cd wireCustomData
		if err := json.Unmarshal(we.Data, &cd); err != nil {
			return nil
		}
		e.Kind = KindCustomSignal
		e.Tag = cd.Tag
		e.Payload = cd.Payload
	}
	return nil
}

// Decode parses a raw JSON array of recorded events. A body that is not a
// JSON array of event objects is an ingestion failure; individual events
// with unknown shapes decode to KindOther.
func Decode(raw json.RawMessage) ([]Event, error) {
	var events []Event
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, fmt.Errorf("events must be a JSON array of session events: %w", err)
	}
	return events, nil
}
