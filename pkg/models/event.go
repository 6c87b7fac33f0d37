package models

// EventType discriminates the tagged-union NDJSON stream events of spec.md
// §6. Grounded on teacher's pkg/events/payloads.go idiom of one struct per
// event shape, here unified behind a single envelope since every event on
// this wire shares one line-oriented NDJSON stream (not a pub/sub channel
// with heterogeneous payload registration like teacher's WebSocket events).
type EventType string

const (
	EventProgress EventType = "progress"
	EventClaim    EventType = "claim"
	EventError    EventType = "error"
	EventDone     EventType = "done"
)

// StreamEvent is one NDJSON line emitted by the Stream Orchestrator.
type StreamEvent struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
}

// ProgressPayload is the payload of a "progress" event.
type ProgressPayload struct {
	Phase     Phase `json:"phase"`
	Processed int   `json:"processed"`
	Total     int   `json:"total"`
	TS        int64 `json:"ts"`
}

// ErrorPayload is the payload of an "error" event.
type ErrorPayload struct {
	Message string `json:"message"`
}

// emptyPayload is the payload of a "done" event — an empty JSON object.
type emptyPayload struct{}

// DoneEvent builds the terminal "done" event.
func DoneEvent() StreamEvent {
	return StreamEvent{Type: EventDone, Payload: emptyPayload{}}
}

// ErrorEvent builds an "error" event with the given message.
func ErrorEvent(message string) StreamEvent {
	return StreamEvent{Type: EventError, Payload: ErrorPayload{Message: message}}
}

// ProgressEvent builds a "progress" event.
func ProgressEvent(phase Phase, processed, total int, ts int64) StreamEvent {
	return StreamEvent{Type: EventProgress, Payload: ProgressPayload{
		Phase: phase, Processed: processed, Total: total, TS: ts,
	}}
}

// ClaimEvent builds a "claim" event.
func ClaimEvent(claim Claim) StreamEvent {
	return StreamEvent{Type: EventClaim, Payload: claim}
}
