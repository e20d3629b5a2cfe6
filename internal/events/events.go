package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Type names a kind of clinic change.
type Type string

// Change types emitted by the clinic service
const (
	DirectoryAdded       Type = "directory.added"
	MedicineAdded        Type = "medicine.added"
	MedicinePurchased    Type = "medicine.purchased"
	MedicineDispensed    Type = "medicine.dispensed"
	ThresholdChanged     Type = "medicine.threshold_changed"
	PriceChanged         Type = "medicine.price_changed"
	AppointmentAdded     Type = "appointment.added"
	AppointmentDeleted   Type = "appointment.deleted"
	ReminderAdded        Type = "reminder.added"
	ReminderDeleted      Type = "reminder.deleted"
	ConsultationRecorded Type = "consultation.recorded"
	FeeChanged           Type = "consultation.fee_changed"
	StateRestored        Type = "state.restored"
)

// ChangeEvent describes one committed change to clinic state.
type ChangeEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type says which operation produced the event
	Type Type `json:"type"`

	// Payload is the operation's result serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into v.
func (e *ChangeEvent) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewChangeEvent creates a ChangeEvent of the given type, serializing payload to JSON.
func NewChangeEvent(eventType Type, payload any, createdAt time.Time) (*ChangeEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &ChangeEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: createdAt,
	}, nil
}

// EventHandler defines an interface for components that react to changes.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *ChangeEvent) error
}

// EventEmitter defines an interface for components that publish changes.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *ChangeEvent) error
}

// HandlerFunc adapts an ordinary function to the EventHandler interface.
type HandlerFunc func(ctx context.Context, event *ChangeEvent) error

// HandleEvent implements EventHandler.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *ChangeEvent) error {
	return f(ctx, event)
}

// NopEmitter discards every event.
type NopEmitter struct{}

// EmitEvent implements EventEmitter.
func (NopEmitter) EmitEvent(context.Context, *ChangeEvent) error { return nil }
