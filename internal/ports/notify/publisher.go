package notify

import (
	"context"
	"time"
)

type EventType string

const (
	EventAccessRequestCreated  EventType = "access_request.created"
	EventAccessRequestApproved EventType = "access_request.approved"
	EventAccessRequestDenied   EventType = "access_request.denied"
)

type Event struct {
	Type       EventType `json:"type"`
	RequestID  string    `json:"request_id"`
	DoctorID   string    `json:"doctor_id"`
	PatientID  string    `json:"patient_id"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher notifica cambios del ciclo de vida de un access request.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop no publica nada (modo dev / sin broker).
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
