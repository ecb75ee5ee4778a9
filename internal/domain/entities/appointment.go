package entities

import (
	"time"
)

// AppointmentStatus represents the lifecycle status of an appointment.
// Transitions between statuses are governed by the scheduling package.
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusInRoom    AppointmentStatus = "in_room"
	AppointmentStatusAttended  AppointmentStatus = "attended"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"

	// AppointmentStatusUnknown marks a server-provided status string the
	// console does not recognize. It has no transitions; callers must
	// surface it instead of treating it as a legitimate state.
	AppointmentStatusUnknown AppointmentStatus = "unknown"
)

// Appointment represents a scheduled appointment
type Appointment struct {
	ID          string            `json:"id"`
	PatientID   string            `json:"patient_id"`
	ProviderID  string            `json:"provider_id"`
	ScheduledAt time.Time         `json:"scheduled_at"`
	Status      AppointmentStatus `json:"status"`
	Reason      string            `json:"reason,omitempty"`
	Notes       string            `json:"notes,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// TimeSlot is a bookable start time within a provider's daily agenda.
// Derived per request, never persisted.
type TimeSlot struct {
	Time      string `json:"time"`
	Label     string `json:"label"`
	Available bool   `json:"available"`
}
