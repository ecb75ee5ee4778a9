package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/salucol/ips-admin-core/internal/domain/entities"
	"github.com/salucol/ips-admin-core/internal/domain/scheduling"
	"github.com/salucol/ips-admin-core/internal/infrastructure/clients/ipsapi"
	apperrors "github.com/salucol/ips-admin-core/pkg/errors"
)

// AppointmentService wraps the appointments microservice and enforces the
// status machine locally before any update reaches the backend
type AppointmentService struct {
	client ipsapi.Client
	slots  *scheduling.SlotCalculator
}

// NewAppointmentService creates a new appointment service
func NewAppointmentService(client ipsapi.Client, slots *scheduling.SlotCalculator) *AppointmentService {
	if slots == nil {
		slots = scheduling.NewSlotCalculator(0, 0)
	}
	return &AppointmentService{
		client: client,
		slots:  slots,
	}
}

// DayAgenda returns a provider's appointments for one calendar day, with
// statuses normalized to their canonical values
func (s *AppointmentService) DayAgenda(ctx context.Context, providerID string, day time.Time) ([]entities.Appointment, error) {
	if strings.TrimSpace(providerID) == "" {
		return nil, apperrors.NewValidationError(0, "provider id is required", nil)
	}

	path := fmt.Sprintf("/appointments?provider_id=%s&date=%s",
		url.QueryEscape(providerID), day.Format("2006-01-02"))

	var appointments []entities.Appointment
	if err := s.client.Get(ctx, path, &appointments); err != nil {
		return nil, err
	}

	for i := range appointments {
		appointments[i].Status = scheduling.Normalize(string(appointments[i].Status))
	}
	return appointments, nil
}

// Create books a new appointment; every appointment starts out scheduled
func (s *AppointmentService) Create(ctx context.Context, appointment *entities.Appointment) error {
	if strings.TrimSpace(appointment.PatientID) == "" {
		return apperrors.NewValidationError(0, "patient id is required", nil)
	}
	if strings.TrimSpace(appointment.ProviderID) == "" {
		return apperrors.NewValidationError(0, "provider id is required", nil)
	}
	if appointment.ScheduledAt.IsZero() {
		return apperrors.NewValidationError(0, "scheduled time is required", nil)
	}

	appointment.Status = scheduling.InitialStatus
	return s.client.Post(ctx, "/appointments", appointment, appointment)
}

// AvailableActions returns the statuses the appointment may move to, for
// the caller's permission level
func (s *AppointmentService) AvailableActions(appointment *entities.Appointment, canMarkAttended bool) []entities.AppointmentStatus {
	return scheduling.AvailableTransitions(appointment.Status, canMarkAttended)
}

// UpdateStatus validates the transition locally and persists it through the
// backend. Illegal transitions never leave the process.
func (s *AppointmentService) UpdateStatus(ctx context.Context, appointment *entities.Appointment, target entities.AppointmentStatus, canMarkAttended bool) error {
	current := scheduling.Normalize(string(appointment.Status))
	if !scheduling.CanTransition(current, target, canMarkAttended) {
		return apperrors.NewValidationError(0,
			fmt.Sprintf("appointment cannot move from %s to %s", current, target), nil)
	}

	var updated entities.Appointment
	err := s.client.Patch(ctx, "/appointments/"+url.PathEscape(appointment.ID)+"/status",
		map[string]string{"status": string(target)}, &updated)
	if err != nil {
		return err
	}

	updated.Status = scheduling.Normalize(string(updated.Status))
	*appointment = updated
	return nil
}

// AvailableSlots computes the bookable slots of a provider's day from the
// appointments already on the agenda. Cancelled appointments do not occupy
// their slot.
func (s *AppointmentService) AvailableSlots(ctx context.Context, providerID string, day time.Time) ([]entities.TimeSlot, error) {
	agenda, err := s.DayAgenda(ctx, providerID, day)
	if err != nil {
		return nil, err
	}

	booked := make([]entities.Appointment, 0, len(agenda))
	for _, appointment := range agenda {
		if appointment.Status == entities.AppointmentStatusCancelled {
			continue
		}
		booked = append(booked, appointment)
	}

	return s.slots.ComputeSlots(day, booked), nil
}
