package services

import (
	"context"
	"strings"

	"github.com/salucol/ips-admin-core/internal/domain/entities"
	"github.com/salucol/ips-admin-core/internal/infrastructure/observability"
	apperrors "github.com/salucol/ips-admin-core/pkg/errors"
)

// reminderTemplate is the pre-approved WhatsApp template for appointment
// reminders: {{1}} patient name, {{2}} date, {{3}} time
const (
	reminderTemplate = "recordatorio_cita"
	reminderLanguage = "es_CO"
)

// MessageSender delivers patient-facing messages
type MessageSender interface {
	SendTemplate(ctx context.Context, to, templateName, languageCode string, parameters []string) (string, error)
}

// ReminderService sends appointment reminders to patients
type ReminderService struct {
	sender MessageSender
}

// NewReminderService creates a new reminder service
func NewReminderService(sender MessageSender) *ReminderService {
	return &ReminderService{sender: sender}
}

// SendAppointmentReminder messages the patient about an upcoming
// appointment. Cancelled appointments are never reminded.
func (s *ReminderService) SendAppointmentReminder(ctx context.Context, appointment *entities.Appointment, patient *entities.Patient) (string, error) {
	if strings.TrimSpace(patient.Phone) == "" {
		return "", apperrors.NewValidationError(0, "patient has no phone number", nil)
	}
	if appointment.Status == entities.AppointmentStatusCancelled {
		return "", apperrors.NewValidationError(0, "appointment is cancelled", nil)
	}

	name := strings.TrimSpace(patient.FirstName + " " + patient.LastName)
	messageID, err := s.sender.SendTemplate(ctx, patient.Phone, reminderTemplate, reminderLanguage, []string{
		name,
		appointment.ScheduledAt.Format("02/01/2006"),
		appointment.ScheduledAt.Format("3:04 PM"),
	})
	if err != nil {
		return "", err
	}

	observability.LoggerFromContext(ctx).Info().
		Str("appointment_id", appointment.ID).
		Str("message_id", messageID).
		Msg("appointment reminder sent")
	return messageID, nil
}
