package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/salucol/ips-admin-core/internal/domain/entities"
	apperrors "github.com/salucol/ips-admin-core/pkg/errors"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) SendTemplate(ctx context.Context, to, templateName, languageCode string, parameters []string) (string, error) {
	args := m.Called(ctx, to, templateName, languageCode, parameters)
	return args.String(0), args.Error(1)
}

func TestReminderService_SendAppointmentReminder(t *testing.T) {
	appointment := &entities.Appointment{
		ID:          "apt-1",
		Status:      entities.AppointmentStatusScheduled,
		ScheduledAt: time.Date(2030, 2, 10, 14, 0, 0, 0, time.UTC),
	}
	patient := &entities.Patient{
		FirstName: "Ana",
		LastName:  "Pérez",
		Phone:     "+573001234567",
	}

	t.Run("sends the reminder template with the appointment details", func(t *testing.T) {
		sender := new(mockSender)
		service := NewReminderService(sender)

		sender.On("SendTemplate", mock.Anything, "+573001234567", "recordatorio_cita", "es_CO",
			[]string{"Ana Pérez", "10/02/2030", "2:00 PM"}).
			Return("wamid.123", nil)

		messageID, err := service.SendAppointmentReminder(context.Background(), appointment, patient)

		require.NoError(t, err)
		assert.Equal(t, "wamid.123", messageID)
		sender.AssertExpectations(t)
	})

	t.Run("refuses patients without a phone number", func(t *testing.T) {
		sender := new(mockSender)
		service := NewReminderService(sender)

		_, err := service.SendAppointmentReminder(context.Background(), appointment, &entities.Patient{FirstName: "Ana"})

		require.Error(t, err)
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
		sender.AssertNotCalled(t, "SendTemplate")
	})

	t.Run("refuses cancelled appointments", func(t *testing.T) {
		sender := new(mockSender)
		service := NewReminderService(sender)

		cancelled := &entities.Appointment{
			ID:          "apt-2",
			Status:      entities.AppointmentStatusCancelled,
			ScheduledAt: appointment.ScheduledAt,
		}

		_, err := service.SendAppointmentReminder(context.Background(), cancelled, patient)

		require.Error(t, err)
		sender.AssertNotCalled(t, "SendTemplate")
	})
}
