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

func TestAppointmentService_UpdateStatus(t *testing.T) {
	t.Run("persists a legal transition and normalizes the response", func(t *testing.T) {
		client := new(mockClient)
		service := NewAppointmentService(client, nil)

		appointment := &entities.Appointment{
			ID:     "apt-1",
			Status: entities.AppointmentStatusScheduled,
		}

		client.On("Patch", mock.Anything, "/appointments/apt-1/status",
			map[string]string{"status": "in_room"}, mock.Anything).
			Run(func(args mock.Arguments) {
				out := args.Get(3).(*entities.Appointment)
				out.ID = "apt-1"
				out.Status = entities.AppointmentStatus("En sala")
			}).
			Return(nil)

		err := service.UpdateStatus(context.Background(), appointment, entities.AppointmentStatusInRoom, false)

		require.NoError(t, err)
		assert.Equal(t, entities.AppointmentStatusInRoom, appointment.Status)
		client.AssertExpectations(t)
	})

	t.Run("rejects an illegal transition before any backend call", func(t *testing.T) {
		client := new(mockClient)
		service := NewAppointmentService(client, nil)

		appointment := &entities.Appointment{
			ID:     "apt-1",
			Status: entities.AppointmentStatusAttended,
		}

		err := service.UpdateStatus(context.Background(), appointment, entities.AppointmentStatusInRoom, true)

		require.Error(t, err)
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
		client.AssertNotCalled(t, "Patch")
	})

	t.Run("marking attended requires permission", func(t *testing.T) {
		client := new(mockClient)
		service := NewAppointmentService(client, nil)

		appointment := &entities.Appointment{
			ID:     "apt-1",
			Status: entities.AppointmentStatusInRoom,
		}

		err := service.UpdateStatus(context.Background(), appointment, entities.AppointmentStatusAttended, false)

		require.Error(t, err)
		client.AssertNotCalled(t, "Patch")
	})

	t.Run("validates against the normalized status", func(t *testing.T) {
		client := new(mockClient)
		service := NewAppointmentService(client, nil)

		// Status as a backend might serialize it
		appointment := &entities.Appointment{
			ID:     "apt-1",
			Status: entities.AppointmentStatus("Programada"),
		}

		client.On("Patch", mock.Anything, "/appointments/apt-1/status",
			map[string]string{"status": "cancelled"}, mock.Anything).
			Run(func(args mock.Arguments) {
				out := args.Get(3).(*entities.Appointment)
				out.Status = entities.AppointmentStatusCancelled
			}).
			Return(nil)

		err := service.UpdateStatus(context.Background(), appointment, entities.AppointmentStatusCancelled, false)

		require.NoError(t, err)
		assert.Equal(t, entities.AppointmentStatusCancelled, appointment.Status)
	})
}

func TestAppointmentService_DayAgenda(t *testing.T) {
	client := new(mockClient)
	service := NewAppointmentService(client, nil)

	day := time.Date(2030, 5, 20, 0, 0, 0, 0, time.UTC)

	client.On("Get", mock.Anything, "/appointments?provider_id=dr-1&date=2030-05-20", mock.Anything).
		Run(func(args mock.Arguments) {
			out := args.Get(2).(*[]entities.Appointment)
			*out = []entities.Appointment{
				{ID: "a1", Status: entities.AppointmentStatus("Programada")},
				{ID: "a2", Status: entities.AppointmentStatus("atendida")},
				{ID: "a3", Status: entities.AppointmentStatus("reagendada")},
			}
		}).
		Return(nil)

	agenda, err := service.DayAgenda(context.Background(), "dr-1", day)

	require.NoError(t, err)
	require.Len(t, agenda, 3)
	assert.Equal(t, entities.AppointmentStatusScheduled, agenda[0].Status)
	assert.Equal(t, entities.AppointmentStatusAttended, agenda[1].Status)
	assert.Equal(t, entities.AppointmentStatusUnknown, agenda[2].Status)
}

func TestAppointmentService_AvailableSlots(t *testing.T) {
	client := new(mockClient)
	service := NewAppointmentService(client, nil)

	day := time.Date(2030, 5, 20, 0, 0, 0, 0, time.UTC)

	client.On("Get", mock.Anything, "/appointments?provider_id=dr-1&date=2030-05-20", mock.Anything).
		Run(func(args mock.Arguments) {
			out := args.Get(2).(*[]entities.Appointment)
			*out = []entities.Appointment{
				{ID: "a1", Status: entities.AppointmentStatusScheduled, ScheduledAt: time.Date(2030, 5, 20, 10, 0, 0, 0, time.UTC)},
				{ID: "a2", Status: entities.AppointmentStatus("Cancelada"), ScheduledAt: time.Date(2030, 5, 20, 9, 0, 0, 0, time.UTC)},
			}
		}).
		Return(nil)

	slots, err := service.AvailableSlots(context.Background(), "dr-1", day)

	require.NoError(t, err)
	require.NotEmpty(t, slots)

	byTime := make(map[string]entities.TimeSlot, len(slots))
	for _, slot := range slots {
		byTime[slot.Time] = slot
	}

	assert.False(t, byTime["10:00"].Available, "scheduled appointment occupies its slot")
	assert.True(t, byTime["09:00"].Available, "cancelled appointment frees its slot")
}

func TestAppointmentService_Create(t *testing.T) {
	t.Run("new appointments start scheduled", func(t *testing.T) {
		client := new(mockClient)
		service := NewAppointmentService(client, nil)

		appointment := &entities.Appointment{
			PatientID:   "p1",
			ProviderID:  "dr-1",
			ScheduledAt: time.Date(2030, 5, 20, 10, 0, 0, 0, time.UTC),
			Status:      entities.AppointmentStatus("whatever the caller left here"),
		}

		client.On("Post", mock.Anything, "/appointments", appointment, appointment).Return(nil)

		err := service.Create(context.Background(), appointment)

		require.NoError(t, err)
		assert.Equal(t, entities.AppointmentStatusScheduled, appointment.Status)
	})

	t.Run("requires patient, provider and time", func(t *testing.T) {
		client := new(mockClient)
		service := NewAppointmentService(client, nil)

		err := service.Create(context.Background(), &entities.Appointment{ProviderID: "dr-1"})

		require.Error(t, err)
		client.AssertNotCalled(t, "Post")
	})
}
