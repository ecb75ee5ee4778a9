package scheduling

import (
	"github.com/salucol/ips-admin-core/internal/domain/entities"
)

// transitions is the appointment lifecycle graph. Scheduled is the unique
// initial state; attended, no-show and cancelled are terminal.
var transitions = map[entities.AppointmentStatus][]entities.AppointmentStatus{
	entities.AppointmentStatusScheduled: {
		entities.AppointmentStatusInRoom,
		entities.AppointmentStatusNoShow,
		entities.AppointmentStatusCancelled,
	},
	entities.AppointmentStatusInRoom: {
		entities.AppointmentStatusAttended,
		entities.AppointmentStatusCancelled,
	},
	entities.AppointmentStatusAttended:  {},
	entities.AppointmentStatusNoShow:    {},
	entities.AppointmentStatusCancelled: {},
}

// InitialStatus is the status every newly created appointment starts in
const InitialStatus = entities.AppointmentStatusScheduled

// AvailableTransitions returns the statuses current may move to. Marking an
// appointment attended is the only permission-gated transition; it is
// omitted unless canMarkAttended is true.
func AvailableTransitions(current entities.AppointmentStatus, canMarkAttended bool) []entities.AppointmentStatus {
	next, ok := transitions[current]
	if !ok {
		return nil
	}

	out := make([]entities.AppointmentStatus, 0, len(next))
	for _, status := range next {
		if status == entities.AppointmentStatusAttended && !canMarkAttended {
			continue
		}
		out = append(out, status)
	}
	return out
}

// CanTransition reports whether moving from one status to another is
// currently permitted
func CanTransition(from, to entities.AppointmentStatus, canMarkAttended bool) bool {
	for _, status := range AvailableTransitions(from, canMarkAttended) {
		if status == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status has no outgoing transitions
func IsTerminal(status entities.AppointmentStatus) bool {
	return len(transitions[status]) == 0
}
