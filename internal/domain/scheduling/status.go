package scheduling

import (
	"strings"

	"github.com/salucol/ips-admin-core/internal/domain/entities"
)

// statusAliases maps the status spellings seen across the backend
// microservices to their canonical value. The services are not consistent:
// some serialize English snake_case, others the Spanish console labels, in
// either grammatical gender.
var statusAliases = map[string]entities.AppointmentStatus{
	"scheduled":   entities.AppointmentStatusScheduled,
	"programada":  entities.AppointmentStatusScheduled,
	"programado":  entities.AppointmentStatusScheduled,
	"agendada":    entities.AppointmentStatusScheduled,
	"agendado":    entities.AppointmentStatusScheduled,
	"in_room":     entities.AppointmentStatusInRoom,
	"in room":     entities.AppointmentStatusInRoom,
	"en_sala":     entities.AppointmentStatusInRoom,
	"en sala":     entities.AppointmentStatusInRoom,
	"attended":    entities.AppointmentStatusAttended,
	"atendida":    entities.AppointmentStatusAttended,
	"atendido":    entities.AppointmentStatusAttended,
	"no_show":     entities.AppointmentStatusNoShow,
	"no show":     entities.AppointmentStatusNoShow,
	"no asistió":  entities.AppointmentStatusNoShow,
	"no asistio":  entities.AppointmentStatusNoShow,
	"no_asistio":  entities.AppointmentStatusNoShow,
	"cancelled":   entities.AppointmentStatusCancelled,
	"canceled":    entities.AppointmentStatusCancelled,
	"cancelada":   entities.AppointmentStatusCancelled,
	"cancelado":   entities.AppointmentStatusCancelled,
	"unknown":     entities.AppointmentStatusUnknown,
	"desconocido": entities.AppointmentStatusUnknown,
}

// statusLabels holds the display label per status. Display only, no business
// meaning.
var statusLabels = map[entities.AppointmentStatus]string{
	entities.AppointmentStatusScheduled: "Programada",
	entities.AppointmentStatusInRoom:    "En sala",
	entities.AppointmentStatusAttended:  "Atendida",
	entities.AppointmentStatusNoShow:    "No asistió",
	entities.AppointmentStatusCancelled: "Cancelada",
	entities.AppointmentStatusUnknown:   "Desconocido",
}

// Normalize maps a server-provided status string to its canonical value.
// Matching is case-insensitive and tolerates the Spanish label variants.
// Unrecognized input maps to AppointmentStatusUnknown so callers are forced
// to handle it explicitly rather than treating a stray string as a state.
func Normalize(raw string) entities.AppointmentStatus {
	key := strings.ToLower(strings.TrimSpace(raw))
	if status, ok := statusAliases[key]; ok {
		return status
	}
	return entities.AppointmentStatusUnknown
}

// Label returns the display label for a status. Unrecognized statuses get
// the unknown label.
func Label(status entities.AppointmentStatus) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return statusLabels[entities.AppointmentStatusUnknown]
}
