package scheduling

import (
	"time"

	"github.com/salucol/ips-admin-core/internal/domain/entities"
)

const (
	defaultDayStartHour = 6
	defaultDayEndHour   = 20
	defaultInterval     = 20 * time.Minute
	defaultLeadTime     = 60 * time.Minute
)

// SlotCalculator derives the bookable time slots of a provider's day from
// the appointments already on their agenda.
type SlotCalculator struct {
	startHour int
	endHour   int
	interval  time.Duration
	leadTime  time.Duration
	now       func() time.Time
}

// NewSlotCalculator creates a slot calculator. Non-positive interval or lead
// time fall back to the console defaults (20-minute slots, 60-minute
// same-day booking buffer).
func NewSlotCalculator(interval, leadTime time.Duration) *SlotCalculator {
	if interval <= 0 {
		interval = defaultInterval
	}
	if leadTime <= 0 {
		leadTime = defaultLeadTime
	}
	return &SlotCalculator{
		startHour: defaultDayStartHour,
		endHour:   defaultDayEndHour,
		interval:  interval,
		leadTime:  leadTime,
		now:       time.Now,
	}
}

// ComputeSlots returns the ordered candidate slots for the given calendar
// day, from 06:00 through 20:00 inclusive. For the current day, slots
// starting inside the lead-time buffer are dropped entirely.
//
// Occupancy is an exact start-time match: a booked appointment blocks only
// the slot equal to its own HH:MM, regardless of the appointment's duration.
// Known limitation inherited from the console's booking flow; do not extend
// to interval overlap without product sign-off.
func (c *SlotCalculator) ComputeSlots(day time.Time, booked []entities.Appointment) []entities.TimeSlot {
	loc := day.Location()
	year, month, dayNum := day.Date()

	dayStart := time.Date(year, month, dayNum, c.startHour, 0, 0, 0, loc)
	dayEnd := time.Date(year, month, dayNum, c.endHour, 0, 0, 0, loc)

	occupied := make(map[string]struct{}, len(booked))
	for _, appt := range booked {
		occupied[appt.ScheduledAt.In(loc).Format("15:04")] = struct{}{}
	}

	now := c.now().In(loc)
	nowYear, nowMonth, nowDay := now.Date()
	sameDay := year == nowYear && month == nowMonth && dayNum == nowDay

	slots := make([]entities.TimeSlot, 0, int(dayEnd.Sub(dayStart)/c.interval)+1)
	for t := dayStart; !t.After(dayEnd); t = t.Add(c.interval) {
		if sameDay && t.Sub(now) < c.leadTime {
			continue
		}

		hhmm := t.Format("15:04")
		_, taken := occupied[hhmm]
		slots = append(slots, entities.TimeSlot{
			Time:      hhmm,
			Label:     t.Format("3:04 PM"),
			Available: !taken,
		})
	}

	return slots
}
