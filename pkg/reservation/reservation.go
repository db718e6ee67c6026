package reservation

import (
	"time"

	"github.com/lessonbook/lessonbook/pkg/schedule"
)

// Reservation is one occupied span of the studio calendar: a customer lesson,
// a group-class seat, or an admin rest block. Minutes is the full block the
// reservation occupies (lesson time plus the mandatory interval), not the raw
// instruction time. Reservations are never modified in place; cancel and
// rebook is the only reschedule path.
type Reservation struct {
	ID           string
	CustomerUID  string
	CustomerName string
	Category     schedule.Category
	MenuDetail   string
	Minutes      int
	StartTime    time.Time
	CreatedAt    time.Time
	External     bool
}

// Interval returns the half-open span the reservation occupies.
func (r Reservation) Interval() schedule.Interval {
	return schedule.NewInterval(r.StartTime, r.Minutes)
}

// Record is the raw persisted shape of a reservation. Nothing from the store
// is trusted: durations may be absent on old records and dates may be broken
// on imported ones, so every read goes through FromRecord.
type Record struct {
	ID           string
	CustomerUID  string
	CustomerName string
	LessonType   string
	MenuDetail   string
	Minutes      int
	HasMinutes   bool
	StartTime    time.Time
	CreatedAt    time.Time
	External     bool
}

// FromRecord decodes a stored record into a Reservation, applying the
// category-based duration defaults. A record without a usable start time
// cannot participate in conflict checks at all; ok is false and the caller
// must drop it rather than fail the whole snapshot.
func FromRecord(rec Record) (Reservation, bool) {
	if rec.StartTime.IsZero() {
		return Reservation{}, false
	}

	category := schedule.Category(rec.LessonType)
	switch category {
	case schedule.Private, schedule.Group, schedule.Blocked:
	default:
		category = schedule.Private
	}

	minutes := rec.Minutes
	if !rec.HasMinutes || minutes <= 0 {
		if category == schedule.Group {
			minutes = schedule.DefaultGroupMinutes
		} else {
			minutes = schedule.DefaultPrivateMinutes
		}
	}

	return Reservation{
		ID:           rec.ID,
		CustomerUID:  rec.CustomerUID,
		CustomerName: rec.CustomerName,
		Category:     category,
		MenuDetail:   rec.MenuDetail,
		Minutes:      minutes,
		StartTime:    rec.StartTime,
		CreatedAt:    rec.CreatedAt,
		External:     rec.External,
	}, true
}

// Overlapping returns the reservations whose occupied span overlaps iv.
func Overlapping(all []Reservation, iv schedule.Interval) []Reservation {
	var hits []Reservation
	for _, r := range all {
		if r.Interval().Overlaps(iv) {
			hits = append(hits, r)
		}
	}
	return hits
}

// ConflictsAny reports whether any reservation overlaps iv.
func ConflictsAny(all []Reservation, iv schedule.Interval) bool {
	for _, r := range all {
		if r.Interval().Overlaps(iv) {
			return true
		}
	}
	return false
}

// GroupOccupancy inspects the reservations overlapping a group class block:
// seats is the number of group bookings taken, closed is true when a rest
// block, an externally imported reservation or a private lesson claims any
// part of the span. The single studio floor means a private lesson shuts the
// class out entirely rather than taking a seat.
func GroupOccupancy(all []Reservation, classBlock schedule.Interval) (seats int, closed bool) {
	for _, r := range Overlapping(all, classBlock) {
		if r.Category == schedule.Blocked || r.Category == schedule.Private || r.External {
			closed = true
			continue
		}
		seats++
	}
	return seats, closed
}
