package availability

import (
	"time"

	"github.com/lessonbook/lessonbook/pkg/reservation"
	"github.com/lessonbook/lessonbook/pkg/schedule"
)

// Mark is the display state of one calendar cell.
type Mark string

const (
	MarkOpen          Mark = "○"
	MarkNearFull      Mark = "△"
	MarkFull          Mark = "×"
	MarkNotApplicable Mark = "－"
	MarkMine          Mark = "★"
)

// SlotStatus is the computed state of one (day, row) cell for a viewer's
// booking intent. Bookings holds the reservations intersecting the cell's own
// grid row, which is what the admin ledger shows and deletes by.
type SlotStatus struct {
	Mark       Mark
	Selectable bool
	Bookings   []reservation.Reservation
	GroupClass *schedule.GroupClass
}

// Query describes the cell being asked about and the caller's intent.
// Menu is nil when no private menu is selected yet; the display-only default
// block is used then. ViewerUID marks the viewer's own reservations.
type Query struct {
	Day       time.Time
	Row       string
	Category  schedule.Category
	Menu      *schedule.Menu
	ViewerUID string
}

// Snapshot is a consistent read of everything availability depends on.
// Ready is false while no snapshot has been delivered yet (or the live
// connection is lost); a not-ready snapshot never yields an open cell.
type Snapshot struct {
	Reservations []reservation.Reservation
	OpenSlots    map[time.Time]struct{}
	Ready        bool
}

// OpenSlotSet converts open-slot records into the set keyed the way the
// engine looks cells up.
func OpenSlotSet(slots []time.Time) map[time.Time]struct{} {
	set := make(map[time.Time]struct{}, len(slots))
	for _, t := range slots {
		set[t.UTC()] = struct{}{}
	}
	return set
}

// Engine computes slot statuses. It is a pure function of its inputs: no
// stored state beyond the immutable catalog and policy, safe to call from any
// goroutine with any snapshot.
type Engine struct {
	catalog *schedule.Catalog
	policy  Policy
}

func NewEngine(catalog *schedule.Catalog, policy Policy) *Engine {
	return &Engine{catalog: catalog, policy: policy}
}

// Status computes the state of one cell. It is total over malformed input: a
// bad row yields a not-applicable cell, and malformed reservations have
// already been dropped at the decode boundary.
func (e *Engine) Status(q Query, snap Snapshot) SlotStatus {
	rowStart, err := e.catalog.At(q.Day, q.Row)
	if err != nil {
		return SlotStatus{Mark: MarkNotApplicable}
	}
	rowWindow := schedule.NewInterval(rowStart, e.catalog.SlotMinutes())
	bookingsHere := reservation.Overlapping(snap.Reservations, rowWindow)

	if q.Category == schedule.Group {
		return e.groupStatus(q, rowStart, bookingsHere, snap)
	}
	return e.privateStatus(q, rowStart, bookingsHere, snap)
}

func (e *Engine) groupStatus(q Query, rowStart time.Time, bookingsHere []reservation.Reservation, snap Snapshot) SlotStatus {
	weekday := rowStart.Weekday()
	class, ok := e.catalog.ClassFor(weekday)
	if !ok || !e.catalog.IsGroupRow(weekday, q.Row) {
		return SlotStatus{Mark: MarkNotApplicable, Bookings: bookingsHere}
	}
	if !snap.Ready {
		return SlotStatus{Mark: MarkFull, Bookings: bookingsHere, GroupClass: &class}
	}

	// The class occupies its own fixed block regardless of which row alias
	// the viewer clicked.
	classStart, err := e.catalog.At(q.Day, class.Start)
	if err != nil {
		return SlotStatus{Mark: MarkNotApplicable, Bookings: bookingsHere}
	}
	classBlock := schedule.NewInterval(classStart, class.Block)

	inClass := reservation.Overlapping(snap.Reservations, classBlock)
	if q.ViewerUID != "" {
		for _, r := range inClass {
			if r.CustomerUID == q.ViewerUID {
				return SlotStatus{Mark: MarkMine, Bookings: bookingsHere, GroupClass: &class}
			}
		}
	}

	seats, closed := reservation.GroupOccupancy(snap.Reservations, classBlock)
	if closed || seats >= schedule.GroupLimit {
		return SlotStatus{Mark: MarkFull, Bookings: bookingsHere, GroupClass: &class}
	}
	if seats >= 1 {
		return SlotStatus{Mark: MarkNearFull, Selectable: true, Bookings: bookingsHere, GroupClass: &class}
	}
	return SlotStatus{Mark: MarkOpen, Selectable: true, Bookings: bookingsHere, GroupClass: &class}
}

func (e *Engine) privateStatus(q Query, rowStart time.Time, bookingsHere []reservation.Reservation, snap Snapshot) SlotStatus {
	if !snap.Ready {
		return SlotStatus{Mark: MarkFull, Bookings: bookingsHere}
	}

	block := schedule.DefaultPrivateMinutes
	if q.Menu != nil {
		block = q.Menu.Block
	}
	candidate := schedule.NewInterval(rowStart, block)

	if q.ViewerUID != "" {
		for _, r := range bookingsHere {
			if r.CustomerUID == q.ViewerUID {
				return SlotStatus{Mark: MarkMine, Bookings: bookingsHere}
			}
		}
	}

	if reservation.ConflictsAny(snap.Reservations, candidate) {
		return SlotStatus{Mark: MarkFull, Bookings: bookingsHere}
	}
	if !e.policy.Allows(candidate, snap.OpenSlots, e.catalog.SlotMinutes()) {
		return SlotStatus{Mark: MarkFull, Bookings: bookingsHere}
	}
	return SlotStatus{Mark: MarkOpen, Selectable: true, Bookings: bookingsHere}
}

// AdminRow returns the reservations intersecting the cell's own grid row.
// The admin view treats one row as one atomic unit: it never looks at menu
// blocks, so a delete or rest-block action always targets exactly this row.
func (e *Engine) AdminRow(day time.Time, row string, snap Snapshot) []reservation.Reservation {
	rowStart, err := e.catalog.At(day, row)
	if err != nil {
		return nil
	}
	rowWindow := schedule.NewInterval(rowStart, e.catalog.SlotMinutes())
	return reservation.Overlapping(snap.Reservations, rowWindow)
}
