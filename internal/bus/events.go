package bus

import "time"

// Topics published by the mutation path. Every subscriber re-reads the full
// collection on change: snapshots, not deltas.
const (
	TopicReservations EventType = "reservations.changed"
	TopicCustomers    EventType = "customers.changed"
	TopicOpenSlots    EventType = "openslots.changed"
)

// ReservationsChanged is published after a reservation is created or deleted.
type ReservationsChanged struct {
	ReservationID string
	CustomerName  string
	Category      string
	StartTime     time.Time
	Minutes       int
	Deleted       bool
}

// CustomersChanged is published after a customer upsert or ticket adjustment.
type CustomersChanged struct {
	CustomerUID string
}

// OpenSlotsChanged is published after the admin opens or closes a cell.
type OpenSlotsChanged struct {
	SlotStart time.Time
	Closed    bool
}
