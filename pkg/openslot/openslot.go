package openslot

import "time"

// OpenSlot marks one (date, time-row) cell as explicitly open for booking.
// Under the default-closed availability policy a cell with no OpenSlot record
// cannot be booked; under the default-open policy these records are unused.
type OpenSlot struct {
	ID        string
	SlotStart time.Time
	CreatedAt time.Time
}
