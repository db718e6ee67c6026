package customer

import "time"

// Customer is a repeat visitor. The UID is an opaque identifier minted from
// the session at first contact; the display name is a mutable profile
// attribute used for search and display only, never as a key. Tickets is the
// prepaid lesson-ticket balance and may legitimately go negative.
type Customer struct {
	UID            string
	Name           string
	LastReservedAt time.Time
	Tickets        int
}
