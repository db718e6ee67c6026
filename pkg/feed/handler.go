package feed

import (
	"net/http"
	"time"

	"github.com/lessonbook/lessonbook/internal/auth"
	"github.com/lessonbook/lessonbook/internal/bus"
	"github.com/lessonbook/lessonbook/pkg/customer"
	"github.com/lessonbook/lessonbook/pkg/reservation"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/websocket"
)

// Handler streams full snapshots of the shared collections to connected
// clients. Every change event triggers a complete re-send: subscribers always
// re-derive their calendar from the latest full snapshot, never from deltas.
type Handler struct {
	reservations reservation.Service
	customers    customer.Service
	bus          *bus.Bus
}

func NewHandler(reservations reservation.Service, customers customer.Service, b *bus.Bus) *Handler {
	return &Handler{reservations: reservations, customers: customers, bus: b}
}

type snapshotMessage struct {
	Type         string                 `json:"type"`
	GeneratedAt  time.Time              `json:"generatedAt"`
	Reservations []reservationMessage   `json:"reservations"`
	Customers    []customer.CustomerDTO `json:"customers,omitempty"`
}

type reservationMessage struct {
	ID           string    `json:"id"`
	CustomerName string    `json:"customerName"`
	LessonType   string    `json:"lessonType"`
	MenuDetail   string    `json:"menuDetail,omitempty"`
	Duration     int       `json:"duration"`
	Date         time.Time `json:"date"`
	IsExternal   bool      `json:"isExternal"`
}

// HandleWebSocket upgrades to WebSocket and streams snapshots until the
// client disconnects.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serve(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serve(conn *websocket.Conn, r *http.Request) {
	ctx := r.Context()

	notify := make(chan struct{}, 1)
	poke := func(bus.Event) error {
		select {
		case notify <- struct{}{}:
		default:
			// A refresh is already pending; snapshots are absolute, so
			// coalescing loses nothing.
		}
		return nil
	}
	for _, topic := range []bus.EventType{bus.TopicReservations, bus.TopicCustomers, bus.TopicOpenSlots} {
		unsubscribe := h.bus.Subscribe(topic, poke)
		defer unsubscribe()
	}

	for {
		if err := h.sendSnapshot(conn, r); err != nil {
			log.Debugf("feed connection closed: %v", err)
			return
		}
		select {
		case <-notify:
		case <-ctx.Done():
			return
		}
	}
}

func (h *Handler) sendSnapshot(conn *websocket.Conn, r *http.Request) error {
	ctx := r.Context()

	reservations, err := h.reservations.FindAll(ctx)
	if err != nil {
		log.Errorf("feed could not load reservations: %v", err)
		return websocket.JSON.Send(conn, map[string]string{"type": "error", "error": "snapshot unavailable"})
	}

	msg := snapshotMessage{
		Type:        "snapshot",
		GeneratedAt: time.Now(),
	}
	msg.Reservations = make([]reservationMessage, 0, len(reservations))
	for _, res := range reservations {
		msg.Reservations = append(msg.Reservations, reservationMessage{
			ID:           res.ID,
			CustomerName: res.CustomerName,
			LessonType:   string(res.Category),
			MenuDetail:   res.MenuDetail,
			Duration:     res.Minutes,
			Date:         res.StartTime,
			IsExternal:   res.External,
		})
	}

	if auth.IsAdmin(ctx) {
		customers, err := h.customers.ListLedger(ctx)
		if err != nil {
			log.Errorf("feed could not load customer ledger: %v", err)
		} else {
			msg.Customers = make([]customer.CustomerDTO, 0, len(customers))
			for _, c := range customers {
				dto := customer.CustomerDTO{UID: c.UID, Name: c.Name, Tickets: c.Tickets}
				if !c.LastReservedAt.IsZero() {
					t := c.LastReservedAt
					dto.LastReservedAt = &t
				}
				msg.Customers = append(msg.Customers, dto)
			}
		}
	}

	return websocket.JSON.Send(conn, msg)
}
