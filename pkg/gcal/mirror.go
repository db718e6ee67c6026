package gcal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lessonbook/lessonbook/internal/bus"
	"github.com/lessonbook/lessonbook/internal/config"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Mirror copies reservations into the studio's Google Calendar so the
// instructor sees bookings next to personal events. It listens on the event
// bus and is entirely best-effort: a reservation is never rejected or rolled
// back because the calendar write failed.
type Mirror struct {
	auth       *Auth
	db         *sql.DB
	calendarId string
	location   *time.Location
}

func NewMirror(auth *Auth, db *sql.DB, cfg config.Application, location *time.Location) *Mirror {
	calendarId := cfg.Google.CalendarId
	if calendarId == "" {
		calendarId = "primary"
	}
	return &Mirror{auth: auth, db: db, calendarId: calendarId, location: location}
}

// Start subscribes the mirror to reservation changes. Returns the unsubscribe
// function.
func (m *Mirror) Start(b *bus.Bus) func() {
	return bus.SubscribeTyped(b, bus.TopicReservations, func(e bus.EventT[bus.ReservationsChanged]) error {
		ctx := e.Context()
		if e.Data.Deleted {
			if err := m.removeEvent(ctx, e.Data.ReservationID); err != nil {
				log.Warnf("gcal: failed to remove event for reservation %s: %v", e.Data.ReservationID, err)
			}
			return nil
		}
		if err := m.createEvent(ctx, e.Data); err != nil {
			log.Warnf("gcal: failed to mirror reservation %s: %v", e.Data.ReservationID, err)
		}
		// Calendar mirroring is best-effort, never fail the publishing path.
		return nil
	})
}

func (m *Mirror) service(ctx context.Context) (*calendar.Service, error) {
	client, err := m.auth.getClient(ctx)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, ErrUnauthenticated
	}
	srv, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Google Calendar service: %w", err)
	}
	return srv, nil
}

func (m *Mirror) createEvent(ctx context.Context, change bus.ReservationsChanged) error {
	srv, err := m.service(ctx)
	if errors.Is(err, ErrUnauthenticated) {
		return nil
	} else if err != nil {
		return err
	}

	start := change.StartTime.In(m.location)
	end := start.Add(time.Duration(change.Minutes) * time.Minute)
	event := &calendar.Event{
		Summary:     change.CustomerName + " " + change.Category,
		Description: "lessonbook reservation " + change.ReservationID,
		Start: &calendar.EventDateTime{
			DateTime: start.Format(time.RFC3339),
			TimeZone: m.location.String(),
		},
		End: &calendar.EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: m.location.String(),
		},
	}

	created, err := srv.Events.Insert(m.calendarId, event).Do()
	if err != nil {
		return fmt.Errorf("unable to create calendar event: %w", err)
	}

	_, err = m.db.ExecContext(ctx,
		"INSERT INTO google_calendar_events (reservation_id, google_event_id) VALUES ($1, $2) ON CONFLICT (reservation_id) DO UPDATE SET google_event_id = $2",
		change.ReservationID, created.Id)
	if err != nil {
		return fmt.Errorf("unable to store calendar event mapping: %w", err)
	}
	log.Debugf("gcal: mirrored reservation %s as event %s", change.ReservationID, created.Id)
	return nil
}

func (m *Mirror) removeEvent(ctx context.Context, reservationId string) error {
	var googleEventId string
	err := m.db.QueryRowContext(ctx,
		"SELECT google_event_id FROM google_calendar_events WHERE reservation_id = $1", reservationId).
		Scan(&googleEventId)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	} else if err != nil {
		return fmt.Errorf("unable to find calendar event mapping: %w", err)
	}

	srv, err := m.service(ctx)
	if errors.Is(err, ErrUnauthenticated) {
		return nil
	} else if err != nil {
		return err
	}

	if err := srv.Events.Delete(m.calendarId, googleEventId).Do(); err != nil {
		return fmt.Errorf("unable to delete calendar event: %w", err)
	}
	_, err = m.db.ExecContext(ctx, "DELETE FROM google_calendar_events WHERE reservation_id = $1", reservationId)
	if err != nil {
		return fmt.Errorf("unable to delete calendar event mapping: %w", err)
	}
	return nil
}
