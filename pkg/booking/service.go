package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lessonbook/lessonbook/internal/auth"
	"github.com/lessonbook/lessonbook/internal/bus"
	"github.com/lessonbook/lessonbook/internal/utils"
	"github.com/lessonbook/lessonbook/pkg/availability"
	"github.com/lessonbook/lessonbook/pkg/customer"
	"github.com/lessonbook/lessonbook/pkg/reservation"
	"github.com/lessonbook/lessonbook/pkg/schedule"
	log "github.com/sirupsen/logrus"
)

var (
	ErrNameRequired = errors.New("customer name must not be blank")
	ErrUnknownMenu  = errors.New("unknown lesson menu")
	ErrUnavailable  = errors.New("the requested slot is not available")
	ErrForbidden    = errors.New("admin authorization required")
)

// SubmitRequest is a customer's slot selection.
type SubmitRequest struct {
	CustomerName string
	Category     schedule.Category
	MenuID       string
	Day          time.Time
	Row          string
}

type Service interface {
	// Submit validates, normalizes and persists a customer booking, then
	// upserts the customer record. The availability check runs twice: once
	// against a fresh snapshot for a friendly rejection, and once inside the
	// insert transaction so two racing clients cannot both win the slot.
	Submit(ctx context.Context, req SubmitRequest) (reservation.Reservation, error)
	// Block inserts an admin rest block occupying exactly one grid row.
	Block(ctx context.Context, day time.Time, row string) (reservation.Reservation, error)
	// ParseDay resolves a client-sent YYYY-MM-DD string to the studio-local
	// calendar day.
	ParseDay(value string) (time.Time, error)
}

type ServiceImpl struct {
	catalog      *schedule.Catalog
	availability availability.Service
	resRepo      reservation.Repository
	customers    customer.Service
	clock        utils.Clock
	bus          *bus.Bus
}

func NewService(
	catalog *schedule.Catalog,
	availabilitySvc availability.Service,
	resRepo reservation.Repository,
	customers customer.Service,
	b *bus.Bus,
) *ServiceImpl {
	return &ServiceImpl{
		catalog:      catalog,
		availability: availabilitySvc,
		resRepo:      resRepo,
		customers:    customers,
		clock:        utils.SystemClock{},
		bus:          b,
	}
}

func (s *ServiceImpl) ParseDay(value string) (time.Time, error) {
	return s.catalog.ParseDay(value)
}

func (s *ServiceImpl) Submit(ctx context.Context, req SubmitRequest) (reservation.Reservation, error) {
	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		return reservation.Reservation{}, ErrNameRequired
	}
	session, err := auth.CurrentSession(ctx)
	if err != nil {
		return reservation.Reservation{}, err
	}
	if req.Category != schedule.Private && req.Category != schedule.Group {
		return reservation.Reservation{}, fmt.Errorf("category %q is not bookable", req.Category)
	}

	start, menu, err := s.resolveSlot(req)
	if err != nil {
		return reservation.Reservation{}, err
	}

	if err := s.checkAvailable(ctx, req, menu, session.UID); err != nil {
		return reservation.Reservation{}, err
	}

	minutes, menuDetail := s.resolveBlock(req.Category, menu, start)
	now := s.clock.Now()
	res := reservation.Reservation{
		ID:           uuid.NewString(),
		CustomerUID:  session.UID,
		CustomerName: name,
		Category:     req.Category,
		MenuDetail:   menuDetail,
		Minutes:      minutes,
		StartTime:    start,
		CreatedAt:    now,
	}

	stored, err := s.resRepo.StoreChecked(ctx, res)
	if err != nil {
		if errors.Is(err, reservation.ErrConflict) {
			return reservation.Reservation{}, ErrUnavailable
		}
		return reservation.Reservation{}, err
	}

	if err := s.customers.RecordBooking(ctx, session.UID, name, now); err != nil {
		// The reservation is already committed; the customer ledger catches
		// up on the next booking.
		log.Errorf("failed to upsert customer %s after booking: %v", session.UID, err)
	}

	s.publish(ctx, stored, false)
	return stored, nil
}

func (s *ServiceImpl) Block(ctx context.Context, day time.Time, row string) (reservation.Reservation, error) {
	if !auth.IsAdmin(ctx) {
		return reservation.Reservation{}, ErrForbidden
	}
	start, err := s.catalog.At(day, row)
	if err != nil {
		return reservation.Reservation{}, err
	}

	res := reservation.Reservation{
		ID:           uuid.NewString(),
		CustomerName: schedule.BlockDisplayName,
		Category:     schedule.Blocked,
		Minutes:      schedule.BlockRowMinutes,
		StartTime:    start,
		CreatedAt:    s.clock.Now(),
	}
	stored, err := s.resRepo.Store(ctx, res)
	if err != nil {
		return reservation.Reservation{}, err
	}
	s.publish(ctx, stored, false)
	return stored, nil
}

func (s *ServiceImpl) resolveSlot(req SubmitRequest) (time.Time, *schedule.Menu, error) {
	var menu *schedule.Menu
	if req.Category == schedule.Private {
		if req.MenuID == "" {
			return time.Time{}, nil, ErrUnknownMenu
		}
		m, ok := s.catalog.MenuByID(req.MenuID)
		if !ok {
			return time.Time{}, nil, ErrUnknownMenu
		}
		menu = &m
	}

	row := req.Row
	if req.Category == schedule.Group {
		// A click on the class's display row books the class's real start.
		day, err := s.catalog.At(req.Day, "0:00")
		if err != nil {
			return time.Time{}, nil, err
		}
		if class, ok := s.catalog.ClassFor(day.Weekday()); ok && class.RowMatch == row {
			row = class.Start
		}
	}

	start, err := s.catalog.At(req.Day, row)
	if err != nil {
		return time.Time{}, nil, err
	}
	return start, menu, nil
}

func (s *ServiceImpl) checkAvailable(ctx context.Context, req SubmitRequest, menu *schedule.Menu, viewerUID string) error {
	status := s.availability.Engine()
	dayStart, err := s.catalog.At(req.Day, "0:00")
	if err != nil {
		return err
	}
	snap, err := s.availability.Snapshot(ctx, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return err
	}
	result := status.Status(availability.Query{
		Day:       req.Day,
		Row:       req.Row,
		Category:  req.Category,
		Menu:      menu,
		ViewerUID: viewerUID,
	}, snap)
	if !result.Selectable {
		log.Debugf("slot %s %s not selectable for %s", req.Day.Format("2006-01-02"), req.Row, req.Category)
		return ErrUnavailable
	}
	return nil
}

func (s *ServiceImpl) resolveBlock(category schedule.Category, menu *schedule.Menu, start time.Time) (int, string) {
	if menu != nil {
		return menu.Block, menu.Name
	}
	if class, ok := s.catalog.ClassFor(start.Weekday()); ok {
		return class.Block, class.Name
	}
	return schedule.GroupBlock, schedule.GenericGroupName
}

func (s *ServiceImpl) publish(ctx context.Context, r reservation.Reservation, deleted bool) {
	if err := s.bus.Publish(bus.NewEvent(ctx, bus.TopicReservations, bus.ReservationsChanged{
		ReservationID: r.ID,
		CustomerName:  r.CustomerName,
		Category:      string(r.Category),
		StartTime:     r.StartTime,
		Minutes:       r.Minutes,
		Deleted:       deleted,
	})); err != nil {
		log.Errorf("failed to publish reservation change: %v", err)
	}
}
