package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/lessonbook/lessonbook/pkg/openslot"
	"github.com/lessonbook/lessonbook/pkg/reservation"
	"github.com/lessonbook/lessonbook/pkg/schedule"
)

// WeekCell is one computed cell of the rolling weekly view.
type WeekCell struct {
	Day        time.Time
	Row        string
	Mark       Mark
	Selectable bool
	ClassStart string
	ClassName  string
	Bookings   []reservation.Reservation
}

// Week is seven days of slot statuses starting at Start.
type Week struct {
	Start time.Time
	Days  []time.Time
	Rows  []string
	Cells [][]WeekCell
}

const weekDays = 7

type Service interface {
	// Week computes the customer-facing weekly grid for a booking intent.
	Week(ctx context.Context, start time.Time, category schedule.Category, menuID string, viewerUID string) (Week, error)
	// Snapshot loads a consistent view of the week's reservations and open
	// slots for ad-hoc status queries.
	Snapshot(ctx context.Context, from time.Time, to time.Time) (Snapshot, error)
	// ParseDay resolves a client-sent YYYY-MM-DD string to the studio-local
	// calendar day.
	ParseDay(value string) (time.Time, error)
	Engine() *Engine
}

type ServiceImpl struct {
	engine   *Engine
	catalog  *schedule.Catalog
	resRepo  reservation.Repository
	slotRepo openslot.Repository
}

func NewService(engine *Engine, catalog *schedule.Catalog, resRepo reservation.Repository, slotRepo openslot.Repository) *ServiceImpl {
	return &ServiceImpl{engine: engine, catalog: catalog, resRepo: resRepo, slotRepo: slotRepo}
}

func (s *ServiceImpl) Engine() *Engine {
	return s.engine
}

func (s *ServiceImpl) ParseDay(value string) (time.Time, error) {
	return s.catalog.ParseDay(value)
}

func (s *ServiceImpl) Snapshot(ctx context.Context, from time.Time, to time.Time) (Snapshot, error) {
	reservations, err := s.resRepo.FindBetween(ctx, from, to)
	if err != nil {
		return Snapshot{}, fmt.Errorf("could not load reservations: %w", err)
	}
	slots, err := s.slotRepo.FindBetween(ctx, from, to)
	if err != nil {
		return Snapshot{}, fmt.Errorf("could not load open slots: %w", err)
	}
	starts := make([]time.Time, 0, len(slots))
	for _, slot := range slots {
		starts = append(starts, slot.SlotStart)
	}
	return Snapshot{
		Reservations: reservations,
		OpenSlots:    OpenSlotSet(starts),
		Ready:        true,
	}, nil
}

func (s *ServiceImpl) Week(ctx context.Context, start time.Time, category schedule.Category, menuID string, viewerUID string) (Week, error) {
	loc := s.catalog.Location()
	local := start.In(loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	snap, err := s.Snapshot(ctx, dayStart, dayStart.AddDate(0, 0, weekDays))
	if err != nil {
		return Week{}, err
	}

	var menu *schedule.Menu
	if category == schedule.Private && menuID != "" {
		m, ok := s.catalog.MenuByID(menuID)
		if !ok {
			return Week{}, fmt.Errorf("unknown lesson menu %q", menuID)
		}
		menu = &m
	}

	days := make([]time.Time, 0, weekDays)
	for i := 0; i < weekDays; i++ {
		days = append(days, dayStart.AddDate(0, 0, i))
	}
	rows := s.catalog.Rows()

	cells := make([][]WeekCell, 0, len(rows))
	for _, row := range rows {
		rowCells := make([]WeekCell, 0, len(days))
		for _, day := range days {
			status := s.engine.Status(Query{
				Day:       day,
				Row:       row,
				Category:  category,
				Menu:      menu,
				ViewerUID: viewerUID,
			}, snap)
			cell := WeekCell{
				Day:        day,
				Row:        row,
				Mark:       status.Mark,
				Selectable: status.Selectable,
				Bookings:   status.Bookings,
			}
			if status.GroupClass != nil {
				cell.ClassStart = status.GroupClass.Start
				cell.ClassName = status.GroupClass.Name
			}
			rowCells = append(rowCells, cell)
		}
		cells = append(cells, rowCells)
	}

	return Week{Start: dayStart, Days: days, Rows: rows, Cells: cells}, nil
}
