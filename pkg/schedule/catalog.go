package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lessonbook/lessonbook/internal/config"
)

// Catalog bundles everything the availability computation reads: the daily
// grid, the private-lesson menus, and the weekly group timetable. It is built
// once at startup from configuration and never mutated afterwards.
type Catalog struct {
	rows     []string
	menus    []Menu
	classes  map[time.Weekday]GroupClass
	location *time.Location
	slotMin  int
}

// NewCatalog builds a Catalog from the studio configuration.
// The grid rows run from OpenTime to CloseTime inclusive at SlotMinutes steps.
func NewCatalog(cfg config.Studio) (*Catalog, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("could not load studio timezone %q: %w", cfg.Timezone, err)
	}
	openH, openM, err := parseRow(cfg.OpenTime)
	if err != nil {
		return nil, fmt.Errorf("invalid studio open time: %w", err)
	}
	closeH, closeM, err := parseRow(cfg.CloseTime)
	if err != nil {
		return nil, fmt.Errorf("invalid studio close time: %w", err)
	}
	if cfg.SlotMinutes <= 0 || 60%cfg.SlotMinutes != 0 {
		return nil, fmt.Errorf("slot granularity must divide an hour, got %d", cfg.SlotMinutes)
	}

	var rows []string
	for m := openH*60 + openM; m <= closeH*60+closeM; m += cfg.SlotMinutes {
		rows = append(rows, fmt.Sprintf("%d:%02d", m/60, m%60))
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("operating window %s-%s produces an empty grid", cfg.OpenTime, cfg.CloseTime)
	}

	menus := privateMenus()
	for _, menu := range menus {
		if menu.Block < menu.Duration {
			return nil, fmt.Errorf("menu %s: block %d shorter than duration %d", menu.ID, menu.Block, menu.Duration)
		}
	}

	return &Catalog{
		rows:     rows,
		menus:    menus,
		classes:  groupClasses(),
		location: loc,
		slotMin:  cfg.SlotMinutes,
	}, nil
}

// Rows returns the grid rows as "H:MM" wall-clock strings.
func (c *Catalog) Rows() []string {
	rows := make([]string, len(c.rows))
	copy(rows, c.rows)
	return rows
}

// SlotMinutes returns the grid granularity.
func (c *Catalog) SlotMinutes() int {
	return c.slotMin
}

// Location returns the studio's timezone.
func (c *Catalog) Location() *time.Location {
	return c.location
}

// Menus returns the private-lesson menus.
func (c *Catalog) Menus() []Menu {
	menus := make([]Menu, len(c.menus))
	copy(menus, c.menus)
	return menus
}

// MenuByID resolves a menu; ok is false for unknown ids.
func (c *Catalog) MenuByID(id string) (Menu, bool) {
	for _, m := range c.menus {
		if m.ID == id {
			return m, true
		}
	}
	return Menu{}, false
}

// ClassFor returns the group class held on the given weekday, if any.
func (c *Catalog) ClassFor(day time.Weekday) (GroupClass, bool) {
	class, ok := c.classes[day]
	return class, ok
}

// IsGroupRow reports whether the row is the one the weekday's class occupies,
// matching either the class start or its row alias.
func (c *Catalog) IsGroupRow(day time.Weekday, row string) bool {
	class, ok := c.classes[day]
	if !ok {
		return false
	}
	return class.Start == row || class.RowMatch == row
}

// ParseDay interprets a YYYY-MM-DD string as a calendar day in the studio's
// timezone. Clients send bare dates, so the location has to come from the
// studio, not from UTC.
func (c *Catalog) ParseDay(value string) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", value, c.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed day %q: %w", value, err)
	}
	return day, nil
}

// At combines a calendar day with a grid row into an absolute start time in
// the studio's timezone. The day's own clock time is discarded; only its local
// calendar date matters, so a UTC-shifted input can never move the booking to
// a neighboring day.
func (c *Catalog) At(day time.Time, row string) (time.Time, error) {
	h, m, err := parseRow(row)
	if err != nil {
		return time.Time{}, err
	}
	local := day.In(c.location)
	return time.Date(local.Year(), local.Month(), local.Day(), h, m, 0, 0, c.location), nil
}

func parseRow(row string) (int, int, error) {
	parts := strings.SplitN(row, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed time row %q", row)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, fmt.Errorf("malformed hour in time row %q", row)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("malformed minute in time row %q", row)
	}
	return h, m, nil
}
