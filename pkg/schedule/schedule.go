package schedule

import (
	"fmt"
	"time"
)

// Category is the high-level booking type.
type Category string

const (
	Private Category = "private"
	Group   Category = "group"
	Blocked Category = "blocked"
)

// Concurrent occupancy limits per category. A blocked row admits nothing.
const (
	PrivateLimit = 1
	GroupLimit   = 3
)

// Capacity returns how many concurrent bookings a category admits.
func Capacity(c Category) int {
	if c == Group {
		return GroupLimit
	}
	return PrivateLimit
}

// Default occupied minutes for stored reservations that carry no duration.
// Old records predate the duration field; these match what they meant then.
const (
	DefaultPrivateMinutes = 35
	DefaultGroupMinutes   = 60
)

// Lesson timing building blocks: a private unit is 25 minutes of instruction,
// every reservation is followed by a 10 minute interval, and the group class
// runs 50 minutes inside a 60 minute block.
const (
	UnitMinutes     = 25
	IntervalMinutes = 10
	GroupMinutes    = 50
	GroupBlock      = 60
	BlockRowMinutes = 10
)

// Menu is one bookable private-lesson option. Duration is the instruction
// time, Block the calendar time the reservation occupies (duration + interval).
type Menu struct {
	ID          string
	Name        string
	Duration    int
	Block       int
	Description string
}

// GroupClass is the fixed class held on one weekday. RowMatch is the grid row
// the class is displayed on when Start does not align to a row boundary.
type GroupClass struct {
	Start    string
	Duration int
	Block    int
	Name     string
	RowMatch string
}

// GenericGroupName labels a group booking when no class is configured for the day.
const GenericGroupName = "少人数制グループ"

// BlockDisplayName is the display name given to admin rest blocks.
const BlockDisplayName = "お休み"

func privateMenus() []Menu {
	menus := make([]Menu, 0, 4)
	for i := 1; i <= 4; i++ {
		menus = append(menus, Menu{
			ID:          fmt.Sprintf("p%d", i),
			Name:        fmt.Sprintf("個人 %dレッスン", i),
			Duration:    UnitMinutes * i,
			Block:       UnitMinutes*i + IntervalMinutes,
			Description: fmt.Sprintf("%d分", UnitMinutes*i),
		})
	}
	return menus
}

func groupClasses() map[time.Weekday]GroupClass {
	return map[time.Weekday]GroupClass{
		time.Wednesday: {Start: "11:45", Duration: GroupMinutes, Block: GroupBlock, Name: "ルンバウォーク&ベーシック", RowMatch: "11:40"},
		time.Thursday:  {Start: "14:00", Duration: GroupMinutes, Block: GroupBlock, Name: "ラテンビューティーベーシック", RowMatch: "14:00"},
		time.Friday:    {Start: "15:00", Duration: GroupMinutes, Block: GroupBlock, Name: "シャドーソウル", RowMatch: "15:00"},
	}
}
