package availability

import (
	"testing"
	"time"

	"github.com/lessonbook/lessonbook/internal/config"
	"github.com/lessonbook/lessonbook/pkg/reservation"
	"github.com/lessonbook/lessonbook/pkg/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tokyo, _ = time.LoadLocation("Asia/Tokyo")

func newCatalog(t *testing.T) *schedule.Catalog {
	t.Helper()
	catalog, err := schedule.NewCatalog(config.Studio{
		Timezone:    "Asia/Tokyo",
		OpenTime:    "10:00",
		CloseTime:   "16:30",
		SlotMinutes: 10,
	})
	require.NoError(t, err)
	return catalog
}

func newOpenEngine(t *testing.T) *Engine {
	return NewEngine(newCatalog(t), DefaultOpenPolicy{})
}

func readySnapshot(reservations ...reservation.Reservation) Snapshot {
	return Snapshot{Reservations: reservations, OpenSlots: map[time.Time]struct{}{}, Ready: true}
}

// 2026-09-02 is a Wednesday: group class ルンバウォーク&ベーシック at 11:45.
var wednesday = time.Date(2026, time.September, 2, 0, 0, 0, 0, tokyo)

func at(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, tokyo)
}

func groupSeat(uid string, day time.Time) reservation.Reservation {
	return reservation.Reservation{
		ID:          "g-" + uid,
		CustomerUID: uid,
		Category:    schedule.Group,
		StartTime:   at(day, 11, 45),
		Minutes:     schedule.GroupBlock,
	}
}

func TestEngine_GroupStatus(t *testing.T) {
	engine := newOpenEngine(t)
	query := func(row string) Query {
		return Query{Day: wednesday, Row: row, Category: schedule.Group}
	}

	t.Run("empty class is open", func(t *testing.T) {
		status := engine.Status(query("11:40"), readySnapshot())
		assert.Equal(t, MarkOpen, status.Mark)
		assert.True(t, status.Selectable)
		require.NotNil(t, status.GroupClass)
		assert.Equal(t, "ルンバウォーク&ベーシック", status.GroupClass.Name)
	})

	t.Run("partially filled class is near-full but selectable", func(t *testing.T) {
		status := engine.Status(query("11:40"), readySnapshot(groupSeat("u1", wednesday)))
		assert.Equal(t, MarkNearFull, status.Mark)
		assert.True(t, status.Selectable)
	})

	t.Run("full class is closed", func(t *testing.T) {
		snap := readySnapshot(groupSeat("u1", wednesday), groupSeat("u2", wednesday), groupSeat("u3", wednesday))
		status := engine.Status(query("11:40"), snap)
		assert.Equal(t, MarkFull, status.Mark)
		assert.False(t, status.Selectable)
	})

	t.Run("viewer's own seat shows as mine", func(t *testing.T) {
		q := query("11:40")
		q.ViewerUID = "u2"
		status := engine.Status(q, readySnapshot(groupSeat("u1", wednesday), groupSeat("u2", wednesday)))
		assert.Equal(t, MarkMine, status.Mark)
		assert.False(t, status.Selectable)
	})

	t.Run("rest block closes the class", func(t *testing.T) {
		block := reservation.Reservation{
			ID:        "b1",
			Category:  schedule.Blocked,
			StartTime: at(wednesday, 11, 50),
			Minutes:   schedule.BlockRowMinutes,
		}
		status := engine.Status(query("11:40"), readySnapshot(block))
		assert.Equal(t, MarkFull, status.Mark)
	})

	t.Run("a private lesson across the class closes it", func(t *testing.T) {
		lesson := reservation.Reservation{
			ID:          "p1",
			CustomerUID: "someone-else",
			Category:    schedule.Private,
			StartTime:   at(wednesday, 12, 0),
			Minutes:     35,
		}
		status := engine.Status(query("11:40"), readySnapshot(lesson))
		assert.Equal(t, MarkFull, status.Mark)
		assert.False(t, status.Selectable)
	})

	t.Run("rows without a class are not applicable", func(t *testing.T) {
		status := engine.Status(query("13:00"), readySnapshot())
		assert.Equal(t, MarkNotApplicable, status.Mark)
	})

	t.Run("days without a class are not applicable", func(t *testing.T) {
		monday := wednesday.AddDate(0, 0, -2)
		status := engine.Status(Query{Day: monday, Row: "11:40", Category: schedule.Group}, readySnapshot())
		assert.Equal(t, MarkNotApplicable, status.Mark)
	})

	t.Run("not-ready snapshot never opens", func(t *testing.T) {
		status := engine.Status(query("11:40"), Snapshot{})
		assert.Equal(t, MarkFull, status.Mark)
		assert.False(t, status.Selectable)
	})
}

func TestEngine_PrivateStatus(t *testing.T) {
	engine := newOpenEngine(t)
	catalog := newCatalog(t)
	p2, ok := catalog.MenuByID("p2")
	require.True(t, ok)

	query := func(row string) Query {
		return Query{Day: wednesday, Row: row, Category: schedule.Private, Menu: &p2}
	}

	t.Run("free cell is open", func(t *testing.T) {
		status := engine.Status(query("10:00"), readySnapshot())
		assert.Equal(t, MarkOpen, status.Mark)
		assert.True(t, status.Selectable)
	})

	t.Run("an existing lesson closes every row its block covers", func(t *testing.T) {
		existing := reservation.Reservation{
			ID:        "r1",
			Category:  schedule.Private,
			StartTime: at(wednesday, 13, 0),
			Minutes:   60,
		}
		snap := readySnapshot(existing)

		// p2 occupies 60 minutes, so any start later than 12:00 collides.
		assert.Equal(t, MarkFull, engine.Status(query("13:30"), snap).Mark)
		assert.Equal(t, MarkFull, engine.Status(query("12:10"), snap).Mark)
		assert.Equal(t, MarkOpen, engine.Status(query("12:00"), snap).Mark)
		assert.Equal(t, MarkOpen, engine.Status(query("14:00"), snap).Mark)
	})

	t.Run("viewer's own lesson shows as mine", func(t *testing.T) {
		existing := reservation.Reservation{
			ID:          "r1",
			CustomerUID: "u1",
			Category:    schedule.Private,
			StartTime:   at(wednesday, 13, 0),
			Minutes:     60,
		}
		q := query("13:00")
		q.ViewerUID = "u1"
		status := engine.Status(q, readySnapshot(existing))
		assert.Equal(t, MarkMine, status.Mark)
	})

	t.Run("no menu selected falls back to the default block", func(t *testing.T) {
		q := Query{Day: wednesday, Row: "13:00", Category: schedule.Private}
		existing := reservation.Reservation{
			ID:        "r1",
			Category:  schedule.Private,
			StartTime: at(wednesday, 13, 30),
			Minutes:   60,
		}
		// Default block 35 minutes: 13:00 + 35 reaches into 13:30.
		assert.Equal(t, MarkFull, engine.Status(q, readySnapshot(existing)).Mark)
	})

	t.Run("malformed row is not applicable", func(t *testing.T) {
		status := engine.Status(query("break"), readySnapshot())
		assert.Equal(t, MarkNotApplicable, status.Mark)
	})

	t.Run("not-ready snapshot never opens", func(t *testing.T) {
		status := engine.Status(query("10:00"), Snapshot{})
		assert.Equal(t, MarkFull, status.Mark)
	})
}

func TestEngine_DefaultClosedPolicy(t *testing.T) {
	catalog := newCatalog(t)
	engine := NewEngine(catalog, DefaultClosedPolicy{})
	p1, ok := catalog.MenuByID("p1")
	require.True(t, ok)

	query := Query{Day: wednesday, Row: "13:00", Category: schedule.Private, Menu: &p1}

	openSlots := func(rows ...string) map[time.Time]struct{} {
		var starts []time.Time
		for _, row := range rows {
			start, err := catalog.At(wednesday, row)
			require.NoError(t, err)
			starts = append(starts, start)
		}
		return OpenSlotSet(starts)
	}

	t.Run("closed without open marks", func(t *testing.T) {
		snap := Snapshot{OpenSlots: openSlots(), Ready: true}
		assert.Equal(t, MarkFull, engine.Status(query, snap).Mark)
	})

	t.Run("every covered sub-slot must be open", func(t *testing.T) {
		// p1 blocks 35 minutes: rows 13:00 through 13:30.
		snap := Snapshot{OpenSlots: openSlots("13:00", "13:10", "13:20"), Ready: true}
		assert.Equal(t, MarkFull, engine.Status(query, snap).Mark)

		snap = Snapshot{OpenSlots: openSlots("13:00", "13:10", "13:20", "13:30"), Ready: true}
		status := engine.Status(query, snap)
		assert.Equal(t, MarkOpen, status.Mark)
		assert.True(t, status.Selectable)
	})
}

func TestEngine_AdminRow(t *testing.T) {
	engine := newOpenEngine(t)

	lesson := reservation.Reservation{
		ID:        "r1",
		Category:  schedule.Private,
		StartTime: at(wednesday, 13, 0),
		Minutes:   60,
	}
	snap := readySnapshot(lesson)

	assert.Len(t, engine.AdminRow(wednesday, "13:00", snap), 1)
	assert.Len(t, engine.AdminRow(wednesday, "13:50", snap), 1)
	assert.Empty(t, engine.AdminRow(wednesday, "14:00", snap))
	assert.Nil(t, engine.AdminRow(wednesday, "bogus", snap))
}
