package reservation

import (
	"testing"
	"time"

	"github.com/lessonbook/lessonbook/pkg/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRecord(t *testing.T) {
	start := time.Date(2026, time.September, 2, 11, 0, 0, 0, time.UTC)

	t.Run("keeps an explicit duration", func(t *testing.T) {
		r, ok := FromRecord(Record{
			ID:         "r1",
			LessonType: "private",
			Minutes:    60,
			HasMinutes: true,
			StartTime:  start,
		})
		require.True(t, ok)
		assert.Equal(t, 60, r.Minutes)
		assert.Equal(t, schedule.Private, r.Category)
	})

	t.Run("defaults a private record without duration to 35 minutes", func(t *testing.T) {
		r, ok := FromRecord(Record{ID: "r1", LessonType: "private", StartTime: start})
		require.True(t, ok)
		assert.Equal(t, schedule.DefaultPrivateMinutes, r.Minutes)
	})

	t.Run("defaults a group record without duration to 60 minutes", func(t *testing.T) {
		r, ok := FromRecord(Record{ID: "r1", LessonType: "group", StartTime: start})
		require.True(t, ok)
		assert.Equal(t, schedule.DefaultGroupMinutes, r.Minutes)
	})

	t.Run("treats zero and negative durations as absent", func(t *testing.T) {
		r, ok := FromRecord(Record{ID: "r1", LessonType: "group", Minutes: -5, HasMinutes: true, StartTime: start})
		require.True(t, ok)
		assert.Equal(t, schedule.DefaultGroupMinutes, r.Minutes)
	})

	t.Run("falls back to private for an unknown lesson type", func(t *testing.T) {
		r, ok := FromRecord(Record{ID: "r1", LessonType: "trial", StartTime: start})
		require.True(t, ok)
		assert.Equal(t, schedule.Private, r.Category)
		assert.Equal(t, schedule.DefaultPrivateMinutes, r.Minutes)
	})

	t.Run("drops a record without a start time", func(t *testing.T) {
		_, ok := FromRecord(Record{ID: "r1", LessonType: "private"})
		assert.False(t, ok)
	})
}

func TestGroupOccupancy(t *testing.T) {
	classStart := time.Date(2026, time.September, 2, 11, 45, 0, 0, time.UTC)
	classBlock := schedule.NewInterval(classStart, schedule.GroupBlock)

	groupSeat := func(id string) Reservation {
		return Reservation{ID: id, Category: schedule.Group, StartTime: classStart, Minutes: schedule.GroupBlock}
	}

	t.Run("counts group seats", func(t *testing.T) {
		seats, closed := GroupOccupancy([]Reservation{groupSeat("a"), groupSeat("b")}, classBlock)
		assert.Equal(t, 2, seats)
		assert.False(t, closed)
	})

	t.Run("a rest block closes the class", func(t *testing.T) {
		block := Reservation{ID: "x", Category: schedule.Blocked, StartTime: classStart, Minutes: 10}
		seats, closed := GroupOccupancy([]Reservation{groupSeat("a"), block}, classBlock)
		assert.Equal(t, 1, seats)
		assert.True(t, closed)
	})

	t.Run("an external reservation closes the class", func(t *testing.T) {
		ext := Reservation{ID: "x", Category: schedule.Group, External: true, StartTime: classStart, Minutes: schedule.GroupBlock}
		_, closed := GroupOccupancy([]Reservation{ext}, classBlock)
		assert.True(t, closed)
	})

	t.Run("a private lesson overlapping the class closes it", func(t *testing.T) {
		lesson := Reservation{ID: "x", Category: schedule.Private, StartTime: classStart.Add(30 * time.Minute), Minutes: 35}
		seats, closed := GroupOccupancy([]Reservation{groupSeat("a"), lesson}, classBlock)
		assert.Equal(t, 1, seats)
		assert.True(t, closed)
	})

	t.Run("a lesson ending at the class start does not count", func(t *testing.T) {
		before := Reservation{ID: "x", Category: schedule.Private, StartTime: classStart.Add(-60 * time.Minute), Minutes: 60}
		seats, closed := GroupOccupancy([]Reservation{before}, classBlock)
		assert.Zero(t, seats)
		assert.False(t, closed)
	})
}

func TestConflicts(t *testing.T) {
	start := time.Date(2026, time.September, 2, 11, 0, 0, 0, time.UTC)

	private := func(id string, at time.Time, minutes int) Reservation {
		return Reservation{ID: id, Category: schedule.Private, StartTime: at, Minutes: minutes}
	}
	group := func(id string, at time.Time) Reservation {
		return Reservation{ID: id, Category: schedule.Group, StartTime: at, Minutes: schedule.GroupBlock}
	}

	t.Run("private rejects any overlap", func(t *testing.T) {
		existing := []Reservation{private("a", start, 60)}
		assert.True(t, conflicts(private("b", start.Add(30*time.Minute), 60), existing))
	})

	t.Run("private accepts back-to-back placement", func(t *testing.T) {
		existing := []Reservation{private("a", start, 60)}
		assert.False(t, conflicts(private("b", start.Add(60*time.Minute), 60), existing))
	})

	t.Run("group accepts up to the seat limit", func(t *testing.T) {
		existing := []Reservation{group("a", start), group("b", start)}
		assert.False(t, conflicts(group("c", start), existing))

		existing = append(existing, group("c", start))
		assert.True(t, conflicts(group("d", start), existing))
	})

	t.Run("group rejects when a private lesson claims the span", func(t *testing.T) {
		existing := []Reservation{private("a", start.Add(30*time.Minute), 35)}
		assert.True(t, conflicts(group("b", start), existing))
	})

	t.Run("group rejects a blocked span", func(t *testing.T) {
		existing := []Reservation{{ID: "x", Category: schedule.Blocked, StartTime: start, Minutes: 10}}
		assert.True(t, conflicts(group("b", start), existing))
	})
}
