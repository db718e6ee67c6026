package schedule

import (
	"testing"
	"time"

	"github.com/lessonbook/lessonbook/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func studioConfig() config.Studio {
	return config.Studio{
		Timezone:    "Asia/Tokyo",
		OpenTime:    "10:00",
		CloseTime:   "16:30",
		SlotMinutes: 10,
	}
}

func TestNewCatalog_Grid(t *testing.T) {
	catalog, err := NewCatalog(studioConfig())
	require.NoError(t, err)

	rows := catalog.Rows()
	assert.Len(t, rows, 40)
	assert.Equal(t, "10:00", rows[0])
	assert.Equal(t, "10:10", rows[1])
	assert.Equal(t, "16:30", rows[len(rows)-1])
	assert.Equal(t, 10, catalog.SlotMinutes())
}

func TestNewCatalog_Validation(t *testing.T) {
	t.Run("rejects granularity that does not divide an hour", func(t *testing.T) {
		cfg := studioConfig()
		cfg.SlotMinutes = 7
		_, err := NewCatalog(cfg)
		assert.Error(t, err)
	})

	t.Run("rejects malformed open time", func(t *testing.T) {
		cfg := studioConfig()
		cfg.OpenTime = "ten"
		_, err := NewCatalog(cfg)
		assert.Error(t, err)
	})

	t.Run("rejects unknown timezone", func(t *testing.T) {
		cfg := studioConfig()
		cfg.Timezone = "Mars/Olympus"
		_, err := NewCatalog(cfg)
		assert.Error(t, err)
	})
}

func TestCatalog_Menus(t *testing.T) {
	catalog, err := NewCatalog(studioConfig())
	require.NoError(t, err)

	menus := catalog.Menus()
	require.Len(t, menus, 4)

	// Each menu occupies its instruction time plus the cleanup interval.
	p2, ok := catalog.MenuByID("p2")
	require.True(t, ok)
	assert.Equal(t, 50, p2.Duration)
	assert.Equal(t, 60, p2.Block)

	p4, ok := catalog.MenuByID("p4")
	require.True(t, ok)
	assert.Equal(t, 100, p4.Duration)
	assert.Equal(t, 110, p4.Block)

	_, ok = catalog.MenuByID("p9")
	assert.False(t, ok)
}

func TestCatalog_GroupTimetable(t *testing.T) {
	catalog, err := NewCatalog(studioConfig())
	require.NoError(t, err)

	t.Run("wednesday class is shown on the 11:40 row", func(t *testing.T) {
		class, ok := catalog.ClassFor(time.Wednesday)
		require.True(t, ok)
		assert.Equal(t, "11:45", class.Start)
		assert.True(t, catalog.IsGroupRow(time.Wednesday, "11:40"))
		assert.True(t, catalog.IsGroupRow(time.Wednesday, "11:45"))
		assert.False(t, catalog.IsGroupRow(time.Wednesday, "11:50"))
	})

	t.Run("thursday and friday classes align to their rows", func(t *testing.T) {
		assert.True(t, catalog.IsGroupRow(time.Thursday, "14:00"))
		assert.True(t, catalog.IsGroupRow(time.Friday, "15:00"))
	})

	t.Run("no class on other weekdays", func(t *testing.T) {
		_, ok := catalog.ClassFor(time.Monday)
		assert.False(t, ok)
		assert.False(t, catalog.IsGroupRow(time.Monday, "11:40"))
	})
}

func TestCatalog_At(t *testing.T) {
	catalog, err := NewCatalog(studioConfig())
	require.NoError(t, err)
	tokyo := catalog.Location()

	t.Run("combines calendar day with row time", func(t *testing.T) {
		day := time.Date(2026, time.September, 2, 0, 0, 0, 0, tokyo)
		at, err := catalog.At(day, "11:40")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, time.September, 2, 11, 40, 0, 0, tokyo), at)
	})

	t.Run("uses the local calendar date of a UTC-shifted input", func(t *testing.T) {
		// 2026-09-02 20:00 UTC is already 09-03 in Tokyo.
		day := time.Date(2026, time.September, 2, 20, 0, 0, 0, time.UTC)
		at, err := catalog.At(day, "10:00")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, time.September, 3, 10, 0, 0, 0, tokyo), at)
	})

	t.Run("rejects malformed rows", func(t *testing.T) {
		day := time.Date(2026, time.September, 2, 0, 0, 0, 0, tokyo)
		for _, row := range []string{"", "noon", "25:00", "10:75"} {
			_, err := catalog.At(day, row)
			assert.Error(t, err, "row %q", row)
		}
	})
}

func TestCatalog_ParseDay(t *testing.T) {
	t.Run("interprets the date in the studio timezone", func(t *testing.T) {
		catalog, err := NewCatalog(studioConfig())
		require.NoError(t, err)

		day, err := catalog.ParseDay("2026-09-02")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, time.September, 2, 0, 0, 0, 0, catalog.Location()), day)
	})

	t.Run("keeps the requested day in a studio west of UTC", func(t *testing.T) {
		cfg := studioConfig()
		cfg.Timezone = "America/New_York"
		catalog, err := NewCatalog(cfg)
		require.NoError(t, err)

		// A date parsed as UTC midnight would still be 09-01 locally; the
		// studio-local parse must land the booking on 09-02.
		day, err := catalog.ParseDay("2026-09-02")
		require.NoError(t, err)
		at, err := catalog.At(day, "10:00")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, time.September, 2, 10, 0, 0, 0, catalog.Location()), at)
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		catalog, err := NewCatalog(studioConfig())
		require.NoError(t, err)
		for _, value := range []string{"", "today", "2026/09/02", "02-09-2026"} {
			_, err := catalog.ParseDay(value)
			assert.Error(t, err, "value %q", value)
		}
	})
}

func TestInterval_Overlaps(t *testing.T) {
	base := time.Date(2026, time.September, 2, 11, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		a        Interval
		b        Interval
		overlaps bool
	}{
		{
			name:     "identical intervals overlap",
			a:        NewInterval(base, 60),
			b:        NewInterval(base, 60),
			overlaps: true,
		},
		{
			name:     "partial overlap",
			a:        NewInterval(base, 60),
			b:        NewInterval(base.Add(30*time.Minute), 60),
			overlaps: true,
		},
		{
			name:     "containment",
			a:        NewInterval(base, 60),
			b:        NewInterval(base.Add(10*time.Minute), 10),
			overlaps: true,
		},
		{
			name:     "touching endpoints do not overlap",
			a:        NewInterval(base, 60),
			b:        NewInterval(base.Add(60*time.Minute), 60),
			overlaps: false,
		},
		{
			name:     "disjoint",
			a:        NewInterval(base, 30),
			b:        NewInterval(base.Add(2*time.Hour), 30),
			overlaps: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.overlaps, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.overlaps, tt.b.Overlaps(tt.a))
		})
	}
}

func TestCapacity(t *testing.T) {
	assert.Equal(t, 1, Capacity(Private))
	assert.Equal(t, 3, Capacity(Group))
	assert.Equal(t, 1, Capacity(Blocked))
}
