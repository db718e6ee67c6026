package availability

import (
	"context"
	"testing"
	"time"

	"github.com/lessonbook/lessonbook/pkg/openslot"
	"github.com/lessonbook/lessonbook/pkg/reservation"
	"github.com/lessonbook/lessonbook/pkg/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var resRepoStub = reservation.NewStubRepository()
var slotRepoStub = openslot.NewStubRepository()

func setupService(t *testing.T) (*ServiceImpl, func()) {
	catalog := newCatalog(t)
	engine := NewEngine(catalog, DefaultOpenPolicy{})
	service := NewService(engine, catalog, resRepoStub, slotRepoStub)
	return service, func() {
		t.Log("Teardown after test")
		resRepoStub.Reset()
		slotRepoStub.Reset()
	}
}

func TestServiceImpl_Week(t *testing.T) {
	service, teardown := setupService(t)
	defer teardown()

	_, err := resRepoStub.Store(context.Background(), reservation.Reservation{
		ID:        "r1",
		Category:  schedule.Private,
		StartTime: at(wednesday, 13, 0),
		Minutes:   60,
	})
	require.NoError(t, err)

	week, err := service.Week(context.Background(), wednesday, schedule.Private, "p2", "")
	require.NoError(t, err)

	assert.Len(t, week.Days, 7)
	assert.Len(t, week.Rows, 40)
	require.Len(t, week.Cells, len(week.Rows))

	rowIndex := map[string]int{}
	for i, row := range week.Rows {
		rowIndex[row] = i
	}

	// Column 0 is the requested Wednesday itself.
	assert.Equal(t, MarkFull, week.Cells[rowIndex["13:00"]][0].Mark)
	assert.Equal(t, MarkOpen, week.Cells[rowIndex["14:00"]][0].Mark)

	// The same row on the next day is unaffected.
	assert.Equal(t, MarkOpen, week.Cells[rowIndex["13:00"]][1].Mark)
}

func TestServiceImpl_Week_GroupColumn(t *testing.T) {
	service, teardown := setupService(t)
	defer teardown()

	week, err := service.Week(context.Background(), wednesday, schedule.Group, "", "")
	require.NoError(t, err)

	rowIndex := map[string]int{}
	for i, row := range week.Rows {
		rowIndex[row] = i
	}

	// Wednesday's class sits on the 11:40 row; other rows are dashes.
	wedClass := week.Cells[rowIndex["11:40"]][0]
	assert.Equal(t, MarkOpen, wedClass.Mark)
	assert.Equal(t, "ルンバウォーク&ベーシック", wedClass.ClassName)
	assert.Equal(t, "11:45", wedClass.ClassStart)
	assert.Equal(t, MarkNotApplicable, week.Cells[rowIndex["10:00"]][0].Mark)

	// Thursday (column 1) has its class at 14:00.
	thuClass := week.Cells[rowIndex["14:00"]][1]
	assert.Equal(t, MarkOpen, thuClass.Mark)
	assert.Equal(t, "ラテンビューティーベーシック", thuClass.ClassName)

	// Saturday (column 3) holds no class at all.
	assert.Equal(t, MarkNotApplicable, week.Cells[rowIndex["11:40"]][3].Mark)
}

func TestServiceImpl_Week_UnknownMenu(t *testing.T) {
	service, teardown := setupService(t)
	defer teardown()

	_, err := service.Week(context.Background(), wednesday, schedule.Private, "p9", "")
	assert.Error(t, err)
}

func TestServiceImpl_Snapshot(t *testing.T) {
	service, teardown := setupService(t)
	defer teardown()

	start := at(wednesday, 11, 0)
	_, err := resRepoStub.Store(context.Background(), reservation.Reservation{
		ID:        "r1",
		Category:  schedule.Private,
		StartTime: start,
		Minutes:   60,
	})
	require.NoError(t, err)
	require.NoError(t, slotRepoStub.Open(context.Background(), openslot.OpenSlot{
		ID:        "s1",
		SlotStart: start,
		CreatedAt: time.Now(),
	}))

	snap, err := service.Snapshot(context.Background(), wednesday, wednesday.AddDate(0, 0, 1))
	require.NoError(t, err)

	assert.True(t, snap.Ready)
	assert.Len(t, snap.Reservations, 1)
	_, ok := snap.OpenSlots[start.UTC()]
	assert.True(t, ok)
}
