package openslot

import (
	"context"
	"testing"
	"time"

	"github.com/lessonbook/lessonbook/internal/auth"
	"github.com/lessonbook/lessonbook/internal/bus"
	"github.com/lessonbook/lessonbook/internal/config"
	"github.com/lessonbook/lessonbook/pkg/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var slotRepoStub = NewStubRepository()

func setup(t *testing.T) (*ServiceImpl, func()) {
	catalog, err := schedule.NewCatalog(config.Studio{
		Timezone:    "Asia/Tokyo",
		OpenTime:    "10:00",
		CloseTime:   "16:30",
		SlotMinutes: 10,
	})
	require.NoError(t, err)
	service := NewService(slotRepoStub, catalog, bus.New())
	return service, func() {
		t.Log("Teardown after test")
		slotRepoStub.Reset()
	}
}

func adminCtx() context.Context {
	return auth.WithSession(context.Background(), auth.Session{UID: "admin", Admin: true})
}

func TestServiceImpl_OpenAndClose(t *testing.T) {
	service, teardown := setup(t)
	defer teardown()

	tokyo, _ := time.LoadLocation("Asia/Tokyo")
	day := time.Date(2026, time.September, 2, 0, 0, 0, 0, tokyo)

	slot, err := service.Open(adminCtx(), day, "11:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.September, 2, 11, 0, 0, 0, tokyo).Unix(), slot.SlotStart.Unix())

	slots, err := service.FindBetween(adminCtx(), day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, slots, 1)

	require.NoError(t, service.Close(adminCtx(), day, "11:00"))

	slots, err = service.FindBetween(adminCtx(), day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestServiceImpl_RequiresAdmin(t *testing.T) {
	service, teardown := setup(t)
	defer teardown()

	tokyo, _ := time.LoadLocation("Asia/Tokyo")
	day := time.Date(2026, time.September, 2, 0, 0, 0, 0, tokyo)
	ctx := auth.WithSession(context.Background(), auth.Session{UID: "uid-1"})

	_, err := service.Open(ctx, day, "11:00")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, service.Close(ctx, day, "11:00"), ErrForbidden)
}

func TestServiceImpl_RejectsMalformedRow(t *testing.T) {
	service, teardown := setup(t)
	defer teardown()

	tokyo, _ := time.LoadLocation("Asia/Tokyo")
	day := time.Date(2026, time.September, 2, 0, 0, 0, 0, tokyo)

	_, err := service.Open(adminCtx(), day, "noon")
	assert.Error(t, err)
}
