package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_LoadAndReload(t *testing.T) {
	service, cal, loc := setupService(t)
	store := NewStore(service)
	ctx := context.Background()

	require.NoError(t, store.Load(ctx, time.Date(2024, 5, 1, 0, 0, 0, 0, loc), time.Date(2024, 5, 12, 0, 0, 0, 0, loc)))
	assert.Equal(t, []string{"S1_20240504T060000Z", "S1_20240511T060000Z"}, ids(store.Events()))

	cal.Put(Event{ID: "E1", When: AllDay{Start: "2024-05-05", End: "2024-05-06"}})
	require.NoError(t, store.Reload(ctx))
	assert.Equal(t, []string{"S1_20240504T060000Z", "E1", "S1_20240511T060000Z"}, ids(store.Events()))
}

func TestStore_StaleLoadIsDiscarded(t *testing.T) {
	service, cal, loc := setupService(t)
	store := NewStore(service)
	started := make(chan struct{})
	first := true
	cal.BeforeList = func(ctx context.Context) error {
		if first {
			first = false
			close(started)
			<-ctx.Done()
			return ctx.Err()
		}
		return nil
	}

	// given a slow load of May
	result := make(chan error, 1)
	go func() {
		result <- store.Load(context.Background(), time.Date(2024, 5, 1, 0, 0, 0, 0, loc), time.Date(2024, 6, 1, 0, 0, 0, 0, loc))
	}()
	<-started

	// when the user navigates to a single week meanwhile
	err := store.Load(context.Background(), time.Date(2024, 5, 13, 0, 0, 0, 0, loc), time.Date(2024, 5, 20, 0, 0, 0, 0, loc))

	// then the old load is cancelled and the newer list wins
	require.NoError(t, err)
	select {
	case err := <-result:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(5 * time.Second):
		t.Fatal("stale load was not cancelled")
	}
	assert.Equal(t, []string{"S1_20240518T060000Z"}, ids(store.Events()))
}

func TestStore_DeleteFiltersAfterAcknowledgement(t *testing.T) {
	service, cal, loc := setupService(t)
	store := NewStore(service)
	ctx := context.Background()
	require.NoError(t, store.Load(ctx, time.Date(2024, 5, 1, 0, 0, 0, 0, loc), time.Date(2024, 6, 1, 0, 0, 0, 0, loc)))
	events := store.Events()
	boundary := events[2]
	require.Equal(t, "S1_20240518T060000Z", boundary.ID)
	request, err := NewDeletionRequest(boundary, ScopeFuture)
	require.NoError(t, err)

	var seenDuringReload []string
	cal.BeforeList = func(context.Context) error {
		seenDuringReload = ids(store.Events())
		return nil
	}

	require.NoError(t, store.Delete(ctx, request))

	assert.Equal(t, []string{"S1_20240504T060000Z", "S1_20240511T060000Z", "H1"}, seenDuringReload)
	assert.Equal(t, []string{"S1_20240504T060000Z", "S1_20240511T060000Z", "H1"}, ids(store.Events()))
}

func TestStore_FailedDeleteLeavesListUntouched(t *testing.T) {
	service, cal, loc := setupService(t)
	store := NewStore(service)
	ctx := context.Background()
	require.NoError(t, store.Load(ctx, time.Date(2024, 5, 1, 0, 0, 0, 0, loc), time.Date(2024, 6, 1, 0, 0, 0, 0, loc)))
	before := ids(store.Events())
	cal.Err = errors.New("timeout")

	err := store.Delete(ctx, DeletionRequest{Scope: ScopeSingle, ID: "S1_20240511T060000Z"})

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, before, ids(store.Events()))
}

func TestStore_UpdateTargetsMasterAndReloads(t *testing.T) {
	service, cal, loc := setupService(t)
	store := NewStore(service)
	ctx := context.Background()
	require.NoError(t, store.Load(ctx, time.Date(2024, 5, 1, 0, 0, 0, 0, loc), time.Date(2024, 5, 12, 0, 0, 0, 0, loc)))
	occ := store.Events()[1]
	draft := DraftFromEvent(occ, loc)
	draft.Summary = "Recycling"

	_, err := store.Update(ctx, occ, draft)

	require.NoError(t, err)
	assert.Equal(t, []string{"S1"}, cal.Updated)
	for _, e := range store.Events() {
		assert.Equal(t, "Recycling", e.Summary)
	}
}

func TestStore_NeedsSetup(t *testing.T) {
	store := NewStore(NewService(Static(nil), time.UTC))

	err := store.Load(context.Background(), time.Now(), time.Now().Add(time.Hour))

	require.NoError(t, err)
	assert.True(t, store.NeedsSetup())
	assert.Empty(t, store.Events())
}

func TestStore_MutationSucceedsWhenReloadFails(t *testing.T) {
	// given
	service, cal, loc := setupService(t)
	store := NewStore(service)
	ctx := context.Background()
	require.NoError(t, store.Load(ctx, time.Date(2024, 5, 1, 0, 0, 0, 0, loc), time.Date(2024, 6, 1, 0, 0, 0, 0, loc)))
	cal.BeforeList = func(context.Context) error { return errors.New("list timed out") }
	start := time.Date(2024, 5, 7, 18, 0, 0, 0, loc)
	draft := Draft{Summary: "Dentist", Start: start.Format("2006-01-02T15:04"), End: start.Add(time.Hour).Format("2006-01-02T15:04")}

	// when
	created, createErr := store.Create(ctx, draft)
	deleteErr := store.Delete(ctx, DeletionRequest{Scope: ScopeSingle, ID: "H1"})

	// then both changes are reported as done and the reload failure is kept aside
	require.NoError(t, createErr)
	require.NoError(t, deleteErr)
	_, ok := cal.Get(created.ID)
	assert.True(t, ok)
	assert.NotContains(t, ids(store.Events()), "H1")
	assert.ErrorContains(t, store.ReloadErr(), "list timed out")

	// and the next good reload clears it
	cal.BeforeList = nil
	require.NoError(t, store.Delete(ctx, DeletionRequest{Scope: ScopeSingle, ID: created.ID}))
	assert.NoError(t, store.ReloadErr())
}
