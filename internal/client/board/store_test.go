package board

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iudanet/garageboard/internal/models"
)

func TestStore_DispatchNotifiesListeners(t *testing.T) {
	store := NewStore(newTestState())

	var got []State
	unsubscribe := store.Subscribe(func(s State) {
		got = append(got, s)
	})

	store.Dispatch(MoveStarted("1"))
	store.Dispatch(ErrorCleared())
	unsubscribe()
	store.Dispatch(MoveStarted("2"))

	assert.Len(t, got, 2)
	assert.True(t, got[0].IsMoving("1"))
	assert.True(t, store.Snapshot().IsMoving("2"))
}

func TestStore_SnapshotIsIsolated(t *testing.T) {
	store := NewStore(newTestState())

	snap := store.Snapshot()
	snap.Appointments[0].Status = models.StatusCompleted

	card, ok := store.Appointment("1")
	assert.True(t, ok)
	assert.Equal(t, models.StatusScheduled, card.Status)
}

func TestStore_PendingCount(t *testing.T) {
	store := NewStore(newTestState())
	assert.Equal(t, 0, store.PendingCount())

	store.Dispatch(MoveApplied(testUpdate("1",
		models.Placement{Status: models.StatusScheduled},
		models.Placement{Status: models.StatusReady})))
	assert.Equal(t, 1, store.PendingCount())

	store.Dispatch(MoveRolledBack("1"))
	assert.Equal(t, 0, store.PendingCount())
}

func TestStore_ConcurrentDispatch(t *testing.T) {
	store := NewStore(newTestState())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				store.Dispatch(RefreshingSet(true))
			} else {
				_ = store.Snapshot()
			}
		}(i)
	}
	wg.Wait()

	assert.True(t, store.Snapshot().Refreshing)
}
