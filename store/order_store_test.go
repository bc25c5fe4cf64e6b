package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/karaokehub/songbot/models"
	"github.com/karaokehub/songbot/utils"
)

func setupStoreTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	utils.InitLogger()

	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps the shared in-memory database alive and
	// serializes concurrent writers the way a real database would.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Admin{}, &models.Order{}))
	return db
}

func seedOrder(t *testing.T, db *gorm.DB) *models.Order {
	t.Helper()
	users := NewUserStore(db)
	user, err := users.FindOrCreate(100, "alice", "Alice", "", "en")
	require.NoError(t, err)

	order := &models.Order{
		UserID:    user.ID,
		SongID:    42,
		Title:     "Rolling in the Deep",
		Artist:    "Adele",
		Status:    models.OrderStatusPending,
		OrderedAt: time.Now(),
	}
	require.NoError(t, NewOrderStore(db).Create(order))
	return order
}

func TestResolveTransitionsPendingOnce(t *testing.T) {
	db := setupStoreTestDB(t, "orderstore1")
	orders := NewOrderStore(db)
	order := seedOrder(t, db)

	resolved, err := orders.Resolve(order.ID, models.OrderStatusCompleted, time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, resolved.Status)
	require.NotNil(t, resolved.CompletedAt)
	firstStamp := *resolved.CompletedAt

	// Second resolution reports the terminal state and changes nothing.
	again, err := orders.Resolve(order.ID, models.OrderStatusCancelled, time.Now().Add(time.Minute))
	assert.ErrorIs(t, err, ErrAlreadyResolved)
	require.NotNil(t, again)
	assert.Equal(t, models.OrderStatusCompleted, again.Status)
	require.NotNil(t, again.CompletedAt)
	assert.True(t, firstStamp.Equal(*again.CompletedAt))
}

func TestResolveUnknownOrder(t *testing.T) {
	db := setupStoreTestDB(t, "orderstore2")
	orders := NewOrderStore(db)

	_, err := orders.Resolve(9999, models.OrderStatusCompleted, time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentResolveHasOneWinner(t *testing.T) {
	db := setupStoreTestDB(t, "orderstore3")
	orders := NewOrderStore(db)
	order := seedOrder(t, db)

	outcomes := []string{models.OrderStatusCompleted, models.OrderStatusCancelled}
	errs := make([]error, len(outcomes))

	var wg sync.WaitGroup
	for i, outcome := range outcomes {
		wg.Add(1)
		go func(i int, outcome string) {
			defer wg.Done()
			_, errs[i] = orders.Resolve(order.ID, outcome, time.Now())
		}(i, outcome)
	}
	wg.Wait()

	var wins, losses int
	var winner string
	for i, err := range errs {
		switch err {
		case nil:
			wins++
			winner = outcomes[i]
		default:
			assert.ErrorIs(t, err, ErrAlreadyResolved)
			losses++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, losses)

	final, err := orders.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, winner, final.Status)
	assert.NotNil(t, final.CompletedAt)
}

func TestListPendingAndResolvedWindow(t *testing.T) {
	db := setupStoreTestDB(t, "orderstore4")
	orders := NewOrderStore(db)

	first := seedOrder(t, db)
	second := seedOrder(t, db)

	pending, err := orders.ListPending()
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	_, err = orders.Resolve(first.ID, models.OrderStatusCompleted, time.Now())
	require.NoError(t, err)

	recent, err := orders.ListResolvedSince(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, first.ID, recent[0].ID)

	// A cutoff in the future excludes everything.
	none, err := orders.ListResolvedSince(time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, none)

	pending, err = orders.ListPending()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)
}

func TestClearRegistrationKeepsRow(t *testing.T) {
	db := setupStoreTestDB(t, "orderstore5")
	users := NewUserStore(db)

	user, err := users.FindOrCreate(7, "bob", "Bob", "", "en")
	require.NoError(t, err)
	require.NoError(t, users.SetDisplayName(7, "Bobby"))
	require.NoError(t, users.SetTableNumber(7, "3", time.Now()))

	require.NoError(t, users.ClearRegistration(7))

	got, err := users.FindByChatID(7)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.False(t, got.IsRegistered)
	assert.Nil(t, got.DisplayName)
	assert.Nil(t, got.TableNumber)
	assert.Nil(t, got.RegisteredAt)
	assert.Equal(t, "bob", got.Username)
}
