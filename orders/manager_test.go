package orders

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/karaokehub/songbot/catalog"
	"github.com/karaokehub/songbot/models"
	"github.com/karaokehub/songbot/notify"
	"github.com/karaokehub/songbot/store"
	"github.com/karaokehub/songbot/transport"
	"github.com/karaokehub/songbot/utils"
)

// flakySender records messages and fails for chats listed in failFor.
type flakySender struct {
	mu      sync.Mutex
	sent    map[int64][]transport.Message
	failFor map[int64]bool
}

func newFlakySender(failFor ...int64) *flakySender {
	fs := &flakySender{
		sent:    make(map[int64][]transport.Message),
		failFor: make(map[int64]bool),
	}
	for _, chatID := range failFor {
		fs.failFor[chatID] = true
	}
	return fs
}

func (fs *flakySender) Send(chatID int64, msg transport.Message) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.failFor[chatID] {
		return errors.New("delivery refused")
	}
	fs.sent[chatID] = append(fs.sent[chatID], msg)
	return nil
}

func (fs *flakySender) messages(chatID int64) []transport.Message {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return append([]transport.Message(nil), fs.sent[chatID]...)
}

type stubCatalog struct {
	songs map[int]catalog.Song
}

func (sc *stubCatalog) FindByID(id int) (*catalog.Song, error) {
	song, ok := sc.songs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &song, nil
}

func (sc *stubCatalog) SearchFreeText(string) ([]catalog.Song, error) { return nil, nil }
func (sc *stubCatalog) SearchByArtist(string) ([]catalog.Song, error) { return nil, nil }
func (sc *stubCatalog) SearchByTitle(string) ([]catalog.Song, error)  { return nil, nil }

type managerEnv struct {
	manager *Manager
	sender  *flakySender
	users   *store.UserStore
	admins  *store.AdminStore
	orders  *store.OrderStore
}

func newManagerEnv(t *testing.T, name string, sender *flakySender) *managerEnv {
	t.Helper()
	utils.InitLogger()

	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Admin{}, &models.Order{}))

	users := store.NewUserStore(db)
	admins := store.NewAdminStore(db)
	orderStore := store.NewOrderStore(db)
	cat := &stubCatalog{songs: map[int]catalog.Song{
		42: {ID: 42, Title: "Rolling in the Deep", Artist: "Adele", HasBacking: true},
		43: {ID: 43, Title: "Under Pressure", Artist: "Queen"},
	}}

	manager := NewManager(users, admins, orderStore, cat, notify.NewNotifier(sender, admins), nil)
	return &managerEnv{manager: manager, sender: sender, users: users, admins: admins, orders: orderStore}
}

func registerChat(t *testing.T, env *managerEnv, chatID int64, name, table string) *models.User {
	t.Helper()
	_, err := env.users.FindOrCreate(chatID, "u", "U", "", "en")
	require.NoError(t, err)
	require.NoError(t, env.users.SetDisplayName(chatID, name))
	require.NoError(t, env.users.SetTableNumber(chatID, table, time.Now()))
	user, err := env.users.FindByChatID(chatID)
	require.NoError(t, err)
	return user
}

func TestPlaceOrderSnapshotsSong(t *testing.T) {
	env := newManagerEnv(t, "manager1", newFlakySender())
	registerChat(t, env, 10, "Alice", "12")

	order, err := env.manager.PlaceOrder(10, 42)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, 42, order.SongID)
	assert.Equal(t, "Rolling in the Deep", order.Title)
	assert.Equal(t, "Adele", order.Artist)
	assert.True(t, order.HasBacking)
	assert.Nil(t, order.CompletedAt)

	stored, err := env.orders.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Adele", stored.Artist)
}

func TestPlaceOrderUnknownSong(t *testing.T) {
	env := newManagerEnv(t, "manager2", newFlakySender())
	registerChat(t, env, 10, "Alice", "12")

	_, err := env.manager.PlaceOrder(10, 999)
	assert.ErrorIs(t, err, store.ErrNotFound)

	pending, err := env.orders.ListPending()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestPlaceOrderUnknownChat(t *testing.T) {
	env := newManagerEnv(t, "manager3", newFlakySender())

	_, err := env.manager.PlaceOrder(555, 42)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestFanOutSurvivesFailingAdmin(t *testing.T) {
	// Admin 901 refuses delivery; 900 and 902 must still hear about it.
	sender := newFlakySender(901)
	env := newManagerEnv(t, "manager4", sender)
	registerChat(t, env, 10, "Alice", "12")
	for _, chatID := range []int64{900, 901, 902} {
		_, err := env.admins.Enroll(chatID, "boss")
		require.NoError(t, err)
	}

	order, err := env.manager.PlaceOrder(10, 42)
	require.NoError(t, err)
	require.NotNil(t, order)

	for _, chatID := range []int64{900, 902} {
		msgs := sender.messages(chatID)
		require.Len(t, msgs, 1, "admin %d", chatID)
		assert.Contains(t, msgs[0].Text, "song 42")
		assert.Contains(t, msgs[0].Text, "table 12")
	}
	assert.Empty(t, sender.messages(901))

	// The order exists regardless of delivery trouble.
	pending, err := env.orders.ListPending()
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestResolveGating(t *testing.T) {
	env := newManagerEnv(t, "manager5", newFlakySender())
	registerChat(t, env, 10, "Alice", "12")
	_, err := env.admins.Enroll(900, "boss")
	require.NoError(t, err)

	order, err := env.manager.PlaceOrder(10, 42)
	require.NoError(t, err)

	_, err = env.manager.Resolve(order.ID, 10, models.OrderStatusCompleted)
	assert.ErrorIs(t, err, store.ErrForbidden)

	_, err = env.manager.Resolve(order.ID, 900, "sung")
	assert.ErrorIs(t, err, store.ErrValidation)

	stored, err := env.orders.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, stored.Status)
}

func TestResolveNotifiesOwner(t *testing.T) {
	sender := newFlakySender()
	env := newManagerEnv(t, "manager6", sender)
	registerChat(t, env, 10, "Alice", "12")
	_, err := env.admins.Enroll(900, "boss")
	require.NoError(t, err)

	order, err := env.manager.PlaceOrder(10, 42)
	require.NoError(t, err)

	resolved, err := env.manager.Resolve(order.ID, 900, models.OrderStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, resolved.Status)
	require.NotNil(t, resolved.CompletedAt)

	msgs := sender.messages(10)
	require.NotEmpty(t, msgs)
	verdict := msgs[len(msgs)-1].Text
	assert.Contains(t, verdict, "Adele - Rolling in the Deep")
	assert.Contains(t, verdict, "completed")

	// The loser of a repeat resolution sees the terminal state.
	again, err := env.manager.Resolve(order.ID, 900, models.OrderStatusCancelled)
	assert.ErrorIs(t, err, store.ErrAlreadyResolved)
	require.NotNil(t, again)
	assert.Equal(t, models.OrderStatusCompleted, again.Status)
	// No second notification for the owner.
	assert.Len(t, sender.messages(10), len(msgs))
}

func TestResolveCancelledVerdict(t *testing.T) {
	sender := newFlakySender()
	env := newManagerEnv(t, "manager7", sender)
	registerChat(t, env, 10, "Alice", "12")
	_, err := env.admins.Enroll(900, "boss")
	require.NoError(t, err)

	order, err := env.manager.PlaceOrder(10, 43)
	require.NoError(t, err)

	_, err = env.manager.Resolve(order.ID, 900, models.OrderStatusCancelled)
	require.NoError(t, err)

	msgs := sender.messages(10)
	require.NotEmpty(t, msgs)
	assert.Contains(t, msgs[len(msgs)-1].Text, "cancelled")
}

func TestListResolvedGroupsByTable(t *testing.T) {
	env := newManagerEnv(t, "manager8", newFlakySender())
	_, err := env.admins.Enroll(900, "boss")
	require.NoError(t, err)

	registerChat(t, env, 10, "Alice", "12")
	registerChat(t, env, 11, "Bob", "3")

	first, err := env.manager.PlaceOrder(10, 42)
	require.NoError(t, err)
	second, err := env.manager.PlaceOrder(11, 43)
	require.NoError(t, err)
	third, err := env.manager.PlaceOrder(10, 43)
	require.NoError(t, err)

	_, err = env.manager.Resolve(first.ID, 900, models.OrderStatusCompleted)
	require.NoError(t, err)
	_, err = env.manager.Resolve(second.ID, 900, models.OrderStatusCancelled)
	require.NoError(t, err)
	_, err = env.manager.Resolve(third.ID, 900, models.OrderStatusCompleted)
	require.NoError(t, err)

	groups, err := env.manager.ListResolved(ResolvedWindow)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	// Sorted by table number as a string.
	assert.Equal(t, "12", groups[0].Table)
	assert.Len(t, groups[0].Orders, 2)
	assert.Equal(t, "3", groups[1].Table)
	assert.Len(t, groups[1].Orders, 1)
	assert.Equal(t, models.OrderStatusCancelled, groups[1].Orders[0].Status)

	// An expired window hides everything.
	old, err := env.manager.ListResolved(0)
	require.NoError(t, err)
	assert.Empty(t, old)
}

func TestAdminSummaryRendering(t *testing.T) {
	name := "Alice"
	table := "12"
	order := &models.Order{
		SongID:     42,
		Title:      "Rolling in the Deep",
		Artist:     "Adele",
		HasBacking: true,
		User: models.User{
			Username:    "alice",
			DisplayName: &name,
			TableNumber: &table,
		},
	}
	order.ID = 7

	text := AdminSummary(order)
	assert.Contains(t, text, "#7")
	assert.Contains(t, text, "Adele - Rolling in the Deep 🎵")
	assert.Contains(t, text, "song 42")
	assert.Contains(t, text, "From: Alice, table 12")
	assert.Contains(t, text, "/complete_7 /cancel_7")
}
