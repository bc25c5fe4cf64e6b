package guard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/karaokehub/songbot/models"
	"github.com/karaokehub/songbot/session"
	"github.com/karaokehub/songbot/store"
	"github.com/karaokehub/songbot/utils"
)

func setupGuard(t *testing.T, name string) (*Guard, *store.UserStore, *store.AdminStore) {
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
	return NewGuard(users, admins, session.NewStore()), users, admins
}

func register(t *testing.T, users *store.UserStore, chatID int64, registeredAt time.Time) {
	t.Helper()
	_, err := users.FindOrCreate(chatID, "u", "U", "", "en")
	require.NoError(t, err)
	require.NoError(t, users.SetDisplayName(chatID, "Usher"))
	require.NoError(t, users.SetTableNumber(chatID, "5", registeredAt))
}

func TestClassifyUnknown(t *testing.T) {
	g, _, _ := setupGuard(t, "guard1")

	role, user, err := g.Classify(123)
	require.NoError(t, err)
	assert.Equal(t, RoleUnknown, role)
	assert.Nil(t, user)
}

func TestClassifyRegisteredAndUnregistered(t *testing.T) {
	g, users, _ := setupGuard(t, "guard2")

	_, err := users.FindOrCreate(1, "u", "U", "", "en")
	require.NoError(t, err)
	role, _, err := g.Classify(1)
	require.NoError(t, err)
	assert.Equal(t, RoleUnregistered, role)

	register(t, users, 2, time.Now())
	role, user, err := g.Classify(2)
	require.NoError(t, err)
	assert.Equal(t, RoleRegistered, role)
	require.NotNil(t, user)
	assert.True(t, user.IsRegistered)
}

func TestAdminPrecedence(t *testing.T) {
	g, users, admins := setupGuard(t, "guard3")

	// Enrolled as admin and registered as user: admin wins.
	register(t, users, 9, time.Now())
	_, err := admins.Enroll(9, "boss")
	require.NoError(t, err)

	role, _, err := g.Classify(9)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)
}

func TestExpiryResetsRegistration(t *testing.T) {
	g, users, _ := setupGuard(t, "guard4")

	register(t, users, 3, time.Now().Add(-17*time.Hour))

	role, user, err := g.Classify(3)
	require.NoError(t, err)
	assert.Equal(t, RoleUnregistered, role)
	require.NotNil(t, user)
	assert.False(t, user.IsRegistered)
	assert.Nil(t, user.DisplayName)
	assert.Nil(t, user.TableNumber)
	assert.Nil(t, user.RegisteredAt)

	stored, err := users.FindByChatID(3)
	require.NoError(t, err)
	assert.False(t, stored.IsRegistered)
	assert.Nil(t, stored.DisplayName)

	// Immediately re-classifying observes the cleared fields and stays
	// unregistered without another reset.
	role, _, err = g.Classify(3)
	require.NoError(t, err)
	assert.Equal(t, RoleUnregistered, role)
}

func TestAdminExemptFromExpiry(t *testing.T) {
	g, users, admins := setupGuard(t, "guard5")

	register(t, users, 4, time.Now().Add(-30*time.Hour))
	_, err := admins.Enroll(4, "boss")
	require.NoError(t, err)

	role, _, err := g.Classify(4)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	// The stale user row is untouched: admins bypass it entirely.
	stored, err := users.FindByChatID(4)
	require.NoError(t, err)
	assert.True(t, stored.IsRegistered)
}

func TestFreshRegistrationSurvivesClassify(t *testing.T) {
	g, users, _ := setupGuard(t, "guard6")

	register(t, users, 5, time.Now().Add(-15*time.Hour))

	role, _, err := g.Classify(5)
	require.NoError(t, err)
	assert.Equal(t, RoleRegistered, role)
}
