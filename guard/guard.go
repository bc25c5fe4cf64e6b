// Package guard classifies actors and enforces registration expiry. Every
// gated operation calls Classify first; the expiry reset is the guard's
// only side effect and happens at most once per evaluation.
package guard

import (
	"errors"
	"time"

	"github.com/karaokehub/songbot/models"
	"github.com/karaokehub/songbot/session"
	"github.com/karaokehub/songbot/store"
	"github.com/karaokehub/songbot/utils"
)

// Role is the access classification of an actor.
type Role int

const (
	RoleUnknown Role = iota
	RoleUnregistered
	RoleRegistered
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleRegistered:
		return "registered"
	case RoleUnregistered:
		return "unregistered"
	}
	return "unknown"
}

// RegistrationTTL is how long a completed registration stays valid.
const RegistrationTTL = 16 * time.Hour

type Guard struct {
	Users    *store.UserStore
	Admins   *store.AdminStore
	Sessions *session.Store

	// Now is swappable for tests.
	Now func() time.Time
}

func NewGuard(users *store.UserStore, admins *store.AdminStore, sessions *session.Store) *Guard {
	return &Guard{Users: users, Admins: admins, Sessions: sessions, Now: time.Now}
}

// Classify resolves the chat id to a role. Admin status takes precedence
// over any user row; admins are exempt from expiry. A registered user past
// the TTL has the registration fields cleared and the session reset, and is
// reported as unregistered for this event. Calling Classify again
// immediately observes the cleared fields and writes nothing.
func (g *Guard) Classify(chatID int64) (Role, *models.User, error) {
	if _, err := g.Admins.FindByChatID(chatID); err == nil {
		return RoleAdmin, nil, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return RoleUnknown, nil, err
	}

	user, err := g.Users.FindByChatID(chatID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return RoleUnknown, nil, nil
		}
		return RoleUnknown, nil, err
	}

	if user.IsRegistered && user.RegisteredAt != nil && g.Now().Sub(*user.RegisteredAt) > RegistrationTTL {
		utils.InfoLogger.Printf("Registration expired for chat %d, resetting", chatID)
		if err := g.Users.ClearRegistration(chatID); err != nil {
			return RoleUnknown, nil, err
		}
		g.Sessions.Reset(chatID)
		user.DisplayName = nil
		user.TableNumber = nil
		user.IsRegistered = false
		user.RegisteredAt = nil
		return RoleUnregistered, user, nil
	}

	if user.IsRegistered {
		return RoleRegistered, user, nil
	}
	return RoleUnregistered, user, nil
}
