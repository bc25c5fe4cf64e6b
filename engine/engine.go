// Package engine is the conversation core: it sequences registration,
// search-mode selection, result browsing and order placement per chat, and
// routes the admin command surface. Events for one chat are handled in
// arrival order by the dispatcher; different chats run concurrently.
package engine

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/karaokehub/songbot/catalog"
	"github.com/karaokehub/songbot/guard"
	"github.com/karaokehub/songbot/orders"
	"github.com/karaokehub/songbot/session"
	"github.com/karaokehub/songbot/store"
	"github.com/karaokehub/songbot/transport"
	"github.com/karaokehub/songbot/utils"
)

type Engine struct {
	Guard    *guard.Guard
	Users    *store.UserStore
	Admins   *store.AdminStore
	Sessions *session.Store
	Catalog  catalog.Client
	Orders   *orders.Manager
	Sender   transport.Sender

	// AdminPasswordHash is the bcrypt hash the /new_admin prompt is checked
	// against.
	AdminPasswordHash []byte

	// Now is swappable for tests.
	Now func() time.Time
}

func NewEngine(g *guard.Guard, users *store.UserStore, admins *store.AdminStore, sessions *session.Store,
	cat catalog.Client, manager *orders.Manager, sender transport.Sender, adminPasswordHash []byte) *Engine {
	return &Engine{
		Guard:             g,
		Users:             users,
		Admins:            admins,
		Sessions:          sessions,
		Catalog:           cat,
		Orders:            manager,
		Sender:            sender,
		AdminPasswordHash: adminPasswordHash,
		Now:               time.Now,
	}
}

// Handle processes one inbound event to completion. Every failure is
// recovered into a reply; nothing here is fatal to the process.
func (e *Engine) Handle(ev transport.Event) {
	role, user, err := e.Guard.Classify(ev.ChatID)
	if err != nil {
		utils.ErrorLogger.Printf("engine: classify chat %d: %v", ev.ChatID, err)
		e.send(ev.ChatID, transport.Message{Text: msgTryLater})
		return
	}

	sess := e.Sessions.Get(ev.ChatID)

	if ev.IsCallback() {
		e.handleCallback(ev, role, sess)
		return
	}

	text := strings.TrimSpace(ev.Text)
	if text == "" {
		return
	}

	if sess.State == session.StateAwaitingAdminPassword && !strings.HasPrefix(text, "/") {
		e.handleAdminPassword(ev, sess, text)
		return
	}

	if strings.HasPrefix(text, "/") {
		e.handleCommand(ev, role, user, sess, text)
		return
	}

	e.handleText(ev, role, sess, text)
}

// handleText drives the registration and search FSM for plain text input.
func (e *Engine) handleText(ev transport.Event, role guard.Role, sess *session.Session, text string) {
	// Search states are shared between users and admins.
	switch sess.State {
	case session.StateChoosingMode:
		e.send(ev.ChatID, searchMenu())
		return
	case session.StateAwaitingQuery:
		e.runSearch(ev, sess, text)
		return
	}

	// Admins never go through registration; anything else they type gets
	// the capability summary.
	if role == guard.RoleAdmin {
		e.send(ev.ChatID, adminSummary())
		return
	}

	switch sess.State {
	case session.StateUnregistered:
		e.startRegistration(ev, role, sess)

	case session.StateAwaitingName:
		if err := e.Users.SetDisplayName(ev.ChatID, text); err != nil {
			e.send(ev.ChatID, transport.Message{Text: msgTryLater})
			return
		}
		sess.State = session.StateAwaitingTable
		e.send(ev.ChatID, transport.Message{Text: "Thanks, " + text + "! Now send your table number:"})

	case session.StateAwaitingTable:
		if err := e.Users.SetTableNumber(ev.ChatID, text, e.Now()); err != nil {
			e.send(ev.ChatID, transport.Message{Text: msgTryLater})
			return
		}
		sess.State = session.StateChoosingMode
		e.send(ev.ChatID, transport.Message{Text: "Great, table " + text + " it is!"})
		e.send(ev.ChatID, searchMenu())

	default:
		// No transition registered for this state and input: repair from
		// the persisted user row. Guards against sessions lost to a
		// restart.
		e.repairState(ev, sess)
	}
}

// startRegistration creates the user row if needed and prompts for a name,
// or repairs the state when the row says registration already happened.
func (e *Engine) startRegistration(ev transport.Event, role guard.Role, sess *session.Session) {
	user, err := e.Users.FindOrCreate(ev.ChatID, ev.Username, ev.FirstName, ev.LastName, ev.LanguageCode)
	if err != nil {
		e.send(ev.ChatID, transport.Message{Text: msgTryLater})
		return
	}

	if user.IsRegistered {
		e.repairState(ev, sess)
		return
	}

	sess.State = session.StateAwaitingName
	if role == guard.RoleUnknown {
		e.send(ev.ChatID, transport.Message{Text: "Welcome to the karaoke bot! 🎤\nPlease enter your name:"})
	} else {
		e.send(ev.ChatID, transport.Message{Text: "Please enter your name:"})
	}
}

// repairState re-derives the FSM position from the persisted user fields
// and re-emits the matching prompt.
func (e *Engine) repairState(ev transport.Event, sess *session.Session) {
	user, err := e.Users.FindByChatID(ev.ChatID)
	if err != nil {
		e.startRegistration(ev, guard.RoleUnknown, sess)
		return
	}

	switch {
	case !user.IsRegistered:
		sess.State = session.StateAwaitingName
		e.send(ev.ChatID, transport.Message{Text: "Please enter your name:"})
	case user.TableNumber == nil:
		sess.State = session.StateAwaitingTable
		e.send(ev.ChatID, transport.Message{Text: "Please send your table number:"})
	default:
		sess.ClearResults()
		sess.State = session.StateChoosingMode
		e.send(ev.ChatID, transport.Message{Text: "Welcome back, " + *user.DisplayName + "! Your table: " + *user.TableNumber})
		e.send(ev.ChatID, searchMenu())
	}
}

// handleAdminPassword checks the /new_admin password attempt.
func (e *Engine) handleAdminPassword(ev transport.Event, sess *session.Session, attempt string) {
	if err := bcrypt.CompareHashAndPassword(e.AdminPasswordHash, []byte(attempt)); err != nil {
		sess.State = session.StateUnregistered
		e.send(ev.ChatID, transport.Message{Text: "Wrong password."})
		return
	}

	if _, err := e.Admins.Enroll(ev.ChatID, ev.Username); err != nil {
		e.send(ev.ChatID, transport.Message{Text: msgTryLater})
		return
	}
	sess.State = session.StateUnregistered
	utils.InfoLogger.Printf("Admin enrolled: chat %d (%s)", ev.ChatID, ev.Username)
	e.send(ev.ChatID, transport.Message{Text: "You are now an admin."})
	e.send(ev.ChatID, adminSummary())
}

// runSearch executes the query for the session's mode. An empty result or
// an unavailable catalog keeps the state so the user can just try again.
func (e *Engine) runSearch(ev transport.Event, sess *session.Session, query string) {
	results, err := e.search(sess.Mode, query)
	if err != nil {
		utils.ErrorLogger.Printf("engine: search %q for chat %d: %v", query, ev.ChatID, err)
		e.send(ev.ChatID, transport.Message{Text: "Search is unavailable right now, please try again."})
		return
	}
	if len(results) == 0 {
		e.send(ev.ChatID, transport.Message{Text: "Nothing found, try another query."})
		return
	}

	sess.Results = results
	sess.Page = 0
	sess.State = session.StateBrowsing
	e.send(ev.ChatID, resultsPage(sess))
}

// search dispatches to the catalog client, expanding the query first:
// free-text into token subsequences, artist into rotations and the reversed
// word order. Combined results are deduplicated by song id.
func (e *Engine) search(mode session.Mode, query string) ([]catalog.Song, error) {
	switch mode {
	case session.ModeArtist:
		var merged []catalog.Song
		for _, variant := range artistVariants(query) {
			songs, err := e.Catalog.SearchByArtist(variant)
			if err != nil {
				return nil, err
			}
			merged = append(merged, songs...)
		}
		return clipSongs(dedupeSongs(merged), catalog.DefaultLimit), nil

	case session.ModeTitle:
		return e.Catalog.SearchByTitle(query)

	default:
		var merged []catalog.Song
		for _, combo := range tokenCombos(query) {
			songs, err := e.Catalog.SearchFreeText(combo)
			if err != nil {
				return nil, err
			}
			merged = append(merged, songs...)
		}
		return clipSongs(dedupeSongs(merged), catalog.DefaultLimit), nil
	}
}

func (e *Engine) send(chatID int64, msg transport.Message) {
	if err := e.Sender.Send(chatID, msg); err != nil {
		utils.ErrorLogger.Printf("engine: send to chat %d failed: %v", chatID, err)
	}
}
