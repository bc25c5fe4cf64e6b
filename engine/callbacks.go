package engine

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/karaokehub/songbot/guard"
	"github.com/karaokehub/songbot/models"
	"github.com/karaokehub/songbot/session"
	"github.com/karaokehub/songbot/store"
	"github.com/karaokehub/songbot/transport"
)

// handleCallback routes button presses. Unknown or stale tags fall through
// to the state-repair path rather than erroring at the user.
func (e *Engine) handleCallback(ev transport.Event, role guard.Role, sess *session.Session) {
	kind, payload := transport.ParseCallback(ev.Callback)

	switch kind {
	case transport.KindIgnore:
		return

	case transport.KindMode:
		if role != guard.RoleAdmin && role != guard.RoleRegistered {
			e.send(ev.ChatID, transport.Message{Text: msgNotRegistered})
			return
		}
		mode := session.Mode(payload)
		if mode != session.ModeArtist && mode != session.ModeTitle && mode != session.ModeFree {
			e.send(ev.ChatID, searchMenu())
			return
		}
		sess.Mode = mode
		sess.State = session.StateAwaitingQuery
		e.send(ev.ChatID, transport.Message{Text: queryPrompt(mode)})

	case transport.KindPage:
		if sess.State != session.StateBrowsing || len(sess.Results) == 0 {
			e.repairState(ev, sess)
			return
		}
		page, err := strconv.Atoi(payload)
		if err != nil || page < 0 || page >= sess.PageCount() {
			return
		}
		sess.Page = page
		e.send(ev.ChatID, resultsPage(sess))

	case transport.KindSong:
		if sess.State != session.StateBrowsing || len(sess.Results) == 0 {
			e.repairState(ev, sess)
			return
		}
		songID, err := strconv.Atoi(payload)
		if err != nil {
			return
		}
		for _, song := range sess.Results {
			if song.ID == songID {
				e.send(ev.ChatID, confirmPrompt(song))
				return
			}
		}
		e.send(ev.ChatID, resultsPage(sess))

	case transport.KindOrder:
		if sess.State != session.StateBrowsing {
			e.repairState(ev, sess)
			return
		}
		songID, err := strconv.Atoi(payload)
		if err != nil {
			return
		}
		e.placeOrder(ev, sess, songID)

	case transport.KindReorder:
		if role != guard.RoleRegistered {
			e.send(ev.ChatID, transport.Message{Text: msgNotRegistered})
			return
		}
		songID, err := strconv.Atoi(payload)
		if err != nil {
			return
		}
		e.placeOrder(ev, sess, songID)

	case transport.KindAgain:
		sess.ClearResults()
		sess.State = session.StateChoosingMode
		e.send(ev.ChatID, searchMenu())

	case transport.KindExit:
		sess.ClearResults()
		if role == guard.RoleAdmin {
			sess.State = session.StateUnregistered
			e.send(ev.ChatID, adminSummary())
			return
		}
		sess.State = session.StateChoosingMode
		e.send(ev.ChatID, searchMenu())

	case transport.KindComplete:
		e.resolveByCallback(ev, payload, models.OrderStatusCompleted)

	case transport.KindCancel:
		e.resolveByCallback(ev, payload, models.OrderStatusCancelled)

	default:
		e.repairState(ev, sess)
	}
}

func (e *Engine) resolveByCallback(ev transport.Event, payload, outcome string) {
	orderID, err := strconv.ParseUint(payload, 10, 32)
	if err != nil {
		return
	}
	e.resolveOrder(ev.ChatID, uint(orderID), outcome)
}

// placeOrder confirms an order, reports the result and drops back to the
// search menu on success. A failed placement leaves the session untouched
// so the user can retry.
func (e *Engine) placeOrder(ev transport.Event, sess *session.Session, songID int) {
	order, err := e.Orders.PlaceOrder(ev.ChatID, songID)
	switch {
	case err == nil:
		sess.ClearResults()
		sess.State = session.StateChoosingMode
		e.send(ev.ChatID, transport.Message{Text: fmt.Sprintf("Order #%d placed: %s - %s. We'll tell you when it's your turn!", order.ID, order.Artist, order.Title)})
		e.send(ev.ChatID, searchMenu())
	case errors.Is(err, store.ErrNotFound):
		e.send(ev.ChatID, transport.Message{Text: "That song is gone from the catalog, try searching again."})
	default:
		e.send(ev.ChatID, transport.Message{Text: msgTryLater})
	}
}
