package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/karaokehub/songbot/guard"
	"github.com/karaokehub/songbot/models"
	"github.com/karaokehub/songbot/orders"
	"github.com/karaokehub/songbot/session"
	"github.com/karaokehub/songbot/store"
	"github.com/karaokehub/songbot/transport"
)

// handleCommand routes the slash-command surface. Admin commands are gated
// here; gated handlers reply and mutate nothing when the actor lacks the
// role.
func (e *Engine) handleCommand(ev transport.Event, role guard.Role, user *models.User, sess *session.Session, text string) {
	cmd := strings.Fields(text)[0]

	switch {
	case cmd == "/start":
		if role == guard.RoleAdmin {
			e.send(ev.ChatID, adminSummary())
			return
		}
		if role == guard.RoleUnknown {
			e.startRegistration(ev, role, sess)
			return
		}
		e.repairState(ev, sess)

	case cmd == "/reset":
		if role == guard.RoleAdmin {
			e.send(ev.ChatID, transport.Message{Text: "Admins have nothing to reset."})
			return
		}
		if err := e.Users.ClearRegistration(ev.ChatID); err != nil {
			e.send(ev.ChatID, transport.Message{Text: msgTryLater})
			return
		}
		e.Sessions.Reset(ev.ChatID)
		e.send(ev.ChatID, transport.Message{Text: "Registration cleared. Send /start to register again."})

	case cmd == "/new_admin":
		if role == guard.RoleAdmin {
			e.send(ev.ChatID, transport.Message{Text: "You are already an admin."})
			return
		}
		sess.State = session.StateAwaitingAdminPassword
		e.send(ev.ChatID, transport.Message{Text: "Enter the admin password:"})

	case cmd == "/search":
		if role != guard.RoleAdmin && role != guard.RoleRegistered {
			e.send(ev.ChatID, transport.Message{Text: msgNotRegistered})
			return
		}
		sess.ClearResults()
		sess.State = session.StateChoosingMode
		e.send(ev.ChatID, searchMenu())

	case cmd == "/history":
		if role != guard.RoleRegistered {
			e.send(ev.ChatID, transport.Message{Text: msgNotRegistered})
			return
		}
		e.sendHistory(ev.ChatID, user)

	case cmd == "/orders":
		if role != guard.RoleAdmin {
			e.send(ev.ChatID, transport.Message{Text: msgAdminOnly})
			return
		}
		pending, err := e.Orders.ListPending()
		if err != nil {
			e.send(ev.ChatID, transport.Message{Text: msgTryLater})
			return
		}
		e.send(ev.ChatID, pendingList(pending))

	case cmd == "/completed":
		if role != guard.RoleAdmin {
			e.send(ev.ChatID, transport.Message{Text: msgAdminOnly})
			return
		}
		groups, err := e.Orders.ListResolved(orders.ResolvedWindow)
		if err != nil {
			e.send(ev.ChatID, transport.Message{Text: msgTryLater})
			return
		}
		e.send(ev.ChatID, resolvedReport(groups))

	case strings.HasPrefix(cmd, "/complete_"):
		e.resolveByCommand(ev, cmd[len("/complete_"):], models.OrderStatusCompleted)

	case strings.HasPrefix(cmd, "/cancel_"):
		e.resolveByCommand(ev, cmd[len("/cancel_"):], models.OrderStatusCancelled)

	default:
		e.send(ev.ChatID, transport.Message{Text: "Unknown command. Send /start to begin."})
	}
}

// resolveByCommand handles /complete_<id> and /cancel_<id>. Role checking
// is delegated to the lifecycle manager, which is the authority on it.
func (e *Engine) resolveByCommand(ev transport.Event, rawID, outcome string) {
	orderID, err := strconv.ParseUint(rawID, 10, 32)
	if err != nil {
		e.send(ev.ChatID, transport.Message{Text: "That does not look like an order id."})
		return
	}
	e.resolveOrder(ev.ChatID, uint(orderID), outcome)
}

// resolveOrder runs a resolution and renders the outcome, shared by the
// command and the notification buttons.
func (e *Engine) resolveOrder(chatID int64, orderID uint, outcome string) {
	order, err := e.Orders.Resolve(orderID, chatID, outcome)
	switch {
	case err == nil:
		e.send(chatID, transport.Message{Text: fmt.Sprintf("Order #%d marked %s.", order.ID, order.Status)})
	case errors.Is(err, store.ErrForbidden):
		e.send(chatID, transport.Message{Text: msgAdminOnly})
	case errors.Is(err, store.ErrNotFound):
		e.send(chatID, transport.Message{Text: fmt.Sprintf("Order #%d not found.", orderID)})
	case errors.Is(err, store.ErrAlreadyResolved):
		e.send(chatID, transport.Message{Text: fmt.Sprintf("Order #%d is already %s.", order.ID, order.Status)})
	default:
		e.send(chatID, transport.Message{Text: msgTryLater})
	}
}

// sendHistory lists the user's most recent distinct completed songs, each
// re-orderable with one tap.
func (e *Engine) sendHistory(chatID int64, user *models.User) {
	if user == nil {
		e.send(chatID, transport.Message{Text: msgNotRegistered})
		return
	}

	completed, err := e.Orders.Orders.ListCompletedByUser(user.ID)
	if err != nil {
		e.send(chatID, transport.Message{Text: msgTryLater})
		return
	}

	seen := make(map[int]bool)
	var distinct []models.Order
	for _, order := range completed {
		if seen[order.SongID] {
			continue
		}
		seen[order.SongID] = true
		distinct = append(distinct, order)
		if len(distinct) == historyLimit {
			break
		}
	}

	if len(distinct) == 0 {
		e.send(chatID, transport.Message{Text: "You have no completed orders yet."})
		return
	}
	e.send(chatID, historyList(distinct))
}
