// Package orders owns the order lifecycle: placement with catalog snapshot,
// one-way resolution with admin gating, and the read-only projections the
// admin surface reports from. Placement and resolution trigger best-effort
// notifications; an order exists independently of whether anyone was
// notified.
package orders

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/karaokehub/songbot/catalog"
	"github.com/karaokehub/songbot/hub"
	"github.com/karaokehub/songbot/models"
	"github.com/karaokehub/songbot/notify"
	"github.com/karaokehub/songbot/store"
	"github.com/karaokehub/songbot/transport"
	"github.com/karaokehub/songbot/utils"
)

// ResolvedWindow is the trailing window the /completed report covers.
const ResolvedWindow = 16 * time.Hour

type Manager struct {
	Users    *store.UserStore
	Admins   *store.AdminStore
	Orders   *store.OrderStore
	Catalog  catalog.Client
	Notifier *notify.Notifier
	Hub      *hub.Hub // optional dashboard feed

	// Now is swappable for tests.
	Now func() time.Time
}

func NewManager(users *store.UserStore, admins *store.AdminStore, orders *store.OrderStore, cat catalog.Client, notifier *notify.Notifier, h *hub.Hub) *Manager {
	return &Manager{
		Users:    users,
		Admins:   admins,
		Orders:   orders,
		Catalog:  cat,
		Notifier: notifier,
		Hub:      h,
		Now:      time.Now,
	}
}

// PlaceOrder creates a pending order for the user's chat id, snapshotting
// title, artist and the backing flag from the catalog, then fans a summary
// out to all admins. Exactly one store write; notification failures are
// logged and do not undo the order.
func (m *Manager) PlaceOrder(chatID int64, songID int) (*models.Order, error) {
	user, err := m.Users.FindByChatID(chatID)
	if err != nil {
		return nil, err
	}

	song, err := m.Catalog.FindByID(songID)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		UserID:     user.ID,
		SongID:     song.ID,
		Title:      song.Title,
		Artist:     song.Artist,
		HasBacking: song.HasBacking,
		Status:     models.OrderStatusPending,
		OrderedAt:  m.Now(),
	}
	if err := m.Orders.Create(order); err != nil {
		return nil, err
	}
	order.User = *user

	utils.InfoLogger.Printf("Order #%d placed: song %d by chat %d", order.ID, song.ID, chatID)

	m.Notifier.NotifyAdmins(transport.Message{
		Text: AdminSummary(order),
		Keyboard: [][]transport.Button{{
			{Label: "✅ Complete", Data: transport.IntTag(transport.KindComplete, int64(order.ID))},
			{Label: "❌ Cancel", Data: transport.IntTag(transport.KindCancel, int64(order.ID))},
		}},
	})
	if m.Hub != nil {
		m.Hub.BroadcastOrderCreated(*order)
	}

	return order, nil
}

// Resolve moves a pending order to completed or cancelled on behalf of an
// admin and tells the order's owner. The store serializes racing resolvers;
// the loser gets store.ErrAlreadyResolved together with the order as the
// winner left it.
func (m *Manager) Resolve(orderID uint, adminChatID int64, outcome string) (*models.Order, error) {
	if outcome != models.OrderStatusCompleted && outcome != models.OrderStatusCancelled {
		return nil, store.ErrValidation
	}

	if _, err := m.Admins.FindByChatID(adminChatID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, store.ErrForbidden
		}
		return nil, err
	}

	order, err := m.Orders.Resolve(orderID, outcome, m.Now())
	if err != nil {
		return order, err
	}

	utils.InfoLogger.Printf("Order #%d resolved as %s by admin %d", order.ID, outcome, adminChatID)

	verdict := "completed! Get ready to sing 🎤"
	if outcome == models.OrderStatusCancelled {
		verdict = "cancelled."
	}
	m.Notifier.NotifyUser(order.User.ChatID, transport.Message{
		Text: fmt.Sprintf("Your order \"%s - %s\" has been %s", order.Artist, order.Title, verdict),
	})
	if m.Hub != nil {
		m.Hub.BroadcastOrderResolved(*order)
	}

	return order, nil
}

// ListPending returns the pending queue, oldest first. Callers gate this to
// admins.
func (m *Manager) ListPending() ([]models.Order, error) {
	return m.Orders.ListPending()
}

// TableGroup is one table's resolved orders within the reporting window.
type TableGroup struct {
	Table  string
	Orders []models.Order
}

// ListResolved returns the orders resolved within the trailing window,
// grouped by table number and sorted by table for stable reporting. Callers
// gate this to admins.
func (m *Manager) ListResolved(window time.Duration) ([]TableGroup, error) {
	resolved, err := m.Orders.ListResolvedSince(m.Now().Add(-window))
	if err != nil {
		return nil, err
	}

	byTable := make(map[string][]models.Order)
	for _, order := range resolved {
		table := "-"
		if order.User.TableNumber != nil {
			table = *order.User.TableNumber
		}
		byTable[table] = append(byTable[table], order)
	}

	tables := make([]string, 0, len(byTable))
	for table := range byTable {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	groups := make([]TableGroup, 0, len(tables))
	for _, table := range tables {
		groups = append(groups, TableGroup{Table: table, Orders: byTable[table]})
	}
	return groups, nil
}

// AdminSummary renders the fan-out text for a new order: song, id, and who
// ordered it from which table.
func AdminSummary(order *models.Order) string {
	backing := ""
	if order.HasBacking {
		backing = " 🎵"
	}
	name := order.User.Username
	if order.User.DisplayName != nil {
		name = *order.User.DisplayName
	}
	table := "-"
	if order.User.TableNumber != nil {
		table = *order.User.TableNumber
	}
	return fmt.Sprintf("New song order #%d\n%s - %s%s (song %d)\nFrom: %s, table %s\n/complete_%d /cancel_%d",
		order.ID, order.Artist, order.Title, backing, order.SongID, name, table, order.ID, order.ID)
}
