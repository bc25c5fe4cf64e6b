// Package notify fans order notifications out to every enrolled admin and
// sends direct status updates to order owners. Delivery is fire-and-forget
// per recipient: one failed send is logged and never aborts the batch or
// the operation that triggered it.
package notify

import (
	"github.com/karaokehub/songbot/store"
	"github.com/karaokehub/songbot/transport"
	"github.com/karaokehub/songbot/utils"
)

type Notifier struct {
	Sender transport.Sender
	Admins *store.AdminStore
}

func NewNotifier(sender transport.Sender, admins *store.AdminStore) *Notifier {
	return &Notifier{Sender: sender, Admins: admins}
}

// NotifyAdmins sends the message to every admin independently and returns
// the number of failed deliveries. Failures are logged per recipient.
func (n *Notifier) NotifyAdmins(msg transport.Message) int {
	admins, err := n.Admins.All()
	if err != nil {
		utils.ErrorLogger.Printf("notify: listing admins failed: %v", err)
		return 0
	}

	failed := 0
	for _, admin := range admins {
		if err := n.Sender.Send(admin.ChatID, msg); err != nil {
			utils.ErrorLogger.Printf("notify: send to admin %d failed: %v", admin.ChatID, err)
			failed++
		}
	}
	if failed > 0 {
		utils.ErrorLogger.Printf("notify: %d of %d admin deliveries failed", failed, len(admins))
	}
	return failed
}

// NotifyUser sends a direct message to one chat, best effort.
func (n *Notifier) NotifyUser(chatID int64, msg transport.Message) {
	if err := n.Sender.Send(chatID, msg); err != nil {
		utils.ErrorLogger.Printf("notify: send to user %d failed: %v", chatID, err)
	}
}
