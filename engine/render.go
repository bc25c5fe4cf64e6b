package engine

import (
	"fmt"
	"strings"

	"github.com/karaokehub/songbot/catalog"
	"github.com/karaokehub/songbot/models"
	"github.com/karaokehub/songbot/orders"
	"github.com/karaokehub/songbot/session"
	"github.com/karaokehub/songbot/transport"
)

const historyLimit = 10

const (
	msgTryLater      = "Something went wrong, please try again later."
	msgNotRegistered = "You are not an admin and not registered. Send /start to register."
	msgAdminOnly     = "Admin access required."
)

// searchMenu is the search-mode selection keyboard.
func searchMenu() transport.Message {
	return transport.Message{
		Text: "How do you want to search?",
		Keyboard: [][]transport.Button{
			{{Label: "🎤 By artist", Data: transport.Tag(transport.KindMode, string(session.ModeArtist))}},
			{{Label: "🎶 By title", Data: transport.Tag(transport.KindMode, string(session.ModeTitle))}},
			{{Label: "🔍 Free search", Data: transport.Tag(transport.KindMode, string(session.ModeFree))}},
		},
	}
}

func queryPrompt(mode session.Mode) string {
	switch mode {
	case session.ModeArtist:
		return "Send me the artist name:"
	case session.ModeTitle:
		return "Send me the song title:"
	}
	return "Send me your search text:"
}

// adminSummary is the admin's idle screen: what they can do.
func adminSummary() transport.Message {
	return transport.Message{Text: strings.Join([]string{
		"Admin commands:",
		"/search - search the catalog",
		"/orders - pending orders",
		"/completed - orders resolved in the last 16 hours",
		"/complete_<id>, /cancel_<id> - resolve an order",
	}, "\n")}
}

// songLabel renders one result row: "artist - title" with a note marker for
// songs that have backing vocals.
func songLabel(song catalog.Song) string {
	label := song.Artist + " - " + song.Title
	if song.HasBacking {
		label += " 🎵"
	}
	return label
}

// resultsPage renders the current result window with one button per song
// and a control row: previous/next only where a page exists, a page
// indicator, and an exit action.
func resultsPage(sess *session.Session) transport.Message {
	pages := sess.PageCount()
	var rows [][]transport.Button
	for _, song := range sess.PageSlice() {
		rows = append(rows, []transport.Button{{
			Label: songLabel(song),
			Data:  transport.IntTag(transport.KindSong, int64(song.ID)),
		}})
	}

	var nav []transport.Button
	if sess.Page > 0 {
		nav = append(nav, transport.Button{Label: "⬅️", Data: transport.IntTag(transport.KindPage, int64(sess.Page-1))})
	}
	nav = append(nav, transport.Button{
		Label: fmt.Sprintf("%d/%d", sess.Page+1, pages),
		Data:  transport.Tag(transport.KindIgnore, ""),
	})
	if sess.Page < pages-1 {
		nav = append(nav, transport.Button{Label: "➡️", Data: transport.IntTag(transport.KindPage, int64(sess.Page+1))})
	}
	rows = append(rows, nav)
	rows = append(rows, []transport.Button{{Label: "🚪 Exit", Data: transport.Tag(transport.KindExit, "")}})

	return transport.Message{
		Text:     fmt.Sprintf("Select a song (%d found):", len(sess.Results)),
		Keyboard: rows,
	}
}

// confirmPrompt offers to order the selected song or go back to searching.
func confirmPrompt(song catalog.Song) transport.Message {
	return transport.Message{
		Text: fmt.Sprintf("Order \"%s\"?", songLabel(song)),
		Keyboard: [][]transport.Button{
			{{Label: "✅ Order it", Data: transport.IntTag(transport.KindOrder, int64(song.ID))}},
			{{Label: "🔄 Find another", Data: transport.Tag(transport.KindAgain, "")}},
		},
	}
}

// pendingList renders the admin /orders report with inline resolve hints.
func pendingList(pending []models.Order) transport.Message {
	if len(pending) == 0 {
		return transport.Message{Text: "No pending orders. 🎉"}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Pending orders (%d):\n", len(pending))
	for _, order := range pending {
		table := "-"
		if order.User.TableNumber != nil {
			table = *order.User.TableNumber
		}
		name := order.User.Username
		if order.User.DisplayName != nil {
			name = *order.User.DisplayName
		}
		fmt.Fprintf(&b, "\n#%d %s - %s (table %s, %s)\n/complete_%d /cancel_%d\n",
			order.ID, order.Artist, order.Title, table, name, order.ID, order.ID)
	}
	return transport.Message{Text: b.String()}
}

// resolvedReport renders the /completed report grouped by table.
func resolvedReport(groups []orders.TableGroup) transport.Message {
	if len(groups) == 0 {
		return transport.Message{Text: "Nothing resolved in the last 16 hours."}
	}

	var b strings.Builder
	b.WriteString("Resolved in the last 16 hours:\n")
	for _, group := range groups {
		fmt.Fprintf(&b, "\nTable %s:\n", group.Table)
		for _, order := range group.Orders {
			marker := "✅"
			if order.Status == models.OrderStatusCancelled {
				marker = "❌"
			}
			fmt.Fprintf(&b, "  %s #%d %s - %s\n", marker, order.ID, order.Artist, order.Title)
		}
	}
	return transport.Message{Text: b.String()}
}

// historyList renders the user's recent completed songs, re-orderable with
// one tap.
func historyList(distinct []models.Order) transport.Message {
	rows := make([][]transport.Button, 0, len(distinct))
	for _, order := range distinct {
		label := order.Artist + " - " + order.Title
		if order.HasBacking {
			label += " 🎵"
		}
		rows = append(rows, []transport.Button{{
			Label: label,
			Data:  transport.IntTag(transport.KindReorder, int64(order.SongID)),
		}})
	}
	return transport.Message{
		Text:     "Your recent songs - tap one to order it again:",
		Keyboard: rows,
	}
}
