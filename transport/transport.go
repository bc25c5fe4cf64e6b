// Package transport defines the message-transport boundary: inbound events
// (free text or button presses) tagged with the originating chat id, and
// outbound messages with optional inline keyboards. The engine never talks
// to a concrete transport, only to the Sender interface.
package transport

import (
	"strconv"
	"strings"
)

// Event is one inbound update. Exactly one of Text or Callback is set:
// Text for a typed message, Callback for a button press.
type Event struct {
	ChatID       int64  `json:"chat_id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	LanguageCode string `json:"language_code"`
	Text         string `json:"text"`
	Callback     string `json:"callback"`
}

func (e Event) IsCallback() bool {
	return e.Callback != ""
}

// Button is one labeled inline action. Data is the opaque callback tag the
// engine parses back with ParseCallback.
type Button struct {
	Label string `json:"label"`
	Data  string `json:"data"`
}

// Message is one outbound reply: rendered text plus an optional keyboard of
// button rows.
type Message struct {
	Text     string     `json:"text"`
	Keyboard [][]Button `json:"keyboard,omitempty"`
}

// Sender delivers one message to one chat. Implementations must be safe for
// concurrent use; delivery is best effort and the caller decides whether a
// failure matters.
type Sender interface {
	Send(chatID int64, msg Message) error
}

// Callback tag kinds.
const (
	KindMode     = "mode"     // search mode selection, payload: artist|title|free
	KindPage     = "page"     // page navigation, payload: page index
	KindSong     = "song"     // item selection, payload: song id
	KindOrder    = "order"    // order confirmation, payload: song id
	KindAgain    = "again"    // discard results, back to search menu
	KindExit     = "exit"     // leave browsing
	KindIgnore   = "ignore"   // inert button (page indicator)
	KindReorder  = "reorder"  // re-order from /history, payload: song id
	KindComplete = "complete" // admin resolve, payload: order id
	KindCancel   = "cancel"   // admin resolve, payload: order id
)

// Tag builds a callback tag from kind and payload.
func Tag(kind, payload string) string {
	if payload == "" {
		return kind
	}
	return kind + "_" + payload
}

// IntTag builds a callback tag with a numeric payload.
func IntTag(kind string, n int64) string {
	return Tag(kind, strconv.FormatInt(n, 10))
}

// ParseCallback splits a callback tag into kind and payload. Tags without a
// payload (exit, again, ignore) return an empty payload.
func ParseCallback(data string) (kind, payload string) {
	if i := strings.IndexByte(data, '_'); i >= 0 {
		return data[:i], data[i+1:]
	}
	return data, ""
}
