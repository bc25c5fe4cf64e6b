package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPSender pushes outbound messages to a bot-API bridge over HTTP. The
// bridge owns the actual chat platform session; this process only needs a
// URL and a token.
type HTTPSender struct {
	URL    string
	Token  string
	Client *http.Client
}

func NewHTTPSender(url, token string) *HTTPSender {
	return &HTTPSender{
		URL:    url,
		Token:  token,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

type outboundPayload struct {
	ChatID int64 `json:"chat_id"`
	Message
}

func (hs *HTTPSender) Send(chatID int64, msg Message) error {
	body, err := json.Marshal(outboundPayload{ChatID: chatID, Message: msg})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, hs.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if hs.Token != "" {
		req.Header.Set("Authorization", "Bearer "+hs.Token)
	}

	resp, err := hs.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("send to chat %d: unexpected status %d", chatID, resp.StatusCode)
	}
	return nil
}
