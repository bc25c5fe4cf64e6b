package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/karaokehub/songbot/engine"
	"github.com/karaokehub/songbot/transport"
	"github.com/karaokehub/songbot/utils"
)

// WebhookController accepts inbound transport events. The transport bridge
// delivers at least once; events are acknowledged as soon as they are
// queued for the chat's worker, and a full queue asks for redelivery.
type WebhookController struct {
	Dispatcher *engine.Dispatcher
	Token      string
}

func NewWebhookController(dispatcher *engine.Dispatcher, token string) *WebhookController {
	return &WebhookController{Dispatcher: dispatcher, Token: token}
}

func (wc *WebhookController) HandleUpdate(c *gin.Context) {
	if wc.Token != "" && c.GetHeader("X-Bot-Token") != wc.Token {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("bad webhook token"))
		return
	}

	var ev transport.Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if ev.ChatID == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("missing chat_id"))
		return
	}

	if !wc.Dispatcher.Dispatch(ev) {
		utils.RespondError(c, http.StatusServiceUnavailable, errors.New("queue full, retry later"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Accepted", nil)
}
