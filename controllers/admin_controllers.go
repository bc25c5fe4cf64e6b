package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/karaokehub/songbot/models"
	"github.com/karaokehub/songbot/orders"
	"github.com/karaokehub/songbot/store"
	"github.com/karaokehub/songbot/utils"
)

// AdminController serves the REST mirror of the admin command surface:
// login, the pending/resolved projections and order resolution.
type AdminController struct {
	Manager      *orders.Manager
	Admins       *store.AdminStore
	PasswordHash []byte
}

func NewAdminController(manager *orders.Manager, admins *store.AdminStore, passwordHash []byte) *AdminController {
	return &AdminController{Manager: manager, Admins: admins, PasswordHash: passwordHash}
}

// Login exchanges an enrolled admin's chat id and the admin password for a
// bearer token.
func (ac *AdminController) Login(c *gin.Context) {
	type reqBody struct {
		ChatID   int64  `json:"chat_id" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	admin, err := ac.Admins.FindByChatID(body.ChatID)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}
	if err := bcrypt.CompareHashAndPassword(ac.PasswordHash, []byte(body.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}

	token, err := utils.GenerateToken(admin.ID, admin.ChatID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{"token": token})
}

// GetPendingOrders -> pending queue, oldest first.
func (ac *AdminController) GetPendingOrders(c *gin.Context) {
	pending, err := ac.Manager.ListPending()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Pending orders", pending)
}

// GetResolvedOrders -> orders resolved within the reporting window, grouped
// by table.
func (ac *AdminController) GetResolvedOrders(c *gin.Context) {
	groups, err := ac.Manager.ListResolved(orders.ResolvedWindow)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Resolved orders", groups)
}

// CompleteOrder resolves an order as completed on behalf of the
// authenticated admin.
func (ac *AdminController) CompleteOrder(c *gin.Context) {
	ac.resolve(c, models.OrderStatusCompleted)
}

// CancelOrder resolves an order as cancelled.
func (ac *AdminController) CancelOrder(c *gin.Context) {
	ac.resolve(c, models.OrderStatusCancelled)
}

func (ac *AdminController) resolve(c *gin.Context, outcome string) {
	idStr := c.Param("order_id")
	orderID, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid order id"))
		return
	}

	chatID := c.GetInt64("chatID")
	order, err := ac.Manager.Resolve(uint(orderID), chatID, outcome)
	switch {
	case err == nil:
		utils.RespondJSON(c, http.StatusOK, "Order resolved", order)
	case errors.Is(err, store.ErrForbidden):
		utils.RespondError(c, http.StatusForbidden, err)
	case errors.Is(err, store.ErrNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, store.ErrAlreadyResolved):
		c.JSON(http.StatusConflict, utils.JSONResponse{
			Status:  false,
			Message: err.Error(),
			Data:    order,
		})
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}
