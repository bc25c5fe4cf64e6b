package router

import (
	"github.com/gin-gonic/gin"

	"github.com/karaokehub/songbot/catalog"
	"github.com/karaokehub/songbot/controllers"
	"github.com/karaokehub/songbot/engine"
	"github.com/karaokehub/songbot/hub"
	"github.com/karaokehub/songbot/middlewares"
	"github.com/karaokehub/songbot/orders"
	"github.com/karaokehub/songbot/store"
)

// Deps carries everything the HTTP surface needs. Catalog is nil when the
// engine talks to a remote catalog service; the /songs endpoints are then
// not served from this process.
type Deps struct {
	Catalog      *catalog.Service
	Manager      *orders.Manager
	Admins       *store.AdminStore
	Dispatcher   *engine.Dispatcher
	Hub          *hub.Hub
	PasswordHash []byte
	WebhookToken string
}

func SetupRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	adminCtrl := controllers.NewAdminController(deps.Manager, deps.Admins, deps.PasswordHash)
	webhookCtrl := controllers.NewWebhookController(deps.Dispatcher, deps.WebhookToken)
	hubCtrl := controllers.NewHubController(deps.Hub)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	r.POST("/webhook", webhookCtrl.HandleUpdate)

	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/login", adminCtrl.Login)
	}

	var catalogCtrl *controllers.CatalogController
	if deps.Catalog != nil {
		catalogCtrl = controllers.NewCatalogController(deps.Catalog)
		r.GET("/songs/", catalogCtrl.GetAllSongs)
		r.GET("/songs/search/", catalogCtrl.SearchSongs)
		r.GET("/songs/by-artist/", catalogCtrl.SearchByArtist)
		r.GET("/songs/by-title/", catalogCtrl.SearchByTitle)
		r.GET("/songs/with-backing/", catalogCtrl.SongsWithBacking)
		r.GET("/songs/id/:song_id", catalogCtrl.GetSongByID)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/admin")
	auth.Use(middlewares.AuthMiddleware())

	auth.GET("/orders/pending", adminCtrl.GetPendingOrders)
	auth.GET("/orders/resolved", adminCtrl.GetResolvedOrders)
	auth.POST("/orders/:order_id/complete", adminCtrl.CompleteOrder)
	auth.POST("/orders/:order_id/cancel", adminCtrl.CancelOrder)

	if catalogCtrl != nil {
		auth.POST("/catalog/reload", catalogCtrl.ReloadCatalog)
	}

	auth.GET("/ws", hubCtrl.Serve)

	return r
}
