package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/karaokehub/songbot/catalog"
	"github.com/karaokehub/songbot/config"
	"github.com/karaokehub/songbot/engine"
	"github.com/karaokehub/songbot/guard"
	"github.com/karaokehub/songbot/hub"
	"github.com/karaokehub/songbot/models"
	"github.com/karaokehub/songbot/notify"
	"github.com/karaokehub/songbot/orders"
	"github.com/karaokehub/songbot/router"
	"github.com/karaokehub/songbot/session"
	"github.com/karaokehub/songbot/store"
	"github.com/karaokehub/songbot/transport"
	"github.com/karaokehub/songbot/utils"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}

	utils.InfoLogger = logrus.New()
	utils.ErrorLogger = logrus.New()

	utils.InfoLogger.SetOutput(os.Stdout)
	utils.ErrorLogger.SetOutput(os.Stderr)

	utils.InfoLogger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		ForceColors:   true,
	})
	utils.ErrorLogger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		ForceColors:   true,
	})
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Configuration error: %v", err)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	utils.InitDB(db)

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to hash admin password: %v", err)
	}

	users := store.NewUserStore(db)
	admins := store.NewAdminStore(db)
	orderStore := store.NewOrderStore(db)
	sessions := session.NewStore()
	accessGuard := guard.NewGuard(users, admins, sessions)
	orderHub := hub.NewHub()

	// Catalog: in-process by default, remote when CATALOG_URL is set.
	var catalogClient catalog.Client
	var catalogService *catalog.Service
	if cfg.CatalogURL != "" {
		catalogClient = catalog.NewHTTPClient(cfg.CatalogURL)
		utils.InfoLogger.Printf("Using remote catalog at %s", cfg.CatalogURL)
	} else {
		loader, err := catalog.NewSongLoader(cfg.SongsFile)
		if err != nil {
			utils.ErrorLogger.Fatalf("Failed to load songs: %v", err)
		}
		catalogService = catalog.NewService(loader)
		catalogClient = catalogService
	}

	sender := transport.NewHTTPSender(cfg.SenderURL, cfg.SenderToken)
	notifier := notify.NewNotifier(sender, admins)
	manager := orders.NewManager(users, admins, orderStore, catalogClient, notifier, orderHub)

	eng := engine.NewEngine(accessGuard, users, admins, sessions, catalogClient, manager, sender, passwordHash)
	dispatcher := engine.NewDispatcher(eng)
	defer dispatcher.Stop()

	r := router.SetupRouter(router.Deps{
		Catalog:      catalogService,
		Manager:      manager,
		Admins:       admins,
		Dispatcher:   dispatcher,
		Hub:          orderHub,
		PasswordHash: passwordHash,
		WebhookToken: cfg.WebhookToken,
	})

	utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Admin{},
		&models.Order{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}
