package config

import (
	"errors"
	"os"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Config is everything read from the environment. Defaults suit local
// development with the in-process catalog and a sqlite file.
type Config struct {
	Port          string
	DBDriver      string // sqlite or mysql
	DBDSN         string
	AdminPassword string
	WebhookToken  string
	SenderURL     string
	SenderToken   string
	CatalogURL    string // empty -> serve the catalog in-process
	SongsFile     string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:          getenv("PORT", "8080"),
		DBDriver:      getenv("DB_DRIVER", "sqlite"),
		DBDSN:         getenv("DB_DSN", "songbot.db"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		WebhookToken:  os.Getenv("WEBHOOK_TOKEN"),
		SenderURL:     os.Getenv("SENDER_URL"),
		SenderToken:   os.Getenv("SENDER_TOKEN"),
		CatalogURL:    os.Getenv("CATALOG_URL"),
		SongsFile:     getenv("SONGS_FILE", "songs.csv"),
	}
	if cfg.AdminPassword == "" {
		return nil, errors.New("ADMIN_PASSWORD is required")
	}
	if cfg.SenderURL == "" {
		return nil, errors.New("SENDER_URL is required")
	}
	return cfg, nil
}

// InitDB opens the configured database.
func InitDB(cfg *Config) (*gorm.DB, error) {
	switch cfg.DBDriver {
	case "mysql":
		return gorm.Open(mysql.Open(cfg.DBDSN), &gorm.Config{})
	default:
		return gorm.Open(sqlite.Open(cfg.DBDSN), &gorm.Config{})
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
