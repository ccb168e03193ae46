package storage

import (
	"fmt"

	"ticket-bot/config"
	"ticket-bot/ticket"
)

// Store is a persistent ticket store with a lifecycle.
type Store interface {
	ticket.Store
	Close() error
}

// InitStore opens the configured backend. SQLite is the default;
// MongoDB matches deployments that already run the bot against a
// shared database.
func InitStore(cfg *config.DatabaseConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite":
		return NewSQLiteStore(cfg.SQLite.Path)
	case "mongodb":
		return NewMongoStore(cfg.MongoDB.URI, cfg.MongoDB.Database)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s (use \"sqlite\" or \"mongodb\")", cfg.Driver)
	}
}
