package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kadirbelkuyu/dbddl/internal/config"

	_ "github.com/lib/pq"
)

// Connection is an open handle on the catalog source database.
type Connection struct {
	DB     *sql.DB
	Config config.DatabaseConfig
}

func NewConnection(ctx context.Context, cfg config.DatabaseConfig) (*Connection, error) {
	if cfg.Type != "" && cfg.Type != "postgres" {
		return nil, fmt.Errorf("unsupported database type for SQL connection: %s", cfg.Type)
	}

	db, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	conn := NewFromDB(db, cfg)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to reach database: %w", err)
	}

	return conn, nil
}

// NewFromDB wraps an already opened handle, e.g. a sqlmock database in tests.
func NewFromDB(db *sql.DB, cfg config.DatabaseConfig) *Connection {
	return &Connection{
		DB:     db,
		Config: cfg,
	}
}

func (c *Connection) Close() error {
	return c.DB.Close()
}

func (c *Connection) DatabaseName() string {
	return c.Config.Database
}
