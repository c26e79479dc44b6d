package utils

import (
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// DB is a global variable holding the Postgres connection pool
var DB *sqlx.DB

// InitPostgres opens the Postgres connection pool.
func InitPostgres(dsn string, maxOpenConns, maxIdleConns int, connMaxIdleTime, connMaxLifetime time.Duration) {
	if dsn == "" {
		log.Fatal("Database URL is not set")
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		log.Fatal("Failed to connect to Postgres:", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxIdleTime(connMaxIdleTime)
	db.SetConnMaxLifetime(connMaxLifetime)

	DB = db
}
