package config

import (
	"main/utils"
	"time"
)

type DatabaseConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

func LoadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		DSN:             utils.GetEnvAsString("DATABASE_URL", "postgres://localhost:5432/studio?sslmode=disable"),
		MaxOpenConns:    utils.GetEnvAsInt("PG_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    utils.GetEnvAsInt("PG_MAX_IDLE_CONNS", 5),
		ConnMaxIdleTime: time.Duration(utils.GetEnvAsInt("PG_MAX_CONN_IDLE_TIME", 60)) * time.Second,
		ConnMaxLifetime: utils.GetEnvAsDuration("PG_CONN_MAX_LIFETIME", 30*time.Minute),
	}
}
