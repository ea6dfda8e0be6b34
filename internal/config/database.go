package config

import (
	"time"
)

type DatabaseConfig struct {
	URI             string        `yaml:"uri"`
	Database        string        `yaml:"database"`
	MaxPoolSize     int           `yaml:"max_pool_size"`
	MinPoolSize     int           `yaml:"min_pool_size"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout"`
	SocketTimeout   time.Duration `yaml:"socket_timeout"`
	UseTransactions bool          `yaml:"use_transactions"`
	RunMigrations   bool          `yaml:"run_migrations"`
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		URI:             getEnv("MONGODB_URI", "mongodb://localhost:27017/gb_travel"),
		Database:        getEnv("MONGODB_DATABASE", "gb_travel"),
		MaxPoolSize:     getEnvAsInt("MONGODB_MAX_POOL_SIZE", 100),
		MinPoolSize:     getEnvAsInt("MONGODB_MIN_POOL_SIZE", 5),
		ConnectTimeout:  getEnvAsDuration("MONGODB_CONNECT_TIMEOUT", 10*time.Second),
		SocketTimeout:   getEnvAsDuration("MONGODB_SOCKET_TIMEOUT", 30*time.Second),
		UseTransactions: getEnvAsBool("MONGODB_USE_TRANSACTIONS", false),
		RunMigrations:   getEnvAsBool("MONGODB_RUN_MIGRATIONS", true),
	}
}
