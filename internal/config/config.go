package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config is read from environment variables (prefix SALEREC_) with an
// optional config file for local development.
type Config struct {
	App   AppConfig
	HTTP  HTTPConfig
	GRPC  GRPCConfig
	DB    DBConfig
	Redis RedisConfig
}

type AppConfig struct {
	Env      string // development or production
	LogLevel string
}

type HTTPConfig struct {
	Addr string
}

type GRPCConfig struct {
	Addr string
}

// DBConfig selects the storage backend. Driver "mysql" is the production
// target; "sqlite" runs embedded (pure Go driver) for demos and tests.
type DBConfig struct {
	Driver       string
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

// RedisConfig controls the admission gate. StockGate additionally routes
// stock admission through Redis; the database stays authoritative either way.
type RedisConfig struct {
	Enabled   bool
	Addr      string
	PoolSize  int
	StockGate bool
}

func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("app.env", "development")
	v.SetDefault("app.loglevel", "info")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("grpc.addr", ":50051")
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "file:salerecorder.db")
	v.SetDefault("db.maxopenconns", 50)
	v.SetDefault("db.maxidleconns", 25)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.poolsize", 100)
	v.SetDefault("redis.stockgate", false)

	v.SetEnvPrefix("SALEREC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("sale-recorder")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	cfg := &Config{}
	cfg.App.Env = v.GetString("app.env")
	cfg.App.LogLevel = v.GetString("app.loglevel")
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.GRPC.Addr = v.GetString("grpc.addr")
	cfg.DB.Driver = v.GetString("db.driver")
	cfg.DB.DSN = v.GetString("db.dsn")
	cfg.DB.MaxOpenConns = v.GetInt("db.maxopenconns")
	cfg.DB.MaxIdleConns = v.GetInt("db.maxidleconns")
	cfg.Redis.Enabled = v.GetBool("redis.enabled")
	cfg.Redis.Addr = v.GetString("redis.addr")
	cfg.Redis.PoolSize = v.GetInt("redis.poolsize")
	cfg.Redis.StockGate = v.GetBool("redis.stockgate")
	return cfg, nil
}
