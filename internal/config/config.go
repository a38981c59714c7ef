package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

type Arguments struct {
	PoolAddr          string        `env:"POOL_ADDRESS" envDefault:"http://localhost:5000"`
	WSPath            string        `env:"WS_PATH" envDefault:"/ws"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL" envDefault:"25s"`
	AutoMineInterval  time.Duration `env:"AUTOMINE_INTERVAL" envDefault:"3s"`
	DialAttempts      int           `env:"DIAL_ATTEMPTS" envDefault:"5"`
}

// PoolConfig модель настроек подключения к серверу пула
type PoolConfig struct {
	PoolAddr       string
	WSPath         string
	RequestTimeout time.Duration
	DialAttempts   int
}

// MiningConfig модель настроек периодических задач сессии майнинга
type MiningConfig struct {
	HeartbeatInterval time.Duration
	AutoMineInterval  time.Duration
}

// Config модель настроек клиента
type Config struct {
	LogLevel string
	Pool     PoolConfig
	Mining   MiningConfig
}

func NewConfig() Config {
	// .env необязателен, переменные окружения имеют приоритет
	_ = godotenv.Load()

	var args Arguments
	if err := env.Parse(&args); err != nil {
		panic(fmt.Sprintf("Failed to parse enviroment var: %s", err.Error()))
	}

	var (
		pool      = pflag.StringP("pool", "a", args.PoolAddr, "Pool server base address, e.g. http://host:port.")
		wsPath    = pflag.StringP("ws_path", "w", args.WSPath, "Realtime endpoint path.")
		logLevel  = pflag.StringP("log_level", "l", args.LogLevel, "Log level.")
		timeout   = pflag.DurationP("timeout", "t", args.RequestTimeout, "REST request timeout.")
		heartbeat = pflag.Duration("heartbeat", args.HeartbeatInterval, "Heartbeat period of an active session.")
		autoMine  = pflag.Duration("automine", args.AutoMineInterval, "Auto-mine share period.")
		attempts  = pflag.Int("dial_attempts", args.DialAttempts, "Realtime dial attempts at start-up.")
	)
	pflag.Parse()

	return Config{
		LogLevel: *logLevel,
		Pool: PoolConfig{
			PoolAddr:       *pool,
			WSPath:         *wsPath,
			RequestTimeout: *timeout,
			DialAttempts:   *attempts,
		},
		Mining: MiningConfig{
			HeartbeatInterval: *heartbeat,
			AutoMineInterval:  *autoMine,
		},
	}
}

func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Pool: PoolConfig{
			PoolAddr:       "http://localhost:5000",
			WSPath:         "/ws",
			RequestTimeout: 10 * time.Second,
			DialAttempts:   5,
		},
		Mining: MiningConfig{
			HeartbeatInterval: 25 * time.Second,
			AutoMineInterval:  3 * time.Second,
		},
	}
}
