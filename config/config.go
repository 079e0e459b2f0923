package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server     ServerConfig
	Logger     LoggerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	Simulation SimulationConfig
}

type ServerConfig struct {
	AppEnv   string
	HTTPPort string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type DatabaseConfig struct {
	// Driver is "sqlite" or "pgx". SQLite is the default so the engine runs
	// without a database server.
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	ConnMaxIdleTime int
}

type RedisConfig struct {
	// Empty Addr disables the distributed fulfillment lock.
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// SimulationConfig carries the tunables of the sales engine.
// TierCapacity is indexed by warehouse tier 1..5; index 0 is unused.
type SimulationConfig struct {
	TierCapacity       [6]int64
	RushCostPerWorker  float64
	RushUnitsPerWorker int64
	ReturnsNotifyTopN  int
	DefaultZoneMult    float64
	TxTimeoutSeconds   int
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:   getEnv("APP_ENV", "dev"),
			HTTPPort: getEnv("HTTP_PORT", ":8083"),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "sqlite"),
			DSN:             getEnv("DB_DSN", "shopsim.db?_journal_mode=WAL&_busy_timeout=5000"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvInt("DB_CONN_MAX_LIFETIME", 300),
			ConnMaxIdleTime: getEnvInt("DB_CONN_MAX_IDLE_TIME", 60),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:   getEnv("KAFKA_TOPIC_SETTLEMENTS", "billing.settlements"),
			GroupID: getEnv("KAFKA_GROUP_WAREHOUSE", "warehouse-engine"),
		},
		Simulation: SimulationConfig{
			TierCapacity: [6]int64{
				0,
				getEnvInt64("TIER1_DAILY_CAPACITY", 50),
				getEnvInt64("TIER2_DAILY_CAPACITY", 100),
				getEnvInt64("TIER3_DAILY_CAPACITY", 250),
				getEnvInt64("TIER4_DAILY_CAPACITY", 600),
				getEnvInt64("TIER5_DAILY_CAPACITY", 1500),
			},
			RushCostPerWorker:  getEnvFloat("RUSH_COST_PER_WORKER", 25),
			RushUnitsPerWorker: getEnvInt64("RUSH_UNITS_PER_WORKER", 40),
			ReturnsNotifyTopN:  getEnvInt("RETURNS_NOTIFY_TOP_N", 3),
			DefaultZoneMult:    getEnvFloat("DEFAULT_ZONE_MULTIPLIER", 1.0),
			TxTimeoutSeconds:   getEnvInt("TX_TIMEOUT_SECONDS", 30),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.Split(value, ",")
	}
	return fallback
}
