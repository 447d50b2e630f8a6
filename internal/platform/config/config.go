package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process-level configuration for the replicator service.
type Server struct {
	Addr            string
	PostgresURL     string
	RedisURL        string
	KafkaBrokers    string
	EventTopic      string
	DomainTimeout   time.Duration
	ShutdownTimeout time.Duration
}

// RedisConfig tunes the optional Redis connection.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("REPLICATOR_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	topic := os.Getenv("REPLICATOR_EVENT_TOPIC")
	if topic == "" {
		topic = "generation.events"
	}

	return Server{
		Addr:            addr,
		PostgresURL:     os.Getenv("REPLICATOR_POSTGRES_URL"),
		RedisURL:        os.Getenv("REPLICATOR_REDIS_URL"),
		KafkaBrokers:    os.Getenv("REPLICATOR_KAFKA_BROKERS"),
		EventTopic:      topic,
		DomainTimeout:   durationEnv("REPLICATOR_DOMAIN_TIMEOUT_SECONDS", 0),
		ShutdownTimeout: durationEnv("REPLICATOR_SHUTDOWN_TIMEOUT_SECONDS", 10*time.Second),
	}
}

// Redis returns connection settings with development defaults applied.
func (s Server) Redis() RedisConfig {
	return RedisConfig{
		URL:          s.RedisURL,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs < 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}
