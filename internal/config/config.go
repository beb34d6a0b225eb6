package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	SQLitePath      string
	PostgresDSN     string
	MongoURI        string
	MongoDB         string
	RedisAddr       string
	KafkaBrokers    []string
	KafkaTopic      string
	UseKafka        bool
	LocalDeployment bool
	CacheTTL        time.Duration
	JobSendDelay    time.Duration // latencia simulada del envío de notificaciones
	HTTPPort        string
}

func LoadConfig() *Config {
	getEnv := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}

	kafkaBrokers := strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ",")

	sendDelay := time.Second
	if v, err := strconv.Atoi(getEnv("JOB_SEND_DELAY_MS", "1000")); err == nil {
		sendDelay = time.Duration(v) * time.Millisecond
	}

	return &Config{
		SQLitePath:      getEnv("SQLITE_PATH", "./reservalab.db"),
		PostgresDSN:     getEnv("POSTGRES_DSN", "postgres://localhost:5432/reservalab?sslmode=disable"),
		MongoURI:        getEnv("MONGO_URI", ""),
		MongoDB:         getEnv("MONGO_DB", "reservalab"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers:    kafkaBrokers,
		KafkaTopic:      getEnv("KAFKA_TOPIC", "reservalab-notifications"),
		UseKafka:        getEnv("USE_KAFKA", "false") == "true",
		LocalDeployment: getEnv("LOCAL_DEPLOYMENT", "true") == "true",
		CacheTTL:        5 * time.Minute,
		JobSendDelay:    sendDelay,
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
	}
}
