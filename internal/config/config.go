package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	HTTPPort   string
	RedisAddr  string
	MongoURL   string
	MongoDB    string
	SQLitePath string

	// Credenciales de proveedores externos
	OCRApiKey    string
	OCRApiSecret string
	MapKey       string
	MapSecret    string

	UpstreamTimeout time.Duration

	KafkaBrokers    []string
	UseKafka        bool
	LocalDeployment bool
}

func LoadConfig() *Config {
	getEnv := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}

	kafkaBrokers := strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ",")

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		MongoURL:        getEnv("MONGO_URL", "mongodb://localhost:27017"),
		MongoDB:         getEnv("MONGO_DB", "epidash"),
		SQLitePath:      getEnv("SQLITE_PATH", "./epidash_ocr.db"),
		OCRApiKey:       os.Getenv("OCR_API_KEY"),
		OCRApiSecret:    os.Getenv("OCR_API_SECRET"),
		MapKey:          os.Getenv("MAP_KEY"),
		MapSecret:       os.Getenv("MAP_SECRET"),
		UpstreamTimeout: 10 * time.Second,
		KafkaBrokers:    kafkaBrokers,
		UseKafka:        getEnv("USE_KAFKA", "false") == "true",
		LocalDeployment: getEnv("LOCAL_DEPLOYMENT", "true") == "true",
	}
}
