package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort        string
	AppMode        string
	FrontendURL    string
	TrustedProxies []string
	DBHost         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBPort         string
	RedisHost      string
	RedisPort      string
	RedisPassword  string
	RedisDB        int
	ReconcileSec   int
}

func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		AppPort:        getEnv("APP_PORT", "8080"),
		AppMode:        getEnv("APP_MODE", "debug"),
		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:5173"),
		TrustedProxies: getEnvAsSlice("TRUSTED_PROXIES", nil),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", "postgres"),
		DBName:         getEnv("DB_NAME", "livepoll"),
		DBPort:         getEnv("DB_PORT", "5432"),
		RedisHost:      getEnv("REDIS_HOST", "localhost"),
		RedisPort:      getEnv("REDIS_PORT", "6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvAsInt("REDIS_DB", 0),
		ReconcileSec:   getEnvAsInt("RECONCILE_INTERVAL_SEC", 300),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsSlice(key string, fallback []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	parts := strings.Split(valueStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
