package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server ServerConfig
	DB     DBConfig
	Redis  RedisConfig
	Auth   AuthConfig
	Store  StoreConfig
}

type ServerConfig struct {
	Port             string
	AllowedOrigins   []string
	RegistrationOpen bool
	RateLimit        string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type AuthConfig struct {
	JWTSecret   string
	TokenTTLMin int
}

// StoreConfig carries the shop-level knobs: the low-stock alert threshold and
// the naming convention used by the unpack operation. Products whose name
// contains UnpackMarker are treated as packaged; stripping the marker yields
// the loose-piece product name, with UnpackBaseName as the fallback.
type StoreConfig struct {
	LowStockThreshold int
	UnpackMarker      string
	UnpackBaseName    string
	DefaultPieces     int
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	tokenTTL, _ := strconv.Atoi(getEnv("TOKEN_TTL_MINUTES", "720"))
	lowStock, _ := strconv.Atoi(getEnv("LOW_STOCK_THRESHOLD", "30"))
	pieces, _ := strconv.Atoi(getEnv("UNPACK_DEFAULT_PIECES", "30"))

	return Config{
		Server: ServerConfig{
			Port:             getEnv("SERVER_PORT", "8080"),
			AllowedOrigins:   strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ","),
			RegistrationOpen: getEnv("REGISTRATION_OPEN", "false") == "true",
			RateLimit:        getEnv("RATE_LIMIT", "60-M"),
		},
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "eggstore"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:  getEnv("REDIS_ENABLED", "true") == "true",
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			JWTSecret:   getEnv("JWT_SECRET", "dev-secret-key"),
			TokenTTLMin: tokenTTL,
		},
		Store: StoreConfig{
			LowStockThreshold: lowStock,
			UnpackMarker:      getEnv("UNPACK_MARKER", "tray"),
			UnpackBaseName:    getEnv("UNPACK_BASE_NAME", "egg"),
			DefaultPieces:     pieces,
		},
	}
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
