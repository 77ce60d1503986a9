package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env  string
	Port int

	DBURL string

	// session tokens
	JWTSecret   string
	JWTTTLHours int
	AuthHeader  string

	// public catalog keyspace the cart mapping is rendered over
	CartKeyspace int

	UploadDir     string
	PublicBaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AllowedOrigins []string

	OTLPEndpoint string
}

func Load() Config {
	env := getEnv("APP_ENV", "dev")
	port := getEnvInt("PORT", 4000)
	dbURL := buildDBURL()

	return Config{
		Env:   env,
		Port:  port,
		DBURL: dbURL,

		JWTSecret:   getEnv("JWT_SECRET", "secret_ecom"),
		JWTTTLHours: getEnvInt("JWT_TTL_HOURS", 72),
		AuthHeader:  getEnv("AUTH_HEADER", "auth-token"),

		CartKeyspace: getEnvInt("CART_KEYSPACE", 300),

		UploadDir:     getEnv("UPLOAD_DIR", "upload/images"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		AllowedOrigins: splitCSV(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		OTLPEndpoint: getEnv("OTLP_ENDPOINT", ""),
	}
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "shopcart")
	pass := getEnv("DB_PASSWORD", "shopcart")
	name := getEnv("DB_NAME", "shopcart")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

// JWTTTL is the configured session token lifetime.
func (c Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTTTLHours) * time.Hour
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")

	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)

		if p != "" {
			out = append(out, p)
		}
	}

	return out
}
