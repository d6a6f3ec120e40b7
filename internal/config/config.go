package config

import "os"

type Config struct {
	Port          string
	MongoURI      string // empty selects the in-memory document store
	MongoDatabase string
	RedisAddr     string // empty disables session event publishing
	AllowedOrigin string
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:          getEnvOrDefault("PORT", "3001"),
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDatabase: getEnvOrDefault("MONGO_DB", "livedocs"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		AllowedOrigin: getEnvOrDefault("ALLOWED_ORIGIN", "http://localhost:3000"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
