package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config carries every runtime setting the server needs. Values come from the
// environment (optionally seeded from a .env file) so the composition root in
// cmd/api owns the full lifecycle and no package reads env vars on its own.
type Config struct {
	Port      string
	MongoURI  string
	MongoDB   string
	JWTSecret string
	UploadDir string
	Env       string
}

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:      getenv("PORT", "5000"),
		MongoURI:  getenv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:   getenv("MONGO_DB", "mebel-market"),
		JWTSecret: getenv("JWT_SECRET", ""),
		UploadDir: getenv("UPLOAD_DIR", "./uploads"),
		Env:       getenv("APP_ENV", EnvDevelopment),
	}
}

// IsDevelopment reports whether internal error detail may be echoed to clients.
func (c Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
