package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server reads from the environment. Every key
// has a fixed default so the forum runs with no configuration at all.
type Config struct {
	Port        string
	DBPath      string
	SessionTTL  time.Duration
	TemplateDir string
	StaticDir   string
	UploadDir   string

	AdminUsername string
	AdminPassword string

	MaxAvatarBytes int64
	AvatarMaxEdge  int
}

// Load reads .env.local, then .env, then the process environment.
func Load() *Config {
	if err := godotenv.Load(".env.local"); err != nil {
		_ = godotenv.Load()
	}

	return &Config{
		Port:        getenv("PORT", "8080"),
		DBPath:      getenv("DB_PATH", "./data/forum.db"),
		SessionTTL:  getduration("SESSION_TTL", 7*24*time.Hour),
		TemplateDir: getenv("TEMPLATE_DIR", "./web/templates"),
		StaticDir:   getenv("STATIC_DIR", "./web/static"),
		UploadDir:   getenv("UPLOAD_DIR", "./web/uploads"),

		AdminUsername: getenv("ADMIN_USERNAME", "Admin"),
		AdminPassword: getenv("ADMIN_PASSWORD", "admin123"),

		MaxAvatarBytes: getint64("MAX_AVATAR_BYTES", 10<<20),
		AvatarMaxEdge:  getint("AVATAR_MAX_EDGE", 512),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getduration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getint64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}
