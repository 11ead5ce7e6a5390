package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Object Storage
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3UseSSL    bool

	// Resolver
	ResolverURL string

	// Comment API
	CommentAPIURL      string
	CommentPageSize    int
	CommentMinLikes    int
	CommentAPIInterval time.Duration

	// Fetch
	FetchTimeout time.Duration
	FetchMaxSize int64

	// Pipeline
	CursorPath         string
	CheckpointInterval int

	// Ops
	OpsPort string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.S3Endpoint = os.Getenv("S3_ENDPOINT")
	if cfg.S3Endpoint == "" {
		missing = append(missing, "S3_ENDPOINT")
	}

	cfg.S3AccessKey = os.Getenv("S3_ACCESS_KEY")
	if cfg.S3AccessKey == "" {
		missing = append(missing, "S3_ACCESS_KEY")
	}

	cfg.S3SecretKey = os.Getenv("S3_SECRET_KEY")
	if cfg.S3SecretKey == "" {
		missing = append(missing, "S3_SECRET_KEY")
	}

	cfg.S3Bucket = os.Getenv("S3_BUCKET")
	if cfg.S3Bucket == "" {
		missing = append(missing, "S3_BUCKET")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.S3UseSSL = getEnvBool("S3_USE_SSL", true)
	cfg.ResolverURL = getEnvString("RESOLVER_URL", "https://cobalt.drewh.net")
	cfg.CommentAPIURL = getEnvString("COMMENT_API_URL", "https://www.tiktok.com/api/comment/list/")
	cfg.CommentPageSize = getEnvInt("COMMENT_PAGE_SIZE", 40)
	cfg.CommentMinLikes = getEnvInt("COMMENT_MIN_LIKES", 10)
	cfg.CommentAPIInterval = getEnvDuration("COMMENT_API_INTERVAL", 500*time.Millisecond)
	cfg.FetchTimeout = getEnvDuration("FETCH_TIMEOUT", 60*time.Second)
	cfg.FetchMaxSize = getEnvInt64("FETCH_MAX_SIZE", 268435456)
	cfg.CursorPath = getEnvString("CURSOR_PATH", "./cursor.json")
	cfg.CheckpointInterval = getEnvInt("CHECKPOINT_INTERVAL", 20)
	cfg.OpsPort = getEnvString("OPS_PORT", "")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
