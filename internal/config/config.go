package config

import (
	"os"
	"strconv"
)

type Config struct {
	DBUrl          string
	JWTSecret      string
	AuthURL        string
	AuthAnonKey    string
	AuthServiceKey string
	AWSBucket      string
	AWSRegion      string
	PageSize       int
}

func LoadConfig() *Config {
	pageSize := 10
	if raw := os.Getenv("API_PAGE_SIZE"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			pageSize = v
		}
	}

	return &Config{
		DBUrl:          os.Getenv("SUPABASE_DB_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AuthURL:        os.Getenv("NEXT_PUBLIC_SUPABASE_URL"),
		AuthAnonKey:    os.Getenv("SUPABASE_ANON_KEY"),
		AuthServiceKey: os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		AWSBucket:      os.Getenv("AWS_BUCKET_NAME"),
		AWSRegion:      os.Getenv("AWS_REGION"),
		PageSize:       pageSize,
	}
}
