package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	LogLevel  string
	NoColor   bool
	DataDir   string
	StoreFile string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	return &Config{
		LogLevel:  getEnv("VXSCRIPTS_LOG_LEVEL", "info"),
		NoColor:   getEnvBool("VXSCRIPTS_NO_COLOR", false),
		DataDir:   getEnv("VXSCRIPTS_DATA_DIR", "Data"),
		StoreFile: getEnv("VXSCRIPTS_STORE_FILE", "OriginalTexts.json"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
