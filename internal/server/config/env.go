package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// envFile is loaded (if present) before variables are read. Variables that
// are already set in the process environment are not overwritten.
var envFile = ".env"

// parseEnv overlays GALLERY_* environment variables onto config. Unset or
// empty variables leave the current value untouched. Malformed numeric or
// duration values panic, like a malformed JSON config does.
func parseEnv(config *Config) {
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			panic(fmt.Errorf("load %s: %w", envFile, err))
		}
	}

	setString(&config.EndpointAddrHTTP, "GALLERY_HTTP_ADDR")
	setString(&config.DatabaseDSN, "GALLERY_DATABASE_DSN")
	setString(&config.SecretKey, "GALLERY_SECRET_KEY")
	setString(&config.StorageDriver, "GALLERY_STORAGE_DRIVER")
	setString(&config.S3AccessKey, "GALLERY_S3_ACCESS_KEY")
	setString(&config.S3SecretKey, "GALLERY_S3_SECRET_KEY")
	setString(&config.S3Bucket, "GALLERY_S3_BUCKET")
	setString(&config.S3Region, "GALLERY_S3_REGION")
	setString(&config.S3BaseEndpoint, "GALLERY_S3_BASE_ENDPOINT")
	setString(&config.S3KeyPrefix, "GALLERY_S3_KEY_PREFIX")
	setString(&config.S3PublicBaseURL, "GALLERY_S3_PUBLIC_BASE_URL")
	setString(&config.LogLevel, "GALLERY_LOG_LEVEL")

	if v := os.Getenv("GALLERY_MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			panic(fmt.Errorf("GALLERY_MAX_UPLOAD_BYTES: %w", err))
		}
		config.MaxUploadBytes = n
	}

	if v := os.Getenv("GALLERY_SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(fmt.Errorf("GALLERY_SHUTDOWN_TIMEOUT: %w", err))
		}
		config.ShutdownTimeout = d
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
