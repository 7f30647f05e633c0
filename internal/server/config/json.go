package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/photogallery/internal/flagx"
	"github.com/dmitrijs2005/photogallery/internal/timex"
)

// JsonConfig is the on-disk shape of the optional JSON config file.
// Durations use timex.Duration so both "15s" and integer nanoseconds work.
type JsonConfig struct {
	EndpointAddrHTTP string         `json:"endpoint_addr_http"`
	DatabaseDSN      string         `json:"database_dsn"`
	SecretKey        string         `json:"secret_key"`
	StorageDriver    string         `json:"storage_driver"`
	S3AccessKey      string         `json:"s3_access_key"`
	S3SecretKey      string         `json:"s3_secret_key"`
	S3Bucket         string         `json:"s3_bucket"`
	S3Region         string         `json:"s3_region"`
	S3BaseEndpoint   string         `json:"s3_base_endpoint"`
	S3KeyPrefix      string         `json:"s3_key_prefix"`
	S3PublicBaseURL  string         `json:"s3_public_base_url"`
	MaxUploadBytes   int64          `json:"max_upload_bytes"`
	ShutdownTimeout  timex.Duration `json:"shutdown_timeout"`
	LogLevel         string         `json:"log_level"`
}

// parseJson loads the file named by -c/-config (or $GALLERY_CONFIG) and
// copies every non-zero field into config. Nothing happens when no file is
// named. An unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	overlay(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	overlay(&config.DatabaseDSN, c.DatabaseDSN)
	overlay(&config.SecretKey, c.SecretKey)
	overlay(&config.StorageDriver, c.StorageDriver)
	overlay(&config.S3AccessKey, c.S3AccessKey)
	overlay(&config.S3SecretKey, c.S3SecretKey)
	overlay(&config.S3Bucket, c.S3Bucket)
	overlay(&config.S3Region, c.S3Region)
	overlay(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	overlay(&config.S3KeyPrefix, c.S3KeyPrefix)
	overlay(&config.S3PublicBaseURL, c.S3PublicBaseURL)
	overlay(&config.LogLevel, c.LogLevel)

	if c.MaxUploadBytes > 0 {
		config.MaxUploadBytes = c.MaxUploadBytes
	}
	if c.ShutdownTimeout.Duration > 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
