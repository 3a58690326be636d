package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/agritrack/internal/flagx"
	"github.com/dmitrijs2005/agritrack/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "30s" and integer nanoseconds are accepted.
// Absent keys leave the corresponding Config field untouched.
type JsonConfig struct {
	EndpointAddrHTTP            string          `json:"endpoint_addr_http"`
	DatabaseDSN                 string          `json:"database_dsn"`
	SecretKey                   string          `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	S3RootUser                  string          `json:"s3_root_user"`
	S3RootPassword              string          `json:"s3_root_password"`
	S3Bucket                    string          `json:"s3_bucket"`
	S3Region                    string          `json:"s3_region"`
	S3BaseEndpoint              string          `json:"s3_base_endpoint"`
	S3PublicBaseURL             string          `json:"s3_public_base_url"`
	PredictionBaseURL           string          `json:"prediction_base_url"`
	PredictionTimeout           *timex.Duration `json:"prediction_timeout"`
	RedisAddr                   string          `json:"redis_addr"`
	BcryptCost                  int             `json:"bcrypt_cost"`
	HashConcurrency             int             `json:"hash_concurrency"`
	MaxUploadSize               int64           `json:"max_upload_size"`
	CORSAllowedOrigins          []string        `json:"cors_allowed_origins"`
	LogLevel                    string          `json:"log_level"`
}

// parseJson overlays values from the JSON file named by -c/-config (or
// $AGRITRACK_CONFIG) onto config. It panics when the file cannot be read or
// decoded.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFilePath()
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

	c.applyTo(config)
}

func (c *JsonConfig) applyTo(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3PublicBaseURL, c.S3PublicBaseURL)
	setString(&config.PredictionBaseURL, c.PredictionBaseURL)
	if c.PredictionTimeout != nil {
		config.PredictionTimeout = c.PredictionTimeout.Duration
	}
	setString(&config.RedisAddr, c.RedisAddr)
	if c.BcryptCost > 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.HashConcurrency > 0 {
		config.HashConcurrency = c.HashConcurrency
	}
	if c.MaxUploadSize > 0 {
		config.MaxUploadSize = c.MaxUploadSize
	}
	if len(c.CORSAllowedOrigins) > 0 {
		config.CORSAllowedOrigins = c.CORSAllowedOrigins
	}
	setString(&config.LogLevel, c.LogLevel)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
