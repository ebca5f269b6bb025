package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/shopkeeper/internal/flagx"
	"github.com/dmitrijs2005/shopkeeper/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// Interval fields use timex.Duration, so both "2h" and integer nanoseconds
// are accepted. Pointer and zero-value fields that are absent from the file
// leave the corresponding Config value alone.
type JsonConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	RedisAddr                   string         `json:"redis_addr"`
	RedisPassword               string         `json:"redis_password"`
	RedisDB                     *int           `json:"redis_db"`
	CacheShortTTL               timex.Duration `json:"cache_short_ttl"`
	CacheLongTTL                timex.Duration `json:"cache_long_ttl"`
	LogLevel                    string         `json:"log_level"`
	LogFormat                   string         `json:"log_format"`
	HideLoginFailureReason      *bool          `json:"hide_login_failure_reason"`
}

// parseJson loads configuration values from the JSON file named by -c or
// -config in args. Without either flag nothing is loaded. An unreadable
// file or invalid JSON panics.
func parseJson(config *Config, args []string) {
	jsonConfigFile := flagx.ConfigFileFlag(args)
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(data, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)

	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.CacheShortTTL.Duration != 0 {
		config.CacheShortTTL = c.CacheShortTTL.Duration
	}
	if c.CacheLongTTL.Duration != 0 {
		config.CacheLongTTL = c.CacheLongTTL.Duration
	}
	if c.RedisDB != nil {
		config.RedisDB = *c.RedisDB
	}
	if c.HideLoginFailureReason != nil {
		config.HideLoginFailureReason = *c.HideLoginFailureReason
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
