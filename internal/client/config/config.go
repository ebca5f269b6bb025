package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the shopkeeper CLI.
type Config struct {
	ServerEndpointAddr string
	RequestTimeout     time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.RequestTimeout = 5 * time.Second
}

// LoadConfig constructs a Config from defaults, then JSON, then flags.
func LoadConfig() *Config {
	return LoadConfigFromArgs(os.Args[1:])
}

// LoadConfigFromArgs is LoadConfig over an explicit argument list.
func LoadConfigFromArgs(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
