package config

import (
	"path/filepath"
	"time"
)

// Config holds runtime settings for the CLI.
type Config struct {
	ServerEndpointAddr  string
	OnlineCheckInterval time.Duration
	WalletRPCURL        string
	DBPath              string
	AdminAddress        string
	OperatorAddress     string
	ContractAddress     string
	ConfirmPollInterval time.Duration
	ConfirmTimeout      time.Duration
}

func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.WalletRPCURL = ""
	c.DBPath = filepath.Join(".failvault", "client.db")
	c.AdminAddress = "0x71C7656EC7ab88b098defB751B7401B5f6d8976F"
	c.OperatorAddress = "0x71C7656EC7ab88b098defB751B7401B5f6d8976F"
	c.ContractAddress = "0x2A5799Cc7E9708b39D14014C143451ABf4938fBd"
	c.ConfirmPollInterval = 2 * time.Second
	c.ConfirmTimeout = 0
}

// LoadConfig applies defaults, then the optional JSON file, then flags.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
