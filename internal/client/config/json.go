package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/failvault/internal/flagx"
	"github.com/dmitrijs2005/failvault/internal/timex"
)

type JsonConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	WalletRPCURL        string         `json:"wallet_rpc_url"`
	DBPath              string         `json:"db_path"`
	AdminAddress        string         `json:"admin_address"`
	OperatorAddress     string         `json:"operator_address"`
	ContractAddress     string         `json:"contract_address"`
	ConfirmPollInterval timex.Duration `json:"confirm_poll_interval"`
	ConfirmTimeout      timex.Duration `json:"confirm_timeout"`
}

// parseJson overlays values from the file named by -c/-config. Empty
// strings and zero durations in the file keep the current value.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	for dst, v := range map[*string]string{
		&config.ServerEndpointAddr: c.ServerEndpointAddr,
		&config.WalletRPCURL:       c.WalletRPCURL,
		&config.DBPath:             c.DBPath,
		&config.AdminAddress:       c.AdminAddress,
		&config.OperatorAddress:    c.OperatorAddress,
		&config.ContractAddress:    c.ContractAddress,
	} {
		if v != "" {
			*dst = v
		}
	}
	if c.OnlineCheckInterval.Duration != 0 {
		config.OnlineCheckInterval = c.OnlineCheckInterval.Duration
	}
	if c.ConfirmPollInterval.Duration != 0 {
		config.ConfirmPollInterval = c.ConfirmPollInterval.Duration
	}
	if c.ConfirmTimeout.Duration != 0 {
		config.ConfirmTimeout = c.ConfirmTimeout.Duration
	}
	return nil
}
