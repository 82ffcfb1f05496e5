package config

import (
	"flag"
	"fmt"

	"github.com/dmitrijs2005/failvault/internal/flagx"
)

var ownedFlags = []string{"-a", "-i", "-w", "-db", "-admin", "-operator", "-contract", "-poll", "-timeout"}

func parseFlags(config *Config, args []string) error {
	err := flagx.Parse(args, ownedFlags, func(fs *flag.FlagSet) {
		fs.StringVar(&config.ServerEndpointAddr, "a", config.ServerEndpointAddr, "server endpoint address")
		fs.DurationVar(&config.OnlineCheckInterval, "i", config.OnlineCheckInterval, "online check interval")
		fs.StringVar(&config.WalletRPCURL, "w", config.WalletRPCURL, "wallet JSON-RPC URL")
		fs.StringVar(&config.DBPath, "db", config.DBPath, "local database path")
		fs.StringVar(&config.AdminAddress, "admin", config.AdminAddress, "admin account address")
		fs.StringVar(&config.OperatorAddress, "operator", config.OperatorAddress, "operator (default payee) address")
		fs.StringVar(&config.ContractAddress, "contract", config.ContractAddress, "experiment token contract address")
		fs.DurationVar(&config.ConfirmPollInterval, "poll", config.ConfirmPollInterval, "receipt polling interval")
		fs.DurationVar(&config.ConfirmTimeout, "timeout", config.ConfirmTimeout, "confirmation timeout, 0 waits indefinitely")
	})
	if err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
