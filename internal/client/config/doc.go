// Package config loads runtime configuration for the FailVault CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string          address:port of the catalog gRPC endpoint
//	-i duration        online status check interval
//	-w string          wallet JSON-RPC URL (empty: no wallet)
//	-db string         path of the local SQLite database
//	-admin string      allow-listed admin address
//	-operator string   fallback payee address
//	-contract string   experiment token contract address
//	-poll duration     receipt polling interval
//	-timeout duration  confirmation timeout (0 waits indefinitely)
//
// # JSON schema
//
// Durations use timex.Duration, so values can be either strings like "3s"
// or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s",
//	  "wallet_rpc_url": "http://127.0.0.1:8545",
//	  "confirm_timeout": "5m"
//	}
package config
