package config

import (
	"flag"
	"fmt"

	"github.com/dmitrijs2005/failvault/internal/flagx"
)

var ownedFlags = []string{"-a", "-m", "-d", "-s", "-t", "-admin", "-operator", "-fp", "-fs", "-u", "-p", "-b", "-g", "-e"}

// parseFlags populates server Config fields from command-line flags.
//
//	-a string         gRPC bind address (e.g., ":50051")
//	-m string         metrics bind address
//	-d string         PostgreSQL DSN
//	-s string         JWT HMAC secret key
//	-t duration       admin token validity (e.g., "10m")
//	-admin string     admin account address
//	-operator string  default payee address
//	-fp string        findings passphrase
//	-fs string        findings salt
//	-u, -p string     S3 user and password
//	-b, -g, -e string S3 bucket, region and base endpoint
func parseFlags(config *Config, args []string) error {
	err := flagx.Parse(args, ownedFlags, func(fs *flag.FlagSet) {
		fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
		fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "address and port for metrics")
		fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
		fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
		fs.DurationVar(&config.AdminTokenValidity, "t", config.AdminTokenValidity, "admin token validity")
		fs.StringVar(&config.AdminAddress, "admin", config.AdminAddress, "admin account address")
		fs.StringVar(&config.OperatorAddress, "operator", config.OperatorAddress, "operator (default payee) address")
		fs.StringVar(&config.FindingsPassphrase, "fp", config.FindingsPassphrase, "findings passphrase")
		fs.StringVar(&config.FindingsSalt, "fs", config.FindingsSalt, "findings salt")
		fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
		fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
		fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
		fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
		fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	})
	if err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
