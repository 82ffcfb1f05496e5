package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/failvault/internal/flagx"
	"github.com/dmitrijs2005/failvault/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Durations use timex.Duration so
// both "10m" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddrGRPC   string         `json:"endpoint_addr_grpc"`
	MetricsAddr        string         `json:"metrics_addr"`
	DatabaseDSN        string         `json:"database_dsn"`
	SecretKey          string         `json:"secret_key"`
	AdminTokenValidity timex.Duration `json:"admin_token_validity"`
	AdminAddress       string         `json:"admin_address"`
	OperatorAddress    string         `json:"operator_address"`
	FindingsPassphrase string         `json:"findings_passphrase"`
	FindingsSalt       string         `json:"findings_salt"`
	ChallengeMaxAge    timex.Duration `json:"challenge_max_age"`
	S3RootUser         string         `json:"s3_root_user"`
	S3RootPassword     string         `json:"s3_root_password"`
	S3Bucket           string         `json:"s3_bucket"`
	S3Region           string         `json:"s3_region"`
	S3BaseEndpoint     string         `json:"s3_base_endpoint"`
}

// parseJson overlays values from the file named by -c/-config. Keys missing
// from the file keep their current value.
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

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.MetricsAddr, c.MetricsAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.AdminAddress, c.AdminAddress)
	setString(&config.OperatorAddress, c.OperatorAddress)
	setString(&config.FindingsPassphrase, c.FindingsPassphrase)
	setString(&config.FindingsSalt, c.FindingsSalt)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	if c.AdminTokenValidity.Duration != 0 {
		config.AdminTokenValidity = c.AdminTokenValidity.Duration
	}
	if c.ChallengeMaxAge.Duration != 0 {
		config.ChallengeMaxAge = c.ChallengeMaxAge.Duration
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
