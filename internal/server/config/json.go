package config

import (
	"encoding/json"
	"os"

	"github.com/insuredesk/policykeeper/internal/flagx"
	"github.com/insuredesk/policykeeper/internal/timex"
)

// JsonConfig is the intermediate DTO used only for reading JSON configuration
// files. It uses timex.Duration for interval fields, which parses both string
// values such as "30s" and integer nanoseconds. After unmarshalling, its
// fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddr                string         `json:"endpoint_addr"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	DBConnectTimeout            timex.Duration `json:"db_connect_timeout"`
	SeedUsername                string         `json:"seed_username"`
	SeedPassword                string         `json:"seed_password"`
	SeedFullName                string         `json:"seed_full_name"`
	SeedEmail                   string         `json:"seed_email"`
}

// parseJson loads configuration values from the JSON file named by the -c or
// -config flags into the provided Config. When neither flag is set, nothing
// is loaded. An unreadable file or invalid JSON panics: the process should
// not start on a broken explicit config.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.DBConnectTimeout.Duration != 0 {
		config.DBConnectTimeout = c.DBConnectTimeout.Duration
	}
	if c.SeedUsername != "" {
		config.SeedUsername = c.SeedUsername
	}
	if c.SeedPassword != "" {
		config.SeedPassword = c.SeedPassword
	}
	if c.SeedFullName != "" {
		config.SeedFullName = c.SeedFullName
	}
	if c.SeedEmail != "" {
		config.SeedEmail = c.SeedEmail
	}
}
