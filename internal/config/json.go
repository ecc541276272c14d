package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/taskkeeper/internal/flagx"
	"github.com/dmitrijs2005/taskkeeper/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations accept both "90s"
// strings and integer nanoseconds. Pointer fields distinguish "absent" from
// an explicit zero value.
type JsonConfig struct {
	DatabaseDSN       string         `json:"database_dsn"`
	MaxOpenConns      int            `json:"max_open_conns"`
	RunMigrations     *bool          `json:"run_migrations"`
	SecretKey         string         `json:"secret_key"`
	SessionTTL        timex.Duration `json:"session_ttl"`
	SessionFile       *string        `json:"session_file"`
	RequestTimeout    timex.Duration `json:"request_timeout"`
	PasswordMinLength int            `json:"password_min_length"`
	AdminUserName     string         `json:"admin_username"`
	AdminPassword     string         `json:"admin_password"`
	LogBackend        string         `json:"log_backend"`
	LogLevel          string         `json:"log_level"`
}

// parseJson overlays config with the file named by -c/-config, if any.
// Only the keys present in the file are applied.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFile(args)
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

	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.AdminUserName, c.AdminUserName)
	setString(&config.AdminPassword, c.AdminPassword)
	setString(&config.LogBackend, c.LogBackend)
	setString(&config.LogLevel, c.LogLevel)

	if c.MaxOpenConns > 0 {
		config.MaxOpenConns = c.MaxOpenConns
	}
	if c.PasswordMinLength > 0 {
		config.PasswordMinLength = c.PasswordMinLength
	}
	if c.RunMigrations != nil {
		config.RunMigrations = *c.RunMigrations
	}
	if c.SessionFile != nil {
		config.SessionFile = *c.SessionFile
	}
	if c.SessionTTL.Duration > 0 {
		config.SessionTTL = c.SessionTTL.Duration
	}
	if c.RequestTimeout.Duration > 0 {
		config.RequestTimeout = c.RequestTimeout.Duration
	}

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
