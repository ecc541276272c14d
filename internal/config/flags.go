package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   PostgreSQL DSN
//	-n int      max open connections
//	-m          run schema migrations on start
//	-s string   session token secret key
//	-t int      remembered session lifetime, minutes
//	-f string   session file path ("" disables remembering)
//	-r int      per-command timeout, seconds
//	-w int      minimum password length
//	-u string   bootstrap admin username
//	-p string   bootstrap admin password
//	-b string   log backend (slog|zap)
//	-l string   log level
//
// Args not listed above (such as -c) are filtered out with flagx.FilterArgs
// before parsing.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args,
		[]string{"-d", "-n", "-m", "-s", "-t", "-f", "-r", "-w", "-u", "-p", "-b", "-l"},
		"-m")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.IntVar(&config.MaxOpenConns, "n", config.MaxOpenConns, "max open connections")
	fs.BoolVar(&config.RunMigrations, "m", config.RunMigrations, "run migrations")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	sessionTTL := fs.Int("t", int(config.SessionTTL.Minutes()), "session_ttl (in minutes)")
	fs.StringVar(&config.SessionFile, "f", config.SessionFile, "session file")
	requestTimeout := fs.Int("r", int(config.RequestTimeout.Seconds()), "request_timeout (in seconds)")
	fs.IntVar(&config.PasswordMinLength, "w", config.PasswordMinLength, "minimum password length")
	fs.StringVar(&config.AdminUserName, "u", config.AdminUserName, "bootstrap admin username")
	fs.StringVar(&config.AdminPassword, "p", config.AdminPassword, "bootstrap admin password")
	fs.StringVar(&config.LogBackend, "b", config.LogBackend, "log backend (slog|zap)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	config.SessionTTL = time.Duration(*sessionTTL) * time.Minute
	config.RequestTimeout = time.Duration(*requestTimeout) * time.Second

	return nil
}
