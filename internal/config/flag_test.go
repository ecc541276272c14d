package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected  *Config
		name      string
		args      []string
		expectErr bool
	}{
		{name: "all flags", args: []string{
			"-d", "db", "-n", "8", "-m", "-s", "secret", "-t", "30", "-f", "/tmp/session",
			"-r", "5", "-w", "12", "-u", "root", "-p", "pa55word", "-b", "zap", "-l", "debug",
		}, expected: &Config{
			DatabaseDSN:       "db",
			MaxOpenConns:      8,
			RunMigrations:     true,
			SecretKey:         "secret",
			SessionTTL:        30 * time.Minute,
			SessionFile:       "/tmp/session",
			RequestTimeout:    5 * time.Second,
			PasswordMinLength: 12,
			AdminUserName:     "root",
			AdminPassword:     "pa55word",
			LogBackend:        "zap",
			LogLevel:          "debug",
		}},
		{name: "boolean last and unknown flags ignored", args: []string{"-x", "1", "-d", "db", "-m"},
			expected: &Config{DatabaseDSN: "db", RunMigrations: true}},
		{name: "equals form", args: []string{"-d=db", "-t=60"},
			expected: &Config{DatabaseDSN: "db", SessionTTL: time.Hour}},
		{name: "bad int", args: []string{"-n", "many"}, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}
			err := parseFlags(config, tt.args)
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(config, tt.expected))
		})
	}
}
