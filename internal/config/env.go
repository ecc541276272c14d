package config

// Environment variables read by parseEnv.
const (
	EnvDatabaseDSN   = "TASKKEEPER_DB_DSN"
	EnvSecretKey     = "TASKKEEPER_SECRET_KEY"
	EnvAdminPassword = "TASKKEEPER_ADMIN_PASSWORD"
)

// parseEnv overlays the secrets that are usually injected by the
// environment rather than written to a file.
func parseEnv(config *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvDatabaseDSN); ok && v != "" {
		config.DatabaseDSN = v
	}
	if v, ok := lookup(EnvSecretKey); ok && v != "" {
		config.SecretKey = v
	}
	if v, ok := lookup(EnvAdminPassword); ok && v != "" {
		config.AdminPassword = v
	}
}
