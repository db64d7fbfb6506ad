package config

// EnvPrefix namespaces every environment variable read by envconfig.
const EnvPrefix = "TERMINAL"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvDBDSN  = "TERMINAL_DB_DSN"
	EnvDBHost = "TERMINAL_DB_HOST"
	EnvDBUser = "TERMINAL_DB_USER"
	EnvDBName = "TERMINAL_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
