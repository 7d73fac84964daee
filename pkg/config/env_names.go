package config

const (
	EnvPrefix = "counter"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	EnvDBDSN  = "COUNTER_DB_DSN"
	EnvDBHost = "COUNTER_DB_HOST"
	EnvDBUser = "COUNTER_DB_USER"
	EnvDBName = "COUNTER_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
