package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names so
// the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "STOREMOCK_DB_DSN"
	EnvDBHost = "STOREMOCK_DB_HOST"
	EnvDBUser = "STOREMOCK_DB_USER"
	EnvDBName = "STOREMOCK_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
