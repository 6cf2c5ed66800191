package config

// EnvPrefix is passed to envconfig; individual fields carry fully qualified
// names so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "DENTAVIA_DB_DSN"
	EnvDBHost = "DENTAVIA_DB_HOST"
	EnvDBUser = "DENTAVIA_DB_USER"
	EnvDBName = "DENTAVIA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
