// Package constants provides centralized definitions of constants used throughout the application
package constants

// Environment variable names
const (
	// EnvDBHost is the environment variable for the database host
	EnvDBHost = "DB_HOST"

	// EnvDBPort is the environment variable for the database port
	EnvDBPort = "DB_PORT"

	// EnvDBUser is the environment variable for the database user
	EnvDBUser = "DB_USER"

	// EnvDBPassword is the environment variable for the database password
	EnvDBPassword = "DB_PASSWORD"

	// EnvDBName is the environment variable for the database name
	EnvDBName = "DB_NAME"

	// EnvAPIPort is the environment variable for the API listen port
	EnvAPIPort = "PORT"

	// EnvServerAddress is the environment variable for the CLI's target API server
	EnvServerAddress = "FIXFLOW_SERVER_ADDRESS"
)
