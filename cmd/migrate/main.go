// This file is used to apply the database schema
// How to run:
// go run cmd/migrate/main.go              # Apply the schema against env-configured database
// go run cmd/migrate/main.go -host db01   # Override the database host
package main

import (
	"flag"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/fixflow/fixflow/config"
	"github.com/fixflow/fixflow/internal/constants"
	"github.com/fixflow/fixflow/internal/db"
	"github.com/fixflow/fixflow/internal/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Debugf("No .env file loaded: %v", err)
	}
	logger.InitializeAndConfigure()

	envPort, err := strconv.Atoi(config.GetEnv(constants.EnvDBPort, "5432"))
	if err != nil {
		logger.Fatalf("Invalid %s: %v", constants.EnvDBPort, err)
	}

	var (
		host     = flag.String("host", config.GetEnv(constants.EnvDBHost, ""), "Database host")
		port     = flag.Int("port", envPort, "Database port")
		user     = flag.String("user", config.GetEnv(constants.EnvDBUser, ""), "Database user")
		password = flag.String("password", config.GetEnv(constants.EnvDBPassword, ""), "Database password")
		name     = flag.String("name", config.GetEnv(constants.EnvDBName, ""), "Database name")
	)
	flag.Parse()

	// db.New runs the schema migration and seeds the settings row
	_, err = db.New(db.Options{
		Host:     *host,
		Port:     *port,
		User:     *user,
		Password: *password,
		DBName:   *name,
	})
	if err != nil {
		logger.Fatalf("Migration failed: %v", err)
	}

	logger.Info("Database schema is up to date")
}
