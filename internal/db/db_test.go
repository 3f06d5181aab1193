package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildDSN(t *testing.T) {
	opts := setDefaults(Options{})
	assert.Equal(t,
		"host=localhost user=postgres password=postgres dbname=postgres port=5432 sslmode=disable",
		buildDSN(opts))

	enabled := true
	opts = setDefaults(Options{
		Host:       "db.internal",
		User:       "fixflow",
		Password:   "secret",
		DBName:     "fixflow",
		Port:       5433,
		SSLEnabled: &enabled,
	})
	assert.Equal(t,
		"host=db.internal user=fixflow password=secret dbname=fixflow port=5433 sslmode=require",
		buildDSN(opts))
}
