package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/cycle-care-api/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "cycle", Password: "secret", Name: "cycle_care", SSLMode: "disable"})
	assert.Equal(t, "host=db port=5432 user=cycle password=secret dbname=cycle_care sslmode=disable", dsn)
}
