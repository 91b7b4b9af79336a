package db

import (
	"testing"

	"github.com/openunited/platform/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigCarriesPoolSettings(t *testing.T) {
	cfg := NewConfig(config.Config{
		DBType:            "sqlite",
		DBName:            "file::memory:?cache=shared",
		DBMaxIdleConn:     4,
		DBMaxOpenConn:     16,
		DBConnMaxLifetime: 300,
		DBConnMaxIdleTime: 60,
	})

	assert.Equal(t, "sqlite", cfg.Type)
	assert.Equal(t, "file::memory:?cache=shared", cfg.Name)
	assert.Equal(t, 4, cfg.MaxIdleConn)
	assert.Equal(t, 16, cfg.MaxOpenConn)
	assert.Equal(t, 300, cfg.ConnMaxLifetime)
	assert.Equal(t, 60, cfg.ConnMaxIdleTime)
}

func TestDialectSelection(t *testing.T) {
	dialector, err := Dialect(Config{Type: "sqlite", Name: "file::memory:?cache=shared"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", dialector.Name())

	dialector, err = Dialect(Config{Type: "postgres"})
	require.NoError(t, err)
	assert.Equal(t, "postgres", dialector.Name())

	_, err = Dialect(Config{Type: "oracle"})
	assert.Error(t, err)
}
