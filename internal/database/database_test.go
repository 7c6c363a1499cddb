package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexivanou/aqimap-api/internal/config"
)

func TestConnectAndMigrate(t *testing.T) {
	cfg := config.DBConfig{Type: config.DBTypeMemory, Name: "database_test"}
	db, err := Connect(context.Background(), cfg)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db, cfg, "../../migrations"))
	// running twice is a no-op
	require.NoError(t, Migrate(db, cfg, "../../migrations"))

	for _, table := range []string{"station_readings", "forecasts", "widget_keys"} {
		var count int
		err := db.Get(&count, "SELECT COUNT(*) FROM "+table)
		assert.NoError(t, err, table)
		assert.Zero(t, count, table)
	}
}
