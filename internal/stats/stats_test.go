package stats

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexivanou/aqimap-api/internal/config"
	"github.com/alexivanou/aqimap-api/internal/database"
)

var dbSeq int

func setupTestDB(t *testing.T) (*sqlx.DB, config.DBConfig) {
	dbSeq++
	cfg := config.DBConfig{Type: config.DBTypeMemory, Name: fmt.Sprintf("stats_test_%d", dbSeq)}
	db, err := database.Connect(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, cfg, "../../migrations"))
	return db, cfg
}

type fakeSuggest struct{}

func (fakeSuggest) CachedQueries() int  { return 4 }
func (fakeSuggest) WindowRequests() int { return 2 }

func TestCollector_Collect(t *testing.T) {
	db, cfg := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	_, err := db.ExecContext(ctx,
		"INSERT INTO station_readings (province, aqi, observed_at) VALUES (?, ?, ?), (?, ?, ?)",
		"Bangkok", 87, time.Now(), "Nan", 40, time.Now())
	require.NoError(t, err)
	_, err = db.ExecContext(ctx,
		"INSERT INTO forecasts (province, pollutant, day, avg, min, max) VALUES ('Bangkok', 'pm25', '2024-01-16', 25, 20, 30)")
	require.NoError(t, err)

	collector := NewCollector(db, cfg, fakeSuggest{})

	stats, err := collector.Collect(ctx)
	require.NoError(t, err)

	assert.Equal(t, "memory", stats.Database.Type)
	assert.Equal(t, int64(3), stats.Database.TotalRecords)
	assert.Equal(t, 2, stats.Database.Provinces)
	assert.Equal(t, 1, stats.Database.ForecastProvinces)

	var readingsCount int64
	for _, ts := range stats.Database.TableStats {
		if ts.Name == "station_readings" {
			readingsCount = ts.RowCount
		}
	}
	assert.Equal(t, int64(2), readingsCount)

	require.NotNil(t, stats.Suggest)
	assert.Equal(t, 4, stats.Suggest.CachedQueries)
	assert.Equal(t, 2, stats.Suggest.WindowRequests)

	assert.Greater(t, stats.Memory.Alloc, uint64(0))
	assert.GreaterOrEqual(t, stats.Runtime.NumGoroutines, 1)

	stats2, err := collector.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, stats.Memory.Alloc, stats2.Memory.Alloc)
}

func TestCollector_EmptyDB(t *testing.T) {
	db, cfg := setupTestDB(t)
	defer db.Close()

	collector := NewCollector(db, cfg, nil)

	stats, err := collector.Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(0), stats.Database.TotalRecords)
	assert.Equal(t, 0, stats.Database.Provinces)
	assert.Nil(t, stats.Suggest)
}
