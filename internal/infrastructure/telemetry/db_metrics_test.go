package telemetry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newManualDBMetrics(t *testing.T, cfg DBMetricsConfig) (*DBMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics, err := NewDBMetrics(provider.Meter("db.client"), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(metrics.Stop)
	return metrics, reader
}

func metricByName(t *testing.T, reader *sdkmetric.ManualReader, name string) (metricdata.Metrics, bool) {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func TestDefaultDBMetricsConfig(t *testing.T) {
	cfg := DefaultDBMetricsConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThreshold)
	assert.Equal(t, 15*time.Second, cfg.PoolStatsInterval)
}

func TestDBMetricsRecordQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("should count queries per operation", func(t *testing.T) {
		metrics, reader := newManualDBMetrics(t, DefaultDBMetricsConfig())

		metrics.RecordQuery(ctx, "SELECT", "items", 5*time.Millisecond)
		metrics.RecordQuery(ctx, "insert", "sales", 5*time.Millisecond)
		metrics.RecordQuery(ctx, "", "sales", 5*time.Millisecond)

		m, ok := metricByName(t, reader, "db_query_total")
		require.True(t, ok)
		sum := m.Data.(metricdata.Sum[int64])
		assert.Len(t, sum.DataPoints, 3) // SELECT, INSERT, UNKNOWN
	})

	t.Run("should count slow queries by table", func(t *testing.T) {
		cfg := DefaultDBMetricsConfig()
		cfg.SlowQueryThreshold = 10 * time.Millisecond
		metrics, reader := newManualDBMetrics(t, cfg)

		metrics.RecordQuery(ctx, "SELECT", "sales", 50*time.Millisecond)
		metrics.RecordQuery(ctx, "SELECT", "sales", time.Millisecond)

		m, ok := metricByName(t, reader, "db_slow_query_total")
		require.True(t, ok)
		sum := m.Data.(metricdata.Sum[int64])
		require.Len(t, sum.DataPoints, 1)
		assert.Equal(t, int64(1), sum.DataPoints[0].Value)
	})

	t.Run("should be safe under concurrent recording", func(t *testing.T) {
		metrics, reader := newManualDBMetrics(t, DefaultDBMetricsConfig())

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				metrics.RecordQuery(ctx, "SELECT", "items", time.Millisecond)
			}()
		}
		wg.Wait()

		m, ok := metricByName(t, reader, "db_query_total")
		require.True(t, ok)
		sum := m.Data.(metricdata.Sum[int64])
		assert.Equal(t, int64(16), sum.DataPoints[0].Value)
	})
}

func TestDBMetricsPoolStats(t *testing.T) {
	t.Run("should sample pool gauges", func(t *testing.T) {
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		require.NoError(t, err)
		sqlDB, err := db.DB()
		require.NoError(t, err)

		metrics, reader := newManualDBMetrics(t, DefaultDBMetricsConfig())
		metrics.SetSQLDB(sqlDB)
		metrics.collectPoolStats(context.Background())

		_, ok := metricByName(t, reader, "db_pool_connections")
		assert.True(t, ok)
		_, ok = metricByName(t, reader, "db_pool_connections_max")
		assert.True(t, ok)
	})

	t.Run("should skip collection without a sql.DB", func(t *testing.T) {
		metrics, _ := newManualDBMetrics(t, DefaultDBMetricsConfig())
		metrics.StartPoolStatsCollection(context.Background())
		metrics.Stop()
	})

	t.Run("should stop idempotently", func(t *testing.T) {
		metrics, _ := newManualDBMetrics(t, DefaultDBMetricsConfig())
		metrics.Stop()
		metrics.Stop()
	})
}

func TestDBMetricsGormPlugin(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics, err := NewDBMetrics(provider.Meter("db.client"), DefaultDBMetricsConfig(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(metrics.Stop)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Use(&dbMetricsPlugin{metrics: metrics}))

	type pluginItem struct {
		ID   uint `gorm:"primaryKey"`
		Name string
	}
	require.NoError(t, db.AutoMigrate(&pluginItem{}))
	require.NoError(t, db.Create(&pluginItem{Name: "sugar 1kg"}).Error)

	var got pluginItem
	require.NoError(t, db.First(&got).Error)

	m, ok := metricByName(t, reader, "db_query_total")
	require.True(t, ok)
	sum := m.Data.(metricdata.Sum[int64])

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	assert.GreaterOrEqual(t, total, int64(2))
}

func TestDetectOperationType(t *testing.T) {
	cases := map[string]string{
		"SELECT * FROM items":          "SELECT",
		"  insert into sales values ": "INSERT",
		"Update items set qty = 1":     "UPDATE",
		"DELETE FROM payments":         "DELETE",
		"PRAGMA table_info(items)":     "OTHER",
		"":                             "OTHER",
	}
	for sql, want := range cases {
		assert.Equal(t, want, detectOperationType(sql), sql)
	}
}

func TestRegisterDBMetrics(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	t.Run("should return nil when metrics are disabled", func(t *testing.T) {
		cfg := DefaultDBMetricsConfig()
		cfg.Enabled = false

		got, err := RegisterDBMetrics(db, nil, cfg, zap.NewNop())
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("should return nil without an enabled meter provider", func(t *testing.T) {
		mp, err := NewMeterProvider(context.Background(), MetricsConfig{Enabled: false}, zap.NewNop())
		require.NoError(t, err)

		got, err := RegisterDBMetrics(db, mp, DefaultDBMetricsConfig(), zap.NewNop())
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
