package livecache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return New(rdb, ttl), mr
}

func TestSensorRoundTrip(t *testing.T) {
	c, mr := newTestCache(t, time.Hour)
	ctx := context.Background()
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, c.SetSensor(ctx, 5, Snapshot{Timestamp: at, Summary: "peso=3.5kg"}))

	got, err := c.Sensor(ctx, 5)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, at.Equal(got.Timestamp))
	assert.Equal(t, "peso=3.5kg", got.Summary)

	assert.True(t, mr.Exists("sensor:last:5"))
	assert.Equal(t, time.Hour, mr.TTL("sensor:last:5"))
}

func TestActuatorKeysAreSeparate(t *testing.T) {
	c, _ := newTestCache(t, 0)
	ctx := context.Background()

	require.NoError(t, c.SetActuator(ctx, 5, Snapshot{Timestamp: time.Now().UTC(), Summary: "tapa abierta"}))

	sensor, err := c.Sensor(ctx, 5)
	require.NoError(t, err)
	assert.Nil(t, sensor)

	actuator, err := c.Actuator(ctx, 5)
	require.NoError(t, err)
	require.NotNil(t, actuator)
	assert.Equal(t, "tapa abierta", actuator.Summary)
}

func TestMissingKeyIsNil(t *testing.T) {
	c, _ := newTestCache(t, 0)

	got, err := c.Sensor(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestExpiredSnapshotDisappears(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.SetSensor(ctx, 1, Snapshot{Timestamp: time.Now().UTC()}))
	mr.FastForward(2 * time.Minute)

	got, err := c.Sensor(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCorruptedSnapshot(t *testing.T) {
	c, mr := newTestCache(t, 0)
	require.NoError(t, mr.Set("sensor:last:3", "{nope"))

	_, err := c.Sensor(context.Background(), 3)
	assert.Error(t, err)
}

func TestOlderSnapshotDoesNotOverwriteNewer(t *testing.T) {
	c, _ := newTestCache(t, time.Hour)
	ctx := context.Background()
	newer := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	require.NoError(t, c.SetSensor(ctx, 2, Snapshot{Timestamp: newer, Summary: "peso=4kg"}))
	// Dohrané měření z minulé hodiny.
	require.NoError(t, c.SetSensor(ctx, 2, Snapshot{Timestamp: newer.Add(-time.Hour), Summary: "peso=1kg"}))

	got, err := c.Sensor(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, newer.Equal(got.Timestamp))
	assert.Equal(t, "peso=4kg", got.Summary)

	// Novější a stejně starý záznam přepisuje.
	require.NoError(t, c.SetSensor(ctx, 2, Snapshot{Timestamp: newer, Summary: "peso=5kg"}))
	require.NoError(t, c.SetSensor(ctx, 2, Snapshot{Timestamp: newer.Add(time.Minute), Summary: "peso=6kg"}))
	got, err = c.Sensor(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "peso=6kg", got.Summary)
}

func TestCorruptedSnapshotIsReplaced(t *testing.T) {
	c, mr := newTestCache(t, 0)
	ctx := context.Background()
	require.NoError(t, mr.Set("actuator:last:3", "{nope"))

	require.NoError(t, c.SetActuator(ctx, 3, Snapshot{Timestamp: time.Now().UTC(), Summary: "tapa cerrada"}))

	got, err := c.Actuator(ctx, 3)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "tapa cerrada", got.Summary)
}
