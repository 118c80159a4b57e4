// Package livecache drží v Valkey (Redis) poslední známý stav každého zařízení.
// Je to "Hot Storage" pro dashboard, zdrojem pravdy zůstává Postgres.
package livecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL: po této době záznam zmizí, aby v cache nezůstávala mrtvá zařízení.
const DefaultTTL = 24 * time.Hour

// Kolikrát se zápis zopakuje, když klíč mezi čtením a zápisem změní někdo jiný.
const maxSetAttempts = 3

// Snapshot je poslední zpráva zařízení.
type Snapshot struct {
	Timestamp time.Time `json:"ts"`
	// Summary je u senzoru text z readings.Summary, u aktuátoru popis události.
	Summary string `json:"summary"`
}

// Cache je tenká vrstva nad redis klientem.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New vytvoří cache. ttl <= 0 znamená DefaultTTL.
func New(rdb *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

// Connect vytvoří klienta a ověří ho Pingem.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("Valkey není dostupný: %w", err)
	}
	return rdb, nil
}

// Klíče: "sensor:last:5", "actuator:last:2".
func sensorKey(id int64) string   { return fmt.Sprintf("sensor:last:%d", id) }
func actuatorKey(id int64) string { return fmt.Sprintf("actuator:last:%d", id) }

// SetSensor přepíše poslední stav senzoru.
func (c *Cache) SetSensor(ctx context.Context, id int64, snap Snapshot) error {
	return c.set(ctx, sensorKey(id), snap)
}

// SetActuator přepíše poslední stav aktuátoru.
func (c *Cache) SetActuator(ctx context.Context, id int64, snap Snapshot) error {
	return c.set(ctx, actuatorKey(id), snap)
}

// Sensor vrátí poslední stav senzoru, nebo nil, pokud v cache nic není.
func (c *Cache) Sensor(ctx context.Context, id int64) (*Snapshot, error) {
	return c.get(ctx, sensorKey(id))
}

// Actuator vrátí poslední stav aktuátoru, nebo nil.
func (c *Cache) Actuator(ctx context.Context, id int64) (*Snapshot, error) {
	return c.get(ctx, actuatorKey(id))
}

func (c *Cache) set(ctx context.Context, key string, snap Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	// WATCH + MULTI: dohrávka se starším ts nesmí přepsat novější stav.
	update := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		current, err := decode(key, raw, err)
		if err == nil && current != nil && current.Timestamp.After(snap.Timestamp) {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, c.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxSetAttempts; i++ {
		err := c.rdb.Watch(ctx, update, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue // klíč mezitím změnil jiný zápis
		}
		if err != nil {
			return fmt.Errorf("chyba update Valkey: %w", err)
		}
		return nil
	}
	return fmt.Errorf("chyba update Valkey: %s se pořád mění", key)
}

func (c *Cache) get(ctx context.Context, key string) (*Snapshot, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	return decode(key, raw, err)
}

// decode převede odpověď GET na Snapshot. Chybějící klíč = nil bez chyby.
func decode(key string, raw []byte, err error) (*Snapshot, error) {
	if errors.Is(err, redis.Nil) {
		// Klíč neexistuje: zařízení nic neposlalo nebo záznam expiroval.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("chyba čtení Valkey: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("poškozený záznam %s: %w", key, err)
	}
	return &snap, nil
}
