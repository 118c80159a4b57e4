package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/DEUO27/smart-bin-dashboard-code/internal/status"
)

// Counts vrátí počty řádků všech tabulek jedním dotazem.
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM measurements),
			(SELECT COUNT(*) FROM actuator_events),
			(SELECT COUNT(*) FROM collections),
			(SELECT COUNT(*) FROM sensors),
			(SELECT COUNT(*) FROM actuators),
			(SELECT COUNT(*) FROM bins)
	`).Scan(&c.Measurements, &c.ActuatorEvents, &c.Collections, &c.Sensors, &c.Actuators, &c.Bins)
	if err != nil {
		return c, fmt.Errorf("selhal dotaz na počty: %w", err)
	}
	return c, nil
}

// SensorStatusRows vrátí pro každý koš a typ senzoru čas posledního měření.
// LEFT JOIN zajistí, že senzor bez měření má last_seen = NULL.
func (s *Store) SensorStatusRows(ctx context.Context) ([]status.DeviceRow, error) {
	return s.deviceRows(ctx, `
		SELECT b.id, b.name, s.sensor_type, MAX(m.ts)
		FROM bins b
		JOIN sensors s ON s.bin_id = b.id
		LEFT JOIN measurements m ON m.sensor_id = s.id
		GROUP BY b.id, b.name, s.sensor_type
		ORDER BY b.id, s.sensor_type
	`)
}

// ActuatorStatusRows je obdoba SensorStatusRows pro aktuátory a jejich události.
func (s *Store) ActuatorStatusRows(ctx context.Context) ([]status.DeviceRow, error) {
	return s.deviceRows(ctx, `
		SELECT b.id, b.name, a.actuator_type, MAX(e.ts)
		FROM bins b
		JOIN actuators a ON a.bin_id = b.id
		LEFT JOIN actuator_events e ON e.actuator_id = a.id
		GROUP BY b.id, b.name, a.actuator_type
		ORDER BY b.id, a.actuator_type
	`)
}

func (s *Store) deviceRows(ctx context.Context, query string) ([]status.DeviceRow, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("selhal SQL dotaz na stav zařízení: %w", err)
	}
	defer rows.Close()

	var out []status.DeviceRow
	for rows.Next() {
		var r status.DeviceRow
		// MAX(ts) může být NULL, pgx ho nahraje do *time.Time jako nil.
		if err := rows.Scan(&r.BinID, &r.BinName, &r.DeviceType, &r.LastSeen); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecentMeasurements vrátí posledních limit měření (nejnovější první).
func (s *Store) RecentMeasurements(ctx context.Context, limit int) ([]MeasurementRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT m.ts, b.id, s.sensor_type,
		       m.distance_cm, m.fill_percentage, m.weight_kg,
		       m.temperature_c, m.humidity_percentage,
		       m.acceleration_x, m.acceleration_y, m.acceleration_z, m.fall_detected
		FROM measurements m
		JOIN sensors s ON m.sensor_id = s.id
		JOIN bins b ON s.bin_id = b.id
		ORDER BY m.ts DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("selhal dotaz na poslední měření: %w", err)
	}
	defer rows.Close()

	out := make([]MeasurementRow, 0, limit)
	for rows.Next() {
		var r MeasurementRow
		v := &r.Values
		if err := rows.Scan(&r.Timestamp, &r.BinID, &r.SensorType,
			&v.DistanceCM, &v.FillPercentage, &v.WeightKG,
			&v.TemperatureC, &v.HumidityPercentage,
			&v.AccelerationX, &v.AccelerationY, &v.AccelerationZ, &v.FallDetected); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecentActuatorEvents vrátí posledních limit událostí aktuátorů.
func (s *Store) RecentActuatorEvents(ctx context.Context, limit int) ([]ActuatorEventRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT e.ts, b.id, a.actuator_type, e.description
		FROM actuator_events e
		JOIN actuators a ON e.actuator_id = a.id
		JOIN bins b ON a.bin_id = b.id
		ORDER BY e.ts DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("selhal dotaz na poslední události: %w", err)
	}

	// CollectRows projde a zavře rows za nás.
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ActuatorEventRow, error) {
		var r ActuatorEventRow
		err := row.Scan(&r.Timestamp, &r.BinID, &r.ActuatorType, &r.Description)
		return r, err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RecentCollections vrátí posledních limit svozů.
func (s *Store) RecentCollections(ctx context.Context, limit int) ([]CollectionRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT ts, bin_id, collected_weight_kg
		FROM collections
		ORDER BY ts DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("selhal dotaz na poslední svozy: %w", err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (CollectionRow, error) {
		var r CollectionRow
		err := row.Scan(&r.Timestamp, &r.BinID, &r.CollectedWeightKG)
		return r, err
	})
}

// Bins vrátí všechny koše seřazené podle ID.
func (s *Store) Bins(ctx context.Context) ([]Bin, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, location, height_cm, max_weight_kg, latitude, longitude
		FROM bins
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("selhal dotaz na koše: %w", err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Bin, error) {
		var b Bin
		err := row.Scan(&b.ID, &b.Name, &b.Location, &b.HeightCM, &b.MaxWeightKG, &b.Latitude, &b.Longitude)
		return b, err
	})
}

// MeasurementTimesSince vrátí časy všech měření od since (včetně).
// Hodinové seskupení dělá volající (balíček series).
func (s *Store) MeasurementTimesSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT ts FROM measurements
		WHERE ts >= $1
		ORDER BY ts ASC
	`, since)
	if err != nil {
		return nil, fmt.Errorf("chyba načítání časové řady: %w", err)
	}

	return pgx.CollectRows(rows, pgx.RowTo[time.Time])
}

// KnownDevices vrátí ID všech senzorů a aktuátorů.
func (s *Store) KnownDevices(ctx context.Context) (KnownDevices, error) {
	var kd KnownDevices

	rows, err := s.pool.Query(ctx, `SELECT id FROM sensors ORDER BY id`)
	if err != nil {
		return kd, fmt.Errorf("selhal dotaz na senzory: %w", err)
	}
	if kd.Sensors, err = pgx.CollectRows(rows, pgx.RowTo[int64]); err != nil {
		return kd, err
	}

	rows, err = s.pool.Query(ctx, `SELECT id FROM actuators ORDER BY id`)
	if err != nil {
		return kd, fmt.Errorf("selhal dotaz na aktuátory: %w", err)
	}
	if kd.Actuators, err = pgx.CollectRows(rows, pgx.RowTo[int64]); err != nil {
		return kd, err
	}

	return kd, nil
}

// InsertMeasurement uloží jedno měření a vrátí jeho ID.
// Chybějící čas doplní databáze (COALESCE na now()).
func (s *Store) InsertMeasurement(ctx context.Context, m NewMeasurement) (int64, error) {
	v := m.Values
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO measurements
			(sensor_id, distance_cm, fill_percentage, weight_kg, temperature_c, humidity_percentage,
			 acceleration_x, acceleration_y, acceleration_z, fall_detected, ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, COALESCE($11::timestamptz, now()))
		RETURNING id
	`, m.SensorID, v.DistanceCM, v.FillPercentage, v.WeightKG, v.TemperatureC, v.HumidityPercentage,
		v.AccelerationX, v.AccelerationY, v.AccelerationZ, v.FallDetected, m.Timestamp).Scan(&id)
	if err != nil {
		return 0, wrapInsertError("measurements", err)
	}
	return id, nil
}

// InsertActuatorEvent uloží událost aktuátoru a vrátí její ID.
func (s *Store) InsertActuatorEvent(ctx context.Context, e NewActuatorEvent) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO actuator_events (actuator_id, description, ts)
		VALUES ($1, $2, COALESCE($3::timestamptz, now()))
		RETURNING id
	`, e.ActuatorID, e.Description, e.Timestamp).Scan(&id)
	if err != nil {
		return 0, wrapInsertError("actuator_events", err)
	}
	return id, nil
}

// InsertCollection uloží svoz koše a vrátí jeho ID.
func (s *Store) InsertCollection(ctx context.Context, c NewCollection) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO collections (bin_id, collected_weight_kg, ts)
		VALUES ($1, $2, COALESCE($3::timestamptz, now()))
		RETURNING id
	`, c.BinID, c.CollectedWeightKG, c.Timestamp).Scan(&id)
	if err != nil {
		return 0, wrapInsertError("collections", err)
	}
	return id, nil
}
