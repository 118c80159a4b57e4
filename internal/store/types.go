package store

import (
	"time"

	"github.com/DEUO27/smart-bin-dashboard-code/internal/readings"
)

// Bin je fyzický koš s pevnou polohou.
// Souřadnice jsou pointery, protože koš může být založený i bez GPS.
type Bin struct {
	ID          int64    `json:"bin_id"`
	Name        string   `json:"name"`
	Location    *string  `json:"location,omitempty"`
	HeightCM    *float64 `json:"height_cm,omitempty"`
	MaxWeightKG *float64 `json:"max_weight_kg,omitempty"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

// Counts jsou souhrnné počty řádků pro kartičky na dashboardu.
type Counts struct {
	Measurements   int64 `json:"measurements"`
	ActuatorEvents int64 `json:"actuator_events"`
	Collections    int64 `json:"collections"`
	Sensors        int64 `json:"sensors"`
	Actuators      int64 `json:"actuators"`
	Bins           int64 `json:"bins"`
}

// MeasurementRow je měření spojené s košem a typem senzoru (výpis "poslední měření").
type MeasurementRow struct {
	Timestamp  time.Time
	BinID      int64
	SensorType string
	Values     readings.Values
}

// ActuatorEventRow je událost aktuátoru spojená s košem.
type ActuatorEventRow struct {
	Timestamp    time.Time `json:"ts"`
	BinID        int64     `json:"bin_id"`
	ActuatorType string    `json:"actuator_type"`
	Description  *string   `json:"description"`
}

// CollectionRow je jeden svoz koše.
type CollectionRow struct {
	Timestamp         time.Time `json:"ts"`
	BinID             int64     `json:"bin_id"`
	CollectedWeightKG float64   `json:"collected_weight_kg"`
}

// KnownDevices jsou ID všech registrovaných zařízení (cache Ingestoru).
type KnownDevices struct {
	Sensors   []int64
	Actuators []int64
}

// NewMeasurement jsou data pro INSERT do measurements.
// Timestamp nil = čas doplní databáze (now()).
type NewMeasurement struct {
	SensorID  int64
	Values    readings.Values
	Timestamp *time.Time
}

// NewActuatorEvent jsou data pro INSERT do actuator_events.
type NewActuatorEvent struct {
	ActuatorID  int64
	Description *string
	Timestamp   *time.Time
}

// NewCollection jsou data pro INSERT do collections.
type NewCollection struct {
	BinID             int64
	CollectedWeightKG float64
	Timestamp         *time.Time
}

// SeedResult vrací ID záznamů vytvořených při seedování.
type SeedResult struct {
	BinID      int64
	SensorID   int64
	ActuatorID int64
}
