// Package ingest obsahuje zápisovou cestu sdílenou HTTP API a MQTT Ingestorem:
// dekódování vstupu, validaci, INSERT a aktualizaci live cache.
package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/relvacode/iso8601"

	"github.com/DEUO27/smart-bin-dashboard-code/internal/readings"
	"github.com/DEUO27/smart-bin-dashboard-code/internal/store"
)

// ValidationError je chyba vstupu od klienta (HTTP 400).
// Message se posílá klientovi tak, jak je.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Timestamp přijímá ISO 8601 řetězec (i bez zóny nebo s mezerou místo T)
// nebo unix čas v milisekundách, tak jak ho posílá firmware ESP8266.
type Timestamp struct {
	time.Time
}

func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	// Číslo = milisekundy od epochy
	if b[0] != '"' {
		ms, err := strconv.ParseInt(string(b), 10, 64)
		if err != nil {
			return fmt.Errorf("neplatný časový údaj %s: %w", b, err)
		}
		ts.Time = time.UnixMilli(ms).UTC()
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	t, err := iso8601.ParseString(s)
	if err != nil {
		return fmt.Errorf("neplatný časový údaj %q: %w", s, err)
	}
	ts.Time = t
	return nil
}

// ptr vrací nil pro nezadaný nebo nulový čas, jinak pointer na UTC hodnotu.
func (ts *Timestamp) ptr() *time.Time {
	if ts == nil || ts.IsZero() {
		return nil
	}
	t := ts.UTC()
	return &t
}

// MeasurementInput je tělo POST /api/measurements a payload MQTT topicu measurements.
type MeasurementInput struct {
	SensorID *int64 `json:"sensor_id"`
	readings.Values
	Timestamp *Timestamp `json:"ts"`
}

func (in MeasurementInput) Validate() error {
	if in.SensorID == nil {
		return &ValidationError{Message: "sensor_id is required"}
	}
	return nil
}

func (in MeasurementInput) toStore() store.NewMeasurement {
	return store.NewMeasurement{SensorID: *in.SensorID, Values: in.Values, Timestamp: in.Timestamp.ptr()}
}

// ActuatorEventInput je tělo POST /api/actuator-events.
type ActuatorEventInput struct {
	ActuatorID  *int64     `json:"actuator_id"`
	Description *string    `json:"description"`
	Timestamp   *Timestamp `json:"ts"`
}

func (in ActuatorEventInput) Validate() error {
	if in.ActuatorID == nil {
		return &ValidationError{Message: "actuator_id is required"}
	}
	return nil
}

func (in ActuatorEventInput) toStore() store.NewActuatorEvent {
	return store.NewActuatorEvent{ActuatorID: *in.ActuatorID, Description: in.Description, Timestamp: in.Timestamp.ptr()}
}

// CollectionInput je tělo POST /api/collections (formulář "Registrar Recolección").
type CollectionInput struct {
	BinID             *int64     `json:"bin_id"`
	CollectedWeightKG *float64   `json:"collected_weight_kg"`
	Timestamp         *Timestamp `json:"ts"`
}

func (in CollectionInput) Validate() error {
	if in.BinID == nil || in.CollectedWeightKG == nil {
		return &ValidationError{Message: "bin_id and collected_weight_kg are required"}
	}
	return nil
}

func (in CollectionInput) toStore() store.NewCollection {
	return store.NewCollection{BinID: *in.BinID, CollectedWeightKG: *in.CollectedWeightKG, Timestamp: in.Timestamp.ptr()}
}
