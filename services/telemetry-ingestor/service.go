package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DEUO27/smart-bin-dashboard-code/internal/ingest"
)

// ErrUnknownDevice: zařízení není registrované v DB (není v cache).
var ErrUnknownDevice = errors.New("neznámé zařízení")

// DeviceDirectory odpovídá na otázku "známe toto zařízení?" (MetadataService).
type DeviceDirectory interface {
	HasSensor(id int64) bool
	HasActuator(id int64) bool
}

// Recorder je zápisová cesta (ingest.Recorder).
type Recorder interface {
	RecordMeasurement(ctx context.Context, in ingest.MeasurementInput) (int64, error)
	RecordActuatorEvent(ctx context.Context, in ingest.ActuatorEventInput) (int64, error)
}

// Processor zapouzdřuje logiku zpracování jedné MQTT zprávy.
type Processor struct {
	devices             DeviceDirectory
	recorder            Recorder
	measurementsTopic   string
	actuatorEventsTopic string
}

func NewProcessor(devices DeviceDirectory, recorder Recorder, cfg Config) *Processor {
	return &Processor{
		devices:             devices,
		recorder:            recorder,
		measurementsTopic:   cfg.MeasurementsTopic,
		actuatorEventsTopic: cfg.ActuatorEventsTopic,
	}
}

// Process zpracuje zprávu podle topicu a vrátí ID uloženého řádku.
// Chyba znamená, že zpráva byla zahozena (volající ji jen zaloguje).
func (p *Processor) Process(ctx context.Context, topic string, payload []byte) (int64, error) {
	switch topic {
	case p.measurementsTopic:
		return p.processMeasurement(ctx, payload)
	case p.actuatorEventsTopic:
		return p.processActuatorEvent(ctx, payload)
	default:
		return 0, fmt.Errorf("neznámý MQTT topic: %s", topic)
	}
}

func (p *Processor) processMeasurement(ctx context.Context, payload []byte) (int64, error) {
	// KROK 1: Parsing
	var in ingest.MeasurementInput
	if err := json.Unmarshal(payload, &in); err != nil {
		return 0, fmt.Errorf("neplatný JSON: %w", err)
	}
	if err := in.Validate(); err != nil {
		return 0, err
	}

	// KROK 2: Identifikace (Lookup v cache, bez dotazu do DB)
	if !p.devices.HasSensor(*in.SensorID) {
		return 0, fmt.Errorf("%w: senzor %d", ErrUnknownDevice, *in.SensorID)
	}

	// KROK 3: Uložení (Postgres + Valkey)
	return p.recorder.RecordMeasurement(ctx, in)
}

func (p *Processor) processActuatorEvent(ctx context.Context, payload []byte) (int64, error) {
	var in ingest.ActuatorEventInput
	if err := json.Unmarshal(payload, &in); err != nil {
		return 0, fmt.Errorf("neplatný JSON: %w", err)
	}
	if err := in.Validate(); err != nil {
		return 0, err
	}

	if !p.devices.HasActuator(*in.ActuatorID) {
		return 0, fmt.Errorf("%w: aktuátor %d", ErrUnknownDevice, *in.ActuatorID)
	}

	return p.recorder.RecordActuatorEvent(ctx, in)
}
