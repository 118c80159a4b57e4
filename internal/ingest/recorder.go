package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/DEUO27/smart-bin-dashboard-code/internal/livecache"
	"github.com/DEUO27/smart-bin-dashboard-code/internal/readings"
	"github.com/DEUO27/smart-bin-dashboard-code/internal/store"
)

// Writer je část repozitáře, kterou zápisová cesta potřebuje.
type Writer interface {
	InsertMeasurement(ctx context.Context, m store.NewMeasurement) (int64, error)
	InsertActuatorEvent(ctx context.Context, e store.NewActuatorEvent) (int64, error)
	InsertCollection(ctx context.Context, c store.NewCollection) (int64, error)
}

// LiveState je cíl pro poslední stav zařízení (livecache.Cache).
type LiveState interface {
	SetSensor(ctx context.Context, id int64, snap livecache.Snapshot) error
	SetActuator(ctx context.Context, id int64, snap livecache.Snapshot) error
}

// Recorder uloží záznam do Postgresu (Cold Path) a pak do Valkey (Hot Path).
// Každý zápis je jeden INSERT, neopakuje se a nefrontuje.
type Recorder struct {
	db     Writer
	live   LiveState // může být nil, pak se live cache neaktualizuje
	logger *slog.Logger
	now    func() time.Time
}

func NewRecorder(db Writer, live LiveState, logger *slog.Logger) *Recorder {
	return &Recorder{db: db, live: live, logger: logger, now: time.Now}
}

// RecordMeasurement zvaliduje a uloží měření, vrací ID nového řádku.
func (r *Recorder) RecordMeasurement(ctx context.Context, in MeasurementInput) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}

	id, err := r.db.InsertMeasurement(ctx, in.toStore())
	if err != nil {
		return 0, err
	}

	if r.live != nil {
		snap := livecache.Snapshot{Timestamp: r.eventTime(in.Timestamp), Summary: readings.Summary(in.Values)}
		// Chyba Valkey není kritická pro integritu dat (máme je v PG), jen o ní chceme vědět.
		if err := r.live.SetSensor(ctx, *in.SensorID, snap); err != nil {
			r.logger.Warn("Live stav senzoru se nepodařilo uložit", "sensor_id", *in.SensorID, "error", err)
		}
	}

	return id, nil
}

// RecordActuatorEvent zvaliduje a uloží událost aktuátoru.
func (r *Recorder) RecordActuatorEvent(ctx context.Context, in ActuatorEventInput) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}

	id, err := r.db.InsertActuatorEvent(ctx, in.toStore())
	if err != nil {
		return 0, err
	}

	if r.live != nil {
		snap := livecache.Snapshot{Timestamp: r.eventTime(in.Timestamp)}
		if in.Description != nil {
			snap.Summary = *in.Description
		}
		if err := r.live.SetActuator(ctx, *in.ActuatorID, snap); err != nil {
			r.logger.Warn("Live stav aktuátoru se nepodařilo uložit", "actuator_id", *in.ActuatorID, "error", err)
		}
	}

	return id, nil
}

// RecordCollection uloží svoz. Svozy do live cache nepatří.
func (r *Recorder) RecordCollection(ctx context.Context, in CollectionInput) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}
	return r.db.InsertCollection(ctx, in.toStore())
}

func (r *Recorder) eventTime(ts *Timestamp) time.Time {
	if t := ts.ptr(); t != nil {
		return *t
	}
	return r.now().UTC()
}
