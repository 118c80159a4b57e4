package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DEUO27/smart-bin-dashboard-code/internal/livecache"
	"github.com/DEUO27/smart-bin-dashboard-code/internal/store"
)

type fakeWriter struct {
	measurements []store.NewMeasurement
	events       []store.NewActuatorEvent
	collections  []store.NewCollection
	err          error
}

func (f *fakeWriter) InsertMeasurement(_ context.Context, m store.NewMeasurement) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.measurements = append(f.measurements, m)
	return int64(len(f.measurements)), nil
}

func (f *fakeWriter) InsertActuatorEvent(_ context.Context, e store.NewActuatorEvent) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.events = append(f.events, e)
	return int64(len(f.events)), nil
}

func (f *fakeWriter) InsertCollection(_ context.Context, c store.NewCollection) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.collections = append(f.collections, c)
	return int64(len(f.collections)), nil
}

type fakeLive struct {
	sensors   map[int64]livecache.Snapshot
	actuators map[int64]livecache.Snapshot
	err       error
}

func newFakeLive() *fakeLive {
	return &fakeLive{sensors: map[int64]livecache.Snapshot{}, actuators: map[int64]livecache.Snapshot{}}
}

func (f *fakeLive) SetSensor(_ context.Context, id int64, snap livecache.Snapshot) error {
	if f.err != nil {
		return f.err
	}
	f.sensors[id] = snap
	return nil
}

func (f *fakeLive) SetActuator(_ context.Context, id int64, snap livecache.Snapshot) error {
	if f.err != nil {
		return f.err
	}
	f.actuators[id] = snap
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decode[T any](t *testing.T, body string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	return v
}

func TestMeasurementInputDecoding(t *testing.T) {
	in := decode[MeasurementInput](t, `{"sensor_id": 7, "weight_kg": 3.5, "distance_cm": 0, "fall_detected": false, "ts": "2024-05-01T10:05:00Z"}`)

	require.NotNil(t, in.SensorID)
	assert.Equal(t, int64(7), *in.SensorID)
	require.NotNil(t, in.WeightKG)
	assert.Equal(t, 3.5, *in.WeightKG)
	// nula a false se nesmí ztratit
	require.NotNil(t, in.DistanceCM)
	assert.Equal(t, 0.0, *in.DistanceCM)
	require.NotNil(t, in.FallDetected)
	assert.False(t, *in.FallDetected)
	assert.Nil(t, in.TemperatureC)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 5, 0, 0, time.UTC), in.Timestamp.UTC())
}

func TestTimestampFormats(t *testing.T) {
	want := time.Date(2024, 5, 1, 10, 5, 0, 0, time.UTC)

	cases := map[string]string{
		"rfc3339":      `{"ts": "2024-05-01T10:05:00Z"}`,
		"offset":       `{"ts": "2024-05-01T12:05:00+02:00"}`,
		"fraction":     `{"ts": "2024-05-01T10:05:00.000Z"}`,
		"epoch millis": `{"ts": 1714557900000}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			in := decode[ActuatorEventInput](t, body)
			require.NotNil(t, in.Timestamp)
			assert.True(t, want.Equal(in.Timestamp.Time), "got %s", in.Timestamp.Time)
		})
	}

	in := decode[ActuatorEventInput](t, `{"ts": null}`)
	assert.Nil(t, in.Timestamp.ptr())

	var bad ActuatorEventInput
	assert.Error(t, json.Unmarshal([]byte(`{"ts": "yesterday"}`), &bad))
}

func TestValidate(t *testing.T) {
	var verr *ValidationError

	err := MeasurementInput{}.Validate()
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "sensor_id is required", verr.Message)

	err = ActuatorEventInput{}.Validate()
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "actuator_id is required", verr.Message)

	id := int64(1)
	err = CollectionInput{BinID: &id}.Validate()
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "bin_id and collected_weight_kg are required", verr.Message)

	zero := 0.0
	assert.NoError(t, CollectionInput{BinID: &id, CollectedWeightKG: &zero}.Validate())
}

func TestRecordMeasurementUpdatesLiveState(t *testing.T) {
	db := &fakeWriter{}
	live := newFakeLive()
	rec := NewRecorder(db, live, discardLogger())
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rec.now = func() time.Time { return fixed }

	in := decode[MeasurementInput](t, `{"sensor_id": 3, "weight_kg": 3.5}`)
	id, err := rec.RecordMeasurement(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	require.Len(t, db.measurements, 1)
	assert.Equal(t, int64(3), db.measurements[0].SensorID)
	assert.Nil(t, db.measurements[0].Timestamp, "chybějící čas doplní databáze")

	snap := live.sensors[3]
	assert.Equal(t, "peso=3.5kg", snap.Summary)
	assert.Equal(t, fixed, snap.Timestamp)
}

func TestRecordMeasurementRejectsMissingSensor(t *testing.T) {
	db := &fakeWriter{}
	rec := NewRecorder(db, nil, discardLogger())

	_, err := rec.RecordMeasurement(context.Background(), MeasurementInput{})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Empty(t, db.measurements)
}

func TestRecordSurvivesLiveCacheFailure(t *testing.T) {
	db := &fakeWriter{}
	live := newFakeLive()
	live.err = errors.New("valkey down")
	rec := NewRecorder(db, live, discardLogger())

	in := decode[ActuatorEventInput](t, `{"actuator_id": 2, "description": "tapa abierta"}`)
	id, err := rec.RecordActuatorEvent(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	require.Len(t, db.events, 1)
	assert.Equal(t, "tapa abierta", *db.events[0].Description)
}

func TestRecordPropagatesStoreErrors(t *testing.T) {
	db := &fakeWriter{err: store.ErrUnknownReference}
	live := newFakeLive()
	rec := NewRecorder(db, live, discardLogger())

	in := decode[MeasurementInput](t, `{"sensor_id": 404}`)
	_, err := rec.RecordMeasurement(context.Background(), in)
	assert.ErrorIs(t, err, store.ErrUnknownReference)
	assert.Empty(t, live.sensors)
}

func TestRecordCollectionKeepsExplicitTimestamp(t *testing.T) {
	db := &fakeWriter{}
	rec := NewRecorder(db, nil, discardLogger())

	in := decode[CollectionInput](t, `{"bin_id": 1, "collected_weight_kg": 5.2, "ts": "2024-05-01T08:00:00Z"}`)
	_, err := rec.RecordCollection(context.Background(), in)
	require.NoError(t, err)

	require.Len(t, db.collections, 1)
	got := db.collections[0]
	assert.Equal(t, int64(1), got.BinID)
	assert.Equal(t, 5.2, got.CollectedWeightKG)
	require.NotNil(t, got.Timestamp)
	assert.Equal(t, time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC), *got.Timestamp)
}
