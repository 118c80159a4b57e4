package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DEUO27/smart-bin-dashboard-code/internal/ingest"
	"github.com/DEUO27/smart-bin-dashboard-code/internal/store"
)

type fakeRecorder struct {
	measurements []ingest.MeasurementInput
	events       []ingest.ActuatorEventInput
}

func (f *fakeRecorder) RecordMeasurement(_ context.Context, in ingest.MeasurementInput) (int64, error) {
	f.measurements = append(f.measurements, in)
	return int64(len(f.measurements)), nil
}

func (f *fakeRecorder) RecordActuatorEvent(_ context.Context, in ingest.ActuatorEventInput) (int64, error) {
	f.events = append(f.events, in)
	return int64(len(f.events)), nil
}

type fakeSource struct {
	known store.KnownDevices
	err   error
	calls int
}

func (f *fakeSource) KnownDevices(context.Context) (store.KnownDevices, error) {
	f.calls++
	return f.known, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestProcessor(t *testing.T) (*Processor, *fakeRecorder) {
	t.Helper()
	meta := NewMetadataService(&fakeSource{known: store.KnownDevices{Sensors: []int64{1, 2}, Actuators: []int64{7}}}, discardLogger())
	require.NoError(t, meta.Load(context.Background()))

	rec := &fakeRecorder{}
	cfg := Config{MeasurementsTopic: "ecobins/measurements", ActuatorEventsTopic: "ecobins/actuator-events"}
	return NewProcessor(meta, rec, cfg), rec
}

func TestProcessMeasurement(t *testing.T) {
	p, rec := newTestProcessor(t)

	id, err := p.Process(context.Background(), "ecobins/measurements",
		[]byte(`{"sensor_id":2,"fill_percentage":0,"weight_kg":3.5,"ts":1741600800000}`))
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	require.Len(t, rec.measurements, 1)
	got := rec.measurements[0]
	require.NotNil(t, got.FillPercentage)
	assert.Equal(t, 0.0, *got.FillPercentage)
	assert.Equal(t, time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC), got.Timestamp.UTC())
}

func TestProcessRejectsUnknownDevices(t *testing.T) {
	p, rec := newTestProcessor(t)

	_, err := p.Process(context.Background(), "ecobins/measurements", []byte(`{"sensor_id":99}`))
	assert.ErrorIs(t, err, ErrUnknownDevice)

	_, err = p.Process(context.Background(), "ecobins/actuator-events", []byte(`{"actuator_id":1}`))
	assert.ErrorIs(t, err, ErrUnknownDevice)

	assert.Empty(t, rec.measurements)
	assert.Empty(t, rec.events)
}

func TestProcessRejectsBadPayloads(t *testing.T) {
	p, rec := newTestProcessor(t)

	_, err := p.Process(context.Background(), "ecobins/measurements", []byte(`24.5`))
	assert.Error(t, err)

	_, err = p.Process(context.Background(), "ecobins/measurements", []byte(`{"distance_cm":10}`))
	var verr *ingest.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = p.Process(context.Background(), "ecobins/other", []byte(`{"sensor_id":1}`))
	assert.Error(t, err)

	assert.Empty(t, rec.measurements)
}

func TestProcessActuatorEvent(t *testing.T) {
	p, rec := newTestProcessor(t)

	_, err := p.Process(context.Background(), "ecobins/actuator-events",
		[]byte(`{"actuator_id":7,"description":"tapa abierta"}`))
	require.NoError(t, err)
	require.Len(t, rec.events, 1)
	assert.Equal(t, "tapa abierta", *rec.events[0].Description)
}

func TestMetadataLoadKeepsOldCacheOnError(t *testing.T) {
	src := &fakeSource{known: store.KnownDevices{Sensors: []int64{1}}}
	meta := NewMetadataService(src, discardLogger())
	require.NoError(t, meta.Load(context.Background()))
	assert.True(t, meta.HasSensor(1))
	assert.False(t, meta.HasActuator(1))

	src.err = errors.New("db down")
	assert.Error(t, meta.Load(context.Background()))
	assert.True(t, meta.HasSensor(1))
}

func TestMetadataAutoRefresh(t *testing.T) {
	src := &fakeSource{known: store.KnownDevices{Sensors: []int64{1}}}
	meta := NewMetadataService(src, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		meta.StartAutoRefresh(ctx, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return meta.HasSensor(1) }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}
