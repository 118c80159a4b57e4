package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DEUO27/smart-bin-dashboard-code/internal/store"
)

type fakeMigrator struct {
	schemaErr error
	seeded    bool
}

func (f *fakeMigrator) ApplySchema(context.Context) (int, error) {
	return 11, f.schemaErr
}

func (f *fakeMigrator) Seed(context.Context) (store.SeedResult, error) {
	f.seeded = true
	return store.SeedResult{BinID: 1, SensorID: 2, ActuatorID: 3}, nil
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestRunWithSeed(t *testing.T) {
	db := &fakeMigrator{}
	var out bytes.Buffer

	require.NoError(t, run(context.Background(), db, true, &out, discard))
	assert.True(t, db.seeded)
	assert.Equal(t, "bin_id=1 sensor_id=2 actuator_id=3\n", out.String())
}

func TestRunSchemaOnly(t *testing.T) {
	db := &fakeMigrator{}
	var out bytes.Buffer

	require.NoError(t, run(context.Background(), db, false, &out, discard))
	assert.False(t, db.seeded)
	assert.Empty(t, out.String())
}

func TestRunStopsOnSchemaError(t *testing.T) {
	db := &fakeMigrator{schemaErr: errors.New("syntax error")}

	err := run(context.Background(), db, true, io.Discard, discard)
	assert.Error(t, err)
	assert.False(t, db.seeded)
}
