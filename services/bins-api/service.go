package main

import (
	"context"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/DEUO27/smart-bin-dashboard-code/internal/ingest"
	"github.com/DEUO27/smart-bin-dashboard-code/internal/livecache"
	"github.com/DEUO27/smart-bin-dashboard-code/internal/readings"
	"github.com/DEUO27/smart-bin-dashboard-code/internal/routeplan"
	"github.com/DEUO27/smart-bin-dashboard-code/internal/series"
	"github.com/DEUO27/smart-bin-dashboard-code/internal/status"
	"github.com/DEUO27/smart-bin-dashboard-code/internal/store"
)

// Repository jsou dotazy do Postgresu, které API potřebuje (implementuje store.Store).
type Repository interface {
	ingest.Writer

	Ping(ctx context.Context) error
	Counts(ctx context.Context) (store.Counts, error)
	SensorStatusRows(ctx context.Context) ([]status.DeviceRow, error)
	ActuatorStatusRows(ctx context.Context) ([]status.DeviceRow, error)
	RecentMeasurements(ctx context.Context, limit int) ([]store.MeasurementRow, error)
	RecentActuatorEvents(ctx context.Context, limit int) ([]store.ActuatorEventRow, error)
	RecentCollections(ctx context.Context, limit int) ([]store.CollectionRow, error)
	Bins(ctx context.Context) ([]store.Bin, error)
	MeasurementTimesSince(ctx context.Context, since time.Time) ([]time.Time, error)
}

// LiveStore je live stav zařízení ve Valkey (implementuje livecache.Cache).
type LiveStore interface {
	ingest.LiveState
	Sensor(ctx context.Context, id int64) (*livecache.Snapshot, error)
	Actuator(ctx context.Context, id int64) (*livecache.Snapshot, error)
}

// Service drží spojení na databáze a obsahuje business logiku API.
type Service struct {
	repo     Repository
	live     LiveStore
	recorder *ingest.Recorder
	cfg      Config
	now      func() time.Time
}

// NewService je konstruktor (Dependency Injection).
func NewService(repo Repository, live LiveStore, recorder *ingest.Recorder, cfg Config) *Service {
	return &Service{repo: repo, live: live, recorder: recorder, cfg: cfg, now: time.Now}
}

// Summary spočítá počty a složí stav košů.
// Příznak active se počítá v okamžiku odpovědi, ne při zápisu.
func (s *Service) Summary(ctx context.Context) (SummaryDTO, error) {
	counts, err := s.repo.Counts(ctx)
	if err != nil {
		return SummaryDTO{}, err
	}

	sensorRows, err := s.repo.SensorStatusRows(ctx)
	if err != nil {
		return SummaryDTO{}, err
	}
	actuatorRows, err := s.repo.ActuatorStatusRows(ctx)
	if err != nil {
		return SummaryDTO{}, err
	}

	bins := status.Aggregate(sensorRows, actuatorRows)
	status.MarkFreshness(bins, s.now(), s.cfg.StatusWindow)

	return SummaryDTO{Counts: counts, BinStatus: bins}, nil
}

// MeasurementSeries vrací počet měření po hodinách za posledních hours hodin.
func (s *Service) MeasurementSeries(ctx context.Context, hours int) ([]series.Bucket, error) {
	since := series.Since(s.now(), hours)

	times, err := s.repo.MeasurementTimesSince(ctx, since)
	if err != nil {
		return nil, err
	}
	return series.Hourly(times), nil
}

// Recent vrací poslední měření, události a svozy (každé max. RecentLimit).
func (s *Service) Recent(ctx context.Context) (RecentDTO, error) {
	limit := s.cfg.RecentLimit

	rows, err := s.repo.RecentMeasurements(ctx, limit)
	if err != nil {
		return RecentDTO{}, err
	}
	measurements := make([]RecentMeasurementDTO, 0, len(rows))
	for _, r := range rows {
		measurements = append(measurements, RecentMeasurementDTO{
			Timestamp:  r.Timestamp,
			BinID:      r.BinID,
			SensorType: r.SensorType,
			Values:     readings.Summary(r.Values),
		})
	}

	events, err := s.repo.RecentActuatorEvents(ctx, limit)
	if err != nil {
		return RecentDTO{}, err
	}
	collections, err := s.repo.RecentCollections(ctx, limit)
	if err != nil {
		return RecentDTO{}, err
	}

	return RecentDTO{
		Measurements:   measurements,
		ActuatorEvents: nonNil(events),
		Collections:    nonNil(collections),
	}, nil
}

// Bins vrací seznam košů se souřadnicemi.
func (s *Service) Bins(ctx context.Context) ([]BinDTO, error) {
	bins, err := s.repo.Bins(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]BinDTO, 0, len(bins))
	for _, b := range bins {
		out = append(out, BinDTO{ID: b.ID, Name: b.Name, Latitude: b.Latitude, Longitude: b.Longitude})
	}
	return out, nil
}

// Route sestaví odkaz na Google Maps přes vybrané koše.
// Koše bez souřadnic se do trasy zařadit nedají (routeplan.ErrUnknownBin).
func (s *Service) Route(ctx context.Context, selected []int64, originID, destinationID int64, optimize bool) (string, error) {
	bins, err := s.repo.Bins(ctx)
	if err != nil {
		return "", err
	}

	stops := make([]routeplan.Stop, 0, len(bins))
	for _, b := range bins {
		if b.Latitude == nil || b.Longitude == nil {
			continue
		}
		stops = append(stops, routeplan.Stop{BinID: b.ID, Latitude: *b.Latitude, Longitude: *b.Longitude})
	}

	return routeplan.Plan(stops, selected, originID, destinationID, optimize)
}

// SensorLive vrací poslední stav senzoru z Valkey (nil = nic v cache).
func (s *Service) SensorLive(ctx context.Context, id int64) (*LiveDTO, error) {
	return s.liveDTO(id, func() (*livecache.Snapshot, error) { return s.live.Sensor(ctx, id) })
}

// ActuatorLive vrací poslední stav aktuátoru z Valkey.
func (s *Service) ActuatorLive(ctx context.Context, id int64) (*LiveDTO, error) {
	return s.liveDTO(id, func() (*livecache.Snapshot, error) { return s.live.Actuator(ctx, id) })
}

func (s *Service) liveDTO(id int64, fetch func() (*livecache.Snapshot, error)) (*LiveDTO, error) {
	snap, err := fetch()
	if err != nil || snap == nil {
		return nil, err
	}
	ts := snap.Timestamp
	return &LiveDTO{
		ID:       id,
		Snapshot: *snap,
		Active:   status.Classify(&ts, s.now(), s.cfg.StatusWindow) == status.Active,
	}, nil
}

// Health ověří databázi a přidá statistiky vlastního procesu.
func (s *Service) Health(ctx context.Context) HealthDTO {
	h := HealthDTO{OK: true, Database: "up"}
	if err := s.repo.Ping(ctx); err != nil {
		h.Database = "down"
	}

	// gopsutil: RSS = skutečná fyzická RAM procesu.
	if p, err := process.NewProcessWithContext(ctx, int32(os.Getpid())); err == nil {
		if mem, err := p.MemoryInfoWithContext(ctx); err == nil {
			h.RSSMB = float64(mem.RSS) / 1024.0 / 1024.0
		}
		if cpu, err := p.CPUPercentWithContext(ctx); err == nil {
			h.CPU = cpu
		}
	}
	return h
}

// Zápisová cesta jde přes sdílený ingest.Recorder (stejně jako MQTT Ingestor).

func (s *Service) RecordMeasurement(ctx context.Context, in ingest.MeasurementInput) (int64, error) {
	return s.recorder.RecordMeasurement(ctx, in)
}

func (s *Service) RecordActuatorEvent(ctx context.Context, in ingest.ActuatorEventInput) (int64, error) {
	return s.recorder.RecordActuatorEvent(ctx, in)
}

func (s *Service) RecordCollection(ctx context.Context, in ingest.CollectionInput) (int64, error) {
	return s.recorder.RecordCollection(ctx, in)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
