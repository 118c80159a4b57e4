package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/DEUO27/smart-bin-dashboard-code/internal/store"
)

// DeviceSource je dotaz, ze kterého se cache plní (implementuje store.Store).
type DeviceSource interface {
	KnownDevices(ctx context.Context) (store.KnownDevices, error)
}

// MetadataService drží v paměti ID všech registrovaných senzorů a aktuátorů.
// Zprávu od neznámého zařízení zahodíme dřív, než sáhneme do DB.
type MetadataService struct {
	db     DeviceSource
	logger *slog.Logger

	// mu (RWMutex) chrání mapy před souběžným zápisem a čtením.
	// V Go "map" NENÍ thread-safe. Handler MQTT čte, refresh goroutina zapisuje.
	mu        sync.RWMutex
	sensors   map[int64]struct{}
	actuators map[int64]struct{}
}

// NewMetadataService - konstruktor
func NewMetadataService(db DeviceSource, logger *slog.Logger) *MetadataService {
	return &MetadataService{
		db:        db,
		logger:    logger,
		sensors:   make(map[int64]struct{}),
		actuators: make(map[int64]struct{}),
	}
}

// Load provede SQL dotaz a aktualizuje lokální cache v paměti.
// Tato operace je "drahá" (IO, síť), proto ji děláme jen při startu nebo periodicky.
func (s *MetadataService) Load(ctx context.Context) error {
	known, err := s.db.KnownDevices(ctx)
	if err != nil {
		return fmt.Errorf("načtení zařízení selhalo: %w", err)
	}

	// Nové mapy připravíme bokem, zámek držíme jen na prohození (Read-Copy-Update).
	sensors := toSet(known.Sensors)
	actuators := toSet(known.Actuators)

	s.mu.Lock()
	s.sensors = sensors
	s.actuators = actuators
	s.mu.Unlock()

	s.logger.Info("Metadata zařízení načtena", "sensors", len(sensors), "actuators", len(actuators))
	return nil
}

// HasSensor volá Ingestor pro každou příchozí zprávu. Musí být extrémně rychlá.
func (s *MetadataService) HasSensor(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sensors[id]
	return ok
}

func (s *MetadataService) HasActuator(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.actuators[id]
	return ok
}

// StartAutoRefresh spouští smyčku na pozadí, která pravidelně obnoví cache.
// Umožňuje přidat nové zařízení do DB bez restartu této služby.
func (s *MetadataService) StartAutoRefresh(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Load(ctx); err != nil {
				s.logger.Error("Obnova metadat selhala", "error", err)
			}
		}
	}
}

func toSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
