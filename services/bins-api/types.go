package main

import (
	"time"

	"github.com/DEUO27/smart-bin-dashboard-code/internal/livecache"
	"github.com/DEUO27/smart-bin-dashboard-code/internal/status"
	"github.com/DEUO27/smart-bin-dashboard-code/internal/store"
)

// SummaryDTO je odpověď GET /api/summary: počty pro kartičky a stav košů.
type SummaryDTO struct {
	Counts    store.Counts       `json:"counts"`
	BinStatus []status.BinStatus `json:"bin_status"`
}

// RecentMeasurementDTO je řádek tabulky "Últimas Mediciones".
// Values je hotový text z readings.Summary, frontend ho jen zobrazí.
type RecentMeasurementDTO struct {
	Timestamp  time.Time `json:"ts"`
	BinID      int64     `json:"bin_id"`
	SensorType string    `json:"sensor_type"`
	Values     string    `json:"values"`
}

// RecentDTO je odpověď GET /api/recent.
type RecentDTO struct {
	Measurements   []RecentMeasurementDTO   `json:"measurements"`
	ActuatorEvents []store.ActuatorEventRow `json:"actuator_events"`
	Collections    []store.CollectionRow    `json:"collections"`
}

// BinDTO je položka GET /api/bins (výběr košů pro trasu a formulář svozu).
type BinDTO struct {
	ID        int64    `json:"bin_id"`
	Name      string   `json:"name"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// LiveDTO je odpověď GET /api/{sensors|actuators}/{id}/live.
type LiveDTO struct {
	ID int64 `json:"id"`
	livecache.Snapshot
	Active bool `json:"active"`
}

// RouteDTO je odpověď GET /api/route.
type RouteDTO struct {
	URL string `json:"url"`
}

// InsertedDTO je odpověď všech POST endpointů.
type InsertedDTO struct {
	InsertedID int64 `json:"inserted_id"`
}

// HealthDTO je odpověď GET /api/health.
type HealthDTO struct {
	OK       bool    `json:"ok"`
	Database string  `json:"database"`
	RSSMB    float64 `json:"rss_mb,omitempty"`
	CPU      float64 `json:"cpu_percent,omitempty"`
}
