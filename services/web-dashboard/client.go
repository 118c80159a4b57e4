package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/DEUO27/smart-bin-dashboard-code/internal/series"
	"github.com/DEUO27/smart-bin-dashboard-code/internal/status"
	"github.com/DEUO27/smart-bin-dashboard-code/internal/store"
)

// --- DATOVÉ MODELY (DTO) ---
// Musí přesně odpovídat tomu, co posílá Bins API.

// SummaryDTO: počty pro kartičky a stav košů.
type SummaryDTO struct {
	Counts    store.Counts       `json:"counts"`
	BinStatus []status.BinStatus `json:"bin_status"`
}

// MeasurementDTO je jeden řádek "Últimas Mediciones", Values je hotový text.
type MeasurementDTO struct {
	Timestamp  time.Time `json:"ts"`
	BinID      int64     `json:"bin_id"`
	SensorType string    `json:"sensor_type"`
	Values     string    `json:"values"`
}

type RecentDTO struct {
	Measurements   []MeasurementDTO         `json:"measurements"`
	ActuatorEvents []store.ActuatorEventRow `json:"actuator_events"`
	Collections    []store.CollectionRow    `json:"collections"`
}

type BinDTO struct {
	ID        int64    `json:"bin_id"`
	Name      string   `json:"name"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// CollectionForm jsou data z formuláře "Registrar Recolección".
type CollectionForm struct {
	BinID             int64      `json:"bin_id"`
	CollectedWeightKG float64    `json:"collected_weight_kg"`
	Timestamp         *time.Time `json:"ts,omitempty"`
}

// APIError je odpověď API s chybovým status kódem. Message je text z {"error": ...}.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API vrátilo chybný status %d: %s", e.Status, e.Message)
}

// APIClient zapouzdřuje logiku HTTP volání na backend.
// Zbytek aplikace (Handlery) díky tomu neřeší URL adresy, JSON decoding ani status kódy.
type APIClient struct {
	BaseURL    string
	httpClient *http.Client
}

// NewAPIClient vytváří instanci klienta.
// Důležité: Vždy nastavujeme Timeout! Defaultní http.Client v Go nemá timeout.
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// GetSummary zavolá GET /api/summary.
func (c *APIClient) GetSummary(ctx context.Context) (SummaryDTO, error) {
	var out SummaryDTO
	err := c.get(ctx, "/api/summary", &out)
	return out, err
}

// GetSeries zavolá GET /api/series/measurements?hours=N.
func (c *APIClient) GetSeries(ctx context.Context, hours int) ([]series.Bucket, error) {
	var out []series.Bucket
	err := c.get(ctx, "/api/series/measurements?hours="+strconv.Itoa(hours), &out)
	return out, err
}

// GetRecent zavolá GET /api/recent.
func (c *APIClient) GetRecent(ctx context.Context) (RecentDTO, error) {
	var out RecentDTO
	err := c.get(ctx, "/api/recent", &out)
	return out, err
}

// GetBins zavolá GET /api/bins.
func (c *APIClient) GetBins(ctx context.Context) ([]BinDTO, error) {
	var out []BinDTO
	err := c.get(ctx, "/api/bins", &out)
	return out, err
}

// GetRoute zavolá GET /api/route a vrátí odkaz na Google Maps.
func (c *APIClient) GetRoute(ctx context.Context, originID, destinationID int64, stops []int64, optimize bool) (string, error) {
	ids := make([]string, 0, len(stops))
	for _, id := range stops {
		ids = append(ids, strconv.FormatInt(id, 10))
	}

	q := url.Values{}
	q.Set("origin", strconv.FormatInt(originID, 10))
	q.Set("destination", strconv.FormatInt(destinationID, 10))
	q.Set("stops", strings.Join(ids, ","))
	q.Set("optimize", strconv.FormatBool(optimize))

	var out struct {
		URL string `json:"url"`
	}
	if err := c.get(ctx, "/api/route?"+q.Encode(), &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// PostCollection zavolá POST /api/collections a vrátí ID nového svozu.
func (c *APIClient) PostCollection(ctx context.Context, form CollectionForm) (int64, error) {
	body, err := json.Marshal(form)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/collections", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out struct {
		InsertedID int64 `json:"inserted_id"`
	}
	if err := c.do(req, &out); err != nil {
		return 0, err
	}
	return out.InsertedID, nil
}

func (c *APIClient) get(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, dst)
}

// do provede požadavek, zkontroluje status a dekóduje JSON do dst.
func (c *APIClient) do(req *http.Request, dst any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("chyba sítě při volání API: %w", err)
	}
	// Důležité: Body musíme vždy zavřít, jinak tečou file descriptory.
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Status: resp.StatusCode}
		var body struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&body) == nil {
			apiErr.Message = body.Error
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("chyba při parsování JSONu: %w", err)
	}
	return nil
}
