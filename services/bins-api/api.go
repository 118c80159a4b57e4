package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/DEUO27/smart-bin-dashboard-code/internal/ingest"
	"github.com/DEUO27/smart-bin-dashboard-code/internal/routeplan"
	"github.com/DEUO27/smart-bin-dashboard-code/internal/series"
	"github.com/DEUO27/smart-bin-dashboard-code/internal/store"
)

// Jednotná odpověď při chybě úložiště. Detail chyby jde jen do logu, ne klientovi.
const internalErrorMessage = "Internal Server Error"

// APIHandler sdružuje metody pro obsluhu HTTP požadavků.
// Drží referenci na Service (logika) a Logger.
type APIHandler struct {
	svc    *Service
	logger *slog.Logger
	cfg    Config
}

// NewAPIHandler vytváří novou instanci handleru.
func NewAPIHandler(svc *Service, logger *slog.Logger, cfg Config) *APIHandler {
	return &APIHandler{svc: svc, logger: logger, cfg: cfg}
}

// RegisterRoutes mapuje URL cesty na metody handleru (router Go 1.22+ s metodami a wildcardy).
func (h *APIHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", h.handleHealth)
	mux.HandleFunc("GET /api/summary", h.handleSummary)
	mux.HandleFunc("GET /api/series/measurements", h.handleMeasurementSeries)
	mux.HandleFunc("GET /api/recent", h.handleRecent)
	mux.HandleFunc("GET /api/bins", h.handleBins)
	mux.HandleFunc("GET /api/route", h.handleRoute)

	// {id} je Path Value - proměnná v URL.
	mux.HandleFunc("GET /api/sensors/{id}/live", h.handleSensorLive)
	mux.HandleFunc("GET /api/actuators/{id}/live", h.handleActuatorLive)

	// Zápisy z ESP8266 (HTTP) a z formuláře svozu.
	mux.HandleFunc("POST /api/measurements", h.handleCreateMeasurement)
	mux.HandleFunc("POST /api/actuator-events", h.handleCreateActuatorEvent)
	mux.HandleFunc("POST /api/collections", h.handleCreateCollection)
}

// handleHealth: GET /api/health
func (h *APIHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Health(r.Context()))
}

// handleSummary: GET /api/summary
func (h *APIHandler) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Summary(r.Context())
	if err != nil {
		h.internalError(w, "/api/summary", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleMeasurementSeries: GET /api/series/measurements?hours=24
func (h *APIHandler) handleMeasurementSeries(w http.ResponseWriter, r *http.Request) {
	hours := series.ParseHours(r.URL.Query().Get("hours"), h.cfg.DefaultSeriesHours)

	buckets, err := h.svc.MeasurementSeries(r.Context(), hours)
	if err != nil {
		h.internalError(w, "/api/series/measurements", err)
		return
	}
	writeJSON(w, http.StatusOK, buckets)
}

// handleRecent: GET /api/recent
func (h *APIHandler) handleRecent(w http.ResponseWriter, r *http.Request) {
	recent, err := h.svc.Recent(r.Context())
	if err != nil {
		h.internalError(w, "/api/recent", err)
		return
	}
	writeJSON(w, http.StatusOK, recent)
}

// handleBins: GET /api/bins
func (h *APIHandler) handleBins(w http.ResponseWriter, r *http.Request) {
	bins, err := h.svc.Bins(r.Context())
	if err != nil {
		h.internalError(w, "/api/bins", err)
		return
	}
	writeJSON(w, http.StatusOK, bins)
}

// handleRoute: GET /api/route?origin=1&destination=2&stops=1,2,3&optimize=true
func (h *APIHandler) handleRoute(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	originID, err1 := parseOptionalID(q.Get("origin"))
	destinationID, err2 := parseOptionalID(q.Get("destination"))
	stops, err3 := parseIDList(q.Get("stops"))
	if err := errors.Join(err1, err2, err3); err != nil {
		writeError(w, http.StatusBadRequest, "invalid bin id")
		return
	}
	optimize, _ := strconv.ParseBool(q.Get("optimize"))

	url, err := h.svc.Route(r.Context(), stops, originID, destinationID, optimize)
	switch {
	case errors.Is(err, routeplan.ErrNeedsEndpoints), errors.Is(err, routeplan.ErrUnknownBin):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.internalError(w, "/api/route", err)
		return
	}
	writeJSON(w, http.StatusOK, RouteDTO{URL: url})
}

// handleSensorLive: GET /api/sensors/{id}/live
func (h *APIHandler) handleSensorLive(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid sensor id")
		return
	}

	live, err := h.svc.SensorLive(r.Context(), id)
	h.writeLive(w, live, err, "sensor")
}

// handleActuatorLive: GET /api/actuators/{id}/live
func (h *APIHandler) handleActuatorLive(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid actuator id")
		return
	}

	live, err := h.svc.ActuatorLive(r.Context(), id)
	h.writeLive(w, live, err, "actuator")
}

func (h *APIHandler) writeLive(w http.ResponseWriter, live *LiveDTO, err error, kind string) {
	if err != nil {
		h.internalError(w, "/api/"+kind+"s/{id}/live", err)
		return
	}
	if live == nil {
		writeError(w, http.StatusNotFound, "no live data for "+kind)
		return
	}
	writeJSON(w, http.StatusOK, live)
}

// handleCreateMeasurement: POST /api/measurements
func (h *APIHandler) handleCreateMeasurement(w http.ResponseWriter, r *http.Request) {
	var in ingest.MeasurementInput
	if !h.decode(w, r, &in) {
		return
	}
	id, err := h.svc.RecordMeasurement(r.Context(), in)
	h.writeInserted(w, "/api/measurements", id, err)
}

// handleCreateActuatorEvent: POST /api/actuator-events
func (h *APIHandler) handleCreateActuatorEvent(w http.ResponseWriter, r *http.Request) {
	var in ingest.ActuatorEventInput
	if !h.decode(w, r, &in) {
		return
	}
	id, err := h.svc.RecordActuatorEvent(r.Context(), in)
	h.writeInserted(w, "/api/actuator-events", id, err)
}

// handleCreateCollection: POST /api/collections
func (h *APIHandler) handleCreateCollection(w http.ResponseWriter, r *http.Request) {
	var in ingest.CollectionInput
	if !h.decode(w, r, &in) {
		return
	}
	id, err := h.svc.RecordCollection(r.Context(), in)
	h.writeInserted(w, "/api/collections", id, err)
}

// decode načte JSON tělo. Při chybě rovnou odpoví 400 a vrátí false.
func (h *APIHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// writeInserted převede výsledek zápisu na HTTP odpověď.
func (h *APIHandler) writeInserted(w http.ResponseWriter, route string, id int64, err error) {
	var verr *ingest.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, store.ErrUnknownReference):
		writeError(w, http.StatusBadRequest, "referenced device or bin does not exist")
	case err != nil:
		h.internalError(w, route, err)
	default:
		writeJSON(w, http.StatusOK, InsertedDTO{InsertedID: id})
	}
}

func (h *APIHandler) internalError(w http.ResponseWriter, route string, err error) {
	h.logger.Error("Chyba při obsluze požadavku", "route", route, "error", err)
	writeError(w, http.StatusInternalServerError, internalErrorMessage)
}

// writeJSON nastaví hlavičku a zapíše v jako JSON přímo do odpovědi.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// parseOptionalID: prázdná hodnota = 0 (nevybráno).
func parseOptionalID(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	return parseID(raw)
}

// parseIDList převede "1,2,3" na []int64, prázdné položky přeskočí.
func parseIDList(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		id, err := parseID(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
