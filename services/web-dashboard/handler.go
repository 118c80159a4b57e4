package main

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/DEUO27/smart-bin-dashboard-code/internal/series"
	"github.com/DEUO27/smart-bin-dashboard-code/internal/status"
)

//go:embed templates/*.html
var templateFS embed.FS

// Nabídka oken grafu "mediciones por hora".
var hourOptions = []int{6, 24, 72}

// Formát pole <input type="datetime-local">.
const datetimeLocal = "2006-01-02T15:04"

// Největší posun časové zóny v minutách (UTC-12 až UTC+14).
const maxTZOffsetMinutes = 14 * 60

// WebHandler slouží jako "Controller". Připravuje data a renderuje HTML.
type WebHandler struct {
	client *APIClient
	logger *slog.Logger
	pages  map[string]*template.Template
	window time.Duration
	now    func() time.Time
}

// NewWebHandler inicializuje šablony a registruje pomocné funkce.
func NewWebHandler(client *APIClient, logger *slog.Logger, window time.Duration) (*WebHandler, error) {
	h := &WebHandler{
		client: client,
		logger: logger,
		pages:  make(map[string]*template.Template),
		window: window,
		now:    time.Now,
	}

	// FuncMap se musí zaregistrovat PŘED parsováním souborů.
	funcMap := template.FuncMap{
		"deref": func(f *float64) float64 {
			if f == nil {
				return 0.0
			}
			return *f
		},
		"to_json": func(v any) template.JS {
			a, err := json.Marshal(v)
			if err != nil {
				return template.JS("[]")
			}
			return template.JS(a)
		},
		// Štítek stavu zařízení se počítá při renderu, ne z uložené hodnoty.
		"freshness": func(lastSeen *time.Time) string {
			if status.Classify(lastSeen, h.now(), h.window) == status.Active {
				return "Activo"
			}
			return "Inactivo"
		},
		// clock bere time.Time i *time.Time (last_seen může být null).
		"clock": func(v any) string {
			switch t := v.(type) {
			case time.Time:
				return formatClock(t)
			case *time.Time:
				if t != nil {
					return formatClock(*t)
				}
			}
			return "-"
		},
		"str": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}

	// Každá stránka dostane vlastní kopii layoutu, jinak by se bloky "content" přepisovaly.
	for _, page := range []string{"index", "route"} {
		tmpl, err := template.New("layout.html").Funcs(funcMap).
			ParseFS(templateFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, err
		}
		h.pages[page] = tmpl
	}

	return h, nil
}

// RegisterRoutes mapuje URL cesty na metody handleru.
func (h *WebHandler) RegisterRoutes(mux *http.ServeMux) {
	// {$} = jen přesně "/", ne celý podstrom
	mux.HandleFunc("GET /{$}", h.HandleIndex)
	mux.HandleFunc("GET /route", h.HandleRoute)
	mux.HandleFunc("POST /collections", h.HandleCollection)
}

// HandleIndex: Dashboard (Přehled)
func (h *WebHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	hours := series.ParseHours(q.Get("hours"), series.DefaultHours)

	summary, err := h.client.GetSummary(ctx)
	if err != nil {
		h.backendError(w, err)
		return
	}
	buckets, err := h.client.GetSeries(ctx, hours)
	if err != nil {
		h.backendError(w, err)
		return
	}
	recent, err := h.client.GetRecent(ctx)
	if err != nil {
		h.backendError(w, err)
		return
	}
	bins, err := h.client.GetBins(ctx)
	if err != nil {
		h.backendError(w, err)
		return
	}

	h.render(w, "index", map[string]any{
		"Title":       "ECOBINS Dashboard",
		"Page":        "index",
		"Summary":     summary,
		"Series":      buckets,
		"Hours":       hours,
		"HourOptions": hourOptions,
		"Recent":      recent,
		"Bins":        bins,
		"Saved":       q.Get("saved") != "",
		"FormError":   q.Get("error"),
	})
}

// HandleRoute: Plánovač trasy svozu.
// Bez parametrů jen zobrazí formulář, s origin+destination vygeneruje odkaz.
func (h *WebHandler) HandleRoute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	bins, err := h.client.GetBins(ctx)
	if err != nil {
		h.backendError(w, err)
		return
	}

	data := map[string]any{
		"Title":       "Planificador de Ruta",
		"Page":        "route",
		"Bins":        bins,
		"Origin":      int64(0),
		"Destination": int64(0),
		"Stops":       map[int64]bool{},
		"Optimize":    false,
	}

	if q.Has("origin") || q.Has("destination") {
		origin, _ := strconv.ParseInt(q.Get("origin"), 10, 64)
		destination, _ := strconv.ParseInt(q.Get("destination"), 10, 64)
		stops := make([]int64, 0, len(q["stop"]))
		checked := make(map[int64]bool, len(q["stop"]))
		for _, raw := range q["stop"] {
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
				stops = append(stops, id)
				checked[id] = true
			}
		}
		optimize := q.Get("optimize") != ""

		routeURL, err := h.client.GetRoute(ctx, origin, destination, stops, optimize)
		var apiErr *APIError
		switch {
		case errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest:
			data["RouteError"] = apiErr.Message
		case err != nil:
			h.backendError(w, err)
			return
		default:
			data["RouteURL"] = routeURL
		}
		data["Origin"] = origin
		data["Destination"] = destination
		data["Stops"] = checked
		data["Optimize"] = optimize
	}

	h.render(w, "route", data)
}

// HandleCollection: POST formuláře "Registrar Recolección", po uložení přesměruje zpět.
func (h *WebHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, "formulario inválido")
		return
	}

	binID, err := strconv.ParseInt(r.PostForm.Get("bin_id"), 10, 64)
	if err != nil {
		redirectWithError(w, r, "selecciona un bote")
		return
	}
	weight, err := strconv.ParseFloat(r.PostForm.Get("collected_weight_kg"), 64)
	if err != nil {
		redirectWithError(w, r, "peso inválido")
		return
	}

	form := CollectionForm{BinID: binID, CollectedWeightKG: weight}
	if raw := r.PostForm.Get("ts"); raw != "" {
		ts, err := time.ParseInLocation(datetimeLocal, raw, formLocation(r.PostForm.Get("tz_offset")))
		if err != nil {
			redirectWithError(w, r, "fecha inválida")
			return
		}
		form.Timestamp = &ts
	}

	id, err := h.client.PostCollection(r.Context(), form)
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest:
		redirectWithError(w, r, apiErr.Message)
		return
	case err != nil:
		h.backendError(w, err)
		return
	}

	h.logger.Info("Svoz uložen", "id", id, "bin_id", binID)
	http.Redirect(w, r, "/?saved=1", http.StatusSeeOther)
}

// render vykreslí layout.html, který vkládá blok "content" dané stránky.
func (h *WebHandler) render(w http.ResponseWriter, page string, data map[string]any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.pages[page].ExecuteTemplate(w, "layout.html", data); err != nil {
		h.logger.Error("Chyba renderování", "page", page, "error", err)
	}
}

func (h *WebHandler) backendError(w http.ResponseWriter, err error) {
	h.logger.Error("Chyba načítání dat z API", "error", err)
	http.Error(w, "Backend nedostupný", http.StatusBadGateway)
}

func formatClock(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// formLocation vrátí zónu operátora podle tz_offset z formuláře.
// Hodnota je z Date.getTimezoneOffset(): minuty, kladné západně od UTC.
// Bez JavaScriptu (prázdné nebo nesmyslné pole) platí zóna serveru.
func formLocation(raw string) *time.Location {
	offset, err := strconv.Atoi(raw)
	if err != nil || offset < -maxTZOffsetMinutes || offset > maxTZOffsetMinutes {
		return time.Local
	}
	return time.FixedZone("", -offset*60)
}

func redirectWithError(w http.ResponseWriter, r *http.Request, msg string) {
	http.Redirect(w, r, "/?error="+url.QueryEscape(msg), http.StatusSeeOther)
}
