// Package series počítá řadu "počet měření za hodinu".
package series

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultHours je výchozí délka okna, pokud klient parametr neposlal.
const DefaultHours = 24

// MaxHours je nejdelší okno, které se ještě vejde do time.Duration.
const MaxHours = int(math.MaxInt64 / int64(time.Hour))

// Bucket je jedna hodina grafu. Start je zarovnaný na celou hodinu (UTC).
type Bucket struct {
	Start time.Time `json:"bucket_start"`
	Count int64     `json:"count"`
}

// ParseHours převede query parametr ?hours= na počet hodin.
// Chybějící, nečíselná nebo nekladná hodnota vrací fallback.
// Příliš velké číslo se ořízne na MaxHours.
func ParseHours(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	h, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(raw, "-") {
		return MaxHours
	}
	if err != nil || h <= 0 {
		return fallback
	}
	return min(h, MaxHours)
}

// Since vrací spodní (včetně) hranici okna [now - hours, now].
func Since(now time.Time, hours int) time.Time {
	hours = min(hours, MaxHours)
	return now.Add(-time.Duration(hours) * time.Hour)
}

// Hourly seskupí časy měření podle začátku hodiny a spočítá je.
// Výstup je seřazený vzestupně a řídký: hodiny bez měření v něm nejsou.
func Hourly(timestamps []time.Time) []Bucket {
	counts := make(map[time.Time]int64)
	for _, t := range timestamps {
		counts[t.UTC().Truncate(time.Hour)]++
	}

	out := make([]Bucket, 0, len(counts))
	for start, n := range counts {
		out = append(out, Bucket{Start: start, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })

	return out
}
